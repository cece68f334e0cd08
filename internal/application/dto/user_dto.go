package dto

import "time"

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	SectorID    *int64     `json:"sector_id,omitempty"`
	Suspended   bool       `json:"suspended"`
	SuspendedAt *time.Time `json:"suspended_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CreateUserRequest alta de usuario. Permissions: clave -> allow|deny|inherit.
type CreateUserRequest struct {
	Email       string            `json:"email"`
	Name        string            `json:"name"`
	Password    string            `json:"password"`
	Role        string            `json:"role"`
	SectorID    *int64            `json:"sector_id,omitempty"`
	Permissions map[string]string `json:"permissions,omitempty"`
}

// UpdateUserRequest edición de usuario. Password vacío = sin cambio.
type UpdateUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role"`
	SectorID *int64 `json:"sector_id,omitempty"`
}

// PermissionOverridesRequest clave -> allow|deny|inherit.
type PermissionOverridesRequest struct {
	Permissions map[string]string `json:"permissions"`
}

// PermissionsResponse permisos efectivos y overrides explícitos de un usuario.
type PermissionsResponse struct {
	UserID    int64             `json:"user_id"`
	Effective map[string]bool   `json:"effective"`
	Overrides map[string]string `json:"overrides"`
}

// MeResponse actor resuelto del request.
type MeResponse struct {
	User        UserResponse    `json:"user"`
	Permissions map[string]bool `json:"permissions"`
	IsRoot      bool            `json:"is_root"`
	CanSign     bool            `json:"can_sign"`
}

// RoleResponse fila del catálogo de roles.
type RoleResponse struct {
	ID    int64  `json:"id"`
	Slug  string `json:"slug"`
	Label string `json:"label"`
}
