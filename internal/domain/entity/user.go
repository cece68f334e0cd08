package entity

import "time"

// Roles del catálogo. RoleRoot ignora el alcance por sector.
const (
	RoleRoot       = "root"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleTechnician = "technician"
	RoleViewer     = "viewer"
)

// Role fila de la tabla roles (core).
type Role struct {
	ID    int64
	Slug  string
	Label string
}

// User usuario del sistema. El registro autoritativo vive en la base core;
// la base apps guarda un espejo para autenticación.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string // bcrypt
	Role         string // slug del rol
	SectorID     *int64 // nil = sin sector asignado
	SuspendedAt  *time.Time
	SuspendedBy  *int64
	CreatedAt    time.Time
}

// IsSuspended indica si el usuario está suspendido.
func (u *User) IsSuspended() bool {
	return u != nil && u.SuspendedAt != nil
}

// DisplayName nombre para mostrar en documentos.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
