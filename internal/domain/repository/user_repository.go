package repository

import (
	"context"

	"github.com/jhoicas/punchlist-api/internal/domain/entity"
)

// UserFilter filtros del listado de usuarios.
type UserFilter struct {
	Role     string
	SectorID *int64
}

// UserRepository puerto del registro autoritativo de usuarios (base core).
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	SetSuspended(ctx context.Context, id int64, suspended bool, by *int64) error
	List(ctx context.Context, filter UserFilter) ([]*entity.User, error)
	Delete(ctx context.Context, id int64) error
	CountBySector(ctx context.Context, sectorID int64) (int, error)
	ListRoles(ctx context.Context) ([]entity.Role, error)
}

// UserMirrorRepository espejo de usuarios en la base apps (autenticación).
type UserMirrorRepository interface {
	Upsert(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}

// PermissionOverrideRepository overrides por usuario (base core). Como máximo una fila
// por (usuario, clave).
type PermissionOverrideRepository interface {
	ListByUser(ctx context.Context, userID int64) (map[string]bool, error)
	Upsert(ctx context.Context, userID int64, key string, granted bool) error
	Delete(ctx context.Context, userID int64, key string) error
	// Apply escribe set y borra clear en una sola transacción: o todo o nada.
	Apply(ctx context.Context, userID int64, set map[string]bool, clear []string) error
	// RoleDefaults filas de role_permissions: rol -> clave -> concedido.
	RoleDefaults(ctx context.Context) (map[string]map[string]bool, error)
}
