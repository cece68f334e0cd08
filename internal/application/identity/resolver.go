// Package identity resuelve el actor de cada request (rol, sector y permisos efectivos) y
// administra usuarios y overrides de permisos.
package identity

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/domain/access"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/internal/domain/repository"
	"github.com/jhoicas/punchlist-api/pkg/logger"
)

const overrideCachePrefix = "perm:overrides:"

// PermissionResolver combina defaults de rol y overrides por usuario.
// users y overrides (base core) pueden ser nil: se degrada al espejo y a los defaults de rol.
type PermissionResolver struct {
	users     repository.UserRepository
	mirror    repository.UserMirrorRepository
	overrides repository.PermissionOverrideRepository
	cache     Cache
	ttl       time.Duration
	catalog   *entity.PermissionCatalog
	log       *logger.Logger
}

// NewPermissionResolver construye el resolver. catalog nil = catálogo por defecto.
func NewPermissionResolver(
	users repository.UserRepository,
	mirror repository.UserMirrorRepository,
	overrides repository.PermissionOverrideRepository,
	cache Cache,
	ttl time.Duration,
	catalog *entity.PermissionCatalog,
	log *logger.Logger,
) *PermissionResolver {
	if catalog == nil {
		catalog = entity.DefaultPermissionCatalog()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &PermissionResolver{
		users:     users,
		mirror:    mirror,
		overrides: overrides,
		cache:     cache,
		ttl:       ttl,
		catalog:   catalog,
		log:       log,
	}
}

// LoadCatalog catálogo por defecto con las filas de role_permissions encima. Si la base core
// no está o falla, se usan los defaults del código.
func LoadCatalog(ctx context.Context, overrides repository.PermissionOverrideRepository, log *logger.Logger) *entity.PermissionCatalog {
	base := entity.DefaultPermissionCatalog()
	if overrides == nil {
		return base
	}
	rows, err := overrides.RoleDefaults(ctx)
	if err != nil {
		if log != nil {
			log.Warn().Err(err).Msg("role_permissions no disponible; se usan los defaults de rol")
		}
		return base
	}
	return base.WithRoleDefaults(rows)
}

// Catalog catálogo en uso.
func (r *PermissionResolver) Catalog() *entity.PermissionCatalog {
	return r.catalog
}

// Resolve carga el usuario y calcula sus permisos efectivos. Usuario inexistente ->
// ErrUserNotFound; suspendido -> ErrSuspended.
func (r *PermissionResolver) Resolve(ctx context.Context, userID int64) (*access.Actor, error) {
	user, err := r.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if user.IsSuspended() {
		return nil, domain.ErrSuspended
	}
	overrides, err := r.Overrides(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &access.Actor{
		UserID:      user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Role:        user.Role,
		SectorID:    user.SectorID,
		Permissions: r.catalog.Effective(user.Role, overrides),
	}, nil
}

// loadUser base core primero; si no está configurada o falla, el espejo de apps.
func (r *PermissionResolver) loadUser(ctx context.Context, userID int64) (*entity.User, error) {
	if r.users != nil {
		user, err := r.users.GetByID(ctx, userID)
		if err == nil {
			return user, nil
		}
		r.log.Warn().Err(err).Int64("user_id", userID).Msg("base core no disponible; se usa el espejo de usuarios")
	}
	if r.mirror == nil {
		return nil, fmt.Errorf("sin fuente de identidad configurada")
	}
	return r.mirror.GetByID(ctx, userID)
}

// Overrides clave -> concedido del usuario, vía caché. Si la base core falla se devuelve
// el error: no se conceden permisos por defecto ocultando un deny.
func (r *PermissionResolver) Overrides(ctx context.Context, userID int64) (map[string]bool, error) {
	if r.overrides == nil {
		return map[string]bool{}, nil
	}
	key := overrideCachePrefix + strconv.FormatInt(userID, 10)
	if r.cache != nil {
		var cached map[string]bool
		ok, err := r.cache.Get(ctx, key, &cached)
		if err != nil {
			r.log.Warn().Err(err).Str("key", key).Msg("caché de permisos: lectura fallida")
		} else if ok {
			if cached == nil {
				cached = map[string]bool{}
			}
			return cached, nil
		}
	}
	rows, err := r.overrides.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("cargar overrides: %w", err)
	}
	if r.cache != nil {
		if err := r.cache.Set(ctx, key, rows, r.ttl); err != nil {
			r.log.Warn().Err(err).Str("key", key).Msg("caché de permisos: escritura fallida")
		}
	}
	return rows, nil
}

// OverrideModes clave -> allow|deny|inherit para todas las claves del catálogo.
func (r *PermissionResolver) OverrideModes(ctx context.Context, userID int64) (map[string]string, error) {
	rows, err := r.Overrides(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, k := range r.catalog.Keys() {
		v, ok := rows[k]
		switch {
		case !ok:
			out[k] = entity.OverrideInherit
		case v:
			out[k] = entity.OverrideAllow
		default:
			out[k] = entity.OverrideDeny
		}
	}
	return out, nil
}

// NormalizeOverrides descarta claves desconocidas y convierte cualquier modo que no sea
// allow/deny en inherit.
func NormalizeOverrides(catalog *entity.PermissionCatalog, in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, mode := range in {
		if !catalog.Has(key) {
			continue
		}
		mode = strings.ToLower(strings.TrimSpace(mode))
		if mode != entity.OverrideAllow && mode != entity.OverrideDeny {
			mode = entity.OverrideInherit
		}
		out[key] = mode
	}
	return out
}

// SavePermissionOverrides guarda overrides (requiere manage_users).
func (r *PermissionResolver) SavePermissionOverrides(ctx context.Context, actor *access.Actor, userID int64, modes map[string]string) error {
	if !actor.Can(entity.PermManageUsers) {
		r.log.Warn().Int64("actor_id", actor.ID()).Int64("user_id", userID).Msg("forbidden: guardar permisos")
		return domain.ErrForbidden
	}
	return r.saveOverrides(ctx, userID, modes)
}

// saveOverrides inherit borra la fila; allow/deny hacen upsert, todo en una transacción.
// La caché se invalida siempre, también si la escritura falla.
func (r *PermissionResolver) saveOverrides(ctx context.Context, userID int64, modes map[string]string) error {
	if r.overrides == nil {
		return fmt.Errorf("%w: base core no disponible", domain.ErrConflict)
	}
	defer r.InvalidateUser(ctx, userID)

	set := map[string]bool{}
	var clear []string
	for key, mode := range NormalizeOverrides(r.catalog, modes) {
		if mode == entity.OverrideInherit {
			clear = append(clear, key)
			continue
		}
		set[key] = mode == entity.OverrideAllow
	}
	if len(set) == 0 && len(clear) == 0 {
		return nil
	}
	if err := r.overrides.Apply(ctx, userID, set, clear); err != nil {
		r.log.Error().Err(err).Int64("user_id", userID).Msg("no se pudieron guardar los permisos")
		return fmt.Errorf("guardar permisos: %w", err)
	}
	return nil
}

// InvalidateUser descarta la caché de overrides del usuario.
func (r *PermissionResolver) InvalidateUser(ctx context.Context, userID int64) {
	if r.cache == nil {
		return
	}
	key := overrideCachePrefix + strconv.FormatInt(userID, 10)
	if err := r.cache.Delete(ctx, key); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("caché de permisos: invalidación fallida")
	}
}
