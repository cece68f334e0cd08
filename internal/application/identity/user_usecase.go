package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/punchlist-api/internal/application/activity"
	"github.com/jhoicas/punchlist-api/internal/application/dto"
	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/domain/access"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/internal/domain/repository"
	"github.com/jhoicas/punchlist-api/pkg/logger"
)

// MinPasswordLength longitud mínima de contraseña.
const MinPasswordLength = 10

// UserUseCase administración de usuarios (requiere manage_users). El registro autoritativo
// está en core; el espejo de apps se mantiene en cada escritura.
type UserUseCase struct {
	users    repository.UserRepository
	mirror   repository.UserMirrorRepository
	sectors  repository.SectorRepository
	resolver *PermissionResolver
	activity *activity.Recorder
	log      *logger.Logger
}

// NewUserUseCase construye el caso de uso.
func NewUserUseCase(
	users repository.UserRepository,
	mirror repository.UserMirrorRepository,
	sectors repository.SectorRepository,
	resolver *PermissionResolver,
	recorder *activity.Recorder,
	log *logger.Logger,
) *UserUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UserUseCase{users: users, mirror: mirror, sectors: sectors, resolver: resolver, activity: recorder, log: log}
}

func (uc *UserUseCase) authorize(actor *access.Actor, op string) error {
	if actor == nil {
		return domain.ErrUnauthorized
	}
	if !actor.Can(entity.PermManageUsers) {
		uc.log.Warn().Int64("actor_id", actor.ID()).Str("op", op).Msg("forbidden: administración de usuarios")
		return domain.ErrForbidden
	}
	if uc.users == nil {
		return fmt.Errorf("%w: base core no disponible", domain.ErrConflict)
	}
	return nil
}

// List usuarios con filtros de rol y sector.
func (uc *UserUseCase) List(ctx context.Context, actor *access.Actor, filter repository.UserFilter) ([]dto.UserResponse, error) {
	if err := uc.authorize(actor, "list"); err != nil {
		return nil, err
	}
	users, err := uc.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserResponse(u))
	}
	return out, nil
}

// Roles catálogo de roles.
func (uc *UserUseCase) Roles(ctx context.Context, actor *access.Actor) ([]dto.RoleResponse, error) {
	if err := uc.authorize(actor, "roles"); err != nil {
		return nil, err
	}
	roles, err := uc.users.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, dto.RoleResponse{ID: r.ID, Slug: r.Slug, Label: r.Label})
	}
	return out, nil
}

// Create alta: core, luego espejo, luego overrides. Si algo falla después de core se
// compensa borrando la fila core.
func (uc *UserUseCase) Create(ctx context.Context, actor *access.Actor, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := uc.authorize(actor, "create"); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(in.Email)
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = entity.RoleViewer
	}

	var verr domain.ValidationErrors
	if !validEmail(email) {
		verr.Add("Valid email required.")
	}
	if in.Password == "" {
		verr.Add("Password required.")
	} else if msg := PasswordStrengthError(in.Password); msg != "" {
		verr.Add(msg)
	}
	if !uc.resolver.Catalog().HasRole(role) {
		verr.Add("Invalid role selection.")
	}
	if err := uc.checkSector(ctx, in.SectorID, &verr); err != nil {
		return nil, err
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &entity.User{
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hash),
		Role:         role,
		SectorID:     in.SectorID,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := uc.afterCoreCreate(ctx, user, in.Permissions); err != nil {
		if delErr := uc.users.Delete(ctx, user.ID); delErr != nil {
			uc.log.Error().Err(delErr).Int64("user_id", user.ID).Msg("compensación: no se pudo borrar el usuario core")
		}
		uc.log.Error().Err(err).Str("email", email).Msg("alta de usuario revertida")
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("no se pudo crear el usuario: %w", err)
	}

	uc.activity.Record(ctx, actor.UserIDPtr(), activity.ActionUserCreate, "user", user.ID,
		map[string]any{"role": role, "sector_id": user.SectorID})
	resp := ToUserResponse(user)
	return &resp, nil
}

func (uc *UserUseCase) afterCoreCreate(ctx context.Context, user *entity.User, perms map[string]string) error {
	if uc.mirror != nil {
		if err := uc.mirror.Upsert(ctx, user); err != nil {
			return err
		}
	}
	if len(perms) > 0 {
		return uc.resolver.saveOverrides(ctx, user.ID, perms)
	}
	return nil
}

// Update edita email, nombre, rol, sector y opcionalmente la contraseña.
func (uc *UserUseCase) Update(ctx context.Context, actor *access.Actor, id int64, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if err := uc.authorize(actor, "update"); err != nil {
		return nil, err
	}
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	email := strings.TrimSpace(in.Email)
	role := strings.TrimSpace(in.Role)
	var verr domain.ValidationErrors
	if !validEmail(email) {
		verr.Add("Valid email required.")
	}
	if !uc.resolver.Catalog().HasRole(role) {
		verr.Add("Invalid role selection.")
	}
	if in.Password != "" {
		if msg := PasswordStrengthError(in.Password); msg != "" {
			verr.Add(msg)
		}
	}
	if err := uc.checkSector(ctx, in.SectorID, &verr); err != nil {
		return nil, err
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	user.Email = email
	user.Name = strings.TrimSpace(in.Name)
	user.Role = role
	user.SectorID = in.SectorID
	if err := uc.users.Update(ctx, user); err != nil {
		return nil, err
	}
	uc.syncMirror(ctx, user)
	uc.resolver.InvalidateUser(ctx, user.ID)
	uc.activity.Record(ctx, actor.UserIDPtr(), activity.ActionUserUpdate, "user", user.ID,
		map[string]any{"role": role, "sector_id": user.SectorID})
	resp := ToUserResponse(user)
	return &resp, nil
}

// SetSuspended suspende o reactiva un usuario.
func (uc *UserUseCase) SetSuspended(ctx context.Context, actor *access.Actor, id int64, suspended bool) (*dto.UserResponse, error) {
	if err := uc.authorize(actor, "suspend"); err != nil {
		return nil, err
	}
	if suspended && id == actor.UserID {
		return nil, domain.ValidationErrors{"You cannot suspend yourself."}
	}
	if err := uc.users.SetSuspended(ctx, id, suspended, actor.UserIDPtr()); err != nil {
		return nil, err
	}
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	uc.syncMirror(ctx, user)
	action := activity.ActionUserUnsuspend
	if suspended {
		action = activity.ActionUserSuspend
	}
	uc.activity.Record(ctx, actor.UserIDPtr(), action, "user", id, nil)
	resp := ToUserResponse(user)
	return &resp, nil
}

// Permissions permisos efectivos y modos de override de un usuario.
func (uc *UserUseCase) Permissions(ctx context.Context, actor *access.Actor, id int64) (*dto.PermissionsResponse, error) {
	if err := uc.authorize(actor, "permissions"); err != nil {
		return nil, err
	}
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	overrides, err := uc.resolver.Overrides(ctx, id)
	if err != nil {
		return nil, err
	}
	modes, err := uc.resolver.OverrideModes(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.PermissionsResponse{
		UserID:    id,
		Effective: uc.resolver.Catalog().Effective(user.Role, overrides),
		Overrides: modes,
	}, nil
}

// SavePermissions guarda overrides y devuelve el estado resultante.
func (uc *UserUseCase) SavePermissions(ctx context.Context, actor *access.Actor, id int64, in dto.PermissionOverridesRequest) (*dto.PermissionsResponse, error) {
	if err := uc.authorize(actor, "save_permissions"); err != nil {
		return nil, err
	}
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if err := uc.resolver.SavePermissionOverrides(ctx, actor, id, in.Permissions); err != nil {
		return nil, err
	}
	uc.activity.Record(ctx, actor.UserIDPtr(), activity.ActionUserPermissions, "user", id, nil)
	return uc.Permissions(ctx, actor, id)
}

// ReconcileMirror re-sincroniza todos los usuarios core en el espejo de apps. Devuelve
// cuántos se sincronizaron; un fallo individual no corta el proceso.
func (uc *UserUseCase) ReconcileMirror(ctx context.Context) (int, error) {
	if uc.users == nil || uc.mirror == nil {
		return 0, nil
	}
	users, err := uc.users.List(ctx, repository.UserFilter{})
	if err != nil {
		return 0, fmt.Errorf("reconciliar espejo: %w", err)
	}
	synced := 0
	for _, u := range users {
		if err := uc.mirror.Upsert(ctx, u); err != nil {
			uc.log.Warn().Err(err).Int64("user_id", u.ID).Msg("reconciliar espejo: usuario omitido")
			continue
		}
		synced++
	}
	return synced, nil
}

func (uc *UserUseCase) syncMirror(ctx context.Context, user *entity.User) {
	if uc.mirror == nil {
		return
	}
	if err := uc.mirror.Upsert(ctx, user); err != nil {
		// La reconciliación periódica lo corrige.
		uc.log.Error().Err(err).Int64("user_id", user.ID).Msg("espejo de usuarios desactualizado")
	}
}

func (uc *UserUseCase) checkSector(ctx context.Context, sectorID *int64, verr *domain.ValidationErrors) error {
	if sectorID == nil || uc.sectors == nil {
		return nil
	}
	s, err := uc.sectors.GetByID(ctx, *sectorID)
	if err != nil {
		return err
	}
	if s == nil {
		verr.Add("Invalid sector selection.")
	}
	return nil
}

// PasswordStrengthError mensaje si la contraseña es débil; "" si es aceptable.
func PasswordStrengthError(pw string) string {
	if len([]rune(pw)) < MinPasswordLength {
		return fmt.Sprintf("Password must be at least %d characters.", MinPasswordLength)
	}
	var letter, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return "Password must contain letters and numbers."
	}
	return ""
}

func validEmail(s string) bool {
	if s == "" {
		return false
	}
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// ToUserResponse mapea entidad -> DTO.
func ToUserResponse(u *entity.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		SectorID:    u.SectorID,
		Suspended:   u.IsSuspended(),
		SuspendedAt: u.SuspendedAt,
		CreatedAt:   u.CreatedAt,
	}
}
