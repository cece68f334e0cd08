package identity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/punchlist-api/internal/application/activity"
	"github.com/jhoicas/punchlist-api/internal/application/dto"
	"github.com/jhoicas/punchlist-api/internal/application/identity"
	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/domain/access"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/internal/domain/repository"
	"github.com/jhoicas/punchlist-api/internal/infrastructure/cache"
	"github.com/jhoicas/punchlist-api/internal/testutil"
	"github.com/jhoicas/punchlist-api/pkg/logger"
)

type userFixture struct {
	users     *testutil.UserRepo
	mirror    *testutil.MirrorRepo
	overrides *testutil.OverrideRepo
	sectors   *testutil.SectorRepo
	log       *testutil.ActivityRepo
	uc        *identity.UserUseCase
	admin     *access.Actor
}

func newUserFixture() *userFixture {
	f := &userFixture{
		users:     testutil.NewUserRepo(entity.User{ID: 1, Email: "root@example.com", Role: entity.RoleRoot}),
		mirror:    testutil.NewMirrorRepo(),
		overrides: testutil.NewOverrideRepo(),
		sectors:   testutil.NewSectorRepo(entity.Sector{ID: 2, Slug: "facilities", Name: "Facilities"}),
		log:       &testutil.ActivityRepo{},
	}
	resolver := identity.NewPermissionResolver(f.users, f.mirror, f.overrides, cache.NewMemoryStore(), time.Minute, nil, logger.Nop())
	f.uc = identity.NewUserUseCase(f.users, f.mirror, f.sectors, resolver, activity.NewRecorder(f.log, logger.Nop()), logger.Nop())
	f.admin = &access.Actor{UserID: 1, Role: entity.RoleRoot, Permissions: map[string]bool{entity.PermManageUsers: true}}
	return f
}

func TestCreateUser_EscribeCoreEspejoYOverrides(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()

	resp, err := f.uc.Create(ctx, f.admin, dto.CreateUserRequest{
		Email:       "tech@example.com",
		Name:        "Tech",
		Password:    "correcthorse9",
		Role:        entity.RoleTechnician,
		SectorID:    sectorPtr(2),
		Permissions: map[string]string{entity.PermInventoryTransfers: "allow"},
	})
	require.NoError(t, err)

	core, _ := f.users.GetByID(ctx, resp.ID)
	require.NotNil(t, core)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(core.PasswordHash), []byte("correcthorse9")))

	mirrored, _ := f.mirror.GetByID(ctx, resp.ID)
	require.NotNil(t, mirrored, "el espejo usa el mismo id")
	assert.Equal(t, "tech@example.com", mirrored.Email)

	assert.Equal(t, map[string]bool{entity.PermInventoryTransfers: true}, f.overrides.Rows(resp.ID))
	assert.Contains(t, f.log.Actions(), activity.ActionUserCreate)
}

func TestCreateUser_CompensaSiFallaElEspejo(t *testing.T) {
	f := newUserFixture()
	f.mirror.FailUpsert = errors.New("apps db down")

	_, err := f.uc.Create(context.Background(), f.admin, dto.CreateUserRequest{
		Email: "x@example.com", Password: "correcthorse9", Role: entity.RoleViewer,
	})
	require.Error(t, err)
	require.Len(t, f.users.Deleted, 1)
	u, _ := f.users.GetByEmail(context.Background(), "x@example.com")
	assert.Nil(t, u, "la fila core se borra")
}

func TestCreateUser_Validaciones(t *testing.T) {
	f := newUserFixture()
	_, err := f.uc.Create(context.Background(), f.admin, dto.CreateUserRequest{
		Email: "no-es-email", Password: "corta", Role: "superhero", SectorID: sectorPtr(99),
	})
	var verr domain.ValidationErrors
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, verr, "Valid email required.")
	assert.Contains(t, verr, "Invalid role selection.")
	assert.Contains(t, verr, "Invalid sector selection.")
	assert.Len(t, verr, 4)
}

func TestCreateUser_EmailDuplicado(t *testing.T) {
	f := newUserFixture()
	_, err := f.uc.Create(context.Background(), f.admin, dto.CreateUserRequest{
		Email: "root@example.com", Password: "correcthorse9", Role: entity.RoleViewer,
	})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestUserAdmin_RequiereManageUsers(t *testing.T) {
	f := newUserFixture()
	viewer := &access.Actor{UserID: 5, Role: entity.RoleViewer, Permissions: map[string]bool{entity.PermViewTasks: true}}
	_, err := f.uc.List(context.Background(), viewer, repository.UserFilter{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestSuspend_ActualizaEspejoYBloqueaResolve(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	created, err := f.uc.Create(ctx, f.admin, dto.CreateUserRequest{Email: "s@example.com", Password: "correcthorse9", Role: entity.RoleViewer})
	require.NoError(t, err)

	resp, err := f.uc.SetSuspended(ctx, f.admin, created.ID, true)
	require.NoError(t, err)
	assert.True(t, resp.Suspended)
	m, _ := f.mirror.GetByID(ctx, created.ID)
	assert.True(t, m.IsSuspended())

	resolver := identity.NewPermissionResolver(f.users, f.mirror, f.overrides, nil, 0, nil, nil)
	_, err = resolver.Resolve(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrSuspended)

	resp, err = f.uc.SetSuspended(ctx, f.admin, created.ID, false)
	require.NoError(t, err)
	assert.False(t, resp.Suspended)

	_, err = f.uc.SetSuspended(ctx, f.admin, f.admin.UserID, true)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateUser_PasswordOpcional(t *testing.T) {
	f := newUserFixture()
	ctx := context.Background()
	created, err := f.uc.Create(ctx, f.admin, dto.CreateUserRequest{Email: "u@example.com", Password: "correcthorse9", Role: entity.RoleViewer})
	require.NoError(t, err)
	before, _ := f.users.GetByID(ctx, created.ID)

	resp, err := f.uc.Update(ctx, f.admin, created.ID, dto.UpdateUserRequest{Email: "u2@example.com", Role: entity.RoleManager, SectorID: sectorPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleManager, resp.Role)

	after, _ := f.users.GetByID(ctx, created.ID)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
	m, _ := f.mirror.GetByID(ctx, created.ID)
	assert.Equal(t, "u2@example.com", m.Email)
}

func TestReconcileMirror(t *testing.T) {
	f := newUserFixture()
	n, err := f.uc.ReconcileMirror(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, f.mirror.Len())
}

func TestPasswordStrengthError(t *testing.T) {
	assert.NotEmpty(t, identity.PasswordStrengthError("short1"))
	assert.NotEmpty(t, identity.PasswordStrengthError("onlyletterslong"))
	assert.NotEmpty(t, identity.PasswordStrengthError("1234567890"))
	assert.Empty(t, identity.PasswordStrengthError("letters4567"))
}
