package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/domain/access"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
)

func ptr(v int64) *int64 { return &v }

func TestAuthorizeSectorAccess_RootAccedeATodo(t *testing.T) {
	root := &access.Actor{UserID: 1, Role: entity.RoleRoot}
	assert.NoError(t, access.AuthorizeSectorAccess(root, ptr(7), access.ActionWrite))
	assert.NoError(t, access.AuthorizeSectorAccess(root, nil, access.ActionWrite))
}

func TestAuthorizeSectorAccess_MismoSector(t *testing.T) {
	actor := &access.Actor{UserID: 2, Role: entity.RoleManager, SectorID: ptr(3)}
	assert.NoError(t, access.AuthorizeSectorAccess(actor, ptr(3), access.ActionWrite))
}

func TestAuthorizeSectorAccess_OtroSectorEsForbidden(t *testing.T) {
	actor := &access.Actor{UserID: 2, Role: entity.RoleManager, SectorID: ptr(3)}
	err := access.AuthorizeSectorAccess(actor, ptr(4), access.ActionWrite)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = access.AuthorizeSectorAccess(actor, nil, access.ActionRead)
	assert.ErrorIs(t, err, domain.ErrForbidden, "un actor con sector no ve registros sin asignar")
}

func TestAuthorizeSectorAccess_SinSectorSoloSinAsignar(t *testing.T) {
	actor := &access.Actor{UserID: 2, Role: entity.RoleTechnician}
	assert.NoError(t, access.AuthorizeSectorAccess(actor, nil, access.ActionWrite))
	assert.ErrorIs(t, access.AuthorizeSectorAccess(actor, ptr(1), access.ActionRead), domain.ErrForbidden)
}

func TestAuthorizeSectorAccess_SinActor(t *testing.T) {
	assert.ErrorIs(t, access.AuthorizeSectorAccess(nil, nil, access.ActionRead), domain.ErrUnauthorized)
}

func TestScopeFor_RootEligeFiltro(t *testing.T) {
	root := &access.Actor{Role: entity.RoleRoot}

	f, err := access.ScopeFor(root, "")
	require.NoError(t, err)
	assert.True(t, f.All)

	f, err = access.ScopeFor(root, "null")
	require.NoError(t, err)
	assert.True(t, f.Unassigned)

	f, err = access.ScopeFor(root, "12")
	require.NoError(t, err)
	require.NotNil(t, f.SectorID)
	assert.Equal(t, int64(12), *f.SectorID)

	_, err = access.ScopeFor(root, "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestScopeFor_NoRootIgnoraLoSolicitado(t *testing.T) {
	actor := &access.Actor{Role: entity.RoleManager, SectorID: ptr(5)}
	f, err := access.ScopeFor(actor, "all")
	require.NoError(t, err)
	assert.False(t, f.All)
	require.NotNil(t, f.SectorID)
	assert.Equal(t, int64(5), *f.SectorID)
	assert.True(t, f.Matches(ptr(5)))
	assert.False(t, f.Matches(ptr(6)))
	assert.False(t, f.Matches(nil))

	noSector := &access.Actor{Role: entity.RoleViewer}
	f, err = access.ScopeFor(noSector, "5")
	require.NoError(t, err)
	assert.True(t, f.Unassigned)
	assert.True(t, f.Matches(nil))
}

func TestCoerceSector(t *testing.T) {
	root := &access.Actor{Role: entity.RoleRoot}
	assert.Equal(t, int64(9), *access.CoerceSector(root, ptr(9)))
	assert.Nil(t, access.CoerceSector(root, nil))

	actor := &access.Actor{Role: entity.RoleManager, SectorID: ptr(2)}
	assert.Equal(t, int64(2), *access.CoerceSector(actor, ptr(9)))

	noSector := &access.Actor{Role: entity.RoleManager}
	assert.Nil(t, access.CoerceSector(noSector, ptr(9)))
}
