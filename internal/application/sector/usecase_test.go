package sector_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/punchlist-api/internal/application/activity"
	"github.com/jhoicas/punchlist-api/internal/application/dto"
	"github.com/jhoicas/punchlist-api/internal/application/sector"
	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/domain/access"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/internal/testutil"
	"github.com/jhoicas/punchlist-api/pkg/logger"
)

func id(v int64) *int64 { return &v }

func admin() *access.Actor {
	return &access.Actor{UserID: 1, Role: entity.RoleAdmin, Permissions: map[string]bool{entity.PermManageSectors: true}}
}

type fixture struct {
	sectors *testutil.SectorRepo
	users   *testutil.UserRepo
	ledger  *testutil.Ledger
	log     *testutil.ActivityRepo
	uc      *sector.UseCase
}

func newFixture() *fixture {
	f := &fixture{
		sectors: testutil.NewSectorRepo(entity.Sector{ID: 1, Slug: "facilities", Name: "Facilities"}),
		users:   testutil.NewUserRepo(entity.User{ID: 5, Email: "lead@example.com", Role: entity.RoleManager}),
		ledger:  testutil.NewLedger(),
		log:     &testutil.ActivityRepo{},
	}
	f.sectors.Users = f.users
	f.uc = sector.NewUseCase(f.sectors, f.users, f.ledger.Items(), activity.NewRecorder(f.log, logger.Nop()), logger.Nop())
	return f
}

func TestCreateSector_NormalizaCamposYDescartaResponsableInexistente(t *testing.T) {
	f := newFixture()
	resp, err := f.uc.Create(context.Background(), admin(), dto.SectorRequest{
		Slug: "  IT-Ops ", Name: " IT Operations ", ColorHex: "0EA5E9", ManagerUserID: id(99),
	})
	require.NoError(t, err)
	assert.Equal(t, "it-ops", resp.Slug)
	assert.Equal(t, "IT Operations", resp.Name)
	assert.Equal(t, "#0ea5e9", resp.ColorHex)
	assert.Nil(t, resp.ManagerUserID)
	assert.Contains(t, f.log.Actions(), activity.ActionSectorCreate)

	resp, err = f.uc.Create(context.Background(), admin(), dto.SectorRequest{Name: "Mantenimiento Eléctrico", ManagerUserID: id(5)})
	require.NoError(t, err)
	assert.Equal(t, "mantenimiento-electrico", resp.Slug)
	assert.Equal(t, int64(5), *resp.ManagerUserID)
}

func TestCreateSector_Validaciones(t *testing.T) {
	f := newFixture()
	_, err := f.uc.Create(context.Background(), admin(), dto.SectorRequest{
		Slug: "bad slug!", ContactEmail: "nope", ColorHex: "#12345",
	})
	var verr domain.ValidationErrors
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr, 4)

	_, err = f.uc.Create(context.Background(), admin(), dto.SectorRequest{Slug: "facilities", Name: "Dup"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestSector_RequiereManageSectors(t *testing.T) {
	f := newFixture()
	viewer := &access.Actor{UserID: 2, Role: entity.RoleViewer, Permissions: map[string]bool{entity.PermViewTasks: true}}
	_, err := f.uc.Create(context.Background(), viewer, dto.SectorRequest{Slug: "x", Name: "X"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, f.uc.Delete(context.Background(), viewer, 1), domain.ErrForbidden)

	list, err := f.uc.List(context.Background(), viewer)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpdateSector(t *testing.T) {
	f := newFixture()
	resp, err := f.uc.Update(context.Background(), admin(), 1, dto.SectorRequest{Slug: "facilities", Name: "Facilities & Grounds"})
	require.NoError(t, err)
	assert.Equal(t, "Facilities & Grounds", resp.Name)

	_, err = f.uc.Update(context.Background(), admin(), 42, dto.SectorRequest{Slug: "x", Name: "X"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteSector_BloqueadoSiEstaEnUso(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.ledger.SeedItem(entity.InventoryItem{Name: "Mop", SectorID: id(1)})
	assert.ErrorIs(t, f.uc.Delete(ctx, admin(), 1), domain.ErrInUse)

	it, err := f.uc.Create(ctx, admin(), dto.SectorRequest{Slug: "hr", Name: "HR"})
	require.NoError(t, err)
	require.NoError(t, f.users.Create(ctx, &entity.User{Email: "hr@example.com", Role: entity.RoleViewer, SectorID: id(it.ID)}))
	assert.ErrorIs(t, f.uc.Delete(ctx, admin(), it.ID), domain.ErrInUse)

	empty, err := f.uc.Create(ctx, admin(), dto.SectorRequest{Slug: "empty", Name: "Empty"})
	require.NoError(t, err)
	require.NoError(t, f.uc.Delete(ctx, admin(), empty.ID))
	assert.ErrorIs(t, f.uc.Delete(ctx, admin(), empty.ID), domain.ErrNotFound)
}

func TestSectors_SinBaseCore(t *testing.T) {
	uc := sector.NewUseCase(nil, nil, testutil.NewLedger().Items(), nil, nil)

	list, err := uc.List(context.Background(), admin())
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = uc.Create(context.Background(), admin(), dto.SectorRequest{Slug: "it", Name: "IT"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}
