package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/punchlist-api/internal/application/activity"
	"github.com/jhoicas/punchlist-api/internal/application/dto"
	"github.com/jhoicas/punchlist-api/internal/application/identity"
	"github.com/jhoicas/punchlist-api/internal/application/inventory"
	"github.com/jhoicas/punchlist-api/internal/application/transfer"
	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/domain/access"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/internal/infrastructure/cache"
	"github.com/jhoicas/punchlist-api/internal/testutil"
	"github.com/jhoicas/punchlist-api/pkg/logger"
)

func id(v int64) *int64 { return &v }

type fixture struct {
	ledger   *testutil.Ledger
	blobs    *testutil.BlobStore
	renderer *testutil.FormRenderer
	sectors  *testutil.SectorRepo
	activity *testutil.ActivityRepo
	uc       *inventory.LedgerUseCase
	upload   *transfer.UseCase
}

func newFixture() *fixture {
	f := &fixture{
		ledger:   testutil.NewLedger(),
		blobs:    testutil.NewBlobStore(),
		renderer: &testutil.FormRenderer{},
		sectors: testutil.NewSectorRepo(
			entity.Sector{ID: 1, Slug: "facilities", Name: "Facilities"},
			entity.Sector{ID: 2, Slug: "it", Name: "IT"},
		),
		activity: &testutil.ActivityRepo{},
	}
	log := logger.Nop()
	users := testutil.NewUserRepo(entity.User{ID: 7, Email: "ana@example.com", Name: "Ana", Role: entity.RoleManager})
	labels := transfer.NewLabeler(f.sectors, users, log)
	recorder := activity.NewRecorder(f.activity, log)
	docs := transfer.NewDocumentService(f.ledger.Movements(), f.renderer, f.blobs, labels, log)
	f.uc = inventory.NewLedgerUseCase(f.ledger.Tx(), f.ledger.Items(), f.ledger.Movements(), f.ledger.Attachments(), docs, labels, recorder, log)
	f.upload = transfer.NewUseCase(f.ledger.Movements(), f.ledger.Tx(), f.blobs, docs, recorder, log, 0)
	return f
}

func manager(sector *int64) *access.Actor {
	return &access.Actor{
		UserID:   7,
		Role:     entity.RoleManager,
		SectorID: sector,
		Permissions: map[string]bool{
			entity.PermInventoryView: true, entity.PermInventoryManage: true, entity.PermInventoryTransfers: true,
		},
	}
}

func root() *access.Actor {
	return &access.Actor{UserID: 1, Role: entity.RoleRoot, Permissions: entity.DefaultPermissionCatalog().Effective(entity.RoleRoot, nil)}
}

func move(itemID int64, dir string, amount int, sig bool) inventory.MovementInput {
	return inventory.MovementInput{ItemID: itemID, Direction: dir, Amount: amount, RequiresSignature: sig}
}

func sumOfMovements(f *fixture, itemID int64) int {
	total := 0
	for _, m := range f.ledger.MovementsOf(itemID) {
		total += m.SignedAmount()
	}
	return total
}

func TestLedger_EscenarioBombilla(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	actor := manager(id(1))

	item, err := f.uc.CreateItem(ctx, actor, dto.CreateItemRequest{Name: "Light bulb E27", Quantity: 10, SectorID: id(1)})
	require.NoError(t, err)
	movs := f.ledger.MovementsOf(item.ID)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.DirectionIn, movs[0].Direction)
	assert.Equal(t, 10, movs[0].Amount)
	assert.Equal(t, entity.ReasonInitialQuantity, movs[0].Reason)
	assert.Equal(t, int64(7), *movs[0].UserID)

	resp, err := f.uc.MoveStock(ctx, actor, move(item.ID, entity.DirectionOut, 4, true))
	require.NoError(t, err)
	assert.Equal(t, 6, resp.Quantity)
	assert.Equal(t, entity.TransferPending, resp.Movement.TransferStatus)
	assert.Equal(t, inventory.MsgStockUpdatedForm, resp.Message)
	assert.Empty(t, resp.Warning)
	assert.NotEmpty(t, resp.Movement.TransferFormURL)
	assert.Equal(t, "Facilities", resp.Movement.SourceSectorName, "out toma el sector del artículo como origen")
	assert.Equal(t, transfer.LabelUnassigned, resp.Movement.TargetSectorName)

	up, err := f.upload.UploadAttachment(ctx, actor, transfer.UploadInput{
		MovementID: resp.Movement.ID, Filename: "signed.pdf", Data: []byte("%PDF-1.4\n%%EOF\n"), Kind: entity.AttachmentSignature,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferSigned, up.TransferStatus)
	assert.Len(t, f.ledger.AttachmentsOf(resp.Movement.ID), 1)
	assert.Equal(t, 6, f.ledger.Quantity(item.ID))
	assert.Equal(t, f.ledger.Quantity(item.ID), sumOfMovements(f, item.ID))
}

func TestMoveStock_StockInsuficiente(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	it := f.ledger.SeedItem(entity.InventoryItem{Name: "Mop", SectorID: id(1), Quantity: 6})

	_, err := f.uc.MoveStock(ctx, manager(id(1)), move(it.ID, entity.DirectionOut, 20, false))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 6, f.ledger.Quantity(it.ID))
	assert.Empty(t, f.ledger.MovementsOf(it.ID))
}

func TestMoveStock_SinFirmaQuedaSigned(t *testing.T) {
	f := newFixture()
	it := f.ledger.SeedItem(entity.InventoryItem{Name: "Mop", SectorID: id(1), Quantity: 2})
	resp, err := f.uc.MoveStock(context.Background(), manager(id(1)), move(it.ID, entity.DirectionIn, 3, false))
	require.NoError(t, err)
	assert.Equal(t, entity.TransferSigned, resp.Movement.TransferStatus)
	assert.Equal(t, inventory.MsgStockUpdated, resp.Message)
	assert.Empty(t, f.renderer.Calls, "sin firma no se genera formulario")
	assert.Equal(t, "Facilities", resp.Movement.TargetSectorName, "in toma el sector del artículo como destino")
	assert.Equal(t, 5, resp.Quantity)
}

func TestMoveStock_OtroSectorProhibido(t *testing.T) {
	f := newFixture()
	it := f.ledger.SeedItem(entity.InventoryItem{Name: "Mop", SectorID: id(2), Quantity: 5})

	_, err := f.uc.MoveStock(context.Background(), manager(id(1)), move(it.ID, entity.DirectionOut, 1, false))
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, 5, f.ledger.Quantity(it.ID))
	assert.Empty(t, f.ledger.MovementsOf(it.ID))

	_, err = f.uc.MoveStock(context.Background(), manager(nil), move(it.ID, entity.DirectionOut, 1, false))
	assert.ErrorIs(t, err, domain.ErrForbidden, "sin sector solo opera artículos sin asignar")

	_, err = f.uc.MoveStock(context.Background(), root(), move(it.ID, entity.DirectionOut, 1, false))
	assert.NoError(t, err, "root ignora el sector")
}

func TestMoveStock_FalloDeInsercionRevierteCantidad(t *testing.T) {
	f := newFixture()
	it := f.ledger.SeedItem(entity.InventoryItem{Name: "Mop", SectorID: id(1), Quantity: 5})
	f.ledger.FailMovementCreate = errors.New("disk full")

	_, err := f.uc.MoveStock(context.Background(), manager(id(1)), move(it.ID, entity.DirectionOut, 2, false))
	assert.ErrorIs(t, err, domain.ErrMovementFailed)
	assert.NotContains(t, err.Error(), "disk full")
	assert.Equal(t, 5, f.ledger.Quantity(it.ID))
}

func TestMoveStock_FalloDelFormularioNoRevierte(t *testing.T) {
	f := newFixture()
	it := f.ledger.SeedItem(entity.InventoryItem{Name: "Mop", SectorID: id(1), Quantity: 5})
	f.blobs.FailPut = errors.New("storage unavailable")

	resp, err := f.uc.MoveStock(context.Background(), manager(id(1)), move(it.ID, entity.DirectionOut, 2, true))
	require.NoError(t, err)
	assert.Equal(t, inventory.WarnFormGenerationErr, resp.Warning)
	assert.Equal(t, 3, f.ledger.Quantity(it.ID))
	require.Len(t, f.ledger.MovementsOf(it.ID), 1)
	assert.Equal(t, entity.TransferPending, f.ledger.MovementsOf(it.ID)[0].TransferStatus)
}

func TestMoveStock_EntradaInvalida(t *testing.T) {
	f := newFixture()
	it := f.ledger.SeedItem(entity.InventoryItem{Name: "Mop", SectorID: id(1), Quantity: 5})
	ctx := context.Background()

	_, err := f.uc.MoveStock(ctx, manager(id(1)), move(it.ID, entity.DirectionOut, 0, false))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.MoveStock(ctx, manager(id(1)), move(it.ID, "sideways", 1, false))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.MoveStock(ctx, manager(id(1)), move(999, entity.DirectionIn, 1, false))
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 5, f.ledger.Quantity(it.ID))
}

func TestMoveStock_SecuenciaMantieneInvariante(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	actor := manager(id(1))
	item, err := f.uc.CreateItem(ctx, actor, dto.CreateItemRequest{Name: "Filter", Quantity: 3})
	require.NoError(t, err)

	steps := []struct {
		dir    string
		amount int
	}{
		{entity.DirectionOut, 2}, {entity.DirectionOut, 2}, {entity.DirectionIn, 5},
		{entity.DirectionOut, 7}, {entity.DirectionOut, 6}, {entity.DirectionIn, 1},
	}
	for _, s := range steps {
		_, _ = f.uc.MoveStock(ctx, actor, move(item.ID, s.dir, s.amount, false))
		q := f.ledger.Quantity(item.ID)
		assert.GreaterOrEqual(t, q, 0)
		assert.Equal(t, q, sumOfMovements(f, item.ID))
	}
	assert.Equal(t, 0, f.ledger.Quantity(item.ID))
}

func TestMoveStock_SalidasConcurrentesNoDejanNegativo(t *testing.T) {
	f := newFixture()
	it := f.ledger.SeedItem(entity.InventoryItem{Name: "Mop", SectorID: id(1), Quantity: 10})
	actor := manager(id(1))

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.uc.MoveStock(context.Background(), actor, move(it.ID, entity.DirectionOut, 3, false)); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, ok)
	assert.Equal(t, 1, f.ledger.Quantity(it.ID))
	assert.Len(t, f.ledger.MovementsOf(it.ID), 3)
}

func TestCreateItem_SectorForzadoYValidaciones(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	item, err := f.uc.CreateItem(ctx, manager(id(1)), dto.CreateItemRequest{Name: " Ladder ", SectorID: id(2)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), *item.SectorID, "no root recibe su propio sector")
	assert.Equal(t, "Ladder", item.Name)
	assert.Empty(t, f.ledger.MovementsOf(item.ID), "sin cantidad inicial no hay movimiento")

	item, err = f.uc.CreateItem(ctx, root(), dto.CreateItemRequest{Name: "Drill", SectorID: id(2)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), *item.SectorID)
	assert.Equal(t, "IT", item.SectorName)

	_, err = f.uc.CreateItem(ctx, manager(id(1)), dto.CreateItemRequest{Name: "  ", Quantity: -1})
	var verr domain.ValidationErrors
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr, 2)
}

func TestCreateItem_FalloDelMovimientoInicialRevierteElAlta(t *testing.T) {
	f := newFixture()
	f.ledger.FailMovementCreate = errors.New("boom")
	_, err := f.uc.CreateItem(context.Background(), manager(id(1)), dto.CreateItemRequest{Name: "Ladder", Quantity: 4})
	assert.ErrorIs(t, err, domain.ErrMovementFailed)
	list, err := f.ledger.Items().List(context.Background(), access.SectorFilter{All: true})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestUpdateItem(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	it := f.ledger.SeedItem(entity.InventoryItem{Name: "Mop", SectorID: id(1), Quantity: 5})
	other := f.ledger.SeedItem(entity.InventoryItem{Name: "Broom", SectorID: id(2), Quantity: 1})

	resp, err := f.uc.UpdateItem(ctx, manager(id(1)), it.ID, dto.UpdateItemRequest{Name: "Wet mop", Location: "B2", SectorID: id(2)})
	require.NoError(t, err)
	assert.Equal(t, "Wet mop", resp.Name)
	assert.Equal(t, int64(1), *resp.SectorID)
	assert.Equal(t, 5, resp.Quantity, "editar no toca la cantidad")

	_, err = f.uc.UpdateItem(ctx, manager(id(1)), other.ID, dto.UpdateItemRequest{Name: "Hack"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	got, _ := f.ledger.Items().GetByID(ctx, other.ID)
	assert.Equal(t, "Broom", got.Name)

	_, err = f.uc.UpdateItem(ctx, manager(id(1)), 999, dto.UpdateItemRequest{Name: "X"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOverrideDenyBloqueaAltaInmediatamente(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	users := testutil.NewUserRepo(
		entity.User{ID: 1, Role: entity.RoleRoot},
		entity.User{ID: 7, Role: entity.RoleManager, SectorID: id(1)},
	)
	overrides := testutil.NewOverrideRepo()
	resolver := identity.NewPermissionResolver(users, nil, overrides, cache.NewMemoryStore(), 0, nil, logger.Nop())

	actor, err := resolver.Resolve(ctx, 7)
	require.NoError(t, err)
	require.True(t, actor.Can(entity.PermInventoryManage))

	admin, err := resolver.Resolve(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, resolver.SavePermissionOverrides(ctx, admin, 7, map[string]string{entity.PermInventoryManage: "deny"}))

	actor, err = resolver.Resolve(ctx, 7)
	require.NoError(t, err)
	assert.False(t, actor.Can(entity.PermInventoryManage))
	_, err = f.uc.CreateItem(ctx, actor, dto.CreateItemRequest{Name: "Ladder"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestListItems_AlcancePorSector(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.ledger.SeedItem(entity.InventoryItem{Name: "A", SectorID: id(1), Quantity: 1})
	f.ledger.SeedItem(entity.InventoryItem{Name: "B", SectorID: id(2), Quantity: 1})
	f.ledger.SeedItem(entity.InventoryItem{Name: "C", Quantity: 1})
	for i := 0; i < 7; i++ {
		_, err := f.uc.MoveStock(ctx, manager(id(1)), move(a.ID, entity.DirectionIn, 1, false))
		require.NoError(t, err)
	}

	list, err := f.uc.ListItems(ctx, manager(id(1)), "all")
	require.NoError(t, err)
	assert.Equal(t, "1", list.Sector, "no root queda fijado a su sector")
	require.Len(t, list.Items, 1)
	assert.Len(t, list.Items[0].Movements, 5)
	assert.Equal(t, "Ana", list.Items[0].Movements[0].ActorLabel)
	assert.Equal(t, "Facilities", list.Items[0].SectorName)

	list, err = f.uc.ListItems(ctx, manager(nil), "")
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "C", list.Items[0].Name)

	list, err = f.uc.ListItems(ctx, root(), "all")
	require.NoError(t, err)
	assert.Len(t, list.Items, 3)

	list, err = f.uc.ListItems(ctx, root(), "unassigned")
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	noView := manager(id(1))
	noView.Permissions = map[string]bool{}
	_, err = f.uc.ListItems(ctx, noView, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestPendingTransfers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.ledger.SeedItem(entity.InventoryItem{Name: "A", SectorID: id(1), Quantity: 10})
	b := f.ledger.SeedItem(entity.InventoryItem{Name: "B", SectorID: id(2), Quantity: 10})
	first, err := f.uc.MoveStock(ctx, manager(id(1)), move(a.ID, entity.DirectionOut, 1, true))
	require.NoError(t, err)
	second, err := f.uc.MoveStock(ctx, manager(id(1)), move(a.ID, entity.DirectionOut, 1, true))
	require.NoError(t, err)
	_, err = f.uc.MoveStock(ctx, manager(id(1)), move(a.ID, entity.DirectionOut, 1, false))
	require.NoError(t, err)
	_, err = f.uc.MoveStock(ctx, root(), move(b.ID, entity.DirectionOut, 1, true))
	require.NoError(t, err)

	pending, err := f.uc.PendingTransfers(ctx, manager(id(1)), "")
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, second.Movement.ID, pending[0].ID, "más recientes primero")
	assert.Equal(t, first.Movement.ID, pending[1].ID)
	assert.Equal(t, "A", pending[0].ItemName)

	all, err := f.uc.PendingTransfers(ctx, root(), "all")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	viewer := manager(id(1))
	viewer.Permissions = map[string]bool{entity.PermInventoryView: true}
	_, err = f.uc.PendingTransfers(ctx, viewer, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
