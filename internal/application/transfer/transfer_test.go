package transfer_test

import (
	"testing"

	"github.com/jhoicas/punchlist-api/internal/application/activity"
	"github.com/jhoicas/punchlist-api/internal/application/transfer"
	"github.com/jhoicas/punchlist-api/internal/domain/access"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/internal/testutil"
	"github.com/jhoicas/punchlist-api/pkg/logger"
)

var (
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	exeBytes = []byte("MZ\x90\x00\x03\x00\x00\x00\x04\x00\x00\x00\xff\xff\x00\x00")
)

func id(v int64) *int64 { return &v }

type fixture struct {
	ledger   *testutil.Ledger
	blobs    *testutil.BlobStore
	renderer *testutil.FormRenderer
	sectors  *testutil.SectorRepo
	users    *testutil.UserRepo
	activity *testutil.ActivityRepo
	docs     *transfer.DocumentService
	uc       *transfer.UseCase
	item     *entity.InventoryItem
	pending  *entity.InventoryMovement
	plain    *entity.InventoryMovement
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ledger:   testutil.NewLedger(),
		blobs:    testutil.NewBlobStore(),
		renderer: &testutil.FormRenderer{},
		sectors: testutil.NewSectorRepo(
			entity.Sector{ID: 1, Slug: "facilities", Name: "Facilities"},
			entity.Sector{ID: 2, Slug: "it", Name: "IT"},
		),
		users:    testutil.NewUserRepo(entity.User{ID: 7, Email: "ana@example.com", Name: "Ana Ruiz", Role: entity.RoleManager}),
		activity: &testutil.ActivityRepo{},
	}
	f.item = f.ledger.SeedItem(entity.InventoryItem{Name: "Light bulb E27", SKU: "LB-E27", SectorID: id(1), Quantity: 6})
	f.pending = f.ledger.SeedMovement(entity.InventoryMovement{
		ItemID: f.item.ID, Direction: entity.DirectionOut, Amount: 4, Reason: "Lobby refit",
		UserID: id(7), SourceSectorID: id(1), TargetSectorID: id(2),
		RequiresSignature: true, TransferStatus: entity.TransferPending,
	})
	f.plain = f.ledger.SeedMovement(entity.InventoryMovement{
		ItemID: f.item.ID, Direction: entity.DirectionIn, Amount: 10,
		RequiresSignature: false, TransferStatus: entity.TransferSigned,
	})
	log := logger.Nop()
	labels := transfer.NewLabeler(f.sectors, f.users, log)
	f.docs = transfer.NewDocumentService(f.ledger.Movements(), f.renderer, f.blobs, labels, log)
	f.uc = transfer.NewUseCase(f.ledger.Movements(), f.ledger.Tx(), f.blobs, f.docs, activity.NewRecorder(f.activity, log), log, 0)
	return f
}

func manager(sector int64) *access.Actor {
	return &access.Actor{
		UserID:      7,
		Role:        entity.RoleManager,
		SectorID:    &sector,
		Permissions: map[string]bool{entity.PermInventoryView: true, entity.PermInventoryManage: true},
	}
}

func signer(sector int64) *access.Actor {
	return &access.Actor{
		UserID:      9,
		Role:        entity.RoleTechnician,
		SectorID:    &sector,
		Permissions: map[string]bool{entity.PermInventoryView: true, entity.PermInventoryTransfers: true},
	}
}
