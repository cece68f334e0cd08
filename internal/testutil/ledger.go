// Package testutil repositorios en memoria que respetan los mismos contratos que los
// adaptadores PostgreSQL (cantidad no negativa, estado de traslado solo hacia adelante,
// rollback de la transacción completa). Solo para tests.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/domain/access"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/internal/domain/repository"
)

// Ledger estado en memoria de artículos, movimientos y adjuntos.
type Ledger struct {
	mu          sync.Mutex
	txMu        sync.Mutex
	items       map[int64]entity.InventoryItem
	movements   map[int64]entity.InventoryMovement
	attachments map[int64]entity.MovementAttachment
	nextID      int64
	clock       time.Time

	// Inyección de fallos.
	FailMovementCreate   error
	FailAttachmentCreate error
	FailMarkSigned       error
}

// NewLedger crea un ledger vacío.
func NewLedger() *Ledger {
	return &Ledger{
		items:       map[int64]entity.InventoryItem{},
		movements:   map[int64]entity.InventoryMovement{},
		attachments: map[int64]entity.MovementAttachment{},
		clock:       time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (l *Ledger) id() int64 {
	l.nextID++
	return l.nextID
}

func (l *Ledger) tick() time.Time {
	l.clock = l.clock.Add(time.Second)
	return l.clock
}

// Items repositorio de artículos.
func (l *Ledger) Items() *ItemRepo { return &ItemRepo{l: l} }

// Movements repositorio de movimientos.
func (l *Ledger) Movements() *MovementRepo { return &MovementRepo{l: l} }

// Attachments repositorio de adjuntos.
func (l *Ledger) Attachments() *AttachmentRepo { return &AttachmentRepo{l: l} }

// Tx runner transaccional.
func (l *Ledger) Tx() *TxRunner { return &TxRunner{l: l} }

// SeedItem inserta un artículo directamente (sin movimiento).
func (l *Ledger) SeedItem(item entity.InventoryItem) *entity.InventoryItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	if item.ID == 0 {
		item.ID = l.id()
	}
	item.CreatedAt = l.tick()
	item.UpdatedAt = item.CreatedAt
	l.items[item.ID] = item
	out := item
	return &out
}

// SeedMovement inserta un movimiento directamente.
func (l *Ledger) SeedMovement(m entity.InventoryMovement) *entity.InventoryMovement {
	l.mu.Lock()
	defer l.mu.Unlock()
	if m.ID == 0 {
		m.ID = l.id()
	}
	m.CreatedAt = l.tick()
	l.movements[m.ID] = m
	out := m
	return &out
}

// Quantity cantidad actual del artículo.
func (l *Ledger) Quantity(itemID int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.items[itemID].Quantity
}

// MovementsOf movimientos del artículo en orden de inserción.
func (l *Ledger) MovementsOf(itemID int64) []entity.InventoryMovement {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []entity.InventoryMovement
	for _, m := range l.movements {
		if m.ItemID == itemID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Movement movimiento por id.
func (l *Ledger) Movement(id int64) (entity.InventoryMovement, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.movements[id]
	return m, ok
}

// AttachmentsOf adjuntos del movimiento.
func (l *Ledger) AttachmentsOf(movementID int64) []entity.MovementAttachment {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.attachmentsOf(movementID)
}

func (l *Ledger) attachmentsOf(movementID int64) []entity.MovementAttachment {
	var out []entity.MovementAttachment
	for _, a := range l.attachments {
		if a.MovementID == movementID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type snapshot struct {
	items       map[int64]entity.InventoryItem
	movements   map[int64]entity.InventoryMovement
	attachments map[int64]entity.MovementAttachment
	nextID      int64
}

func (l *Ledger) snapshot() snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := snapshot{
		items:       make(map[int64]entity.InventoryItem, len(l.items)),
		movements:   make(map[int64]entity.InventoryMovement, len(l.movements)),
		attachments: make(map[int64]entity.MovementAttachment, len(l.attachments)),
		nextID:      l.nextID,
	}
	for k, v := range l.items {
		s.items[k] = v
	}
	for k, v := range l.movements {
		s.movements[k] = v
	}
	for k, v := range l.attachments {
		s.attachments[k] = v
	}
	return s
}

func (l *Ledger) restore(s snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = s.items
	l.movements = s.movements
	l.attachments = s.attachments
	l.nextID = s.nextID
}

// TxRunner serializa las transacciones y restaura el estado si fn falla.
type TxRunner struct {
	l *Ledger
}

// Run ejecuta fn de forma atómica.
func (t *TxRunner) Run(ctx context.Context, fn func(
	itemRepo repository.InventoryItemRepository,
	movRepo repository.InventoryMovementRepository,
	attRepo repository.MovementAttachmentRepository,
) error) error {
	t.l.txMu.Lock()
	defer t.l.txMu.Unlock()
	snap := t.l.snapshot()
	if err := fn(t.l.Items(), t.l.Movements(), t.l.Attachments()); err != nil {
		t.l.restore(snap)
		return err
	}
	return nil
}

// ItemRepo implementa repository.InventoryItemRepository.
type ItemRepo struct{ l *Ledger }

var _ repository.InventoryItemRepository = (*ItemRepo)(nil)

func (r *ItemRepo) Create(_ context.Context, item *entity.InventoryItem) error {
	if item.Quantity < 0 {
		return domain.ValidationErrors{"Quantity cannot be negative."}
	}
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	item.ID = r.l.id()
	item.CreatedAt = r.l.tick()
	item.UpdatedAt = item.CreatedAt
	r.l.items[item.ID] = *item
	return nil
}

func (r *ItemRepo) GetByID(_ context.Context, id int64) (*entity.InventoryItem, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	it, ok := r.l.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (r *ItemRepo) GetForUpdate(ctx context.Context, id int64) (*entity.InventoryItem, error) {
	return r.GetByID(ctx, id)
}

func (r *ItemRepo) Update(_ context.Context, item *entity.InventoryItem) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	cur, ok := r.l.items[item.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Name, cur.SKU, cur.Location, cur.SectorID = item.Name, item.SKU, item.Location, item.SectorID
	cur.UpdatedAt = r.l.tick()
	r.l.items[item.ID] = cur
	item.UpdatedAt = cur.UpdatedAt
	return nil
}

func (r *ItemRepo) ApplyDelta(_ context.Context, id int64, delta int) (int, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	cur, ok := r.l.items[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	if cur.Quantity+delta < 0 {
		return 0, domain.ErrInsufficientStock
	}
	cur.Quantity += delta
	cur.UpdatedAt = r.l.tick()
	r.l.items[id] = cur
	return cur.Quantity, nil
}

func (r *ItemRepo) List(_ context.Context, filter access.SectorFilter) ([]*entity.InventoryItem, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var out []*entity.InventoryItem
	for _, it := range r.l.items {
		if filter.Matches(it.SectorID) {
			it := it
			out = append(out, &it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ItemRepo) CountBySector(_ context.Context, sectorID int64) (int, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	n := 0
	for _, it := range r.l.items {
		if it.SectorID != nil && *it.SectorID == sectorID {
			n++
		}
	}
	return n, nil
}

// MovementRepo implementa repository.InventoryMovementRepository.
type MovementRepo struct{ l *Ledger }

var _ repository.InventoryMovementRepository = (*MovementRepo)(nil)

func (r *MovementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	if r.l.FailMovementCreate != nil {
		return r.l.FailMovementCreate
	}
	if _, ok := r.l.items[m.ItemID]; !ok {
		return domain.ErrNotFound
	}
	m.ID = r.l.id()
	m.CreatedAt = r.l.tick()
	stored := *m
	stored.Attachments = nil
	r.l.movements[m.ID] = stored
	return nil
}

func (r *MovementRepo) GetDetail(_ context.Context, id int64) (*entity.MovementDetail, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	m, ok := r.l.movements[id]
	if !ok {
		return nil, nil
	}
	return r.detail(m), nil
}

func (r *MovementRepo) detail(m entity.InventoryMovement) *entity.MovementDetail {
	it := r.l.items[m.ItemID]
	return &entity.MovementDetail{
		InventoryMovement: m,
		ItemName:          it.Name,
		ItemSKU:           it.SKU,
		ItemLocation:      it.Location,
		ItemSectorID:      it.SectorID,
	}
}

func (r *MovementRepo) ListRecentByItem(_ context.Context, itemID int64, limit int) ([]*entity.InventoryMovement, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var out []*entity.InventoryMovement
	for _, m := range r.l.movements {
		if m.ItemID == itemID {
			m := m
			out = append(out, &m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MovementRepo) ListPendingTransfers(_ context.Context, filter access.SectorFilter, limit int) ([]*entity.MovementDetail, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var out []*entity.MovementDetail
	for _, m := range r.l.movements {
		if !m.RequiresSignature || m.TransferStatus != entity.TransferPending {
			continue
		}
		if !filter.Matches(r.l.items[m.ItemID].SectorID) {
			continue
		}
		out = append(out, r.detail(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MovementRepo) MarkSigned(_ context.Context, id int64) (bool, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	if r.l.FailMarkSigned != nil {
		return false, r.l.FailMarkSigned
	}
	m, ok := r.l.movements[id]
	if !ok || m.TransferStatus != entity.TransferPending {
		return false, nil
	}
	m.TransferStatus = entity.TransferSigned
	r.l.movements[id] = m
	return true, nil
}

func (r *MovementRepo) SetTransferForm(_ context.Context, id int64, key, url string) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	m, ok := r.l.movements[id]
	if !ok {
		return domain.ErrNotFound
	}
	m.TransferFormKey, m.TransferFormURL = key, url
	r.l.movements[id] = m
	return nil
}

// AttachmentRepo implementa repository.MovementAttachmentRepository.
type AttachmentRepo struct{ l *Ledger }

var _ repository.MovementAttachmentRepository = (*AttachmentRepo)(nil)

func (r *AttachmentRepo) Create(_ context.Context, a *entity.MovementAttachment) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	if r.l.FailAttachmentCreate != nil {
		return r.l.FailAttachmentCreate
	}
	if _, ok := r.l.movements[a.MovementID]; !ok {
		return domain.ErrNotFound
	}
	a.ID = r.l.id()
	a.UploadedAt = r.l.tick()
	r.l.attachments[a.ID] = *a
	return nil
}

func (r *AttachmentRepo) ListByMovement(_ context.Context, movementID int64) ([]entity.MovementAttachment, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	return r.l.attachmentsOf(movementID), nil
}
