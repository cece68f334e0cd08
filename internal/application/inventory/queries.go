package inventory

import (
	"context"

	"github.com/jhoicas/punchlist-api/internal/application/dto"
	"github.com/jhoicas/punchlist-api/internal/application/transfer"
	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/domain/access"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
)

const (
	recentMovementsPerItem = 5
	pendingTransfersLimit  = 15
)

// ListItems artículos visibles para el actor con sus últimos movimientos y adjuntos.
// sector: "", "all", "unassigned"/"null" o un id; solo root elige.
func (uc *LedgerUseCase) ListItems(ctx context.Context, actor *access.Actor, sector string) (*dto.ItemListResponse, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	if !actor.Can(entity.PermInventoryView) {
		uc.log.Warn().Int64("actor_id", actor.ID()).Msg("forbidden: inventory_view requerido")
		return nil, domain.ErrForbidden
	}
	filter, err := access.ScopeFor(actor, sector)
	if err != nil {
		return nil, err
	}
	items, err := uc.items.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	recent := make(map[int64][]*entity.InventoryMovement, len(items))
	var sectorIDs, userIDs []*int64
	for _, it := range items {
		sectorIDs = append(sectorIDs, it.SectorID)
		movs, err := uc.movements.ListRecentByItem(ctx, it.ID, recentMovementsPerItem)
		if err != nil {
			return nil, err
		}
		for _, m := range movs {
			atts, err := uc.attachments.ListByMovement(ctx, m.ID)
			if err != nil {
				return nil, err
			}
			m.Attachments = atts
			sectorIDs = append(sectorIDs, m.SourceSectorID, m.TargetSectorID)
			userIDs = append(userIDs, m.UserID)
		}
		recent[it.ID] = movs
	}
	lbl := &labelSet{
		sectors: uc.labels.SectorNames(ctx, sectorIDs...),
		users:   uc.labels.UserLabels(ctx, userIDs),
	}

	out := &dto.ItemListResponse{Sector: filter.String(), Items: make([]dto.ItemResponse, 0, len(items))}
	for _, it := range items {
		out.Items = append(out.Items, uc.itemResponse(ctx, it, lbl, recent[it.ID]...))
	}
	return out, nil
}

// PendingTransfers movimientos con firma pendiente, más recientes primero (requiere canSign).
func (uc *LedgerUseCase) PendingTransfers(ctx context.Context, actor *access.Actor, sector string) ([]dto.PendingTransferResponse, error) {
	if actor == nil {
		return nil, domain.ErrUnauthorized
	}
	if !actor.CanSign() {
		uc.log.Warn().Int64("actor_id", actor.ID()).Msg("forbidden: traslados pendientes")
		return nil, domain.ErrForbidden
	}
	filter, err := access.ScopeFor(actor, sector)
	if err != nil {
		return nil, err
	}
	rows, err := uc.movements.ListPendingTransfers(ctx, filter, pendingTransfersLimit)
	if err != nil {
		return nil, err
	}
	movs := make([]*entity.InventoryMovement, 0, len(rows))
	for _, r := range rows {
		m := r.InventoryMovement
		movs = append(movs, &m)
	}
	responses := uc.movementResponses(ctx, movs, nil)
	out := make([]dto.PendingTransferResponse, 0, len(rows))
	for i, r := range rows {
		out = append(out, dto.PendingTransferResponse{
			MovementResponse: responses[i],
			ItemName:         r.ItemName,
			ItemSKU:          r.ItemSKU,
		})
	}
	return out, nil
}

// labelSet nombres ya resueltos para armar respuestas sin repetir consultas.
type labelSet struct {
	sectors map[int64]string
	users   map[int64]string
}

func (uc *LedgerUseCase) itemResponse(ctx context.Context, it *entity.InventoryItem, lbl *labelSet, movs ...*entity.InventoryMovement) dto.ItemResponse {
	if lbl == nil {
		lbl = &labelSet{sectors: uc.labels.SectorNames(ctx, it.SectorID)}
	}
	resp := dto.ItemResponse{
		ID:         it.ID,
		SKU:        it.SKU,
		Name:       it.Name,
		SectorID:   it.SectorID,
		SectorName: transfer.SectorLabel(lbl.sectors, it.SectorID),
		Quantity:   it.Quantity,
		Location:   it.Location,
		CreatedAt:  it.CreatedAt,
		UpdatedAt:  it.UpdatedAt,
	}
	if len(movs) > 0 {
		resp.Movements = uc.movementResponses(ctx, movs, lbl)
	}
	return resp
}

func (uc *LedgerUseCase) movementResponses(ctx context.Context, movs []*entity.InventoryMovement, lbl *labelSet) []dto.MovementResponse {
	if lbl == nil || lbl.users == nil {
		var sectorIDs, userIDs []*int64
		for _, m := range movs {
			sectorIDs = append(sectorIDs, m.SourceSectorID, m.TargetSectorID)
			userIDs = append(userIDs, m.UserID)
		}
		lbl = &labelSet{
			sectors: uc.labels.SectorNames(ctx, sectorIDs...),
			users:   uc.labels.UserLabels(ctx, userIDs),
		}
	}
	out := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		atts := make([]dto.AttachmentResponse, 0, len(m.Attachments))
		for _, a := range m.Attachments {
			atts = append(atts, transfer.ToAttachmentResponse(a))
		}
		out = append(out, dto.MovementResponse{
			ID:                m.ID,
			ItemID:            m.ItemID,
			Direction:         m.Direction,
			Amount:            m.Amount,
			Reason:            m.Reason,
			Notes:             m.Notes,
			UserID:            m.UserID,
			ActorLabel:        transfer.ActorLabel(lbl.users, m.UserID),
			SourceSectorID:    m.SourceSectorID,
			SourceSectorName:  transfer.SectorLabel(lbl.sectors, m.SourceSectorID),
			TargetSectorID:    m.TargetSectorID,
			TargetSectorName:  transfer.SectorLabel(lbl.sectors, m.TargetSectorID),
			SourceLocation:    m.SourceLocation,
			TargetLocation:    m.TargetLocation,
			RequiresSignature: m.RequiresSignature,
			TransferStatus:    m.TransferStatus,
			TransferFormURL:   m.TransferFormURL,
			CreatedAt:         m.CreatedAt,
			Attachments:       atts,
		})
	}
	return out
}
