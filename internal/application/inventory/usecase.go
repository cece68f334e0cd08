package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/jhoicas/punchlist-api/internal/application/activity"
	"github.com/jhoicas/punchlist-api/internal/application/dto"
	"github.com/jhoicas/punchlist-api/internal/application/transfer"
	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/domain/access"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/internal/domain/inventory"
	"github.com/jhoicas/punchlist-api/internal/domain/repository"
	"github.com/jhoicas/punchlist-api/pkg/logger"
)

// Mensajes de resultado de MoveStock.
const (
	MsgStockUpdated       = "Stock updated."
	MsgStockUpdatedForm   = "Stock updated and transfer form generated."
	WarnFormGenerationErr = "Stock updated, but transfer form generation failed."
)

// LedgerUseCase libro de inventario: alta y edición de artículos y movimientos de stock.
// Cada cambio de cantidad se registra con su movimiento en una sola transacción
// (SELECT FOR UPDATE + UPDATE atómico), con Commit/Rollback a cargo del TxRunner.
type LedgerUseCase struct {
	txRunner    TxRunner
	items       repository.InventoryItemRepository
	movements   repository.InventoryMovementRepository
	attachments repository.MovementAttachmentRepository
	forms       TransferForms
	labels      *transfer.Labeler
	activity    *activity.Recorder
	log         *logger.Logger
}

// NewLedgerUseCase construye el caso de uso. forms puede ser nil (sin generación de formularios).
func NewLedgerUseCase(
	txRunner TxRunner,
	items repository.InventoryItemRepository,
	movements repository.InventoryMovementRepository,
	attachments repository.MovementAttachmentRepository,
	forms TransferForms,
	labels *transfer.Labeler,
	recorder *activity.Recorder,
	log *logger.Logger,
) *LedgerUseCase {
	if log == nil {
		log = logger.Nop()
	}
	if labels == nil {
		labels = transfer.NewLabeler(nil, nil, log)
	}
	return &LedgerUseCase{
		txRunner:    txRunner,
		items:       items,
		movements:   movements,
		attachments: attachments,
		forms:       forms,
		labels:      labels,
		activity:    recorder,
		log:         log,
	}
}

func (uc *LedgerUseCase) requireManage(actor *access.Actor, op string) error {
	if actor == nil {
		return domain.ErrUnauthorized
	}
	if !actor.Can(entity.PermInventoryManage) {
		uc.log.Warn().Int64("actor_id", actor.ID()).Str("op", op).Msg("forbidden: inventory_manage requerido")
		return domain.ErrForbidden
	}
	return nil
}

func (uc *LedgerUseCase) authorizeItem(actor *access.Actor, item *entity.InventoryItem, op string) error {
	if err := access.AuthorizeSectorAccess(actor, item.SectorID, access.ActionWrite); err != nil {
		uc.log.Warn().Int64("actor_id", actor.ID()).Int64("item_id", item.ID).
			Str("sector", access.SectorLabel(item.SectorID)).Str("op", op).Msg("forbidden: artículo de otro sector")
		return err
	}
	return nil
}

// CreateItem da de alta un artículo. Si la cantidad inicial es positiva registra, en la misma
// transacción, un movimiento "in" con motivo "Initial quantity" a nombre del actor. El sector
// de un actor no root se fuerza al suyo.
func (uc *LedgerUseCase) CreateItem(ctx context.Context, actor *access.Actor, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if err := uc.requireManage(actor, "create_item"); err != nil {
		return nil, err
	}
	var verr domain.ValidationErrors
	name := strings.TrimSpace(in.Name)
	if name == "" {
		verr.Add("Name is required.")
	}
	if in.Quantity < 0 {
		verr.Add("Quantity cannot be negative.")
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	item := &entity.InventoryItem{
		SKU:      strings.TrimSpace(in.SKU),
		Name:     name,
		SectorID: access.CoerceSector(actor, in.SectorID),
		Quantity: in.Quantity,
		Location: strings.TrimSpace(in.Location),
	}
	var initial *entity.InventoryMovement
	err := uc.txRunner.Run(ctx, func(itemRepo repository.InventoryItemRepository, movRepo repository.InventoryMovementRepository, _ repository.MovementAttachmentRepository) error {
		if err := itemRepo.Create(ctx, item); err != nil {
			return err
		}
		if item.Quantity == 0 {
			return nil
		}
		initial = &entity.InventoryMovement{
			ItemID:         item.ID,
			Direction:      entity.DirectionIn,
			Amount:         item.Quantity,
			Reason:         entity.ReasonInitialQuantity,
			UserID:         actor.UserIDPtr(),
			TargetSectorID: item.SectorID,
			TransferStatus: inventory.InitialTransferStatus(false),
		}
		return movRepo.Create(ctx, initial)
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, err
		}
		uc.log.Error().Err(err).Str("name", name).Msg("alta de artículo fallida")
		return nil, domain.ErrMovementFailed
	}

	uc.activity.Record(ctx, actor.UserIDPtr(), activity.ActionInventoryAdd, "inventory_item", item.ID,
		map[string]any{"quantity": item.Quantity, "sector_id": item.SectorID})
	resp := uc.itemResponse(ctx, item, nil)
	if initial != nil {
		resp.Movements = uc.movementResponses(ctx, []*entity.InventoryMovement{initial}, nil)
	}
	return &resp, nil
}

// UpdateItem edita los datos descriptivos. La cantidad no se toca aquí.
func (uc *LedgerUseCase) UpdateItem(ctx context.Context, actor *access.Actor, id int64, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	if err := uc.requireManage(actor, "update_item"); err != nil {
		return nil, err
	}
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.authorizeItem(actor, item, "update_item"); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ValidationErrors{"Name is required."}
	}

	item.Name = name
	item.SKU = strings.TrimSpace(in.SKU)
	item.Location = strings.TrimSpace(in.Location)
	item.SectorID = access.CoerceSector(actor, in.SectorID)
	if err := uc.items.Update(ctx, item); err != nil {
		return nil, err
	}
	uc.activity.Record(ctx, actor.UserIDPtr(), activity.ActionInventoryUpdate, "inventory_item", item.ID,
		map[string]any{"sector_id": item.SectorID})
	resp := uc.itemResponse(ctx, item, nil)
	return &resp, nil
}

// MoveStock registra una entrada o salida. Bloquea la fila del artículo, re-verifica el sector,
// aplica el delta y crea el movimiento en una sola transacción. Si el movimiento requiere firma,
// después del commit intenta generar el formulario; ese fallo solo produce un Warning.
func (uc *LedgerUseCase) MoveStock(ctx context.Context, actor *access.Actor, in MovementInput) (*dto.MoveStockResponse, error) {
	if err := uc.requireManage(actor, "move_stock"); err != nil {
		return nil, err
	}
	delta, err := inventory.SignedDelta(in.Direction, in.Amount)
	if err != nil {
		return nil, err
	}

	var (
		mov      *entity.InventoryMovement
		quantity int
	)
	err = uc.txRunner.Run(ctx, func(itemRepo repository.InventoryItemRepository, movRepo repository.InventoryMovementRepository, _ repository.MovementAttachmentRepository) error {
		// Bloquea la fila (SELECT FOR UPDATE) para que dos salidas concurrentes no lean la misma cantidad
		item, err := itemRepo.GetForUpdate(ctx, in.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if err := uc.authorizeItem(actor, item, "move_stock"); err != nil {
			return err
		}
		if _, err := inventory.ApplyDelta(item.Quantity, delta); err != nil {
			return err
		}
		quantity, err = itemRepo.ApplyDelta(ctx, item.ID, delta)
		if err != nil {
			return err
		}
		source, target := inventory.DefaultSectors(in.Direction, item.SectorID, in.SourceSectorID, in.TargetSectorID)
		mov = &entity.InventoryMovement{
			ItemID:            item.ID,
			Direction:         in.Direction,
			Amount:            in.Amount,
			Reason:            in.Reason,
			Notes:             in.Notes,
			UserID:            actor.UserIDPtr(),
			SourceSectorID:    source,
			TargetSectorID:    target,
			SourceLocation:    in.SourceLocation,
			TargetLocation:    in.TargetLocation,
			RequiresSignature: in.RequiresSignature,
			TransferStatus:    inventory.InitialTransferStatus(in.RequiresSignature),
		}
		return movRepo.Create(ctx, mov)
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden),
			errors.Is(err, domain.ErrNotFound),
			errors.Is(err, domain.ErrInsufficientStock),
			errors.Is(err, domain.ErrUnauthorized):
			return nil, err
		}
		uc.log.Error().Err(err).Int64("item_id", in.ItemID).Str("direction", in.Direction).Int("amount", in.Amount).
			Msg("movimiento revertido")
		return nil, domain.ErrMovementFailed
	}

	uc.activity.Record(ctx, actor.UserIDPtr(), activity.ActionInventoryMove, "inventory_item", in.ItemID, map[string]any{
		"direction":          in.Direction,
		"amount":             in.Amount,
		"requires_signature": in.RequiresSignature,
		"source_sector":      mov.SourceSectorID,
		"target_sector":      mov.TargetSectorID,
	})

	resp := &dto.MoveStockResponse{Quantity: quantity, Message: MsgStockUpdated}
	if mov.RequiresSignature {
		uc.attachForm(ctx, mov, resp)
	}
	resp.Movement = uc.movementResponses(ctx, []*entity.InventoryMovement{mov}, nil)[0]
	return resp, nil
}

// attachForm genera el formulario fuera de la transacción: el movimiento ya está confirmado.
func (uc *LedgerUseCase) attachForm(ctx context.Context, mov *entity.InventoryMovement, resp *dto.MoveStockResponse) {
	if uc.forms == nil {
		resp.Warning = WarnFormGenerationErr
		return
	}
	form, err := uc.forms.GenerateForMovement(ctx, mov.ID)
	if err != nil {
		uc.log.Warn().Err(err).Int64("movement_id", mov.ID).Msg("movimiento registrado sin formulario de traslado")
		resp.Warning = WarnFormGenerationErr
		return
	}
	if form != nil {
		mov.TransferFormKey, mov.TransferFormURL = form.Key, form.URL
		resp.Message = MsgStockUpdatedForm
	}
}
