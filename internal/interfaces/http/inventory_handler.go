package http

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/punchlist-api/internal/application/dto"
	"github.com/jhoicas/punchlist-api/internal/application/inventory"
	"github.com/jhoicas/punchlist-api/internal/application/transfer"
	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/infrastructure/metrics"
)

// InventoryHandler maneja las peticiones HTTP de ítems, movimientos y traslados (protegido).
type InventoryHandler struct {
	ledger    *inventory.LedgerUseCase
	transfers *transfer.UseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase, transfers *transfer.UseCase) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, transfers: transfers}
}

// ListItems godoc
// @Summary      Listar ítems de inventario
// @Description  Root elige el sector (all, unassigned o id); el resto ve solo su sector.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        sector  query  string  false  "all | unassigned | <id>"
// @Success      200  {object}  dto.ItemListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/items [get]
func (h *InventoryHandler) ListItems(c *fiber.Ctx) error {
	out, err := h.ledger.ListItems(c.UserContext(), GetActor(c), c.Query("sector"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateItem godoc
// @Summary      Crear ítem de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateItemRequest  true  "name, sku, location, sector_id, quantity"
// @Success      201   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/inventory/items [post]
func (h *InventoryHandler) CreateItem(c *fiber.Ctx) error {
	var in dto.CreateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.ledger.CreateItem(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateItem godoc
// @Summary      Editar ítem (nombre, sku, ubicación, sector)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                    true  "Item ID"
// @Param        body  body  dto.UpdateItemRequest  true  "name, sku, location, sector_id"
// @Success      200   {object}  dto.ItemResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id} [put]
func (h *InventoryHandler) UpdateItem(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var in dto.UpdateItemRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.ledger.UpdateItem(c.UserContext(), GetActor(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// MoveStock godoc
// @Summary      Registrar movimiento de stock
// @Description  Actualiza la cantidad y registra el movimiento en una transacción. Si requiere
// @Description  firma se genera el formulario de traslado; si eso falla el movimiento queda
// @Description  registrado y la respuesta trae warning.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                   true  "Item ID"
// @Param        body  body  dto.MoveStockRequest  true  "direction, amount, sectores, ubicaciones, requires_signature"
// @Success      201   {object}  dto.MoveStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/movements [post]
func (h *InventoryHandler) MoveStock(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var in dto.MoveStockRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	input := inventory.MovementInputFromRequest(id, in)
	out, err := h.ledger.MoveStock(c.UserContext(), GetActor(c), input)
	if err != nil {
		metrics.ObserveStockMovement(input.Direction, movementResult(err))
		return writeError(c, err)
	}
	metrics.ObserveStockMovement(input.Direction, "ok")
	if out.Movement.RequiresSignature {
		if out.Warning != "" {
			metrics.ObserveTransferForm("failed")
		} else {
			metrics.ObserveTransferForm("generated")
		}
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func movementResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrNotFound):
		return "rejected"
	}
	return "error"
}

// PendingTransfers godoc
// @Summary      Traslados pendientes de firma
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        sector  query  string  false  "all | unassigned | <id> (solo root)"
// @Success      200  {array}   dto.PendingTransferResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers/pending [get]
func (h *InventoryHandler) PendingTransfers(c *fiber.Ctx) error {
	out, err := h.ledger.PendingTransfers(c.UserContext(), GetActor(c), c.Query("sector"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UploadAttachment godoc
// @Summary      Subir adjunto de un movimiento
// @Description  kind=signature (por defecto) marca el traslado como firmado.
// @Tags         inventory
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        id        path      int     true   "Movement ID"
// @Param        document  formData  file    true   "PDF o imagen"
// @Param        kind      formData  string  false  "signature | photo | other"
// @Param        label     formData  string  false  "Etiqueta"
// @Success      201  {object}  dto.UploadAttachmentResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      413  {object}  dto.ErrorResponse
// @Failure      415  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/attachments [post]
func (h *InventoryHandler) UploadAttachment(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	kind := c.FormValue("kind")
	// Sin archivo o con uno demasiado grande igual pasa por el caso de uso, que autoriza
	// el sector antes de validar el contenido. Se leen a lo sumo MaxBytes+1 bytes.
	var (
		filename string
		data     []byte
	)
	if fh, err := c.FormFile("document"); err == nil {
		filename = fh.Filename
		f, err := fh.Open()
		if err != nil {
			return writeError(c, err)
		}
		defer f.Close()
		data, err = io.ReadAll(io.LimitReader(f, h.transfers.MaxBytes()+1))
		if err != nil {
			return writeError(c, err)
		}
	}

	out, err := h.transfers.UploadAttachment(c.UserContext(), GetActor(c), transfer.UploadInput{
		MovementID: id,
		Filename:   filename,
		Data:       data,
		Kind:       kind,
		Label:      c.FormValue("label"),
	})
	if err != nil {
		result := "error"
		if StatusFor(err) < fiber.StatusInternalServerError {
			result = "rejected"
		}
		metrics.ObserveTransferUpload(kind, result)
		return writeError(c, err)
	}
	metrics.ObserveTransferUpload(out.Attachment.Kind, "ok")
	return c.Status(fiber.StatusCreated).JSON(out)
}

// RegenerateForm godoc
// @Summary      Regenerar formulario de traslado
// @Description  Crea un documento nuevo; nunca modifica la cantidad.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "Movement ID"
// @Success      201  {object}  dto.TransferFormResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id}/transfer-form [post]
func (h *InventoryHandler) RegenerateForm(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	out, err := h.transfers.RegenerateForm(c.UserContext(), GetActor(c), id)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentGenerationFailed) {
			metrics.ObserveTransferForm("failed")
		}
		return writeError(c, err)
	}
	metrics.ObserveTransferForm("generated")
	return c.Status(fiber.StatusCreated).JSON(out)
}
