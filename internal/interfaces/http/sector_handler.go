package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/punchlist-api/internal/application/dto"
	"github.com/jhoicas/punchlist-api/internal/application/sector"
)

// SectorHandler directorio de sectores.
type SectorHandler struct {
	uc *sector.UseCase
}

// NewSectorHandler construye el handler.
func NewSectorHandler(uc *sector.UseCase) *SectorHandler {
	return &SectorHandler{uc: uc}
}

// List godoc
// @Summary      Listar sectores
// @Tags         sectors
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.SectorResponse
// @Router       /api/sectors [get]
func (h *SectorHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear sector
// @Tags         sectors
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SectorRequest  true  "slug, name, contacto, color, responsable"
// @Success      201   {object}  dto.SectorResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sectors [post]
func (h *SectorHandler) Create(c *fiber.Ctx) error {
	var in dto.SectorRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Editar sector
// @Tags         sectors
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                true  "Sector ID"
// @Param        body  body  dto.SectorRequest  true  "slug, name, contacto, color, responsable"
// @Success      200   {object}  dto.SectorResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/sectors/{id} [put]
func (h *SectorHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var in dto.SectorRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar sector
// @Description  409 IN_USE si algún usuario o ítem lo referencia.
// @Tags         sectors
// @Security     Bearer
// @Param        id  path  int  true  "Sector ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sectors/{id} [delete]
func (h *SectorHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	if err := h.uc.Delete(c.UserContext(), GetActor(c), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
