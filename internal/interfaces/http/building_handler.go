package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/punchlist-api/internal/application/building"
	"github.com/jhoicas/punchlist-api/internal/application/dto"
)

// BuildingHandler edificios y salas.
type BuildingHandler struct {
	uc *building.UseCase
}

// NewBuildingHandler construye el handler.
func NewBuildingHandler(uc *building.UseCase) *BuildingHandler {
	return &BuildingHandler{uc: uc}
}

// ListBuildings godoc
// @Summary      Listar edificios
// @Tags         buildings
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.BuildingResponse
// @Router       /api/buildings [get]
func (h *BuildingHandler) ListBuildings(c *fiber.Ctx) error {
	out, err := h.uc.ListBuildings(c.UserContext(), GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateBuilding godoc
// @Summary      Crear edificio
// @Tags         buildings
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BuildingRequest  true  "nombre"
// @Success      201   {object}  dto.BuildingResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/buildings [post]
func (h *BuildingHandler) CreateBuilding(c *fiber.Ctx) error {
	var in dto.BuildingRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.CreateBuilding(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// DeleteBuilding godoc
// @Summary      Eliminar edificio
// @Description  Borra también sus salas. 409 IN_USE si alguna sala tiene tareas.
// @Tags         buildings
// @Security     Bearer
// @Param        id  path  int  true  "Building ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/buildings/{id} [delete]
func (h *BuildingHandler) DeleteBuilding(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	if err := h.uc.DeleteBuilding(c.UserContext(), GetActor(c), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RoomsByBuilding godoc
// @Summary      Salas de un edificio
// @Description  Incluye planta, capacidad y sector para el selector de tareas.
// @Tags         buildings
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "Building ID"
// @Success      200  {array}   dto.RoomResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/buildings/{id}/rooms [get]
func (h *BuildingHandler) RoomsByBuilding(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	out, err := h.uc.RoomsByBuilding(c.UserContext(), GetActor(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListRooms godoc
// @Summary      Listar salas
// @Tags         rooms
// @Security     Bearer
// @Produce      json
// @Param        building  query  int     false  "Building ID"
// @Param        search    query  string  false  "Texto en número, etiqueta o notas"
// @Success      200  {array}  dto.RoomResponse
// @Router       /api/rooms [get]
func (h *BuildingHandler) ListRooms(c *fiber.Ctx) error {
	q := dto.RoomListQuery{
		BuildingID: int64(c.QueryInt("building", 0)),
		Search:     c.Query("search"),
	}
	out, err := h.uc.ListRooms(c.UserContext(), GetActor(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CreateRoom godoc
// @Summary      Crear sala
// @Tags         rooms
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRoomRequest  true  "edificio, número y detalles"
// @Success      201   {object}  dto.RoomResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/rooms [post]
func (h *BuildingHandler) CreateRoom(c *fiber.Ctx) error {
	var in dto.CreateRoomRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.CreateRoom(c.UserContext(), GetActor(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateRoom godoc
// @Summary      Editar sala
// @Tags         rooms
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                    true  "Room ID"
// @Param        body  body  dto.UpdateRoomRequest  true  "detalles"
// @Success      200   {object}  dto.RoomResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/rooms/{id} [put]
func (h *BuildingHandler) UpdateRoom(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var in dto.UpdateRoomRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.UpdateRoom(c.UserContext(), GetActor(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DeleteRoom godoc
// @Summary      Eliminar sala
// @Description  409 IN_USE si tiene tareas.
// @Tags         rooms
// @Security     Bearer
// @Param        id  path  int  true  "Room ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/rooms/{id} [delete]
func (h *BuildingHandler) DeleteRoom(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	if err := h.uc.DeleteRoom(c.UserContext(), GetActor(c), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
