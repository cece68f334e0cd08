package http

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/punchlist-api/internal/application/dto"
	"github.com/jhoicas/punchlist-api/internal/application/task"
)

// TaskHandler tareas de mantenimiento.
type TaskHandler struct {
	uc *task.UseCase
}

// NewTaskHandler construye el handler.
func NewTaskHandler(uc *task.UseCase) *TaskHandler {
	return &TaskHandler{uc: uc}
}

// List godoc
// @Summary      Listar tareas
// @Tags         tasks
// @Security     Bearer
// @Produce      json
// @Param        status       query  string  false  "open | in_progress | blocked | done"
// @Param        building     query  int     false  "ID de edificio"
// @Param        assigned_to  query  string  false  "Responsable"
// @Param        search       query  string  false  "Texto en título o descripción"
// @Param        sort         query  string  false  "recent | due_asc | priority | updated"
// @Param        limit        query  int     false  "1-100 (default 25)"
// @Param        page         query  int     false  "Página (desde 1)"
// @Success      200  {object}  dto.TaskListResponse
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c *fiber.Ctx) error {
	var q dto.TaskListQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "invalid query"})
	}
	out, err := h.uc.List(c.UserContext(), GetActor(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Summary godoc
// @Summary      Conteos de tareas
// @Tags         tasks
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  entity.TaskSummary
// @Router       /api/tasks/summary [get]
func (h *TaskHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary(c.UserContext(), GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Recent godoc
// @Summary      Últimas tareas modificadas
// @Tags         tasks
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "1-20 (default 5)"
// @Success      200  {array}  dto.TaskResponse
// @Router       /api/tasks/recent [get]
func (h *TaskHandler) Recent(c *fiber.Ctx) error {
	out, err := h.uc.RecentlyUpdated(c.UserContext(), GetActor(c), c.QueryInt("limit", 5))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener tarea
// @Tags         tasks
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "Task ID"
// @Success      200  {object}  dto.TaskResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	out, err := h.uc.Find(c.UserContext(), GetActor(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear tarea
// @Tags         tasks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTaskRequest  true  "building_id, room_id, title, ..."
// @Success      201   {object}  dto.TaskResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTaskRequest
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
// @Summary      Actualización parcial de tarea
// @Description  Solo cambian los campos presentes; null o "" en assigned_to/due_date los limpia.
// @Tags         tasks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                    true  "Task ID"
// @Param        body  body  dto.UpdateTaskRequest  true  "status, priority, assigned_to, due_date"
// @Success      200   {object}  dto.TaskResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/tasks/{id} [patch]
func (h *TaskHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	// OptionalString necesita encoding/json para distinguir ausente de null.
	var in dto.UpdateTaskRequest
	if err := json.Unmarshal(c.Body(), &in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.UpdatePartial(c.UserContext(), GetActor(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
