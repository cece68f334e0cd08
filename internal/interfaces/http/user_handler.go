package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/punchlist-api/internal/application/dto"
	"github.com/jhoicas/punchlist-api/internal/application/identity"
	"github.com/jhoicas/punchlist-api/internal/domain/repository"
)

// UserHandler administración de usuarios y overrides de permisos.
type UserHandler struct {
	uc *identity.UserUseCase
}

// NewUserHandler construye el handler.
func NewUserHandler(uc *identity.UserUseCase) *UserHandler {
	return &UserHandler{uc: uc}
}

// List godoc
// @Summary      Listar usuarios
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        role    query  string  false  "slug del rol"
// @Param        sector  query  int     false  "ID de sector"
// @Success      200  {array}   dto.UserResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	filter := repository.UserFilter{Role: strings.TrimSpace(c.Query("role"))}
	if s := c.Query("sector"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid sector"})
		}
		filter.SectorID = &id
	}
	out, err := h.uc.List(c.UserContext(), GetActor(c), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Roles godoc
// @Summary      Catálogo de roles
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.RoleResponse
// @Router       /api/users/roles [get]
func (h *UserHandler) Roles(c *fiber.Ctx) error {
	out, err := h.uc.Roles(c.UserContext(), GetActor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear usuario
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateUserRequest  true  "email, name, password, role, sector_id, permissions"
// @Success      201   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateUserRequest
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
// @Summary      Editar usuario
// @Description  password vacío = sin cambio.
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                    true  "User ID"
// @Param        body  body  dto.UpdateUserRequest  true  "email, name, password, role, sector_id"
// @Success      200   {object}  dto.UserResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/users/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var in dto.UpdateUserRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), GetActor(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Suspend godoc
// @Summary      Suspender usuario
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "User ID"
// @Success      200  {object}  dto.UserResponse
// @Router       /api/users/{id}/suspend [post]
func (h *UserHandler) Suspend(c *fiber.Ctx) error {
	return h.setSuspended(c, true)
}

// Unsuspend godoc
// @Summary      Reactivar usuario
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "User ID"
// @Success      200  {object}  dto.UserResponse
// @Router       /api/users/{id}/unsuspend [post]
func (h *UserHandler) Unsuspend(c *fiber.Ctx) error {
	return h.setSuspended(c, false)
}

func (h *UserHandler) setSuspended(c *fiber.Ctx, suspended bool) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	out, err := h.uc.SetSuspended(c.UserContext(), GetActor(c), id, suspended)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Permissions godoc
// @Summary      Permisos efectivos y overrides de un usuario
// @Tags         users
// @Security     Bearer
// @Produce      json
// @Param        id  path  int  true  "User ID"
// @Success      200  {object}  dto.PermissionsResponse
// @Router       /api/users/{id}/permissions [get]
func (h *UserHandler) Permissions(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	out, err := h.uc.Permissions(c.UserContext(), GetActor(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SavePermissions godoc
// @Summary      Guardar overrides de permisos
// @Description  clave -> allow | deny | inherit. inherit borra el override.
// @Tags         users
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                             true  "User ID"
// @Param        body  body  dto.PermissionOverridesRequest  true  "permissions"
// @Success      200   {object}  dto.PermissionsResponse
// @Router       /api/users/{id}/permissions [put]
func (h *UserHandler) SavePermissions(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}
	var in dto.PermissionOverridesRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.SavePermissions(c.UserContext(), GetActor(c), id, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
