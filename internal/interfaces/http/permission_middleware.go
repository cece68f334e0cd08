package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/punchlist-api/internal/application/dto"
)

// RequirePermission devuelve un middleware Fiber que exige la clave de permiso al actor del
// request. Debe usarse DESPUÉS de AuthMiddleware (necesita LocalActor).
//
// Comportamiento:
//   - 401 Unauthorized → no hay actor en el contexto.
//   - 403 Forbidden    → el actor no tiene ninguna de las claves.
//
// Con varias claves basta cualquiera de ellas. Los casos de uso vuelven a comprobar; esto
// solo corta antes de parsear el cuerpo.
func RequirePermission(keys ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := GetActor(c)
		if actor == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "UNAUTHORIZED",
				Message: "actor no encontrado en el contexto",
			})
		}
		for _, k := range keys {
			if actor.Can(k) {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Code:    "FORBIDDEN",
			Message: "permiso requerido",
		})
	}
}

// RequireSigner exige inventory_manage o inventory_transfers.
func RequireSigner() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := GetActor(c)
		if actor == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "actor no encontrado en el contexto"})
		}
		if !actor.CanSign() {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "permiso requerido"})
		}
		return c.Next()
	}
}
