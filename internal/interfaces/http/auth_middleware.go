package http

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/punchlist-api/internal/application/dto"
	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/internal/domain/access"
	"github.com/jhoicas/punchlist-api/internal/infrastructure/metrics"
	"github.com/jhoicas/punchlist-api/pkg/jwt"
	"github.com/jhoicas/punchlist-api/pkg/logger"
)

// LocalActor key de Fiber Locals con el *access.Actor del request.
const LocalActor = "actor"

// ActorResolver resuelve permisos efectivos por usuario. Lo implementa
// *identity.PermissionResolver.
type ActorResolver interface {
	Resolve(ctx context.Context, userID int64) (*access.Actor, error)
}

// AuthMiddleware valida el Bearer Token JWT y resuelve el actor en cada request: el rol del
// token no se usa para autorizar, los permisos salen siempre del store de identidad.
func AuthMiddleware(jwtSecret string, resolver ActorResolver, log *logger.Logger) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		claims, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			metrics.ObserveAuthFailure("token")
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		actor, err := resolver.Resolve(c.UserContext(), claims.UserID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrUserNotFound):
				metrics.ObserveAuthFailure("unknown_user")
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNKNOWN_USER", Message: "usuario inexistente"})
			case errors.Is(err, domain.ErrSuspended):
				metrics.ObserveAuthFailure("suspended")
				return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "SUSPENDED", Message: "account suspended"})
			}
			log.Error().Err(err).Int64("user_id", claims.UserID).Msg("no se pudo resolver el actor")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "IDENTITY_UNAVAILABLE", Message: "no se pudieron cargar los permisos, intente más tarde"})
		}
		c.Locals(LocalActor, actor)
		return c.Next()
	}
}

// GetActor devuelve el actor del contexto (después del middleware de auth); nil si no hay.
func GetActor(c *fiber.Ctx) *access.Actor {
	actor, _ := c.Locals(LocalActor).(*access.Actor)
	return actor
}
