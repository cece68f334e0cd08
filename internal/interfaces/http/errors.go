package http

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/punchlist-api/internal/application/dto"
	"github.com/jhoicas/punchlist-api/internal/domain"
	"github.com/jhoicas/punchlist-api/pkg/logger"
)

// LocalLogger key de Fiber Locals con el *logger.Logger del request.
const LocalLogger = "logger"

// RequestLogger deja el logger en Locals para que writeError pueda registrar causas internas.
func RequestLogger(log *logger.Logger) fiber.Handler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx) error {
		c.Locals(LocalLogger, log)
		return c.Next()
	}
}

func requestLog(c *fiber.Ctx) *logger.Logger {
	if log, ok := c.Locals(LocalLogger).(*logger.Logger); ok && log != nil {
		return log
	}
	return logger.Nop()
}

// errorMapping status HTTP, código y mensaje público por sentinel.
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

// El orden importa: ErrUserNotFound antes que ErrNotFound, etc.
var errorMappings = []errorMapping{
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required"},
	{domain.ErrSuspended, fiber.StatusForbidden, "SUSPENDED", "account suspended"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", "access denied"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "USER_NOT_FOUND", "user not found"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "resource not found"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS", "email already registered"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE", "resource already exists"},
	{domain.ErrInUse, fiber.StatusConflict, "IN_USE", "resource is still referenced"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK", "Insufficient stock for this movement."},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT", "conflicting state"},
	{domain.ErrUploadTooLarge, fiber.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE", "File is too large."},
	{domain.ErrUnsupportedType, fiber.StatusUnsupportedMediaType, "UNSUPPORTED_TYPE", "Unsupported file type."},
	{domain.ErrMovementFailed, fiber.StatusInternalServerError, "MOVEMENT_FAILED", "Unable to record the movement."},
	{domain.ErrDocumentGenerationFailed, fiber.StatusBadGateway, "DOCUMENT_FAILED", "Unable to generate the transfer form."},
}

// writeError traduce un error de caso de uso a dto.ErrorResponse. Lo desconocido es 500
// sin detalle interno; la causa queda en el log.
func writeError(c *fiber.Ctx, err error) error {
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: verrs.Error(), Errors: []string(verrs),
		})
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid input"})
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			if m.status >= fiber.StatusInternalServerError {
				logInternal(c, err, m.code)
			}
			return c.Status(m.status).JSON(dto.ErrorResponse{Code: m.code, Message: m.message})
		}
	}
	logInternal(c, err, "INTERNAL")
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "internal error"})
}

func logInternal(c *fiber.Ctx, err error, code string) {
	ev := requestLog(c).Error().
		Err(err).
		Str("code", code).
		Str("method", c.Method()).
		Str("path", c.Path())
	if route := c.Route(); route != nil {
		ev = ev.Str("route", route.Path)
	}
	if actor := GetActor(c); actor != nil {
		ev = ev.Int64("actor_id", actor.UserID)
	}
	ev.Msg("error interno en request")
}

// StatusFor status HTTP que writeError usaría para err.
func StatusFor(err error) int {
	if errors.Is(err, domain.ErrInvalidInput) {
		return fiber.StatusBadRequest
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status
		}
	}
	return fiber.StatusInternalServerError
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
}

// paramID lee un id numérico positivo de la ruta.
func paramID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func invalidID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "invalid id"})
}
