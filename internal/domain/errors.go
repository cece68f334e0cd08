package domain

import (
	"errors"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound                 = errors.New("recurso no encontrado")
	ErrUserNotFound             = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists       = errors.New("el email ya está registrado")
	ErrInvalidInput             = errors.New("entrada inválida")
	ErrDuplicate                = errors.New("recurso duplicado")
	ErrUnauthorized             = errors.New("no autorizado")
	ErrForbidden                = errors.New("acceso denegado")
	ErrSuspended                = errors.New("usuario suspendido")
	ErrConflict                 = errors.New("conflicto con el estado actual")
	ErrInUse                    = errors.New("el recurso está referenciado por otros registros")
	ErrInsufficientStock        = errors.New("stock insuficiente")
	ErrMovementFailed           = errors.New("no se pudo registrar el movimiento")
	ErrDocumentGenerationFailed = errors.New("no se pudo generar el formulario de traslado")
	ErrUnsupportedType          = errors.New("tipo de archivo no soportado")
	ErrUploadTooLarge           = errors.New("archivo demasiado grande")
)

// ValidationErrors lista de mensajes de validación. errors.Is(err, ErrInvalidInput) es true.
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ErrInvalidInput.Error()
	}
	return strings.Join(v, " ")
}

// Is permite comparar contra ErrInvalidInput.
func (v ValidationErrors) Is(target error) bool {
	return target == ErrInvalidInput
}

// Add agrega un mensaje.
func (v *ValidationErrors) Add(msg string) {
	*v = append(*v, msg)
}

// Err devuelve nil si no hay mensajes.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
