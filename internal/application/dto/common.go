package dto

import (
	"bytes"
	"encoding/json"
)

// ErrorResponse cuerpo de error HTTP. Errors lista mensajes de validación cuando aplica.
type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// MessageResponse respuesta simple con mensaje.
type MessageResponse struct {
	Message string `json:"message"`
}

// PageMeta metadatos de página en respuestas paginadas.
type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
}

// OptionalString distingue campo ausente, null y valor en un PATCH.
type OptionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON marca el campo como presente; null deja Value en nil.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}
