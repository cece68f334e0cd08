package dto

import "time"

// CreateItemRequest body para POST /api/inventory/items.
type CreateItemRequest struct {
	Name     string `json:"name"`
	SKU      string `json:"sku,omitempty"`
	Location string `json:"location,omitempty"`
	SectorID *int64 `json:"sector_id,omitempty"` // solo root elige; el resto recibe su sector
	Quantity int    `json:"quantity"`
}

// UpdateItemRequest body para PUT /api/inventory/items/:id. La cantidad no se edita aquí.
type UpdateItemRequest struct {
	Name     string `json:"name"`
	SKU      string `json:"sku,omitempty"`
	Location string `json:"location,omitempty"`
	SectorID *int64 `json:"sector_id,omitempty"`
}

// MoveStockRequest body para POST /api/inventory/items/:id/movements.
type MoveStockRequest struct {
	Direction         string `json:"direction"` // in | out
	Amount            int    `json:"amount"`
	Reason            string `json:"reason,omitempty"`
	Notes             string `json:"notes,omitempty"`
	SourceSectorID    *int64 `json:"source_sector_id,omitempty"`
	TargetSectorID    *int64 `json:"target_sector_id,omitempty"`
	SourceLocation    string `json:"source_location,omitempty"`
	TargetLocation    string `json:"target_location,omitempty"`
	RequiresSignature bool   `json:"requires_signature"`
}

// AttachmentResponse adjunto de un movimiento.
type AttachmentResponse struct {
	ID         int64     `json:"id"`
	FileURL    string    `json:"file_url"`
	Mime       string    `json:"mime"`
	Label      string    `json:"label,omitempty"`
	Kind       string    `json:"kind"`
	UploadedBy *int64    `json:"uploaded_by,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// MovementResponse movimiento con etiquetas legibles.
type MovementResponse struct {
	ID                int64                `json:"id"`
	ItemID            int64                `json:"item_id"`
	Direction         string               `json:"direction"`
	Amount            int                  `json:"amount"`
	Reason            string               `json:"reason,omitempty"`
	Notes             string               `json:"notes,omitempty"`
	UserID            *int64               `json:"user_id,omitempty"`
	ActorLabel        string               `json:"actor_label"`
	SourceSectorID    *int64               `json:"source_sector_id,omitempty"`
	SourceSectorName  string               `json:"source_sector_name"`
	TargetSectorID    *int64               `json:"target_sector_id,omitempty"`
	TargetSectorName  string               `json:"target_sector_name"`
	SourceLocation    string               `json:"source_location,omitempty"`
	TargetLocation    string               `json:"target_location,omitempty"`
	RequiresSignature bool                 `json:"requires_signature"`
	TransferStatus    string               `json:"transfer_status"`
	TransferFormURL   string               `json:"transfer_form_url,omitempty"`
	CreatedAt         time.Time            `json:"created_at"`
	Attachments       []AttachmentResponse `json:"attachments"`
}

// ItemResponse artículo con sus últimos movimientos.
type ItemResponse struct {
	ID         int64              `json:"id"`
	SKU        string             `json:"sku,omitempty"`
	Name       string             `json:"name"`
	SectorID   *int64             `json:"sector_id,omitempty"`
	SectorName string             `json:"sector_name"`
	Quantity   int                `json:"quantity"`
	Location   string             `json:"location,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
	Movements  []MovementResponse `json:"movements,omitempty"`
}

// ItemListResponse listado de artículos con el filtro de sector aplicado.
type ItemListResponse struct {
	Sector string         `json:"sector"`
	Items  []ItemResponse `json:"items"`
}

// MoveStockResponse resultado de un movimiento. Warning indica que el movimiento quedó
// registrado pero el formulario de traslado no se pudo generar.
type MoveStockResponse struct {
	Movement MovementResponse `json:"movement"`
	Quantity int              `json:"quantity"`
	Message  string           `json:"message"`
	Warning  string           `json:"warning,omitempty"`
}

// PendingTransferResponse traslado pendiente de firma.
type PendingTransferResponse struct {
	MovementResponse
	ItemName string `json:"item_name"`
	ItemSKU  string `json:"item_sku,omitempty"`
}

// TransferFormResponse formulario generado.
type TransferFormResponse struct {
	MovementID int64  `json:"movement_id"`
	Key        string `json:"key"`
	URL        string `json:"url"`
}

// UploadAttachmentResponse resultado de la carga de un adjunto.
type UploadAttachmentResponse struct {
	Attachment     AttachmentResponse `json:"attachment"`
	TransferStatus string             `json:"transfer_status"`
	Signed         bool               `json:"signed"` // true si esta carga firmó el traslado
	Message        string             `json:"message"`
}
