package entity

import "time"

// Tipos de adjunto. Solo AttachmentSignature dispara pending -> signed.
const (
	AttachmentSignature = "signature"
	AttachmentPhoto     = "photo"
	AttachmentOther     = "other"
)

// MovementAttachment archivo adjunto a un movimiento (append-only).
type MovementAttachment struct {
	ID         int64
	MovementID int64
	FileKey    string
	FileURL    string
	Mime       string
	Label      string
	Kind       string
	UploadedBy *int64
	UploadedAt time.Time
}

// IsValidAttachmentKind valida el tipo de adjunto.
func IsValidAttachmentKind(kind string) bool {
	switch kind {
	case AttachmentSignature, AttachmentPhoto, AttachmentOther:
		return true
	}
	return false
}
