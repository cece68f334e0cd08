package dto

// SectorRequest alta/edición de sector.
type SectorRequest struct {
	Slug          string `json:"slug"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	ContactEmail  string `json:"contact_email,omitempty"`
	ContactPhone  string `json:"contact_phone,omitempty"`
	ColorHex      string `json:"color_hex,omitempty"`
	ManagerUserID *int64 `json:"manager_user_id,omitempty"`
}

// SectorResponse sector del directorio.
type SectorResponse struct {
	ID            int64  `json:"id"`
	Slug          string `json:"slug"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	ContactEmail  string `json:"contact_email,omitempty"`
	ContactPhone  string `json:"contact_phone,omitempty"`
	ColorHex      string `json:"color_hex,omitempty"`
	ManagerUserID *int64 `json:"manager_user_id,omitempty"`
}
