package entity

import "time"

// ActivityEntry registro de auditoría (tabla activity_log en core).
type ActivityEntry struct {
	ID         int64
	UserID     *int64
	Action     string
	EntityType string
	EntityID   int64
	Meta       map[string]any
	CreatedAt  time.Time
}
