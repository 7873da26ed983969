package domain

import "time"

// Base provides common identity and timestamp fields for stored entities.
// Embed it in any domain type that gets persisted.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp to the current time.
// Call this whenever the underlying entity changes.
func (b *Base) Touch() {
	b.UpdatedAt = time.Now()
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new entity.
func (b *Base) InitTimestamps() {
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
}
