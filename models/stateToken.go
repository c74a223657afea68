package models

import "time"

// StateToken binds one OAuth authorization request to its callback (CSRF guard).
// Single-use: the callback consumes and deletes it; anything older than ExpiresAt
// is dead even if still present.
type StateToken struct {
	Id        uint      `json:"id" gorm:"primaryKey"`
	Token     string    `json:"-" gorm:"size:64;uniqueIndex;not null"`
	UserID    string    `json:"user_id" gorm:"size:128;not null"`
	Provider  string    `json:"provider" gorm:"size:32;not null"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null"`
}

func (t *StateToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
