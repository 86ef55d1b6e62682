package models

import "time"

// CompletionIntent is a pending completion confirmation that could not be
// applied when it was requested. Intents live in an outbox and are retried
// until the booking record reflects them, so a confirmation accepted while
// the store was unreachable is never lost.
type CompletionIntent struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	BookingID uint   `gorm:"index;not null" json:"booking_id"`
	Party     string `gorm:"type:varchar(10);not null" json:"party"`

	Attempts      int       `gorm:"not null;default:0" json:"attempts"`
	NextAttemptAt time.Time `gorm:"index" json:"next_attempt_at"`
	LastError     string    `gorm:"type:text" json:"last_error"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
