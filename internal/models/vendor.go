package models

import "time"

// Vendor carries both identifier schemes that coexist in the data: the
// internal user UUID and the composite business id ({role}-{year}-{sequence},
// e.g. "2-2025-001"). Bookings are tagged with the composite form, so it is
// the canonical identifier for all booking queries.
type Vendor struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	UserUUID   string `gorm:"uniqueIndex;not null" json:"user_uuid"`
	BusinessID string `gorm:"uniqueIndex;not null" json:"business_id"`

	BusinessName string `gorm:"not null" json:"business_name"`
	ServiceType  string `json:"service_type"`
	Email        string `json:"email"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
