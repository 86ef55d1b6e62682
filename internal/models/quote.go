package models

import "time"

// Quote is a typed record owned by a booking. Quotes used to be serialized
// into the vendor notes field and re-parsed on read; storing them as rows
// removes that entire class of parse failures.
type Quote struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Reference string `gorm:"uniqueIndex;not null" json:"reference"`
	BookingID uint   `gorm:"index;not null" json:"booking_id"`
	VendorID  string `gorm:"index;not null" json:"vendor_id"`

	Items []QuoteItem `gorm:"foreignKey:QuoteID" json:"items"`

	Subtotal       float64 `gorm:"not null" json:"subtotal"`
	Tax            float64 `gorm:"not null" json:"tax"`
	Total          float64 `gorm:"not null" json:"total"`
	DownpaymentPct float64 `gorm:"not null" json:"downpayment_pct"`
	Downpayment    float64 `gorm:"not null" json:"downpayment"`
	Balance        float64 `gorm:"not null" json:"balance"`

	Message   string    `gorm:"type:text" json:"message"`
	Terms     string    `gorm:"type:text" json:"terms"`
	ExpiresAt time.Time `json:"expires_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type QuoteItem struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	QuoteID uint `gorm:"index;not null" json:"quote_id"`

	Name        string  `gorm:"not null" json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Quantity    int     `gorm:"not null" json:"quantity"`
	UnitPrice   float64 `gorm:"not null" json:"unit_price"`
	Total       float64 `gorm:"not null" json:"total"`
}
