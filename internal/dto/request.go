package dto

import "time"

type UpdateStatusRequest struct {
	Status      string  `json:"status" validate:"required"`
	VendorNotes *string `json:"vendor_notes,omitempty"`
}

type MarkCompletedRequest struct {
	CompletedBy string `json:"completed_by" validate:"required,oneof=vendor couple"`
}

type QuoteItemRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Quantity    int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
}

type SendQuoteRequest struct {
	// UseTemplate seeds the quote from the service-type template before any
	// request items are added; false builds from request items only.
	UseTemplate    bool               `json:"use_template"`
	Items          []QuoteItemRequest `json:"items" validate:"dive"`
	DownpaymentPct float64            `json:"downpayment_pct" validate:"gte=10,lte=50"`
	Message        string             `json:"message"`
	Terms          string             `json:"terms"`
	ExpiresAt      time.Time          `json:"expires_at" validate:"required"`
}
