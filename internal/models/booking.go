package models

import "time"

type BookingStatus string

const (
	StatusDraft           BookingStatus = "draft"
	StatusQuoteRequested  BookingStatus = "quote_requested"
	StatusQuoteSent       BookingStatus = "quote_sent"
	StatusQuoteAccepted   BookingStatus = "quote_accepted"
	StatusQuoteRejected   BookingStatus = "quote_rejected"
	StatusConfirmed       BookingStatus = "confirmed"
	StatusDownpaymentPaid BookingStatus = "downpayment_paid"
	StatusDepositPaid     BookingStatus = "deposit_paid"
	StatusInProgress      BookingStatus = "in_progress"
	StatusFullyPaid       BookingStatus = "fully_paid"
	StatusPaidInFull      BookingStatus = "paid_in_full"
	StatusCompleted       BookingStatus = "completed"
	StatusCancelled       BookingStatus = "cancelled"
	StatusDisputed        BookingStatus = "disputed"
	StatusRefunded        BookingStatus = "refunded"
)

// ValidStatuses is the closed set accepted by status-update requests.
var ValidStatuses = map[BookingStatus]bool{
	StatusDraft:           true,
	StatusQuoteRequested:  true,
	StatusQuoteSent:       true,
	StatusQuoteAccepted:   true,
	StatusQuoteRejected:   true,
	StatusConfirmed:       true,
	StatusDownpaymentPaid: true,
	StatusDepositPaid:     true,
	StatusInProgress:      true,
	StatusFullyPaid:       true,
	StatusPaidInFull:      true,
	StatusCompleted:       true,
	StatusCancelled:       true,
	StatusDisputed:        true,
	StatusRefunded:        true,
}

type SyncStatus string

const (
	SyncSynced  SyncStatus = "synced"
	SyncPending SyncStatus = "pending_sync"
)

type Booking struct {
	ID       uint          `gorm:"primaryKey" json:"id"`
	VendorID string        `gorm:"index;not null" json:"vendor_id"`
	CoupleID string        `gorm:"not null" json:"couple_id"`
	Status   BookingStatus `gorm:"type:varchar(32);not null;default:'quote_requested'" json:"status"`

	CoupleName      string `json:"couple_name"`
	ServiceType     string `gorm:"not null" json:"service_type"`
	Venue           string `json:"venue"`
	GuestCount      int    `json:"guest_count"`
	SpecialRequests string `gorm:"type:text" json:"special_requests"`

	EventDate time.Time `json:"event_date"`
	EventTime string    `json:"event_time"`

	TotalAmount       float64 `gorm:"not null;default:0" json:"total_amount"`
	TotalPaid         float64 `gorm:"not null;default:0" json:"total_paid"`
	DownpaymentAmount float64 `gorm:"not null;default:0" json:"downpayment_amount"`

	VendorCompleted bool `gorm:"not null;default:false" json:"vendor_completed"`
	CoupleCompleted bool `gorm:"not null;default:false" json:"couple_completed"`

	VendorNotes string `gorm:"type:text" json:"vendor_notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RemainingBalance is total minus paid, clamped at zero so bad data never
// renders a negative balance.
func (b *Booking) RemainingBalance() float64 {
	if balance := b.TotalAmount - b.TotalPaid; balance > 0 {
		return balance
	}
	return 0
}

// Terminal reports whether the booking can no longer be mutated.
func (b *Booking) Terminal() bool {
	return b.Status == StatusCancelled || b.Status == StatusCompleted
}

// completionEligible holds the statuses from which a completion confirmation
// may start. deposit_paid is accepted alongside the fully-paid statuses.
// TODO: confirm with product whether deposit_paid alone should allow completion.
var completionEligible = map[BookingStatus]bool{
	StatusFullyPaid:   true,
	StatusPaidInFull:  true,
	StatusDepositPaid: true,
}

// EligibleForCompletion reports whether a party may confirm completion. A
// booking already carrying one confirmation stays eligible for the other
// party regardless of interim status changes.
func (b *Booking) EligibleForCompletion() bool {
	return completionEligible[b.Status] || b.VendorCompleted || b.CoupleCompleted
}

// convertedStatuses counts toward the conversion rate: anything at or past
// confirmed in the lifecycle.
var convertedStatuses = map[BookingStatus]bool{
	StatusConfirmed:       true,
	StatusDownpaymentPaid: true,
	StatusDepositPaid:     true,
	StatusInProgress:      true,
	StatusFullyPaid:       true,
	StatusPaidInFull:      true,
	StatusCompleted:       true,
}

func (b *Booking) Converted() bool {
	return convertedStatuses[b.Status]
}
