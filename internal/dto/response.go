package dto

import (
	"time"

	"github.com/wedora/wedding-marketplace/booking-service/internal/models"
	"github.com/wedora/wedding-marketplace/booking-service/internal/service"
)

type BookingResponse struct {
	ID       uint                 `json:"id"`
	VendorID string               `json:"vendor_id"`
	CoupleID string               `json:"couple_id"`
	Status   models.BookingStatus `json:"status"`

	CoupleName      string `json:"couple_name"`
	ServiceType     string `json:"service_type"`
	Venue           string `json:"venue"`
	GuestCount      int    `json:"guest_count"`
	SpecialRequests string `json:"special_requests,omitempty"`

	EventDate time.Time `json:"event_date"`
	EventTime string    `json:"event_time"`

	TotalAmount       float64 `json:"total_amount"`
	TotalPaid         float64 `json:"total_paid"`
	DownpaymentAmount float64 `json:"downpayment_amount"`
	RemainingBalance  float64 `json:"remaining_balance"`

	VendorCompleted bool              `json:"vendor_completed"`
	CoupleCompleted bool              `json:"couple_completed"`
	SyncStatus      models.SyncStatus `json:"sync_status"`

	VendorNotes string `json:"vendor_notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToBookingResponse(b *models.Booking, sync models.SyncStatus) BookingResponse {
	return BookingResponse{
		ID:                b.ID,
		VendorID:          b.VendorID,
		CoupleID:          b.CoupleID,
		Status:            b.Status,
		CoupleName:        b.CoupleName,
		ServiceType:       b.ServiceType,
		Venue:             b.Venue,
		GuestCount:        b.GuestCount,
		SpecialRequests:   b.SpecialRequests,
		EventDate:         b.EventDate,
		EventTime:         b.EventTime,
		TotalAmount:       b.TotalAmount,
		TotalPaid:         b.TotalPaid,
		DownpaymentAmount: b.DownpaymentAmount,
		RemainingBalance:  b.RemainingBalance(),
		VendorCompleted:   b.VendorCompleted,
		CoupleCompleted:   b.CoupleCompleted,
		SyncStatus:        sync,
		VendorNotes:       b.VendorNotes,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}
}

type VendorBookingsResponse struct {
	Success           bool              `json:"success"`
	Bookings          []BookingResponse `json:"bookings"`
	Count             int               `json:"count"`
	VendorID          string            `json:"vendor_id"`
	SecurityValidated bool              `json:"security_validated"`
	Timestamp         time.Time         `json:"timestamp"`
}

type VendorStatsResponse struct {
	Success   bool                 `json:"success"`
	Stats     *service.VendorStats `json:"stats"`
	Timestamp time.Time            `json:"timestamp"`
}

// AccessDeniedResponse carries the machine-readable rejection code for guard
// failures (403) and integrity failures (500).
type AccessDeniedResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CompletionResponse struct {
	Success          bool            `json:"success"`
	Completed        bool            `json:"completed"`
	AlreadyConfirmed bool            `json:"already_confirmed,omitempty"`
	WaitingFor       *string         `json:"waiting_for"`
	SyncPending      bool            `json:"sync_pending,omitempty"`
	Booking          BookingResponse `json:"booking"`
}

type QuoteItemResponse struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

type QuoteResponse struct {
	Reference      string              `json:"reference"`
	BookingID      uint                `json:"booking_id"`
	Items          []QuoteItemResponse `json:"items"`
	Subtotal       float64             `json:"subtotal"`
	Tax            float64             `json:"tax"`
	Total          float64             `json:"total"`
	DownpaymentPct float64             `json:"downpayment_pct"`
	Downpayment    float64             `json:"downpayment"`
	Balance        float64             `json:"balance"`
	Message        string              `json:"message,omitempty"`
	Terms          string              `json:"terms,omitempty"`
	ExpiresAt      time.Time           `json:"expires_at"`
	CreatedAt      time.Time           `json:"created_at"`
}

func ToQuoteResponse(q *models.Quote) QuoteResponse {
	items := make([]QuoteItemResponse, len(q.Items))
	for i, item := range q.Items {
		items[i] = QuoteItemResponse{
			Name:        item.Name,
			Description: item.Description,
			Category:    item.Category,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		}
	}
	return QuoteResponse{
		Reference:      q.Reference,
		BookingID:      q.BookingID,
		Items:          items,
		Subtotal:       q.Subtotal,
		Tax:            q.Tax,
		Total:          q.Total,
		DownpaymentPct: q.DownpaymentPct,
		Downpayment:    q.Downpayment,
		Balance:        q.Balance,
		Message:        q.Message,
		Terms:          q.Terms,
		ExpiresAt:      q.ExpiresAt,
		CreatedAt:      q.CreatedAt,
	}
}

type ErrorResponse struct {
	Message string `json:"message"`
}
