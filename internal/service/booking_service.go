package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/wedora/wedding-marketplace/booking-service/internal/models"
	"github.com/wedora/wedding-marketplace/booking-service/internal/policy"
	"github.com/wedora/wedding-marketplace/booking-service/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrBookingNotFound  = errors.New("booking not found")
	ErrBookingImmutable = errors.New("booking is cancelled or completed and can no longer be changed")
	ErrInvalidStatus    = errors.New("unknown booking status")
)

// EventPublisher is the messaging side-effect port; nil disables publishing.
type EventPublisher interface {
	Publish(routingKey string, payload any) error
}

// VendorStats are the dashboard aggregates for one vendor.
type VendorStats struct {
	VendorID            string                       `json:"vendor_id"`
	TotalBookings       int                          `json:"total_bookings"`
	StatusCounts        map[models.BookingStatus]int `json:"status_counts"`
	TotalRevenue        float64                      `json:"total_revenue"`
	AverageBookingValue float64                      `json:"average_booking_value"`
	ConversionRate      float64                      `json:"conversion_rate"`
}

type BookingService interface {
	ListVendorBookings(ctx context.Context, vendorID string, filter repository.ListFilter) ([]models.Booking, error)
	GetVendorStats(ctx context.Context, vendorID string) (*VendorStats, error)
	GetBooking(ctx context.Context, id uint) (*models.Booking, error)
	UpdateStatus(ctx context.Context, bookingID uint, status models.BookingStatus, vendorNotes *string) (*models.Booking, error)
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	guard       *policy.Guard
	publisher   EventPublisher
}

func NewBookingService(bookingRepo repository.BookingRepository, guard *policy.Guard, publisher EventPublisher) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		guard:       guard,
		publisher:   publisher,
	}
}

// ListVendorBookings queries storage filtered by the exact vendor id and then
// re-verifies every returned row's owner. On storage failure it returns the
// error as-is; callers never get fabricated or stale data in place of a
// working query.
func (s *bookingService) ListVendorBookings(ctx context.Context, vendorID string, filter repository.ListFilter) ([]models.Booking, error) {
	bookings, err := s.bookingRepo.FindByVendorID(ctx, vendorID, filter)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	if err := s.guard.VerifyOwnership(vendorID, bookings); err != nil {
		return nil, err
	}

	return bookings, nil
}

func (s *bookingService) GetVendorStats(ctx context.Context, vendorID string) (*VendorStats, error) {
	bookings, err := s.bookingRepo.FindAllByVendorID(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("load bookings for stats: %w", err)
	}

	if err := s.guard.VerifyOwnership(vendorID, bookings); err != nil {
		return nil, err
	}

	stats := &VendorStats{
		VendorID:     vendorID,
		StatusCounts: make(map[models.BookingStatus]int),
	}

	var converted int
	for i := range bookings {
		b := &bookings[i]
		stats.TotalBookings++
		stats.StatusCounts[b.Status]++
		stats.TotalRevenue += b.TotalAmount
		if b.Converted() {
			converted++
		}
	}

	if stats.TotalBookings > 0 {
		stats.AverageBookingValue = stats.TotalRevenue / float64(stats.TotalBookings)
		stats.ConversionRate = float64(converted) / float64(stats.TotalBookings) * 100
	}

	return stats, nil
}

// GetBooking reports ErrBookingNotFound only for a genuinely missing row.
// A storage failure stays a storage failure; a transient outage must never
// read as "this booking does not exist".
func (s *bookingService) GetBooking(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}
	return booking, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, bookingID uint, status models.BookingStatus, vendorNotes *string) (*models.Booking, error) {
	if !models.ValidStatuses[status] {
		return nil, ErrInvalidStatus
	}

	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}

	if booking.Terminal() {
		return nil, ErrBookingImmutable
	}

	if err := s.bookingRepo.UpdateStatus(ctx, s.bookingRepo.GetDB(), bookingID, status, vendorNotes); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	booking.Status = status
	if vendorNotes != nil {
		booking.VendorNotes = *vendorNotes
	}

	if s.publisher != nil {
		_ = s.publisher.Publish("booking.status_changed", booking)
	}

	return booking, nil
}
