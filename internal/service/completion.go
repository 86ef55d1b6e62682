package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/wedora/wedding-marketplace/booking-service/internal/models"
	"github.com/wedora/wedding-marketplace/booking-service/internal/repository"
	"gorm.io/gorm"
)

const (
	PartyVendor = "vendor"
	PartyCouple = "couple"
)

var (
	ErrNotEligibleForCompletion = errors.New("booking is not eligible for completion confirmation")
	ErrUnknownParty             = errors.New("completed_by must be 'vendor' or 'couple'")
)

// IntentQueue accepts confirmations that could not be applied immediately.
// Enqueue must not fail outright even when storage is down; implementations
// keep the intent in memory until it can be persisted.
type IntentQueue interface {
	Enqueue(ctx context.Context, bookingID uint, party string, cause error)
	HasPending(ctx context.Context, bookingID uint) bool
}

// ConfirmationResult tells the caller where the handshake stands after a
// confirmation attempt.
type ConfirmationResult struct {
	Booking          *models.Booking
	AlreadyConfirmed bool
	Completed        bool
	WaitingFor       string // other party still due, "" when none
	SyncPending      bool   // confirmation recorded locally, not yet in storage
}

type CompletionService interface {
	// ConfirmCompletion runs the two-sided handshake for one party.
	ConfirmCompletion(ctx context.Context, bookingID uint, party string) (*ConfirmationResult, error)
	// Apply writes a confirmation straight to storage. Used for outbox
	// retries and couple confirmations arriving over the broker.
	Apply(ctx context.Context, bookingID uint, party string) error
	// SyncStatus reports whether a booking has confirmations waiting to sync.
	SyncStatus(ctx context.Context, bookingID uint) models.SyncStatus
}

type completionService struct {
	bookingRepo repository.BookingRepository
	queue       IntentQueue
	publisher   EventPublisher
}

func NewCompletionService(bookingRepo repository.BookingRepository, queue IntentQueue, publisher EventPublisher) CompletionService {
	return &completionService{
		bookingRepo: bookingRepo,
		queue:       queue,
		publisher:   publisher,
	}
}

func (s *completionService) ConfirmCompletion(ctx context.Context, bookingID uint, party string) (*ConfirmationResult, error) {
	if party != PartyVendor && party != PartyCouple {
		return nil, ErrUnknownParty
	}

	// The eligibility read must be able to tell "no such booking" apart from
	// "storage is down": only the former is a definite answer.
	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}

	if !booking.EligibleForCompletion() {
		return nil, ErrNotEligibleForCompletion
	}

	if confirmedBy(booking, party) {
		return &ConfirmationResult{
			Booking:          booking,
			AlreadyConfirmed: true,
			Completed:        booking.VendorCompleted && booking.CoupleCompleted,
			WaitingFor:       waitingFor(booking),
		}, nil
	}

	if err := s.Apply(ctx, bookingID, party); err != nil {
		// The confirmation itself is valid; only the write failed. Record
		// the intent for retry and report the handshake as if applied so
		// the caller is not blocked by storage being unreachable.
		log.Printf("[completion] apply failed for booking %d (%s), queueing intent: %v", bookingID, party, err)
		s.queue.Enqueue(ctx, bookingID, party, err)

		setConfirmed(booking, party)
		return &ConfirmationResult{
			Booking:     booking,
			Completed:   booking.VendorCompleted && booking.CoupleCompleted,
			WaitingFor:  waitingFor(booking),
			SyncPending: true,
		}, nil
	}

	booking, err = s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	result := &ConfirmationResult{
		Booking:    booking,
		Completed:  booking.Status == models.StatusCompleted,
		WaitingFor: waitingFor(booking),
	}

	if result.Completed && s.publisher != nil {
		_ = s.publisher.Publish("booking.completed", booking)
	}

	return result, nil
}

func (s *completionService) Apply(ctx context.Context, bookingID uint, party string) error {
	if party != PartyVendor && party != PartyCouple {
		return ErrUnknownParty
	}

	return s.bookingRepo.Transaction(ctx, func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			return err
		}

		if confirmedBy(booking, party) {
			return nil
		}

		if !booking.EligibleForCompletion() {
			return ErrNotEligibleForCompletion
		}

		updates := map[string]any{}
		switch party {
		case PartyVendor:
			updates["vendor_completed"] = true
			if booking.CoupleCompleted {
				updates["status"] = models.StatusCompleted
			}
		case PartyCouple:
			updates["couple_completed"] = true
			if booking.VendorCompleted {
				updates["status"] = models.StatusCompleted
			}
		}

		return s.bookingRepo.UpdateFields(ctx, tx, bookingID, updates)
	})
}

func (s *completionService) SyncStatus(ctx context.Context, bookingID uint) models.SyncStatus {
	if s.queue != nil && s.queue.HasPending(ctx, bookingID) {
		return models.SyncPending
	}
	return models.SyncSynced
}

func confirmedBy(b *models.Booking, party string) bool {
	if party == PartyVendor {
		return b.VendorCompleted
	}
	return b.CoupleCompleted
}

func setConfirmed(b *models.Booking, party string) {
	if party == PartyVendor {
		b.VendorCompleted = true
	} else {
		b.CoupleCompleted = true
	}
	if b.VendorCompleted && b.CoupleCompleted {
		b.Status = models.StatusCompleted
	}
}

func waitingFor(b *models.Booking) string {
	switch {
	case b.VendorCompleted && b.CoupleCompleted:
		return ""
	case b.VendorCompleted:
		return PartyCouple
	case b.CoupleCompleted:
		return PartyVendor
	default:
		return ""
	}
}
