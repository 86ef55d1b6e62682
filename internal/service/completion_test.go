package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wedora/wedding-marketplace/booking-service/internal/models"
	"gorm.io/gorm"
)

// --- Mocks ---

type mockIntentQueue struct {
	enqueued   []enqueuedIntent
	hasPending bool
}

type enqueuedIntent struct {
	bookingID uint
	party     string
}

func (m *mockIntentQueue) Enqueue(ctx context.Context, bookingID uint, party string, cause error) {
	m.enqueued = append(m.enqueued, enqueuedIntent{bookingID: bookingID, party: party})
}

func (m *mockIntentQueue) HasPending(ctx context.Context, bookingID uint) bool {
	return m.hasPending
}

type mockPublisher struct {
	published []string
}

func (m *mockPublisher) Publish(routingKey string, payload any) error {
	m.published = append(m.published, routingKey)
	return nil
}

// bookingStore keeps one booking mutable behind the repo mock so sequential
// handshake steps observe each other's writes.
func bookingStore(b *models.Booking) *mockBookingRepo {
	return &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id uint) (*models.Booking, error) {
			if b == nil || b.ID != id {
				return nil, gorm.ErrRecordNotFound
			}
			copied := *b
			return &copied, nil
		},
		updateFieldsFn: func(ctx context.Context, tx *gorm.DB, bookingID uint, updates map[string]any) error {
			if v, ok := updates["vendor_completed"].(bool); ok {
				b.VendorCompleted = v
			}
			if v, ok := updates["couple_completed"].(bool); ok {
				b.CoupleCompleted = v
			}
			if s, ok := updates["status"].(models.BookingStatus); ok {
				b.Status = s
			}
			return nil
		},
	}
}

// --- ConfirmCompletion ---

func TestConfirmCompletion_FirstPartyWaitsForOther(t *testing.T) {
	booking := &models.Booking{ID: 1, VendorID: "2-2025-001", Status: models.StatusFullyPaid}
	svc := NewCompletionService(bookingStore(booking), &mockIntentQueue{}, &mockPublisher{})

	result, err := svc.ConfirmCompletion(context.Background(), 1, PartyVendor)

	require.NoError(t, err)
	assert.False(t, result.Completed)
	assert.False(t, result.AlreadyConfirmed)
	assert.Equal(t, PartyCouple, result.WaitingFor)
	assert.True(t, booking.VendorCompleted)
	assert.NotEqual(t, models.StatusCompleted, booking.Status)
}

func TestConfirmCompletion_BothPartiesCompleteBooking(t *testing.T) {
	booking := &models.Booking{ID: 1, VendorID: "2-2025-001", Status: models.StatusFullyPaid}
	pub := &mockPublisher{}
	svc := NewCompletionService(bookingStore(booking), &mockIntentQueue{}, pub)

	_, err := svc.ConfirmCompletion(context.Background(), 1, PartyVendor)
	require.NoError(t, err)

	result, err := svc.ConfirmCompletion(context.Background(), 1, PartyCouple)
	require.NoError(t, err)

	assert.True(t, result.Completed)
	assert.Empty(t, result.WaitingFor)
	assert.Equal(t, models.StatusCompleted, booking.Status)
	assert.Contains(t, pub.published, "booking.completed")
}

func TestConfirmCompletion_RepeatConfirmationIsIdempotent(t *testing.T) {
	booking := &models.Booking{ID: 1, Status: models.StatusFullyPaid, VendorCompleted: true}
	repo := bookingStore(booking)
	svc := NewCompletionService(repo, &mockIntentQueue{}, &mockPublisher{})

	result, err := svc.ConfirmCompletion(context.Background(), 1, PartyVendor)

	require.NoError(t, err)
	assert.True(t, result.AlreadyConfirmed)
	assert.False(t, result.Completed)
	assert.Equal(t, PartyCouple, result.WaitingFor)
}

func TestConfirmCompletion_NotEligible(t *testing.T) {
	booking := &models.Booking{ID: 1, Status: models.StatusQuoteSent}
	svc := NewCompletionService(bookingStore(booking), &mockIntentQueue{}, &mockPublisher{})

	_, err := svc.ConfirmCompletion(context.Background(), 1, PartyVendor)
	assert.ErrorIs(t, err, ErrNotEligibleForCompletion)
}

func TestConfirmCompletion_UnknownParty(t *testing.T) {
	svc := NewCompletionService(bookingStore(nil), &mockIntentQueue{}, &mockPublisher{})

	_, err := svc.ConfirmCompletion(context.Background(), 1, "officiant")
	assert.ErrorIs(t, err, ErrUnknownParty)
}

func TestConfirmCompletion_NotFound(t *testing.T) {
	svc := NewCompletionService(bookingStore(nil), &mockIntentQueue{}, &mockPublisher{})

	_, err := svc.ConfirmCompletion(context.Background(), 99, PartyVendor)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestConfirmCompletion_ReadFailureIsNotNotFound(t *testing.T) {
	// When the eligibility read itself fails, the caller must see a storage
	// error, not a fabricated "booking not found", and nothing may be queued.
	repo := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id uint) (*models.Booking, error) {
			return nil, errors.New("connection refused")
		},
	}
	queue := &mockIntentQueue{}
	svc := NewCompletionService(repo, queue, &mockPublisher{})

	_, err := svc.ConfirmCompletion(context.Background(), 1, PartyVendor)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBookingNotFound)
	assert.Empty(t, queue.enqueued)
}

func TestConfirmCompletion_WriteFailureQueuesIntent(t *testing.T) {
	// The read works, the write does not: the confirmation must be queued for
	// retry and reported back as applied-but-pending, not failed.
	booking := &models.Booking{ID: 1, Status: models.StatusFullyPaid}
	repo := bookingStore(booking)
	repo.updateFieldsFn = func(ctx context.Context, tx *gorm.DB, bookingID uint, updates map[string]any) error {
		return errors.New("connection reset")
	}

	queue := &mockIntentQueue{}
	svc := NewCompletionService(repo, queue, &mockPublisher{})

	result, err := svc.ConfirmCompletion(context.Background(), 1, PartyVendor)

	require.NoError(t, err)
	assert.True(t, result.SyncPending)
	assert.True(t, result.Booking.VendorCompleted)
	assert.Equal(t, PartyCouple, result.WaitingFor)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, uint(1), queue.enqueued[0].bookingID)
	assert.Equal(t, PartyVendor, queue.enqueued[0].party)
}

// --- Apply ---

func TestApply_SecondConfirmationSetsCompleted(t *testing.T) {
	booking := &models.Booking{ID: 1, Status: models.StatusFullyPaid, VendorCompleted: true}
	svc := NewCompletionService(bookingStore(booking), &mockIntentQueue{}, &mockPublisher{})

	err := svc.Apply(context.Background(), 1, PartyCouple)

	require.NoError(t, err)
	assert.True(t, booking.CoupleCompleted)
	assert.Equal(t, models.StatusCompleted, booking.Status)
}

func TestApply_AlreadyConfirmedIsNoop(t *testing.T) {
	booking := &models.Booking{ID: 1, Status: models.StatusFullyPaid, VendorCompleted: true}
	repo := bookingStore(booking)
	var writes int
	inner := repo.updateFieldsFn
	repo.updateFieldsFn = func(ctx context.Context, tx *gorm.DB, bookingID uint, updates map[string]any) error {
		writes++
		return inner(ctx, tx, bookingID, updates)
	}
	svc := NewCompletionService(repo, &mockIntentQueue{}, &mockPublisher{})

	require.NoError(t, svc.Apply(context.Background(), 1, PartyVendor))
	assert.Zero(t, writes)
}

func TestApply_IneligibleBookingRejected(t *testing.T) {
	booking := &models.Booking{ID: 1, Status: models.StatusCancelled}
	svc := NewCompletionService(bookingStore(booking), &mockIntentQueue{}, &mockPublisher{})

	err := svc.Apply(context.Background(), 1, PartyCouple)
	assert.ErrorIs(t, err, ErrNotEligibleForCompletion)
}

// --- SyncStatus ---

func TestSyncStatus(t *testing.T) {
	booking := &models.Booking{ID: 1, Status: models.StatusFullyPaid}
	queue := &mockIntentQueue{}
	svc := NewCompletionService(bookingStore(booking), queue, &mockPublisher{})

	assert.Equal(t, models.SyncSynced, svc.SyncStatus(context.Background(), 1))

	queue.hasPending = true
	assert.Equal(t, models.SyncPending, svc.SyncStatus(context.Background(), 1))
}
