package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wedora/wedding-marketplace/booking-service/internal/models"
	"gorm.io/gorm"
)

type mockQuoteRepo struct {
	createFn          func(ctx context.Context, tx *gorm.DB, quote *models.Quote) error
	findByBookingIDFn func(ctx context.Context, bookingID uint) (*models.Quote, error)
	findLatestFn      func(ctx context.Context, vendorID, serviceType string) (*models.Quote, error)
}

func (m *mockQuoteRepo) Create(ctx context.Context, tx *gorm.DB, quote *models.Quote) error {
	if m.createFn != nil {
		return m.createFn(ctx, tx, quote)
	}
	return nil
}

func (m *mockQuoteRepo) FindByBookingID(ctx context.Context, bookingID uint) (*models.Quote, error) {
	return m.findByBookingIDFn(ctx, bookingID)
}

func (m *mockQuoteRepo) FindLatestByVendorAndServiceType(ctx context.Context, vendorID, serviceType string) (*models.Quote, error) {
	if m.findLatestFn != nil {
		return m.findLatestFn(ctx, vendorID, serviceType)
	}
	return nil, gorm.ErrRecordNotFound
}

func builtQuote(t *testing.T, bookingID uint) *models.Quote {
	t.Helper()
	b := NewQuoteBuilder(bookingID, "2-2025-001", "photography", nil)
	quote, err := b.Build("", "", time.Now().Add(72*time.Hour))
	require.NoError(t, err)
	return quote
}

func TestSendQuote_MovesBookingToQuoteSent(t *testing.T) {
	var updates map[string]any
	bookingRepo := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id uint) (*models.Booking, error) {
			return &models.Booking{ID: id, VendorID: "2-2025-001", Status: models.StatusQuoteRequested}, nil
		},
		updateFieldsFn: func(ctx context.Context, tx *gorm.DB, bookingID uint, u map[string]any) error {
			updates = u
			return nil
		},
	}
	quoteRepo := &mockQuoteRepo{}
	pub := &mockPublisher{}

	svc := NewQuoteService(bookingRepo, quoteRepo, pub)
	quote := builtQuote(t, 1)

	sent, err := svc.SendQuote(context.Background(), 1, quote)

	require.NoError(t, err)
	assert.Equal(t, quote.Reference, sent.Reference)
	assert.Equal(t, models.StatusQuoteSent, updates["status"])
	assert.Equal(t, quote.Total, updates["total_amount"])
	assert.Equal(t, quote.Downpayment, updates["downpayment_amount"])
	assert.Contains(t, pub.published, "quote.sent")
}

func TestSendQuote_TerminalBookingRejected(t *testing.T) {
	bookingRepo := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id uint) (*models.Booking, error) {
			return &models.Booking{ID: id, Status: models.StatusCancelled}, nil
		},
	}
	var created bool
	quoteRepo := &mockQuoteRepo{
		createFn: func(ctx context.Context, tx *gorm.DB, quote *models.Quote) error {
			created = true
			return nil
		},
	}

	svc := NewQuoteService(bookingRepo, quoteRepo, &mockPublisher{})
	_, err := svc.SendQuote(context.Background(), 1, builtQuote(t, 1))

	assert.ErrorIs(t, err, ErrBookingImmutable)
	assert.False(t, created)
}

func TestSendQuote_BookingNotFound(t *testing.T) {
	bookingRepo := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id uint) (*models.Booking, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}

	svc := NewQuoteService(bookingRepo, &mockQuoteRepo{}, &mockPublisher{})
	_, err := svc.SendQuote(context.Background(), 99, builtQuote(t, 99))

	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestSendQuote_PersistFailureRollsBack(t *testing.T) {
	bookingRepo := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id uint) (*models.Booking, error) {
			return &models.Booking{ID: id, Status: models.StatusQuoteRequested}, nil
		},
	}
	quoteRepo := &mockQuoteRepo{
		createFn: func(ctx context.Context, tx *gorm.DB, quote *models.Quote) error {
			return errors.New("unique_violation")
		},
	}
	pub := &mockPublisher{}

	svc := NewQuoteService(bookingRepo, quoteRepo, pub)
	_, err := svc.SendQuote(context.Background(), 1, builtQuote(t, 1))

	assert.Error(t, err)
	assert.Empty(t, pub.published)
}

func TestSendQuote_ExpiryAfterEventDateRejected(t *testing.T) {
	eventDate := time.Now().Add(48 * time.Hour)
	bookingRepo := &mockBookingRepo{
		findByIDFn: func(ctx context.Context, id uint) (*models.Booking, error) {
			return &models.Booking{ID: id, Status: models.StatusQuoteRequested, EventDate: eventDate}, nil
		},
	}

	svc := NewQuoteService(bookingRepo, &mockQuoteRepo{}, &mockPublisher{})

	b := NewQuoteBuilder(1, "2-2025-001", "photography", nil)
	quote, err := b.Build("", "", eventDate.Add(24*time.Hour))
	require.NoError(t, err)

	_, err = svc.SendQuote(context.Background(), 1, quote)
	assert.ErrorIs(t, err, ErrQuoteExpiresAfterEvent)
}

// --- HistoricalPrices ---

func TestHistoricalPrices_MapsItemNamesToUnitPrices(t *testing.T) {
	quoteRepo := &mockQuoteRepo{
		findLatestFn: func(ctx context.Context, vendorID, serviceType string) (*models.Quote, error) {
			return &models.Quote{
				VendorID: vendorID,
				Items: []models.QuoteItem{
					{Name: "Full-day coverage", UnitPrice: 52000},
					{Name: "Printed album", UnitPrice: 14000},
				},
			}, nil
		},
	}

	svc := NewQuoteService(&mockBookingRepo{}, quoteRepo, nil)
	prices, err := svc.HistoricalPrices(context.Background(), "2-2025-001", "photography")

	require.NoError(t, err)
	assert.Equal(t, map[string]float64{
		"Full-day coverage": 52000,
		"Printed album":     14000,
	}, prices)
}

func TestHistoricalPrices_NoPriorQuotes(t *testing.T) {
	svc := NewQuoteService(&mockBookingRepo{}, &mockQuoteRepo{}, nil)
	prices, err := svc.HistoricalPrices(context.Background(), "2-2025-001", "photography")

	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestHistoricalPrices_StorageError(t *testing.T) {
	quoteRepo := &mockQuoteRepo{
		findLatestFn: func(ctx context.Context, vendorID, serviceType string) (*models.Quote, error) {
			return nil, errors.New("db down")
		},
	}

	svc := NewQuoteService(&mockBookingRepo{}, quoteRepo, nil)
	_, err := svc.HistoricalPrices(context.Background(), "2-2025-001", "photography")

	assert.Error(t, err)
}

func TestGetQuote(t *testing.T) {
	quoteRepo := &mockQuoteRepo{
		findByBookingIDFn: func(ctx context.Context, bookingID uint) (*models.Quote, error) {
			return &models.Quote{BookingID: bookingID, Reference: "QT-ABCD1234"}, nil
		},
	}

	svc := NewQuoteService(&mockBookingRepo{}, quoteRepo, nil)
	quote, err := svc.GetQuote(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, "QT-ABCD1234", quote.Reference)
}
