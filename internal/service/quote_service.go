package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/wedora/wedding-marketplace/booking-service/internal/models"
	"github.com/wedora/wedding-marketplace/booking-service/internal/repository"
	"gorm.io/gorm"
)

type QuoteService interface {
	// SendQuote persists a built quote and moves the booking to quote_sent
	// in one transaction. Delivery to the couple happens via the broker.
	SendQuote(ctx context.Context, bookingID uint, quote *models.Quote) (*models.Quote, error)
	GetQuote(ctx context.Context, bookingID uint) (*models.Quote, error)
	// HistoricalPrices returns the vendor's going rate per item name, taken
	// from their most recent quote for the service type. Empty map when the
	// vendor has not quoted that service type before.
	HistoricalPrices(ctx context.Context, vendorID, serviceType string) (map[string]float64, error)
}

type quoteService struct {
	bookingRepo repository.BookingRepository
	quoteRepo   repository.QuoteRepository
	publisher   EventPublisher
}

func NewQuoteService(bookingRepo repository.BookingRepository, quoteRepo repository.QuoteRepository, publisher EventPublisher) QuoteService {
	return &quoteService{
		bookingRepo: bookingRepo,
		quoteRepo:   quoteRepo,
		publisher:   publisher,
	}
}

func (s *quoteService) SendQuote(ctx context.Context, bookingID uint, quote *models.Quote) (*models.Quote, error) {
	err := s.bookingRepo.Transaction(ctx, func(tx *gorm.DB) error {
		booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, bookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("load booking: %w", err)
		}

		if booking.Terminal() {
			return ErrBookingImmutable
		}

		if !booking.EventDate.IsZero() && quote.ExpiresAt.After(booking.EventDate) {
			return ErrQuoteExpiresAfterEvent
		}

		if err := s.quoteRepo.Create(ctx, tx, quote); err != nil {
			return fmt.Errorf("persist quote: %w", err)
		}

		return s.bookingRepo.UpdateFields(ctx, tx, bookingID, map[string]any{
			"status":             models.StatusQuoteSent,
			"total_amount":       quote.Total,
			"downpayment_amount": quote.Downpayment,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		_ = s.publisher.Publish("quote.sent", quote)
	}

	return quote, nil
}

func (s *quoteService) GetQuote(ctx context.Context, bookingID uint) (*models.Quote, error) {
	return s.quoteRepo.FindByBookingID(ctx, bookingID)
}

func (s *quoteService) HistoricalPrices(ctx context.Context, vendorID, serviceType string) (map[string]float64, error) {
	quote, err := s.quoteRepo.FindLatestByVendorAndServiceType(ctx, vendorID, serviceType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return map[string]float64{}, nil
		}
		return nil, fmt.Errorf("load historical prices: %w", err)
	}

	prices := make(map[string]float64, len(quote.Items))
	for _, item := range quote.Items {
		prices[item.Name] = item.UnitPrice
	}
	return prices, nil
}
