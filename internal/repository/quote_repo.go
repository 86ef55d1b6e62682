package repository

import (
	"context"

	"github.com/wedora/wedding-marketplace/booking-service/internal/models"
	"gorm.io/gorm"
)

type QuoteRepository interface {
	Create(ctx context.Context, tx *gorm.DB, quote *models.Quote) error
	FindByBookingID(ctx context.Context, bookingID uint) (*models.Quote, error)
	// FindLatestByVendorAndServiceType returns the vendor's most recent quote
	// for a service type, across all of the vendor's bookings.
	FindLatestByVendorAndServiceType(ctx context.Context, vendorID, serviceType string) (*models.Quote, error)
}

type quoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) QuoteRepository {
	return &quoteRepository{db: db}
}

func (r *quoteRepository) Create(ctx context.Context, tx *gorm.DB, quote *models.Quote) error {
	return tx.WithContext(ctx).Create(quote).Error
}

func (r *quoteRepository) FindLatestByVendorAndServiceType(ctx context.Context, vendorID, serviceType string) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.WithContext(ctx).
		Preload("Items").
		Joins("JOIN bookings ON bookings.id = quotes.booking_id").
		Where("quotes.vendor_id = ? AND bookings.service_type = ?", vendorID, serviceType).
		Order("quotes.created_at DESC").
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *quoteRepository) FindByBookingID(ctx context.Context, bookingID uint) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("booking_id = ?", bookingID).
		Order("created_at DESC").
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}
