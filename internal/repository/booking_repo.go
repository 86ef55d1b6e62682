package repository

import (
	"context"
	"time"

	"github.com/wedora/wedding-marketplace/booking-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListFilter narrows and orders a vendor-scoped booking query. Zero values
// mean "no filter"; sorting defaults to created_at DESC.
type ListFilter struct {
	Status    *models.BookingStatus
	Search    string
	DateRange string // "week", "month" or "quarter", measured from created_at
	SortBy    string
	SortDesc  bool
}

// sortColumns whitelists caller-selectable sort fields so arbitrary request
// input never reaches the ORDER BY clause.
var sortColumns = map[string]string{
	"created_at":   "created_at",
	"updated_at":   "updated_at",
	"event_date":   "event_date",
	"total_amount": "total_amount",
	"status":       "status",
}

var dateRangeDays = map[string]int{
	"week":    7,
	"month":   30,
	"quarter": 90,
}

type BookingRepository interface {
	FindByVendorID(ctx context.Context, vendorID string, filter ListFilter) ([]models.Booking, error)
	FindAllByVendorID(ctx context.Context, vendorID string) ([]models.Booking, error)
	FindByID(ctx context.Context, id uint) (*models.Booking, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID uint, status models.BookingStatus, vendorNotes *string) error
	UpdateFields(ctx context.Context, tx *gorm.DB, bookingID uint, updates map[string]any) error
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	GetDB() *gorm.DB
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *bookingRepository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *bookingRepository) FindByVendorID(ctx context.Context, vendorID string, filter ListFilter) ([]models.Booking, error) {
	q := r.db.WithContext(ctx).Where("vendor_id = ?", vendorID)

	if filter.Status != nil {
		q = q.Where("status = ?", *filter.Status)
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(
			"couple_name ILIKE ? OR service_type ILIKE ? OR special_requests ILIKE ? OR venue ILIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}

	if days, ok := dateRangeDays[filter.DateRange]; ok {
		cutoff := time.Now().AddDate(0, 0, -days)
		q = q.Where("created_at >= ?", cutoff)
	}

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
		filter.SortDesc = true
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	var bookings []models.Booking
	if err := q.Order(column + " " + direction).Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindAllByVendorID(ctx context.Context, vendorID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindByIDForUpdate locks the booking row, serializing concurrent
// confirmation attempts from the two parties.
func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID uint, status models.BookingStatus, vendorNotes *string) error {
	updates := map[string]any{"status": status}
	if vendorNotes != nil {
		updates["vendor_notes"] = *vendorNotes
	}
	return tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Updates(updates).Error
}

func (r *bookingRepository) UpdateFields(ctx context.Context, tx *gorm.DB, bookingID uint, updates map[string]any) error {
	return tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Updates(updates).Error
}
