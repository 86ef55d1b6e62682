package repository

import (
	"context"

	"github.com/wedora/wedding-marketplace/booking-service/internal/models"
	"gorm.io/gorm"
)

type VendorRepository interface {
	FindByBusinessID(ctx context.Context, businessID string) (*models.Vendor, error)
	FindByUserUUID(ctx context.Context, userUUID string) (*models.Vendor, error)
	FindByNumericID(ctx context.Context, id uint) (*models.Vendor, error)
}

type vendorRepository struct {
	db *gorm.DB
}

func NewVendorRepository(db *gorm.DB) VendorRepository {
	return &vendorRepository{db: db}
}

func (r *vendorRepository) FindByBusinessID(ctx context.Context, businessID string) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).Where("business_id = ?", businessID).First(&vendor).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *vendorRepository) FindByUserUUID(ctx context.Context, userUUID string) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).Where("user_uuid = ?", userUUID).First(&vendor).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *vendorRepository) FindByNumericID(ctx context.Context, id uint) (*models.Vendor, error) {
	var vendor models.Vendor
	if err := r.db.WithContext(ctx).First(&vendor, id).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}
