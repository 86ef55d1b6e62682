package repository

import (
	"context"
	"time"

	"github.com/wedora/wedding-marketplace/booking-service/internal/models"
	"gorm.io/gorm"
)

type OutboxRepository interface {
	Save(ctx context.Context, intent *models.CompletionIntent) error
	FindDue(ctx context.Context, now time.Time, limit int) ([]models.CompletionIntent, error)
	ExistsForBooking(ctx context.Context, bookingID uint) (bool, error)
	Reschedule(ctx context.Context, id uint, attempts int, nextAttemptAt time.Time, lastError string) error
	Delete(ctx context.Context, id uint) error
}

type outboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) Save(ctx context.Context, intent *models.CompletionIntent) error {
	return r.db.WithContext(ctx).Create(intent).Error
}

func (r *outboxRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]models.CompletionIntent, error) {
	var intents []models.CompletionIntent
	err := r.db.WithContext(ctx).
		Where("next_attempt_at <= ?", now).
		Order("next_attempt_at ASC").
		Limit(limit).
		Find(&intents).Error
	if err != nil {
		return nil, err
	}
	return intents, nil
}

func (r *outboxRepository) ExistsForBooking(ctx context.Context, bookingID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CompletionIntent{}).
		Where("booking_id = ?", bookingID).
		Count(&count).Error
	return count > 0, err
}

func (r *outboxRepository) Reschedule(ctx context.Context, id uint, attempts int, nextAttemptAt time.Time, lastError string) error {
	return r.db.WithContext(ctx).
		Model(&models.CompletionIntent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"attempts":        attempts,
			"next_attempt_at": nextAttemptAt,
			"last_error":      lastError,
		}).Error
}

func (r *outboxRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.CompletionIntent{}, id).Error
}
