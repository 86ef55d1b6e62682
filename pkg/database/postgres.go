package database

import (
	"log"

	"github.com/wedora/wedding-marketplace/booking-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Vendor{},
		&models.Booking{},
		&models.Quote{},
		&models.QuoteItem{},
		&models.CompletionIntent{},
	); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// One active quote chain per booking is queried constantly; keep the
	// vendor-scoped listing fast as well.
	db.Exec(`CREATE INDEX IF NOT EXISTS idx_bookings_vendor_created ON bookings (vendor_id, created_at DESC)`)

	return db
}
