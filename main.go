package main

import (
	"log"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/wedora/wedding-marketplace/booking-service/config"
	"github.com/wedora/wedding-marketplace/booking-service/internal/consumer"
	"github.com/wedora/wedding-marketplace/booking-service/internal/handler"
	"github.com/wedora/wedding-marketplace/booking-service/internal/identity"
	"github.com/wedora/wedding-marketplace/booking-service/internal/middleware"
	"github.com/wedora/wedding-marketplace/booking-service/internal/outbox"
	"github.com/wedora/wedding-marketplace/booking-service/internal/policy"
	"github.com/wedora/wedding-marketplace/booking-service/internal/repository"
	"github.com/wedora/wedding-marketplace/booking-service/internal/service"
	"github.com/wedora/wedding-marketplace/booking-service/pkg/database"
	"github.com/wedora/wedding-marketplace/booking-service/pkg/rabbitmq"
)

func main() {
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	db := database.NewPostgresDB(cfg.DSN())

	// Messaging is auxiliary: reads and confirmations must keep working when
	// the broker is down, so a failed connect only disables notifications.
	var publisher *rabbitmq.Publisher
	pub, err := rabbitmq.NewPublisher(cfg.RabbitURL)
	if err != nil {
		log.Printf("RabbitMQ unavailable, notifications disabled: %v", err)
	} else {
		publisher = pub
		defer publisher.Close()
	}

	// Repositories
	vendorRepo := repository.NewVendorRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)

	// Identity + access control
	resolver := identity.NewResolver(vendorRepo)
	guard := policy.NewGuard(resolver)

	// Services
	queue := outbox.NewQueue(outboxRepo)
	var events service.EventPublisher
	if publisher != nil {
		events = publisher
	}
	bookingSvc := service.NewBookingService(bookingRepo, guard, events)
	quoteSvc := service.NewQuoteService(bookingRepo, quoteRepo, events)
	completionSvc := service.NewCompletionService(bookingRepo, queue, events)

	// Outbox retry worker: queued confirmations reconcile in the background.
	worker := outbox.NewWorker(queue, completionSvc.Apply)
	worker.Start()
	defer worker.Stop()

	// RabbitMQ consumer: couple-side confirmations from the couple-facing app
	if mqConsumer, err := rabbitmq.NewConsumer(cfg.RabbitURL); err != nil {
		log.Printf("couple-confirmation consumer disabled: %v", err)
	} else {
		defer mqConsumer.Close()
		if msgs, err := mqConsumer.Consume(); err != nil {
			log.Printf("failed to start consuming couple confirmations: %v", err)
		} else {
			consumer.NewCompletionConsumer(completionSvc).Start(msgs)
		}
	}

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Validator = middleware.NewRequestValidator()
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "booking-service"})
	})

	handler.NewBookingHandler(guard, bookingSvc, quoteSvc, completionSvc).
		RegisterRoutes(e, middleware.JWT(cfg.JWTSecret))

	log.Printf("Booking Service starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
