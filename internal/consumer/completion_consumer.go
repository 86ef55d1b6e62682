package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/wedora/wedding-marketplace/booking-service/internal/service"
)

// coupleConfirmation is the message shape published by the couple-facing app
// when a couple confirms a booking as done.
type coupleConfirmation struct {
	BookingID uint   `json:"booking_id"`
	CoupleID  string `json:"couple_id"`
}

// CompletionConsumer feeds couple-side completion confirmations into the same
// reconciliation path the vendor API uses.
type CompletionConsumer struct {
	completion service.CompletionService
}

func NewCompletionConsumer(completion service.CompletionService) *CompletionConsumer {
	return &CompletionConsumer{completion: completion}
}

func (cc *CompletionConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			cc.handleMessage(msg)
		}
		log.Println("[CompletionConsumer] channel closed, stopping consumer")
	}()
}

func (cc *CompletionConsumer) handleMessage(msg amqp.Delivery) {
	var conf coupleConfirmation
	if err := json.Unmarshal(msg.Body, &conf); err != nil {
		log.Printf("[CompletionConsumer] failed to unmarshal: %v", err)
		msg.Nack(false, false)
		return
	}

	err := cc.completion.Apply(context.Background(), conf.BookingID, service.PartyCouple)
	if err != nil {
		if errors.Is(err, service.ErrNotEligibleForCompletion) {
			// Confirmation for a booking that moved on; nothing to retry.
			log.Printf("[CompletionConsumer] booking %d not eligible, discarding", conf.BookingID)
			msg.Nack(false, false)
			return
		}
		log.Printf("[CompletionConsumer] failed to apply confirmation for booking %d: %v", conf.BookingID, err)
		msg.Nack(false, true) // requeue
		return
	}

	log.Printf("[CompletionConsumer] applied couple confirmation for booking %d", conf.BookingID)
	msg.Ack(false)
}
