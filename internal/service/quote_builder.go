package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wedora/wedding-marketplace/booking-service/internal/models"
)

const (
	// TaxRate applied to every quote subtotal.
	TaxRate = 0.12

	MinDownpaymentPct = 10.0
	MaxDownpaymentPct = 50.0
)

var (
	ErrEmptyQuote         = errors.New("quote has no line items")
	ErrNonPositiveTotal   = errors.New("quote total must be positive")
	ErrInvalidDownpayment = errors.New("downpayment percentage must be between 10 and 50")
	ErrQuoteExpiryInPast  = errors.New("quote expiry must be in the future")
	// ErrQuoteExpiresAfterEvent rejects expiry dates past the event itself; a
	// quote that outlives the wedding cannot be accepted in time.
	ErrQuoteExpiresAfterEvent = errors.New("quote expiry must not be after the event date")
	ErrItemOutOfRange     = errors.New("line item index out of range")
	ErrInvalidItem        = errors.New("line item needs a name, positive quantity and non-negative price")
)

// TemplateItem seeds one default line item for a service type.
type TemplateItem struct {
	Name        string
	Description string
	Category    string
	Quantity    int
	UnitPrice   float64
}

// quoteTemplates keys default line items by service type. Unrecognized
// service types fall back to the "default" template.
var quoteTemplates = map[string][]TemplateItem{
	"photography": {
		{Name: "Full-day coverage", Description: "Up to 10 hours with two photographers", Category: "service", Quantity: 1, UnitPrice: 45000},
		{Name: "Engagement shoot", Description: "Pre-wedding session, one location", Category: "service", Quantity: 1, UnitPrice: 8000},
		{Name: "Printed album", Description: "40-page lay-flat album", Category: "deliverable", Quantity: 1, UnitPrice: 12000},
	},
	"videography": {
		{Name: "Highlight film", Description: "5-7 minute edited highlight video", Category: "deliverable", Quantity: 1, UnitPrice: 35000},
		{Name: "Ceremony full cut", Description: "Single-camera full ceremony edit", Category: "deliverable", Quantity: 1, UnitPrice: 15000},
	},
	"catering": {
		{Name: "Plated dinner", Description: "Three-course plated service, per guest", Category: "food", Quantity: 100, UnitPrice: 850},
		{Name: "Cocktail hour", Description: "Canapes and welcome drinks, per guest", Category: "food", Quantity: 100, UnitPrice: 250},
		{Name: "Service staff", Description: "Waitstaff and captains", Category: "staffing", Quantity: 10, UnitPrice: 1500},
	},
	"venue": {
		{Name: "Venue rental", Description: "Ceremony and reception spaces, 8 hours", Category: "rental", Quantity: 1, UnitPrice: 120000},
		{Name: "Tables and seating", Description: "Round tables, chairs and linens", Category: "rental", Quantity: 1, UnitPrice: 25000},
	},
	"music": {
		{Name: "Live band", Description: "Five-piece band, two sets", Category: "entertainment", Quantity: 1, UnitPrice: 40000},
		{Name: "Sound system", Description: "PA, mixing and ceremony microphones", Category: "equipment", Quantity: 1, UnitPrice: 10000},
	},
	"flowers": {
		{Name: "Bridal bouquet", Description: "Seasonal blooms", Category: "florals", Quantity: 1, UnitPrice: 4500},
		{Name: "Ceremony arch", Description: "Fresh floral arch installation", Category: "florals", Quantity: 1, UnitPrice: 18000},
		{Name: "Table centerpieces", Description: "Per-table arrangement", Category: "florals", Quantity: 10, UnitPrice: 2200},
	},
	"planning": {
		{Name: "Full planning", Description: "Twelve months of coordination", Category: "service", Quantity: 1, UnitPrice: 80000},
		{Name: "Day-of coordination", Description: "On-site coordination team", Category: "service", Quantity: 1, UnitPrice: 20000},
	},
	"default": {
		{Name: "Base service package", Description: "Standard service engagement", Category: "service", Quantity: 1, UnitPrice: 30000},
	},
}

// QuoteTotals is the computed money breakdown of a draft quote.
type QuoteTotals struct {
	Subtotal    float64
	Tax         float64
	Total       float64
	Downpayment float64
	Balance     float64
}

// QuoteBuilder assembles an itemized quote for a booking. It seeds line items
// from the service-type template, lets the vendor edit them, and produces an
// immutable Quote record with computed totals.
type QuoteBuilder struct {
	bookingID      uint
	vendorID       string
	items          []models.QuoteItem
	downpaymentPct float64
}

// NewQuoteBuilder seeds a builder from the template for serviceType.
// historicalPrices overrides template unit prices per item name, so vendors
// keep their own going rates across quotes.
func NewQuoteBuilder(bookingID uint, vendorID, serviceType string, historicalPrices map[string]float64) *QuoteBuilder {
	template, ok := quoteTemplates[strings.ToLower(serviceType)]
	if !ok {
		template = quoteTemplates["default"]
	}

	b := &QuoteBuilder{
		bookingID:      bookingID,
		vendorID:       vendorID,
		downpaymentPct: 30,
	}

	for _, t := range template {
		price := t.UnitPrice
		if override, ok := historicalPrices[t.Name]; ok {
			price = override
		}
		b.items = append(b.items, models.QuoteItem{
			Name:        t.Name,
			Description: t.Description,
			Category:    t.Category,
			Quantity:    t.Quantity,
			UnitPrice:   price,
			Total:       float64(t.Quantity) * price,
		})
	}

	return b
}

func (b *QuoteBuilder) AddItem(name, description, category string, quantity int, unitPrice float64) error {
	if name == "" || quantity <= 0 || unitPrice < 0 {
		return ErrInvalidItem
	}
	b.items = append(b.items, models.QuoteItem{
		Name:        name,
		Description: description,
		Category:    category,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Total:       float64(quantity) * unitPrice,
	})
	return nil
}

// ClearItems drops all seeded items so a quote can be built entirely from
// vendor-supplied line items.
func (b *QuoteBuilder) ClearItems() {
	b.items = nil
}

func (b *QuoteBuilder) RemoveItem(index int) error {
	if index < 0 || index >= len(b.items) {
		return ErrItemOutOfRange
	}
	b.items = append(b.items[:index], b.items[index+1:]...)
	return nil
}

// UpdateItem patches the addressed line item; nil fields are left unchanged.
// The item total is recomputed on every edit.
func (b *QuoteBuilder) UpdateItem(index int, name, description *string, quantity *int, unitPrice *float64) error {
	if index < 0 || index >= len(b.items) {
		return ErrItemOutOfRange
	}

	item := &b.items[index]
	if name != nil {
		if *name == "" {
			return ErrInvalidItem
		}
		item.Name = *name
	}
	if description != nil {
		item.Description = *description
	}
	if quantity != nil {
		if *quantity <= 0 {
			return ErrInvalidItem
		}
		item.Quantity = *quantity
	}
	if unitPrice != nil {
		if *unitPrice < 0 {
			return ErrInvalidItem
		}
		item.UnitPrice = *unitPrice
	}
	item.Total = float64(item.Quantity) * item.UnitPrice
	return nil
}

func (b *QuoteBuilder) SetDownpaymentPct(pct float64) error {
	if pct < MinDownpaymentPct || pct > MaxDownpaymentPct {
		return ErrInvalidDownpayment
	}
	b.downpaymentPct = pct
	return nil
}

func (b *QuoteBuilder) ItemCount() int {
	return len(b.items)
}

func (b *QuoteBuilder) Totals() QuoteTotals {
	var subtotal float64
	for _, item := range b.items {
		subtotal += item.Total
	}
	tax := subtotal * TaxRate
	total := subtotal + tax
	downpayment := total * b.downpaymentPct / 100
	return QuoteTotals{
		Subtotal:    subtotal,
		Tax:         tax,
		Total:       total,
		Downpayment: downpayment,
		Balance:     total - downpayment,
	}
}

// Build finalizes the draft into an immutable Quote record with a generated
// reference. Empty quotes and non-positive totals are rejected before
// anything is persisted or sent.
func (b *QuoteBuilder) Build(message, terms string, expiresAt time.Time) (*models.Quote, error) {
	if len(b.items) == 0 {
		return nil, ErrEmptyQuote
	}

	totals := b.Totals()
	if totals.Total <= 0 {
		return nil, ErrNonPositiveTotal
	}

	if !expiresAt.After(time.Now()) {
		return nil, ErrQuoteExpiryInPast
	}

	items := make([]models.QuoteItem, len(b.items))
	copy(items, b.items)

	return &models.Quote{
		Reference:      newQuoteReference(),
		BookingID:      b.bookingID,
		VendorID:       b.vendorID,
		Items:          items,
		Subtotal:       totals.Subtotal,
		Tax:            totals.Tax,
		Total:          totals.Total,
		DownpaymentPct: b.downpaymentPct,
		Downpayment:    totals.Downpayment,
		Balance:        totals.Balance,
		Message:        message,
		Terms:          terms,
		ExpiresAt:      expiresAt,
	}, nil
}

func newQuoteReference() string {
	return fmt.Sprintf("QT-%s", strings.ToUpper(uuid.NewString()[:8]))
}
