package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuoteBuilder_SeedsTemplateItems(t *testing.T) {
	b := NewQuoteBuilder(1, "2-2025-001", "photography", nil)

	assert.Equal(t, 3, b.ItemCount())
	totals := b.Totals()
	assert.InDelta(t, 65000.0, totals.Subtotal, 0.001)
}

func TestNewQuoteBuilder_HistoricalPriceOverrides(t *testing.T) {
	history := map[string]float64{"Full-day coverage": 52000}
	b := NewQuoteBuilder(1, "2-2025-001", "photography", history)

	totals := b.Totals()
	// 52000 + 8000 + 12000
	assert.InDelta(t, 72000.0, totals.Subtotal, 0.001)
}

func TestNewQuoteBuilder_UnknownServiceTypeFallsBack(t *testing.T) {
	b := NewQuoteBuilder(1, "2-2025-001", "skydiving", nil)

	assert.Equal(t, 1, b.ItemCount())
	assert.InDelta(t, 30000.0, b.Totals().Subtotal, 0.001)
}

func TestTotals_TaxAndDownpaymentIdentities(t *testing.T) {
	b := NewQuoteBuilder(1, "2-2025-001", "venue", nil)
	require.NoError(t, b.SetDownpaymentPct(25))

	totals := b.Totals()
	assert.InDelta(t, totals.Subtotal*TaxRate, totals.Tax, 0.001)
	assert.InDelta(t, totals.Subtotal+totals.Tax, totals.Total, 0.001)
	assert.InDelta(t, totals.Total, totals.Downpayment+totals.Balance, 0.001)
	assert.InDelta(t, totals.Total*0.25, totals.Downpayment, 0.001)
}

func TestSetDownpaymentPct_Bounds(t *testing.T) {
	b := NewQuoteBuilder(1, "2-2025-001", "catering", nil)

	assert.ErrorIs(t, b.SetDownpaymentPct(9.99), ErrInvalidDownpayment)
	assert.ErrorIs(t, b.SetDownpaymentPct(50.01), ErrInvalidDownpayment)
	assert.NoError(t, b.SetDownpaymentPct(10))
	assert.NoError(t, b.SetDownpaymentPct(50))
}

func TestAddItem_Validation(t *testing.T) {
	b := NewQuoteBuilder(1, "2-2025-001", "flowers", nil)
	before := b.ItemCount()

	assert.ErrorIs(t, b.AddItem("", "", "florals", 1, 100), ErrInvalidItem)
	assert.ErrorIs(t, b.AddItem("Boutonnieres", "", "florals", 0, 100), ErrInvalidItem)
	assert.ErrorIs(t, b.AddItem("Boutonnieres", "", "florals", 5, -1), ErrInvalidItem)
	assert.Equal(t, before, b.ItemCount())

	assert.NoError(t, b.AddItem("Boutonnieres", "Groomsmen set", "florals", 5, 350))
	assert.Equal(t, before+1, b.ItemCount())
}

func TestUpdateItem_RecomputesLineTotal(t *testing.T) {
	b := NewQuoteBuilder(1, "2-2025-001", "music", nil)

	qty := 2
	price := 12000.0
	require.NoError(t, b.UpdateItem(1, nil, nil, &qty, &price))

	// Sound system now 2 x 12000, band unchanged at 40000.
	assert.InDelta(t, 64000.0, b.Totals().Subtotal, 0.001)
}

func TestUpdateItem_OutOfRange(t *testing.T) {
	b := NewQuoteBuilder(1, "2-2025-001", "music", nil)
	assert.ErrorIs(t, b.UpdateItem(5, nil, nil, nil, nil), ErrItemOutOfRange)
	assert.ErrorIs(t, b.RemoveItem(-1), ErrItemOutOfRange)
}

func TestBuild_EmptyQuoteRejected(t *testing.T) {
	b := NewQuoteBuilder(1, "2-2025-001", "photography", nil)
	b.ClearItems()

	_, err := b.Build("", "", time.Now().Add(72*time.Hour))
	assert.ErrorIs(t, err, ErrEmptyQuote)
}

func TestBuild_ExpiryMustBeFuture(t *testing.T) {
	b := NewQuoteBuilder(1, "2-2025-001", "photography", nil)

	_, err := b.Build("", "", time.Now().Add(-time.Minute))
	assert.ErrorIs(t, err, ErrQuoteExpiryInPast)
}

func TestBuild_ProducesQuoteWithReference(t *testing.T) {
	b := NewQuoteBuilder(42, "2-2025-001", "planning", nil)
	require.NoError(t, b.SetDownpaymentPct(20))

	expires := time.Now().Add(7 * 24 * time.Hour)
	quote, err := b.Build("Looking forward to your big day", "50% refundable until 30 days out", expires)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(quote.Reference, "QT-"))
	assert.Len(t, quote.Reference, 11)
	assert.Equal(t, uint(42), quote.BookingID)
	assert.Equal(t, "2-2025-001", quote.VendorID)
	assert.Len(t, quote.Items, 2)
	assert.InDelta(t, quote.Subtotal+quote.Tax, quote.Total, 0.001)
	assert.InDelta(t, quote.Total, quote.Downpayment+quote.Balance, 0.001)
	assert.Equal(t, 20.0, quote.DownpaymentPct)
	assert.Equal(t, expires, quote.ExpiresAt)
}

func TestBuild_DraftStaysEditableAfterBuild(t *testing.T) {
	b := NewQuoteBuilder(1, "2-2025-001", "videography", nil)

	quote, err := b.Build("", "", time.Now().Add(time.Hour))
	require.NoError(t, err)

	// Mutating the builder afterwards must not reach into the built quote.
	require.NoError(t, b.AddItem("Drone coverage", "Aerial shots", "service", 1, 9000))
	assert.Len(t, quote.Items, 2)
}
