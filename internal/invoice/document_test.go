package invoice

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testInvoice() *Invoice {
	num := "INV-0003"
	return &Invoice{
		ID:            3,
		ProjectID:     1,
		Amount:        150,
		Status:        StatusUnpaid,
		Currency:      "USD",
		DueDate:       "2026-09-15",
		Title:         "August retainer",
		InvoiceNumber: &num,
		CreatedAt:     time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestBuildDocumentFlatAmount(t *testing.T) {
	doc := BuildDocument(testInvoice(), nil, "Ada Lovelace", "ada@example.com")

	assert.Equal(t, "INV-0003", doc.Number)
	assert.Equal(t, "August 01, 2026", doc.Date)
	assert.Equal(t, 0.0, doc.Subtotal)
	assert.Equal(t, 150.0, doc.Total)
}

func TestBuildDocumentLineItemsOverrideAmount(t *testing.T) {
	items := []InvoiceLineItem{
		NewLineItem(3, "Design", 2, 30),
		NewLineItem(3, "Build", 1, 40),
	}

	doc := BuildDocument(testInvoice(), items, "Ada Lovelace", "ada@example.com")

	assert.Equal(t, 100.0, doc.Subtotal)
	assert.Equal(t, 100.0, doc.Total)
	assert.Len(t, doc.Items, 2)
}

func TestBuildDocumentZeroSubtotalFallsBack(t *testing.T) {
	items := []InvoiceLineItem{NewLineItem(3, "Gratis", 1, 0)}

	doc := BuildDocument(testInvoice(), items, "", "")
	assert.Equal(t, 150.0, doc.Total)
}

func TestNewLineItemFreezesTotal(t *testing.T) {
	it := NewLineItem(1, "Hours", 3, 33.333)
	assert.Equal(t, 100.0, it.Total)
}

func TestDisplayNumber(t *testing.T) {
	inv := testInvoice()
	assert.Equal(t, "INV-0003", DisplayNumber(inv))

	inv.InvoiceNumber = nil
	assert.Equal(t, "INV-3", DisplayNumber(inv))

	empty := ""
	inv.InvoiceNumber = &empty
	assert.Equal(t, "INV-3", DisplayNumber(inv))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "INV-0001", FormatNumber(1))
	assert.Equal(t, "INV-0042", FormatNumber(42))
	assert.Equal(t, "INV-12345", FormatNumber(12345))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "0.00", FormatMoney(0))
	assert.Equal(t, "150.00", FormatMoney(150))
	assert.Equal(t, "1,234.50", FormatMoney(1234.5))
	assert.Equal(t, "1,234,567.89", FormatMoney(1234567.89))
	assert.Equal(t, "-12,000.00", FormatMoney(-12000))
}

func TestFormatMoneyNonFinite(t *testing.T) {
	assert.Equal(t, "NaN", FormatMoney(math.NaN()))
	assert.Equal(t, "+Inf", FormatMoney(math.Inf(1)))
	assert.Equal(t, "-Inf", FormatMoney(math.Inf(-1)))
}

func TestFormatQuantity(t *testing.T) {
	assert.Equal(t, "2", FormatQuantity(2))
	assert.Equal(t, "2.5", FormatQuantity(2.5))
	assert.Equal(t, "0.25", FormatQuantity(0.25))
}
