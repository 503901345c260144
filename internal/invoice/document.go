package invoice

import (
	"fmt"
	"strconv"
	"strings"
)

// Document is the printable representation of an invoice, shared by the
// HTML and PDF renders so the two can only differ in the tracking pixel.
type Document struct {
	Number   string
	Title    string
	Date     string
	DueDate  string
	Currency string
	Notes    string

	FromName  string
	FromEmail string

	Items    []DocumentItem
	Subtotal float64
	Total    float64
}

type DocumentItem struct {
	Description string
	Quantity    float64
	UnitPrice   float64
	Total       float64
}

// BuildDocument derives the document from an invoice and its line items.
// The total is the line-item subtotal when any items exist with a positive
// sum, otherwise the invoice's flat amount.
func BuildDocument(inv *Invoice, items []InvoiceLineItem, fromName, fromEmail string) Document {
	doc := Document{
		Number:    DisplayNumber(inv),
		Title:     inv.Title,
		Date:      inv.CreatedAt.Format("January 02, 2006"),
		DueDate:   inv.DueDate,
		Currency:  inv.Currency,
		Notes:     inv.Notes,
		FromName:  fromName,
		FromEmail: fromEmail,
	}

	for _, it := range items {
		doc.Items = append(doc.Items, DocumentItem{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total,
		})
		doc.Subtotal += it.Total
	}

	doc.Total = doc.Subtotal
	if doc.Subtotal <= 0 {
		doc.Total = inv.Amount
	}
	return doc
}

// DisplayNumber is the assigned invoice number, or a placeholder derived
// from the id when none has been assigned yet.
func DisplayNumber(inv *Invoice) string {
	if inv.InvoiceNumber != nil && *inv.InvoiceNumber != "" {
		return *inv.InvoiceNumber
	}
	return fmt.Sprintf("INV-%d", inv.ID)
}

// FormatMoney renders v with thousands separators and exactly two
// decimal places.
func FormatMoney(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	// NaN and the infinities format without a decimal point.
	if !strings.ContainsRune(s, '.') {
		return s
	}
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	dot := strings.IndexByte(s, '.')
	intPart, frac := s[:dot], s[dot:]

	var b strings.Builder
	for i := 0; i < len(intPart); i++ {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(intPart[i])
	}
	out := b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}

// FormatQuantity drops trailing zeros (2, not 2.00).
func FormatQuantity(q float64) string {
	return strconv.FormatFloat(q, 'g', -1, 64)
}
