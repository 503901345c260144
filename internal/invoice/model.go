package invoice

import (
	"math"
	"time"
)

const (
	StatusUnpaid    = "unpaid"
	StatusPaid      = "paid"
	StatusOverdue   = "overdue"
	StatusCancelled = "cancelled"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusUnpaid, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

type Invoice struct {
	ID        uint64  `gorm:"primaryKey"`
	ProjectID uint64  `gorm:"index;not null"`
	Amount    float64 `gorm:"not null"`
	Status    string  `gorm:"not null;default:'unpaid'"`
	DueDate   string  `gorm:"not null;default:''"`
	Currency  string  `gorm:"not null;default:'USD'"`

	// Lazily assigned on first preview/pdf/send; unique so the
	// check-then-set race surfaces as a conflict instead of a duplicate.
	InvoiceNumber *string `gorm:"uniqueIndex"`

	Title string `gorm:"not null;default:''"`
	Notes string `gorm:"type:text;not null;default:''"`

	// Send workflow state.
	SentAt        *time.Time
	SentToEmail   string  `gorm:"not null;default:''"`
	OpenedAt      *time.Time
	TrackingToken *string `gorm:"uniqueIndex"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

// InvoiceLineItem's Total is frozen at creation; there is no update path
// for quantity or unit price.
type InvoiceLineItem struct {
	ID          uint64  `gorm:"primaryKey"`
	InvoiceID   uint64  `gorm:"index;not null"`
	Description string  `gorm:"not null"`
	Quantity    float64 `gorm:"not null;default:1"`
	UnitPrice   float64 `gorm:"not null;default:0"`
	Total       float64 `gorm:"not null;default:0"`
}

// NewLineItem computes the frozen total.
func NewLineItem(invoiceID uint64, description string, quantity, unitPrice float64) InvoiceLineItem {
	return InvoiceLineItem{
		InvoiceID:   invoiceID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Total:       round2(quantity * unitPrice),
	}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
