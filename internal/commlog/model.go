// Package commlog holds the append-only communication audit trail.
// Entries are never updated or deleted.
package commlog

import "time"

const (
	TypeInvoiceSent     = "invoice_sent"
	TypePaymentReceived = "payment_received"
	TypeNote            = "note"
	TypeCall            = "call"
	TypeEmail           = "email"
)

type Entry struct {
	ID     uint64 `gorm:"primaryKey"`
	UserID uint64 `gorm:"index;not null"`

	// Loose links; any of these may be absent.
	ContactID *uint64 `gorm:"index"`
	ProjectID *uint64 `gorm:"index"`
	InvoiceID *uint64 `gorm:"index"`

	Type      string    `gorm:"not null"`
	Summary   string    `gorm:"type:text;not null;default:''"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (Entry) TableName() string { return "communication_logs" }
