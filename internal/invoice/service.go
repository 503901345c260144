package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/devie/nexaflow-crm/internal/auth"
	"github.com/devie/nexaflow-crm/internal/commlog"
	"github.com/devie/nexaflow-crm/internal/mail"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidMode = errors.New("invalid send mode")
	ErrDelivery    = errors.New("delivery failed")
)

const (
	ModeEmailOnly   = "email_only"
	ModePDFOnly     = "pdf_only"
	ModeEmailAndPDF = "email_and_pdf"
)

func ValidMode(m string) bool {
	switch m {
	case ModeEmailOnly, ModePDFOnly, ModeEmailAndPDF:
		return true
	}
	return false
}

// PixelGIF is a 1x1 transparent GIF returned by the open-tracking
// endpoint regardless of lookup outcome.
var PixelGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00,
	0x00, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x21, 0xf9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
}

type Service struct {
	DB      *gorm.DB
	Mailer  mail.Mailer
	BaseURL string
	Log     *slog.Logger
}

// GetOwned fetches an invoice scoped through its project's owner.
func (s *Service) GetOwned(ctx context.Context, userID, invoiceID uint64) (*Invoice, error) {
	var inv Invoice
	err := s.DB.WithContext(ctx).
		Joins("JOIN projects ON projects.id = invoices.project_id").
		Where("invoices.id = ? AND projects.user_id = ?", invoiceID, userID).
		First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func (s *Service) LineItems(ctx context.Context, invoiceID uint64) ([]InvoiceLineItem, error) {
	var items []InvoiceLineItem
	err := s.DB.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("id asc").
		Find(&items).Error
	return items, err
}

func (s *Service) AddLineItem(ctx context.Context, userID, invoiceID uint64, description string, quantity, unitPrice float64) (*InvoiceLineItem, error) {
	if _, err := s.GetOwned(ctx, userID, invoiceID); err != nil {
		return nil, err
	}
	item := NewLineItem(invoiceID, description, quantity, unitPrice)
	if err := s.DB.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Service) RemoveLineItem(ctx context.Context, userID, invoiceID, itemID uint64) error {
	if _, err := s.GetOwned(ctx, userID, invoiceID); err != nil {
		return err
	}
	res := s.DB.WithContext(ctx).
		Where("id = ? AND invoice_id = ?", itemID, invoiceID).
		Delete(&InvoiceLineItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FormatNumber builds the lazily assigned invoice number from the count
// of the user's invoices at assignment time.
func FormatNumber(count int64) string {
	return fmt.Sprintf("INV-%04d", count)
}

// EnsureNumber assigns the invoice number on first use and is idempotent
// afterwards. The unique index on invoice_number turns the check-then-set
// race into a storage conflict rather than a silent duplicate.
func (s *Service) EnsureNumber(ctx context.Context, userID uint64, inv *Invoice) (string, error) {
	if inv.InvoiceNumber != nil && *inv.InvoiceNumber != "" {
		return *inv.InvoiceNumber, nil
	}

	var count int64
	err := s.DB.WithContext(ctx).Model(&Invoice{}).
		Joins("JOIN projects ON projects.id = invoices.project_id").
		Where("projects.user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return "", err
	}

	num := FormatNumber(count)
	if err := s.DB.WithContext(ctx).Model(&Invoice{}).Where("id = ?", inv.ID).
		Update("invoice_number", num).Error; err != nil {
		return "", err
	}
	inv.InvoiceNumber = &num
	return num, nil
}

func (s *Service) ensureTrackingToken(ctx context.Context, inv *Invoice) error {
	if inv.TrackingToken != nil && *inv.TrackingToken != "" {
		return nil
	}
	tok := uuid.NewString()
	if err := s.DB.WithContext(ctx).Model(&Invoice{}).Where("id = ?", inv.ID).
		Update("tracking_token", tok).Error; err != nil {
		return err
	}
	inv.TrackingToken = &tok
	return nil
}

func (s *Service) document(ctx context.Context, userID uint64, inv *Invoice) (Document, error) {
	var u auth.User
	if err := s.DB.WithContext(ctx).First(&u, userID).Error; err != nil {
		return Document{}, err
	}
	items, err := s.LineItems(ctx, inv.ID)
	if err != nil {
		return Document{}, err
	}
	return BuildDocument(inv, items, u.Name, u.Email), nil
}

func (s *Service) pixelURL(inv *Invoice) string {
	if inv.TrackingToken == nil || *inv.TrackingToken == "" || s.BaseURL == "" {
		return ""
	}
	return s.BaseURL + "/track/open/" + *inv.TrackingToken
}

// Preview renders the interactive HTML view, assigning the invoice number
// on first use.
func (s *Service) Preview(ctx context.Context, userID, invoiceID uint64) (string, error) {
	inv, err := s.GetOwned(ctx, userID, invoiceID)
	if err != nil {
		return "", err
	}
	if _, err := s.EnsureNumber(ctx, userID, inv); err != nil {
		return "", err
	}
	doc, err := s.document(ctx, userID, inv)
	if err != nil {
		return "", err
	}
	return RenderHTML(doc, s.pixelURL(inv))
}

// PDF renders the export artifact (no tracking pixel).
func (s *Service) PDF(ctx context.Context, userID, invoiceID uint64) (string, []byte, error) {
	inv, err := s.GetOwned(ctx, userID, invoiceID)
	if err != nil {
		return "", nil, err
	}
	if _, err := s.EnsureNumber(ctx, userID, inv); err != nil {
		return "", nil, err
	}
	doc, err := s.document(ctx, userID, inv)
	if err != nil {
		return "", nil, err
	}
	data, err := RenderPDF(doc)
	if err != nil {
		return "", nil, err
	}
	return DisplayNumber(inv) + ".pdf", data, nil
}

type SendResult struct {
	InvoiceNumber string
	Message       string

	// Set only for pdf_only.
	PDF      []byte
	Filename string
}

// Send runs the send workflow: number and token assignment, independent
// interactive and export renders, then either the PDF artifact (pdf_only)
// or mail transport. Invoice send-state and the audit entry commit only
// after transport succeeds.
func (s *Service) Send(ctx context.Context, userID, invoiceID uint64, toEmail, mode string) (*SendResult, error) {
	if !ValidMode(mode) {
		return nil, ErrInvalidMode
	}

	inv, err := s.GetOwned(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	num, err := s.EnsureNumber(ctx, userID, inv)
	if err != nil {
		return nil, err
	}
	if err := s.ensureTrackingToken(ctx, inv); err != nil {
		return nil, err
	}

	doc, err := s.document(ctx, userID, inv)
	if err != nil {
		return nil, err
	}
	htmlBody, err := RenderHTML(doc, s.pixelURL(inv))
	if err != nil {
		return nil, err
	}
	pdfData, err := RenderPDF(doc)
	if err != nil {
		return nil, err
	}

	if mode == ModePDFOnly {
		return &SendResult{InvoiceNumber: num, PDF: pdfData, Filename: num + ".pdf"}, nil
	}

	subject := "Invoice " + num
	if inv.Title != "" {
		subject += " - " + inv.Title
	}
	msg := mail.Message{To: toEmail, Subject: subject, HTML: htmlBody}
	withPDF := mode == ModeEmailAndPDF
	if withPDF {
		msg.AttachmentName = num + ".pdf"
		msg.Attachment = pdfData
	}

	if err := s.deliver(ctx, inv.ID, msg); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	summary := fmt.Sprintf("Invoice %s sent to %s", num, toEmail)
	if withPDF {
		summary += " with PDF attached"
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Invoice{}).Where("id = ?", inv.ID).Updates(map[string]any{
			"sent_at":       now,
			"sent_to_email": toEmail,
		}).Error; err != nil {
			return err
		}
		entry := commlog.Entry{
			UserID:    userID,
			ProjectID: &inv.ProjectID,
			InvoiceID: &inv.ID,
			Type:      commlog.TypeInvoiceSent,
			Summary:   summary,
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}

	message := "Invoice sent"
	if withPDF {
		message = "Invoice sent with PDF"
	}
	return &SendResult{InvoiceNumber: num, Message: message}, nil
}

// deliver hands the message to the mail transport. Missing SMTP
// credentials pass through as mail.ErrNotConfigured; any other failure
// wraps ErrDelivery. Invoice state is untouched on both paths.
func (s *Service) deliver(ctx context.Context, invoiceID uint64, msg mail.Message) error {
	if err := s.Mailer.Send(ctx, msg); err != nil {
		if errors.Is(err, mail.ErrNotConfigured) {
			return err
		}
		s.Log.Error("invoice mail transport failed", "invoice_id", invoiceID, "err", err)
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return nil
}

// RecordOpen stamps opened_at on first open. Unknown tokens and repeat
// opens are silently ignored; the caller always serves the pixel.
func (s *Service) RecordOpen(ctx context.Context, token string) {
	if token == "" {
		return
	}
	var inv Invoice
	err := s.DB.WithContext(ctx).Where("tracking_token = ?", token).First(&inv).Error
	if err != nil {
		return
	}
	if inv.OpenedAt != nil {
		return
	}
	_ = s.DB.WithContext(ctx).Model(&Invoice{}).
		Where("id = ? AND opened_at IS NULL", inv.ID).
		Update("opened_at", time.Now().UTC()).Error
}
