package invoice

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/devie/nexaflow-crm/internal/mail"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	err  error
	sent []mail.Message
}

func (m *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestValidMode(t *testing.T) {
	assert.True(t, ValidMode(ModeEmailOnly))
	assert.True(t, ValidMode(ModePDFOnly))
	assert.True(t, ValidMode(ModeEmailAndPDF))
	assert.False(t, ValidMode(""))
	assert.False(t, ValidMode("fax"))
}

func TestSendRejectsInvalidMode(t *testing.T) {
	s := &Service{}

	_, err := s.Send(context.Background(), 1, 1, "x@example.com", "fax")
	require.ErrorIs(t, err, ErrInvalidMode)
}

func TestEnsureNumberIdempotent(t *testing.T) {
	num := "INV-0007"
	inv := &Invoice{ID: 7, InvoiceNumber: &num}

	// An already-numbered invoice short-circuits before any storage access.
	s := &Service{}
	got, err := s.EnsureNumber(context.Background(), 1, inv)
	require.NoError(t, err)
	assert.Equal(t, "INV-0007", got)

	got, err = s.EnsureNumber(context.Background(), 1, inv)
	require.NoError(t, err)
	assert.Equal(t, "INV-0007", got)
	assert.Equal(t, "INV-0007", *inv.InvoiceNumber)
}

func TestEnsureTrackingTokenIdempotent(t *testing.T) {
	tok := "existing-token"
	inv := &Invoice{ID: 7, TrackingToken: &tok}

	s := &Service{}
	require.NoError(t, s.ensureTrackingToken(context.Background(), inv))
	assert.Equal(t, "existing-token", *inv.TrackingToken)
}

func TestDeliverNotConfiguredPassesThrough(t *testing.T) {
	s := &Service{Mailer: &fakeMailer{err: mail.ErrNotConfigured}, Log: discardLogger()}

	err := s.deliver(context.Background(), 7, mail.Message{To: "x@example.com"})
	require.ErrorIs(t, err, mail.ErrNotConfigured)
	assert.NotErrorIs(t, err, ErrDelivery)
}

func TestDeliverWrapsTransportFailure(t *testing.T) {
	s := &Service{Mailer: &fakeMailer{err: errors.New("connection refused")}, Log: discardLogger()}

	err := s.deliver(context.Background(), 7, mail.Message{To: "x@example.com"})
	require.ErrorIs(t, err, ErrDelivery)
	assert.NotErrorIs(t, err, mail.ErrNotConfigured)
}

func TestDeliverPassesMessageThrough(t *testing.T) {
	m := &fakeMailer{}
	s := &Service{Mailer: m, Log: discardLogger()}

	msg := mail.Message{
		To:             "x@example.com",
		Subject:        "Invoice INV-0007",
		HTML:           "<html></html>",
		AttachmentName: "INV-0007.pdf",
		Attachment:     []byte("%PDF"),
	}
	require.NoError(t, s.deliver(context.Background(), 7, msg))
	require.Len(t, m.sent, 1)
	assert.Equal(t, msg, m.sent[0])
}

func TestPixelGIF(t *testing.T) {
	assert.Equal(t, "GIF89a", string(PixelGIF[:6]))
	assert.Len(t, PixelGIF, 43)
}
