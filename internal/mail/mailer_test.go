package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPMailerNotConfigured(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 587})

	assert.False(t, m.Configured())
	err := m.Send(context.Background(), Message{To: "x@example.com", Subject: "hi"})
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestSMTPMailerConfigured(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{User: "u", Password: "p"})
	assert.True(t, m.Configured())

	m = NewSMTPMailer(SMTPConfig{User: "u"})
	assert.False(t, m.Configured())
}

func TestSMTPMailerBadRecipient(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{User: "u@example.com", Password: "p"})

	err := m.Send(context.Background(), Message{To: "not an address"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotConfigured)
}
