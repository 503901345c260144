package dates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValid(t *testing.T) {
	assert.True(t, Valid(""))
	assert.True(t, Valid("2026-08-29"))
	assert.True(t, Valid("2024-02-29"))

	assert.False(t, Valid("2026-8-29"))
	assert.False(t, Valid("2026-13-01"))
	assert.False(t, Valid("2025-02-29"))
	assert.False(t, Valid("29-08-2026"))
	assert.False(t, Valid("2026-08-29T00:00:00Z"))
	assert.False(t, Valid("not a date"))
}

func TestToday(t *testing.T) {
	got := Today()
	assert.Len(t, got, 10)
	assert.True(t, Valid(got))
}
