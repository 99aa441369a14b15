package weekday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOfRemapsFullWeek(t *testing.T) {
	// 2026-08-24 is a Monday.
	monday := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		assert.Equal(t, i+1, Of(monday.AddDate(0, 0, i)))
	}
}

func TestOfSundayIsSeven(t *testing.T) {
	sunday := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Sunday, sunday.Weekday())
	assert.Equal(t, 7, Of(sunday))
}

func TestValid(t *testing.T) {
	assert.False(t, Valid(0))
	assert.True(t, Valid(1))
	assert.True(t, Valid(7))
	assert.False(t, Valid(8))
}

func TestName(t *testing.T) {
	assert.Equal(t, "Monday", Name(1))
	assert.Equal(t, "Sunday", Name(7))
	assert.Equal(t, "", Name(0))
}
