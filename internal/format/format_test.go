package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{123456, "$1,234.56"},
		{1000000, "$10,000.00"},
		{-1250, "-$12.50"},
		{400000 + 600000, "$10,000.00"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Currency(tt.cents))
		})
	}
}

func TestOptionalCurrency(t *testing.T) {
	v := int64(990)
	assert.Equal(t, "$9.90", OptionalCurrency(&v))
	assert.Equal(t, "—", OptionalCurrency(nil))
}

func TestCompactCurrency(t *testing.T) {
	assert.Equal(t, "$250", CompactCurrency(25000))
	assert.Equal(t, "$1.5K", CompactCurrency(150000))
	assert.Equal(t, "$2.5M", CompactCurrency(250000000))
	assert.Equal(t, "$1.5B", CompactCurrency(150000000000))
	assert.Equal(t, "-$1.5B", CompactCurrency(-150000000000))
	assert.Equal(t, "$2T", CompactCurrency(200000000000000))
}

func TestDate(t *testing.T) {
	ts := time.Date(2026, 3, 5, 15, 4, 0, 0, time.UTC)
	assert.Equal(t, "Mar 5, 2026", Date(ts))
	assert.Equal(t, "Mar 5, 2026 3:04 PM", DateTime(ts))
	assert.Equal(t, "", Date(time.Time{}))
}

func TestRelative(t *testing.T) {
	now := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "3 days ago", Relative(now.Add(-72*time.Hour), now))
	assert.Equal(t, "1 week from now", Relative(now.Add(7*24*time.Hour), now))
}

func TestHeight(t *testing.T) {
	assert.Equal(t, `6'2"`, Height(74))
	assert.Equal(t, `5'0"`, Height(60))
	assert.Equal(t, "", Height(0))
}

func TestWeight(t *testing.T) {
	assert.Equal(t, "215 lbs", Weight(215))
	assert.Equal(t, "", Weight(0))
}
