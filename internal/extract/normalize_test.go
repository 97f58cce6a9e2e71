package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected *float64
	}{
		{"simple amount", "£89.93", floatPtr(89.93)},
		{"space after sigil", "£ 89.93", floatPtr(89.93)},
		{"thousands separator", "£1,234.56", floatPtr(1234.56)},
		{"zero", "£0.00", floatPtr(0)},
		{"missing sigil is not money", "100.00", nil},
		{"negative rejected", "£-5.00", nil},
		{"garbage after sigil", "£abc", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseMoney(tt.raw)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.expected, *got, 0.001)
		})
	}
}

func TestParseUKDate(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected *string
	}{
		{"already padded", "01-05-2025", strPtr("01-05-2025")},
		{"single digit components", "1-5-2025", strPtr("01-05-2025")},
		{"trailing text ignored", "01-05-2025 At", strPtr("01-05-2025")},
		{"day out of range", "32-01-2024", nil},
		{"month out of range", "01-13-2024", nil},
		{"iso order rejected", "2025-05-01", nil},
		{"not a date", "Multiday", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseUKDate(tt.raw)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.expected, *got)
		})
	}
}

func TestParseClockTime(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected *string
	}{
		{"padded", "09:30", strPtr("09:30:00")},
		{"single digit hour", "9:05", strPtr("09:05:00")},
		{"midnight", "0:00", strPtr("00:00:00")},
		{"hour out of range", "24:00", nil},
		{"minute out of range", "10:60", nil},
		{"not a time", "bogus", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseClockTime(tt.raw)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.expected, *got)
		})
	}
}

func TestDurationBetween(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		expected *string
	}{
		{"same day", "09:00", "10:30", strPtr("01:30")},
		{"equal times", "09:00", "09:00", strPtr("00:00")},
		{"overnight wrap", "09:00", "08:30", strPtr("23:30")},
		{"wrap across midnight", "23:00", "01:00", strPtr("02:00")},
		{"invalid start", "99:00", "10:00", nil},
		{"invalid end", "09:00", "nope", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DurationBetween(tt.start, tt.end)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.expected, *got)
		})
	}
}

func TestSanitizePostcode(t *testing.T) {
	cfg := DefaultConfig("English to Polish")

	tests := []struct {
		name     string
		raw      string
		expected *string
	}{
		{"spaced", "EX4 2MP", strPtr("EX4 2MP")},
		{"space run collapsed", "EX4  2MP", strPtr("EX4 2MP")},
		{"unspaced kept verbatim", "SW1A1AA", strPtr("SW1A1AA")},
		{"lowercased input", "sw1a 1aa", strPtr("SW1A 1AA")},
		{"embedded in text", "Flat 2, LS1 4AB, Leeds", strPtr("LS1 4AB")},
		{"no postcode", "somewhere nice", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cfg.SanitizePostcode(tt.raw)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.expected, *got)
		})
	}
}

func TestIsPlaceholder(t *testing.T) {
	cfg := DefaultConfig("English to Polish")

	assert.True(t, cfg.isPlaceholder("undefined"))
	assert.True(t, cfg.isPlaceholder("undefined undefined"))
	assert.True(t, cfg.isPlaceholder("NULL"))
	assert.True(t, cfg.isPlaceholder("0"))
	assert.True(t, cfg.isPlaceholder(" n/a "))
	assert.False(t, cfg.isPlaceholder("07123456789"))
	assert.False(t, cfg.isPlaceholder("Contact Bob"))
}

func TestParseDistance(t *testing.T) {
	cfg := DefaultConfig("English to Polish")

	got := cfg.parseDistance("9.82 Miles")
	require.NotNil(t, got)
	assert.InDelta(t, 9.82, *got, 0.001)

	assert.Nil(t, cfg.parseDistance("Miles away"))
	assert.Nil(t, cfg.parseDistance("9.82"))
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
