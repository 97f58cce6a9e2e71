package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ukDateLayout is the on-screen date format, e.g. "01-05-2025".
const ukDateLayout = "02-01-2006"

var (
	moneyCleaner = strings.NewReplacer("£", "", ",", "")
	spaceRunRe   = regexp.MustCompile(`\s+`)
)

// ParseMoney parses a currency token ("£ 89.93", "£1,234.56") into a
// non-negative amount. Tokens without the currency sigil are not money at
// all and yield nil, as do malformed or negative values.
func ParseMoney(raw string) *float64 {
	if !strings.Contains(raw, "£") {
		return nil
	}
	cleaned := strings.TrimSpace(moneyCleaner.Replace(raw))
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || value < 0 {
		return nil
	}
	return &value
}

// ParseUKDate parses the leading field of raw as a DD-MM-YYYY date and
// returns it zero-padded. Single-digit day/month components are normalized
// ("1-5-2025" -> "01-05-2025"); anything else, including out-of-range
// dates, yields nil. Trailing text after the date ("01-05-2025 At") is
// ignored.
func ParseUKDate(raw string) *string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}

	normalized, ok := normalizeDMY(fields[0])
	if !ok {
		return nil
	}
	if _, err := time.Parse(ukDateLayout, normalized); err != nil {
		return nil
	}
	return &normalized
}

// normalizeDMY zero-pads a D-M-YYYY shaped string to DD-MM-YYYY.
func normalizeDMY(s string) (string, bool) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return "", false
	}
	day, month, year := parts[0], parts[1], parts[2]
	if len(day) < 1 || len(day) > 2 || len(month) < 1 || len(month) > 2 || len(year) != 4 {
		return "", false
	}
	for _, p := range parts {
		for _, r := range p {
			if r < '0' || r > '9' {
				return "", false
			}
		}
	}
	if len(day) == 1 {
		day = "0" + day
	}
	if len(month) == 1 {
		month = "0" + month
	}
	return day + "-" + month + "-" + year, true
}

// ParseClockTime parses an HH:MM token (hour may be one digit) into a
// normalized "HH:MM:SS" string. Out-of-range values yield nil.
func ParseClockTime(raw string) *string {
	h, m, ok := clockParts(raw)
	if !ok {
		return nil
	}
	formatted := fmt.Sprintf("%02d:%02d:00", h, m)
	return &formatted
}

// clockParts splits an HH:MM string into validated hour/minute values.
func clockParts(raw string) (hour, minute int, ok bool) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	if h < 0 || h >= 24 || m < 0 || m >= 60 {
		return 0, 0, false
	}
	return h, m, true
}

// DurationBetween computes the elapsed time between two HH:MM clock values
// as an "HH:MM" string. Identical times yield "00:00"; an end before the
// start is treated as crossing midnight and wraps exactly one day.
func DurationBetween(start, end string) *string {
	sh, sm, ok := clockParts(start)
	if !ok {
		return nil
	}
	eh, em, ok := clockParts(end)
	if !ok {
		return nil
	}

	minutes := (eh*60 + em) - (sh*60 + sm)
	if minutes < 0 {
		minutes += 24 * 60
	}

	formatted := fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
	return &formatted
}

// SanitizePostcode finds the first UK-shaped postcode in raw and returns it
// uppercased with interior whitespace collapsed. The found form is otherwise
// kept verbatim - no space is inserted into unspaced postcodes.
func (c *Config) SanitizePostcode(raw string) *string {
	m := c.postcodeRe.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	postcode := strings.ToUpper(spaceRunRe.ReplaceAllString(m[1], " "))
	return &postcode
}

// isPlaceholder reports whether s is a null-like non-value ("undefined",
// "null", "0", ...). "undefined" matches as a substring because the app
// renders missing contacts as e.g. "undefined undefined".
func (c *Config) isPlaceholder(s string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	if strings.Contains(trimmed, "undefined") {
		return true
	}
	for _, p := range c.Placeholders {
		if trimmed == p {
			return true
		}
	}
	return false
}

// parseDistance extracts the decimal number preceding the "Miles" suffix.
func (c *Config) parseDistance(raw string) *float64 {
	m := c.distanceRe.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &value
}

// hasDigit reports whether s contains at least one ASCII digit.
func hasDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
