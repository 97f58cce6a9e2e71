// Package extract turns ordered on-screen text tokens into normalized
// booking records. The input has no schema: field boundaries are inferred
// from adjacent-token heuristics driven by the pattern table in Config.
// Extraction is best-effort - unrecognized fields become absent, they never
// fail a record.
package extract

import "regexp"

// PaymentCategory identifies one labeled currency line item inside a
// payment block.
type PaymentCategory string

const (
	CategoryServiceLine    PaymentCategory = "service_line"
	CategoryTravelDistance PaymentCategory = "travel_distance"
	CategoryTravelTime     PaymentCategory = "travel_time"
	CategoryEnhancement    PaymentCategory = "enhancement"
	CategoryOutOfHours     PaymentCategory = "out_of_hours"
	CategoryUrgency        PaymentCategory = "urgency"
)

// Config is the immutable label and pattern table driving extraction.
// The literal labels must match the source app's rendering verbatim - any
// change to them in the app is a breaking change to this package.
// Built once at startup, shared by reference, never mutated.
type Config struct {
	// Literal marker tokens
	LanguagePair     string // Language-pair marker, e.g. "English to Polish"
	MultidayLabel    string
	MeetingLinkLabel string
	ServiceLineLabel string
	TotalLabel       string
	TimesheetsLabel  string
	DirectionsLabel  string
	DisclaimerPrefix string
	OrderRefPrefix   string // Token prefix announcing the order identifier

	// BookingTypeSeparator is the character whose presence marks a
	// booking-type token, e.g. "Tribunals - ET | Full hearing".
	BookingTypeSeparator string

	// CurrencySigil prefixes every monetary token.
	CurrencySigil string

	// PaymentLabels maps lowercased line-item labels to categories.
	// Labels not in the map fall through to the substring rules below.
	PaymentLabels map[string]PaymentCategory

	// UpliftSubstring / UrgencySubstring classify otherwise-unknown labels.
	// Urgency wins over uplift ("Urgency Uplift" contains both).
	UpliftSubstring  string
	UrgencySubstring string

	// AddressKeywords are road/building words that make a token address-like.
	AddressKeywords []string

	// Placeholders are null-like values a contact name/phone is normalized
	// away from. "undefined" matches as a substring, the rest by equality.
	Placeholders []string

	// Compiled patterns
	orderRefRe    *regexp.Regexp // order id inside its announcing token
	subRefStartRe *regexp.Regexp // sub-appointment id anchoring a token
	subRefRe      *regexp.Regexp // sub-appointment id anywhere in text
	creationRefRe *regexp.Regexp // creation (MJB) id on secondary pages
	secondaryRe   *regexp.Regexp // order id + type hint + count on secondary cards
	distanceRe    *regexp.Regexp
	phoneRe       *regexp.Regexp
	apptCountRe   *regexp.Regexp
	dateAtRe      *regexp.Regexp
	timeRangeRe   *regexp.Regexp
	windowRe      *regexp.Regexp
	postcodeRe    *regexp.Regexp
	linkRe        *regexp.Regexp
}

// DefaultConfig builds the pattern table for the current app rendering.
// languagePair is the one deployment-specific marker (it tracks the
// interpreter profile the app is signed in as).
func DefaultConfig(languagePair string) *Config {
	return &Config{
		LanguagePair:     languagePair,
		MultidayLabel:    "Multiday",
		MeetingLinkLabel: "Meeting Link",
		ServiceLineLabel: "Service Line Item",
		TotalLabel:       "TOTAL",
		TimesheetsLabel:  "Timesheets Download",
		DirectionsLabel:  "Open Directions",
		DisclaimerPrefix: "By accepting this assignment",
		OrderRefPrefix:   "Booking #MJR",

		BookingTypeSeparator: "|",
		CurrencySigil:        "£",

		PaymentLabels: map[string]PaymentCategory{
			"service line item":              CategoryServiceLine,
			"travel distance line item":      CategoryTravelDistance,
			"travel time line item":          CategoryTravelTime,
			"automation enhancement payment": CategoryEnhancement,
		},
		UpliftSubstring:  "uplift",
		UrgencySubstring: "urgency",

		AddressKeywords: []string{
			"street", "road", "court", "house", "centre", "lane", "building", "floor",
		},
		Placeholders: []string{"undefined", "null", "na", "n/a", "0"},

		orderRefRe:    regexp.MustCompile(`Booking\s+#(MJR\d{8})`),
		subRefStartRe: regexp.MustCompile(`^MJA\d{8}`),
		subRefRe:      regexp.MustCompile(`MJA\d{8}`),
		creationRefRe: regexp.MustCompile(`Booking\s+#(MJB\d{8})`),
		secondaryRe:   regexp.MustCompile(`(MJR\d{8})[,\s]*(.*?)[,\s]*(?:Appointments\s*:\s*(\d+)|$)`),
		distanceRe:    regexp.MustCompile(`([\d.]+)\s+Miles`),
		phoneRe:       regexp.MustCompile(`^(\+?44\s?\d{2,4}\s?\d{2,4}\s?\d{2,4}|\+?44\s?\d{3,5}\s?\d{3,5}|0\d{4}\s?\d{6}|0\d{3,5}\s?\d{3,5}\s?\d{0,3})$`),
		apptCountRe:   regexp.MustCompile(`(\d+)\s+Appointments\s*/\s*(\d+)\s+Days`),
		dateAtRe:      regexp.MustCompile(`^(\d{2}-\d{2}-\d{4})\s+At$`),
		timeRangeRe:   regexp.MustCompile(`^(\d{1,2}:\d{2})\s*-\s*(\d{1,2}:\d{2})$`),
		windowRe:      regexp.MustCompile(`(\d{1,2}:\d{2})\s*(?:to|-)\s*(\d{1,2}:\d{2})`),
		postcodeRe:    regexp.MustCompile(`(?i)\b([A-Z]{1,2}\d{1,2}[A-Z]?\s*\d[A-Z]{2})\b`),
		linkRe:        regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b|https?://\S+`),
	}
}

// isTerminator reports whether tok ends the info block during segmentation.
// The terminator set also filters section labels out of the notes text.
func (c *Config) isTerminator(tok string) bool {
	switch tok {
	case "", c.TimesheetsLabel, c.ServiceLineLabel, c.TotalLabel, c.DirectionsLabel:
		return true
	}
	if len(tok) >= len(c.DisclaimerPrefix) && tok[:len(c.DisclaimerPrefix)] == c.DisclaimerPrefix {
		return true
	}
	return c.subRefStartRe.MatchString(tok)
}
