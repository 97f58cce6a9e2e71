package extract

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newTestExtractor() *Extractor {
	return New(DefaultConfig("English to Polish"), zerolog.Nop())
}

func TestSegmentSingleDay(t *testing.T) {
	e := newTestExtractor()
	tokens := []string{
		"Booking #MJR12345678",
		"£120.00",
		"English to Polish",
		"Acme Ltd",
		"42 Example Street",
		"Service Line Item",
		"£100.00",
		"TOTAL",
		"£120.00",
		"By accepting this assignment you agree",
	}

	seg := e.Segment(tokens)

	assert.Equal(t, 0, seg.OrderRefIndex)
	assert.Equal(t, 2, seg.LanguageIndex)
	assert.Equal(t, -1, seg.MultidayIndex)
	assert.False(t, seg.Multiday)
	assert.Equal(t, 2, seg.HeaderBoundary)
	assert.Equal(t, 1, seg.HeaderTotalIndex)
	assert.Equal(t, 3, seg.InfoStart)
	assert.Equal(t, 5, seg.InfoEnd)
	assert.Equal(t, []int{5}, seg.PaymentAnchors)
	assert.True(t, seg.ImplicitAnchor)
	assert.Equal(t, 7, seg.LastTotalIndex)
	assert.Equal(t, 9, seg.DisclaimerIndex)
}

func TestSegmentMultiDay(t *testing.T) {
	e := newTestExtractor()
	tokens := []string{
		"Booking #MJR22223333",
		"£300.00",
		"Multiday",
		"01-03-2024 - 03-03-2024",
		"3 Appointments / 3 Days",
		"English to Polish",
		"Hospital Trust",
		"MJA00000001",
		"Service Line Item",
		"£150.00",
		"MJA00000002",
		"Service Line Item",
		"£150.00",
		"TOTAL",
		"£300.00",
	}

	seg := e.Segment(tokens)

	assert.True(t, seg.Multiday)
	assert.Equal(t, 2, seg.MultidayIndex)
	assert.Equal(t, 2, seg.HeaderBoundary)
	assert.Equal(t, 1, seg.HeaderTotalIndex)
	assert.Equal(t, []int{7, 10}, seg.PaymentAnchors)
	assert.False(t, seg.ImplicitAnchor)
	assert.Equal(t, 13, seg.LastTotalIndex)
	assert.Equal(t, len(tokens), seg.DisclaimerIndex)
}

func TestSegmentMultidayWordInNotesIsNotAuthoritative(t *testing.T) {
	e := newTestExtractor()
	tokens := []string{
		"Booking #MJR12345678",
		"English to Polish",
		"Acme Ltd",
		"Service Line Item",
		"£100.00",
		"TOTAL",
		"£100.00",
		"Multiday",
	}

	seg := e.Segment(tokens)

	assert.Equal(t, 7, seg.MultidayIndex)
	assert.False(t, seg.Multiday, "marker after the language token must not flip the kind")
}

func TestSegmentMissingAnchors(t *testing.T) {
	e := newTestExtractor()

	seg := e.Segment([]string{"loading", "please wait"})

	assert.Equal(t, -1, seg.OrderRefIndex)
	assert.Equal(t, -1, seg.LanguageIndex)
	assert.Equal(t, -1, seg.InfoStart)
	assert.Empty(t, seg.PaymentAnchors)
	assert.Equal(t, -1, seg.LastTotalIndex)
	assert.Equal(t, 2, seg.DisclaimerIndex)
	assert.Equal(t, 2, seg.HeaderBoundary)
}

func TestSegmentEmptyTokenList(t *testing.T) {
	e := newTestExtractor()

	seg := e.Segment(nil)

	assert.Equal(t, -1, seg.LanguageIndex)
	assert.Equal(t, 0, seg.HeaderBoundary)
	assert.Equal(t, 0, seg.DisclaimerIndex)
}
