package extract

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/athoward/bookhound/internal/domain"
	"github.com/rs/zerolog"
)

// Extractor runs the detail-page extraction pipeline. It is stateless
// between calls; concurrent use over independent token lists is safe.
type Extractor struct {
	cfg *Config
	log zerolog.Logger
}

// New creates an extractor over the given pattern table.
func New(cfg *Config, log zerolog.Logger) *Extractor {
	return &Extractor{
		cfg: cfg,
		log: log.With().Str("component", "extract").Logger(),
	}
}

// Config exposes the pattern table (shared with the snapshot tokenizer).
func (e *Extractor) Config() *Config {
	return e.cfg
}

// ExtractOrder turns an ordered detail-page token list into a normalized
// order record. Best-effort by design: unrecognizable fields come back
// absent, the call itself never fails. Re-running over the same tokens
// yields an identical record.
func (e *Extractor) ExtractOrder(tokens []string) *domain.Order {
	seg := e.Segment(tokens)
	hdr := e.extractHeader(seg)
	info := e.extractInfo(seg)
	blocks := e.extractPaymentBlocks(seg)
	nt := e.extractNotesAndTotal(seg)
	return e.assemble(seg, hdr, info, blocks, nt)
}

// assemble combines the per-segment extractions into the final record and
// applies the kind-specific derivations.
func (e *Extractor) assemble(seg Segments, hdr headerResult, info infoResult, blocks []paymentBlock, nt notesResult) *domain.Order {
	order := &domain.Order{
		Ref:          hdr.OrderRef,
		Kind:         domain.KindSingleDay,
		HeaderTotal:  hdr.HeaderTotal,
		LanguagePair: info.LanguagePair,
		ClientName:   info.ClientName,
		BookingType:  info.BookingType,
		ContactName:  info.ContactName,
		ContactPhone: info.ContactPhone,
		OverallTotal: nt.OverallTotal,
		Notes:        nt.Notes,
		MeetingLink:  info.MeetingLink,
	}
	if seg.Multiday {
		order.Kind = domain.KindMultiDay
	}

	if info.AddressLine1 != nil || info.AddressLine2 != nil {
		var lines []string
		if info.AddressLine1 != nil {
			lines = append(lines, *info.AddressLine1)
		}
		if info.AddressLine2 != nil {
			lines = append(lines, *info.AddressLine2)
		}
		joined := strings.TrimSpace(strings.Join(lines, "\n"))
		order.Address = &joined
	}

	if info.DistanceRaw != nil {
		order.TravelDistance = e.cfg.parseDistance(*info.DistanceRaw)
		if order.TravelDistance == nil {
			e.log.Warn().Str("raw", *info.DistanceRaw).Msg("Could not parse travel distance value")
		}
	}

	// A meeting link sometimes only appears inside the notes text; promote
	// the first email-or-URL match when the info block produced nothing.
	if (order.MeetingLink == nil || *order.MeetingLink == e.cfg.MeetingLinkLabel) && order.Notes != nil {
		if link := e.cfg.linkRe.FindString(*order.Notes); link != "" {
			order.MeetingLink = &link
			e.log.Info().Str("link", link).Msg("Promoted meeting link from notes")
		}
	}
	if order.MeetingLink != nil && *order.MeetingLink == e.cfg.MeetingLinkLabel {
		order.MeetingLink = nil
	}

	if order.Kind == domain.KindMultiDay {
		e.assembleMultiDay(order, hdr, blocks)
	} else {
		e.assembleSingleDay(order, hdr, blocks)
	}

	return order
}

// assembleSingleDay fills the single-day schedule and lifts the sole
// payment block onto the record.
func (e *Extractor) assembleSingleDay(order *domain.Order, hdr headerResult, blocks []paymentBlock) {
	sched := &domain.SingleDaySchedule{}

	if hdr.DateRaw != nil {
		sched.BookingDate = ParseUKDate(*hdr.DateRaw)
	}
	if hdr.TimeRaw != nil {
		if m := e.cfg.timeRangeRe.FindStringSubmatch(*hdr.TimeRaw); m != nil {
			sched.StartTime = ParseClockTime(m[1])
			sched.EndTime = ParseClockTime(m[2])
			sched.Duration = DurationBetween(m[1], m[2])
		}
	}
	order.Single = sched

	if len(blocks) > 0 {
		order.SubRef = blocks[0].Ref
		order.DayPayments = blocks[0].Payments
	}
	// For a single day the day total is the overall total.
	order.DayTotal = order.OverallTotal
}

// assembleMultiDay builds the day entries, projecting each day's date from
// the range start in block-discovery order (detail pages omit per-day
// dates), and pro-rates the overall total across the day count.
func (e *Extractor) assembleMultiDay(order *domain.Order, hdr headerResult, blocks []paymentBlock) {
	order.Multi = &domain.MultiDaySchedule{
		DateRange:       hdr.DateRange,
		AppointmentInfo: hdr.AppointmentInfo,
	}

	var startDate *time.Time
	if hdr.DateRange != nil {
		first := strings.SplitN(*hdr.DateRange, " - ", 2)[0]
		if normalized := ParseUKDate(first); normalized != nil {
			if t, err := time.Parse(ukDateLayout, *normalized); err == nil {
				startDate = &t
			}
		}
		if startDate == nil {
			e.log.Warn().Str("range", *hdr.DateRange).Msg("Could not parse start date from range")
		}
	}

	for i, block := range blocks {
		entry := domain.DayEntry{
			Ref:      block.Ref,
			Payments: block.Payments,
		}
		if startDate != nil {
			date := startDate.AddDate(0, 0, i).Format(ukDateLayout)
			entry.BookingDate = &date
		}
		order.Days = append(order.Days, entry)
	}

	// An explicit appointment-count token beats the count implied by the
	// extracted blocks; with neither usable, pro-ration is skipped.
	days := e.dayCount(hdr.AppointmentInfo)
	if days == 0 {
		days = len(blocks)
	}
	if days > 0 && order.OverallTotal != nil {
		avg := math.Round(*order.OverallTotal/float64(days)*100) / 100
		order.DayTotal = &avg
	}
}

// dayCount parses "<N> Appointments / <M> Days", preferring the days value.
func (e *Extractor) dayCount(appointmentInfo *string) int {
	if appointmentInfo == nil {
		return 0
	}
	m := e.cfg.apptCountRe.FindStringSubmatch(*appointmentInfo)
	if m == nil {
		return 0
	}
	numStr := m[2]
	if numStr == "" {
		numStr = m[1]
	}
	n, err := strconv.Atoi(numStr)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
