package extract

// headerResult is the raw header-segment extraction before value parsing.
// Either the single-day date/time pair or the multi-day range/count pair is
// populated, never both.
type headerResult struct {
	OrderRef    *string
	HeaderTotal *float64

	// Single-day: adjacent "DD-MM-YYYY At" / "HH:MM - HH:MM" tokens.
	DateRaw *string
	TimeRaw *string

	// Multi-day: the two tokens following the multiday marker, verbatim.
	DateRange       *string
	AppointmentInfo *string
}

// extractHeader resolves the order identifier, the header total, and the
// temporal header fields. Absence of any of them is non-fatal.
func (e *Extractor) extractHeader(seg Segments) headerResult {
	var out headerResult
	cfg := e.cfg

	if seg.OrderRefIndex != -1 {
		tok := seg.Tokens[seg.OrderRefIndex]
		if m := cfg.orderRefRe.FindStringSubmatch(tok); m != nil {
			out.OrderRef = &m[1]
		} else {
			// Announcing prefix present but the id is malformed; keep the
			// raw token so the record is still attributable.
			out.OrderRef = &tok
		}
	}

	if seg.HeaderTotalIndex != -1 {
		out.HeaderTotal = ParseMoney(seg.Tokens[seg.HeaderTotalIndex])
	}

	if seg.Multiday {
		// The date range and appointment count render as the two tokens
		// directly under the multiday marker. Fewer than two available
		// tokens leaves both absent.
		if seg.MultidayIndex+2 < len(seg.Tokens) {
			out.DateRange = &seg.Tokens[seg.MultidayIndex+1]
			out.AppointmentInfo = &seg.Tokens[seg.MultidayIndex+2]
		}
		return out
	}

	for i := 0; i+1 < len(seg.Tokens); i++ {
		if cfg.dateAtRe.MatchString(seg.Tokens[i]) && cfg.timeRangeRe.MatchString(seg.Tokens[i+1]) {
			out.DateRaw = &seg.Tokens[i]
			out.TimeRaw = &seg.Tokens[i+1]
			break
		}
	}
	if out.DateRaw == nil {
		e.log.Debug().Msg("No adjacent date/time token pair found in header")
	}

	return out
}
