package extract

import "strings"

// notesResult is the raw notes/total extraction.
type notesResult struct {
	OverallTotal *float64
	Notes        *string
}

// extractNotesAndTotal resolves the overall total and the trailing
// free-text notes. The total hangs off the last total label before the
// disclaimer; when that label is absent (mid-load page states) both fields
// stay absent and siblings are unaffected.
func (e *Extractor) extractNotesAndTotal(seg Segments) notesResult {
	var out notesResult
	cfg := e.cfg

	if seg.LastTotalIndex == -1 {
		e.log.Debug().Msg("No total label before disclaimer, notes/total absent")
		return out
	}

	start := seg.LastTotalIndex + 1
	if start < len(seg.Tokens) && strings.HasPrefix(seg.Tokens[start], cfg.CurrencySigil) {
		out.OverallTotal = ParseMoney(seg.Tokens[start])
		start++
	}

	// Everything up to the disclaimer is notes, minus section labels and
	// sub-appointment identifiers already claimed by other extractors.
	var lines []string
	for i := start; i < seg.DisclaimerIndex && i < len(seg.Tokens); i++ {
		tok := seg.Tokens[i]
		if cfg.isTerminator(tok) {
			continue
		}
		lines = append(lines, tok)
	}
	if len(lines) > 0 {
		joined := strings.TrimSpace(strings.Join(lines, "\n"))
		if joined != "" {
			out.Notes = &joined
		}
	}

	return out
}
