package extract

import (
	"strings"

	"github.com/athoward/bookhound/internal/domain"
)

// paymentBlock is the labeled currency amounts found for one payment anchor.
type paymentBlock struct {
	Ref      *string // Sub-appointment identifier, nil for the implicit anchor
	Payments domain.PaymentSet
}

// extractPaymentBlocks walks each payment anchor's block as consecutive
// label/value pairs. A pair counts only when the value token carries the
// currency sigil; unknown labels are dropped without error; a block that
// yields no recognized item is dropped entirely. An empty result is valid -
// some page states genuinely disclose no payment yet.
func (e *Extractor) extractPaymentBlocks(seg Segments) []paymentBlock {
	cfg := e.cfg
	var blocks []paymentBlock

	for bi, anchor := range seg.PaymentAnchors {
		end := len(seg.Tokens)
		if bi+1 < len(seg.PaymentAnchors) {
			end = seg.PaymentAnchors[bi+1]
		}
		for j := anchor + 1; j < len(seg.Tokens); j++ {
			if seg.Tokens[j] == cfg.TotalLabel {
				if j < end {
					end = j
				}
				break
			}
		}

		block := paymentBlock{}
		start := anchor + 1
		if seg.ImplicitAnchor {
			// The service-line label doubles as the anchor and as the first
			// pair's label.
			start = anchor
		} else {
			if ref := cfg.subRefRe.FindString(seg.Tokens[anchor]); ref != "" {
				block.Ref = &ref
			}
		}

		oohSeen := false
		for idx := start; idx+1 < end; idx += 2 {
			label := seg.Tokens[idx]
			value := seg.Tokens[idx+1]
			if !strings.HasPrefix(value, cfg.CurrencySigil) {
				continue
			}

			amount := ParseMoney(value)
			if amount == nil {
				continue
			}

			labelLower := strings.ToLower(label)
			if category, ok := cfg.PaymentLabels[labelLower]; ok {
				assignPayment(&block.Payments, category, amount)
				continue
			}
			// Urgency is checked first: "Urgency Uplift" carries both
			// substrings. Only the first plain uplift in a block is kept.
			if strings.Contains(labelLower, cfg.UrgencySubstring) {
				block.Payments.Urgency = amount
			} else if strings.Contains(labelLower, cfg.UpliftSubstring) && !oohSeen {
				block.Payments.OutOfHours = amount
				oohSeen = true
			} else {
				e.log.Debug().Str("label", label).Msg("Unrecognized payment label dropped")
			}
		}

		if block.Payments.Empty() {
			continue
		}
		blocks = append(blocks, block)
	}

	e.log.Debug().Int("blocks", len(blocks)).Msg("Extracted payment blocks")
	return blocks
}

// assignPayment stores an amount under its mapped category.
func assignPayment(ps *domain.PaymentSet, category PaymentCategory, amount *float64) {
	switch category {
	case CategoryServiceLine:
		ps.ServiceLine = amount
	case CategoryTravelDistance:
		ps.TravelDistance = amount
	case CategoryTravelTime:
		ps.TravelTime = amount
	case CategoryEnhancement:
		ps.Enhancement = amount
	case CategoryOutOfHours:
		ps.OutOfHours = amount
	case CategoryUrgency:
		ps.Urgency = amount
	}
}
