package extract

import (
	"strings"

	"github.com/athoward/bookhound/internal/domain"
)

// statusPrefixes are the literal card-status prefixes a descriptor can open
// with, checked in order. Each ends in a comma so plain text can't trigger
// them.
var statusPrefixes = []struct {
	Prefix string
	Status domain.CardStatus
}{
	{"Cancelled,", domain.CardStatusCancelled},
	{"New Offer,", domain.CardStatusNewOffer},
	{"Viewed,", domain.CardStatusViewed},
}

// ParseDescriptor parses one comma-delimited list-card descriptor string.
// The booking identifier is the single required field: without it there is
// no record to attach anything to, and nil is returned. Everything else
// degrades to absent.
func (e *Extractor) ParseDescriptor(desc string) *domain.Descriptor {
	if strings.TrimSpace(desc) == "" {
		return nil
	}
	cfg := e.cfg

	status := domain.CardStatusNormal
	remaining := desc
	for _, sp := range statusPrefixes {
		if strings.HasPrefix(remaining, sp.Prefix) {
			status = sp.Status
			remaining = strings.TrimLeft(remaining[len(sp.Prefix):], " ,")
			break
		}
	}

	loc := cfg.subRefRe.FindStringIndex(remaining)
	if loc == nil {
		e.log.Warn().Str("desc", desc).Msg("No booking identifier in descriptor")
		return nil
	}
	ref := remaining[loc[0]:loc[1]]

	// Unrecognized text before the identifier is an unknown status prefix.
	if status == domain.CardStatusNormal && strings.TrimSpace(remaining[:loc[0]]) != "" {
		status = domain.CardStatusUnknown
		e.log.Warn().Str("prefix", remaining[:loc[0]]).Msg("Unrecognized card status prefix")
	}

	result := &domain.Descriptor{
		Ref:    ref,
		Status: status,
		Remote: false,
	}

	after := strings.TrimLeft(remaining[loc[1]:], ", ")
	var parts []string
	for _, p := range strings.Split(after, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}

	claimed := make(map[int]bool, len(parts))

	// Time window first: it is the most distinctive shape.
	for i, part := range parts {
		m := cfg.windowRe.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		result.StartTime = ParseClockTime(m[1])
		result.EndTime = ParseClockTime(m[2])
		result.Duration = DurationBetween(m[1], m[2])
		window := m[1] + " to " + m[2]
		result.TimeWindow = &window
		claimed[i] = true
		break
	}

	// Location: the literal "remote" or the first postcode-shaped part,
	// whichever appears first. Neither found means the card is remote.
	located := false
	for i, part := range parts {
		if claimed[i] {
			continue
		}
		if strings.EqualFold(part, "remote") {
			result.Remote = true
			claimed[i] = true
			located = true
			break
		}
		if pc := cfg.SanitizePostcode(part); pc != nil {
			result.Postcode = pc
			result.Remote = false
			claimed[i] = true
			located = true
			break
		}
	}
	if !located {
		result.Remote = true
		e.log.Debug().Str("ref", ref).Msg("No postcode on card, inferred remote")
	}

	// Language pair: the last part still unclaimed.
	var unclaimed []string
	for i, part := range parts {
		if !claimed[i] {
			unclaimed = append(unclaimed, part)
		}
	}
	if len(unclaimed) > 0 {
		result.LanguagePair = &unclaimed[len(unclaimed)-1]
		if len(unclaimed) > 1 {
			e.log.Warn().
				Str("ref", ref).
				Strs("parts", unclaimed[:len(unclaimed)-1]).
				Msg("Multiple unassigned descriptor parts, using last for language pair")
		}
	}

	return result
}
