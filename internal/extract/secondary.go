package extract

import (
	"strconv"
	"strings"

	"github.com/athoward/bookhound/internal/domain"
)

// Canonical type hints as the app renders them on secondary cards.
const (
	TypeHintFaceToFace  = "Face To Face"
	TypeHintVideoRemote = "Video Remote Interpreting"
	TypeHintRemote      = "Remote"
)

// ParseSecondary extracts the hint record from a secondary (MJB) page:
// descs are the page's content-desc values in order, texts its visible
// text tokens. The order identifier and type/count hints live in the
// content-desc stream, the creation identifier in the text stream. All
// fields degrade to absent; the count hint defaults to 1.
func (e *Extractor) ParseSecondary(descs, texts []string) domain.SecondaryInfo {
	cfg := e.cfg
	out := domain.SecondaryInfo{AppointmentCountHint: 1}

	for _, desc := range descs {
		m := cfg.secondaryRe.FindStringSubmatch(desc)
		if m == nil {
			continue
		}
		ref := m[1]
		out.OrderRef = &ref

		if hint := strings.Trim(m[2], " ,"); hint != "" {
			normalized := normalizeTypeHint(hint)
			out.TypeHint = &normalized
		}

		if m[3] != "" {
			if n, err := strconv.Atoi(strings.TrimSpace(m[3])); err == nil {
				out.AppointmentCountHint = n
			} else {
				e.log.Warn().Str("count", m[3]).Msg("Unparsable appointment count hint, defaulting to 1")
			}
		}
		break
	}
	if out.OrderRef == nil {
		e.log.Warn().Msg("No order identifier found in secondary page descriptions")
	}

	for _, text := range texts {
		if m := cfg.creationRefRe.FindStringSubmatch(text); m != nil {
			ref := m[1]
			out.CreationRef = &ref
			break
		}
	}
	if out.CreationRef == nil {
		e.log.Warn().Msg("No creation identifier found in secondary page texts")
	}

	return out
}

// normalizeTypeHint canonicalizes a free-text type hint when it contains a
// known booking mode, keeping it verbatim otherwise.
func normalizeTypeHint(hint string) string {
	lower := strings.ToLower(hint)
	switch {
	case strings.Contains(lower, strings.ToLower(TypeHintFaceToFace)):
		return TypeHintFaceToFace
	case strings.Contains(lower, strings.ToLower(TypeHintVideoRemote)):
		return TypeHintVideoRemote
	case strings.Contains(lower, strings.ToLower(TypeHintRemote)):
		return TypeHintRemote
	default:
		return hint
	}
}
