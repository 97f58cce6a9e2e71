package extract

import "strings"

// Segments is the partition of a detail-page token list into the regions
// the field extractors operate on. Indices are into Tokens; -1 means the
// corresponding anchor was not found.
type Segments struct {
	Tokens []string

	OrderRefIndex int // Token announcing the order identifier
	LanguageIndex int // Language-pair marker token
	MultidayIndex int // Multiday marker token

	// Multiday is fixed here and never re-evaluated downstream.
	Multiday bool

	// HeaderBoundary is one past the last header token: the earlier of the
	// language and multiday markers (list length when both are absent).
	HeaderBoundary int

	// HeaderTotalIndex is the first currency token strictly before
	// HeaderBoundary.
	HeaderTotalIndex int

	// Info block half-open range [InfoStart, InfoEnd). InfoStart is -1 when
	// the language marker is absent (the whole info block is then absent).
	InfoStart int
	InfoEnd   int

	// PaymentAnchors are the sub-appointment identifier tokens in order of
	// first appearance. When none exist, the service-line label acts as a
	// single implicit anchor and ImplicitAnchor is set.
	PaymentAnchors []int
	ImplicitAnchor bool

	// LastTotalIndex is the last total-label token before DisclaimerIndex;
	// the notes/total extractor hangs off it.
	LastTotalIndex  int
	DisclaimerIndex int // List length when the disclaimer never appears
}

// Segment locates the anchor tokens of a detail-page token list and
// partitions it. Missing anchors degrade the affected region only; sibling
// regions still resolve.
func (e *Extractor) Segment(tokens []string) Segments {
	seg := Segments{
		Tokens:           tokens,
		OrderRefIndex:    -1,
		LanguageIndex:    -1,
		MultidayIndex:    -1,
		HeaderTotalIndex: -1,
		InfoStart:        -1,
		InfoEnd:          -1,
		LastTotalIndex:   -1,
	}

	cfg := e.cfg
	for i, tok := range tokens {
		if seg.OrderRefIndex == -1 && strings.HasPrefix(tok, cfg.OrderRefPrefix) {
			seg.OrderRefIndex = i
		}
		if seg.LanguageIndex == -1 && tok == cfg.LanguagePair {
			seg.LanguageIndex = i
		}
		if seg.MultidayIndex == -1 && tok == cfg.MultidayLabel {
			seg.MultidayIndex = i
		}
	}

	// The multiday marker can legitimately appear in disclaimer/notes text
	// further down the page; only an occurrence before the language marker
	// is authoritative.
	seg.Multiday = seg.MultidayIndex != -1 &&
		(seg.LanguageIndex == -1 || seg.MultidayIndex < seg.LanguageIndex)

	seg.HeaderBoundary = len(tokens)
	if seg.LanguageIndex != -1 {
		seg.HeaderBoundary = seg.LanguageIndex
	}
	if seg.MultidayIndex != -1 && seg.MultidayIndex < seg.HeaderBoundary {
		seg.HeaderBoundary = seg.MultidayIndex
	}

	for i := 0; i < seg.HeaderBoundary; i++ {
		if strings.HasPrefix(tokens[i], cfg.CurrencySigil) {
			seg.HeaderTotalIndex = i
			break
		}
	}

	if seg.LanguageIndex != -1 {
		seg.InfoStart = seg.LanguageIndex + 1
		seg.InfoEnd = len(tokens)
		for i := seg.InfoStart; i < len(tokens); i++ {
			if cfg.isTerminator(tokens[i]) {
				seg.InfoEnd = i
				break
			}
		}
	}

	for i, tok := range tokens {
		if cfg.subRefStartRe.MatchString(tok) {
			seg.PaymentAnchors = append(seg.PaymentAnchors, i)
		}
	}
	if len(seg.PaymentAnchors) == 0 {
		for i, tok := range tokens {
			if tok == cfg.ServiceLineLabel {
				seg.PaymentAnchors = []int{i}
				seg.ImplicitAnchor = true
				break
			}
		}
	}

	seg.DisclaimerIndex = len(tokens)
	for i, tok := range tokens {
		if strings.HasPrefix(tok, cfg.DisclaimerPrefix) {
			seg.DisclaimerIndex = i
			break
		}
	}

	for i := seg.DisclaimerIndex - 1; i >= 0; i-- {
		if tokens[i] == cfg.TotalLabel {
			seg.LastTotalIndex = i
			break
		}
	}

	e.log.Debug().
		Int("tokens", len(tokens)).
		Bool("multiday", seg.Multiday).
		Int("language_idx", seg.LanguageIndex).
		Int("payment_anchors", len(seg.PaymentAnchors)).
		Bool("implicit_anchor", seg.ImplicitAnchor).
		Msg("Segmented detail page tokens")

	return seg
}
