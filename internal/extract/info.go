package extract

import "strings"

// infoResult is the raw info-block extraction. Every field is independently
// absent-able.
type infoResult struct {
	LanguagePair *string
	ClientName   *string
	AddressLine1 *string
	AddressLine2 *string
	BookingType  *string
	ContactName  *string
	ContactPhone *string
	DistanceRaw  *string
	MeetingLink  *string
}

// cursor consumes tokens from the front of an immutable slice. Each
// recognizer step takes zero or one token; nothing is ever re-read.
type cursor struct {
	tokens []string
	pos    int
}

func (c *cursor) peek() (string, bool) {
	if c.pos >= len(c.tokens) {
		return "", false
	}
	return c.tokens[c.pos], true
}

func (c *cursor) take() string {
	tok := c.tokens[c.pos]
	c.pos++
	return tok
}

func (c *cursor) rest() []string {
	return c.tokens[c.pos:]
}

// extractInfo greedily disambiguates the info block in a fixed priority
// order: client name, meeting link, address lines, booking type, contact
// name, contact phone, travel distance. Tokens left over are discarded -
// malformed info blocks degrade, they don't abort the record.
func (e *Extractor) extractInfo(seg Segments) infoResult {
	var out infoResult
	cfg := e.cfg

	if seg.InfoStart == -1 {
		e.log.Debug().Msg("Language marker absent, info block skipped")
		return out
	}
	out.LanguagePair = &seg.Tokens[seg.LanguageIndex]

	cur := cursor{tokens: seg.Tokens[seg.InfoStart:seg.InfoEnd]}

	// Client name: anything that isn't the meeting-link label, a distance
	// token, or a booking-type token.
	if tok, ok := cur.peek(); ok &&
		tok != cfg.MeetingLinkLabel &&
		!cfg.distanceRe.MatchString(tok) &&
		!strings.Contains(tok, cfg.BookingTypeSeparator) {
		v := cur.take()
		out.ClientName = &v
	}

	// Meeting link: the label token, then an email-or-URL value if one
	// directly follows.
	if tok, ok := cur.peek(); ok && tok == cfg.MeetingLinkLabel {
		cur.take()
		if v, ok := cur.peek(); ok && cfg.linkRe.MatchString(v) {
			link := cur.take()
			out.MeetingLink = &link
		}
	}

	// Address: consume while tokens look address-like. First line is
	// address line 1, any further lines join into line 2.
	var addressLines []string
	for {
		tok, ok := cur.peek()
		if !ok || !e.addressLike(tok) {
			break
		}
		addressLines = append(addressLines, cur.take())
	}
	if len(addressLines) > 0 {
		out.AddressLine1 = &addressLines[0]
	}
	if len(addressLines) > 1 {
		joined := strings.Join(addressLines[1:], "\n")
		out.AddressLine2 = &joined
	}

	// Booking type: the separator character is its signature.
	if tok, ok := cur.peek(); ok && strings.Contains(tok, cfg.BookingTypeSeparator) {
		v := cur.take()
		out.BookingType = &v
	}

	// Contact name: anything not phone- or distance-shaped.
	if tok, ok := cur.peek(); ok &&
		!cfg.phoneRe.MatchString(tok) &&
		!cfg.distanceRe.MatchString(tok) {
		v := cur.take()
		out.ContactName = &v
	}

	// Contact phone: a phone-shaped token, a long-enough token carrying a
	// digit, or a null placeholder (consumed here so the cursor stays
	// aligned for the distance step, then normalized away below).
	if tok, ok := cur.peek(); ok && !cfg.distanceRe.MatchString(tok) &&
		(cfg.phoneRe.MatchString(tok) ||
			(len(tok) > 5 && hasDigit(tok)) ||
			cfg.isPlaceholder(tok)) {
		v := cur.take()
		out.ContactPhone = &v
	}

	// Travel distance: "<n> Miles".
	if tok, ok := cur.peek(); ok && cfg.distanceRe.MatchString(tok) {
		v := cur.take()
		out.DistanceRaw = &v
	}

	if leftover := cur.rest(); len(leftover) > 0 {
		e.log.Warn().Strs("tokens", leftover).Msg("Unassigned info block tokens discarded")
	}

	// Null-like contact values render as "undefined undefined", "null" or
	// "0" in the app; normalize them to absent.
	if out.ContactName != nil && cfg.isPlaceholder(*out.ContactName) {
		out.ContactName = nil
	}
	if out.ContactPhone != nil && cfg.isPlaceholder(*out.ContactPhone) {
		out.ContactPhone = nil
	}

	return out
}

// addressLike reports whether tok reads as an address line: it carries a
// road/building keyword or a postcode, and is not shaped like any of the
// later info fields.
func (e *Extractor) addressLike(tok string) bool {
	cfg := e.cfg
	if tok == cfg.MeetingLinkLabel ||
		strings.Contains(tok, cfg.BookingTypeSeparator) ||
		cfg.phoneRe.MatchString(tok) ||
		cfg.distanceRe.MatchString(tok) {
		return false
	}
	if cfg.postcodeRe.MatchString(tok) {
		return true
	}
	lower := strings.ToLower(tok)
	for _, keyword := range cfg.AddressKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}
