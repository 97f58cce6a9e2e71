// Package snapshot handles UI hierarchy captures: tokenizing the XML page
// source into the ordered text streams the extractors consume, and archiving
// raw captures for replay and debugging.
package snapshot

import (
	"encoding/xml"
	"strings"
)

// Tokens returns the values of every text attribute in the hierarchy XML,
// in document order. Attribute values are entity-decoded; embedded newlines
// split a value into multiple tokens; tokens are trimmed and empties dropped.
// Document order is the only structural signal the extractors get, so it is
// preserved exactly.
func Tokens(source string) []string {
	return attributeValues(source, "text", true)
}

// Descs returns the values of every content-desc attribute in document
// order, one token per attribute. List cards and secondary pages expose
// their summary records through these; the comma-delimited value stays
// whole.
func Descs(source string) []string {
	return attributeValues(source, "content-desc", false)
}

func attributeValues(source, attr string, splitLines bool) []string {
	var out []string

	dec := xml.NewDecoder(strings.NewReader(source))
	for {
		tok, err := dec.Token()
		if err != nil {
			// Truncated or malformed hierarchy dumps are common mid-
			// transition; whatever decoded before the error still counts.
			break
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		for _, a := range start.Attr {
			if a.Name.Local != attr {
				continue
			}
			lines := []string{a.Value}
			if splitLines {
				lines = strings.Split(a.Value, "\n")
			}
			for _, line := range lines {
				if trimmed := strings.TrimSpace(line); trimmed != "" {
					out = append(out, trimmed)
				}
			}
		}
	}

	return out
}

// ContainsToken reports whether any text attribute in the hierarchy contains
// needle. Used as a cheap page-state probe before running full extraction.
func ContainsToken(source, needle string) bool {
	for _, tok := range Tokens(source) {
		if strings.Contains(tok, needle) {
			return true
		}
	}
	return false
}
