package event

import "strings"

// DefaultDenylist holds the ticketing boilerplate found on Elevate event pages.
// The pages use the phrase with no space, a regular space or a thin space
// after the arrow.
var DefaultDenylist = []string{
	"–>Tickets hier erhältlich",
	"–> Tickets hier erhältlich",
	"–>\u2009Tickets hier erhältlich",
}

// Sanitizer strips known boilerplate phrases from scraped text.
type Sanitizer struct {
	denylist []string
}

// NewSanitizer creates a Sanitizer for the given phrases. Empty phrases are ignored.
func NewSanitizer(denylist []string) *Sanitizer {
	phrases := make([]string, 0, len(denylist))
	for _, p := range denylist {
		if p != "" {
			phrases = append(phrases, p)
		}
	}
	return &Sanitizer{denylist: phrases}
}

// Sanitize drops every text that equals a denylisted phrase and removes all
// denylisted phrases from the rest. Remaining texts keep their order and are
// kept even when nothing but whitespace is left.
func (s *Sanitizer) Sanitize(texts []string) []string {
	out := make([]string, 0, len(texts))
	for _, text := range texts {
		if s.isDenied(text) {
			continue
		}
		for _, phrase := range s.denylist {
			text = strings.ReplaceAll(text, phrase, "")
		}
		out = append(out, text)
	}
	return out
}

func (s *Sanitizer) isDenied(text string) bool {
	for _, phrase := range s.denylist {
		if text == phrase {
			return true
		}
	}
	return false
}
