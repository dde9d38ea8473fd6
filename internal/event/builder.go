package event

import (
	"strings"

	"github.com/pfrederiksen/festcal/internal/logger"
)

// OverridePolicy controls whether date and time text from the program listing
// replaces the text found on the event page.
type OverridePolicy string

const (
	// PreferListing uses the locator's date and time when present.
	PreferListing OverridePolicy = "listing"
	// PageOnly ignores locator overrides.
	PageOnly OverridePolicy = "page"
)

// Diagnostics receives non-fatal problems found while building records.
// *logger.Logger satisfies it.
type Diagnostics interface {
	Warn(message string, fields logger.Fields)
}

// Builder assembles Event records from locators and extracted page fields.
type Builder struct {
	normalizer *Normalizer
	sanitizer  *Sanitizer
	policy     OverridePolicy
	diag       Diagnostics
}

// NewBuilder creates a Builder. A nil diag sends diagnostics to the default logger.
func NewBuilder(n *Normalizer, s *Sanitizer, policy OverridePolicy, diag Diagnostics) *Builder {
	if diag == nil {
		diag = logger.Default()
	}
	if policy == "" {
		policy = PreferListing
	}
	return &Builder{
		normalizer: n,
		sanitizer:  s,
		policy:     policy,
		diag:       diag,
	}
}

// Build creates the record for one event. It never fails: a missing or
// unparseable schedule leaves Start and End zero and is reported to the
// diagnostics sink.
func (b *Builder) Build(loc Locator, raw RawFields) *Event {
	dateText, timeText := raw.DateText, raw.TimeText
	if b.policy == PreferListing {
		if loc.DateOverride != "" {
			dateText = loc.DateOverride
		}
		if loc.TimeOverride != "" {
			timeText = loc.TimeOverride
		}
	}

	title := raw.Title
	if title == "" {
		title = UnknownTitle
	}

	evt := &Event{
		ID:          GenerateID(loc.URL, dateText, timeText),
		Title:       title,
		Subtitle:    raw.Subtitle,
		DateText:    dateText,
		TimeText:    timeText,
		Location:    raw.Location,
		Description: strings.TrimSpace(strings.Join(b.sanitizer.Sanitize(raw.Paragraphs), "\n")),
		Speakers:    b.sanitizer.Sanitize(raw.Speakers),
		SourceURL:   loc.URL,
	}

	if dateText == "" || timeText == "" {
		b.diag.Warn("missing schedule", logger.Fields{
			"title":    title,
			"url":      loc.URL,
			"has_date": dateText != "",
			"has_time": timeText != "",
		})
		return evt
	}

	start, end, err := b.normalizer.Normalize(dateText, timeText)
	if err != nil {
		b.diag.Warn("unparseable schedule", logger.Fields{
			"title": title,
			"url":   loc.URL,
			"error": err.Error(),
		})
		return evt
	}

	evt.Start, evt.End = start, end
	return evt
}
