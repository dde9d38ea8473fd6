package event

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// UnknownTitle is used when an event page carries no heading.
const UnknownTitle = "Unknown"

// Locator references a single event page discovered on the program listing.
// DateOverride and TimeOverride hold the listing row's date and time text, empty
// when the listing does not provide them.
type Locator struct {
	URL          string `json:"url"`
	DateOverride string `json:"date_override,omitempty"`
	TimeOverride string `json:"time_override,omitempty"`
}

// RawFields is the text extracted from one event page. Empty strings mean the
// element was not present.
type RawFields struct {
	Title      string
	Subtitle   string
	DateText   string
	TimeText   string
	Location   string
	Paragraphs []string
	Speakers   []string
}

// Event is a canonical festival event record.
// Start and End are either both set or both zero.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle,omitempty"`
	DateText    string    `json:"date_text,omitempty"`
	TimeText    string    `json:"time_text,omitempty"`
	Start       time.Time `json:"start,omitzero"`
	End         time.Time `json:"end,omitzero"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description"`
	Speakers    []string  `json:"speakers,omitempty"`
	SourceURL   string    `json:"source_url"`
}

// Scheduled reports whether the event has a start and end instant.
func (e *Event) Scheduled() bool {
	return !e.Start.IsZero() && !e.End.IsZero()
}

// ScheduleLine returns the raw date and time text joined by a space, skipping
// whichever part is missing.
func (e *Event) ScheduleLine() string {
	return strings.TrimSpace(strings.Join([]string{e.DateText, e.TimeText}, " "))
}

// GenerateID creates a deterministic UUIDv5 for an event from its page URL and
// the raw schedule text, so the same listing entry keeps its UID across runs.
func GenerateID(sourceURL, dateText, timeText string) string {
	name := sourceURL + "|" + dateText + "|" + timeText
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}
