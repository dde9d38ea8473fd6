package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/pfrederiksen/festcal/internal/event"
)

const (
	// MethodPublish is the only METHOD value festcal emits.
	MethodPublish = string(ics.MethodPublish)

	localTimeFormat = "20060102T150405"
	stampFormat     = "2006-01-02 15:04:05"
)

// Document is one calendar file: document metadata plus events in output order.
type Document struct {
	ProductID   string
	Method      string // empty omits METHOD
	Name        string // empty omits X-WR-CALNAME and X-WR-TIMEZONE
	Zone        *time.Location
	GeneratedAt time.Time
	Events      []*event.Event
}

// Serialize renders doc as an iCalendar byte stream with CRLF line endings.
// Events without a schedule are emitted without DTSTART and DTEND. A non-UTC
// zone is described by a VTIMEZONE ahead of the events.
func Serialize(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("calendar document is nil")
	}
	if strings.TrimSpace(doc.ProductID) == "" {
		return nil, errors.New("calendar product id is empty")
	}

	zone := doc.Zone
	if zone == nil {
		zone = time.UTC
	}
	generated := doc.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	generated = generated.In(zone)

	cal := &ics.Calendar{}
	cal.SetProductId(doc.ProductID)
	cal.SetVersion("2.0")
	if doc.Method != "" {
		cal.SetMethod(ics.Method(doc.Method))
	}
	if doc.Name != "" {
		cal.SetXWRCalName(doc.Name)
		cal.SetXWRTimezone(zone.String())
	}

	stamp := "Last calendar update: " + generated.Format(stampFormat)

	var years []int
	for i, evt := range doc.Events {
		if evt == nil {
			return nil, fmt.Errorf("event %d is nil", i)
		}
		if !evt.Scheduled() {
			continue
		}
		if evt.End.Before(evt.Start) {
			return nil, fmt.Errorf("event %q ends before it starts", evt.Title)
		}
		years = append(years, evt.Start.In(zone).Year(), evt.End.In(zone).Year())
	}
	if zone != time.UTC && len(years) > 0 {
		addTimezone(cal, zone, years)
	}

	for _, evt := range doc.Events {
		uid := evt.ID
		if uid == "" {
			uid = event.GenerateID(evt.SourceURL, evt.DateText, evt.TimeText)
		}

		ve := cal.AddEvent(uid)
		ve.SetDtStampTime(generated.UTC())
		ve.SetSummary(evt.Title)
		ve.SetDescription(composeDescription(evt, stamp))
		if evt.Location != "" {
			ve.SetLocation(evt.Location)
		}
		if evt.Scheduled() {
			setInstant(ve, ics.ComponentPropertyDtStart, evt.Start, zone)
			setInstant(ve, ics.ComponentPropertyDtEnd, evt.End, zone)
		}
	}

	return []byte(cal.Serialize(ics.WithNewLineWindows)), nil
}

// setInstant writes t as a local time tagged with the zone's TZID, or as a UTC
// time when the zone is UTC.
func setInstant(ve *ics.VEvent, prop ics.ComponentProperty, t time.Time, zone *time.Location) {
	if zone == time.UTC {
		ve.SetProperty(prop, t.UTC().Format(localTimeFormat+"Z"))
		return
	}
	tzid := &ics.KeyValues{Key: string(ics.ParameterTzid), Value: []string{zone.String()}}
	ve.SetProperty(prop, t.In(zone).Format(localTimeFormat), tzid)
}

// composeDescription joins the non-empty description parts with blank lines:
// subtitle, raw schedule text, body, speakers, source link and the run stamp.
func composeDescription(evt *event.Event, stamp string) string {
	parts := []string{
		evt.Subtitle,
		evt.ScheduleLine(),
		evt.Description,
	}
	if len(evt.Speakers) > 0 {
		parts = append(parts, "Speakers:\n"+strings.Join(evt.Speakers, "\n"))
	}
	parts = append(parts, "More info: "+evt.SourceURL, stamp)

	kept := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}
