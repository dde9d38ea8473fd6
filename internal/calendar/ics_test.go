package calendar

import (
	"bytes"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	goical "github.com/emersion/go-ical"

	"github.com/pfrederiksen/festcal/internal/event"
)

func vienna(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Vienna")
	if err != nil {
		t.Fatalf("loading Europe/Vienna: %v", err)
	}
	return loc
}

func sampleEvents(zone *time.Location) []*event.Event {
	return []*event.Event{
		{
			ID:          "3f1c1a52-2a0f-5b8e-9a44-0d3c2f6e1b10",
			Title:       "Talk X",
			Subtitle:    "On networks",
			DateText:    "Mittwoch, 05 März 2025",
			TimeText:    "19:00 - 23:00",
			Start:       time.Date(2025, 3, 5, 19, 0, 0, 0, zone),
			End:         time.Date(2025, 3, 5, 23, 0, 0, 0, zone),
			Location:    "Forum Stadtpark",
			Description: "First paragraph.\nSecond, with comma; and semicolon.",
			Speakers:    []string{"Ada Lovelace", "Alan Turing"},
			SourceURL:   "https://elevate.at/de/talk-x/",
		},
		{
			ID:        "6a0b7c4e-8d5f-5e21-b0a3-7f9e2d1c4b55",
			Title:     "Unscheduled",
			SourceURL: "https://elevate.at/de/unscheduled/",
		},
	}
}

func sampleDocument(t *testing.T) *Document {
	zone := vienna(t)
	return &Document{
		ProductID:   "-//Elevate 2026 Diskursprogramm//elevate.at//DE",
		Method:      MethodPublish,
		Zone:        zone,
		GeneratedAt: time.Date(2025, 3, 1, 11, 30, 0, 0, time.UTC),
		Events:      sampleEvents(zone),
	}
}

func TestSerialize(t *testing.T) {
	data, err := Serialize(sampleDocument(t))
	if err != nil {
		t.Fatalf("Serialize() error: %v", err)
	}
	out := string(data)

	requiredFields := []string{
		"BEGIN:VCALENDAR",
		"PRODID:-//Elevate 2026 Diskursprogramm//elevate.at//DE",
		"VERSION:2.0",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		"UID:3f1c1a52-2a0f-5b8e-9a44-0d3c2f6e1b10",
		"DTSTAMP:20250301T113000Z",
		"SUMMARY:Talk X",
		"LOCATION:Forum Stadtpark",
		"DTSTART;TZID=Europe/Vienna:20250305T190000",
		"DTEND;TZID=Europe/Vienna:20250305T230000",
		"SUMMARY:Unscheduled",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	for _, field := range requiredFields {
		if !strings.Contains(out, field) {
			t.Errorf("ICS missing required field: %s", field)
		}
	}

	if !strings.Contains(out, "\r\n") {
		t.Error("ICS should use \\r\\n line endings")
	}
	if bare := strings.Count(out, "\n") - strings.Count(out, "\r\n"); bare != 0 {
		t.Errorf("ICS has %d bare \\n line endings", bare)
	}

	// Document properties in order
	prodID := strings.Index(out, "PRODID:")
	version := strings.Index(out, "VERSION:")
	method := strings.Index(out, "METHOD:")
	if !(prodID < version && version < method) {
		t.Errorf("document properties out of order: PRODID@%d VERSION@%d METHOD@%d", prodID, version, method)
	}

	if got := strings.Count(out, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("BEGIN:VEVENT count = %d, want 2", got)
	}
	if got := strings.Count(out, "DTSTART;TZID="); got != 1 {
		t.Errorf("DTSTART count = %d, want 1 (unscheduled event has none)", got)
	}
	if got := strings.Count(out, "LOCATION"); got != 1 {
		t.Errorf("LOCATION count = %d, want 1", got)
	}
}

func TestSerialize_Timezone(t *testing.T) {
	data, err := Serialize(sampleDocument(t))
	if err != nil {
		t.Fatalf("Serialize() error: %v", err)
	}
	out := string(data)

	requiredFields := []string{
		"BEGIN:VTIMEZONE\r\nTZID:Europe/Vienna\r\n",
		"BEGIN:DAYLIGHT\r\nDTSTART:20250330T020000\r\nTZOFFSETFROM:+0100\r\nTZOFFSETTO:+0200\r\nTZNAME:CEST\r\nEND:DAYLIGHT",
		"BEGIN:STANDARD\r\nDTSTART:20251026T030000\r\nTZOFFSETFROM:+0200\r\nTZOFFSETTO:+0100\r\nTZNAME:CET\r\nEND:STANDARD",
		"END:VTIMEZONE",
	}
	for _, field := range requiredFields {
		if !strings.Contains(out, field) {
			t.Errorf("ICS missing timezone block %q", field)
		}
	}
	if strings.Index(out, "END:VTIMEZONE") > strings.Index(out, "BEGIN:VEVENT") {
		t.Error("VTIMEZONE should precede the events")
	}

	cal, err := goical.NewDecoder(bytes.NewReader(data)).Decode()
	if err != nil {
		t.Fatalf("decoding generated calendar: %v", err)
	}
	var zones int
	for _, child := range cal.Children {
		if child.Name == goical.CompTimezone {
			zones++
		}
	}
	if zones != 1 {
		t.Errorf("decoded %d VTIMEZONE components, want 1", zones)
	}
}

func TestSerialize_TimezoneOmitted(t *testing.T) {
	doc := sampleDocument(t)
	doc.Events = doc.Events[1:]

	data, err := Serialize(doc)
	if err != nil {
		t.Fatalf("Serialize() error: %v", err)
	}
	if strings.Contains(string(data), "VTIMEZONE") {
		t.Error("VTIMEZONE should be omitted when no event references the zone")
	}
}

func TestZoneObservances_NoTransitions(t *testing.T) {
	zone := time.FixedZone("UTC+3", 3*60*60)
	got := zoneObservances(zone, []int{2025, 2025})
	if len(got) != 1 {
		t.Fatalf("zoneObservances() returned %d observances, want 1", len(got))
	}
	if got[0].daylight || got[0].offsetFrom != 3*60*60 || got[0].offsetTo != 3*60*60 {
		t.Errorf("observance = %+v", got[0])
	}
}

func TestFormatOffset(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{3600, "+0100"},
		{7200, "+0200"},
		{-5 * 3600, "-0500"},
		{5*3600 + 30*60, "+0530"},
		{0, "+0000"},
		{3600 + 5, "+010005"},
	}
	for _, tt := range tests {
		if got := formatOffset(tt.seconds); got != tt.want {
			t.Errorf("formatOffset(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestSerialize_OptionalHeaders(t *testing.T) {
	doc := sampleDocument(t)
	doc.Method = ""

	data, err := Serialize(doc)
	if err != nil {
		t.Fatalf("Serialize() error: %v", err)
	}
	if strings.Contains(string(data), "METHOD:") {
		t.Error("METHOD should be omitted when empty")
	}
	if strings.Contains(string(data), "X-WR-CALNAME") {
		t.Error("X-WR-CALNAME should be omitted without a calendar name")
	}

	doc.Name = "Elevate 2026"
	data, err = Serialize(doc)
	if err != nil {
		t.Fatalf("Serialize() error: %v", err)
	}
	for _, field := range []string{"X-WR-CALNAME:Elevate 2026", "X-WR-TIMEZONE:Europe/Vienna"} {
		if !strings.Contains(string(data), field) {
			t.Errorf("ICS missing %s", field)
		}
	}
}

func TestSerialize_UTCZone(t *testing.T) {
	doc := &Document{
		ProductID: "-//test//EN",
		Zone:      time.UTC,
		Events: []*event.Event{{
			ID:        "id-1",
			Title:     "UTC event",
			Start:     time.Date(2025, 3, 5, 18, 0, 0, 0, time.UTC),
			End:       time.Date(2025, 3, 5, 22, 0, 0, 0, time.UTC),
			SourceURL: "https://example.com/a",
		}},
	}

	data, err := Serialize(doc)
	if err != nil {
		t.Fatalf("Serialize() error: %v", err)
	}
	if !strings.Contains(string(data), "DTSTART:20250305T180000Z") {
		t.Errorf("expected UTC DTSTART, got:\n%s", data)
	}
}

func TestSerialize_Errors(t *testing.T) {
	zone := vienna(t)

	tests := []struct {
		name string
		doc  *Document
	}{
		{"nil document", nil},
		{"missing product id", &Document{Zone: zone}},
		{"nil event", &Document{ProductID: "-//x//EN", Events: []*event.Event{nil}}},
		{"end before start", &Document{ProductID: "-//x//EN", Events: []*event.Event{{
			Title: "Backwards",
			Start: time.Date(2025, 3, 5, 23, 0, 0, 0, zone),
			End:   time.Date(2025, 3, 5, 19, 0, 0, 0, zone),
		}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Serialize(tt.doc); err == nil {
				t.Error("Serialize() expected error, got nil")
			}
		})
	}
}

func TestSerialize_DescriptionRoundTrip(t *testing.T) {
	data, err := Serialize(sampleDocument(t))
	if err != nil {
		t.Fatalf("Serialize() error: %v", err)
	}

	cal, err := goical.NewDecoder(bytes.NewReader(data)).Decode()
	if err != nil {
		t.Fatalf("decoding generated calendar: %v", err)
	}
	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("decoded %d events, want 2", len(events))
	}

	got, err := events[0].Props.Text(goical.PropDescription)
	if err != nil {
		t.Fatalf("reading DESCRIPTION: %v", err)
	}
	want := strings.Join([]string{
		"On networks",
		"Mittwoch, 05 März 2025 19:00 - 23:00",
		"First paragraph.\nSecond, with comma; and semicolon.",
		"Speakers:\nAda Lovelace\nAlan Turing",
		"More info: https://elevate.at/de/talk-x/",
		"Last calendar update: 2025-03-01 12:30:00",
	}, "\n\n")
	if got != want {
		t.Errorf("DESCRIPTION =\n%q\nwant\n%q", got, want)
	}

	start, err := events[0].DateTimeStart(time.UTC)
	if err != nil {
		t.Fatalf("DateTimeStart() error: %v", err)
	}
	if !start.Equal(time.Date(2025, 3, 5, 19, 0, 0, 0, vienna(t))) {
		t.Errorf("decoded DTSTART = %v", start)
	}
}

func TestComposeDescription(t *testing.T) {
	stamp := "Last calendar update: 2025-03-01 12:30:00"

	tests := []struct {
		name string
		evt  *event.Event
		want string
	}{
		{
			name: "only link and stamp",
			evt:  &event.Event{SourceURL: "https://elevate.at/x/"},
			want: "More info: https://elevate.at/x/\n\n" + stamp,
		},
		{
			name: "no speakers heading without speakers",
			evt: &event.Event{
				DateText:    "Mittwoch, 05 März 2025",
				Description: "Body",
				SourceURL:   "https://elevate.at/x/",
			},
			want: "Mittwoch, 05 März 2025\n\nBody\n\nMore info: https://elevate.at/x/\n\n" + stamp,
		},
		{
			name: "subtitle and speakers",
			evt: &event.Event{
				Subtitle:  "Sub",
				TimeText:  "19:00 - 23:00",
				Speakers:  []string{"A", "B"},
				SourceURL: "https://elevate.at/x/",
			},
			want: "Sub\n\n19:00 - 23:00\n\nSpeakers:\nA\nB\n\nMore info: https://elevate.at/x/\n\n" + stamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := composeDescription(tt.evt, stamp); got != tt.want {
				t.Errorf("composeDescription() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}
