package event

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pfrederiksen/festcal/internal/logger"
)

type recordedWarning struct {
	message string
	fields  logger.Fields
}

type recordingDiagnostics struct {
	warnings []recordedWarning
}

func (r *recordingDiagnostics) Warn(message string, fields logger.Fields) {
	r.warnings = append(r.warnings, recordedWarning{message, fields})
}

func newTestBuilder(t *testing.T, policy OverridePolicy) (*Builder, *recordingDiagnostics) {
	t.Helper()
	diag := &recordingDiagnostics{}
	n := NewNormalizer(German, vienna(t), OvernightNextDay)
	return NewBuilder(n, NewSanitizer(DefaultDenylist), policy, diag), diag
}

func TestBuilder_Build(t *testing.T) {
	b, diag := newTestBuilder(t, PreferListing)
	zone := vienna(t)

	loc := Locator{URL: "https://elevate.at/de/diskurs/programm/talk-x/"}
	raw := RawFields{
		Title:    "Talk X",
		Subtitle: "A subtitle",
		DateText: "Mittwoch, 05 März 2025",
		TimeText: "19:00 - 23:00",
		Location: "Forum Stadtpark",
		Paragraphs: []string{
			"  First paragraph.",
			"–>Tickets hier erhältlich",
			"Second paragraph. –>Tickets hier erhältlich",
		},
		Speakers: []string{"Ada Lovelace", "–>Tickets hier erhältlich", "Alan Turing"},
	}

	evt := b.Build(loc, raw)

	if evt.Title != "Talk X" {
		t.Errorf("Title = %q, want Talk X", evt.Title)
	}
	if evt.Subtitle != "A subtitle" {
		t.Errorf("Subtitle = %q", evt.Subtitle)
	}
	if evt.Location != "Forum Stadtpark" {
		t.Errorf("Location = %q", evt.Location)
	}
	if evt.SourceURL != loc.URL {
		t.Errorf("SourceURL = %q, want %q", evt.SourceURL, loc.URL)
	}
	if want := "First paragraph.\nSecond paragraph."; evt.Description != want {
		t.Errorf("Description = %q, want %q", evt.Description, want)
	}
	if want := []string{"Ada Lovelace", "Alan Turing"}; !reflect.DeepEqual(evt.Speakers, want) {
		t.Errorf("Speakers = %q, want %q", evt.Speakers, want)
	}
	if !evt.Start.Equal(time.Date(2025, 3, 5, 19, 0, 0, 0, zone)) {
		t.Errorf("Start = %v", evt.Start)
	}
	if !evt.End.Equal(time.Date(2025, 3, 5, 23, 0, 0, 0, zone)) {
		t.Errorf("End = %v", evt.End)
	}
	if evt.ID != GenerateID(loc.URL, raw.DateText, raw.TimeText) {
		t.Errorf("ID = %q, not derived from URL and schedule", evt.ID)
	}
	if len(diag.warnings) != 0 {
		t.Errorf("unexpected diagnostics: %+v", diag.warnings)
	}
}

func TestBuilder_OverridePrecedence(t *testing.T) {
	zone := vienna(t)
	loc := Locator{
		URL:          "https://elevate.at/a/",
		DateOverride: "Donnerstag, 06 März 2025",
		TimeOverride: "18:00 - 19:30",
	}
	raw := RawFields{
		Title:    "Talk",
		DateText: "Mittwoch, 05 März 2025",
		TimeText: "19:00 - 23:00",
	}

	t.Run("listing wins", func(t *testing.T) {
		b, _ := newTestBuilder(t, PreferListing)
		evt := b.Build(loc, raw)

		if evt.DateText != loc.DateOverride || evt.TimeText != loc.TimeOverride {
			t.Errorf("raw text = %q / %q, want overrides", evt.DateText, evt.TimeText)
		}
		if !evt.Start.Equal(time.Date(2025, 3, 6, 18, 0, 0, 0, zone)) {
			t.Errorf("Start = %v, want listing date", evt.Start)
		}
		if !evt.End.Equal(time.Date(2025, 3, 6, 19, 30, 0, 0, zone)) {
			t.Errorf("End = %v, want listing time", evt.End)
		}
	})

	t.Run("page only ignores overrides", func(t *testing.T) {
		b, _ := newTestBuilder(t, PageOnly)
		evt := b.Build(loc, raw)

		if evt.DateText != raw.DateText || evt.TimeText != raw.TimeText {
			t.Errorf("raw text = %q / %q, want page values", evt.DateText, evt.TimeText)
		}
		if !evt.Start.Equal(time.Date(2025, 3, 5, 19, 0, 0, 0, zone)) {
			t.Errorf("Start = %v, want page date", evt.Start)
		}
	})

	t.Run("partial override", func(t *testing.T) {
		b, _ := newTestBuilder(t, PreferListing)
		evt := b.Build(Locator{URL: loc.URL, TimeOverride: "10:00 - 11:00"}, raw)

		if evt.DateText != raw.DateText {
			t.Errorf("DateText = %q, want page date", evt.DateText)
		}
		if !evt.Start.Equal(time.Date(2025, 3, 5, 10, 0, 0, 0, zone)) {
			t.Errorf("Start = %v", evt.Start)
		}
	})
}

func TestBuilder_MissingSchedule(t *testing.T) {
	tests := []struct {
		name string
		raw  RawFields
	}{
		{"missing date", RawFields{Title: "Talk", TimeText: "19:00 - 23:00"}},
		{"missing time", RawFields{Title: "Talk", DateText: "Mittwoch, 05 März 2025"}},
		{"missing both", RawFields{Title: "Talk"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, diag := newTestBuilder(t, PreferListing)
			evt := b.Build(Locator{URL: "https://elevate.at/a/"}, tt.raw)

			if evt == nil {
				t.Fatal("Build() returned nil")
			}
			if evt.Scheduled() || !evt.Start.IsZero() || !evt.End.IsZero() {
				t.Errorf("expected null schedule, got %v - %v", evt.Start, evt.End)
			}
			if len(diag.warnings) != 1 || diag.warnings[0].message != "missing schedule" {
				t.Fatalf("diagnostics = %+v, want one missing schedule warning", diag.warnings)
			}
			if diag.warnings[0].fields["url"] != "https://elevate.at/a/" {
				t.Errorf("warning fields = %v", diag.warnings[0].fields)
			}
		})
	}
}

func TestBuilder_UnparseableSchedule(t *testing.T) {
	b, diag := newTestBuilder(t, PreferListing)

	evt := b.Build(Locator{URL: "https://elevate.at/a/"}, RawFields{
		Title:    "Talk",
		DateText: "Wednesday, 05 March 2025",
		TimeText: "19:00 - 23:00",
	})

	if evt.Scheduled() {
		t.Errorf("expected null schedule, got %v - %v", evt.Start, evt.End)
	}
	if evt.DateText != "Wednesday, 05 March 2025" {
		t.Errorf("raw date text should be kept, got %q", evt.DateText)
	}
	if len(diag.warnings) != 1 || diag.warnings[0].message != "unparseable schedule" {
		t.Fatalf("diagnostics = %+v, want one unparseable schedule warning", diag.warnings)
	}
	msg, _ := diag.warnings[0].fields["error"].(string)
	if !strings.Contains(msg, "unmapped") {
		t.Errorf("warning error = %q, should explain the unmapped words", msg)
	}
}

func TestBuilder_DefaultTitle(t *testing.T) {
	b, _ := newTestBuilder(t, PreferListing)

	evt := b.Build(Locator{URL: "https://elevate.at/a/"}, RawFields{})
	if evt.Title != UnknownTitle {
		t.Errorf("Title = %q, want %q", evt.Title, UnknownTitle)
	}
	if evt.Description != "" {
		t.Errorf("Description = %q, want empty", evt.Description)
	}
	if len(evt.Speakers) != 0 {
		t.Errorf("Speakers = %q, want none", evt.Speakers)
	}
}

func TestNewBuilder_Defaults(t *testing.T) {
	n := NewNormalizer(German, time.UTC, "")
	b := NewBuilder(n, NewSanitizer(nil), "", nil)

	if b.policy != PreferListing {
		t.Errorf("policy = %q, want %q", b.policy, PreferListing)
	}
	if b.diag == nil {
		t.Error("diag should default to the package logger")
	}
}

func TestScheduleParseError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := error(&ScheduleParseError{DateText: "d", TimeText: "t", Reason: "invalid date", Err: inner})

	if !errors.Is(err, inner) {
		t.Error("ScheduleParseError should unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "invalid date") || !strings.Contains(err.Error(), "boom") {
		t.Errorf("Error() = %q", err.Error())
	}
}
