package calendar

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	goical "github.com/emersion/go-ical"
)

// ValidationError reports a structurally invalid calendar document.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid calendar: %s: %v", e.Reason, e.Err)
	}
	return "invalid calendar: " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Report summarizes a calendar that parsed successfully.
type Report struct {
	Events      int      `json:"events"`
	Unscheduled int      `json:"unscheduled"`
	Warnings    []string `json:"warnings,omitempty"`
}

// Validate parses a calendar document. Structural problems (empty input, syntax
// errors, a top-level component other than VCALENDAR, missing PRODID or
// VERSION) return a *ValidationError. Problems confined to a single event,
// such as an unreadable DTSTART, are recorded as warnings on the Report.
func Validate(r io.Reader) (*Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading calendar: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ValidationError{Reason: "empty document"}
	}

	cal, err := goical.NewDecoder(bytes.NewReader(data)).Decode()
	if err != nil {
		return nil, &ValidationError{Reason: "parse failed", Err: err}
	}

	if cal.Props.Get(goical.PropProductID) == nil {
		return nil, &ValidationError{Reason: "missing PRODID"}
	}
	version := cal.Props.Get(goical.PropVersion)
	if version == nil {
		return nil, &ValidationError{Reason: "missing VERSION"}
	}
	if version.Value != "2.0" {
		return nil, &ValidationError{Reason: fmt.Sprintf("unsupported VERSION %q", version.Value)}
	}

	report := &Report{}
	for i, ev := range cal.Events() {
		report.Events++
		label := fmt.Sprintf("event %d", i+1)
		if summary, err := ev.Props.Text(goical.PropSummary); err == nil && summary != "" {
			label = fmt.Sprintf("event %d (%s)", i+1, summary)
		}

		if ev.Props.Get(goical.PropDateTimeStart) == nil {
			report.Unscheduled++
			continue
		}

		start, err := ev.DateTimeStart(time.UTC)
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: DTSTART: %v", label, err))
			continue
		}
		if ev.Props.Get(goical.PropDateTimeEnd) == nil {
			continue
		}
		end, err := ev.DateTimeEnd(time.UTC)
		if err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: DTEND: %v", label, err))
			continue
		}
		if end.Before(start) {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: DTEND before DTSTART", label))
		}
	}

	return report, nil
}

// ValidateFile validates the calendar stored at path. A file that cannot be
// opened is reported as a plain error, not a *ValidationError.
func ValidateFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening calendar: %w", err)
	}
	defer f.Close()

	return Validate(f)
}
