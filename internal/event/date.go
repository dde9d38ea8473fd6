package event

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Layouts tried, in order, against translated date text
var dateLayouts = []string{
	"Monday, 2 January 2006",
	"Monday, 2. January 2006",
	"Monday 2 January 2006",
	"2 January 2006",
	"2. January 2006",
}

const clockLayout = "15:04"

// clockPattern requires two-digit hours and minutes.
var clockPattern = regexp.MustCompile(`^\d{2}:\d{2}$`)

var dashReplacer = strings.NewReplacer("–", "-", "—", "-")

// OvernightPolicy decides what happens when a time range ends at an earlier
// clock time than it starts, e.g. "22:00 - 02:00".
type OvernightPolicy string

const (
	// OvernightNextDay places the end on the following calendar day.
	OvernightNextDay OvernightPolicy = "next-day"
	// OvernightReject fails normalization with a ScheduleParseError.
	OvernightReject OvernightPolicy = "reject"
)

// ScheduleParseError reports date or time text that could not be normalized.
type ScheduleParseError struct {
	DateText string
	TimeText string
	Reason   string
	Err      error
}

func (e *ScheduleParseError) Error() string {
	msg := fmt.Sprintf("parsing schedule %q / %q: %s", e.DateText, e.TimeText, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ScheduleParseError) Unwrap() error {
	return e.Err
}

// Normalizer converts localized date text and a clock time range into a pair
// of instants in a fixed zone.
type Normalizer struct {
	locale    Locale
	zone      *time.Location
	overnight OvernightPolicy
}

// NewNormalizer creates a Normalizer. A nil zone means UTC and an empty policy
// means OvernightNextDay.
func NewNormalizer(locale Locale, zone *time.Location, overnight OvernightPolicy) *Normalizer {
	if zone == nil {
		zone = time.UTC
	}
	if overnight == "" {
		overnight = OvernightNextDay
	}
	return &Normalizer{
		locale:    locale,
		zone:      zone,
		overnight: overnight,
	}
}

// Zone returns the zone wall-clock times are interpreted in.
func (n *Normalizer) Zone() *time.Location {
	return n.zone
}

// Normalize parses dateText such as "Mittwoch, 05 März 2025" and timeText such
// as "19:00 - 23:00" into start and end instants. The clock times are taken as
// wall-clock times in the normalizer's zone. Any failure is a
// *ScheduleParseError.
func (n *Normalizer) Normalize(dateText, timeText string) (time.Time, time.Time, error) {
	fail := func(reason string, err error) (time.Time, time.Time, error) {
		return time.Time{}, time.Time{}, &ScheduleParseError{
			DateText: dateText,
			TimeText: timeText,
			Reason:   reason,
			Err:      err,
		}
	}

	day, err := n.parseDate(dateText)
	if err != nil {
		return fail("invalid date", err)
	}

	from, to, err := n.parseClockRange(timeText)
	if err != nil {
		return fail("invalid time range", err)
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), from.Hour(), from.Minute(), 0, 0, n.zone)
	end := time.Date(day.Year(), day.Month(), day.Day(), to.Hour(), to.Minute(), 0, 0, n.zone)

	if end.Before(start) {
		if n.overnight == OvernightReject {
			return fail("end before start", nil)
		}
		end = time.Date(day.Year(), day.Month(), day.Day()+1, to.Hour(), to.Minute(), 0, 0, n.zone)
	}

	return start, end, nil
}

func (n *Normalizer) parseDate(dateText string) (time.Time, error) {
	if strings.TrimSpace(dateText) == "" {
		return time.Time{}, errors.New("empty date")
	}

	translated, err := n.locale.translate(dateText)
	if err != nil {
		return time.Time{}, err
	}

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, translated, n.zone); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("no layout matches %q", translated)
}

// parseClockRange splits "HH:MM - HH:MM" (hyphen or en-dash, optional locale
// suffix such as "Uhr") into its two clock times.
func (n *Normalizer) parseClockRange(timeText string) (time.Time, time.Time, error) {
	s := timeText
	for _, suffix := range n.locale.TimeSuffixes {
		s = strings.ReplaceAll(s, suffix, "")
	}
	s = dashReplacer.Replace(s)

	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("want 2 clock times, got %d", len(parts))
	}

	from, err := parseClock(parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start time: %w", err)
	}
	to, err := parseClock(parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end time: %w", err)
	}
	return from, to, nil
}

func parseClock(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !clockPattern.MatchString(s) {
		return time.Time{}, fmt.Errorf("%q is not HH:MM", s)
	}
	return time.Parse(clockLayout, s)
}
