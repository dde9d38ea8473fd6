package calendar

import (
	"fmt"
	"sort"
	"time"

	ics "github.com/arran4/golang-ical"
)

// observance is one STANDARD or DAYLIGHT block of a VTIMEZONE.
type observance struct {
	daylight   bool
	start      time.Time // local wall time in the offset before the change
	offsetFrom int
	offsetTo   int
	name       string
}

// addTimezone appends a VTIMEZONE for zone covering every year in years. Each
// offset change inside those years becomes its own observance; a year without
// changes gets a single STANDARD block anchored at January 1.
func addTimezone(cal *ics.Calendar, zone *time.Location, years []int) *ics.VTimezone {
	tz := cal.AddTimezone(zone.String())
	for _, obs := range zoneObservances(zone, years) {
		var base *ics.ComponentBase
		if obs.daylight {
			d := &ics.Daylight{}
			tz.Components = append(tz.Components, d)
			base = &d.ComponentBase
		} else {
			base = &tz.AddStandard().ComponentBase
		}
		base.SetProperty(ics.ComponentPropertyDtStart, obs.start.Format(localTimeFormat))
		base.SetProperty(ics.ComponentProperty(ics.PropertyTzoffsetfrom), formatOffset(obs.offsetFrom))
		base.SetProperty(ics.ComponentProperty(ics.PropertyTzoffsetto), formatOffset(obs.offsetTo))
		if obs.name != "" {
			base.SetProperty(ics.ComponentProperty(ics.PropertyTzname), obs.name)
		}
	}
	return tz
}

func zoneObservances(zone *time.Location, years []int) []observance {
	sorted := append([]int(nil), years...)
	sort.Ints(sorted)

	var out []observance
	seen := make(map[int]bool, len(sorted))
	for _, year := range sorted {
		if seen[year] {
			continue
		}
		seen[year] = true

		yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, zone)
		yearEnd := time.Date(year+1, time.January, 1, 0, 0, 0, 0, zone)

		var changes []observance
		cursor := yearStart
		for {
			_, end := cursor.ZoneBounds()
			if end.IsZero() || !end.Before(yearEnd) {
				break
			}
			name, to := end.Zone()
			_, from := cursor.Zone()
			changes = append(changes, observance{
				daylight:   end.IsDST(),
				start:      end.UTC().Add(time.Duration(from) * time.Second),
				offsetFrom: from,
				offsetTo:   to,
				name:       name,
			})
			cursor = end
		}

		if len(changes) == 0 {
			name, offset := yearStart.Zone()
			changes = append(changes, observance{
				daylight:   yearStart.IsDST(),
				start:      time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
				offsetFrom: offset,
				offsetTo:   offset,
				name:       name,
			})
		}
		out = append(out, changes...)
	}
	return out
}

// formatOffset renders seconds east of UTC as ±HHMM, or ±HHMMSS when the
// offset carries seconds.
func formatOffset(seconds int) string {
	sign := '+'
	if seconds < 0 {
		sign = '-'
		seconds = -seconds
	}
	h, m, s := seconds/3600, seconds/60%60, seconds%60
	if s != 0 {
		return fmt.Sprintf("%c%02d%02d%02d", sign, h, m, s)
	}
	return fmt.Sprintf("%c%02d%02d", sign, h, m)
}
