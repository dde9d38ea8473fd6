package event

import (
	"fmt"
	"regexp"
	"strings"
)

// Locale maps the weekday and month names used by a source site to the English
// names understood by time.Parse.
type Locale struct {
	Name         string
	Weekdays     map[string]string
	Months       map[string]string
	TimeSuffixes []string // clock unit markers stripped from time text, e.g. "Uhr"
}

// German is the locale of the Elevate program pages.
var German = Locale{
	Name: "de",
	Weekdays: map[string]string{
		"Montag":     "Monday",
		"Dienstag":   "Tuesday",
		"Mittwoch":   "Wednesday",
		"Donnerstag": "Thursday",
		"Freitag":    "Friday",
		"Samstag":    "Saturday",
		"Sonntag":    "Sunday",
	},
	Months: map[string]string{
		"Januar":    "January",
		"Jänner":    "January",
		"Februar":   "February",
		"März":      "March",
		"Maerz":     "March",
		"April":     "April",
		"Mai":       "May",
		"Juni":      "June",
		"Juli":      "July",
		"August":    "August",
		"September": "September",
		"Oktober":   "October",
		"November":  "November",
		"Dezember":  "December",
	},
	TimeSuffixes: []string{"Uhr"},
}

var locales = map[string]Locale{
	German.Name: German,
}

// LookupLocale returns the built-in locale registered under name.
func LookupLocale(name string) (Locale, bool) {
	l, ok := locales[strings.ToLower(strings.TrimSpace(name))]
	return l, ok
}

var wordPattern = regexp.MustCompile(`\p{L}+`)

// translate rewrites every word of dateText through the weekday and month
// tables and collapses whitespace. Words missing from both tables are an error.
func (l Locale) translate(dateText string) (string, error) {
	var unmapped []string
	out := wordPattern.ReplaceAllStringFunc(dateText, func(word string) string {
		if en, ok := lookupFold(l.Weekdays, word); ok {
			return en
		}
		if en, ok := lookupFold(l.Months, word); ok {
			return en
		}
		unmapped = append(unmapped, word)
		return word
	})
	if len(unmapped) > 0 {
		return "", fmt.Errorf("unmapped %s words %q", l.Name, unmapped)
	}
	return strings.Join(strings.Fields(out), " "), nil
}

func lookupFold(table map[string]string, word string) (string, bool) {
	if v, ok := table[word]; ok {
		return v, true
	}
	for k, v := range table {
		if strings.EqualFold(k, word) {
			return v, true
		}
	}
	return "", false
}
