// Package calendar renders festival events as an iCalendar (RFC 5545) document
// and validates calendar files.
//
// Serialization uses github.com/arran4/golang-ical, which takes care of text
// escaping and line folding. Validation parses with
// github.com/emersion/go-ical.
package calendar
