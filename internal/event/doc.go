// Package event provides the festival event model and the steps that turn
// scraped page text into calendar-ready records.
//
// A Locator points at one event page and may carry date and time text taken
// from the program listing. RawFields holds what was extracted from the event
// page. The Builder combines both into an Event, using a Normalizer to turn
// localized date and time text into zone-aware instants and a Sanitizer to
// strip ticketing boilerplate from free text.
package event
