// Package pipeline runs one scrape of a festival program end to end.
//
// A run discovers event locators on the program listing, fetches and extracts
// every event page, builds one record per page that could be fetched,
// serializes the records into a single calendar document and writes it to the
// configured output path in one step. Records keep listing order whether pages
// are fetched sequentially or in parallel.
//
// A failed listing fetch aborts the run before anything is written; a failed
// event page is logged and skipped.
package pipeline
