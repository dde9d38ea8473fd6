// Package scraper provides HTTP fetching and HTML extraction for festival
// program pages.
//
// The scraper fetches the program listing, discovers one Locator per event
// (optionally carrying the listing row's date heading and time cell), then
// fetches each event page and extracts its title, subtitle, schedule text,
// location, description paragraphs and speaker names with CSS selectors.
package scraper
