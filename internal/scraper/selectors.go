package scraper

// ListingSelectors locate events on the program listing page.
//
// When Row is empty every element matching Link is an event and no overrides
// are extracted. Otherwise each Row containing a Link is an event; its time
// override is the text of Time inside the row, and its date override is the
// text of the DateHeading whose DateAttr value equals the DateAttr value of the
// row's closest Group ancestor.
type ListingSelectors struct {
	Row         string `yaml:"row,omitempty"`
	Link        string `yaml:"link"`
	Time        string `yaml:"time,omitempty"`
	Group       string `yaml:"group,omitempty"`
	DateAttr    string `yaml:"date_attr,omitempty"`
	DateHeading string `yaml:"date_heading,omitempty"`
}

// PageSelectors locate fields on an event page. Single-valued fields use the
// first match; Paragraphs and Speakers use every match in document order.
type PageSelectors struct {
	Title      string `yaml:"title"`
	Subtitle   string `yaml:"subtitle"`
	Date       string `yaml:"date"`
	Time       string `yaml:"time"`
	Location   string `yaml:"location"`
	Paragraphs string `yaml:"paragraphs"`
	Speakers   string `yaml:"speakers"`
}

// ElevateLinks is the 2025 Elevate program layout: a flat list of event links.
var ElevateLinks = ListingSelectors{
	Link: ".tagedheadline a",
}

// ElevateTable is the 2026 Elevate program layout: one table per day, each
// preceded by a heading that shares the table's data-date attribute.
var ElevateTable = ListingSelectors{
	Row:         ".table-responsive[data-date] tr",
	Link:        ".tagedheadline a",
	Time:        "td.time",
	Group:       "div.table-responsive",
	DateAttr:    "data-date",
	DateHeading: "h2",
}

// ElevatePage is the Elevate event detail page layout.
var ElevatePage = PageSelectors{
	Title:      "h1",
	Subtitle:   "h2.subheadline",
	Date:       "div.date h2",
	Time:       "span.time",
	Location:   "span.location",
	Paragraphs: ".detail p",
	Speakers:   ".detail strong",
}
