package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pfrederiksen/festcal/internal/event"
)

const (
	UserAgent = "festcal/1.0 (github.com/pfrederiksen/festcal)"
	Timeout   = 30 * time.Second
)

// FetchError reports a page that could not be retrieved, either because the
// request failed or because the server answered with a non-200 status.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching %s: unexpected status code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Scraper handles fetching and parsing festival program pages
type Scraper struct {
	client  *http.Client
	url     string
	listing ListingSelectors
	page    PageSelectors
}

// New creates a Scraper for the program listing at targetURL.
func New(targetURL string, listing ListingSelectors, page PageSelectors) *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: Timeout,
		},
		url:     targetURL,
		listing: listing,
		page:    page,
	}
}

// FetchLocators fetches the program listing and returns one locator per event
// in page order.
func (s *Scraper) FetchLocators(ctx context.Context) ([]event.Locator, error) {
	base, err := url.Parse(s.url)
	if err != nil {
		return nil, fmt.Errorf("parsing program URL: %w", err)
	}

	body, err := s.get(ctx, s.url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return parseLocators(body, base, s.listing)
}

// FetchFields fetches one event page and extracts its fields.
func (s *Scraper) FetchFields(ctx context.Context, pageURL string) (event.RawFields, error) {
	body, err := s.get(ctx, pageURL)
	if err != nil {
		return event.RawFields{}, err
	}
	defer body.Close()

	return parseFields(body, s.page)
}

func (s *Scraper) get(ctx context.Context, pageURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close() // nolint:errcheck
		return nil, &FetchError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	return resp.Body, nil
}

// parseLocators extracts event locators from the listing HTML
func parseLocators(r io.Reader, base *url.URL, sel ListingSelectors) ([]event.Locator, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	locators := make([]event.Locator, 0)

	if sel.Row == "" {
		doc.Find(sel.Link).Each(func(_ int, a *goquery.Selection) {
			if href, ok := resolveHref(a, base); ok {
				locators = append(locators, event.Locator{URL: href})
			}
		})
		return locators, nil
	}

	doc.Find(sel.Row).Each(func(_ int, row *goquery.Selection) {
		href, ok := resolveHref(row.Find(sel.Link).First(), base)
		if !ok {
			// Header and spacer rows carry no link
			return
		}

		loc := event.Locator{URL: href}
		if sel.Time != "" {
			loc.TimeOverride = strippedText(row.Find(sel.Time).First())
		}
		if sel.Group != "" && sel.DateAttr != "" && sel.DateHeading != "" {
			loc.DateOverride = dateHeadingFor(doc, row.Closest(sel.Group), sel)
		}
		locators = append(locators, loc)
	})

	return locators, nil
}

// dateHeadingFor returns the text of the heading that shares the group's date attribute
func dateHeadingFor(doc *goquery.Document, group *goquery.Selection, sel ListingSelectors) string {
	key, ok := group.Attr(sel.DateAttr)
	if !ok {
		return ""
	}

	heading := doc.Find(sel.DateHeading).FilterFunction(func(_ int, h *goquery.Selection) bool {
		v, ok := h.Attr(sel.DateAttr)
		return ok && v == key
	}).First()

	return strippedText(heading)
}

func resolveHref(a *goquery.Selection, base *url.URL) (string, bool) {
	href, ok := a.Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return "", false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	return base.ResolveReference(ref).String(), true
}

// parseFields extracts event fields from an event page
func parseFields(r io.Reader, sel PageSelectors) (event.RawFields, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return event.RawFields{}, fmt.Errorf("parsing HTML: %w", err)
	}

	first := func(selector string) string {
		if selector == "" {
			return ""
		}
		return strippedText(doc.Find(selector).First())
	}
	all := func(selector string) []string {
		out := make([]string, 0)
		if selector == "" {
			return out
		}
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			out = append(out, strippedText(s))
		})
		return out
	}

	fields := event.RawFields{
		Title:      first(sel.Title),
		Subtitle:   first(sel.Subtitle),
		DateText:   first(sel.Date),
		TimeText:   first(sel.Time),
		Location:   first(sel.Location),
		Paragraphs: all(sel.Paragraphs),
		Speakers:   all(sel.Speakers),
	}
	if fields.Title == "" {
		fields.Title = event.UnknownTitle
	}

	return fields, nil
}

// strippedText trims every text node below sel, drops empty ones and joins the
// rest with single spaces.
func strippedText(sel *goquery.Selection) string {
	parts := make([]string, 0)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}

	return strings.Join(parts, " ")
}
