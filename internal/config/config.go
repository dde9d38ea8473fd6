// Package config holds the pipeline configuration: built-in presets for the
// known festival programs and an optional YAML file that overrides preset
// fields.
//
// Example config file:
//
//	output: ./public/elevate.ics
//	calendar_name: Elevate Diskurs
//	concurrency: 4
//	selectors:
//	  page:
//	    location: span.venue
package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pfrederiksen/festcal/internal/calendar"
	"github.com/pfrederiksen/festcal/internal/event"
	"github.com/pfrederiksen/festcal/internal/scraper"
)

// Preset names.
const (
	Elevate25 = "elevate25"
	Elevate26 = "elevate26"

	DefaultPreset = Elevate26
)

// MaxConcurrency caps parallel page fetches against a single festival site.
const MaxConcurrency = 16

// Selectors groups the CSS selectors for the listing and the event pages.
type Selectors struct {
	Listing scraper.ListingSelectors `yaml:"listing"`
	Page    scraper.PageSelectors    `yaml:"page"`
}

// Pipeline is the full configuration of one scraper run.
type Pipeline struct {
	Name         string                `yaml:"name"`
	TargetURL    string                `yaml:"target_url"`
	Output       string                `yaml:"output"`
	Timezone     string                `yaml:"timezone"`
	ProductID    string                `yaml:"product_id"`
	Method       string                `yaml:"method"`
	CalendarName string                `yaml:"calendar_name"`
	Override     event.OverridePolicy  `yaml:"override"`
	Overnight    event.OvernightPolicy `yaml:"overnight"`
	Concurrency  int                   `yaml:"concurrency"`
	Locale       string                `yaml:"locale"`
	Denylist     []string              `yaml:"denylist"`
	Selectors    Selectors             `yaml:"selectors"`
}

var presets = map[string]func() *Pipeline{
	Elevate25: func() *Pipeline {
		return &Pipeline{
			Name:      Elevate25,
			TargetURL: "https://elevate.at/de/diskurs/programm/",
			Output:    "./tmp/elevate25.ical",
			Timezone:  "Europe/Vienna",
			ProductID: "-//Elevate Festival//elevate.at//",
			Override:  event.PageOnly,
			Overnight: event.OvernightNextDay,
			Locale:    event.German.Name,
			Selectors: Selectors{
				Listing: scraper.ElevateLinks,
				Page:    scraper.ElevatePage,
			},
		}
	},
	Elevate26: func() *Pipeline {
		return &Pipeline{
			Name:      Elevate26,
			TargetURL: "https://elevate.at/de/diskurs/programm/",
			Output:    "./tmp/elevate26.ics",
			Timezone:  "Europe/Vienna",
			ProductID: "-//Elevate 2026 Diskursprogramm//elevate.at//DE",
			Method:    calendar.MethodPublish,
			Override:  event.PreferListing,
			Overnight: event.OvernightNextDay,
			Locale:    event.German.Name,
			Selectors: Selectors{
				Listing: scraper.ElevateTable,
				Page:    scraper.ElevatePage,
			},
		}
	},
}

// PresetNames returns the built-in preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Preset returns a fresh copy of the named built-in configuration.
func Preset(name string) (*Pipeline, error) {
	build, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(PresetNames(), ", "))
	}
	cfg := build()
	cfg.Denylist = append([]string(nil), event.DefaultDenylist...)
	return cfg, nil
}

// Load starts from the named preset and, when path is non-empty, overlays the
// YAML file at path. Fields absent from the file keep their preset values.
// The result is normalized and validated.
func Load(path, preset string) (*Pipeline, error) {
	if preset == "" {
		preset = DefaultPreset
	}
	cfg, err := Preset(preset)
	if err != nil {
		return nil, err
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening config file: %w", err)
		}
		defer f.Close() // nolint:errcheck

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Normalize fills zero values with defaults.
func (c *Pipeline) Normalize() {
	c.TargetURL = strings.TrimSpace(c.TargetURL)
	c.Output = strings.TrimSpace(c.Output)
	c.Method = strings.ToUpper(strings.TrimSpace(c.Method))

	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.Locale == "" {
		c.Locale = event.German.Name
	}
	if c.Override == "" {
		c.Override = event.PreferListing
	}
	if c.Overnight == "" {
		c.Overnight = event.OvernightNextDay
	}
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	if c.Concurrency > MaxConcurrency {
		c.Concurrency = MaxConcurrency
	}
	if c.Denylist == nil {
		c.Denylist = append([]string(nil), event.DefaultDenylist...)
	}
}

// Validate reports the first invalid field.
func (c *Pipeline) Validate() error {
	u, err := url.Parse(c.TargetURL)
	if err != nil {
		return fmt.Errorf("invalid target_url %q: %w", c.TargetURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid target_url %q: must be an absolute http(s) URL", c.TargetURL)
	}

	if c.Output == "" {
		return errors.New("output path is empty")
	}
	if strings.TrimSpace(c.ProductID) == "" {
		return errors.New("product_id is empty")
	}
	if c.Method != "" && c.Method != calendar.MethodPublish {
		return fmt.Errorf("unsupported method %q (only %s)", c.Method, calendar.MethodPublish)
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	if _, ok := event.LookupLocale(c.Locale); !ok {
		return fmt.Errorf("unknown locale %q", c.Locale)
	}

	switch c.Override {
	case event.PreferListing, event.PageOnly:
	default:
		return fmt.Errorf("invalid override %q (must be %q or %q)", c.Override, event.PreferListing, event.PageOnly)
	}
	switch c.Overnight {
	case event.OvernightNextDay, event.OvernightReject:
	default:
		return fmt.Errorf("invalid overnight %q (must be %q or %q)", c.Overnight, event.OvernightNextDay, event.OvernightReject)
	}

	if c.Selectors.Listing.Link == "" {
		return errors.New("selectors.listing.link is empty")
	}
	if c.Selectors.Page.Title == "" {
		return errors.New("selectors.page.title is empty")
	}

	return nil
}

// Location loads the configured IANA time zone.
func (c *Pipeline) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
