package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pfrederiksen/festcal/internal/calendar"
	"github.com/pfrederiksen/festcal/internal/config"
	"github.com/pfrederiksen/festcal/internal/event"
	"github.com/pfrederiksen/festcal/internal/logger"
	"github.com/pfrederiksen/festcal/internal/scraper"
	"github.com/pfrederiksen/festcal/internal/storage"
)

// Metric names recorded by a run.
const (
	MetricDiscovered  = "events.discovered"
	MetricLoaded      = "events.loaded"
	MetricFetchFailed = "events.fetch_failed"
	MetricUnscheduled = "events.unscheduled"
	MetricRunTime     = "pipeline.run"
)

// Source discovers event locators and extracts event page fields.
// *scraper.Scraper is the production implementation.
type Source interface {
	FetchLocators(ctx context.Context) ([]event.Locator, error)
	FetchFields(ctx context.Context, pageURL string) (event.RawFields, error)
}

// NewSource creates the HTTP scraper described by cfg.
func NewSource(cfg *config.Pipeline) *scraper.Scraper {
	return scraper.New(cfg.TargetURL, cfg.Selectors.Listing, cfg.Selectors.Page)
}

// Result summarizes a completed run.
type Result struct {
	Preset      string         `json:"preset"`
	Output      string         `json:"output"`
	GeneratedAt time.Time      `json:"generated_at"`
	Discovered  int            `json:"discovered"`
	Loaded      int            `json:"loaded"`
	FetchFailed int            `json:"fetch_failed"`
	Unscheduled int            `json:"unscheduled"`
	Events      []*event.Event `json:"events"`
}

// Runner executes the pipeline for one configuration.
type Runner struct {
	cfg     *config.Pipeline
	source  Source
	log     *logger.Logger
	metrics *logger.Metrics
	now     func() time.Time
}

// Option customizes a Runner.
type Option func(*Runner)

// WithLogger sets the logger that receives progress and per-event diagnostics.
func WithLogger(l *logger.Logger) Option {
	return func(r *Runner) {
		r.log = l
	}
}

// WithMetrics sets the metrics tracker for the run.
func WithMetrics(m *logger.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithClock overrides the clock used for the calendar timestamp.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// New creates a Runner. cfg must already be normalized and validated.
func New(cfg *config.Pipeline, source Source, opts ...Option) *Runner {
	r := &Runner{
		cfg:     cfg,
		source:  source,
		log:     logger.Default(),
		metrics: logger.NewMetrics(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Metrics returns the run's metrics tracker.
func (r *Runner) Metrics() *logger.Metrics {
	return r.metrics
}

// Run performs discovery, extraction, serialization and the single write of
// the calendar file.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	started := time.Now()
	defer func() {
		r.metrics.RecordTiming(MetricRunTime, time.Since(started))
	}()

	zone, err := r.cfg.Location()
	if err != nil {
		return nil, err
	}
	locale, ok := event.LookupLocale(r.cfg.Locale)
	if !ok {
		return nil, fmt.Errorf("unknown locale %q", r.cfg.Locale)
	}
	store, err := storage.New(r.cfg.Output)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	generatedAt := r.now().In(zone)

	r.log.Info("fetching program", logger.Fields{
		"preset": r.cfg.Name,
		"url":    r.cfg.TargetURL,
	})

	locators, err := r.source.FetchLocators(ctx)
	if err != nil {
		return nil, fmt.Errorf("discovering events: %w", err)
	}
	r.metrics.SetGauge(MetricDiscovered, float64(len(locators)))
	r.log.Info("events discovered", logger.Fields{"count": len(locators)})

	builder := event.NewBuilder(
		event.NewNormalizer(locale, zone, r.cfg.Overnight),
		event.NewSanitizer(r.cfg.Denylist),
		r.cfg.Override,
		r.log,
	)

	records, err := r.collect(ctx, locators, builder)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Preset:      r.cfg.Name,
		Output:      store.Path(),
		GeneratedAt: generatedAt,
		Discovered:  len(locators),
		Events:      make([]*event.Event, 0, len(records)),
	}
	for _, evt := range records {
		if evt == nil {
			result.FetchFailed++
			continue
		}
		if !evt.Scheduled() {
			result.Unscheduled++
			r.metrics.IncrCounter(MetricUnscheduled)
		}
		result.Events = append(result.Events, evt)
	}
	result.Loaded = len(result.Events)

	data, err := calendar.Serialize(&calendar.Document{
		ProductID:   r.cfg.ProductID,
		Method:      r.cfg.Method,
		Name:        r.cfg.CalendarName,
		Zone:        zone,
		GeneratedAt: generatedAt,
		Events:      result.Events,
	})
	if err != nil {
		return nil, fmt.Errorf("serializing calendar: %w", err)
	}

	if err := store.Write(data); err != nil {
		return nil, fmt.Errorf("writing calendar: %w", err)
	}

	r.log.Info("calendar written", logger.Fields{
		"path":        store.Path(),
		"events":      result.Loaded,
		"skipped":     result.FetchFailed,
		"unscheduled": result.Unscheduled,
		"bytes":       len(data),
	})

	return result, nil
}

// collect fetches and builds every locator. The returned slice is indexed like
// locators; entries whose page could not be fetched are nil.
func (r *Runner) collect(ctx context.Context, locators []event.Locator, builder *event.Builder) ([]*event.Event, error) {
	records := make([]*event.Event, len(locators))

	if r.cfg.Concurrency <= 1 {
		for i, loc := range locators {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			records[i] = r.fetchOne(ctx, loc, builder)
		}
		return records, nil
	}

	var g errgroup.Group
	g.SetLimit(r.cfg.Concurrency)
	for i, loc := range locators {
		i, loc := i, loc
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			records[i] = r.fetchOne(ctx, loc, builder)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *Runner) fetchOne(ctx context.Context, loc event.Locator, builder *event.Builder) *event.Event {
	fields, err := r.source.FetchFields(ctx, loc.URL)
	if err != nil {
		fetchFields := logger.Fields{
			"url":   loc.URL,
			"error": err.Error(),
		}
		var ferr *scraper.FetchError
		if errors.As(err, &ferr) && ferr.StatusCode != 0 {
			fetchFields["status"] = ferr.StatusCode
		}
		r.log.Warn("event page skipped", fetchFields)
		r.metrics.IncrCounter(MetricFetchFailed)
		return nil
	}

	evt := builder.Build(loc, fields)
	r.metrics.IncrCounter(MetricLoaded)
	r.log.Debug("event loaded", logger.Fields{
		"id":        evt.ID,
		"title":     evt.Title,
		"scheduled": evt.Scheduled(),
	})
	return evt
}
