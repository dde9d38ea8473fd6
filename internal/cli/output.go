package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/festcal/internal/event"
	"github.com/pfrederiksen/festcal/internal/pipeline"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output
type OutputResult struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Preset      string         `json:"preset"`
	Output      string         `json:"output"`
	Discovered  int            `json:"discovered"`
	EventCount  int            `json:"event_count"`
	FetchFailed int            `json:"fetch_failed"`
	Unscheduled int            `json:"unscheduled"`
	Events      []*event.Event `json:"events,omitempty"`
}

// NewOutputResult summarizes a pipeline run. Events are only included when
// withEvents is set.
func NewOutputResult(r *pipeline.Result, withEvents bool) *OutputResult {
	out := &OutputResult{
		GeneratedAt: r.GeneratedAt,
		Preset:      r.Preset,
		Output:      r.Output,
		Discovered:  r.Discovered,
		EventCount:  r.Loaded,
		FetchFailed: r.FetchFailed,
		Unscheduled: r.Unscheduled,
	}
	if withEvents {
		out.Events = r.Events
	}
	return out
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	fmt.Fprintf(w, "Loaded events: %d\n", result.EventCount)

	if !verbose {
		return nil
	}

	fmt.Fprintf(w, "Calendar: %s\n", result.Output)
	if result.FetchFailed > 0 {
		fmt.Fprintf(w, "Skipped pages: %d\n", result.FetchFailed)
	}
	if result.Unscheduled > 0 {
		fmt.Fprintf(w, "Without schedule: %d\n", result.Unscheduled)
	}

	for _, evt := range result.Events {
		fmt.Fprintf(w, "\n  %s\n", evt.Title)
		if evt.Scheduled() {
			fmt.Fprintf(w, "     When: %s - %s\n",
				evt.Start.Format("Mon 2 Jan 2006 15:04"), evt.End.Format("15:04"))
		} else if line := evt.ScheduleLine(); line != "" {
			fmt.Fprintf(w, "     When: %s (unparsed)\n", line)
		}
		if evt.Location != "" {
			fmt.Fprintf(w, "     Where: %s\n", evt.Location)
		}
		fmt.Fprintf(w, "     ID: %s\n", evt.ID)
	}

	return nil
}
