// Package cli implements the command-line interface for festcal.
//
// The root command runs the scraper pipeline for a preset (optionally
// overridden by a YAML config file) and reports how many events were written.
// The validate subcommand checks a calendar file and reports the result
// through its exit code: 0 valid, 2 invalid, 1 when no readable file was given.
package cli
