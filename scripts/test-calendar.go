package main

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/pfrederiksen/festcal/internal/calendar"
	"github.com/pfrederiksen/festcal/internal/event"
)

func main() {
	zone, err := time.LoadLocation("Europe/Vienna")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading zone: %v\n", err)
		os.Exit(1)
	}

	// Build a sample event the way the pipeline would
	builder := event.NewBuilder(
		event.NewNormalizer(event.German, zone, event.OvernightNextDay),
		event.NewSanitizer(event.DefaultDenylist),
		event.PreferListing,
		nil,
	)
	evt := builder.Build(
		event.Locator{URL: "https://elevate.at/de/diskurs/programm/test-event/"},
		event.RawFields{
			Title:      "Test Talk: Netzwerke, Macht; Öffentlichkeit",
			Subtitle:   "Ein Probelauf",
			DateText:   "Mittwoch, 04 März 2026",
			TimeText:   "22:00 - 01:30 Uhr",
			Location:   "Forum Stadtpark",
			Paragraphs: []string{"Dieser Eintrag prüft Escaping und Zeilenumbruch.", "–>Tickets hier erhältlich"},
			Speakers:   []string{"Ada Lovelace"},
		},
	)

	icsContent, err := calendar.Serialize(&calendar.Document{
		ProductID: "-//festcal//test calendar//DE",
		Method:    calendar.MethodPublish,
		Name:      "festcal test",
		Zone:      zone,
		Events:    []*event.Event{evt},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error serializing calendar: %v\n", err)
		os.Exit(1)
	}

	filename := "test-festcal.ics"
	if err := os.WriteFile(filename, icsContent, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	report, err := calendar.ValidateFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Generated calendar does not validate: %v\n", err)
		os.Exit(2)
	}

	fmt.Printf("✅ Generated calendar file: %s (%d events, %d warnings)\n\n", filename, report.Events, len(report.Warnings))
	fmt.Println("Test it by:")
	fmt.Println("1. Open the .ics file with your calendar app (double-click)")
	fmt.Println("2. Or import it into Google Calendar, Apple Calendar, or Outlook")
	fmt.Println("\nFile contents preview:")
	fmt.Println("---")
	fmt.Println(string(icsContent))
}
