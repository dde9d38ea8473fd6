// Command ical-verify checks that the file named by its only argument is a
// well-formed iCalendar document. It exits 0 when the file is valid, 2 when it
// is not and 1 when no readable file was given.
package main

import (
	_ "time/tzdata"

	"github.com/pfrederiksen/festcal/internal/cli"
)

func main() {
	cli.ExecuteValidate()
}
