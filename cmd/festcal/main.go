package main

import (
	_ "time/tzdata"

	"github.com/pfrederiksen/festcal/internal/cli"
)

func main() {
	cli.Execute()
}
