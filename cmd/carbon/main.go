package main

import (
	"os"

	"github.com/carbonwasm/carbon/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
