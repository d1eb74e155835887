// Command ecodesk-cli drives module generation against a running console
// from the terminal: submit a job, watch it, confirm or roll it back.

package main

import (
	"os"

	"github.com/verdantops/ecodesk/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
