// Command riverql is the CLI entrypoint: register tables from a sources
// file, then run or explain SQL against them.
package main

import (
	"os"

	"github.com/riverql/riverql/internal/cli"
)

// Set at build time via -ldflags.
var (
	version   = ""
	gitCommit = ""
	buildDate = ""
)

func main() {
	cli.SetVersionInfo(version, gitCommit, buildDate)
	os.Exit(cli.New().Execute())
}
