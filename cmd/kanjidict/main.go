// kanjidict: personal kanji dictionary with an MCP server.
//
// Usage:
//
//	kanjidict serve     # Start MCP server (stdio transport)
//	kanjidict seed      # Load sample data
//	kanjidict search 水 # Search kanji from the terminal
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/HendryAvila/kanjidict/internal/cli"
	"github.com/HendryAvila/kanjidict/internal/server"
)

// Set at build time via ldflags.
var (
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	cmd := cli.NewRootCommand(os.Stdout, cli.BuildInfo{
		Version:   server.Version,
		Commit:    commit,
		BuildTime: buildTime,
	})
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var withExitCode interface{ ExitCode() int }
		if errors.As(err, &withExitCode) {
			os.Exit(withExitCode.ExitCode())
		}
		os.Exit(1)
	}
}
