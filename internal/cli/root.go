// Package cli implements the kanjidict command line: the MCP server entry
// point plus maintenance commands that work on the dictionary directly.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// BuildInfo identifies the binary; main fills it from ldflags.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

// GlobalOptions holds the persistent flags shared by every command.
type GlobalOptions struct {
	ConfigPath string
	DataDir    string
	LogLevel   string
	JSON       bool
}

type commandDeps struct {
	out     io.Writer
	globals *GlobalOptions
	build   BuildInfo
}

// NewRootCommand builds the kanjidict command tree. Command output goes to
// out; diagnostics and logs go to the command's stderr, which stays
// separate so out can carry the MCP stream or JSON.
func NewRootCommand(out io.Writer, build BuildInfo) *cobra.Command {
	globals := &GlobalOptions{}
	deps := commandDeps{out: out, globals: globals, build: build}

	cmd := &cobra.Command{
		Use:           "kanjidict",
		Short:         "Personal kanji dictionary with an MCP server",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: "  kanjidict serve\n" +
			"  kanjidict search --jlpt N5 --sort strokeCount --order asc\n" +
			"  kanjidict export --dir ./backups",
	}
	cmd.SetOut(out)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageErrorf("%v", err)
	})

	flags := cmd.PersistentFlags()
	flags.StringVar(&globals.ConfigPath, "config", "", "Path to config.toml")
	flags.StringVar(&globals.DataDir, "data-dir", "", "Directory holding the dictionary database")
	flags.StringVar(&globals.LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.BoolVar(&globals.JSON, "json", false, "Print machine-readable JSON")

	cmd.AddCommand(
		newServeCommand(deps),
		newExportCommand(deps),
		newImportCommand(deps),
		newSeedCommand(deps),
		newClearCommand(deps),
		newStatsCommand(deps),
		newSearchCommand(deps),
		newVersionCommand(deps),
	)
	cmd.InitDefaultCompletionCmd()
	return cmd
}

func newVersionCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if deps.globals.JSON {
				return printJSON(deps.out, deps.build)
			}
			_, err := fmt.Fprintf(deps.out, "version=%s commit=%s build_time=%s\n", deps.build.Version, deps.build.Commit, deps.build.BuildTime)
			return err
		},
	}
}
