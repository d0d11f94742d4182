package cli

import (
	"fmt"
	"log/slog"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/HendryAvila/kanjidict/internal/server"
)

var serveStdioFn = func(s *mcpserver.MCPServer) error {
	return mcpserver.ServeStdio(s)
}

func newServeCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: "Start the MCP server on stdio. Stdout carries the protocol, so logs go\n" +
			"to stderr or to the configured log file.",
		Example: "  kanjidict serve\n" +
			"  kanjidict serve --data-dir ~/kanji --log-level debug",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, closer, err := loadRuntime(cmd, deps.globals)
			if err != nil {
				return err
			}
			defer closer.Close()
			slog.SetDefault(logger)

			s, cleanup, err := server.New(cfg, logger)
			defer cleanup()
			if err != nil {
				return mapCommandError(fmt.Errorf("creating server: %w", err))
			}

			logger.Info("serving on stdio", "database", cfg.DatabasePath())
			return serveStdioFn(s)
		},
	}
}
