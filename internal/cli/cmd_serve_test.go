package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"
)

func TestServeKeepsStdoutForProtocol(t *testing.T) {
	var served bool
	orig := serveStdioFn
	serveStdioFn = func(s *mcpserver.MCPServer) error {
		require.NotNil(t, s)
		served = true
		return nil
	}
	defaultLogger := slog.Default()
	t.Cleanup(func() {
		serveStdioFn = orig
		slog.SetDefault(defaultLogger)
	})

	out, logs, err := runCLIWithLogs(t, "--data-dir", t.TempDir(), "--log-level", "debug", "serve")
	require.NoError(t, err)
	require.True(t, served)
	require.Empty(t, out, "stdout carries JSON-RPC and must hold no log lines")
	require.Contains(t, logs, "mcp server ready")
	require.Contains(t, logs, "serving on stdio")
}

func TestJSONOutputHasNoLogLines(t *testing.T) {
	dataDir := t.TempDir()
	exportDir := t.TempDir()

	for _, args := range [][]string{
		{"seed"},
		{"export", "--dir", exportDir},
		{"stats"},
		{"clear", "--yes"},
	} {
		full := append([]string{"--data-dir", dataDir, "--log-level", "info", "--json"}, args...)
		out, logs, err := runCLIWithLogs(t, full...)
		require.NoError(t, err, args)
		require.Truef(t, json.Valid([]byte(out)), "%v printed non-JSON output: %q", args, out)
		require.NotContains(t, out, "level=")
		if args[0] == "export" {
			require.Contains(t, logs, "database exported")
		}
	}
}

// runCLIWithLogs runs the CLI with stderr captured separately from stdout.
func runCLIWithLogs(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("KANJIDICT_HOME", t.TempDir())

	var out, logs bytes.Buffer
	cmd := NewRootCommand(&out, testBuildInfo())
	cmd.SetErr(&logs)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), logs.String(), err
}
