package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/kanjidict/internal/config"
	"github.com/HendryAvila/kanjidict/internal/dictionary"
	"github.com/HendryAvila/kanjidict/internal/logging"
)

var loadConfigFn = config.Load

// loadRuntime resolves the effective config and builds the logger for it.
// The returned closer releases the log file, if any.
func loadRuntime(cmd *cobra.Command, globals *GlobalOptions) (config.Config, *slog.Logger, io.Closer, error) {
	opts := config.LoadOptions{}
	if globals != nil {
		opts.ConfigPath = strings.TrimSpace(globals.ConfigPath)
		if cmd.Flags().Changed("data-dir") {
			opts.Flags.DataDir = &globals.DataDir
		}
		if cmd.Flags().Changed("log-level") {
			opts.Flags.LogLevel = &globals.LogLevel
		}
	}

	cfg, err := loadConfigFn(opts)
	if err != nil {
		return config.Config{}, nil, nil, mapCommandError(fmt.Errorf("load config: %w", err))
	}

	logger, closer, err := logging.New(logging.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		File:      cfg.Logging.File,
		MaxSizeMB: cfg.Logging.MaxSizeMB,
		MaxFiles:  cfg.Logging.MaxFiles,
		Stderr:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return config.Config{}, nil, nil, mapCommandError(fmt.Errorf("init logging: %w", err))
	}
	return cfg, logger, closer, nil
}

// withStore opens the dictionary for the duration of fn.
func withStore(cmd *cobra.Command, deps commandDeps, fn func(context.Context, *dictionary.Store, config.Config) error) error {
	cfg, logger, closer, err := loadRuntime(cmd, deps.globals)
	if err != nil {
		return err
	}
	defer closer.Close()

	store, err := dictionary.New(dictionary.Config{
		DataDir:  cfg.Database.DataDir,
		FileName: cfg.Database.FileName,
		Logger:   logger,
	})
	if err != nil {
		return mapCommandError(err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("dictionary close failed", "err", err)
		}
	}()

	return mapCommandError(fn(cmd.Context(), store, cfg))
}

func printJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
