package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/kanjidict/internal/config"
	"github.com/HendryAvila/kanjidict/internal/dictionary"
)

func newExportCommand(deps commandDeps) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a snapshot of the dictionary database",
		Example: "  kanjidict export\n" +
			"  kanjidict export --dir ./backups",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, deps, func(ctx context.Context, store *dictionary.Store, cfg config.Config) error {
				target := strings.TrimSpace(dir)
				if target == "" {
					target = cfg.Export.Dir
				}
				path, err := store.Export(ctx, target)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, map[string]any{"path": path})
				}
				_, err = fmt.Fprintf(deps.out, "exported: %s\n", path)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Output directory (defaults to export.dir from config)")
	return cmd
}

func newImportCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the dictionary with the contents of an exported database",
		Example: "  kanjidict import ./backups/kanji-dictionary-2026-01-02-10-30.db",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageErrorf("import requires exactly one file argument")
			}
			return withStore(cmd, deps, func(ctx context.Context, store *dictionary.Store, _ config.Config) error {
				if err := store.Import(ctx, args[0]); err != nil {
					return err
				}
				st, err := store.Stats(ctx)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, map[string]any{"imported": args[0], "stats": st})
				}
				_, err = fmt.Fprintf(deps.out, "imported %s: %d kanji, %d components, %d words\n", args[0], st.Kanji, st.Components, st.Vocabulary)
				return err
			})
		},
	}
}

func newSeedCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the built-in sample data into empty tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, deps, func(ctx context.Context, store *dictionary.Store, _ config.Config) error {
				res, err := store.Seed(ctx)
				if err != nil && !errors.Is(err, dictionary.ErrAlreadySeeded) {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, res)
				}
				_, err = fmt.Fprintln(deps.out, res.Message())
				return err
			})
		},
	}
}

func newClearCommand(deps commandDeps) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "clear",
		Short:   "Delete all user data (reference types are kept)",
		Example: "  kanjidict clear --yes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return usageErrorf("clear deletes every kanji, component and word; pass --yes to confirm")
			}
			return withStore(cmd, deps, func(ctx context.Context, store *dictionary.Store, _ config.Config) error {
				if err := store.Clear(ctx); err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, map[string]any{"cleared": true})
				}
				_, err := fmt.Fprintln(deps.out, "dictionary cleared")
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deletion")
	return cmd
}

func newStatsCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show row counts for every table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, deps, func(ctx context.Context, store *dictionary.Store, _ config.Config) error {
				st, err := store.Stats(ctx)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, st)
				}
				_, err = fmt.Fprint(deps.out, st.String())
				return err
			})
		},
	}
}
