package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HendryAvila/kanjidict/internal/config"
	"github.com/HendryAvila/kanjidict/internal/dictionary"
)

type searchOptions struct {
	search     string
	meanings   string
	onYomi     string
	kunYomi    string
	jlpt       []string
	joyo       []string
	kentei     []string
	strokesMin int
	strokesMax int
	radicalID  int64
	sort       string
	order      string
	limit      int
}

func newSearchCommand(deps commandDeps) *cobra.Command {
	opts := &searchOptions{}
	cmd := &cobra.Command{
		Use:   "search [text]",
		Short: "Search kanji",
		Example: "  kanjidict search 水\n" +
			"  kanjidict search --jlpt N5,N4 --strokes-max 6\n" +
			"  kanjidict search --kentei 9級 --sort strokeCount --order asc",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.search = args[0]
			}
			if opts.order != "asc" && opts.order != "desc" {
				return usageErrorf("--order must be asc or desc, got %q", opts.order)
			}
			field, err := dictionary.ParseKanjiSortField(opts.sort)
			if err != nil {
				return mapCommandError(err)
			}

			filters := dictionary.KanjiFilters{
				Search:       opts.search,
				Meanings:     opts.meanings,
				OnYomi:       opts.onYomi,
				KunYomi:      opts.kunYomi,
				JLPTLevels:   opts.jlpt,
				JoyoLevels:   opts.joyo,
				KenteiLevels: normalizeKentei(opts.kentei),
				Limit:        opts.limit,
			}
			if cmd.Flags().Changed("strokes-min") {
				filters.StrokeCountMin = &opts.strokesMin
			}
			if cmd.Flags().Changed("strokes-max") {
				filters.StrokeCountMax = &opts.strokesMax
			}
			if cmd.Flags().Changed("radical-id") {
				filters.RadicalID = &opts.radicalID
			}
			sort := dictionary.KanjiSort{Field: field, Asc: opts.order == "asc"}

			return withStore(cmd, deps, func(ctx context.Context, store *dictionary.Store, _ config.Config) error {
				results, err := store.SearchKanji(ctx, filters, sort)
				if err != nil {
					return err
				}
				if deps.globals.JSON {
					return printJSON(deps.out, results)
				}
				if len(results) == 0 {
					_, err = fmt.Fprintln(deps.out, "no kanji found")
					return err
				}
				for _, k := range results {
					if _, err := fmt.Fprintln(deps.out, kanjiLine(k)); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.meanings, "meaning", "", "Match meaning text")
	f.StringVar(&opts.onYomi, "on", "", "Match on'yomi")
	f.StringVar(&opts.kunYomi, "kun", "", "Match kun'yomi")
	f.StringSliceVar(&opts.jlpt, "jlpt", nil, "JLPT levels (N5..N1, non-jlpt)")
	f.StringSliceVar(&opts.joyo, "joyo", nil, "Joyo levels (elementary1..6, secondary, non-joyo)")
	f.StringSliceVar(&opts.kentei, "kentei", nil, "Kanji kentei levels (10..1, pre2, pre1; 級 suffix allowed)")
	f.IntVar(&opts.strokesMin, "strokes-min", 0, "Minimum stroke count")
	f.IntVar(&opts.strokesMax, "strokes-max", 0, "Maximum stroke count")
	f.Int64Var(&opts.radicalID, "radical-id", 0, "Radical component id")
	f.StringVar(&opts.sort, "sort", "", "character, strokeCount, jlptLevel, joyoLevel, identifier, createdAt, updatedAt")
	f.StringVar(&opts.order, "order", "desc", "asc or desc")
	f.IntVar(&opts.limit, "limit", 50, "Max results")
	return cmd
}

func normalizeKentei(levels []string) []string {
	if len(levels) == 0 {
		return nil
	}
	out := make([]string, len(levels))
	for i, l := range levels {
		out[i] = dictionary.NormalizeKenteiLevel(l)
	}
	return out
}

func kanjiLine(k dictionary.Kanji) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %s", k.ID, k.Character)
	if k.ShortMeaning != nil {
		fmt.Fprintf(&b, " %s", *k.ShortMeaning)
	}
	var facts []string
	if k.StrokeCount != nil {
		facts = append(facts, fmt.Sprintf("%d strokes", *k.StrokeCount))
	}
	if k.JLPTLevel != nil {
		facts = append(facts, *k.JLPTLevel)
	}
	if len(facts) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(facts, ", "))
	}
	return b.String()
}
