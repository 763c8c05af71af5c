package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/DjordjeVuckovic/newsman/internal/dto"
	"github.com/DjordjeVuckovic/newsman/internal/types/query"
	"github.com/spf13/cobra"
)

// newRootCmd returns the command tree and a func that closes the app opened
// by the pre-run hook. Cobra skips post-run hooks when RunE fails, so the
// caller closes the app after Execute returns.
func newRootCmd(newApp appFactory) (*cobra.Command, func()) {
	var a *app

	root := &cobra.Command{
		Use:          "newsctl",
		Short:        "Ingest and search news feeds from the terminal",
		Long:         "Runs ingestion against the configured vector store and queries it without the HTTP API.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp(cmd.Context())
			return err
		},
	}

	root.AddCommand(
		fetchCmd(&a),
		searchCmd(&a),
		sourcesCmd(&a),
		categoriesCmd(&a),
		statsCmd(&a),
	)

	closeApp := func() {
		if a != nil {
			a.Close()
			a = nil
		}
	}
	return root, closeApp
}

func fetchCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Run one ingestion pass over every configured feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := (*a).pipeline.Run(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
}

func searchCmd(a **app) *cobra.Command {
	var (
		source   string
		category string
		date     string
		dateOp   string
		limit    int
		offset   int
		minScore string
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Rank stored articles by similarity to the query",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := query.ParseFilter(query.Params{
				Query:       strings.Join(args, " "),
				Source:      source,
				Category:    category,
				Date:        date,
				DateOperand: dateOp,
				MinScore:    minScore,
				Limit:       strconv.Itoa(limit),
				Offset:      strconv.Itoa(offset),
			})
			if err != nil {
				return err
			}

			hits, err := (*a).search.Search(cmd.Context(), *f)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), dto.SearchResultsFromDomain(hits))
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "only articles from this feed")
	cmd.Flags().StringVar(&category, "category", "", "only articles in this category")
	cmd.Flags().StringVar(&date, "date", "", "ISO date (YYYY-MM-DD) or date-time")
	cmd.Flags().StringVar(&dateOp, "date-operand", "on", "before, after, on_or_before, on_or_after or on")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of results")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of results to skip")
	cmd.Flags().StringVar(&minScore, "min-score", "", "minimum similarity between -1 and 1 (default 0.35)")
	return cmd
}

func sourcesCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List feed sources present in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sources, err := (*a).search.Sources(cmd.Context())
			if err != nil {
				return err
			}
			return writeLines(cmd.OutOrStdout(), sources)
		},
	}
}

func categoriesCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories present in the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := (*a).search.Categories(cmd.Context())
			if err != nil {
				return err
			}
			return writeLines(cmd.OutOrStdout(), categories)
		},
	}
}

func statsCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show article counts per source and category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := (*a).search.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), stats)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeLines(w io.Writer, lines []string) error {
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
