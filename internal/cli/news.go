package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/oneminnews/oneminnews/internal/ai"
	"github.com/oneminnews/oneminnews/internal/config"
	"github.com/oneminnews/oneminnews/internal/feed"
	"github.com/oneminnews/oneminnews/internal/models"
	"github.com/oneminnews/oneminnews/internal/summary"
)

func checkSort(sort string) error {
	if !slices.Contains(config.Sorts, sort) {
		return fmt.Errorf("invalid sort %q: must be one of %s", sort, strings.Join(config.Sorts, ", "))
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printArticles(w io.Writer, articles []models.Article, offset int, now time.Time) {
	for i, a := range articles {
		fmt.Fprintf(w, "%3d. %s\n", offset+i+1, a.Title)
		fmt.Fprintf(w, "     %s · %s · %d votes\n", a.Source, models.RelativeTime(a.When(), now), a.VoteCount)
		if a.Link != "" {
			fmt.Fprintf(w, "     %s\n", a.Link)
		}
	}
}

func newListCmd(opts *options) *cobra.Command {
	var (
		page   feed.Page
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print one page of the news list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			def := a.DefaultFilter()
			if page.Filter.Source == "" {
				page.Filter.Source = def.Source
			}
			if page.Filter.Sort == "" {
				page.Filter.Sort = def.Sort
			}
			if err := checkSort(page.Filter.Sort); err != nil {
				return err
			}
			if page.Limit <= 0 {
				page.Limit = a.Config.Feed.PageSize
			}
			if page.Offset < 0 {
				return fmt.Errorf("invalid --offset %d", page.Offset)
			}

			articles, err := a.Backend.List(cmd.Context(), page)
			if err != nil {
				return fmt.Errorf("listing news: %w", err)
			}
			if asJSON {
				if articles == nil {
					articles = []models.Article{}
				}
				return writeJSON(cmd.OutOrStdout(), articles)
			}
			if len(articles) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No articles found.")
				return nil
			}
			printArticles(cmd.OutOrStdout(), articles, page.Offset, time.Now())
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&page.Offset, "offset", 0, "number of articles to skip")
	f.IntVar(&page.Limit, "limit", 0, "number of articles to print (default from config)")
	f.StringVar(&page.Filter.Source, "source", "", "only list articles from this source")
	f.StringVar(&page.Filter.Sort, "sort", "", "list order: time, popular or smart")
	f.BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newVoteCmd(opts *options) *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "vote <title>",
		Short: "Vote an article up, or down with --down",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			delta := 1
			if down {
				delta = -1
			}
			count, err := a.Backend.Vote(cmd.Context(), args[0], delta)
			if err != nil {
				return fmt.Errorf("voting: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d votes\n", args[0], count)
			return nil
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "vote down instead of up")
	return cmd
}

func newSourcesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the news sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			sources, err := a.Backend.Sources(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing sources: %w", err)
			}
			for _, s := range sources {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
}

func newRefreshCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch the news again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			msg, err := a.Refresh(cmd.Context())
			if err != nil {
				return fmt.Errorf("refreshing: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

func newSummaryCmd(opts *options) *cobra.Command {
	var (
		variant string
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "summary <title>",
		Short: "Print the summary of an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !ai.ValidVariant(variant) {
				return fmt.Errorf("invalid --type %q: must be %q or %q", variant, ai.VariantBrief, ai.VariantDetailed)
			}

			a, err := opts.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			article, err := a.Backend.Article(ctx, args[0])
			if err != nil {
				return fmt.Errorf("finding article: %w", err)
			}

			get := a.Summaries.Get
			if refresh {
				get = a.Summaries.Refresh
			}
			text, err := get(ctx, article, variant)
			if err != nil {
				if errors.Is(err, summary.ErrNoContent) {
					return fmt.Errorf("%q has nothing to summarize", article.Title)
				}
				return fmt.Errorf("%s: %w", summary.FailureText, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringVar(&variant, "type", summary.DefaultVariant, "summary type: brief or detailed")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "generate the summary again instead of using the cached one")
	return cmd
}
