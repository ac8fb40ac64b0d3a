package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oneminnews/oneminnews/internal/export"
	"github.com/oneminnews/oneminnews/internal/models"
	"github.com/oneminnews/oneminnews/internal/storage"
)

func newSaveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "save <title>",
		Short: "Add an article to the saved list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := a.Context(cmd.Context())
			article, err := a.Backend.Article(ctx, args[0])
			if err != nil {
				return fmt.Errorf("finding article: %w", err)
			}
			if _, err := a.Cards.Get(ctx, article).SetSaved(ctx, true); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %q\n", article.Title)
			return nil
		},
	}
}

func newUnsaveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "unsave <title>",
		Short: "Remove an article from the saved list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := a.Context(cmd.Context())
			key := models.Article{Title: args[0]}.Key()
			saved, err := a.Store.SavedArticle(ctx, key)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					return fmt.Errorf("%q is not on the saved list", key)
				}
				return err
			}
			if _, err := a.Cards.Get(ctx, saved.Article()).SetSaved(ctx, false); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %q\n", key)
			return nil
		},
	}
}

func newSavedCmd(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "saved",
		Short: "Print the saved list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			saved, err := a.Store.SavedArticles(cmd.Context())
			if err != nil {
				return fmt.Errorf("reading saved list: %w", err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), saved)
			}
			if len(saved) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved articles.")
				return nil
			}
			articles := make([]models.Article, len(saved))
			for i, s := range saved {
				articles[i] = s.Article()
			}
			printArticles(cmd.OutOrStdout(), articles, 0, time.Now())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newExportCmd(opts *options) *cobra.Command {
	var (
		format string
		dir    string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the saved list to a Markdown or text file",
		Long:  "Write the saved list to a Markdown or text file in --dir. With --dir - the document is printed instead.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}

			a, err := opts.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			saved, err := a.Store.SavedArticles(cmd.Context())
			if err != nil {
				return fmt.Errorf("reading saved list: %w", err)
			}

			now := time.Now()
			if dir == "-" {
				content, err := export.Render(f, saved, now)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), content)
				return nil
			}

			path, err := export.WriteFile(dir, f, saved, now)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d articles to %s\n", len(saved), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "md", "file format: md or txt")
	cmd.Flags().StringVar(&dir, "dir", ".", "directory to write the file to, or - for stdout")
	return cmd
}
