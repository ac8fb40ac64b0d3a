package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oneminnews/oneminnews/internal/tui"
)

func newBrowseCmd(opts *options) *cobra.Command {
	var source, sort string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Read the news in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			filter := a.DefaultFilter()
			if source != "" {
				filter.Source = source
			}
			if sort != "" {
				if err := checkSort(sort); err != nil {
					return err
				}
				filter.Sort = sort
			}

			if err := tui.Run(tui.Options{
				Trigger:   a.NewTrigger(),
				Cards:     a.Cards,
				Summaries: a.Summaries,
				Sources:   a.Backend,
				Filter:    filter,
				Context:   a.Context(cmd.Context()),
			}); err != nil {
				return fmt.Errorf("running reader: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "only show articles from this source")
	cmd.Flags().StringVar(&sort, "sort", "", "list order: time, popular or smart")
	return cmd
}
