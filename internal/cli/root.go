// Package cli is the oneminnews command line: the terminal reader, the local
// API server and one-shot commands for the list, votes, the saved list,
// summaries and the signed-in session.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oneminnews/oneminnews/internal/app"
	"github.com/oneminnews/oneminnews/internal/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersionInfo records the build's version, set by the linker in
// release builds.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	logLevel   string
	logFile    string
	offline    bool

	logCloser io.Closer
}

// NewRootCmd builds the command tree. Running it without a subcommand
// starts the terminal reader.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "oneminnews",
		Short:         "Read the news one minute at a time",
		Long:          "oneminnews is a news reader: a scrolling list of articles with votes, a saved list and short AI summaries, in the terminal or behind a local API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setupLogging(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.logCloser != nil {
				return opts.logCloser.Close()
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to config file (default "+config.DefaultPath()+")")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")
	pf.BoolVar(&opts.offline, "offline", false, "read the configured feeds directly instead of the news service")

	browse := newBrowseCmd(opts)
	root.RunE = browse.RunE
	root.Flags().AddFlagSet(browse.Flags())

	root.AddCommand(
		browse,
		newServeCmd(opts),
		newListCmd(opts),
		newVoteCmd(opts),
		newSourcesCmd(opts),
		newRefreshCmd(opts),
		newSummaryCmd(opts),
		newSaveCmd(opts),
		newUnsaveCmd(opts),
		newSavedCmd(opts),
		newExportCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newCheckoutCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "oneminnews %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

// setupLogging installs the default slog logger. The reader owns the
// terminal, so it logs to a file; everything else logs to stderr. The server
// logs at info by default and one-shot commands at warn.
func (o *options) setupLogging(cmd *cobra.Command) error {
	interactive := cmd.Name() == "browse" || cmd == cmd.Root()

	level := slog.LevelWarn
	if cmd.Name() == "serve" {
		level = slog.LevelInfo
	}
	if o.logLevel != "" {
		var err error
		if level, err = parseLevel(o.logLevel); err != nil {
			return err
		}
	}

	var w io.Writer = cmd.ErrOrStderr()
	path := o.logFile
	if path == "" && interactive {
		path = config.DefaultLogPath()
	}
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		o.logCloser = f
		w = f
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("invalid --log-level %q: must be debug, info, warn or error", s)
	}
	return level, nil
}

// openApp loads the configuration and builds the App. The caller closes it.
func (o *options) openApp() (*app.App, error) {
	path := o.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	a, err := app.New(cfg, app.Options{Offline: o.offline})
	if err != nil {
		return nil, err
	}
	return a, nil
}
