package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oneminnews/oneminnews/internal/api"
	"github.com/oneminnews/oneminnews/internal/browser"
)

// shutdownTimeout bounds how long in-flight requests get after a signal.
const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *options) *cobra.Command {
	var (
		port   int
		noOpen bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the reader's JSON API on localhost",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if port == 0 {
				port = a.Config.Server.Port
			}
			// Localhost only: the API acts for the signed-in user.
			addr := fmt.Sprintf("localhost:%d", port)
			srv := &http.Server{
				Addr:              addr,
				Handler:           api.NewRouter(a),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				slog.Info("starting server", "addr", "http://"+addr, "offline", a.Offline())
				errCh <- srv.ListenAndServe()
			}()

			if a.Config.Server.AutoOpenBrowser && !noOpen {
				go func() {
					// Give the listener a moment to come up.
					time.Sleep(500 * time.Millisecond)
					if err := browser.Open("http://" + addr + "/api/news"); err != nil {
						slog.Warn("opening browser failed", "error", err)
					}
				}()
			}

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			slog.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutting down server: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (default from config)")
	cmd.Flags().BoolVar(&noOpen, "no-open", false, "do not open the browser")
	return cmd
}
