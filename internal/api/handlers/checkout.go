package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
)

// ErrCheckoutUnavailable marks a checkout that cannot be started at all,
// as opposed to one the service refused.
var ErrCheckoutUnavailable = errors.New("checkout unavailable")

// CheckoutFunc starts a subscription checkout and returns its URL.
type CheckoutFunc func(ctx context.Context) (string, error)

// Checkout handles POST /api/checkout.
func Checkout(start CheckoutFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url, err := start(r.Context())
		if err != nil {
			if errors.Is(err, ErrCheckoutUnavailable) {
				writeError(w, http.StatusServiceUnavailable, err.Error())
				return
			}
			slog.Error("checkout failed", "error", err)
			writeError(w, upstreamStatus(err), "Failed to start checkout")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"url": url})
	}
}
