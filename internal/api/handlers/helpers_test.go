package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/oneminnews/oneminnews/internal/feeds"
	"github.com/oneminnews/oneminnews/internal/newsapi"
	"github.com/oneminnews/oneminnews/internal/storage"
)

func TestWriteJSON(t *testing.T) {
	t.Run("encodes and sets content type", func(t *testing.T) {
		w := httptest.NewRecorder()
		data := map[string]string{"hello": "world"}

		writeJSON(w, http.StatusOK, data)

		if w.Code != http.StatusOK {
			t.Errorf("got status %d, want %d", w.Code, http.StatusOK)
		}

		ct := w.Header().Get("Content-Type")
		if ct != "application/json" {
			t.Errorf("got Content-Type %q, want %q", ct, "application/json")
		}

		var got map[string]string
		if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
			t.Fatalf("decoding response body: %v", err)
		}
		if got["hello"] != "world" {
			t.Errorf("got %q, want %q", got["hello"], "world")
		}
	})

	t.Run("sets custom status code", func(t *testing.T) {
		w := httptest.NewRecorder()
		writeJSON(w, http.StatusCreated, map[string]string{"ok": "true"})

		if w.Code != http.StatusCreated {
			t.Errorf("got status %d, want %d", w.Code, http.StatusCreated)
		}
	})
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, http.StatusBadRequest, "something went wrong")

	if w.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want %d", w.Code, http.StatusBadRequest)
	}

	ct := w.Header().Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("got Content-Type %q, want %q", ct, "application/json")
	}

	var got map[string]string
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	if got["error"] != "something went wrong" {
		t.Errorf("got error %q, want %q", got["error"], "something went wrong")
	}
}

func TestQueryInt(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    int
		wantErr bool
	}{
		{name: "valid integer", query: "offset=42", want: 42},
		{name: "negative", query: "offset=-3", want: -3},
		{name: "absent uses default", query: "", want: 7},
		{name: "empty uses default", query: "offset=", want: 7},
		{name: "invalid string", query: "offset=abc", wantErr: true},
		{name: "float value", query: "offset=3.14", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)

			got, err := queryInt(r, "offset", 7)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUpstreamStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing feed article", feeds.ErrArticleNotFound, http.StatusNotFound},
		{"missing saved article", storage.ErrNotFound, http.StatusNotFound},
		{"service 404", &newsapi.APIError{Status: 404}, http.StatusNotFound},
		{"service 422", fmt.Errorf("wrapped: %w", &newsapi.APIError{Status: 422}), http.StatusUnprocessableEntity},
		{"service 500", &newsapi.APIError{Status: 500}, http.StatusBadGateway},
		{"network", errors.New("connection refused"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		if got := upstreamStatus(tt.err); got != tt.want {
			t.Errorf("%s: upstreamStatus() = %d, want %d", tt.name, got, tt.want)
		}
	}
}
