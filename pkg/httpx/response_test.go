package httpx_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/ghuser/itemstore/pkg/httpx"
)

func TestJSON_setsHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("unexpected Content-Type: %q", ct)
	}
	if xct := w.Header().Get("X-Content-Type-Options"); xct != "nosniff" {
		t.Errorf("expected nosniff, got %q", xct)
	}
}

func TestCreated_setsLocationAndBody(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.Created(w, "/items/abc", map[string]string{"id": "abc"})

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/items/abc" {
		t.Errorf("unexpected Location: %q", loc)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body["id"] != "abc" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestNoContent_emptyBody(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.NoContent(w)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("expected empty body, got %q", w.Body.String())
	}
}

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	httpx.JSONError(w, http.StatusNotFound, "item not found")

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body["error"] != "item not found" {
		t.Errorf("unexpected error message: %q", body["error"])
	}
}

func TestSafeError(t *testing.T) {
	err := errors.New("pq: relation \"items\" does not exist")
	tests := []struct {
		name         string
		status       int
		isProduction bool
		want         string
	}{
		{"dev 5xx keeps message", http.StatusInternalServerError, false, err.Error()},
		{"prod 5xx redacted", http.StatusInternalServerError, true, "Internal Server Error"},
		{"prod 4xx keeps message", http.StatusNotFound, true, err.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := httpx.SafeError(err, tt.status, tt.isProduction); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQueryInt(t *testing.T) {
	q := url.Values{"skip": {"5"}, "limit": {"ten"}, "neg": {"-3"}, "empty": {""}}
	tests := []struct {
		key     string
		want    int
		wantErr bool
	}{
		{"skip", 5, false},
		{"neg", -3, false},
		{"missing", 10, false},
		{"empty", 10, false},
		{"limit", 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := httpx.QueryInt(q, tt.key, 10)
			if tt.wantErr != errors.Is(err, httpx.ErrNotInteger) {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}
