package errhttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	itemdomain "github.com/ghuser/itemstore/services/item/domain"
)

func TestWriteError_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"ErrItemNotFound", itemdomain.ErrItemNotFound, http.StatusNotFound},
		{"ErrItemAlreadyExists", itemdomain.ErrItemAlreadyExists, http.StatusConflict},
		{"ErrInvalidItem", itemdomain.ErrInvalidItem, http.StatusUnprocessableEntity},
		{"ErrInvalidItemName", itemdomain.ErrInvalidItemName, http.StatusUnprocessableEntity},
		{"ErrInvalidItemDescription", itemdomain.ErrInvalidItemDescription, http.StatusUnprocessableEntity},
		{"ErrInvalidItemPrice", itemdomain.ErrInvalidItemPrice, http.StatusUnprocessableEntity},
		{"wrapped ErrItemNotFound", fmt.Errorf("get item: %w", itemdomain.ErrItemNotFound), http.StatusNotFound},
		{"wrapped ErrInvalidItemPrice", fmt.Errorf("%w: must be positive", itemdomain.ErrInvalidItemPrice), http.StatusUnprocessableEntity},
		{"unknown error", errors.New("something unexpected"), http.StatusInternalServerError},
		{"generic wrapped error", fmt.Errorf("context: %w", errors.New("db down")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not valid JSON: %v", err)
	}
	return body
}

func TestWriteError_JSONBody(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, itemdomain.ErrItemNotFound)

	if got := decodeBody(t, w)["error"]; got != "item not found" {
		t.Fatalf("unexpected error message %q", got)
	}
	if w.Header().Get("Content-Type") == "" {
		t.Fatal("Content-Type header not set")
	}
}

func TestWrite_ProductionHidesInternalErrors(t *testing.T) {
	w := httptest.NewRecorder()
	Write(w, fmt.Errorf("insert item: %w", errors.New("pq: relation \"items\" does not exist")), true)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if got := decodeBody(t, w)["error"]; got != "Internal Server Error" {
		t.Fatalf("expected generic message, got %q", got)
	}
}

func TestWrite_ProductionKeepsClientErrors(t *testing.T) {
	w := httptest.NewRecorder()
	Write(w, fmt.Errorf("%w: must be positive", itemdomain.ErrInvalidItemPrice), true)

	if got := decodeBody(t, w)["error"]; got != "invalid item price: must be positive" {
		t.Fatalf("unexpected message %q", got)
	}
}
