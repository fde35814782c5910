// Package errhttp maps domain sentinel errors to HTTP status codes.
// Add a case to StatusFor for each new domain sentinel error.
package errhttp

import (
	"errors"
	"net/http"

	"github.com/ghuser/itemstore/pkg/httpx"
	itemdomain "github.com/ghuser/itemstore/services/item/domain"
)

// WriteError maps err to an HTTP status code and writes a JSON error response
// carrying err's message verbatim.
func WriteError(w http.ResponseWriter, err error) {
	Write(w, err, false)
}

// Write is WriteError with production redaction: when isProduction is set,
// 5xx bodies carry only the generic status text.
func Write(w http.ResponseWriter, err error, isProduction bool) {
	status := StatusFor(err)
	httpx.JSONError(w, status, httpx.SafeError(err, status, isProduction))
}

// StatusFor uses errors.Is so wrapped sentinels are matched.
// Unrecognized errors map to 500.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, itemdomain.ErrItemNotFound):
		return http.StatusNotFound // 404
	case errors.Is(err, itemdomain.ErrItemAlreadyExists):
		return http.StatusConflict // 409
	case errors.Is(err, itemdomain.ErrInvalidItem),
		errors.Is(err, itemdomain.ErrInvalidItemName),
		errors.Is(err, itemdomain.ErrInvalidItemDescription),
		errors.Is(err, itemdomain.ErrInvalidItemPrice):
		return http.StatusUnprocessableEntity // 422
	default:
		return http.StatusInternalServerError // 500
	}
}
