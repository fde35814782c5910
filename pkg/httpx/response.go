package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
)

// ErrNotInteger is returned by QueryInt for values that are not base-10 integers.
var ErrNotInteger = errors.New("not an integer")

// JSON writes v as JSON with status. Encoding errors are dropped because the
// header has already been sent.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Created writes v with 201 and points Location at the new resource.
func Created(w http.ResponseWriter, location string, v any) {
	if location != "" {
		w.Header().Set("Location", location)
	}
	JSON(w, http.StatusCreated, v)
}

// NoContent writes a bare 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// JSONError writes {"error": message}.
func JSONError(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// SafeError returns the client-facing message for err. In production 5xx
// messages are replaced with the status text so storage details stay private.
func SafeError(err error, status int, isProduction bool) string {
	if isProduction && status >= http.StatusInternalServerError {
		return http.StatusText(status)
	}
	return err.Error()
}

// QueryInt reads key from q. Absent or empty values yield def.
func QueryInt(q url.Values, key string, def int) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def, ErrNotInteger
	}
	return n, nil
}
