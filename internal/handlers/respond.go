// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"docforge/internal/models"
)

// writeJSON sends data as a JSON response with the given status code.
// The header is already out when encoding fails, so the failure is only
// logged.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Debug("response not sent", "status", status, "error", err)
	}
}

// errorBody is the shape of every error response.
type errorBody struct {
	Error    string `json:"error"`
	Variable string `json:"variable,omitempty"`
	Missing  bool   `json:"missing,omitempty"`
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrValidationFailed), errors.Is(err, models.ErrFormatting):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrUnsupportedFormat), errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotActive):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError sends err with the status of its kind. Unclassified errors
// are logged and hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}

	var verr *models.ValidationError
	if errors.As(err, &verr) {
		body.Variable = verr.Variable
		body.Missing = verr.Missing
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		body = errorBody{Error: "internal server error"}
	}
	writeJSON(w, status, body)
}

// badRequest reports malformed input.
func badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	writeError(w, r, fmt.Errorf("%w: %s", models.ErrInvalidInput, msg))
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		badRequest(w, r, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// decodeOptionalJSON is decodeJSON for bodies that may be empty.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, r, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// intParam parses an optional non-negative integer query parameter.
func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", models.ErrInvalidInput, name)
	}
	return n, nil
}
