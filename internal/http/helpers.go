package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"budgetd/internal/core"
	"budgetd/internal/log"
)

// respondJSON writes v as a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// respondError maps service errors to HTTP status codes: validation
// failures are 422 with a per-field payload, missing entities are 404,
// anything else is a logged 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var ve core.ValidationErrors
	if errors.As(err, &ve) {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"errors": ve.ByField(),
		})
		return
	}
	if errors.Is(err, core.ErrNotFound) {
		respondJSON(w, http.StatusNotFound, map[string]string{
			"error": "not found",
		})
		return
	}
	slog.ErrorContext(r.Context(), "Request failed",
		log.FieldError, err,
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	respondJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal error",
	})
}

// decodeJSON parses the request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var ve core.ValidationErrors
		ve.Add("body", "malformed request body: %v", err)
		return ve
	}
	return nil
}

// pathID extracts the {id} path segment as an int64.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		var ve core.ValidationErrors
		ve.Add("id", "must be a positive integer")
		return 0, ve
	}
	return id, nil
}

// queryYearMonth extracts the required year and month query parameters.
func queryYearMonth(r *http.Request) (year, month int, err error) {
	var ve core.ValidationErrors
	year, yerr := strconv.Atoi(r.URL.Query().Get("year"))
	if yerr != nil {
		ve.Add("year", "must be an integer")
	}
	month, merr := strconv.Atoi(r.URL.Query().Get("month"))
	if merr != nil {
		ve.Add("month", "must be an integer")
	}
	if len(ve) > 0 {
		return 0, 0, ve
	}
	return year, month, nil
}
