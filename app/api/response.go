// Package api holds the wire formats shared by the HTTP handlers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/hlog"

	"github.com/mytheresa/catalog-service/validation"
)

// ValidationErrorResponse is the 400 body for a rejected field.
type ValidationErrorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field"`
	Message string `json:"message"`
	Input   any    `json:"input"`
}

// MessageResponse is the body of successful writes.
type MessageResponse struct {
	Message string `json:"message"`
}

// WriteJSON writes data as a JSON response.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("failed to encode JSON response")
	}
}

// WriteMessage writes a MessageResponse.
func WriteMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	WriteJSON(w, r, status, MessageResponse{Message: message})
}

// WriteError writes {"error": message}.
func WriteError(w http.ResponseWriter, r *http.Request, status int, message string) {
	WriteJSON(w, r, status, map[string]string{"error": message})
}

// WriteValidationError writes a 400 describing the rejected field.
func WriteValidationError(w http.ResponseWriter, r *http.Request, verr *validation.Error) {
	WriteJSON(w, r, http.StatusBadRequest, ValidationErrorResponse{
		Error:   "validation failed",
		Field:   verr.Field,
		Message: verr.Message,
		Input:   verr.Input,
	})
}

// AsValidationError reports whether err carries a *validation.Error.
func AsValidationError(err error) (*validation.Error, bool) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// PathID parses the {id} path value as a positive integer.
func PathID(r *http.Request) (uint, *validation.Error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, &validation.Error{Field: "id", Message: "must be a positive integer", Input: raw}
	}
	return uint(id), nil
}

// ParseForm parses a multipart or urlencoded request body.
func ParseForm(r *http.Request, maxMemory int64) error {
	if err := r.ParseMultipartForm(maxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}

// ParseLimitedForm caps the body at maxBytes before parsing it. It returns
// false after writing a 413 for an oversized body or a 400 for a malformed one.
func ParseLimitedForm(w http.ResponseWriter, r *http.Request, maxBytes, maxMemory int64) bool {
	if maxBytes > 0 {
		if r.ContentLength > maxBytes {
			WriteError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	if err := ParseForm(r, maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, r, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		WriteError(w, r, http.StatusBadRequest, "invalid form body")
		return false
	}
	return true
}
