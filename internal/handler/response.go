package handler

// Every error response has the same shape:
//
//	{"error": "not_found", "message": "art piece not found with id abc123"}

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/moodart/internal/apperror"
	"github.com/sakif/moodart/internal/artgen"
)

// maxBodyBytes bounds request bodies; the largest legitimate body is a
// generate request with a long prompt.
const maxBodyBytes = 64 << 10

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable, e.g. "not_found"
	Message string `json:"message"` // human-readable
}

// writeJSON sets headers and status before encoding; anything written
// after the first body byte is ignored by net/http.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// decodeJSON reads a single JSON object from the request body into dst.
// Malformed bodies come back as apperror.ErrValidation.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.ValidationFailed("body", "request body is required")
		}
		return apperror.ValidationFailed("body", fmt.Sprintf("invalid JSON: %v", err))
	}
	return nil
}

// writeError maps an error from the service layer to a status code.
// This is the only place that knows the mapping.
func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, artgen.ErrInvalidPrompt) {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_prompt",
			Message: artgen.ErrInvalidPrompt.Error(),
		})
		return
	}

	var genErr *artgen.Error
	if errors.As(err, &genErr) {
		status := http.StatusBadGateway
		switch genErr.Kind {
		case artgen.KindRateLimited:
			status = http.StatusTooManyRequests
		case artgen.KindConnectivityFailure:
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, ErrorResponse{
			Error:   genErr.Kind.String(),
			Message: genErr.Message,
		})
		return
	}

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrBadRequest):
			status = http.StatusBadRequest
			errorType = "bad_request"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	// Never expose internal error details to the client.
	slog.Error("unhandled error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
