package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/movelaria/search-service/pkg/errors"
	"github.com/movelaria/search-service/pkg/logger"
	"github.com/movelaria/search-service/pkg/validator"
)

// Response is the standard JSON envelope used by both REST surfaces:
// {success, data?, error?, details?}.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes a 200 response wrapping data in the success envelope.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

// WriteError writes a standardized error envelope based on the error type.
// AppErrors keep their status and message; validation errors become a 400
// with per-field details; anything else is an opaque 500. It prefers the
// request-scoped logger from context (set by the RequestLogger middleware)
// over the fallback logger.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteValidationError(w, valErr)
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		WriteJSON(w, appErr.Status, Response{Success: false, Error: appErr.Message})
		return
	}

	status := apperrors.HTTPStatus(err)
	message := "an internal error occurred"

	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		message = err.Error()
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		message = "resource not found"
		status = http.StatusNotFound
	}

	// Internal details are logged, never leaked to the caller.
	if status == http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, Response{Success: false, Error: message})
}

// WriteValidationError writes a 400 envelope with per-field details.
// The whole request fails; no partially validated state is returned.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "validationError",
			Details: valErr.Fields(),
		})
		return
	}

	WriteJSON(w, http.StatusBadRequest, Response{Success: false, Error: err.Error()})
}
