package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/spigell/resume-rank/internal/ai"
	"github.com/spigell/resume-rank/internal/screening"
	"github.com/spigell/resume-rank/internal/storage"
)

// ValidationError reports a malformed request body. Its message is returned
// to the caller as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

type errorResponse struct {
	Error string `json:"error"`
}

// statusFor maps an error to the HTTP status returned to the caller.
func statusFor(err error) int {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr),
		errors.Is(err, screening.ErrUnsupportedFormat),
		errors.Is(err, storage.ErrInvalidURI),
		errors.Is(err, screening.ErrEmptyInput):
		return http.StatusBadRequest
	case errors.Is(err, screening.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ai.ErrInvocationFailed),
		errors.Is(err, storage.ErrUnavailable),
		errors.Is(err, screening.ErrResponseParse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// internalErrorBody is sent when the real response cannot be encoded.
var internalErrorBody = []byte(`{"error":"internal server error"}` + "\n")

// writeJSON encodes body before any header is written so an unencodable value
// becomes a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, body any) error {
	payload, err := json.Marshal(body)

	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write(internalErrorBody)
		return fmt.Errorf("encode response: %w", err)
	}

	w.WriteHeader(status)
	_, _ = w.Write(append(payload, '\n'))
	return nil
}

func (h *handlers) writeError(w http.ResponseWriter, log *zap.Logger, err error) {
	status := statusFor(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
		log.Error("request failed", zap.Error(err))
	} else {
		log.Warn("request rejected", zap.Int("status", status), zap.Error(err))
	}

	if err := writeJSON(w, status, errorResponse{Error: msg}); err != nil {
		log.Error("writing error response", zap.Error(err))
	}
}
