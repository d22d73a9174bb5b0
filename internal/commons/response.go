package commons

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "mfgtrack/internal/errors"
)

type traceIDKey struct{}

const TraceIDHeader = "X-Trace-Id"

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceID returns the request trace id, or a fresh one when the request did
// not pass through the tracing middleware.
func TraceID(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.New().String()
}

type ErrorResponse struct {
	TraceID string                       `json:"traceId"`
	Error   string                       `json:"error"`
	Message string                       `json:"message"`
	Details []apperrors.ValidationDetail `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

func WriteValidationError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, message string, details ...apperrors.ValidationDetail) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		TraceID: TraceID(r.Context()),
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	}, logger)
}

// WriteError maps an application error to its status code. Anything that is
// not a typed error is logged and reported as a generic internal error.
func WriteError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	traceID := TraceID(r.Context())
	status, body := ErrorBody(traceID, err)

	switch status {
	case http.StatusInternalServerError:
		logger.Error("unexpected error", zap.String("traceId", traceID), zap.String("path", r.URL.Path), zap.Error(err))
	case http.StatusBadRequest:
		logger.Warn("rejected request", zap.String("traceId", traceID), zap.String("path", r.URL.Path), zap.Error(err))
	}

	WriteJSON(w, status, body, logger)
}

func ErrorBody(traceID string, err error) (int, ErrorResponse) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		return http.StatusBadRequest, ErrorResponse{TraceID: traceID, Error: "VALIDATION_ERROR", Message: ve.Message, Details: ve.Details}
	}
	if nf, ok := apperrors.IsNotFoundError(err); ok {
		return http.StatusNotFound, ErrorResponse{TraceID: traceID, Error: "NOT_FOUND", Message: nf.Message}
	}
	if ce, ok := apperrors.IsConflictError(err); ok {
		return http.StatusConflict, ErrorResponse{TraceID: traceID, Error: "CONFLICT", Message: ce.Message}
	}
	return http.StatusInternalServerError, ErrorResponse{TraceID: traceID, Error: "INTERNAL_ERROR", Message: "an unexpected error occurred"}
}

// UserMessage is the text shown to a person for err.
func UserMessage(err error) string {
	_, body := ErrorBody("", err)
	return body.Message
}

// DecodeJSON decodes the request body into dst and returns a validation
// error when the body is not valid JSON.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.NewValidationError("invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
	}
	return nil
}
