package commons

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	apperrors "mfgtrack/internal/errors"
)

// PathID parses a positive integer URL parameter.
func PathID(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+name, apperrors.ValidationDetail{
			Field:   name,
			Message: name + " must be a positive integer",
		})
	}
	return id, nil
}

// QueryInt reads an optional integer query parameter, returning def when it
// is absent and a validation error when it is malformed or below min.
func QueryInt(r *http.Request, name string, def, min int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min {
		return 0, apperrors.NewValidationError("invalid "+name, apperrors.ValidationDetail{
			Field:   name,
			Message: name + " must be an integer of at least " + strconv.Itoa(min),
		})
	}
	return n, nil
}
