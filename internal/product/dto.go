package product

import (
	"net/url"
	"strconv"
	"strings"

	"mfgtrack/internal/dto"
	apperrors "mfgtrack/internal/errors"
	"mfgtrack/internal/product/repository"
)

// ParseListFilter reads search, family_id, active and the paging parameters.
func ParseListFilter(q url.Values, defaultPerPage, maxPerPage int) (repository.ListFilter, error) {
	page, details := dto.ParsePage(q, defaultPerPage, maxPerPage)
	f := repository.ListFilter{
		Search: strings.TrimSpace(q.Get("search")),
		Page:   page,
	}

	if v := strings.TrimSpace(q.Get("family_id")); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id <= 0 {
			details = append(details, apperrors.ValidationDetail{Field: "family_id", Message: "family_id must be a positive integer"})
		}
		f.FamilyID = id
	}

	if v := strings.TrimSpace(q.Get("active")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			details = append(details, apperrors.ValidationDetail{Field: "active", Message: "active must be true or false"})
		}
		f.ActiveOnly = b
	}

	if len(details) > 0 {
		return repository.ListFilter{}, apperrors.NewValidationError("invalid product filter", details...)
	}
	return f, nil
}
