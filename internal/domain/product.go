package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ProductFamily struct {
	ID          int
	Name        string
	Description string
	CreatedAt   time.Time
}

type Product struct {
	ID                 int
	Name               string
	Code               *string
	Description        string
	FamilyID           *int
	FamilyName         string
	Tags               []string
	BasePrice          decimal.Decimal
	ProductionTimeDays int
	IsActive           bool
	CreatedAt          time.Time
}

// JoinTags is the storage form of Tags.
func JoinTags(tags []string) string {
	return strings.Join(CleanTags(tags), ",")
}

func SplitTags(s string) []string {
	return CleanTags(strings.Split(s, ","))
}

// CleanTags trims tags and drops empties and duplicates, keeping order.
func CleanTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
