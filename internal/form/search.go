package form

import (
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/plumber-cd/ez-masters/internal/domain"
)

// rangeSeparator splits "lo..hi" criteria of number and date fields.
const rangeSeparator = ".."

// Filter returns the records matching every non-empty criterion, in their
// original order.
func Filter(def *domain.FormDefinition, records []domain.Record, criteria domain.Record) []domain.Record {
	filtered := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		if Matches(def, criteria, rec) {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}

// Matches reports whether rec satisfies all criteria. Empty criteria match
// everything.
func Matches(def *domain.FormDefinition, criteria, rec domain.Record) bool {
	for key, criterion := range criteria {
		criterion = strings.TrimSpace(criterion)
		if criterion == "" {
			continue
		}
		value := rec[key]
		f, ok := def.Field(key)
		if !ok {
			if key == def.IDField {
				if strings.TrimSpace(value) != criterion {
					return false
				}
				continue
			}
			f = domain.FieldSchema{Key: key, Kind: domain.FieldKindText}
		}
		if !matchField(f, criterion, value) {
			return false
		}
	}
	return true
}

func matchField(f domain.FieldSchema, criterion, value string) bool {
	switch f.Kind {
	case domain.FieldKindSelect:
		if criterion == domain.SelectAllOption {
			return true
		}
		return fold(criterion) == fold(strings.TrimSpace(value))
	case domain.FieldKindBoolean:
		want, err := domain.ParseBool(criterion)
		if err != nil {
			return fold(criterion) == fold(strings.TrimSpace(value))
		}
		got, err := domain.ParseBool(value)
		return err == nil && got == want
	case domain.FieldKindNumber:
		got, err := domain.ParseNumber(value)
		if err != nil {
			return false
		}
		return matchRange(criterion, got, domain.ParseNumber, func(a, b float64) int {
			switch {
			case a < b:
				return -1
			case a > b:
				return 1
			}
			return 0
		})
	case domain.FieldKindDate:
		got, err := domain.ParseDate(value)
		if err != nil {
			return false
		}
		return matchRange(criterion, got, domain.ParseDate, func(a, b time.Time) int {
			return a.Compare(b)
		})
	default:
		return strings.Contains(fold(value), fold(criterion))
	}
}

// matchRange handles "v", "lo..hi", "lo.." and "..hi". Unparsable bounds never
// match.
func matchRange[T any](criterion string, got T, parse func(string) (T, error), compare func(a, b T) int) bool {
	lo, hi, isRange := strings.Cut(criterion, rangeSeparator)
	if !isRange {
		want, err := parse(criterion)
		return err == nil && compare(got, want) == 0
	}
	if lo = strings.TrimSpace(lo); lo != "" {
		bound, err := parse(lo)
		if err != nil || compare(got, bound) < 0 {
			return false
		}
	}
	if hi = strings.TrimSpace(hi); hi != "" {
		bound, err := parse(hi)
		if err != nil || compare(got, bound) > 0 {
			return false
		}
	}
	return true
}

func fold(s string) string {
	return cases.Fold().String(s)
}
