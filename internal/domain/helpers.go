package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical layout of date values.
const DateLayout = "02-Jan-2006"

// dateLayouts are accepted on input, canonical first.
var dateLayouts = []string{
	DateLayout,
	"02 Jan 2006",
	"2006-01-02",
	"02/01/2006",
	"2-Jan-2006",
}

// ---------- Parsing ----------

// ParsePositiveIntID parses a string as a positive integer.
func ParsePositiveIntID(input string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return 0, fmt.Errorf("must be a positive integer: %w", err)
	}
	if value < 1 {
		return 0, fmt.Errorf("must be a positive integer, got %d", value)
	}
	return value, nil
}

// ParseNumber parses a decimal number, ignoring surrounding whitespace.
func ParseNumber(text string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, fmt.Errorf("must be a number: %q", strings.TrimSpace(text))
	}
	return value, nil
}

// ParseDate parses a date in any accepted layout.
func ParseDate(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("must be a date like %s: %q", DateLayout, text)
}

// ParseBool parses a boolean field value.
func ParseBool(text string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true", "yes", "y", "1":
		return true, nil
	case "false", "no", "n", "0":
		return false, nil
	}
	return false, fmt.Errorf("must be true or false: %q", text)
}

// FormatBool renders a boolean the way records store it.
func FormatBool(b bool) string {
	return strconv.FormatBool(b)
}

// CheckValue verifies that a non-empty value is consistent with the field kind.
// Empty values are always consistent; presence is checked separately.
func CheckValue(f FieldSchema, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	switch f.Kind {
	case FieldKindNumber:
		_, err := ParseNumber(value)
		return err
	case FieldKindDate:
		_, err := ParseDate(value)
		return err
	case FieldKindBoolean:
		_, err := ParseBool(value)
		return err
	case FieldKindSelect:
		for _, option := range f.Options {
			if option == value {
				return nil
			}
		}
		return fmt.Errorf("must be one of %s", strings.Join(f.Options, ", "))
	}
	return nil
}

// CheckRequired reports why a required field value is missing, or nil.
func CheckRequired(f FieldSchema, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", f.Label)
	}
	return nil
}
