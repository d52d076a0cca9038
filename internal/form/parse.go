// Package form binds catalogue fields to HTML form controls. A Controller
// parses submitted values by field kind and records per-field errors; a
// Control is the pre-populated, render-ready view of one field.
package form

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/vladpavlovski/phm-sub006/internal/catalog"
)

// Layouts used for temporal kinds. Date and time match the HTML5 input
// value formats. Date-times are stored as RFC 3339 and shown in a
// datetime-local input without zone; a zoneless submission is read as UTC.
const (
	DateLayout          = "2006-01-02"
	TimeLayout          = "15:04"
	DateTimeLayout      = time.RFC3339
	DateTimeLocalLayout = "2006-01-02T15:04"
)

// FieldError is a validation failure of one field. Its message is shown
// verbatim as helper text.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Message }

func invalid(f catalog.Field, format string, args ...any) *FieldError {
	return &FieldError{Field: f.Name, Message: fmt.Sprintf(format, args...)}
}

// ParseValue converts one raw input into the stored value of the field.
// Temporal values are validated and kept in their canonical string layout.
// An empty string parses to nil.
func ParseValue(f catalog.Field, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if f.Kind == catalog.KindBool {
			return false, nil
		}
		return nil, nil
	}
	switch f.Kind {
	case catalog.KindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, invalid(f, "%s must be a whole number", f.Label)
		}
		return n, nil
	case catalog.KindFloat:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, invalid(f, "%s must be a number", f.Label)
		}
		return n, nil
	case catalog.KindBool:
		if raw == "on" {
			return true, nil
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, invalid(f, "%s must be true or false", f.Label)
		}
		return b, nil
	case catalog.KindDate:
		d, err := time.Parse(DateLayout, raw)
		if err != nil {
			return nil, invalid(f, "%s must be a date (YYYY-MM-DD)", f.Label)
		}
		return d.Format(DateLayout), nil
	case catalog.KindTime:
		d, err := time.Parse(TimeLayout, raw)
		if err != nil {
			return nil, invalid(f, "%s must be a time (HH:MM)", f.Label)
		}
		return d.Format(TimeLayout), nil
	case catalog.KindDateTime:
		d, err := parseDateTime(raw)
		if err != nil {
			return nil, invalid(f, "%s must be a date and time", f.Label)
		}
		return d.UTC().Format(DateTimeLayout), nil
	case catalog.KindSelect:
		if !slices.Contains(f.Options, raw) {
			return nil, invalid(f, "%s must be one of %s", f.Label, strings.Join(f.Options, ", "))
		}
		return raw, nil
	default:
		return raw, nil
	}
}

// parseDateTime accepts RFC 3339 and the datetime-local value, with or
// without seconds.
func parseDateTime(raw string) (time.Time, error) {
	d, err := time.Parse(DateTimeLayout, raw)
	if err == nil {
		return d, nil
	}
	for _, layout := range []string{DateTimeLocalLayout, DateTimeLocalLayout + ":05"} {
		if d, lerr := time.Parse(layout, raw); lerr == nil {
			return d, nil
		}
	}
	return time.Time{}, err
}

// FormatValue renders a stored value back into an input value.
func FormatValue(f catalog.Field, v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		if f.Kind == catalog.KindDateTime {
			if d, err := time.Parse(DateTimeLayout, x); err == nil {
				return d.UTC().Format(DateTimeLocalLayout)
			}
		}
		return x
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		switch f.Kind {
		case catalog.KindDate:
			return x.Format(DateLayout)
		case catalog.KindTime:
			return x.Format(TimeLayout)
		default:
			return x.UTC().Format(DateTimeLocalLayout)
		}
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
