package sale

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RequiredKeys are the keys a mapping must carry to be accepted as a
// sale record. Extra keys are allowed and preserved.
var RequiredKeys = []string{"order_id", "customer_name", "product", "quantity", "price", "date"}

// ShapeError describes one reason a mapping failed shape validation.
type ShapeError struct {
	Field  string
	Reason string
}

func (e ShapeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// CheckShape validates that a decoded mapping plausibly represents a
// sale record: all required keys present, quantity parseable as an
// integer, price parseable as a number, and date shaped like an ISO
// date (a time component after 'T' is ignored; no calendar range check).
//
// This is deliberately looser than field validation: it guards against
// malformed or malicious files, not user typos. An empty result means
// the mapping passed.
func CheckShape(fields map[string]any) []ShapeError {
	var errs []ShapeError

	for _, key := range RequiredKeys {
		if _, ok := fields[key]; !ok {
			errs = append(errs, ShapeError{Field: key, Reason: "missing required key"})
		}
	}
	if len(errs) > 0 {
		return errs
	}

	if _, err := strconv.ParseInt(strings.TrimSpace(ValueString(fields["quantity"])), 10, 64); err != nil {
		errs = append(errs, ShapeError{Field: "quantity", Reason: "not an integer"})
	}
	if _, err := strconv.ParseFloat(strings.TrimSpace(ValueString(fields["price"])), 64); err != nil {
		errs = append(errs, ShapeError{Field: "price", Reason: "not a number"})
	}
	if !looseDateOK(ValueString(fields["date"])) {
		errs = append(errs, ShapeError{Field: "date", Reason: "not an ISO date"})
	}

	return errs
}

// looseDateOK checks that a value splits into exactly three numeric
// `-`-separated segments after discarding any time component. Month 13
// passes here on purpose; the strict calendar parse belongs to the form
// and update paths.
func looseDateOK(s string) bool {
	if i := strings.Index(s, "T"); i >= 0 {
		s = s[:i]
	}
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
		for _, c := range p {
			if c < '0' || c > '9' {
				return false
			}
		}
	}
	return true
}

// ValueString renders a decoded mapping value as its string form.
// JSON numbers keep their literal representation.
func ValueString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Strict field validation, shared by the submission form and the
// partial-update path. Each parser returns the typed value or an error
// whose message is suitable for a field-keyed response.

var (
	errQuantityInt   = errors.New("must be an integer")
	errQuantityRange = errors.New("must be at least 1")
	errPriceNumber   = errors.New("must be a number")
	errPriceRange    = errors.New("must be zero or greater")
	errDateFormat    = errors.New("must be a valid date in YYYY-MM-DD format")
	errDateFuture    = errors.New("date cannot be in the future")
	errRequired      = errors.New("this field is required")
)

// ParseQuantity parses a quantity field: integer, at least 1.
func ParseQuantity(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errQuantityInt
	}
	if n < 1 {
		return 0, errQuantityRange
	}
	return n, nil
}

// ParsePrice parses a price field: numeric, zero or greater.
func ParsePrice(s string) (float64, error) {
	p, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errPriceNumber
	}
	if p < 0 {
		return 0, errPriceRange
	}
	return p, nil
}

// ParseDate parses a strict YYYY-MM-DD calendar date that is not in
// the future. Unlike the shape check, an out-of-range month or day is
// rejected here.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, errDateFormat
	}
	// Parsed dates are midnight UTC, so "today" never compares as future.
	if d.After(time.Now().UTC()) {
		return time.Time{}, errDateFuture
	}
	return d, nil
}

// RequireText validates a non-empty text field.
func RequireText(s string) (string, error) {
	if strings.TrimSpace(s) == "" {
		return "", errRequired
	}
	return s, nil
}

// FieldErrors collects validation messages keyed by field name.
// The NonFieldKey entry carries errors not tied to a single field,
// such as a uniqueness conflict.
type FieldErrors map[string][]string

// NonFieldKey is the FieldErrors key for record-level errors.
const NonFieldKey = "__all__"

// Add appends a message for a field.
func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// Empty reports whether no errors were collected.
func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}
