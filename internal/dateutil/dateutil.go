// Package dateutil formats dates found in document data.
//
// Layouts use user-friendly tokens (YYYY, MMMM, D...) rather than Go's
// reference time, so template authors never need to know "2006-01-02".
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidDateFormat indicates an invalid layout string.
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrInvalidDate indicates a value that cannot be read as a date.
	ErrInvalidDate = errors.New("invalid date value")
)

// MaxDateFormatLength limits layout length to prevent abuse.
const MaxDateFormatLength = 50

// DefaultDateFormat is used when the layout is empty.
const DefaultDateFormat = "YYYY-MM-DD"

// dateTokens maps layout tokens to Go time format components.
// Ordered by length descending for greedy matching.
var dateTokens = []struct {
	token string
	goFmt string
}{
	{"YYYY", "2006"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"YY", "06"},
	{"MM", "01"},
	{"DD", "02"},
	{"M", "1"},
	{"D", "2"},
}

// DatePresets provides named shortcuts for common layouts.
var DatePresets = map[string]string{
	"iso":      "YYYY-MM-DD",
	"european": "DD/MM/YYYY",
	"us":       "MM/DD/YYYY",
	"long":     "MMMM D, YYYY",
	"legal":    "[the] D [day of] MMMM, YYYY",
}

// inputLayouts are the accepted string encodings of a date value, tried in order.
var inputLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDateFormat converts a token layout to Go's time format.
// Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D.
// Brackets escape literal text: [Date] preserves "Date" literally.
// Other characters outside brackets are preserved as literals.
func ParseDateFormat(format string) (string, error) {
	if format == "" {
		return "", fmt.Errorf("%w: format cannot be empty", ErrInvalidDateFormat)
	}
	if len(format) > MaxDateFormatLength {
		return "", fmt.Errorf("%w: format exceeds %d characters", ErrInvalidDateFormat, MaxDateFormatLength)
	}

	var b strings.Builder
	b.Grow(len(format) + 10)

	for i := 0; i < len(format); {
		if format[i] == '[' {
			end := strings.IndexByte(format[i+1:], ']')
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed bracket at position %d", ErrInvalidDateFormat, i)
			}
			b.WriteString(format[i+1 : i+1+end])
			i += end + 2
			continue
		}

		n := writeToken(&b, format[i:])
		if n == 0 {
			b.WriteByte(format[i])
			n = 1
		}
		i += n
	}

	return b.String(), nil
}

// writeToken writes the Go equivalent of the token prefixing s and returns
// the number of bytes consumed, or 0 when s does not start with a token.
func writeToken(b *strings.Builder, s string) int {
	for _, t := range dateTokens {
		if strings.HasPrefix(s, t.token) {
			b.WriteString(t.goFmt)
			return len(t.token)
		}
	}
	return 0
}

// ResolveLayout returns the Go layout for a preset name or token layout.
// An empty layout selects DefaultDateFormat.
func ResolveLayout(layout string) (string, error) {
	if layout == "" {
		layout = DefaultDateFormat
	}
	if preset, ok := DatePresets[strings.ToLower(layout)]; ok {
		layout = preset
	}
	return ParseDateFormat(layout)
}

// ParseDate reads a date value: a time.Time, or a string in ISO 8601 date,
// RFC 3339 or "YYYY-MM-DD hh:mm:ss" form. The strings "today" and "auto"
// resolve to now.
func ParseDate(value any, now time.Time) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return time.Time{}, fmt.Errorf("%w: nil time", ErrInvalidDate)
		}
		return *v, nil
	case string:
		s := strings.TrimSpace(v)
		switch strings.ToLower(s) {
		case "today", "auto":
			return now, nil
		}
		for _, layout := range inputLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, v)
	default:
		return time.Time{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidDate, value)
	}
}

// Format reads value with ParseDate and renders it with layout
// (a preset name or token layout).
func Format(value any, layout string, now time.Time) (string, error) {
	goFmt, err := ResolveLayout(layout)
	if err != nil {
		return "", err
	}
	t, err := ParseDate(value, now)
	if err != nil {
		return "", err
	}
	return t.Format(goFmt), nil
}
