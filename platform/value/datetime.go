package value

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateTimeLayout = "2006-01-02T15:04:05.000"
	zoneMarker     = "Z"
)

// FormatDateTime renders t in UTC with millisecond precision. The trailing Z
// is only written when the value carries an explicit timezone.
func FormatDateTime(t time.Time, explicitTZ bool) string {
	s := t.UTC().Format(dateTimeLayout)
	if explicitTZ {
		return s + zoneMarker
	}
	return s
}

// ParseDateTime is the inverse of FormatDateTime. It also accepts any
// RFC 3339 timestamp, which is normalized to UTC with an explicit timezone.
func ParseDateTime(s string) (Value, error) {
	if rest, ok := strings.CutSuffix(s, zoneMarker); ok {
		if t, err := time.Parse(dateTimeLayout, rest); err == nil {
			return DateTime(t, true), nil
		}
	}
	if t, err := time.Parse(dateTimeLayout, s); err == nil {
		return DateTime(t, false), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Value{}, fmt.Errorf("invalid dateTime %q: %w", s, err)
	}
	return DateTime(t, true), nil
}
