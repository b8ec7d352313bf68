package description

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Formatter converts a raw value into its canonical string form for a
// declared schema type.
type Formatter interface {
	Format(typ string, value any) (string, error)
}

// FormatterFunc adapts a function to Formatter.
type FormatterFunc func(typ string, value any) (string, error)

func (f FormatterFunc) Format(typ string, value any) (string, error) { return f(typ, value) }

// Schema types understood by SchemaFormatter.
const (
	FormatDateTime     = "date-time"
	FormatDateTimeHTTP = "date-time-http"
	FormatDate         = "date"
	FormatTime         = "time"
	FormatTimestamp    = "timestamp"
	FormatBoolString   = "boolean-string"
)

const httpTimeLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// inputLayouts are tried in order when a date value arrives as a string.
var inputLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// SchemaFormatter is the default Formatter. Date output is always UTC.
// Unrecognized types pass the value through as fmt.Sprint would print it.
type SchemaFormatter struct {
	// Now resolves the "now" keyword. Defaults to time.Now.
	Now func() time.Time
}

func NewSchemaFormatter() *SchemaFormatter {
	return &SchemaFormatter{Now: time.Now}
}

func (f *SchemaFormatter) Format(typ string, value any) (string, error) {
	switch typ {
	case FormatDateTime, FormatDateTimeHTTP, FormatDate, FormatTime, FormatTimestamp:
		t, err := f.toTime(value)
		if err != nil {
			return "", &Error{
				Code:    InvalidFormat,
				Message: fmt.Sprintf("description: cannot format %v as %s: %v", value, typ, err),
				Name:    typ,
				Cause:   err,
			}
		}
		t = t.UTC()
		switch typ {
		case FormatDateTime:
			return t.Format("2006-01-02T15:04:05Z"), nil
		case FormatDateTimeHTTP:
			return t.Format(httpTimeLayout), nil
		case FormatDate:
			return t.Format("2006-01-02"), nil
		case FormatTime:
			return t.Format("15:04:05"), nil
		default:
			return strconv.FormatInt(t.Unix(), 10), nil
		}
	case FormatBoolString:
		if asBool(value) {
			return "true", nil
		}
		return "false", nil
	default:
		if value == nil {
			return "", nil
		}
		return fmt.Sprint(value), nil
	}
}

func (f *SchemaFormatter) now() time.Time {
	if f.Now == nil {
		return time.Now()
	}
	return f.Now()
}

func (f *SchemaFormatter) toTime(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return time.Time{}, fmt.Errorf("nil time")
		}
		return *v, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, fmt.Errorf("empty value")
		}
		if strings.EqualFold(s, "now") {
			return f.now(), nil
		}
		if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Unix(secs, 0), nil
		}
		for _, layout := range inputLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	}
	if secs, ok := asFloat(value); ok {
		whole, frac := math.Modf(secs)
		return time.Unix(int64(whole), int64(frac*1e9)), nil
	}
	return time.Time{}, fmt.Errorf("unsupported type %T", value)
}
