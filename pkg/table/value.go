// pkg/table/value.go
package table

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// DateTimeLayout is the canonical textual form for datetime cells when they
// are serialized (prepared files, warehouse TEXT columns)
const DateTimeLayout = "2006-01-02 15:04:05"

// timeFormats are tried in order when coercing text to a datetime.
// Covers the formats observed in the raw entity files.
var timeFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
	"02/Jan/2006",
}

// CoerceString converts a non-missing cell to its textual form
func CoerceString(v any) (string, error) {
	if v == nil {
		return "", errors.New("nil value")
	}
	if t, ok := v.(time.Time); ok {
		return FormatTime(t), nil
	}
	return cast.ToStringE(v)
}

// CoerceInt64 converts a cell to a 64-bit integer. Floating-point inputs
// are accepted only when integral; lossy truncation counts as failure.
func CoerceInt64(v any) (int64, error) {
	if v == nil {
		return 0, errors.New("nil value")
	}
	switch val := v.(type) {
	case float32:
		return floatToInt64(float64(val))
	case float64:
		return floatToInt64(val)
	case string:
		cleaned := strings.TrimSpace(val)
		if cleaned == "" {
			return 0, errors.New("empty string")
		}
		// Allow integral decimal text like "42.0"
		if strings.Contains(cleaned, ".") {
			f, err := cast.ToFloat64E(cleaned)
			if err != nil {
				return 0, err
			}
			return floatToInt64(f)
		}
		return cast.ToInt64E(cleaned)
	case []byte:
		return CoerceInt64(string(val))
	case time.Time:
		return 0, fmt.Errorf("cannot convert %T to int", v)
	default:
		return cast.ToInt64E(v)
	}
}

// CoerceFloat64 converts a cell to a 64-bit float
func CoerceFloat64(v any) (float64, error) {
	if v == nil {
		return 0, errors.New("nil value")
	}
	switch val := v.(type) {
	case string:
		cleaned := strings.TrimSpace(val)
		if cleaned == "" {
			return 0, errors.New("empty string")
		}
		return cast.ToFloat64E(cleaned)
	case []byte:
		return CoerceFloat64(string(val))
	case time.Time:
		return 0, fmt.Errorf("cannot convert %T to float", v)
	default:
		return cast.ToFloat64E(v)
	}
}

// CoerceTime converts a cell to a datetime, trying the known layouts
func CoerceTime(v any) (time.Time, error) {
	if v == nil {
		return time.Time{}, errors.New("nil value")
	}
	switch val := v.(type) {
	case time.Time:
		return val, nil
	case string:
		cleaned := strings.TrimSpace(val)
		if cleaned == "" {
			return time.Time{}, errors.New("empty string")
		}
		for _, format := range timeFormats {
			if t, err := time.Parse(format, cleaned); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("cannot parse time from %q", cleaned)
	case []byte:
		return CoerceTime(string(val))
	default:
		return time.Time{}, fmt.Errorf("cannot convert %T to time", v)
	}
}

// Coerce converts a cell to the representation matching kind
func Coerce(v any, kind Kind) (any, error) {
	switch kind {
	case KindText:
		s, err := CoerceString(v)
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindInt:
		i, err := CoerceInt64(v)
		if err != nil {
			return nil, err
		}
		return i, nil
	case KindFloat:
		f, err := CoerceFloat64(v)
		if err != nil {
			return nil, err
		}
		return f, nil
	case KindDateTime:
		t, err := CoerceTime(v)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported target kind: %s", kind)
	}
}

// FormatTime renders a datetime cell; date-only values omit the time part
func FormatTime(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(DateTimeLayout)
}

// FormatValue renders any non-missing cell for a delimited file
func FormatValue(v any) string {
	if v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case time.Time:
		return FormatTime(val)
	case float64:
		return formatFloat(val)
	case float32:
		return formatFloat(float64(val))
	default:
		return cast.ToString(val)
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return cast.ToString(f)
}

func floatToInt64(f float64) (int64, error) {
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("non-integral float %v", f)
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, fmt.Errorf("float %v overflows int64", f)
	}
	return int64(f), nil
}
