package normalise

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ledgerlens/ledgerlens-cli/internal/core/domain"
)

// dateLayouts are the timestamp formats observed in upstream exports,
// tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02.01.2006", // DD.MM.YYYY, the export API's filter format
}

// coerce converts a raw scalar to the Go representation of the given
// field type. The second return is false when the value is present but
// not convertible. The third return is false when the value should be
// treated as absent (empty strings: XML attributes are never omitted,
// only left blank).
func coerce(value any, t domain.FieldType) (any, bool, bool) {
	if value == nil {
		return nil, true, false
	}
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return nil, true, false
	}

	switch t {
	case domain.FieldToken, domain.FieldText:
		s, ok := stringify(value)
		return s, ok, ok

	case domain.FieldFloat:
		f, ok := toFloat(value)
		return f, ok, ok

	case domain.FieldInteger:
		i, ok := toInt(value)
		return i, ok, ok

	case domain.FieldDate:
		d, ok := toDate(value)
		return d, ok, ok

	default:
		return nil, false, false
	}
}

// stringify renders a scalar as a string without numeric coercion the
// other way: integers render without a decimal point, so a raw level
// code 10 becomes "10", never 10 or "10.0".
func stringify(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case bool:
		return strconv.FormatBool(v), true
	default:
		return "", false
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toInt(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		// JSON numbers decode as float64; accept only integral values.
		if v == math.Trunc(v) {
			return int64(v), true
		}
		return 0, false
	case json.Number:
		i, err := v.Int64()
		return i, err == nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}

func toDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if d, err := time.Parse(layout, s); err == nil {
				return d, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}
