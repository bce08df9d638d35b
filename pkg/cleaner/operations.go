// pkg/cleaner/operations.go
package cleaner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateLayouts lists the activity-date layouts seen in inspection exports, most specific first
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006 03:04:05 PM",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"1/2/2006",
	"01-02-2006",
	"2006/01/02",
	"January 2 2006",
	"Jan 2, 2006",
	"02-Jan-2006",
}

// DetectDateLayout returns the first known layout that parses value, or "" if none does
func DetectDateLayout(value string) string {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return layout
		}
	}
	return ""
}

// dateParser infers a layout from the first parsable value and reuses it for the rest of the column.
// Values in a different layout fall back to a full scan of the known layouts.
type dateParser struct {
	layout string
}

// parse converts a cell into a calendar value. Nil and blank cells return (nil, nil).
func (p *dateParser) parse(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return val, nil
	case []byte:
		return p.parse(string(val))
	case string:
		cleaned := strings.TrimSpace(val)
		if cleaned == "" {
			return nil, nil
		}

		if p.layout != "" {
			if t, err := time.Parse(p.layout, cleaned); err == nil {
				return t, nil
			}
		}

		layout := DetectDateLayout(cleaned)
		if layout == "" {
			return nil, fmt.Errorf("cannot parse time from '%s'", cleaned)
		}
		if p.layout == "" {
			p.layout = layout
		}
		t, err := time.Parse(layout, cleaned)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to time", v)
	}
}

// toString converts a cell value to its string form; nil becomes ""
func toString(v interface{}) string {
	if v == nil {
		return ""
	}

	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		// Use Sprint as a fallback
		return fmt.Sprintf("%v", val)
	}
}

// toFloat converts numeric cells and numeric strings to float64
func toFloat(v interface{}) (float64, error) {
	if v == nil {
		return 0, errors.New("nil value")
	}

	switch val := v.(type) {
	case int:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case uint32:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	case float32:
		return float64(val), nil
	case float64:
		return val, nil
	case string:
		cleaned := strings.TrimSpace(val)
		if cleaned == "" {
			return 0, errors.New("empty string")
		}
		return strconv.ParseFloat(cleaned, 64)
	case []byte:
		return toFloat(string(val))
	default:
		return 0, fmt.Errorf("cannot convert %T to float", v)
	}
}

// ToFloat exposes the cleaner's numeric coercion to other packages
func ToFloat(v interface{}) (float64, error) {
	return toFloat(v)
}

// ValueKey returns a comparison key for exact value matching.
// The key includes a type family so "123" and 123 never match each other.
func ValueKey(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case string:
		return "s:" + val
	case []byte:
		return "s:" + string(val)
	case bool:
		return "b:" + strconv.FormatBool(val)
	case time.Time:
		return "t:" + val.UTC().Format(time.RFC3339Nano)
	default:
		if f, err := toFloat(val); err == nil {
			return "n:" + strconv.FormatFloat(f, 'g', -1, 64)
		}
		return fmt.Sprintf("%T:%v", val, val)
	}
}

// keySet builds a membership set from values using ValueKey
func keySet(values []interface{}) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[ValueKey(v)] = struct{}{}
	}
	return set
}

// rowIdentifier renders a key value for the audit trail
func rowIdentifier(v interface{}) string {
	if v == nil {
		return ""
	}
	return toString(v)
}
