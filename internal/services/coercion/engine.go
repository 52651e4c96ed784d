// Package coercion turns submitted form values into typed document fields.
//
// Every field is converted according to its declared FieldType. Values that do
// not parse are kept as their original text and reported as warnings, so a
// partially valid form still saves what it can.
package coercion

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mcoot/fxdesk/internal/dependencies/clock"
	"github.com/mcoot/fxdesk/internal/dependencies/random"
	"github.com/mcoot/fxdesk/internal/model"
)

// currencyFields hold ISO currency codes and are always upper-cased
var currencyFields = map[string]bool{
	"from_curr": true,
	"to_curr":   true,
}

// dateLayouts are tried in order when parsing Date fields
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Warning is a problem with a single submitted field
type Warning struct {
	Field   string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Field, w.Message)
}

// Result is a coerced document plus anything that could not be converted
type Result struct {
	Document model.Document
	Warnings []Warning
}

// Empty reports whether no field survived coercion
func (r Result) Empty() bool {
	for field := range r.Document {
		if !model.IsReserved(field) {
			return false
		}
	}
	return true
}

// Coerce converts raw form values using the schema. Blank values are dropped,
// reserved field names are rejected and currency codes are upper-cased.
func Coerce(raw map[string]any, schema Schema) Result {
	res := Result{Document: model.Document{}}

	for field, value := range raw {
		if isBlank(value) {
			continue
		}
		if model.IsReserved(field) {
			res.warn(field, model.ErrReservedFieldName.Error())
			continue
		}

		fieldType, ok := schema[field]
		if !ok {
			res.warn(field, "no field type declared, stored as text")
			res.Document[field] = asText(value)
			continue
		}

		converted, err := convert(value, fieldType)
		if err != nil {
			res.warn(field, err.Error())
			res.Document[field] = asText(value)
			continue
		}
		res.Document[field] = converted
	}

	for field := range currencyFields {
		if s, ok := res.Document[field].(string); ok {
			res.Document[field] = strings.ToUpper(s)
		}
	}

	return res
}

func (r *Result) warn(field, message string) {
	r.Warnings = append(r.Warnings, Warning{Field: field, Message: message})
}

func convert(value any, t FieldType) (any, error) {
	switch t {
	case TypeString:
		return asText(value), nil
	case TypeInteger:
		return toInteger(value)
	case TypeFloat:
		return toFloat(value)
	case TypeBoolean:
		return toBoolean(value)
	case TypeDate:
		return toDate(value)
	default:
		return nil, fmt.Errorf("unsupported field type %q", t)
	}
}

func toInteger(value any) (any, error) {
	switch v := value.(type) {
	case int, int32, int64:
		return v, nil
	case float64:
		n, err := wholeFloat(v)
		if err != nil {
			return nil, err
		}
		return n, nil
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			if n, err := wholeFloat(f); err == nil {
				return n, nil
			}
		}
		return nil, fmt.Errorf("invalid integer %q", v)
	default:
		return nil, fmt.Errorf("cannot use %T as an integer", value)
	}
}

// int64 bounds as float64. 2^63 itself is out of range.
const (
	minInt64Float = -9.223372036854775808e18
	maxInt64Float = 9.223372036854775808e18
)

// wholeFloat converts an integral float that fits in an int64
func wholeFloat(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not a whole number", f)
	}
	if f < minInt64Float || f >= maxInt64Float {
		return 0, fmt.Errorf("%v is out of the integer range", f)
	}
	return int64(f), nil
}

func toFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("invalid number %q", v)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("cannot use %T as a number", value)
	}
}

func toBoolean(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "y", "on", "t":
			return true, nil
		case "false", "0", "no", "n", "off", "f":
			return false, nil
		}
		return nil, fmt.Errorf("invalid boolean %q", v)
	default:
		return nil, fmt.Errorf("cannot use %T as a boolean", value)
	}
}

func toDate(value any) (any, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return nil, fmt.Errorf("invalid date %q", v)
	default:
		return nil, fmt.Errorf("cannot use %T as a date", value)
	}
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}

func asText(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(v)
	}
}

// Engine stamps bookkeeping fields onto coerced documents
type Engine struct {
	clock  clock.Clock
	random random.Random
}

// New creates a new coercion Engine
func New(clk clock.Clock, rnd random.Random) *Engine {
	return &Engine{
		clock:  clk,
		random: rnd,
	}
}

// PrepareInsert coerces a new document and assigns its id and timestamps
func (e *Engine) PrepareInsert(raw map[string]any, schema Schema) Result {
	res := Coerce(raw, schema)
	if len(res.Document) == 0 {
		return res
	}
	now := e.clock.Now().UTC()
	res.Document[model.FieldID] = e.random.UUID()
	res.Document[model.FieldCreatedAt] = now
	res.Document[model.FieldUpdatedAt] = now
	return res
}

// PrepareUpdate coerces changed fields and refreshes the update timestamp
func (e *Engine) PrepareUpdate(raw map[string]any, schema Schema) Result {
	res := Coerce(raw, schema)
	if len(res.Document) == 0 {
		return res
	}
	res.Document[model.FieldUpdatedAt] = e.clock.Now().UTC()
	return res
}
