package coercion

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mcoot/fxdesk/internal/model"
)

// FieldType is the declared type of a form field
type FieldType string

const (
	TypeString  FieldType = "String"
	TypeInteger FieldType = "Integer"
	TypeFloat   FieldType = "Float"
	TypeBoolean FieldType = "Boolean"
	TypeDate    FieldType = "Date"
)

// FieldTypes lists every type in the order forms offer them
var FieldTypes = []FieldType{TypeString, TypeInteger, TypeFloat, TypeBoolean, TypeDate}

// ParseFieldType accepts a type name in any case
func ParseFieldType(s string) (FieldType, error) {
	for _, t := range FieldTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unsupported field type %q", s)
}

// Schema maps field names to their declared types
type Schema map[string]FieldType

// Fields returns the non-reserved field names in sorted order
func (s Schema) Fields() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		if !model.IsReserved(name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// suggestType returns the form default for a stored value. The second result
// is false for values no form field can represent.
func suggestType(v any) (FieldType, bool) {
	switch v.(type) {
	case string:
		return TypeString, true
	case bool:
		return TypeBoolean, true
	case int, int32, int64:
		return TypeInteger, true
	case float32, float64:
		return TypeFloat, true
	case time.Time:
		return TypeDate, true
	default:
		return "", false
	}
}

// SuggestSchema picks the type each form select starts on for the fields of
// existing documents. The first non-nil value seen for a field decides;
// reserved fields are skipped. Submitted forms always declare their own types.
func SuggestSchema(docs []model.Document) Schema {
	schema := Schema{}
	for _, doc := range docs {
		for field, value := range doc {
			if model.IsReserved(field) || value == nil {
				continue
			}
			if _, seen := schema[field]; seen {
				continue
			}
			if t, ok := suggestType(value); ok {
				schema[field] = t
			} else {
				schema[field] = TypeString
			}
		}
	}
	return schema
}
