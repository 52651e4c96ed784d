package model

import (
	"fmt"
	"maps"
	"strings"
)

// Reserved bookkeeping fields. Anything starting with ReservedPrefix is hidden
// from end-user forms and cannot be set through them.
const (
	ReservedPrefix = "_"
	FieldID        = "_id"
	FieldCreatedAt = "_created_at"
	FieldUpdatedAt = "_updated_at"
)

// IsReserved reports whether a field name belongs to the system
func IsReserved(field string) bool {
	return strings.HasPrefix(field, ReservedPrefix)
}

// Document is a schemaless record in a collection
type Document map[string]any

// ID returns the document identifier as stored, or nil
func (d Document) ID() any {
	return d[FieldID]
}

// Clone returns a shallow copy of the document
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return maps.Clone(d)
}

// Target names a collection inside a database
type Target struct {
	Database   string `json:"database"`
	Collection string `json:"collection"`
}

// Valid reports whether both names are set
func (t Target) Valid() bool {
	return strings.TrimSpace(t.Database) != "" && strings.TrimSpace(t.Collection) != ""
}

func (t Target) String() string {
	return t.Database + "." + t.Collection
}

// IDString renders a stored identifier the way forms and URLs carry it.
// Object identifiers are rendered as their hex form.
func IDString(id any) string {
	switch v := id.(type) {
	case nil:
		return ""
	case string:
		return v
	case interface{ Hex() string }:
		return v.Hex()
	default:
		return fmt.Sprint(v)
	}
}
