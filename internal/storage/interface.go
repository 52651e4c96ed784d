package storage

import (
	"context"
	"fmt"

	"github.com/mcoot/fxdesk/internal/model"
)

// UserStore persists user accounts
type UserStore interface {
	GetUser(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	UpdateUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, username string) error
}

// DocumentStore is the subset of a document database the application drives
type DocumentStore interface {
	Ping(ctx context.Context) error

	// Catalogue operations
	ListDatabases(ctx context.Context) ([]string, error)
	ListCollections(ctx context.Context, database string) ([]string, error)
	CreateCollection(ctx context.Context, target model.Target) error

	// Document operations
	Find(ctx context.Context, target model.Target) ([]model.Document, error)
	InsertOne(ctx context.Context, target model.Target, doc model.Document) error
	UpdateOne(ctx context.Context, target model.Target, id string, fields model.Document) (bool, error)
	DeleteOne(ctx context.Context, target model.Target, id string) (bool, error)
	BulkWrite(ctx context.Context, target model.Target, ops []WriteOp) (BulkResult, error)
}

// Storage combines every store the application needs
type Storage interface {
	UserStore
	DocumentStore
	Close(ctx context.Context) error
}

// SystemDatabases are hidden from database listings
var SystemDatabases = map[string]bool{
	"admin":  true,
	"local":  true,
	"config": true,
}

// WriteKind selects the write performed by a WriteOp
type WriteKind int

const (
	WriteInsert WriteKind = iota
	WriteUpdate
	WriteDelete
)

func (k WriteKind) String() string {
	switch k {
	case WriteInsert:
		return "insert"
	case WriteUpdate:
		return "update"
	case WriteDelete:
		return "delete"
	default:
		return fmt.Sprintf("WriteKind(%d)", int(k))
	}
}

// WriteOp is a single entry of a bulk write.
// Insert uses Document, Update uses ID and Document as the $set body, Delete uses ID.
type WriteOp struct {
	Kind     WriteKind
	ID       string
	Document model.Document
}

// BulkResult holds the counts reported by the store for a bulk write
type BulkResult struct {
	Inserted int
	Modified int
	Deleted  int
}

// Total returns the number of writes that took effect
func (r BulkResult) Total() int {
	return r.Inserted + r.Modified + r.Deleted
}

// PartialWriteError reports a bulk write where some entries failed.
// Result holds the counts for the entries that succeeded.
type PartialWriteError struct {
	Result BulkResult
	Failed int
	Err    error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("bulk write: %d operation(s) failed: %v", e.Failed, e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}
