package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mcoot/fxdesk/internal/model"
	"github.com/mcoot/fxdesk/internal/storage"
)

// Batch is a set of pending edits against one collection
type Batch interface {
	// Kind names the write performed by every entry
	Kind() storage.WriteKind
	// Len returns the number of entries
	Len() int
	ops() []storage.WriteOp
}

// InsertBatch adds new documents
type InsertBatch struct {
	Documents []model.Document
}

func (b InsertBatch) Kind() storage.WriteKind { return storage.WriteInsert }
func (b InsertBatch) Len() int                { return len(b.Documents) }

func (b InsertBatch) ops() []storage.WriteOp {
	ops := make([]storage.WriteOp, len(b.Documents))
	for i, doc := range b.Documents {
		ops[i] = storage.WriteOp{Kind: storage.WriteInsert, Document: doc}
	}
	return ops
}

// UpdateBatch sets changed fields, keyed by document id
type UpdateBatch struct {
	Changes map[string]model.Document
}

func (b UpdateBatch) Kind() storage.WriteKind { return storage.WriteUpdate }
func (b UpdateBatch) Len() int                { return len(b.Changes) }

func (b UpdateBatch) ops() []storage.WriteOp {
	ops := make([]storage.WriteOp, 0, len(b.Changes))
	for id, fields := range b.Changes {
		ops = append(ops, storage.WriteOp{Kind: storage.WriteUpdate, ID: id, Document: fields})
	}
	return ops
}

// DeleteBatch removes documents by id
type DeleteBatch struct {
	IDs []string
}

func (b DeleteBatch) Kind() storage.WriteKind { return storage.WriteDelete }
func (b DeleteBatch) Len() int                { return len(b.IDs) }

func (b DeleteBatch) ops() []storage.WriteOp {
	ops := make([]storage.WriteOp, len(b.IDs))
	for i, id := range b.IDs {
		ops[i] = storage.WriteOp{Kind: storage.WriteDelete, ID: id}
	}
	return ops
}

// Result counts the entries of a batch that took effect and those that failed
type Result struct {
	Success int `json:"success"`
	Errors  int `json:"errors"`
}

// Executor runs batches and single-document writes against the document store
type Executor struct {
	store  storage.DocumentStore
	logger *slog.Logger
}

// New creates a new batch Executor
func New(store storage.DocumentStore, logger *slog.Logger) *Executor {
	return &Executor{
		store:  store,
		logger: logger,
	}
}

// Execute sends the whole batch to the store in one round trip. Success is the
// count the store reports for the batch kind; a failed write marks every entry
// that did not succeed as an error. The returned error is nil unless the
// target is missing or the batch is malformed.
func (e *Executor) Execute(ctx context.Context, target *model.Target, b Batch) (Result, error) {
	if target == nil || !target.Valid() {
		return Result{}, model.ErrNoTarget
	}
	if b == nil || b.Len() == 0 {
		return Result{}, nil
	}

	total := b.Len()
	res, err := e.store.BulkWrite(ctx, *target, b.ops())
	if err != nil {
		var partial *storage.PartialWriteError
		if errors.As(err, &partial) {
			success := countFor(b.Kind(), partial.Result)
			e.logger.Warn("batch partially applied",
				"kind", b.Kind().String(), "target", target.String(),
				"success", success, "failed", partial.Failed, "error", partial.Err)
			return Result{Success: success, Errors: partial.Failed}, nil
		}

		e.logger.Error("batch failed",
			"kind", b.Kind().String(), "target", target.String(), "count", total, "error", err)
		return Result{Success: 0, Errors: total}, nil
	}

	success := countFor(b.Kind(), res)
	e.logger.Info("batch completed",
		"kind", b.Kind().String(), "target", target.String(), "success", success)
	return Result{Success: success}, nil
}

func countFor(kind storage.WriteKind, res storage.BulkResult) int {
	switch kind {
	case storage.WriteInsert:
		return res.Inserted
	case storage.WriteUpdate:
		return res.Modified
	case storage.WriteDelete:
		return res.Deleted
	default:
		return 0
	}
}

// InsertOne stores a single prepared document
func (e *Executor) InsertOne(ctx context.Context, target *model.Target, doc model.Document) error {
	if target == nil || !target.Valid() {
		return model.ErrNoTarget
	}
	if err := e.store.InsertOne(ctx, *target, doc); err != nil {
		return fmt.Errorf("insert into %s: %w", target, err)
	}
	e.logger.Info("document inserted", "target", target.String(), "id", model.IDString(doc.ID()))
	return nil
}

// UpdateOne sets fields on one document. ErrDocumentNotFound is returned when
// no document has the id.
func (e *Executor) UpdateOne(ctx context.Context, target *model.Target, id string, fields model.Document) error {
	if target == nil || !target.Valid() {
		return model.ErrNoTarget
	}
	matched, err := e.store.UpdateOne(ctx, *target, id, fields)
	if err != nil {
		return fmt.Errorf("update %s in %s: %w", id, target, err)
	}
	if !matched {
		return model.ErrDocumentNotFound
	}
	e.logger.Info("document updated", "target", target.String(), "id", id)
	return nil
}

// DeleteOne removes one document. ErrDocumentNotFound is returned when no
// document has the id.
func (e *Executor) DeleteOne(ctx context.Context, target *model.Target, id string) error {
	if target == nil || !target.Valid() {
		return model.ErrNoTarget
	}
	deleted, err := e.store.DeleteOne(ctx, *target, id)
	if err != nil {
		return fmt.Errorf("delete %s from %s: %w", id, target, err)
	}
	if !deleted {
		return model.ErrDocumentNotFound
	}
	e.logger.Info("document deleted", "target", target.String(), "id", id)
	return nil
}
