package browser

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/mcoot/fxdesk/internal/model"
	"github.com/mcoot/fxdesk/internal/storage"
)

// Table is a tabular snapshot of a collection
type Table struct {
	Columns []string
	Rows    []model.Document
}

// VisibleColumns returns the columns end users see
func (t *Table) VisibleColumns() []string {
	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if !model.IsReserved(c) {
			cols = append(cols, c)
		}
	}
	return cols
}

// RowID returns the id of row i as forms carry it
func (t *Table) RowID(i int) string {
	return model.IDString(t.Rows[i].ID())
}

// Cell renders one value for display
func (t *Table) Cell(i int, column string) string {
	return FormatValue(t.Rows[i][column])
}

// Service lists and reads collections
type Service struct {
	store  storage.DocumentStore
	logger *slog.Logger
}

// New creates a new browser Service
func New(store storage.DocumentStore, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// ListDatabases returns the user databases, sorted
func (s *Service) ListDatabases(ctx context.Context) ([]string, error) {
	names, err := s.store.ListDatabases(ctx)
	if err != nil {
		return nil, fmt.Errorf("list databases: %w", err)
	}
	return names, nil
}

// ListCollections returns the collections of a database, sorted
func (s *Service) ListCollections(ctx context.Context, database string) ([]string, error) {
	if database == "" {
		return nil, nil
	}
	names, err := s.store.ListCollections(ctx, database)
	if err != nil {
		return nil, fmt.Errorf("list collections of %s: %w", database, err)
	}
	return names, nil
}

// CreateCollection creates an empty collection
func (s *Service) CreateCollection(ctx context.Context, target model.Target) error {
	if !target.Valid() {
		return model.ErrInvalidTarget
	}
	if err := s.store.CreateCollection(ctx, target); err != nil {
		return err
	}
	s.logger.Info("collection created", "target", target.String())
	return nil
}

// Snapshot reads every document of the target. An empty collection returns
// ErrNoDocuments.
func (s *Service) Snapshot(ctx context.Context, target model.Target) (*Table, error) {
	if !target.Valid() {
		return nil, model.ErrNoTarget
	}
	docs, err := s.store.Find(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", target, err)
	}
	if len(docs) == 0 {
		return nil, model.ErrNoDocuments
	}
	return &Table{
		Columns: columnsOf(docs),
		Rows:    docs,
	}, nil
}

// columnsOf orders the union of field names: _id first, then business fields
// sorted, then the remaining reserved fields sorted
func columnsOf(docs []model.Document) []string {
	seen := map[string]bool{}
	var business, reserved []string
	hasID := false
	for _, doc := range docs {
		for field := range doc {
			if seen[field] {
				continue
			}
			seen[field] = true
			switch {
			case field == model.FieldID:
				hasID = true
			case model.IsReserved(field):
				reserved = append(reserved, field)
			default:
				business = append(business, field)
			}
		}
	}
	slices.Sort(business)
	slices.Sort(reserved)

	cols := make([]string, 0, len(seen))
	if hasID {
		cols = append(cols, model.FieldID)
	}
	cols = append(cols, business...)
	return append(cols, reserved...)
}

// FormatValue renders a stored value as text. Dates at midnight UTC show as
// the plain date.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		u := val.UTC()
		if u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
			return u.Format(time.DateOnly)
		}
		return u.Format(time.DateTime)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case interface{ Hex() string }:
		return val.Hex()
	default:
		return fmt.Sprint(val)
	}
}
