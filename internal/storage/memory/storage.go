package memory

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"sync"

	"github.com/mcoot/fxdesk/internal/model"
	"github.com/mcoot/fxdesk/internal/storage"
)

// ErrDuplicateID is returned when an insert reuses an existing _id
var ErrDuplicateID = errors.New("duplicate _id")

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	users     map[string]*model.User
	databases map[string]map[string][]model.Document

	// writeErr, when set, fails every document write. Used to simulate an
	// unreachable store.
	writeErr error
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:     make(map[string]*model.User),
		databases: make(map[string]map[string][]model.Document),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// FailWrites makes every subsequent document write return err. Pass nil to reset.
func (s *Storage) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

func (s *Storage) Ping(ctx context.Context) error {
	return nil
}

func (s *Storage) Close(ctx context.Context) error {
	return nil
}

// User operations

func (s *Storage) GetUser(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[username]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	return user.Clone(), nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]*model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u.Clone())
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return model.ErrUsernameExists
	}
	s.users[user.Username] = user.Clone()
	return nil
}

func (s *Storage) UpdateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; !ok {
		return model.ErrUserNotFound
	}
	s.users[user.Username] = user.Clone()
	return nil
}

func (s *Storage) DeleteUser(ctx context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; !ok {
		return model.ErrUserNotFound
	}
	delete(s.users, username)
	return nil
}

// Catalogue operations

func (s *Storage) ListDatabases(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.databases))
	for name := range s.databases {
		if storage.SystemDatabases[name] {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Storage) ListCollections(ctx context.Context, database string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	colls := s.databases[database]
	names := make([]string, 0, len(colls))
	for name := range colls {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *Storage) CreateCollection(ctx context.Context, target model.Target) error {
	if !target.Valid() {
		return model.ErrInvalidTarget
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	db, ok := s.databases[target.Database]
	if !ok {
		db = make(map[string][]model.Document)
		s.databases[target.Database] = db
	}
	if _, ok := db[target.Collection]; ok {
		return fmt.Errorf("%w: %s", model.ErrCollectionExists, target)
	}
	db[target.Collection] = nil
	return nil
}

// Document operations

func (s *Storage) Find(ctx context.Context, target model.Target) ([]model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := s.databases[target.Database][target.Collection]
	out := make([]model.Document, len(docs))
	for i, d := range docs {
		out[i] = d.Clone()
	}
	return out, nil
}

func (s *Storage) InsertOne(ctx context.Context, target model.Target, doc model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	return s.insertLocked(target, doc)
}

func (s *Storage) UpdateOne(ctx context.Context, target model.Target, id string, fields model.Document) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return false, s.writeErr
	}
	matched, _ := s.updateLocked(target, id, fields)
	return matched, nil
}

func (s *Storage) DeleteOne(ctx context.Context, target model.Target, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return false, s.writeErr
	}
	return s.deleteLocked(target, id), nil
}

// BulkWrite applies every op, unordered. Entries that fail do not stop the
// others; the failures are reported through a storage.PartialWriteError.
func (s *Storage) BulkWrite(ctx context.Context, target model.Target, ops []storage.WriteOp) (storage.BulkResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result storage.BulkResult
	if s.writeErr != nil {
		return result, s.writeErr
	}

	var errs []error
	for i, op := range ops {
		switch op.Kind {
		case storage.WriteInsert:
			if err := s.insertLocked(target, op.Document); err != nil {
				errs = append(errs, fmt.Errorf("op %d: %w", i, err))
				continue
			}
			result.Inserted++
		case storage.WriteUpdate:
			if _, modified := s.updateLocked(target, op.ID, op.Document); modified {
				result.Modified++
			}
		case storage.WriteDelete:
			if s.deleteLocked(target, op.ID) {
				result.Deleted++
			}
		default:
			errs = append(errs, fmt.Errorf("op %d: unknown write kind %s", i, op.Kind))
		}
	}

	if len(errs) > 0 {
		return result, &storage.PartialWriteError{Result: result, Failed: len(errs), Err: errors.Join(errs...)}
	}
	return result, nil
}

// insertLocked appends a document, creating the collection on first write
// the way the document database does.
func (s *Storage) insertLocked(target model.Target, doc model.Document) error {
	db, ok := s.databases[target.Database]
	if !ok {
		db = make(map[string][]model.Document)
		s.databases[target.Database] = db
	}
	docs := db[target.Collection]
	if id := model.IDString(doc.ID()); id != "" {
		if indexOf(docs, id) >= 0 {
			return fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
	}
	db[target.Collection] = append(docs, doc.Clone())
	return nil
}

// updateLocked applies a $set. It reports whether a document matched and
// whether any value actually changed.
func (s *Storage) updateLocked(target model.Target, id string, fields model.Document) (bool, bool) {
	docs := s.databases[target.Database][target.Collection]
	i := indexOf(docs, id)
	if i < 0 {
		return false, false
	}
	doc := docs[i]
	modified := false
	for k, v := range fields {
		if k == model.FieldID {
			continue
		}
		if old, ok := doc[k]; !ok || !reflect.DeepEqual(old, v) {
			doc[k] = v
			modified = true
		}
	}
	return true, modified
}

func (s *Storage) deleteLocked(target model.Target, id string) bool {
	db := s.databases[target.Database]
	docs := db[target.Collection]
	i := indexOf(docs, id)
	if i < 0 {
		return false
	}
	db[target.Collection] = slices.Delete(docs, i, i+1)
	return true
}

func indexOf(docs []model.Document, id string) int {
	return slices.IndexFunc(docs, func(d model.Document) bool {
		return model.IDString(d.ID()) == id
	})
}
