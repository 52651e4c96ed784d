package mongo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/mcoot/fxdesk/internal/model"
	"github.com/mcoot/fxdesk/internal/storage"
)

// codeNamespaceExists is returned by the server when creating an existing collection
const codeNamespaceExists = 48

// Storage is a MongoDB-backed implementation of the storage interface
type Storage struct {
	client *mongo.Client
	cfg    Config
}

// New creates a client for the configured deployment. The driver connects
// lazily, so an unreachable server is reported by Ping rather than here.
func New(cfg Config) (*Storage, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetConnectTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Mongo storage with an existing client (for testing)
func NewWithClient(client *mongo.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Ping checks that the primary is reachable
func (s *Storage) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.PingTimeout)
	defer cancel()

	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
	}
	return nil
}

// Close disconnects the client
func (s *Storage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique username index on the users collection
func (s *Storage) EnsureIndexes(ctx context.Context) error {
	_, err := s.users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (s *Storage) users() *mongo.Collection {
	return s.client.Database(s.cfg.UsersDatabase).Collection(s.cfg.UsersCollection)
}

func (s *Storage) collection(target model.Target) *mongo.Collection {
	return s.client.Database(target.Database).Collection(target.Collection)
}

// User operations

func (s *Storage) GetUser(ctx context.Context, username string) (*model.User, error) {
	var doc userDocument
	err := s.users().FindOne(ctx, bson.M{"username": username}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	return doc.toModel(), nil
}

func (s *Storage) ListUsers(ctx context.Context) ([]*model.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "username", Value: 1}})
	cursor, err := s.users().Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	users := make([]*model.User, len(docs))
	for i := range docs {
		users[i] = docs[i].toModel()
	}
	return users, nil
}

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	count, err := s.users().CountDocuments(ctx, bson.M{"username": user.Username})
	if err != nil {
		return err
	}
	if count > 0 {
		return model.ErrUsernameExists
	}

	if _, err := s.users().InsertOne(ctx, userFields(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.ErrUsernameExists
		}
		return err
	}
	return nil
}

func (s *Storage) UpdateUser(ctx context.Context, user *model.User) error {
	res, err := s.users().UpdateOne(ctx,
		bson.M{"username": user.Username},
		bson.M{"$set": userFields(user)},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (s *Storage) DeleteUser(ctx context.Context, username string) error {
	res, err := s.users().DeleteOne(ctx, bson.M{"username": username})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// Catalogue operations

func (s *Storage) ListDatabases(ctx context.Context) ([]string, error) {
	names, err := s.client.ListDatabaseNames(ctx, bson.D{})
	if err != nil {
		return nil, err
	}

	visible := make([]string, 0, len(names))
	for _, name := range names {
		if !storage.SystemDatabases[name] {
			visible = append(visible, name)
		}
	}
	sort.Strings(visible)
	return visible, nil
}

func (s *Storage) ListCollections(ctx context.Context, database string) ([]string, error) {
	names, err := s.client.Database(database).ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func (s *Storage) CreateCollection(ctx context.Context, target model.Target) error {
	if !target.Valid() {
		return model.ErrInvalidTarget
	}

	err := s.client.Database(target.Database).CreateCollection(ctx, target.Collection)
	if err != nil {
		var cmdErr mongo.CommandError
		if errors.As(err, &cmdErr) && cmdErr.Code == codeNamespaceExists {
			return fmt.Errorf("%w: %s", model.ErrCollectionExists, target)
		}
		return err
	}
	return nil
}

// Document operations

func (s *Storage) Find(ctx context.Context, target model.Target) ([]model.Document, error) {
	cursor, err := s.collection(target).Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, err
	}

	docs := make([]model.Document, len(raw))
	for i, m := range raw {
		docs[i] = fromBSON(m)
	}
	return docs, nil
}

func (s *Storage) InsertOne(ctx context.Context, target model.Target, doc model.Document) error {
	_, err := s.collection(target).InsertOne(ctx, bson.M(doc))
	return err
}

func (s *Storage) UpdateOne(ctx context.Context, target model.Target, id string, fields model.Document) (bool, error) {
	res, err := s.collection(target).UpdateOne(ctx, idFilter(id), bson.M{"$set": bson.M(fields)})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (s *Storage) DeleteOne(ctx context.Context, target model.Target, id string) (bool, error) {
	res, err := s.collection(target).DeleteOne(ctx, idFilter(id))
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// BulkWrite sends every op in one unordered round trip
func (s *Storage) BulkWrite(ctx context.Context, target model.Target, ops []storage.WriteOp) (storage.BulkResult, error) {
	models, err := writeModels(ops)
	if err != nil {
		return storage.BulkResult{}, err
	}

	res, err := s.collection(target).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		var bwe mongo.BulkWriteException
		if errors.As(err, &bwe) && len(bwe.WriteErrors) > 0 {
			return resultFrom(res), &storage.PartialWriteError{
				Result: resultFrom(res),
				Failed: len(bwe.WriteErrors),
				Err:    err,
			}
		}
		return storage.BulkResult{}, err
	}
	return resultFrom(res), nil
}

func writeModels(ops []storage.WriteOp) ([]mongo.WriteModel, error) {
	models := make([]mongo.WriteModel, 0, len(ops))
	for _, op := range ops {
		switch op.Kind {
		case storage.WriteInsert:
			models = append(models, mongo.NewInsertOneModel().SetDocument(bson.M(op.Document)))
		case storage.WriteUpdate:
			models = append(models, mongo.NewUpdateOneModel().
				SetFilter(idFilter(op.ID)).
				SetUpdate(bson.M{"$set": bson.M(op.Document)}))
		case storage.WriteDelete:
			models = append(models, mongo.NewDeleteOneModel().SetFilter(idFilter(op.ID)))
		default:
			return nil, fmt.Errorf("unknown write kind %s", op.Kind)
		}
	}
	return models, nil
}

func resultFrom(res *mongo.BulkWriteResult) storage.BulkResult {
	if res == nil {
		return storage.BulkResult{}
	}
	return storage.BulkResult{
		Inserted: int(res.InsertedCount),
		Modified: int(res.ModifiedCount),
		Deleted:  int(res.DeletedCount),
	}
}
