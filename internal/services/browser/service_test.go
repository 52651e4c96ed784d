package browser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/fxdesk/internal/model"
	"github.com/mcoot/fxdesk/internal/storage/memory"
	"github.com/mcoot/fxdesk/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	service *Service
	target  model.Target
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.service = New(s.storage, testutil.NopLogger())
	s.target = model.Target{Database: "fx", Collection: "transactions"}
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestListDatabasesAndCollections() {
	s.Require().NoError(s.service.CreateCollection(s.ctx, model.Target{Database: "fx", Collection: "rates"}))
	s.Require().NoError(s.service.CreateCollection(s.ctx, s.target))
	s.Require().NoError(s.service.CreateCollection(s.ctx, model.Target{Database: "admin", Collection: "system"}))

	dbs, err := s.service.ListDatabases(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"fx"}, dbs)

	colls, err := s.service.ListCollections(s.ctx, "fx")
	s.Require().NoError(err)
	s.Equal([]string{"rates", "transactions"}, colls)

	colls, err = s.service.ListCollections(s.ctx, "")
	s.Require().NoError(err)
	s.Empty(colls)
}

func (s *ServiceSuite) TestCreateCollectionValidation() {
	s.ErrorIs(s.service.CreateCollection(s.ctx, model.Target{Collection: "x"}), model.ErrInvalidTarget)

	s.Require().NoError(s.service.CreateCollection(s.ctx, s.target))
	s.ErrorIs(s.service.CreateCollection(s.ctx, s.target), model.ErrCollectionExists)
}

func (s *ServiceSuite) TestSnapshotEmptyCollection() {
	s.Require().NoError(s.service.CreateCollection(s.ctx, s.target))

	_, err := s.service.Snapshot(s.ctx, s.target)
	s.ErrorIs(err, model.ErrNoDocuments)
}

func (s *ServiceSuite) TestSnapshotRequiresTarget() {
	_, err := s.service.Snapshot(s.ctx, model.Target{})
	s.ErrorIs(err, model.ErrNoTarget)
}

func (s *ServiceSuite) TestSnapshotColumnOrder() {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.Require().NoError(s.storage.InsertOne(s.ctx, s.target, model.Document{
		"_updated_at": now, "_id": "a", "to_curr": "AUD", "_created_at": now, "amount": 1.5,
	}))
	s.Require().NoError(s.storage.InsertOne(s.ctx, s.target, model.Document{
		"_id": "b", "from_curr": "HKD",
	}))

	table, err := s.service.Snapshot(s.ctx, s.target)
	s.Require().NoError(err)

	s.Equal([]string{"_id", "amount", "from_curr", "to_curr", "_created_at", "_updated_at"}, table.Columns)
	s.Equal([]string{"amount", "from_curr", "to_curr"}, table.VisibleColumns())
	s.Len(table.Rows, 2)
	s.Equal("a", table.RowID(0))
	s.Equal("1.5", table.Cell(0, "amount"))
	s.Equal("", table.Cell(1, "amount"))
}

type hexID string

func (h hexID) Hex() string { return string(h) }

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "2024-03-01", FormatValue(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-03-01 09:30:00", FormatValue(time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)))
	assert.Equal(t, "65a1f0c2e4b0a1b2c3d4e5f6", FormatValue(hexID("65a1f0c2e4b0a1b2c3d4e5f6")))
	assert.Equal(t, "true", FormatValue(true))
	assert.Equal(t, "42", FormatValue(int64(42)))
	assert.Equal(t, "", FormatValue(nil))
}
