package coercion

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/fxdesk/internal/dependencies/mocks"
	"github.com/mcoot/fxdesk/internal/model"
)

var transactionSchema = Schema{
	"from_curr": TypeString,
	"to_curr":   TypeString,
	"amount":    TypeFloat,
	"units":     TypeInteger,
	"settled":   TypeBoolean,
	"trade_day": TypeDate,
}

func warnedFields(res Result) []string {
	fields := make([]string, len(res.Warnings))
	for i, w := range res.Warnings {
		fields[i] = w.Field
	}
	return fields
}

func TestCoerceConvertsByDeclaredType(t *testing.T) {
	res := Coerce(map[string]any{
		"from_curr": "hkd",
		"amount":    "200000.50",
		"units":     "7",
		"settled":   "Yes",
		"trade_day": "2024-03-01",
	}, transactionSchema)

	assert.Empty(t, res.Warnings)
	assert.Equal(t, model.Document{
		"from_curr": "HKD",
		"amount":    200000.50,
		"units":     int64(7),
		"settled":   true,
		"trade_day": time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}, res.Document)
}

func TestCoerceUppercasesCurrencyCodes(t *testing.T) {
	res := Coerce(map[string]any{"from_curr": "usd", "to_curr": "aud"}, transactionSchema)
	assert.Equal(t, model.Document{"from_curr": "USD", "to_curr": "AUD"}, res.Document)
}

func TestCoerceDropsBlankValues(t *testing.T) {
	res := Coerce(map[string]any{"amount": "", "units": nil, "to_curr": "   "}, transactionSchema)
	assert.Empty(t, res.Document)
	assert.Empty(t, res.Warnings)
	assert.True(t, res.Empty())
}

func TestCoerceRejectsReservedFields(t *testing.T) {
	res := Coerce(map[string]any{"_id": "x", "_created_at": "2024-01-01", "amount": "1"}, transactionSchema)

	assert.Equal(t, model.Document{"amount": 1.0}, res.Document)
	assert.ElementsMatch(t, []string{"_id", "_created_at"}, warnedFields(res))
}

func TestCoerceKeepsUnparseableTextWithWarning(t *testing.T) {
	res := Coerce(map[string]any{
		"amount":    "lots",
		"units":     "7.5",
		"settled":   "maybe",
		"trade_day": "next tuesday",
	}, transactionSchema)

	assert.Equal(t, model.Document{
		"amount":    "lots",
		"units":     "7.5",
		"settled":   "maybe",
		"trade_day": "next tuesday",
	}, res.Document)
	assert.ElementsMatch(t, []string{"amount", "units", "settled", "trade_day"}, warnedFields(res))

	// Whole numbers beyond int64 are not clamped
	for _, raw := range []any{"1e19", "99999999999999999999", "-9.3e18", 1e300, 9.223372036854775808e18} {
		res := Coerce(map[string]any{"units": raw}, transactionSchema)
		assert.Equal(t, model.Document{"units": asText(raw)}, res.Document, "input %v", raw)
		assert.Equal(t, []string{"units"}, warnedFields(res), "input %v", raw)
	}

	// The int64 bounds themselves still convert
	res = Coerce(map[string]any{"units": "-9223372036854775808"}, transactionSchema)
	assert.Equal(t, model.Document{"units": int64(math.MinInt64)}, res.Document)
	res = Coerce(map[string]any{"units": -9.223372036854775808e18}, transactionSchema)
	assert.Equal(t, model.Document{"units": int64(math.MinInt64)}, res.Document)
	assert.Empty(t, res.Warnings)
}

func TestCoerceUndeclaredFieldIsText(t *testing.T) {
	res := Coerce(map[string]any{"note": 42}, transactionSchema)

	assert.Equal(t, model.Document{"note": "42"}, res.Document)
	assert.Equal(t, []string{"note"}, warnedFields(res))
}

func TestCoerceTypedValuesAreIdempotent(t *testing.T) {
	first := Coerce(map[string]any{
		"from_curr": "hkd",
		"amount":    "12.25",
		"units":     "3",
		"settled":   "off",
		"trade_day": "2024-03-01T09:30:00Z",
	}, transactionSchema)
	require.Empty(t, first.Warnings)

	second := Coerce(first.Document, transactionSchema)
	assert.Empty(t, second.Warnings)
	assert.Equal(t, first.Document, second.Document)
}

func TestCoerceIntegerAcceptsTypedNumbers(t *testing.T) {
	res := Coerce(map[string]any{"units": 5}, transactionSchema)
	assert.Equal(t, 5, res.Document["units"])

	res = Coerce(map[string]any{"units": 6.0}, transactionSchema)
	assert.Equal(t, int64(6), res.Document["units"])

	res = Coerce(map[string]any{"units": "8.0"}, transactionSchema)
	assert.Equal(t, int64(8), res.Document["units"])
}

func TestCoerceBooleanSpellings(t *testing.T) {
	for _, s := range []string{"true", "TRUE", "1", "yes", "y", "on", "t"} {
		res := Coerce(map[string]any{"settled": s}, transactionSchema)
		assert.Equal(t, true, res.Document["settled"], s)
	}
	for _, s := range []string{"false", "0", "No", "n", "off", "F"} {
		res := Coerce(map[string]any{"settled": s}, transactionSchema)
		assert.Equal(t, false, res.Document["settled"], s)
	}
}

func TestCoerceDateLayouts(t *testing.T) {
	want := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	for _, s := range []string{
		"2024-03-01T09:30:00Z",
		"2024-03-01T17:30:00+08:00",
		"2024-03-01T09:30:00",
		"2024-03-01T09:30",
		"2024-03-01 09:30:00",
	} {
		res := Coerce(map[string]any{"trade_day": s}, transactionSchema)
		assert.True(t, want.Equal(res.Document["trade_day"].(time.Time)), s)
	}
}

func TestParseFieldType(t *testing.T) {
	ft, err := ParseFieldType("integer")
	require.NoError(t, err)
	assert.Equal(t, TypeInteger, ft)

	_, err = ParseFieldType("Decimal128")
	assert.Error(t, err)
}

func TestSuggestSchema(t *testing.T) {
	schema := SuggestSchema([]model.Document{
		{"_id": "a", "amount": 1.5, "note": nil},
		{"_id": "b", "units": int64(2), "settled": true, "when": time.Now(), "note": "x", "tags": []any{"a"}},
	})

	assert.Equal(t, Schema{
		"amount":  TypeFloat,
		"units":   TypeInteger,
		"settled": TypeBoolean,
		"when":    TypeDate,
		"note":    TypeString,
		"tags":    TypeString,
	}, schema)
	assert.Equal(t, []string{"amount", "note", "settled", "tags", "units", "when"}, schema.Fields())
}

type EngineSuite struct {
	suite.Suite
	clock  *mocks.MockClock
	random *mocks.MockRandom
	engine *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.engine = New(s.clock, s.random)
}

func (s *EngineSuite) TestPrepareInsertStampsIDAndTimes() {
	s.random.QueueUUID("0b7e2c1a-0000-4000-8000-000000000001")

	res := s.engine.PrepareInsert(map[string]any{"amount": "10"}, transactionSchema)

	s.Equal("0b7e2c1a-0000-4000-8000-000000000001", res.Document[model.FieldID])
	s.Equal(10.0, res.Document["amount"])
	created := res.Document[model.FieldCreatedAt].(time.Time)
	updated := res.Document[model.FieldUpdatedAt].(time.Time)
	s.Equal(s.clock.Now(), created)
	s.False(updated.Before(created))
}

func (s *EngineSuite) TestPrepareInsertIgnoresSubmittedID() {
	res := s.engine.PrepareInsert(map[string]any{"_id": "mine", "amount": "1"}, transactionSchema)

	s.NotEqual("mine", res.Document[model.FieldID])
	s.NotEmpty(res.Document[model.FieldID])
	s.Len(res.Warnings, 1)
}

func (s *EngineSuite) TestPrepareInsertEmptyFormStaysEmpty() {
	res := s.engine.PrepareInsert(map[string]any{"amount": ""}, transactionSchema)
	s.Empty(res.Document)
}

func (s *EngineSuite) TestPrepareUpdateOnlyRefreshesUpdatedAt() {
	s.clock.Advance(time.Hour)

	res := s.engine.PrepareUpdate(map[string]any{"amount": "2.5"}, transactionSchema)

	s.Equal(model.Document{
		"amount":              2.5,
		model.FieldUpdatedAt: s.clock.Now(),
	}, res.Document)
	s.False(res.Empty())
}
