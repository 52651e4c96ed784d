package web_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/fxdesk/internal/model"
)

func TestTransactionsList(t *testing.T) {
	ts := newWebTestServer(t)
	target := ts.app.Transactions
	require.NoError(t, ts.app.Executor.InsertOne(t.Context(), &target, model.Document{
		model.FieldID: "tx-1",
		"from_curr":   "HKD",
		"to_curr":     "AUD",
		"amount":      200000.0,
	}))

	ts.registerUser("alice", "alicepw")
	ts.login("alice", "alicepw")

	rr := ts.get("/transactions")
	require.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)

	assertContainsText(t, doc, "nav.tabs a.tab.active", "Transaction History")
	assertContainsElement(t, doc, "table.data-table tr[data-id='tx-1']")
	assertContainsText(t, doc, "table.data-table thead", "from_curr")
	// Bookkeeping fields stay hidden
	assert.NotContains(t, doc.Find("table.data-table thead").Text(), "_id")
}
