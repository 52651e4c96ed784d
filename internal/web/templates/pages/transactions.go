package pages

import (
	"context"

	"github.com/a-h/templ"

	"github.com/mcoot/fxdesk/internal/services/browser"
	"github.com/mcoot/fxdesk/internal/web/templates/layout"
)

// TransactionsData holds data for the transaction history page
type TransactionsData struct {
	layout.PageData
	Table   *browser.Table
	Notices []Notice
}

// Transactions renders the transaction history table
func Transactions(data TransactionsData) templ.Component {
	return layout.Base(data.PageData, render(func(ctx context.Context, hw *layout.Writer) {
		notices(hw, data.Notices)
		if data.Table != nil {
			dataTable(hw, data.Table, data.Table.VisibleColumns())
		}
	}))
}
