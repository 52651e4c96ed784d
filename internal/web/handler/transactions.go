package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/fxdesk/internal/model"
	"github.com/mcoot/fxdesk/internal/services/browser"
	"github.com/mcoot/fxdesk/internal/web/templates/layout"
	"github.com/mcoot/fxdesk/internal/web/templates/pages"
)

// TransactionsHandler shows the transaction history collection
type TransactionsHandler struct {
	browser *browser.Service
	target  model.Target
	logger  *slog.Logger
}

// NewTransactionsHandler creates a new TransactionsHandler reading target
func NewTransactionsHandler(browserService *browser.Service, target model.Target, logger *slog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		browser: browserService,
		target:  target,
		logger:  logger,
	}
}

// List renders the transaction table
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	data := pages.TransactionsData{
		PageData: pageData(r, layout.TabTransactions, layout.TabTransactions),
	}

	table, err := h.browser.Snapshot(r.Context(), h.target)
	switch {
	case err == nil:
		data.Table = table
	case errors.Is(err, model.ErrNoDocuments):
		data.Notices = append(data.Notices, pages.Notice{Type: "info", Message: "No data found in the specified collection."})
	default:
		h.logger.Error("failed to load transactions", slog.String("error", err.Error()))
		data.Notices = append(data.Notices, pages.Notice{Type: "warning", Message: "Could not load transactions. Please try again later."})
	}

	render(w, r, h.logger, http.StatusOK, pages.Transactions(data))
}
