package handler

import (
	"net/http"

	"github.com/mcoot/fxdesk/internal/api/request"
	"github.com/mcoot/fxdesk/internal/api/response"
	"github.com/mcoot/fxdesk/internal/services/exchange"
)

// Compare handles POST /api/v1/exchange/compare. A body with only a
// direction reproduces the figures the web page starts with.
func Compare(w http.ResponseWriter, r *http.Request) {
	var req request.CompareRequest
	if err := request.Decode(w, r, &req); err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return
	}

	direction, err := exchange.ParseDirection(req.Direction)
	if err != nil {
		WriteError(w, err)
		return
	}
	if n := len(req.Quotes); n != 0 && n != 2 {
		WriteError(w, NewInvalidRequestError("quotes must list exactly two offers"))
		return
	}

	cmp := exchange.Defaults(direction)
	if req.Amount != nil {
		cmp.Amount = *req.Amount
	}
	if req.Days != nil {
		cmp.Days = *req.Days
	}
	for i, q := range req.Quotes {
		cmp.Quotes[i] = exchange.Quote{Price: q.Price, RatePercent: q.RatePercent}
	}

	result, err := exchange.Compare(cmp)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.ComparisonFromModel(result))
}
