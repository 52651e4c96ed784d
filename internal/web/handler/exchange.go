package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mcoot/fxdesk/internal/services/exchange"
	"github.com/mcoot/fxdesk/internal/web/templates/layout"
	"github.com/mcoot/fxdesk/internal/web/templates/pages"
)

// ExchangeHandler serves the exchange comparison page
type ExchangeHandler struct {
	logger *slog.Logger
}

// NewExchangeHandler creates a new ExchangeHandler
func NewExchangeHandler(logger *slog.Logger) *ExchangeHandler {
	return &ExchangeHandler{logger: logger}
}

var exchangeForms = []struct {
	direction exchange.Direction
	prefix    string
}{
	{exchange.HKDToAUD, "hkd_"},
	{exchange.AUDToHKD, "aud_"},
}

// Home renders both calculators, filled from the query string or defaults,
// with results worked out for whatever values are shown
func (h *ExchangeHandler) Home(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := pages.ExchangeData{
		PageData: pageData(r, "", layout.TabExchange),
	}

	for _, f := range exchangeForms {
		form := exchangeFormFrom(q, f.direction, f.prefix)
		req, err := parseExchangeForm(form)
		if err == nil {
			form.Result, err = exchange.Compare(req)
		}
		if err != nil {
			form.Error = err.Error()
		}
		data.Forms = append(data.Forms, form)
	}

	render(w, r, h.logger, http.StatusOK, pages.Exchange(data))
}

func exchangeFormFrom(q url.Values, d exchange.Direction, prefix string) pages.ExchangeForm {
	def := exchange.Defaults(d)
	value := func(name, fallback string) string {
		if v := strings.TrimSpace(q.Get(prefix + name)); v != "" {
			return v
		}
		return fallback
	}
	form := pages.ExchangeForm{
		Direction: d,
		Prefix:    prefix,
		Amount:    value("amount", def.Amount.String()),
		Days:      value("days", strconv.Itoa(def.Days)),
	}
	for i := range 2 {
		n := strconv.Itoa(i + 1)
		form.Prices[i] = value("price"+n, def.Quotes[i].Price.String())
		form.Rates[i] = value("rate"+n, def.Quotes[i].RatePercent.String())
	}
	return form
}

func parseExchangeForm(form pages.ExchangeForm) (exchange.Request, error) {
	req := exchange.Request{Direction: form.Direction}

	var err error
	if req.Amount, err = decimal.NewFromString(form.Amount); err != nil {
		return req, invalidNumber("amount", form.Amount)
	}
	if req.Days, err = strconv.Atoi(form.Days); err != nil {
		return req, invalidNumber("days", form.Days)
	}
	for i := range 2 {
		if req.Quotes[i].Price, err = decimal.NewFromString(form.Prices[i]); err != nil {
			return req, invalidNumber("price", form.Prices[i])
		}
		if req.Quotes[i].RatePercent, err = decimal.NewFromString(form.Rates[i]); err != nil {
			return req, invalidNumber("interest rate", form.Rates[i])
		}
	}
	return req, nil
}

type invalidNumberError struct {
	field string
	value string
}

func (e *invalidNumberError) Error() string {
	return "Invalid " + e.field + ": " + strconv.Quote(e.value) + " is not a number"
}

func invalidNumber(field, value string) error {
	return &invalidNumberError{field: field, value: value}
}
