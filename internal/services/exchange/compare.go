// Package exchange compares two currency exchange quotes, including the
// interest earned by placing the converted amount on a short fixed deposit.
package exchange

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mcoot/fxdesk/internal/model"
)

// Places is the number of decimal places every figure is rounded to
const Places = 4

var (
	hundred    = decimal.NewFromInt(100)
	daysInYear = decimal.NewFromInt(365)
)

// Direction is which way money is converted
type Direction string

const (
	// HKDToAUD sells HKD for AUD: converted = amount / selling price
	HKDToAUD Direction = "hkd-aud"
	// AUDToHKD buys HKD with AUD: converted = amount * buying price
	AUDToHKD Direction = "aud-hkd"
)

// ParseDirection validates a direction name
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case HKDToAUD, AUDToHKD:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("%w: unknown direction %q", model.ErrInvalidQuote, s)
	}
}

// From returns the currency being converted
func (d Direction) From() string {
	if d == AUDToHKD {
		return "AUD"
	}
	return "HKD"
}

// To returns the currency received
func (d Direction) To() string {
	if d == AUDToHKD {
		return "HKD"
	}
	return "AUD"
}

// Quote is one offer: its price and the deposit rate in percent per year
type Quote struct {
	Price       decimal.Decimal `json:"price"`
	RatePercent decimal.Decimal `json:"rate_percent"`
}

// Request is a comparison of two quotes for the same amount and term
type Request struct {
	Direction Direction       `json:"direction"`
	Amount    decimal.Decimal `json:"amount"`
	Days      int             `json:"days"`
	Quotes    [2]Quote        `json:"quotes"`
}

// Offer is the worked result for one quote
type Offer struct {
	Quote
	Converted decimal.Decimal `json:"converted"`
	Interest  decimal.Decimal `json:"interest"`
	Total     decimal.Decimal `json:"total"`
}

// Comparison holds both offers and which one is better
type Comparison struct {
	Request
	Offers [2]Offer `json:"offers"`
	// Best is the index of the offer with the larger total. Ties go to the
	// second offer.
	Best int `json:"best"`
}

// Defaults returns the starting values shown for a direction
func Defaults(d Direction) Request {
	req := Request{
		Direction: d,
		Days:      7,
		Quotes: [2]Quote{
			{RatePercent: decimal.RequireFromString("0.15")},
			{RatePercent: decimal.RequireFromString("12.8")},
		},
	}
	switch d {
	case AUDToHKD:
		req.Amount = decimal.NewFromInt(1000)
		req.Quotes[0].Price = decimal.RequireFromString("5.0005")
		req.Quotes[1].Price = decimal.RequireFromString("5.0108")
	default:
		req.Direction = HKDToAUD
		req.Amount = decimal.NewFromInt(200000)
		req.Quotes[0].Price = decimal.RequireFromString("4.9695")
		req.Quotes[1].Price = decimal.RequireFromString("4.9798")
	}
	return req
}

// Validate checks that the request can be computed
func (r Request) Validate() error {
	if _, err := ParseDirection(string(r.Direction)); err != nil {
		return err
	}
	if r.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", model.ErrInvalidQuote)
	}
	if r.Days < 0 {
		return fmt.Errorf("%w: days must not be negative", model.ErrInvalidQuote)
	}
	for i, q := range r.Quotes {
		if !q.Price.IsPositive() {
			return fmt.Errorf("%w: price %d must be positive", model.ErrInvalidQuote, i+1)
		}
		if q.RatePercent.IsNegative() {
			return fmt.Errorf("%w: rate %d must not be negative", model.ErrInvalidQuote, i+1)
		}
	}
	return nil
}

// Compare works out both offers. Each figure is rounded before it feeds the
// next one, so the displayed numbers always add up.
func Compare(req Request) (*Comparison, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c := &Comparison{Request: req}
	days := decimal.NewFromInt(int64(req.Days))
	for i, q := range req.Quotes {
		var converted decimal.Decimal
		if req.Direction == AUDToHKD {
			converted = req.Amount.Mul(q.Price)
		} else {
			converted = req.Amount.Div(q.Price)
		}
		converted = converted.Round(Places)

		interest := converted.
			Mul(q.RatePercent.Div(hundred)).
			Mul(days.Div(daysInYear)).
			Round(Places)

		c.Offers[i] = Offer{
			Quote:     q,
			Converted: converted,
			Interest:  interest,
			Total:     converted.Add(interest).Round(Places),
		}
	}

	c.Best = 1
	if c.Offers[0].Total.GreaterThan(c.Offers[1].Total) {
		c.Best = 0
	}
	return c, nil
}
