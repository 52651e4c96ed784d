package exchange

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/fxdesk/internal/model"
)

func figures(o Offer) [3]string {
	return [3]string{o.Converted.StringFixed(Places), o.Interest.StringFixed(Places), o.Total.StringFixed(Places)}
}

func TestCompareHKDToAUDDefaults(t *testing.T) {
	c, err := Compare(Defaults(HKDToAUD))
	require.NoError(t, err)

	assert.Equal(t, [3]string{"40245.4975", "1.1577", "40246.6552"}, figures(c.Offers[0]))
	assert.Equal(t, [3]string{"40162.2555", "98.5901", "40260.8456"}, figures(c.Offers[1]))
	assert.Equal(t, 1, c.Best)
}

func TestCompareAUDToHKDDefaults(t *testing.T) {
	c, err := Compare(Defaults(AUDToHKD))
	require.NoError(t, err)

	assert.Equal(t, [3]string{"5000.5000", "0.1439", "5000.6439"}, figures(c.Offers[0]))
	assert.Equal(t, [3]string{"5010.8000", "12.3005", "5023.1005"}, figures(c.Offers[1]))
	assert.Equal(t, 1, c.Best)
}

func TestCompareFirstOfferWins(t *testing.T) {
	req := Defaults(AUDToHKD)
	req.Quotes[0].Price = decimal.RequireFromString("5.2000")
	req.Quotes[1].RatePercent = decimal.Zero

	c, err := Compare(req)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Best)
}

func TestCompareTieGoesToSecondOffer(t *testing.T) {
	req := Defaults(HKDToAUD)
	req.Quotes[1] = req.Quotes[0]

	c, err := Compare(req)
	require.NoError(t, err)
	assert.True(t, c.Offers[0].Total.Equal(c.Offers[1].Total))
	assert.Equal(t, 1, c.Best)
}

func TestCompareZeroDaysEarnsNoInterest(t *testing.T) {
	req := Defaults(HKDToAUD)
	req.Days = 0

	c, err := Compare(req)
	require.NoError(t, err)
	assert.True(t, c.Offers[1].Interest.IsZero())
	assert.True(t, c.Offers[1].Total.Equal(c.Offers[1].Converted))
}

func TestCompareValidation(t *testing.T) {
	cases := map[string]func(*Request){
		"zero price":     func(r *Request) { r.Quotes[0].Price = decimal.Zero },
		"negative price": func(r *Request) { r.Quotes[1].Price = decimal.NewFromInt(-1) },
		"negative rate":  func(r *Request) { r.Quotes[0].RatePercent = decimal.NewFromInt(-1) },
		"negative days":  func(r *Request) { r.Days = -1 },
		"negative amount": func(r *Request) {
			r.Amount = decimal.NewFromInt(-5)
		},
		"bad direction": func(r *Request) { r.Direction = "usd-eur" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := Defaults(HKDToAUD)
			mutate(&req)
			_, err := Compare(req)
			assert.ErrorIs(t, err, model.ErrInvalidQuote)
		})
	}
}

func TestDirectionCurrencies(t *testing.T) {
	assert.Equal(t, "HKD", HKDToAUD.From())
	assert.Equal(t, "AUD", HKDToAUD.To())
	assert.Equal(t, "AUD", AUDToHKD.From())
	assert.Equal(t, "HKD", AUDToHKD.To())

	d, err := ParseDirection("aud-hkd")
	require.NoError(t, err)
	assert.Equal(t, AUDToHKD, d)
}
