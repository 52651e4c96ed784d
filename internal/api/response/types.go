package response

import (
	"time"

	"github.com/mcoot/fxdesk/internal/model"
	"github.com/mcoot/fxdesk/internal/services/batch"
	"github.com/mcoot/fxdesk/internal/services/browser"
	"github.com/mcoot/fxdesk/internal/services/exchange"
)

// Health is the response of the health endpoint
type Health struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

// AuthResponse is the response for a successful login
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
	Admin     bool      `json:"admin"`
}

// Offer is one worked offer with every figure fixed to four places
type Offer struct {
	Price       string `json:"price"`
	RatePercent string `json:"rate_percent"`
	Converted   string `json:"converted"`
	Interest    string `json:"interest"`
	Total       string `json:"total"`
}

// Comparison is the response of the compare endpoint
type Comparison struct {
	Direction string  `json:"direction"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Amount    string  `json:"amount"`
	Days      int     `json:"days"`
	Offers    []Offer `json:"offers"`
	// Best is the 1-based number of the better offer
	Best int `json:"best"`
}

// ComparisonFromModel converts an exchange.Comparison
func ComparisonFromModel(c *exchange.Comparison) Comparison {
	offers := make([]Offer, len(c.Offers))
	for i, o := range c.Offers {
		offers[i] = Offer{
			Price:       o.Price.String(),
			RatePercent: o.RatePercent.String(),
			Converted:   o.Converted.StringFixed(exchange.Places),
			Interest:    o.Interest.StringFixed(exchange.Places),
			Total:       o.Total.StringFixed(exchange.Places),
		}
	}
	return Comparison{
		Direction: string(c.Direction),
		From:      c.Direction.From(),
		To:        c.Direction.To(),
		Amount:    c.Amount.String(),
		Days:      c.Days,
		Offers:    offers,
		Best:      c.Best + 1,
	}
}

// Databases lists database names
type Databases struct {
	Databases []string `json:"databases"`
}

// Collections lists the collections of one database
type Collections struct {
	Database    string   `json:"database"`
	Collections []string `json:"collections"`
}

// Documents is a snapshot of one collection
type Documents struct {
	Database   string           `json:"database"`
	Collection string           `json:"collection"`
	Columns    []string         `json:"columns"`
	Documents  []model.Document `json:"documents"`
}

// DocumentsFromTable converts a browser.Table
func DocumentsFromTable(target model.Target, t *browser.Table) Documents {
	return Documents{
		Database:   target.Database,
		Collection: target.Collection,
		Columns:    t.Columns,
		Documents:  t.Rows,
	}
}

// BatchResult reports how a batch went
type BatchResult struct {
	Success  int      `json:"success"`
	Errors   int      `json:"errors"`
	Warnings []string `json:"warnings,omitempty"`
}

// BatchResultFromModel converts a batch.Result with any coercion warnings
func BatchResultFromModel(res batch.Result, warnings []string) BatchResult {
	return BatchResult{
		Success:  res.Success,
		Errors:   res.Errors,
		Warnings: warnings,
	}
}
