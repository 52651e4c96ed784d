package request

import "github.com/shopspring/decimal"

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// QuoteRequest is one offer in a comparison request
type QuoteRequest struct {
	Price       decimal.Decimal `json:"price"`
	RatePercent decimal.Decimal `json:"rate_percent"`
}

// CompareRequest is the request body for comparing two exchange offers.
// Numbers may be sent as JSON numbers or strings. Omitted fields take the
// defaults for the direction.
type CompareRequest struct {
	Direction string           `json:"direction"`
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	Days      *int             `json:"days,omitempty"`
	Quotes    []QuoteRequest   `json:"quotes,omitempty"`
}

// BatchRequest is the request body for a batch of edits against one
// collection. Kind selects which of the other fields is read.
type BatchRequest struct {
	Kind string `json:"kind"`
	// Schema declares the type of each field in Rows and Changes. Fields
	// without a declared type are stored as text.
	Schema map[string]string `json:"schema,omitempty"`

	// Insert
	Rows []map[string]any `json:"rows,omitempty"`
	// Update, keyed by document id
	Changes map[string]map[string]any `json:"changes,omitempty"`
	// Delete
	IDs               []string `json:"ids,omitempty"`
	SecondaryPassword string   `json:"secondary_password,omitempty"`
}
