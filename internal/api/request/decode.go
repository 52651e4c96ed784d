package request

import (
	"encoding/json"
	"errors"
	"net/http"
)

// maxBodyBytes bounds every JSON request body
const maxBodyBytes = 1 << 20

// ErrInvalidBody is returned for bodies that are not a single JSON object
var ErrInvalidBody = errors.New("invalid request body")

// Decode reads a JSON body into v, rejecting unknown fields
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return ErrInvalidBody
	}
	return nil
}
