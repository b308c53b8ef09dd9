// Package httpx provides the JSON response conventions the SPA consumes:
// successful responses wrap payloads in {"data": ...}, errors carry a
// single {"message": ...} field.
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/docket-th/docket/internal/shared"
)

type dataEnvelope struct {
	Data any `json:"data"`
}

type pageEnvelope struct {
	Data       any               `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}

type errorEnvelope struct {
	Message string `json:"message"`
}

// JSON sends a raw JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Data wraps payload in the {"data": ...} envelope.
func Data(w http.ResponseWriter, status int, payload any) {
	JSON(w, status, dataEnvelope{Data: payload})
}

// Page wraps a listing in the data envelope together with pagination
// metadata derived from the limit/offset window and the total row count.
func Page(w http.ResponseWriter, status int, payload any, limit, offset, total int) {
	if limit <= 0 {
		limit = 50
	}
	JSON(w, status, pageEnvelope{
		Data:       payload,
		Pagination: shared.NewPagination(offset/limit+1, limit, total),
	})
}

// Message sends an error body in the {"message": ...} envelope.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, errorEnvelope{Message: message})
}

// DecodeJSON decodes a request body, rejecting unknown fields.
func DecodeJSON(r *http.Request, target any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return err
	}
	// Trailing garbage after the document is a client bug.
	if dec.More() {
		return errors.New("unexpected trailing data")
	}
	return nil
}
