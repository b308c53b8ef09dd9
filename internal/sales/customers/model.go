package customers

import "time"

// Customer is the master record. Documents never join against it at read
// time: quotation and invoice creation copies the fields they need into an
// immutable snapshot, so editing or deleting a customer leaves historical
// documents untouched.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	TaxID     *string   `json:"tax_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
