// Package sale defines the sale record domain type and the validation
// rules applied to untrusted sale data.
//
// Validation happens at two levels:
//  1. Shape validation: an uploaded mapping must carry the required keys
//     with parseable values before it is trusted as a sale record.
//  2. Field validation: form submissions and partial updates apply the
//     stricter range rules (quantity >= 1, price >= 0, calendar date not
//     in the future).
package sale

import (
	"math"
	"time"
)

// DateLayout is the canonical date format for sale records.
const DateLayout = "2006-01-02"

// Record is a single sale. The tuple (OrderID, CustomerName, Product, Date)
// identifies a sale uniquely in the record store.
type Record struct {
	ID           int64     `json:"id,omitempty"`
	OrderID      string    `json:"order_id"`
	CustomerName string    `json:"customer_name"`
	Product      string    `json:"product"`
	Quantity     int       `json:"quantity"`
	Price        float64   `json:"price"`
	Date         time.Time `json:"-"`
}

// Total is the derived line total, rounded to two decimal places.
func (r Record) Total() float64 {
	return Round2(r.Price * float64(r.Quantity))
}

// DateString returns the record date in YYYY-MM-DD form.
func (r Record) DateString() string {
	return r.Date.Format(DateLayout)
}

// Fields returns the record as a flat mapping, including the derived
// total. This is the shape written to exported files and returned by
// the query API.
func (r Record) Fields() map[string]any {
	return map[string]any{
		"order_id":      r.OrderID,
		"customer_name": r.CustomerName,
		"product":       r.Product,
		"quantity":      r.Quantity,
		"price":         r.Price,
		"date":          r.DateString(),
		"total":         r.Total(),
	}
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
