package domain

import (
	"errors"
	"math"
	"time"
)

// Status enumerates the order lifecycle stages.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusDelivered Status = "Delivered"
	StatusCancelled Status = "Cancelled"
)

var (
	ErrInvalidStatus       = errors.New("order status is invalid")
	ErrInvalidCustomer     = errors.New("customer id must be greater than zero")
	ErrMissingCreationDate = errors.New("creation date is required")
	ErrInvalidTotal        = errors.New("total must be a finite non-negative amount")
)

// OrderFields carries every caller-controlled attribute of an order. It has no
// identifier: ids are assigned by the store.
type OrderFields struct {
	CreationDate time.Time
	Status       Status
	Total        float64
	CustomerID   int64
}

// Order models a purchase placed by a customer.
type Order struct {
	ID           int64
	CreationDate time.Time
	Status       Status
	Total        float64
	CustomerID   int64
	// Customer is populated by repositories on read; nil on new orders.
	Customer *Customer
}

// NewOrder validates fields and builds an order that has not been persisted yet.
func NewOrder(fields OrderFields) (*Order, error) {
	order := &Order{}
	if err := order.Replace(fields); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate enforces the required-field invariants.
func (o *Order) Validate() error {
	if !IsValidStatus(o.Status) {
		return ErrInvalidStatus
	}
	if o.CustomerID <= 0 {
		return ErrInvalidCustomer
	}
	if o.CreationDate.IsZero() {
		return ErrMissingCreationDate
	}
	if math.IsNaN(o.Total) || math.IsInf(o.Total, 0) || o.Total < 0 {
		return ErrInvalidTotal
	}
	return nil
}

// Replace overwrites every field except the id. The order is left untouched
// when the new fields are invalid.
func (o *Order) Replace(fields OrderFields) error {
	next := *o
	next.CreationDate = DateOf(fields.CreationDate)
	next.Status = fields.Status
	next.Total = fields.Total
	if next.CustomerID != fields.CustomerID {
		next.Customer = nil
	}
	next.CustomerID = fields.CustomerID
	if err := next.Validate(); err != nil {
		return err
	}
	*o = next
	return nil
}

// UpdateStatus changes only the status. Any status may follow any other.
func (o *Order) UpdateStatus(status Status) error {
	if !IsValidStatus(status) {
		return ErrInvalidStatus
	}
	o.Status = status
	return nil
}

// Fields returns the caller-controlled attributes of the order.
func (o *Order) Fields() OrderFields {
	return OrderFields{
		CreationDate: o.CreationDate,
		Status:       o.Status,
		Total:        o.Total,
		CustomerID:   o.CustomerID,
	}
}

// IsValidStatus reports whether status is one of the known literals. The
// comparison is case sensitive.
func IsValidStatus(status Status) bool {
	switch status {
	case StatusPending, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// DateOf drops the time of day, keeping the calendar date as seen in t's
// location, and returns it at UTC midnight.
func DateOf(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate reports whether a and b fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}
