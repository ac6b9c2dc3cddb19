package mapper

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/oapi-codegen/runtime/types"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

// Customer is the HTTP representation of the customer attached to an order.
type Customer struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
	Address   string `json:"address,omitempty"`
}

// Order is the HTTP representation returned by every order endpoint.
type Order struct {
	ID           int64      `json:"id"`
	CreationDate types.Date `json:"creationDate"`
	Status       string     `json:"status"`
	Total        float64    `json:"total"`
	Customer     Customer   `json:"customer"`
}

// CustomerRef identifies the customer of an inbound order. It accepts either
// a bare id or an object with an id.
type CustomerRef struct {
	ID int64
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *CustomerRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			ID *int64 `json:"id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		if obj.ID == nil {
			return errMissingCustomerID
		}
		r.ID = *obj.ID
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return fmt.Errorf("customer must be an id or an object with an id: %w", err)
	}
	r.ID = id
	return nil
}

// MutationOrder captures inbound payloads for create and replace flows while
// preserving field presence. Any id in the body is ignored.
type MutationOrder struct {
	ID           *int64       `json:"id,omitempty"`
	CreationDate *types.Date  `json:"creationDate"`
	Status       *string      `json:"status"`
	Total        *float64     `json:"total"`
	Customer     *CustomerRef `json:"customer"`
}

var (
	errMissingCreationDate = errors.New("creationDate is required")
	errMissingStatus       = errors.New("status is required")
	errMissingTotal        = errors.New("total is required")
	errMissingCustomer     = errors.New("customer is required")
	errMissingCustomerID   = errors.New("customer.id is required")
)

// ToFields checks field presence and converts the payload into domain fields.
// Value validation is left to the domain.
func ToFields(payload MutationOrder) (domain.OrderFields, error) {
	var missing []error
	if payload.CreationDate == nil {
		missing = append(missing, errMissingCreationDate)
	}
	if payload.Status == nil {
		missing = append(missing, errMissingStatus)
	}
	if payload.Total == nil {
		missing = append(missing, errMissingTotal)
	}
	if payload.Customer == nil {
		missing = append(missing, errMissingCustomer)
	}
	if len(missing) > 0 {
		return domain.OrderFields{}, errors.Join(missing...)
	}
	return domain.OrderFields{
		CreationDate: payload.CreationDate.Time,
		Status:       domain.Status(*payload.Status),
		Total:        *payload.Total,
		CustomerID:   payload.Customer.ID,
	}, nil
}

// FromDomain maps an order into its HTTP representation.
func FromDomain(order *domain.Order) Order {
	if order == nil {
		return Order{}
	}
	out := Order{
		ID:           order.ID,
		CreationDate: types.Date{Time: order.CreationDate},
		Status:       string(order.Status),
		Total:        order.Total,
		Customer:     Customer{ID: order.CustomerID},
	}
	if c := order.Customer; c != nil {
		out.Customer = Customer{
			ID:        c.ID,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Email:     c.Email,
			Address:   c.Address,
		}
	}
	return out
}

// FromDomainList maps a list of orders, never returning nil.
func FromDomainList(orders []*domain.Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, order := range orders {
		out = append(out, FromDomain(order))
	}
	return out
}
