package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFields() OrderFields {
	return OrderFields{
		CreationDate: time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC),
		Status:       StatusPending,
		Total:        49.99,
		CustomerID:   1,
	}
}

func TestNewOrder_NormalisesCreationDate(t *testing.T) {
	fields := validFields()
	fields.CreationDate = time.Date(2025, 5, 5, 17, 42, 3, 0, time.FixedZone("CEST", 2*60*60))

	order, err := NewOrder(fields)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC), order.CreationDate)
	assert.Zero(t, order.ID)
}

func TestNewOrder_RejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*OrderFields)
		want   error
	}{
		{"unknown status", func(f *OrderFields) { f.Status = "Shipped" }, ErrInvalidStatus},
		{"lower case status", func(f *OrderFields) { f.Status = "pending" }, ErrInvalidStatus},
		{"empty status", func(f *OrderFields) { f.Status = "" }, ErrInvalidStatus},
		{"missing customer", func(f *OrderFields) { f.CustomerID = 0 }, ErrInvalidCustomer},
		{"missing date", func(f *OrderFields) { f.CreationDate = time.Time{} }, ErrMissingCreationDate},
		{"negative total", func(f *OrderFields) { f.Total = -1 }, ErrInvalidTotal},
		{"nan total", func(f *OrderFields) { f.Total = math.NaN() }, ErrInvalidTotal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields := validFields()
			tt.mutate(&fields)
			_, err := NewOrder(fields)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReplace_KeepsIDAndLeavesOrderOnError(t *testing.T) {
	order, err := NewOrder(validFields())
	require.NoError(t, err)
	order.ID = 12
	order.Customer = &Customer{ID: 1}

	err = order.Replace(OrderFields{CreationDate: time.Now(), Status: "bogus", Total: 1, CustomerID: 2})
	require.ErrorIs(t, err, ErrInvalidStatus)
	assert.Equal(t, validFields().CustomerID, order.CustomerID)
	assert.NotNil(t, order.Customer)

	next := OrderFields{
		CreationDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Status:       StatusDelivered,
		Total:        10,
		CustomerID:   2,
	}
	require.NoError(t, order.Replace(next))
	assert.Equal(t, int64(12), order.ID)
	assert.Equal(t, next, order.Fields())
	assert.Nil(t, order.Customer, "stale customer must be dropped when the reference changes")
}

func TestUpdateStatus_AllowsAnyTransition(t *testing.T) {
	order, err := NewOrder(validFields())
	require.NoError(t, err)

	require.NoError(t, order.UpdateStatus(StatusDelivered))
	require.NoError(t, order.UpdateStatus(StatusPending))
	require.NoError(t, order.UpdateStatus(StatusCancelled))
	require.ErrorIs(t, order.UpdateStatus("Entregado"), ErrInvalidStatus)
	assert.Equal(t, StatusCancelled, order.Status)
}

func TestSameDate(t *testing.T) {
	a := time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC)
	b := time.Date(2025, 5, 5, 23, 59, 0, 0, time.UTC)
	assert.True(t, SameDate(a, b))
	assert.False(t, SameDate(a, a.AddDate(0, 0, 1)))
}
