package ports

import (
	"context"
	"errors"
	"time"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrConstraintViolation reports a write rejected by the store, such as a
	// reference to a missing customer or a duplicate unique value.
	ErrConstraintViolation = errors.New("order rejected by store constraint")
)

// MutateFunc changes an order loaded inside Repository.Update. Returning an
// error aborts the update without persisting anything.
type MutateFunc func(order *domain.Order) error

// Repository persists orders and exposes the order queries.
type Repository interface {
	FindAll(ctx context.Context) ([]*domain.Order, error)
	FindByID(ctx context.Context, id int64) (*domain.Order, error)
	FindByStatus(ctx context.Context, status domain.Status) ([]*domain.Order, error)
	FindByCreationDate(ctx context.Context, date time.Time) ([]*domain.Order, error)
	FindByCustomerID(ctx context.Context, customerID int64) ([]*domain.Order, error)
	// Save inserts the order when its id is zero and upserts it otherwise.
	Save(ctx context.Context, order *domain.Order) (*domain.Order, error)
	// Update loads the order, applies mutate and writes it back as one unit of work.
	Update(ctx context.Context, id int64, mutate MutateFunc) (*domain.Order, error)
	DeleteByID(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
