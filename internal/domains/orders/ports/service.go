package ports

import (
	"context"
	"time"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

// Service exposes order use cases to adapters.
type Service interface {
	ListAll(ctx context.Context) ([]*domain.Order, error)
	Create(ctx context.Context, fields domain.OrderFields) (*domain.Order, error)
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	Replace(ctx context.Context, id int64, fields domain.OrderFields) (*domain.Order, error)
	SetStatus(ctx context.Context, id int64, status domain.Status) (*domain.Order, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
	FindByStatus(ctx context.Context, status domain.Status) ([]*domain.Order, error)
	FindByCreationDate(ctx context.Context, date time.Time) ([]*domain.Order, error)
	FindByCustomerID(ctx context.Context, customerID int64) ([]*domain.Order, error)
}
