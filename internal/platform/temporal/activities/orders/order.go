package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	orderapp "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

const (
	// PersistOrderActivityName persists a new order through the order service.
	PersistOrderActivityName = "orders.activities.PersistOrder"
	// InvalidOrderInputErrorType tags validation failures so they are not retried.
	InvalidOrderInputErrorType = "InvalidOrderInput"
)

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service orderports.Service
}

// NewActivities wires the order service into the Temporal activities bundle.
func NewActivities(service orderports.Service) *Activities {
	return &Activities{service: service}
}

// PersistOrder creates the order and returns it with the store-assigned id.
func (a *Activities) PersistOrder(ctx context.Context, input orderports.CreateOrderInput) (*domain.Order, error) {
	logger := activity.GetLogger(ctx)
	customerID := input.Fields.CustomerID
	if a == nil || a.service == nil {
		logger.Error("order persist activity not initialized", "customerId", customerID)
		return nil, errors.New("order persist activity not initialized")
	}
	logger.Info("PersistOrder activity started", "customerId", customerID)
	order, err := a.service.Create(ctx, input.Fields)
	if err != nil {
		logger.Error("PersistOrder activity failed", "customerId", customerID, "error", err)
		if errors.Is(err, orderapp.ErrInvalidInput) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), InvalidOrderInputErrorType, err)
		}
		return nil, err
	}
	logger.Info("PersistOrder activity completed", "orderId", order.ID)
	return order, nil
}
