package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/go-gin-orders-api/internal/platform/temporal/activities/orders"
)

// RunOrderPersistenceSequence executes the activities needed to persist a new order.
func RunOrderPersistenceSequence(ctx workflow.Context, input orderports.CreateOrderInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	customerID := input.Fields.CustomerID
	logger.Info("order persistence sequence started", "customerId", customerID)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        2 * time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        10 * time.Second,
			MaximumAttempts:        5,
			NonRetryableErrorTypes: []string{orderactivities.InvalidOrderInputErrorType},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var order domain.Order
	err := workflow.ExecuteActivity(ctx, orderactivities.PersistOrderActivityName, input).Get(ctx, &order)
	if err != nil {
		logger.Error("order persistence sequence failed", "customerId", customerID, "error", err)
		return nil, err
	}
	logger.Info("order persistence sequence completed", "orderId", order.ID)
	return &order, nil
}
