package orders

import (
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-orders-api/internal/platform/temporal/sequences"
)

const (
	// OrderCreationWorkflowName is the public identifier for registering the workflow.
	OrderCreationWorkflowName = "orders.workflows.Creation"
	// OrderCreationTaskQueue is the queue consumed by the worker processing order workflows.
	OrderCreationTaskQueue = "ORDER_CREATION"
)

// OrderCreationWorkflowInput captures the payload required to create an order.
type OrderCreationWorkflowInput struct {
	Command orderports.CreateOrderInput
	TraceID string
}

// OrderCreationWorkflow persists a new order durably.
func OrderCreationWorkflow(ctx workflow.Context, input OrderCreationWorkflowInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	customerID := input.Command.Fields.CustomerID
	logger.Info("OrderCreationWorkflow started", withTraceID(input.TraceID, "customerId", customerID)...)
	order, err := sequences.RunOrderPersistenceSequence(ctx, input.Command)
	if err != nil {
		logger.Error("OrderCreationWorkflow failed", withTraceID(input.TraceID, "customerId", customerID, "error", err)...)
		return nil, err
	}
	logger.Info("OrderCreationWorkflow completed", withTraceID(input.TraceID, "orderId", order.ID)...)
	return order, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
