package ports

import (
	"context"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

// CreateOrderInput is the payload of the order creation workflow.
type CreateOrderInput struct {
	Fields         domain.OrderFields
	IdempotencyKey string
}

// WorkflowOrchestrator runs order creation either inline or on a durable engine.
type WorkflowOrchestrator interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
}
