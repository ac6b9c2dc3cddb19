package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	oteltrace "go.opentelemetry.io/otel/trace"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/converter"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/go-gin-orders-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-gin-orders-api/internal/platform/temporal/workflows/orders"
)

// requestHashMemoKey holds the create-order fingerprint on idempotent runs.
const requestHashMemoKey = "requestHash"

var (
	_ ports.WorkflowOrchestrator = (*TemporalOrderWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineOrderWorkflows)(nil)
)

// TemporalOrderWorkflows starts order workflows on a Temporal cluster.
type TemporalOrderWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalOrderWorkflows wires a Temporal client into the orchestrator.
func NewTemporalOrderWorkflows(c client.Client) *TemporalOrderWorkflows {
	return &TemporalOrderWorkflows{client: c, taskQueue: orderworkflows.OrderCreationTaskQueue}
}

// CreateOrder starts the Temporal workflow that persists a new order and waits for its result.
func (o *TemporalOrderWorkflows) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal order workflows not configured")
	}
	traceComponent := workflowTraceID(ctx)
	workflowID := buildOrderCreationWorkflowID(input, traceComponent)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	idempotent := strings.TrimSpace(input.IdempotencyKey) != ""
	var requestHash string
	if idempotent {
		var err error
		if requestHash, err = application.FingerprintCreateOrder(input.Fields); err != nil {
			return nil, err
		}
		// a completed run with the same key must be replayed, not re-executed
		options.WorkflowIDReusePolicy = enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE
		options.Memo = map[string]interface{}{requestHashMemoKey: requestHash}
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		orderworkflows.OrderCreationWorkflowName,
		orderworkflows.OrderCreationWorkflowInput{Command: input, TraceID: traceComponent},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) || !idempotent {
			return nil, err
		}
		if err := o.checkRequestHash(ctx, workflowID, alreadyStarted.RunId, requestHash); err != nil {
			return nil, err
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var order domain.Order
	if err := run.Get(ctx, &order); err != nil {
		return nil, mapWorkflowError(err)
	}
	return &order, nil
}

// checkRequestHash rejects a reused idempotency key whose first run was
// started for different order fields. Runs without the memo are replayed.
func (o *TemporalOrderWorkflows) checkRequestHash(ctx context.Context, workflowID, runID, requestHash string) error {
	desc, err := o.client.DescribeWorkflowExecution(ctx, workflowID, runID)
	if err != nil {
		return fmt.Errorf("describe workflow %s: %w", workflowID, err)
	}
	payload, ok := desc.GetWorkflowExecutionInfo().GetMemo().GetFields()[requestHashMemoKey]
	if !ok {
		return nil
	}
	var stored string
	if err := converter.GetDefaultDataConverter().FromPayload(payload, &stored); err != nil {
		return fmt.Errorf("decode %s memo: %w", requestHashMemoKey, err)
	}
	if stored != requestHash {
		return fmt.Errorf("%w: workflow %s was started for a different order", ports.ErrIdempotencyConflict, workflowID)
	}
	return nil
}

// InlineOrderWorkflows executes the service directly without Temporal, useful for tests or dev fallbacks.
type InlineOrderWorkflows struct {
	service     ports.Service
	idempotency ports.IdempotencyStore
}

// InlineOption customizes InlineOrderWorkflows.
type InlineOption func(*InlineOrderWorkflows)

// WithIdempotencyStore replays creations that repeat an Idempotency-Key.
func WithIdempotencyStore(store ports.IdempotencyStore) InlineOption {
	return func(o *InlineOrderWorkflows) {
		o.idempotency = store
	}
}

// NewInlineOrderWorkflows wraps the order service for synchronous execution.
func NewInlineOrderWorkflows(service ports.Service, opts ...InlineOption) *InlineOrderWorkflows {
	o := &InlineOrderWorkflows{service: service}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CreateOrder delegates to the application service without durable orchestration.
// A repeated idempotency key returns the order created the first time.
func (o *InlineOrderWorkflows) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline order workflows not configured")
	}
	key := strings.TrimSpace(input.IdempotencyKey)
	if key == "" || o.idempotency == nil {
		return o.service.Create(ctx, input.Fields)
	}
	hash, err := application.FingerprintCreateOrder(input.Fields)
	if err != nil {
		return nil, err
	}
	existing, err := o.idempotency.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load idempotency key: %w", err)
	}
	if existing != nil {
		return o.replay(ctx, key, hash, existing)
	}
	order, err := o.service.Create(ctx, input.Fields)
	if err != nil {
		return nil, err
	}
	stored, err := o.idempotency.Save(ctx, ports.IdempotencyRecord{Key: key, RequestHash: hash, OrderID: order.ID})
	if errors.Is(err, ports.ErrIdempotencyConflict) && stored != nil {
		// a concurrent request with the same key won; drop our duplicate
		if delErr := o.service.Delete(ctx, order.ID); delErr != nil {
			return nil, fmt.Errorf("discard duplicate order %d: %w", order.ID, delErr)
		}
		return o.replay(ctx, key, hash, stored)
	}
	if err != nil {
		return nil, fmt.Errorf("record idempotency key: %w", err)
	}
	return order, nil
}

func (o *InlineOrderWorkflows) replay(ctx context.Context, key, hash string, record *ports.IdempotencyRecord) (*domain.Order, error) {
	if record.RequestHash != hash {
		return nil, fmt.Errorf("%w: key %q was used for a different order", ports.ErrIdempotencyConflict, key)
	}
	return o.service.GetByID(ctx, record.OrderID)
}

// mapWorkflowError restores the application sentinel for validation failures
// that crossed the workflow boundary as Temporal application errors.
func mapWorkflowError(err error) error {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) && appErr.Type() == orderactivities.InvalidOrderInputErrorType {
		msg := strings.TrimPrefix(appErr.Message(), application.ErrInvalidInput.Error()+": ")
		return fmt.Errorf("%w: %s", application.ErrInvalidInput, msg)
	}
	return err
}

func buildOrderCreationWorkflowID(input ports.CreateOrderInput, traceComponent string) string {
	if key := strings.TrimSpace(input.IdempotencyKey); key != "" {
		return fmt.Sprintf("order-creation-idem-%s", hashIdempotencyKey(key))
	}
	if traceComponent == "" {
		traceComponent = "untraced"
	}
	return fmt.Sprintf("order-creation-%s-%s", uuid.NewString(), traceComponent)
}

func hashIdempotencyKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
