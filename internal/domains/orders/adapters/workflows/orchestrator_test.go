package workflows

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	oteltrace "go.opentelemetry.io/otel/trace"
	commonpb "go.temporal.io/api/common/v1"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	workflowpb "go.temporal.io/api/workflow/v1"
	"go.temporal.io/api/workflowservice/v1"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/converter"
	"go.temporal.io/sdk/mocks"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/memory"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/go-gin-orders-api/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-gin-orders-api/internal/platform/temporal/workflows/orders"
)

func validInput() ports.CreateOrderInput {
	return ports.CreateOrderInput{Fields: domain.OrderFields{
		CreationDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Status:       domain.StatusPending,
		Total:        100.5,
		CustomerID:   1,
	}}
}

func TestBuildOrderCreationWorkflowID(t *testing.T) {
	input := validInput()
	input.IdempotencyKey = "  key-1 "
	first := buildOrderCreationWorkflowID(input, "trace")
	second := buildOrderCreationWorkflowID(ports.CreateOrderInput{IdempotencyKey: "key-1"}, "other")
	require.Equal(t, first, second)
	require.True(t, strings.HasPrefix(first, "order-creation-idem-"))
	require.Len(t, strings.TrimPrefix(first, "order-creation-idem-"), 16)

	a := buildOrderCreationWorkflowID(validInput(), "abc")
	b := buildOrderCreationWorkflowID(validInput(), "abc")
	require.NotEqual(t, a, b)
	require.True(t, strings.HasSuffix(a, "-abc"))
	require.True(t, strings.HasSuffix(buildOrderCreationWorkflowID(validInput(), ""), "-untraced"))
}

func TestWorkflowTraceID(t *testing.T) {
	require.Empty(t, workflowTraceID(context.Background()))

	traceID := oteltrace.TraceID{1, 2, 3}
	spanCtx := oteltrace.NewSpanContext(oteltrace.SpanContextConfig{TraceID: traceID, SpanID: oteltrace.SpanID{4}})
	ctx := oteltrace.ContextWithSpanContext(context.Background(), spanCtx)
	require.Equal(t, traceID.String(), workflowTraceID(ctx))
}

func TestMapWorkflowError(t *testing.T) {
	appErr := temporal.NewNonRetryableApplicationError("invalid order input: order status is invalid", orderactivities.InvalidOrderInputErrorType, nil)
	err := mapWorkflowError(errors.Join(errors.New("workflow failed"), appErr))
	require.ErrorIs(t, err, application.ErrInvalidInput)
	require.Equal(t, "invalid order input: order status is invalid", err.Error())

	other := errors.New("boom")
	require.Same(t, other, mapWorkflowError(other))
}

func TestInlineOrderWorkflows_CreateOrder(t *testing.T) {
	repo := memory.NewRepository(domain.Customer{ID: 1, FirstName: "Ada"})
	orchestrator := NewInlineOrderWorkflows(application.NewService(repo))

	order, err := orchestrator.CreateOrder(context.Background(), validInput())
	require.NoError(t, err)
	require.Equal(t, int64(1), order.ID)
	require.NotNil(t, order.Customer)

	bad := validInput()
	bad.Fields.Status = "Shipped"
	_, err = orchestrator.CreateOrder(context.Background(), bad)
	require.ErrorIs(t, err, application.ErrInvalidInput)

	var nilOrchestrator *InlineOrderWorkflows
	_, err = nilOrchestrator.CreateOrder(context.Background(), validInput())
	require.Error(t, err)
}

func TestTemporalOrderWorkflows_CreateOrder(t *testing.T) {
	c := &mocks.Client{}
	run := &mocks.WorkflowRun{}
	c.On("ExecuteWorkflow", mock.Anything, mock.MatchedBy(func(opts client.StartWorkflowOptions) bool {
		return opts.TaskQueue == orderworkflows.OrderCreationTaskQueue &&
			strings.HasPrefix(opts.ID, "order-creation-") &&
			opts.WorkflowIDReusePolicy == enumspb.WORKFLOW_ID_REUSE_POLICY_UNSPECIFIED &&
			opts.Memo == nil
	}), orderworkflows.OrderCreationWorkflowName, mock.Anything).Return(run, nil).Once()
	run.On("Get", mock.Anything, mock.AnythingOfType("*domain.Order")).Run(func(args mock.Arguments) {
		out := args.Get(1).(*domain.Order)
		*out = domain.Order{ID: 7, Status: domain.StatusPending, CustomerID: 1}
	}).Return(nil).Once()

	order, err := NewTemporalOrderWorkflows(c).CreateOrder(context.Background(), validInput())
	require.NoError(t, err)
	require.Equal(t, int64(7), order.ID)
	c.AssertExpectations(t)
	run.AssertExpectations(t)
}

func describeWithRequestHash(t *testing.T, hash string) *workflowservice.DescribeWorkflowExecutionResponse {
	t.Helper()
	payload, err := converter.GetDefaultDataConverter().ToPayload(hash)
	require.NoError(t, err)
	return &workflowservice.DescribeWorkflowExecutionResponse{
		WorkflowExecutionInfo: &workflowpb.WorkflowExecutionInfo{
			Memo: &commonpb.Memo{Fields: map[string]*commonpb.Payload{requestHashMemoKey: payload}},
		},
	}
}

func TestTemporalOrderWorkflows_ReplaysIdempotentRun(t *testing.T) {
	c := &mocks.Client{}
	existing := &mocks.WorkflowRun{}
	input := validInput()
	input.IdempotencyKey = "abc"
	workflowID := buildOrderCreationWorkflowID(input, "")
	hash, err := application.FingerprintCreateOrder(input.Fields)
	require.NoError(t, err)

	c.On("ExecuteWorkflow", mock.Anything, mock.MatchedBy(func(opts client.StartWorkflowOptions) bool {
		return opts.ID == workflowID &&
			opts.WorkflowIDReusePolicy == enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE &&
			opts.Memo[requestHashMemoKey] == hash
	}), orderworkflows.OrderCreationWorkflowName, mock.Anything).
		Return(nil, serviceerror.NewWorkflowExecutionAlreadyStarted("already started", "req", "run-1")).Once()
	c.On("DescribeWorkflowExecution", mock.Anything, workflowID, "run-1").Return(describeWithRequestHash(t, hash), nil).Once()
	c.On("GetWorkflow", mock.Anything, workflowID, "run-1").Return(existing).Once()
	existing.On("Get", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		*args.Get(1).(*domain.Order) = domain.Order{ID: 3}
	}).Return(nil).Once()

	order, err := NewTemporalOrderWorkflows(c).CreateOrder(context.Background(), input)
	require.NoError(t, err)
	require.Equal(t, int64(3), order.ID)
	c.AssertExpectations(t)
}

func TestTemporalOrderWorkflows_ReusedKeyWithDifferentFieldsConflicts(t *testing.T) {
	c := &mocks.Client{}
	input := validInput()
	input.IdempotencyKey = "abc"
	workflowID := buildOrderCreationWorkflowID(input, "")
	first, err := application.FingerprintCreateOrder(input.Fields)
	require.NoError(t, err)

	changed := input
	changed.Fields.Total = 1
	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, orderworkflows.OrderCreationWorkflowName, mock.Anything).
		Return(nil, serviceerror.NewWorkflowExecutionAlreadyStarted("already started", "req", "run-1")).Once()
	c.On("DescribeWorkflowExecution", mock.Anything, workflowID, "run-1").Return(describeWithRequestHash(t, first), nil).Once()

	_, err = NewTemporalOrderWorkflows(c).CreateOrder(context.Background(), changed)
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	c.AssertNotCalled(t, "GetWorkflow", mock.Anything, mock.Anything, mock.Anything)
	c.AssertExpectations(t)
}

func TestTemporalOrderWorkflows_StartFailure(t *testing.T) {
	c := &mocks.Client{}
	c.On("ExecuteWorkflow", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, serviceerror.NewWorkflowExecutionAlreadyStarted("already started", "req", "run-1")).Once()

	_, err := NewTemporalOrderWorkflows(c).CreateOrder(context.Background(), validInput())
	var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
	require.ErrorAs(t, err, &alreadyStarted)

	var unconfigured *TemporalOrderWorkflows
	_, err = unconfigured.CreateOrder(context.Background(), validInput())
	require.Error(t, err)
}

func TestInlineOrderWorkflows_ReplaysIdempotencyKey(t *testing.T) {
	repo := memory.NewRepository(domain.Customer{ID: 1})
	service := application.NewService(repo)
	orchestrator := NewInlineOrderWorkflows(service, WithIdempotencyStore(memory.NewIdempotencyStore()))
	ctx := context.Background()

	input := validInput()
	input.IdempotencyKey = "retry-me"
	first, err := orchestrator.CreateOrder(ctx, input)
	require.NoError(t, err)
	again, err := orchestrator.CreateOrder(ctx, input)
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	changed := input
	changed.Fields.Total = 1
	_, err = orchestrator.CreateOrder(ctx, changed)
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)

	unkeyed := validInput()
	second, err := orchestrator.CreateOrder(ctx, unkeyed)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
}

type racingIdempotencyStore struct {
	*memory.IdempotencyStore
}

// Get always misses so Save sees the record written by the other request.
func (s *racingIdempotencyStore) Get(context.Context, string) (*ports.IdempotencyRecord, error) {
	return nil, nil
}

func TestInlineOrderWorkflows_LosingRaceReturnsWinner(t *testing.T) {
	repo := memory.NewRepository(domain.Customer{ID: 1})
	service := application.NewService(repo)
	ctx := context.Background()

	winner, err := service.Create(ctx, validInput().Fields)
	require.NoError(t, err)
	hash, err := application.FingerprintCreateOrder(validInput().Fields)
	require.NoError(t, err)
	store := &racingIdempotencyStore{IdempotencyStore: memory.NewIdempotencyStore()}
	_, err = store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: hash, OrderID: winner.ID})
	require.NoError(t, err)

	input := validInput()
	input.IdempotencyKey = "k"
	got, err := NewInlineOrderWorkflows(service, WithIdempotencyStore(store)).CreateOrder(ctx, input)
	require.NoError(t, err)
	require.Equal(t, winner.ID, got.ID)
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}
