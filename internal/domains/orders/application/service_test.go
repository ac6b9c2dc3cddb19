package application

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

type fakeOrderRepo struct {
	orders    map[int64]*domain.Order
	customers map[int64]bool
	nextID    int64
	saves     int
}

func newFakeOrderRepo(customerIDs ...int64) *fakeOrderRepo {
	repo := &fakeOrderRepo{orders: map[int64]*domain.Order{}, customers: map[int64]bool{}}
	for _, id := range customerIDs {
		repo.customers[id] = true
	}
	return repo
}

func (f *fakeOrderRepo) Save(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if !f.customers[order.CustomerID] {
		return nil, fmt.Errorf("customer %d: %w", order.CustomerID, ports.ErrConstraintViolation)
	}
	f.saves++
	copy := *order
	if copy.ID == 0 {
		f.nextID++
		copy.ID = f.nextID
	}
	f.orders[copy.ID] = &copy
	out := copy
	return &out, nil
}

func (f *fakeOrderRepo) Update(ctx context.Context, id int64, mutate ports.MutateFunc) (*domain.Order, error) {
	existing, err := f.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(existing); err != nil {
		return nil, err
	}
	return f.Save(ctx, existing)
}

func (f *fakeOrderRepo) FindByID(_ context.Context, id int64) (*domain.Order, error) {
	if o, ok := f.orders[id]; ok {
		copy := *o
		return &copy, nil
	}
	return nil, ports.ErrNotFound
}

func (f *fakeOrderRepo) DeleteByID(_ context.Context, id int64) error {
	if _, ok := f.orders[id]; !ok {
		return ports.ErrNotFound
	}
	delete(f.orders, id)
	return nil
}

func (f *fakeOrderRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.orders)), nil
}

func (f *fakeOrderRepo) FindAll(_ context.Context) ([]*domain.Order, error) {
	return f.filter(func(*domain.Order) bool { return true }), nil
}

func (f *fakeOrderRepo) FindByStatus(_ context.Context, status domain.Status) ([]*domain.Order, error) {
	return f.filter(func(o *domain.Order) bool { return o.Status == status }), nil
}

func (f *fakeOrderRepo) FindByCreationDate(_ context.Context, date time.Time) ([]*domain.Order, error) {
	return f.filter(func(o *domain.Order) bool { return domain.SameDate(o.CreationDate, date) }), nil
}

func (f *fakeOrderRepo) FindByCustomerID(_ context.Context, customerID int64) ([]*domain.Order, error) {
	return f.filter(func(o *domain.Order) bool { return o.CustomerID == customerID }), nil
}

func (f *fakeOrderRepo) filter(keep func(*domain.Order) bool) []*domain.Order {
	list := []*domain.Order{}
	for _, o := range f.orders {
		if keep(o) {
			copy := *o
			list = append(list, &copy)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func may5() time.Time { return time.Date(2025, 5, 5, 0, 0, 0, 0, time.UTC) }

func pendingFields(customerID int64) domain.OrderFields {
	return domain.OrderFields{CreationDate: may5(), Status: domain.StatusPending, Total: 49.99, CustomerID: customerID}
}

func TestCreate_AssignsIDAndRoundTrips(t *testing.T) {
	svc := NewService(newFakeOrderRepo(1))
	ctx := context.Background()

	created, err := svc.Create(ctx, pendingFields(1))
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	assert.Equal(t, pendingFields(1), created.Fields())

	fetched, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, fetched)
}

func TestCreate_ValidationErrors(t *testing.T) {
	repo := newFakeOrderRepo(1)
	svc := NewService(repo)

	fields := pendingFields(1)
	fields.Status = "Shipped"
	_, err := svc.Create(context.Background(), fields)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = svc.Create(context.Background(), domain.OrderFields{Status: domain.StatusPending, CustomerID: 1})
	require.ErrorIs(t, err, domain.ErrMissingCreationDate)
	assert.Zero(t, repo.saves)
}

func TestCreate_MissingCustomerIsInvalidInput(t *testing.T) {
	svc := NewService(newFakeOrderRepo(1))

	_, err := svc.Create(context.Background(), pendingFields(42))
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, ports.ErrConstraintViolation)
}

func TestReplace_KeepsIDAndOverwritesFields(t *testing.T) {
	svc := NewService(newFakeOrderRepo(1, 2))
	ctx := context.Background()
	created, err := svc.Create(ctx, pendingFields(1))
	require.NoError(t, err)

	next := domain.OrderFields{
		CreationDate: may5().AddDate(0, 1, 0),
		Status:       domain.StatusDelivered,
		Total:        12.5,
		CustomerID:   2,
	}
	updated, err := svc.Replace(ctx, created.ID, next)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, next, updated.Fields())
}

func TestReplace_NotFoundAndInvalid(t *testing.T) {
	repo := newFakeOrderRepo(1)
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Replace(ctx, 999, pendingFields(1))
	require.ErrorIs(t, err, ports.ErrNotFound)

	created, err := svc.Create(ctx, pendingFields(1))
	require.NoError(t, err)
	bad := pendingFields(1)
	bad.Total = -3
	_, err = svc.Replace(ctx, created.ID, bad)
	require.ErrorIs(t, err, ErrInvalidInput)

	stored, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, pendingFields(1), stored.Fields())
}

func TestSetStatus_ChangesOnlyStatus(t *testing.T) {
	svc := NewService(newFakeOrderRepo(1))
	ctx := context.Background()
	created, err := svc.Create(ctx, pendingFields(1))
	require.NoError(t, err)

	updated, err := svc.SetStatus(ctx, created.ID, domain.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, updated.Status)
	assert.Equal(t, created.CreationDate, updated.CreationDate)
	assert.Equal(t, created.Total, updated.Total)
	assert.Equal(t, created.CustomerID, updated.CustomerID)

	back, err := svc.SetStatus(ctx, created.ID, domain.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, back.Status)
}

func TestSetStatus_MissingOrderWinsOverInvalidStatus(t *testing.T) {
	repo := newFakeOrderRepo(1)
	svc := NewService(repo)

	_, err := svc.SetStatus(context.Background(), 999, "Entregado")
	require.ErrorIs(t, err, ports.ErrNotFound)
	assert.Zero(t, repo.saves)

	created, err := svc.Create(context.Background(), pendingFields(1))
	require.NoError(t, err)
	_, err = svc.SetStatus(context.Background(), created.ID, "Entregado")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestDelete_ThenGetIsNotFound(t *testing.T) {
	svc := NewService(newFakeOrderRepo(1))
	ctx := context.Background()
	created, err := svc.Create(ctx, pendingFields(1))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.GetByID(ctx, created.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, created.ID), ports.ErrNotFound)
}

func TestQueries_ReturnExactSubsets(t *testing.T) {
	svc := NewService(newFakeOrderRepo(1, 2))
	ctx := context.Background()

	seed := []domain.OrderFields{
		pendingFields(1),
		{CreationDate: may5(), Status: domain.StatusDelivered, Total: 5, CustomerID: 2},
		{CreationDate: may5().AddDate(0, 0, 1), Status: domain.StatusPending, Total: 7, CustomerID: 2},
	}
	for _, fields := range seed {
		_, err := svc.Create(ctx, fields)
		require.NoError(t, err)
	}

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	count, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(all)), count)

	pending, err := svc.FindByStatus(ctx, domain.StatusPending)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
	for _, o := range pending {
		assert.Equal(t, domain.StatusPending, o.Status)
	}

	lower, err := svc.FindByStatus(ctx, "pending")
	require.NoError(t, err)
	assert.Empty(t, lower)

	onMay5, err := svc.FindByCreationDate(ctx, time.Date(2025, 5, 5, 15, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, onMay5, 2)

	byCustomer, err := svc.FindByCustomerID(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, byCustomer, 2)
}
