package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order persistence adapter. It keeps its own
// customer table so order references can be checked like a foreign key.
type Repository struct {
	mu        sync.RWMutex
	orders    map[int64]*domain.Order
	customers map[int64]domain.Customer
	nextID    int64
}

func NewRepository(customers ...domain.Customer) *Repository {
	r := &Repository{
		orders:    map[int64]*domain.Order{},
		customers: map[int64]domain.Customer{},
	}
	for _, c := range customers {
		r.customers[c.ID] = c
	}
	return r
}

// PutCustomer registers or replaces a customer. Customers are written by
// other systems; this hook stands in for them.
func (r *Repository) PutCustomer(customer domain.Customer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers[customer.ID] = customer
}

func (r *Repository) Save(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked(*order)
}

func (r *Repository) Update(_ context.Context, id int64, mutate ports.MutateFunc) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	working := *existing
	if err := mutate(&working); err != nil {
		return nil, err
	}
	working.ID = id
	return r.saveLocked(working)
}

func (r *Repository) FindByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.cloneLocked(order), nil
}

func (r *Repository) DeleteByID(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *Repository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.orders)), nil
}

func (r *Repository) FindAll(_ context.Context) ([]*domain.Order, error) {
	return r.filter(func(*domain.Order) bool { return true }), nil
}

func (r *Repository) FindByStatus(_ context.Context, status domain.Status) ([]*domain.Order, error) {
	return r.filter(func(o *domain.Order) bool { return o.Status == status }), nil
}

func (r *Repository) FindByCreationDate(_ context.Context, date time.Time) ([]*domain.Order, error) {
	return r.filter(func(o *domain.Order) bool { return domain.SameDate(o.CreationDate, date) }), nil
}

func (r *Repository) FindByCustomerID(_ context.Context, customerID int64) ([]*domain.Order, error) {
	return r.filter(func(o *domain.Order) bool { return o.CustomerID == customerID }), nil
}

func (r *Repository) saveLocked(order domain.Order) (*domain.Order, error) {
	if _, ok := r.customers[order.CustomerID]; !ok {
		return nil, fmt.Errorf("customer %d does not exist: %w", order.CustomerID, ports.ErrConstraintViolation)
	}
	if order.ID == 0 {
		r.nextID++
		order.ID = r.nextID
	} else if order.ID > r.nextID {
		r.nextID = order.ID
	}
	order.Customer = nil
	r.orders[order.ID] = &order
	return r.cloneLocked(&order), nil
}

func (r *Repository) filter(keep func(*domain.Order) bool) []*domain.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if keep(order) {
			list = append(list, r.cloneLocked(order))
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (r *Repository) cloneLocked(order *domain.Order) *domain.Order {
	clone := *order
	if customer, ok := r.customers[order.CustomerID]; ok {
		clone.Customer = &customer
	}
	return &clone
}
