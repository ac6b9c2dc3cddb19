package application

import (
	"context"
	"time"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

// Service orchestrates order use cases.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListAll(ctx context.Context) ([]*domain.Order, error) {
	return s.repo.FindAll(ctx)
}

// Create validates the fields and lets the store assign the id.
func (s *Service) Create(ctx context.Context, fields domain.OrderFields) (*domain.Order, error) {
	order, err := domain.NewOrder(fields)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Save(ctx, order)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	return s.repo.FindByID(ctx, id)
}

// Replace overwrites creation date, status, total and customer. The id is
// always the one from the path, never from the payload.
func (s *Service) Replace(ctx context.Context, id int64, fields domain.OrderFields) (*domain.Order, error) {
	updated, err := s.repo.Update(ctx, id, func(order *domain.Order) error {
		return order.Replace(fields)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return updated, nil
}

// SetStatus changes only the status. A missing order is reported before the
// status value is checked.
func (s *Service) SetStatus(ctx context.Context, id int64, status domain.Status) (*domain.Order, error) {
	updated, err := s.repo.Update(ctx, id, func(order *domain.Order) error {
		return order.UpdateStatus(status)
	})
	if err != nil {
		return nil, mapError(err)
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteByID(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *Service) FindByStatus(ctx context.Context, status domain.Status) ([]*domain.Order, error) {
	return s.repo.FindByStatus(ctx, status)
}

func (s *Service) FindByCreationDate(ctx context.Context, date time.Time) ([]*domain.Order, error) {
	return s.repo.FindByCreationDate(ctx, date)
}

func (s *Service) FindByCustomerID(ctx context.Context, customerID int64) ([]*domain.Order, error) {
	return s.repo.FindByCustomerID(ctx, customerID)
}

var _ ports.Service = (*Service)(nil)
