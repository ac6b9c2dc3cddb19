package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

// CustomerStore writes customer rows on behalf of the system that owns them.
// The order service itself never calls it.
type CustomerStore struct {
	db *gorm.DB
}

func NewCustomerStore(db *gorm.DB) *CustomerStore {
	return &CustomerStore{db: db}
}

// Upsert inserts customers or refreshes their contact data by id.
func (s *CustomerStore) Upsert(ctx context.Context, customers ...domain.Customer) error {
	if s == nil || s.db == nil {
		return errors.New("postgres customer store not configured")
	}
	if len(customers) == 0 {
		return nil
	}
	records := make([]customerRecord, 0, len(customers))
	for _, c := range customers {
		records = append(records, toCustomerRecord(c))
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"first_name", "last_name", "email", "address"}),
	}).Create(&records).Error
	return classifyWriteError(err)
}
