package migrations

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/persistence/postgres"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

// Run applies the schema for the orders context: customers first, then orders
// with their foreign key and check constraints.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(postgres.Models()...)
}

// SeedCustomers upserts customer rows. Customers belong to another system;
// seeding exists for local environments and tests.
func SeedCustomers(ctx context.Context, db *gorm.DB, customers []domain.Customer) error {
	if db == nil || len(customers) == 0 {
		return nil
	}
	if err := postgres.NewCustomerStore(db).Upsert(ctx, customers...); err != nil {
		return fmt.Errorf("seed customers: %w", err)
	}
	return nil
}
