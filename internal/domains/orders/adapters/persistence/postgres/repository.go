package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM. The schema is owned by
// the migrations package.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts the order when it has no id yet and upserts it otherwise.
func (r *Repository) Save(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toRecord(order)
	db := r.db.WithContext(ctx).Omit(clause.Associations)
	if record.ID != 0 {
		db = db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"creation_date": record.CreationDate,
				"status":        record.Status,
				"total":         record.Total,
				"customer_id":   record.CustomerID,
				"updated_at":    gorm.Expr("NOW()"),
			}),
		})
	}
	if err := db.Create(&record).Error; err != nil {
		return nil, classifyWriteError(err)
	}
	return r.FindByID(ctx, record.ID)
}

// Update locks the row, applies mutate and writes the result in one transaction.
func (r *Repository) Update(ctx context.Context, id int64, mutate ports.MutateFunc) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record orderRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ports.ErrNotFound
			}
			return err
		}
		order := record.toDomain()
		if err := mutate(order); err != nil {
			return err
		}
		next := toRecord(order)
		result := tx.Model(&orderRecord{}).Where("id = ?", id).Updates(map[string]any{
			"creation_date": next.CreationDate,
			"status":        next.Status,
			"total":         next.Total,
			"customer_id":   next.CustomerID,
			"updated_at":    time.Now().UTC(),
		})
		if result.Error != nil {
			return classifyWriteError(result.Error)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// FindByID fetches an order and its customer.
func (r *Repository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).Preload("Customer").First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// DeleteByID removes an order by identifier.
func (r *Repository) DeleteByID(ctx context.Context, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&orderRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&orderRecord{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *Repository) FindAll(ctx context.Context) ([]*domain.Order, error) {
	return r.find(ctx)
}

func (r *Repository) FindByStatus(ctx context.Context, status domain.Status) ([]*domain.Order, error) {
	return r.find(ctx, "status = ?", string(status))
}

// FindByCreationDate matches on the calendar date only.
func (r *Repository) FindByCreationDate(ctx context.Context, date time.Time) ([]*domain.Order, error) {
	return r.find(ctx, "creation_date = ?", domain.DateOf(date).Format(time.DateOnly))
}

func (r *Repository) FindByCustomerID(ctx context.Context, customerID int64) ([]*domain.Order, error) {
	return r.find(ctx, "customer_id = ?", customerID)
}

func (r *Repository) find(ctx context.Context, conds ...any) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := r.db.WithContext(ctx).Preload("Customer").Order("id").Find(&records, conds...).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

// classifyWriteError separates integrity violations (SQLSTATE class 23) from
// other failures. Both pgx and lib/pq driver errors are recognised, as well as
// the sentinels GORM produces when TranslateError is on.
func classifyWriteError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) ||
		errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return fmt.Errorf("%w: %w", ports.ErrConstraintViolation, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23") {
		return fmt.Errorf("%w: %w", ports.ErrConstraintViolation, err)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "23" {
		return fmt.Errorf("%w: %w", ports.ErrConstraintViolation, err)
	}
	return err
}
