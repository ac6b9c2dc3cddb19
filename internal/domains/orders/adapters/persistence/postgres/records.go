package postgres

import (
	"time"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

// customerRecord mirrors the customers table. Ids are assigned by the owning
// system, so there is no sequence behind them.
type customerRecord struct {
	ID        int64  `gorm:"primaryKey;autoIncrement:false;column:id"`
	FirstName string `gorm:"column:first_name;size:50;not null"`
	LastName  string `gorm:"column:last_name;size:100;not null"`
	Email     string `gorm:"column:email;size:100;not null;uniqueIndex"`
	Address   string `gorm:"column:address;size:150;not null"`
}

func (customerRecord) TableName() string { return "customers" }

// orderRecord maps the order aggregate to a relational table.
type orderRecord struct {
	ID           int64          `gorm:"primaryKey;autoIncrement;column:id"`
	CreationDate time.Time      `gorm:"column:creation_date;type:date;not null;index"`
	Status       string         `gorm:"column:status;type:varchar(16);not null;index;check:chk_orders_status,status IN ('Pending','Delivered','Cancelled')"`
	Total        float64        `gorm:"column:total;not null;check:chk_orders_total,total >= 0"`
	CustomerID   int64          `gorm:"column:customer_id;not null;index"`
	Customer     customerRecord `gorm:"foreignKey:CustomerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

// Models lists the records backing this adapter, in dependency order, for
// schema migration.
func Models() []any {
	return []any{&customerRecord{}, &orderRecord{}, &idempotencyRecord{}}
}

func toRecord(order *domain.Order) orderRecord {
	return orderRecord{
		ID:           order.ID,
		CreationDate: domain.DateOf(order.CreationDate),
		Status:       string(order.Status),
		Total:        order.Total,
		CustomerID:   order.CustomerID,
	}
}

func (r orderRecord) toDomain() *domain.Order {
	order := &domain.Order{
		ID:           r.ID,
		CreationDate: domain.DateOf(r.CreationDate),
		Status:       domain.Status(r.Status),
		Total:        r.Total,
		CustomerID:   r.CustomerID,
	}
	if r.Customer.ID != 0 {
		customer := r.Customer.toDomain()
		order.Customer = &customer
	}
	return order
}

func toCustomerRecord(customer domain.Customer) customerRecord {
	return customerRecord{
		ID:        customer.ID,
		FirstName: customer.FirstName,
		LastName:  customer.LastName,
		Email:     customer.Email,
		Address:   customer.Address,
	}
}

func (r customerRecord) toDomain() domain.Customer {
	return domain.Customer{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Address:   r.Address,
	}
}
