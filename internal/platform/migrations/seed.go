package migrations

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

type customerSeedFile struct {
	Customers []customerSeed `yaml:"customers"`
}

type customerSeed struct {
	ID        int64  `yaml:"id"`
	FirstName string `yaml:"firstName"`
	LastName  string `yaml:"lastName"`
	Email     string `yaml:"email"`
	Address   string `yaml:"address"`
}

// LoadCustomerSeed reads customers from a YAML file of the form
//
//	customers:
//	  - id: 1
//	    firstName: Ana
//	    lastName: Ruiz
//	    email: ana@example.com
//	    address: Calle 1
func LoadCustomerSeed(path string) ([]domain.Customer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read customer seed: %w", err)
	}
	var file customerSeedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse customer seed %s: %w", path, err)
	}
	customers := make([]domain.Customer, 0, len(file.Customers))
	seen := make(map[int64]struct{}, len(file.Customers))
	for i, c := range file.Customers {
		if c.ID <= 0 {
			return nil, fmt.Errorf("customer seed entry %d: id must be positive", i)
		}
		if _, dup := seen[c.ID]; dup {
			return nil, fmt.Errorf("customer seed entry %d: duplicate id %d", i, c.ID)
		}
		if strings.TrimSpace(c.Email) == "" {
			return nil, fmt.Errorf("customer seed entry %d: email is required", i)
		}
		seen[c.ID] = struct{}{}
		customers = append(customers, domain.Customer{
			ID:        c.ID,
			FirstName: c.FirstName,
			LastName:  c.LastName,
			Email:     c.Email,
			Address:   c.Address,
		})
	}
	return customers, nil
}
