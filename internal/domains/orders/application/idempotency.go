package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

type normalizedCreateOrder struct {
	CreationDate string  `json:"creationDate"`
	Status       string  `json:"status"`
	Total        float64 `json:"total"`
	CustomerID   int64   `json:"customerId"`
}

// FingerprintCreateOrder builds a deterministic hash of the create-order
// fields. Time of day does not affect the hash.
func FingerprintCreateOrder(fields domain.OrderFields) (string, error) {
	date := ""
	if !fields.CreationDate.IsZero() {
		date = domain.DateOf(fields.CreationDate).Format(time.DateOnly)
	}
	payload, err := json.Marshal(normalizedCreateOrder{
		CreationDate: date,
		Status:       string(fields.Status),
		Total:        fields.Total,
		CustomerID:   fields.CustomerID,
	})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
