package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

// ErrInvalidInput signals a missing or malformed field, or a write the store
// refused.
var ErrInvalidInput = errors.New("invalid order input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInvalidInput) {
		return err
	}
	if errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrInvalidCustomer) ||
		errors.Is(err, domain.ErrMissingCreationDate) ||
		errors.Is(err, domain.ErrInvalidTotal) ||
		errors.Is(err, ports.ErrConstraintViolation) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
