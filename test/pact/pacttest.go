//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "orders-api"
	ConsumerName = "order-portal"

	StateNoOrders       = "no orders exist"
	StateCustomerExists = "customer 1 exists"
	StateOrderExists    = "order with id 301 exists"
	StateOrderMissing   = "no order with id 999"
)

const (
	ExistingCustomerID int64 = 1
	ExistingOrderID    int64 = 301
	MissingOrderID     int64 = 999

	ExampleCreationDate = "2025-05-05"
	ExampleTotal        = 49.99
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the order portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleCustomerPayload is the customer every provider state starts with.
func ExampleCustomerPayload() map[string]any {
	return map[string]any{
		"id":        ExistingCustomerID,
		"firstName": "Ana",
		"lastName":  "Ruiz",
		"email":     "ana@example.com",
		"address":   "Calle 1",
	}
}

// ExampleOrderPayload provides stable request data for order interactions.
func ExampleOrderPayload() map[string]any {
	return map[string]any{
		"creationDate": ExampleCreationDate,
		"status":       "Pending",
		"total":        ExampleTotal,
		"customer":     map[string]any{"id": ExistingCustomerID},
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
