package handlers

import (
	"context"
	"errors"
	"sync"

	"github.com/diogomassis/fixgo-payments/internal/models"
	"github.com/diogomassis/fixgo-payments/internal/persistence"
	"github.com/diogomassis/fixgo-payments/internal/services/health"
	"github.com/diogomassis/fixgo-payments/internal/services/processor"
)

var ErrMockStore = errors.New("row level security violation")

type mockGateway struct {
	mu       sync.Mutex
	calls    int
	saleFunc func(ctx context.Context, req *processor.SaleRequest) (*processor.SaleResult, error)
}

func (m *mockGateway) GetName() string { return "mock" }

func (m *mockGateway) Sale(ctx context.Context, req *processor.SaleRequest) (*processor.SaleResult, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.saleFunc != nil {
		return m.saleFunc(ctx, req)
	}
	return &processor.SaleResult{TransactionID: "tx123", CardType: "Visa"}, nil
}

func (m *mockGateway) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockDatastore struct {
	mu         sync.Mutex
	tables     []string
	updateFunc func(table string) error
	insertFunc func(table string) error
}

func (m *mockDatastore) Update(ctx context.Context, table string, match persistence.Match, fields persistence.Fields) error {
	m.mu.Lock()
	m.tables = append(m.tables, table)
	m.mu.Unlock()
	if m.updateFunc != nil {
		return m.updateFunc(table)
	}
	return nil
}

func (m *mockDatastore) Insert(ctx context.Context, table string, fields persistence.Fields) error {
	m.mu.Lock()
	m.tables = append(m.tables, table)
	m.mu.Unlock()
	if m.insertFunc != nil {
		return m.insertFunc(table)
	}
	return nil
}

func (m *mockDatastore) Ping(ctx context.Context) error { return nil }
func (m *mockDatastore) Close()                         {}

func (m *mockDatastore) writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.tables...)
}

type mockLedger struct {
	entries []models.ReconciliationEntry
	err     error
}

func (m *mockLedger) Record(ctx context.Context, entry models.ReconciliationEntry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockLedger) List(ctx context.Context, limit int64) ([]models.ReconciliationEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	if limit > 0 && int64(len(m.entries)) > limit {
		return m.entries[:limit], nil
	}
	return m.entries, nil
}

type mockHealth struct {
	statuses map[string]health.Status
}

func (m *mockHealth) Snapshot() map[string]health.Status { return m.statuses }

func (m *mockHealth) Healthy() bool {
	for _, s := range m.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}

type panickingExecutor struct{}

func (panickingExecutor) ExecutePayment(ctx context.Context, req models.PaymentRequest) (*models.CompletedPayment, error) {
	panic("nil work record")
}
