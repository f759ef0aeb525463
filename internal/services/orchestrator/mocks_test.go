package orchestrator

import (
	"context"
	"errors"
	"sync"

	"github.com/diogomassis/fixgo-payments/internal/models"
	"github.com/diogomassis/fixgo-payments/internal/persistence"
	"github.com/diogomassis/fixgo-payments/internal/services/processor"
)

var (
	ErrMockStore  = errors.New("mock store error")
	ErrMockLedger = errors.New("mock ledger error")
)

type MockGateway struct {
	mu        sync.Mutex
	SaleFunc  func(ctx context.Context, req *processor.SaleRequest) (*processor.SaleResult, error)
	CallCount int
	LastSale  *processor.SaleRequest
}

func (m *MockGateway) GetName() string {
	return "mock"
}

func (m *MockGateway) Sale(ctx context.Context, req *processor.SaleRequest) (*processor.SaleResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount++
	m.LastSale = req
	if m.SaleFunc != nil {
		return m.SaleFunc(ctx, req)
	}
	return &processor.SaleResult{TransactionID: "tx123", CardType: "Visa"}, nil
}

type StoreCall struct {
	Op     string
	Table  string
	Match  persistence.Match
	Fields persistence.Fields
}

type MockDatastore struct {
	mu         sync.Mutex
	Calls      []StoreCall
	UpdateFunc func(ctx context.Context, table string, match persistence.Match, fields persistence.Fields) error
	InsertFunc func(ctx context.Context, table string, fields persistence.Fields) error
}

func (m *MockDatastore) Update(ctx context.Context, table string, match persistence.Match, fields persistence.Fields) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, StoreCall{Op: "update", Table: table, Match: match, Fields: fields})
	m.mu.Unlock()
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, table, match, fields)
	}
	return nil
}

func (m *MockDatastore) Insert(ctx context.Context, table string, fields persistence.Fields) error {
	m.mu.Lock()
	m.Calls = append(m.Calls, StoreCall{Op: "insert", Table: table, Fields: fields})
	m.mu.Unlock()
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, table, fields)
	}
	return nil
}

func (m *MockDatastore) Ping(ctx context.Context) error {
	return nil
}

func (m *MockDatastore) Close() {}

func failTable(name string) func(ctx context.Context, table string, match persistence.Match, fields persistence.Fields) error {
	return func(ctx context.Context, table string, match persistence.Match, fields persistence.Fields) error {
		if table == name {
			return ErrMockStore
		}
		return nil
	}
}

type MockLedger struct {
	mu      sync.Mutex
	Entries []models.ReconciliationEntry
	Err     error
}

func (m *MockLedger) Record(ctx context.Context, entry models.ReconciliationEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Entries = append(m.Entries, entry)
	return nil
}

func (m *MockLedger) List(ctx context.Context, limit int64) ([]models.ReconciliationEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ReconciliationEntry(nil), m.Entries...), nil
}
