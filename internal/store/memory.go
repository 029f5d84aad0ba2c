package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/craftbay/marketplace-api/internal/apperr"
)

// MemoryStore is an in-process RecordStore used by tests.
type MemoryStore struct {
	mu      sync.Mutex
	tables  map[string]map[string]map[string]any // table -> id -> fields
	nextID  int
	FailAll bool // when set, every call returns a StoreError
}

var _ RecordStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tables: make(map[string]map[string]map[string]any),
	}
}

func (m *MemoryStore) Create(ctx context.Context, table Table, fields map[string]any) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return nil, apperr.NewStoreError("create", table.Name, fmt.Errorf("store unavailable"))
	}

	m.nextID++
	id := fmt.Sprintf("rec%014d", m.nextID)
	m.table(table)[id] = copyFields(fields)
	return &Record{ID: id, Fields: copyFields(fields)}, nil
}

func (m *MemoryStore) GetByID(ctx context.Context, table Table, id string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return nil, apperr.NewStoreError("get", table.Name, fmt.Errorf("store unavailable"))
	}

	fields, ok := m.table(table)[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &Record{ID: id, Fields: copyFields(fields)}, nil
}

func (m *MemoryStore) Update(ctx context.Context, table Table, id string, fields map[string]any) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return nil, apperr.NewStoreError("update", table.Name, fmt.Errorf("store unavailable"))
	}

	existing, ok := m.table(table)[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	for k, v := range fields {
		existing[k] = v
	}
	return &Record{ID: id, Fields: copyFields(existing)}, nil
}

func (m *MemoryStore) Delete(ctx context.Context, table Table, id string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return nil, apperr.NewStoreError("delete", table.Name, fmt.Errorf("store unavailable"))
	}

	fields, ok := m.table(table)[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	delete(m.table(table), id)
	return &Record{ID: id, Fields: copyFields(fields)}, nil
}

func (m *MemoryStore) FilterByField(ctx context.Context, table Table, field, value string) ([]*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return nil, apperr.NewStoreError("filter", table.Name, fmt.Errorf("store unavailable"))
	}

	records := make([]*Record, 0)
	for id, fields := range m.table(table) {
		if s, ok := fields[field].(string); ok && s == value {
			records = append(records, &Record{ID: id, Fields: copyFields(fields)})
		}
	}
	return records, nil
}

func (m *MemoryStore) List(ctx context.Context, table Table, opts ListOptions) ([]*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return nil, apperr.NewStoreError("list", table.Name, fmt.Errorf("store unavailable"))
	}

	records := make([]*Record, 0)
	for id, fields := range m.table(table) {
		if opts.MaxRecords > 0 && len(records) >= opts.MaxRecords {
			break
		}
		records = append(records, &Record{ID: id, Fields: copyFields(fields)})
	}
	return records, nil
}

// Count reports the number of rows in a table. Test helper.
func (m *MemoryStore) Count(table Table) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.table(table))
}

func (m *MemoryStore) table(t Table) map[string]map[string]any {
	key := t.BaseID + "/" + t.Name
	if m.tables[key] == nil {
		m.tables[key] = make(map[string]map[string]any)
	}
	return m.tables[key]
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
