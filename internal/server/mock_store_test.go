package server

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/groblegark/confpub/internal/model"
	"github.com/groblegark/confpub/internal/store"
)

// recordKey addresses the at-most-one record per (owner key, status) slot.
type recordKey struct {
	owner  model.OwnerKey
	status model.Status
}

// mockStore is an in-memory store.Store for handler tests, mirroring the
// Postgres store's contract: missing rows return sql.ErrNoRows and history
// sequence numbers are assigned on append.
type mockStore struct {
	mu      sync.Mutex
	records map[recordKey]*model.ConfigRecord
	history []*model.HistoryEntry
	nextSeq int64
}

func newMockStore() *mockStore {
	return &mockStore{records: make(map[recordKey]*model.ConfigRecord)}
}

func (m *mockStore) LockOwner(ctx context.Context, key model.OwnerKey) error {
	return nil
}

func (m *mockStore) CreateRecord(ctx context.Context, rec *model.ConfigRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := recordKey{owner: rec.Key(), status: rec.Status}
	if _, ok := m.records[k]; ok {
		return store.ErrConflict
	}
	cp := *rec
	cp.Data = rec.Data.Clone()
	m.records[k] = &cp
	return nil
}

func (m *mockStore) UpdateRecord(ctx context.Context, rec *model.ConfigRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := recordKey{owner: rec.Key(), status: rec.Status}
	if _, ok := m.records[k]; !ok {
		return sql.ErrNoRows
	}
	cp := *rec
	cp.Data = rec.Data.Clone()
	m.records[k] = &cp
	return nil
}

func (m *mockStore) GetRecord(ctx context.Context, key model.OwnerKey, status model.Status) (*model.ConfigRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[recordKey{owner: key, status: status}]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *rec
	cp.Data = rec.Data.Clone()
	return &cp, nil
}

func (m *mockStore) ListRecords(ctx context.Context, productID string) ([]*model.ConfigRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ConfigRecord
	for _, rec := range m.records {
		if rec.ProductID != productID {
			continue
		}
		cp := *rec
		cp.Data = rec.Data.Clone()
		out = append(out, &cp)
	}
	sortRecords(out)
	return out, nil
}

func (m *mockStore) ListAllRecords(ctx context.Context) ([]*model.ConfigRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.ConfigRecord
	for _, rec := range m.records {
		cp := *rec
		cp.Data = rec.Data.Clone()
		out = append(out, &cp)
	}
	sortRecords(out)
	return out, nil
}

func sortRecords(recs []*model.ConfigRecord) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].ProductID != recs[j].ProductID {
			return recs[i].ProductID < recs[j].ProductID
		}
		if recs[i].ConfigKind != recs[j].ConfigKind {
			return recs[i].ConfigKind < recs[j].ConfigKind
		}
		return recs[i].Status < recs[j].Status
	})
}

func (m *mockStore) AppendHistory(ctx context.Context, entry *model.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextSeq++
	cp := *entry
	cp.Seq = m.nextSeq
	cp.Data = entry.Data.Clone()
	m.history = append(m.history, &cp)
	return nil
}

func (m *mockStore) GetHistoryEntry(ctx context.Context, id string) (*model.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.history {
		if e.ID == id {
			cp := *e
			cp.Data = e.Data.Clone()
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStore) ListHistory(ctx context.Context, filter model.HistoryFilter) ([]*model.HistoryEntry, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := filter.Normalize()

	var matched []*model.HistoryEntry
	for _, e := range m.history {
		if e.ProductID != f.ProductID {
			continue
		}
		if f.ConfigKind != "" && e.ConfigKind != f.ConfigKind {
			continue
		}
		matched = append(matched, e)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Seq > matched[j].Seq
	})

	total := len(matched)
	start := f.Offset()
	if start > total {
		start = total
	}
	end := start + f.Limit
	if end > total {
		end = total
	}

	page := make([]*model.HistoryEntry, 0, end-start)
	for _, e := range matched[start:end] {
		cp := *e
		cp.Data = e.Data.Clone()
		page = append(page, &cp)
	}
	return page, total, nil
}

func (m *mockStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error { return nil }

var _ store.Store = (*mockStore)(nil)
