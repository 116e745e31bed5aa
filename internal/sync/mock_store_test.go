package sync

import (
	"context"

	"github.com/groblegark/confpub/internal/model"
	"github.com/groblegark/confpub/internal/store"
)

// mockStore is a minimal store.Store for sync tests: only ListAllRecords
// matters, everything else is unused by the exporter.
type mockStore struct {
	records []*model.ConfigRecord
	listErr error
}

func (m *mockStore) ListAllRecords(ctx context.Context) ([]*model.ConfigRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.records, nil
}

func (m *mockStore) LockOwner(ctx context.Context, key model.OwnerKey) error { return nil }

func (m *mockStore) CreateRecord(ctx context.Context, rec *model.ConfigRecord) error { return nil }

func (m *mockStore) UpdateRecord(ctx context.Context, rec *model.ConfigRecord) error { return nil }

func (m *mockStore) GetRecord(ctx context.Context, key model.OwnerKey, status model.Status) (*model.ConfigRecord, error) {
	return nil, nil
}

func (m *mockStore) ListRecords(ctx context.Context, productID string) ([]*model.ConfigRecord, error) {
	return nil, nil
}

func (m *mockStore) AppendHistory(ctx context.Context, entry *model.HistoryEntry) error { return nil }

func (m *mockStore) GetHistoryEntry(ctx context.Context, id string) (*model.HistoryEntry, error) {
	return nil, nil
}

func (m *mockStore) ListHistory(ctx context.Context, filter model.HistoryFilter) ([]*model.HistoryEntry, int, error) {
	return nil, 0, nil
}

func (m *mockStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error { return nil }

var _ store.Store = (*mockStore)(nil)
