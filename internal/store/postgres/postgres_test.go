package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/groblegark/confpub/internal/model"
	"github.com/groblegark/confpub/internal/store"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

// recordRowColumns is the column list for scanRecord results.
var recordRowColumns = []string{
	"id", "product_id", "config_kind", "status", "version", "data", "created_at", "updated_at",
}

// historyRowColumns is the column list for scanHistoryEntry results.
var historyRowColumns = []string{
	"id", "seq", "product_id", "config_kind", "version", "action", "data",
	"changed_by", "changed_by_name", "changed_at",
}

// historyWithTotalColumns prepends the COUNT(*) OVER() column used by list queries.
var historyWithTotalColumns = append([]string{"total_count"}, historyRowColumns...)

func testDocJSON(t *testing.T, title string) []byte {
	t.Helper()
	doc := model.ConfigDocument{
		Meta: model.Meta{Title: title, SchemaVersion: 1},
		Body: json.RawMessage(`{}`),
	}
	data, err := json.Marshal(&doc)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestGetRecord(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}
	now := time.Now()

	rows := sqlmock.NewRows(recordRowColumns).
		AddRow("cv-abc", "shop", "faq", "draft", 3, testDocJSON(t, "Faq"), now, now)
	mock.ExpectQuery("SELECT .+ FROM configs WHERE product_id = \\$1 AND config_kind = \\$2 AND status = \\$3").
		WithArgs("shop", "faq", "draft").
		WillReturnRows(rows)

	rec, err := s.GetRecord(context.Background(), model.OwnerKey{ProductID: "shop", ConfigKind: "faq"}, model.StatusDraft)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if rec.ID != "cv-abc" || rec.Version != 3 || rec.Status != model.StatusDraft {
		t.Errorf("record = %+v", rec)
	}
	if rec.Data == nil || rec.Data.Meta.Title != "Faq" {
		t.Errorf("document not parsed: %+v", rec.Data)
	}
}

func TestGetRecord_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectQuery("SELECT .+ FROM configs WHERE").
		WithArgs("shop", "faq", "published").
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetRecord(context.Background(), model.OwnerKey{ProductID: "shop", ConfigKind: "faq"}, model.StatusPublished)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestCreateRecord(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}
	now := time.Now()

	mock.ExpectQuery("INSERT INTO configs").
		WithArgs("cv-abc", "shop", "faq", "draft", 1, testDocJSON(t, "Faq")).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	rec := &model.ConfigRecord{
		ID:         "cv-abc",
		ProductID:  "shop",
		ConfigKind: "faq",
		Status:     model.StatusDraft,
		Version:    1,
		Data: &model.ConfigDocument{
			Meta: model.Meta{Title: "Faq", SchemaVersion: 1},
			Body: json.RawMessage(`{}`),
		},
	}
	if err := s.CreateRecord(context.Background(), rec); err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if !rec.CreatedAt.Equal(now) || !rec.UpdatedAt.Equal(now) {
		t.Errorf("timestamps not set from RETURNING: %v %v", rec.CreatedAt, rec.UpdatedAt)
	}
}

func TestCreateRecord_UniqueViolationMapsToConflict(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	pqErr := &pq.Error{Code: "23505", Constraint: "configs_owner_status_unique"}
	mock.ExpectQuery("INSERT INTO configs").WillReturnError(pqErr)

	rec := &model.ConfigRecord{
		ID:         "cv-abc",
		ProductID:  "shop",
		ConfigKind: "faq",
		Status:     model.StatusDraft,
		Version:    1,
		Data: &model.ConfigDocument{
			Meta: model.Meta{Title: "Faq"},
			Body: json.RawMessage(`{}`),
		},
	}
	err := s.CreateRecord(context.Background(), rec)
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected store.ErrConflict, got %v", err)
	}
}

func TestUpdateRecord(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}
	now := time.Now()

	mock.ExpectQuery("UPDATE configs SET").
		WithArgs("cv-abc", 2, testDocJSON(t, "Faq")).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	rec := &model.ConfigRecord{
		ID:      "cv-abc",
		Version: 2,
		Data: &model.ConfigDocument{
			Meta: model.Meta{Title: "Faq", SchemaVersion: 1},
			Body: json.RawMessage(`{}`),
		},
	}
	if err := s.UpdateRecord(context.Background(), rec); err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}
	if !rec.UpdatedAt.Equal(now) {
		t.Errorf("updated_at not set from RETURNING: %v", rec.UpdatedAt)
	}
}

func TestListRecords(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}
	now := time.Now()

	rows := sqlmock.NewRows(recordRowColumns).
		AddRow("cv-1", "shop", "faq", "draft", 2, testDocJSON(t, "Faq"), now, now).
		AddRow("cv-2", "shop", "faq", "published", 1, testDocJSON(t, "Faq"), now, now)
	mock.ExpectQuery("SELECT .+ FROM configs WHERE product_id = \\$1 ORDER BY config_kind, status").
		WithArgs("shop").
		WillReturnRows(rows)

	records, err := s.ListRecords(context.Background(), "shop")
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Status != model.StatusDraft || records[1].Status != model.StatusPublished {
		t.Errorf("records = %+v", records)
	}
}

func TestAppendHistory(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}
	now := time.Now()

	mock.ExpectQuery("INSERT INTO config_history").
		WithArgs("ch-abc", "shop", "faq", 1, "create", testDocJSON(t, "Faq"), "alice@example.com", "Alice").
		WillReturnRows(sqlmock.NewRows([]string{"seq", "changed_at"}).AddRow(int64(7), now))

	entry := &model.HistoryEntry{
		ID:            "ch-abc",
		ProductID:     "shop",
		ConfigKind:    "faq",
		Version:       1,
		Action:        model.ActionCreate,
		Data:          &model.ConfigDocument{Meta: model.Meta{Title: "Faq", SchemaVersion: 1}, Body: json.RawMessage(`{}`)},
		ChangedBy:     "alice@example.com",
		ChangedByName: "Alice",
	}
	if err := s.AppendHistory(context.Background(), entry); err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}
	if entry.Seq != 7 || !entry.ChangedAt.Equal(now) {
		t.Errorf("seq/changed_at not set from RETURNING: %d %v", entry.Seq, entry.ChangedAt)
	}
}

func TestGetHistoryEntry_NullChangedByName(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}
	now := time.Now()

	rows := sqlmock.NewRows(historyRowColumns).
		AddRow("ch-abc", int64(1), "shop", "faq", 1, "create", testDocJSON(t, "Faq"), "ci-bot", nil, now)
	mock.ExpectQuery("SELECT .+ FROM config_history WHERE id = \\$1").
		WithArgs("ch-abc").
		WillReturnRows(rows)

	entry, err := s.GetHistoryEntry(context.Background(), "ch-abc")
	if err != nil {
		t.Fatalf("GetHistoryEntry: %v", err)
	}
	if entry.ChangedBy != "ci-bot" || entry.ChangedByName != "" {
		t.Errorf("entry = %+v", entry)
	}
}

func TestListHistory(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}
	now := time.Now()

	rows := sqlmock.NewRows(historyWithTotalColumns).
		AddRow(12, "ch-2", int64(2), "shop", "faq", 2, "update", testDocJSON(t, "Faq"), "alice@example.com", "Alice", now).
		AddRow(12, "ch-1", int64(1), "shop", "faq", 1, "create", testDocJSON(t, "Faq"), "alice@example.com", "Alice", now.Add(-time.Minute))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) OVER\\(\\) AS total_count, .+ FROM config_history WHERE product_id = \\$1 AND config_kind = \\$2 ORDER BY seq DESC LIMIT \\$3 OFFSET \\$4").
		WithArgs("shop", "faq", 2, 0).
		WillReturnRows(rows)

	entries, total, err := s.ListHistory(context.Background(), model.HistoryFilter{
		ProductID:  "shop",
		ConfigKind: "faq",
		Page:       1,
		Limit:      2,
	})
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if total != 12 {
		t.Errorf("total = %d, want 12", total)
	}
	if len(entries) != 2 || entries[0].ID != "ch-2" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestListHistory_NoKindFilter(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectQuery("FROM config_history WHERE product_id = \\$1 ORDER BY").
		WithArgs("shop", model.DefaultHistoryPageSize, 0).
		WillReturnRows(sqlmock.NewRows(historyWithTotalColumns))

	entries, total, err := s.ListHistory(context.Background(), model.HistoryFilter{ProductID: "shop"})
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if total != 0 || len(entries) != 0 {
		t.Errorf("entries = %v total = %d", entries, total)
	}
}

func TestRunInTransaction_Commit(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WithArgs("shop/faq").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		return tx.LockOwner(context.Background(), model.OwnerKey{ProductID: "shop", ConfigKind: "faq"})
	})
	if err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}
}

func TestRunInTransaction_RollbackOnError(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectBegin()
	mock.ExpectRollback()

	wantErr := fmt.Errorf("boom")
	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected fn error to surface, got %v", err)
	}
}

func TestTxStoreReusesTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	s := &PostgresStore{db: db}

	mock.ExpectBegin()
	mock.ExpectExec("SELECT pg_advisory_xact_lock").
		WithArgs("shop/faq").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	// A nested RunInTransaction must not issue a second BEGIN.
	err := s.RunInTransaction(context.Background(), func(tx store.Store) error {
		return tx.RunInTransaction(context.Background(), func(inner store.Store) error {
			return inner.LockOwner(context.Background(), model.OwnerKey{ProductID: "shop", ConfigKind: "faq"})
		})
	})
	if err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}
}
