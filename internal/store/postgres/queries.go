package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/groblegark/confpub/internal/model"
	"github.com/groblegark/confpub/internal/store"
)

// recordColumns is the column list used for SELECT statements on the configs table.
const recordColumns = `id, product_id, config_kind, status, version, data, created_at, updated_at`

// historyColumns is the column list used for SELECT statements on the config_history table.
const historyColumns = `id, seq, product_id, config_kind, version, action, data,
	changed_by, changed_by_name, changed_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// uniqueViolation is the PostgreSQL SQLSTATE for unique-constraint violations.
const uniqueViolation = "23505"

// mapConflict translates a unique-constraint violation into store.ErrConflict.
func mapConflict(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", store.ErrConflict, pqErr.Constraint)
	}
	return err
}

// queryLockOwner takes a transaction-scoped advisory lock on the owner
// key. The lock releases automatically at commit or rollback and gives
// at-most-one-writer semantics per (product, kind) pair; the create path
// has no row to lock with FOR UPDATE, so the advisory lock covers every
// mutation uniformly.
func queryLockOwner(ctx context.Context, db executor, key model.OwnerKey) error {
	_, err := db.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`,
		key.ProductID+"/"+key.ConfigKind,
	)
	if err != nil {
		return fmt.Errorf("lock owner %s: %w", key, err)
	}
	return nil
}

func queryCreateRecord(ctx context.Context, db executor, r *model.ConfigRecord) error {
	data, err := marshalDocument(r.Data)
	if err != nil {
		return err
	}
	err = db.QueryRowContext(ctx, `
		INSERT INTO configs (
			id, product_id, config_kind, status, version, data, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, NOW(), NOW()
		)
		RETURNING created_at, updated_at`,
		r.ID,
		r.ProductID,
		r.ConfigKind,
		string(r.Status),
		r.Version,
		data,
	).Scan(&r.CreatedAt, &r.UpdatedAt)
	return mapConflict(err)
}

func queryUpdateRecord(ctx context.Context, db executor, r *model.ConfigRecord) error {
	data, err := marshalDocument(r.Data)
	if err != nil {
		return err
	}
	return db.QueryRowContext(ctx, `
		UPDATE configs SET
			version = $2,
			data = $3,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		r.ID,
		r.Version,
		data,
	).Scan(&r.UpdatedAt)
}

func queryGetRecord(ctx context.Context, db executor, key model.OwnerKey, status model.Status) (*model.ConfigRecord, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM configs
		WHERE product_id = $1 AND config_kind = $2 AND status = $3`,
		key.ProductID, key.ConfigKind, string(status),
	)
	return scanRecord(row)
}

func queryListRecords(ctx context.Context, db executor, productID string) ([]*model.ConfigRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM configs
		WHERE product_id = $1
		ORDER BY config_kind, status`,
		productID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func queryListAllRecords(ctx context.Context, db executor) ([]*model.ConfigRecord, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM configs
		ORDER BY product_id, config_kind, status`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func queryAppendHistory(ctx context.Context, db executor, e *model.HistoryEntry) error {
	data, err := marshalDocument(e.Data)
	if err != nil {
		return err
	}
	return db.QueryRowContext(ctx, `
		INSERT INTO config_history (
			id, product_id, config_kind, version, action, data,
			changed_by, changed_by_name
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq, changed_at`,
		e.ID,
		e.ProductID,
		e.ConfigKind,
		e.Version,
		string(e.Action),
		data,
		e.ChangedBy,
		e.ChangedByName,
	).Scan(&e.Seq, &e.ChangedAt)
}

func queryGetHistoryEntry(ctx context.Context, db executor, id string) (*model.HistoryEntry, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+historyColumns+`
		FROM config_history
		WHERE id = $1`,
		id,
	)
	return scanHistoryEntry(row)
}

func queryListHistory(ctx context.Context, db executor, filter model.HistoryFilter) ([]*model.HistoryEntry, int, error) {
	f := filter.Normalize()

	whereClauses := []string{"product_id = $1"}
	args := []any{f.ProductID}
	argIdx := 1

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if f.ConfigKind != "" {
		whereClauses = append(whereClauses, "config_kind = "+nextArg())
		args = append(args, f.ConfigKind)
	}

	// Single query with COUNT(*) OVER() to get total and rows atomically.
	// seq is the authoritative insertion order: changed_at defaults to
	// NOW(), which is frozen at BEGIN — before the advisory lock is
	// acquired — so contending writers can commit with inverted
	// timestamps. Sorting by seq keeps versions monotonic in the list.
	query := "SELECT COUNT(*) OVER() AS total_count, " + historyColumns +
		" FROM config_history WHERE " + strings.Join(whereClauses, " AND ") +
		" ORDER BY seq DESC" +
		" LIMIT " + nextArg()
	args = append(args, f.Limit)
	query += " OFFSET " + nextArg()
	args = append(args, f.Offset())

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []*model.HistoryEntry
	var total int
	for rows.Next() {
		e, t, err := scanHistoryEntryWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan history: %w", err)
		}
		total = t
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan history: %w", err)
	}

	return entries, total, nil
}
