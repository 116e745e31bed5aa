package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/groblegark/confpub/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// marshalDocument serializes a config document for a JSONB column.
func marshalDocument(doc *model.ConfigDocument) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("marshal document: nil document")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}

// unmarshalDocument parses a JSONB column back into a config document.
func unmarshalDocument(data []byte) (*model.ConfigDocument, error) {
	var doc model.ConfigDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return &doc, nil
}

// scanRecord scans a single row into a model.ConfigRecord.
// The row must contain columns in the order defined by recordColumns.
func scanRecord(row scannable) (*model.ConfigRecord, error) {
	var r model.ConfigRecord
	var data []byte

	err := row.Scan(
		&r.ID,
		&r.ProductID,
		&r.ConfigKind,
		&r.Status,
		&r.Version,
		&data,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	doc, err := unmarshalDocument(data)
	if err != nil {
		return nil, err
	}
	r.Data = doc

	return &r, nil
}

// scanRecords scans multiple rows into a slice of model.ConfigRecord pointers.
func scanRecords(rows *sql.Rows) ([]*model.ConfigRecord, error) {
	var records []*model.ConfigRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// scanHistoryEntry scans a single row into a model.HistoryEntry.
// The row must contain columns in the order defined by historyColumns.
func scanHistoryEntry(row scannable) (*model.HistoryEntry, error) {
	var e model.HistoryEntry
	var (
		changedByName sql.NullString
		data          []byte
	)

	err := row.Scan(
		&e.ID,
		&e.Seq,
		&e.ProductID,
		&e.ConfigKind,
		&e.Version,
		&e.Action,
		&data,
		&e.ChangedBy,
		&changedByName,
		&e.ChangedAt,
	)
	if err != nil {
		return nil, err
	}

	e.ChangedByName = changedByName.String

	doc, err := unmarshalDocument(data)
	if err != nil {
		return nil, err
	}
	e.Data = doc

	return &e, nil
}

// scanHistoryEntryWithTotal scans a row that has a leading total_count
// column followed by the standard history columns. Used by
// queryListHistory with COUNT(*) OVER().
func scanHistoryEntryWithTotal(row scannable) (*model.HistoryEntry, int, error) {
	var total int
	var e model.HistoryEntry
	var (
		changedByName sql.NullString
		data          []byte
	)

	err := row.Scan(
		&total,
		&e.ID,
		&e.Seq,
		&e.ProductID,
		&e.ConfigKind,
		&e.Version,
		&e.Action,
		&data,
		&e.ChangedBy,
		&changedByName,
		&e.ChangedAt,
	)
	if err != nil {
		return nil, 0, err
	}

	e.ChangedByName = changedByName.String

	doc, err := unmarshalDocument(data)
	if err != nil {
		return nil, 0, err
	}
	e.Data = doc

	return &e, total, nil
}
