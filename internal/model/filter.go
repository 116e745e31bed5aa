package model

// DefaultHistoryPageSize is used when a history query specifies no limit.
const DefaultHistoryPageSize = 20

// MaxHistoryPageSize caps the page size a caller may request.
const MaxHistoryPageSize = 200

// HistoryFilter selects history entries for listing. ProductID is
// required; ConfigKind narrows the timeline to one owner key, empty means
// the cross-kind timeline for the whole product.
type HistoryFilter struct {
	ProductID  string
	ConfigKind string
	Page       int // 1-based; values < 1 are treated as 1
	Limit      int // page size; 0 means DefaultHistoryPageSize
}

// Normalize returns a copy with page and limit clamped to valid ranges.
func (f HistoryFilter) Normalize() HistoryFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = DefaultHistoryPageSize
	}
	if f.Limit > MaxHistoryPageSize {
		f.Limit = MaxHistoryPageSize
	}
	return f
}

// Offset returns the row offset for the normalized page/limit pair.
func (f HistoryFilter) Offset() int {
	n := f.Normalize()
	return (n.Page - 1) * n.Limit
}
