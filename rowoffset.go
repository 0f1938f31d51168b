package magazine

// RowOffsetTracker accumulates vertical displacement per row so a
// height change in one row can shift every row below it without
// rewriting their stored origins. Suffix addition and lookup are both
// O(log rows) via a Fenwick tree: adding delta at row r makes it part
// of the prefix sum of every row >= r.
//
// A tracker lives for one pending-recompute window. The next repack
// folds its offsets into item origins and discards it.
type RowOffsetTracker struct {
	tree []float64 // 1-based Fenwick array
}

// NewRowOffsetTracker creates a tracker for rowCount rows.
func NewRowOffsetTracker(rowCount int) *RowOffsetTracker {
	return &RowOffsetTracker{tree: make([]float64, rowCount+1)}
}

// AddOffset shifts every row at or below fromRow by delta.
func (t *RowOffsetTracker) AddOffset(delta float64, fromRow int) {
	for i := fromRow + 1; i < len(t.tree); i += i & -i {
		t.tree[i] += delta
	}
}

// OffsetForRow is the cumulative offset recorded for row. Rows never
// written to return 0.
func (t *RowOffsetTracker) OffsetForRow(row int) float64 {
	var sum float64
	for i := row + 1; i > 0; i -= i & -i {
		sum += t.tree[i]
	}
	return sum
}
