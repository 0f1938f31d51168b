package magazine

import "fmt"

// Tolerance for the width-exhaustion check when packing a row. Keeps
// full-width items from wrapping on float noise.
const widthEpsilon = 1e-6

// SectionModel owns the items of one section and the row-packing state
// derived from them. Structural edits and metrics changes only mark a
// watermark (the first row whose geometry can no longer be trusted);
// the packer replays rows from the watermark forward the next time
// geometry is queried. Rows above the watermark are never touched.
type SectionModel struct {
	metrics SectionMetrics
	items   []ItemModel

	// Derived row-packing maps, valid for rows below the watermark.
	rowForItem []int     // item index -> row index
	firstInRow []int     // row index -> index of the row's first item
	rowHeights []float64 // row index -> max resolved height in the row
	rowMinY    []float64 // row index -> Y origin in section coordinates

	// Running total height, maintained incrementally by height updates
	// and rebuilt by the packer.
	height float64

	// firstInvalidatedRow is -1 when every row is valid.
	firstInvalidatedRow int

	// offsets holds vertical shifts recorded by height updates since
	// the last repack. Folded into origins and discarded by the packer.
	offsets *RowOffsetTracker
}

// NewSectionModel creates a section from its metrics and initial
// items. Geometry is computed lazily on first query.
func NewSectionModel(metrics SectionMetrics, items []ItemModel) *SectionModel {
	return &SectionModel{
		metrics:             metrics,
		items:               items,
		firstInvalidatedRow: 0,
	}
}

// NumberOfItems returns the item count.
func (s *SectionModel) NumberOfItems() int { return len(s.items) }

// Metrics returns the section's current metrics.
func (s *SectionModel) Metrics() SectionMetrics { return s.metrics }

// Item returns the item at index. The returned pointer is only valid
// until the next structural edit; for geometry use FrameForItem, which
// resolves pending offsets.
func (s *SectionModel) Item(index int) (*ItemModel, bool) {
	if index < 0 || index >= len(s.items) {
		return nil, false
	}
	return &s.items[index], true
}

// IndexForItem finds the item with the given id.
func (s *SectionModel) IndexForItem(id string) (int, bool) {
	for i := range s.items {
		if s.items[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// NumberOfRows returns the packed row count, recomputing if needed.
func (s *SectionModel) NumberOfRows() int {
	s.recomputeIfNeeded()
	return len(s.rowHeights)
}

// Insert adds an item at index. The row containing index, or the row
// before it when index starts a row, becomes the watermark; nothing is
// recomputed until the next geometry query.
func (s *SectionModel) Insert(item ItemModel, index int) {
	if index < 0 || index > len(s.items) {
		panic(fmt.Sprintf("magazine: insert index %d out of range 0..%d", index, len(s.items)))
	}
	s.recomputeIfNeeded()
	row := s.affectedRowForEdit(index)
	s.items = append(s.items, ItemModel{})
	copy(s.items[index+1:], s.items[index:])
	s.items[index] = item
	s.invalidateFrom(row)
}

// Delete removes and returns the item at index. Deleting a row's only
// item collapses the row; the watermark moves to the row before it.
func (s *SectionModel) Delete(index int) ItemModel {
	if index < 0 || index >= len(s.items) {
		panic(fmt.Sprintf("magazine: delete index %d out of range 0..%d", index, len(s.items)-1))
	}
	s.recomputeIfNeeded()
	row := s.affectedRowForEdit(index)
	removed := s.items[index]
	s.items = append(s.items[:index], s.items[index+1:]...)
	s.invalidateFrom(row)
	return removed
}

// Reload replaces the item at index with a fresh model carrying the
// same identity and the given sizing, discarding any measured height.
func (s *SectionModel) Reload(index int, sizing ItemSizing) {
	if index < 0 || index >= len(s.items) {
		panic(fmt.Sprintf("magazine: reload index %d out of range 0..%d", index, len(s.items)-1))
	}
	s.recomputeIfNeeded()
	row := s.affectedRowForEdit(index)
	s.items[index] = NewItemModel(s.items[index].ID, sizing)
	s.invalidateFrom(row)
}

// UpdateMetrics replaces the section metrics. Width and spacing affect
// packing globally, so a change invalidates every row.
func (s *SectionModel) UpdateMetrics(m SectionMetrics) {
	if m == s.metrics {
		return
	}
	s.metrics = m
	s.invalidateFrom(0)
}

// UpdateItemHeight records a measured height for the item at index and
// reflows only the row containing it: the row's height becomes the max
// of its members' resolved heights, the total section height absorbs
// the delta, and rows below are shifted through the offset tracker
// instead of being rewritten. Returns whether any geometry changed.
func (s *SectionModel) UpdateItemHeight(preferredHeight float64, index int) bool {
	if index < 0 || index >= len(s.items) {
		panic(fmt.Sprintf("magazine: height update index %d out of range 0..%d", index, len(s.items)-1))
	}
	s.recomputeIfNeeded()

	it := &s.items[index]
	if it.HasPreferredHeight && it.PreferredHeight == preferredHeight {
		return false
	}
	it.PreferredHeight = preferredHeight
	it.HasPreferredHeight = true

	row := s.rowForItem[index]
	var newHeight float64
	for i := s.firstInRow[row]; i < s.rowEnd(row); i++ {
		if h := s.items[i].ResolvedHeight(); h > newHeight {
			newHeight = h
		}
	}

	delta := newHeight - s.rowHeights[row]
	if delta == 0 {
		return false
	}
	s.rowHeights[row] = newHeight
	s.height += delta
	if row < len(s.rowHeights)-1 {
		if s.offsets == nil {
			s.offsets = NewRowOffsetTracker(len(s.rowHeights))
		}
		s.offsets.AddOffset(delta, row+1)
	}
	return true
}

// CalculateHeight returns the section's total height, replaying any
// pending repack first. An empty section has height 0.
func (s *SectionModel) CalculateHeight() float64 {
	s.recomputeIfNeeded()
	return s.height
}

// FrameForItem returns the item's rect in section coordinates with any
// pending row offset applied.
func (s *SectionModel) FrameForItem(index int) Rect {
	s.recomputeIfNeeded()
	if index < 0 || index >= len(s.items) {
		panic(fmt.Sprintf("magazine: frame index %d out of range 0..%d", index, len(s.items)-1))
	}
	f := s.items[index].Frame()
	if s.offsets != nil {
		f.Origin.Y += s.offsets.OffsetForRow(s.rowForItem[index])
	}
	return f
}

// indicesInRect returns the indices of items whose frames intersect
// rect (section coordinates). Rows are walked in Y order and the walk
// stops at the first row past the rect.
func (s *SectionModel) indicesInRect(rect Rect) []int {
	s.recomputeIfNeeded()
	var out []int
	for row := range s.rowHeights {
		y := s.rowMinY[row]
		if s.offsets != nil {
			y += s.offsets.OffsetForRow(row)
		}
		if y >= rect.MaxY() {
			break
		}
		if y+s.rowHeights[row] <= rect.MinY() {
			continue
		}
		for i := s.firstInRow[row]; i < s.rowEnd(row); i++ {
			f := s.items[i].Frame()
			f.Origin.Y = y
			if f.Intersects(rect) {
				out = append(out, i)
			}
		}
	}
	return out
}

// affectedRowForEdit maps an edit index to the row the watermark must
// drop to. An edit at a row's first item can merge items into the row
// before it, so that row is invalidated too. Requires valid row maps.
func (s *SectionModel) affectedRowForEdit(index int) int {
	if len(s.rowHeights) == 0 {
		return 0
	}
	if index >= len(s.items) {
		index = len(s.items) - 1
	}
	row := s.rowForItem[index]
	if row > 0 && s.firstInRow[row] == index {
		row--
	}
	return row
}

func (s *SectionModel) invalidateFrom(row int) {
	if s.firstInvalidatedRow < 0 || row < s.firstInvalidatedRow {
		s.firstInvalidatedRow = row
	}
}

// rowEnd returns one past the last item index of row.
func (s *SectionModel) rowEnd(row int) int {
	if row+1 < len(s.firstInRow) {
		return s.firstInRow[row+1]
	}
	return len(s.items)
}

// recomputeIfNeeded replays row packing from the watermark forward.
// Pending offsets are first folded into the origins of surviving rows,
// then items from the watermark's first item on are placed
// left-to-right, wrapping to a new row when the running width would
// exceed the available width. Rows before the watermark keep their
// stored geometry untouched.
func (s *SectionModel) recomputeIfNeeded() {
	w := s.firstInvalidatedRow
	if w < 0 {
		return
	}
	if w > len(s.rowHeights) {
		w = len(s.rowHeights)
	}

	if s.offsets != nil {
		for row := 0; row < w; row++ {
			off := s.offsets.OffsetForRow(row)
			if off != 0 {
				s.rowMinY[row] += off
				for i := s.firstInRow[row]; i < s.rowEnd(row); i++ {
					s.items[i].Origin.Y += off
				}
			}
		}
		s.offsets = nil
	}

	startItem := 0
	y := s.metrics.Insets.Top
	if w > 0 {
		startItem = s.firstInRow[w]
		y = s.rowMinY[w-1] + s.rowHeights[w-1] + s.metrics.RowSpacing
	}

	s.firstInRow = s.firstInRow[:w]
	s.rowHeights = s.rowHeights[:w]
	s.rowMinY = s.rowMinY[:w]
	s.rowForItem = s.rowForItem[:startItem]

	available := s.metrics.AvailableWidth()
	row := w
	rowStart := startItem
	x := s.metrics.Insets.Left
	var runWidth, rowHeight float64

	for i := startItem; i < len(s.items); i++ {
		it := &s.items[i]
		itemWidth := it.packedWidth(available)
		if i > rowStart && runWidth+itemWidth > available+widthEpsilon {
			s.firstInRow = append(s.firstInRow, rowStart)
			s.rowHeights = append(s.rowHeights, rowHeight)
			s.rowMinY = append(s.rowMinY, y)
			y += rowHeight + s.metrics.RowSpacing
			row++
			rowStart = i
			x = s.metrics.Insets.Left
			runWidth, rowHeight = 0, 0
		}
		it.Origin = Point{X: x, Y: y}
		it.Size.Width = itemWidth
		s.rowForItem = append(s.rowForItem, row)
		x += itemWidth
		runWidth += itemWidth
		if h := it.ResolvedHeight(); h > rowHeight {
			rowHeight = h
		}
	}

	switch {
	case rowStart < len(s.items):
		s.firstInRow = append(s.firstInRow, rowStart)
		s.rowHeights = append(s.rowHeights, rowHeight)
		s.rowMinY = append(s.rowMinY, y)
		y += rowHeight
	case w > 0:
		// Everything from the watermark on was deleted; the section
		// ends at the last surviving row.
		y = s.rowMinY[w-1] + s.rowHeights[w-1]
	default:
		y = 0
	}

	if len(s.items) == 0 {
		s.height = 0
	} else {
		s.height = y + s.metrics.Insets.Bottom
	}
	s.firstInvalidatedRow = -1
}

// clone deep-copies the section for snapshot bookkeeping.
func (s *SectionModel) clone() *SectionModel {
	c := &SectionModel{
		metrics:             s.metrics,
		items:               append([]ItemModel(nil), s.items...),
		rowForItem:          append([]int(nil), s.rowForItem...),
		firstInRow:          append([]int(nil), s.firstInRow...),
		rowHeights:          append([]float64(nil), s.rowHeights...),
		rowMinY:             append([]float64(nil), s.rowMinY...),
		height:              s.height,
		firstInvalidatedRow: s.firstInvalidatedRow,
	}
	if s.offsets != nil {
		c.offsets = &RowOffsetTracker{tree: append([]float64(nil), s.offsets.tree...)}
	}
	return c
}
