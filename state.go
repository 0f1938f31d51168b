package magazine

import (
	"fmt"
	"sort"
)

// ModelState aggregates every SectionModel in the container and owns
// the batch-update transaction window. During a batch two snapshots
// exist: the "before" list is the layout as it was when the batch
// started and stays queryable for animation purposes, while edits land
// on the "after" list. Outside a batch the snapshots coincide.
//
// Edits are applied to clones of the current sections, so a malformed
// batch is rejected without disturbing any state.
type ModelState struct {
	before  []*SectionModel
	after   []*SectionModel
	inBatch bool
}

// NewModelState creates an empty state.
func NewModelState() *ModelState {
	return &ModelState{}
}

// SetSections replaces every section model, collapsing any batch
// window. Used when the layout is recreated wholesale.
func (m *ModelState) SetSections(sections []*SectionModel) {
	m.before = sections
	m.after = sections
	m.inBatch = false
}

// InBatch reports whether a batch update is in flight.
func (m *ModelState) InBatch() bool { return m.inBatch }

func (m *ModelState) snapshot(snap Snapshot) []*SectionModel {
	if snap == BeforeUpdates && m.inBatch {
		return m.before
	}
	return m.after
}

// NumberOfSections returns the section count in the given snapshot.
func (m *ModelState) NumberOfSections(snap Snapshot) int {
	return len(m.snapshot(snap))
}

// NumberOfItems returns the item count of a section in the given
// snapshot.
func (m *ModelState) NumberOfItems(section int, snap Snapshot) (int, bool) {
	secs := m.snapshot(snap)
	if section < 0 || section >= len(secs) {
		return 0, false
	}
	return secs[section].NumberOfItems(), true
}

// Section returns the section model at index in the given snapshot.
func (m *ModelState) Section(index int, snap Snapshot) (*SectionModel, bool) {
	secs := m.snapshot(snap)
	if index < 0 || index >= len(secs) {
		return nil, false
	}
	return secs[index], true
}

// SectionOriginY returns the Y origin of a section in container
// coordinates: the summed heights of every section above it.
func (m *ModelState) SectionOriginY(section int, snap Snapshot) (float64, bool) {
	secs := m.snapshot(snap)
	if section < 0 || section >= len(secs) {
		return 0, false
	}
	var y float64
	for _, s := range secs[:section] {
		y += s.CalculateHeight()
	}
	return y, true
}

// ContentHeight is the total height of all sections in the snapshot.
func (m *ModelState) ContentHeight(snap Snapshot) float64 {
	var h float64
	for _, s := range m.snapshot(snap) {
		h += s.CalculateHeight()
	}
	return h
}

// FrameForItem returns the item's rect in container coordinates.
func (m *ModelState) FrameForItem(path IndexPath, snap Snapshot) (Rect, bool) {
	secs := m.snapshot(snap)
	if path.Section < 0 || path.Section >= len(secs) {
		return Rect{}, false
	}
	sec := secs[path.Section]
	if path.Item < 0 || path.Item >= sec.NumberOfItems() {
		return Rect{}, false
	}
	y, _ := m.SectionOriginY(path.Section, snap)
	return sec.FrameForItem(path.Item).Offset(0, y), true
}

// ItemsIn returns attributes for every item whose frame intersects
// rect, in section and row order. Sections and rows fully above or
// below the rect are skipped without visiting their items.
func (m *ModelState) ItemsIn(rect Rect, snap Snapshot) []LayoutAttributes {
	var out []LayoutAttributes
	var y float64
	for si, sec := range m.snapshot(snap) {
		if y >= rect.MaxY() {
			break
		}
		h := sec.CalculateHeight()
		if y+h <= rect.MinY() {
			y += h
			continue
		}
		for _, ii := range sec.indicesInRect(rect.Offset(0, -y)) {
			item, _ := sec.Item(ii)
			out = append(out, LayoutAttributes{
				Path:  IndexPath{Section: si, Item: ii},
				ID:    item.ID,
				Frame: sec.FrameForItem(ii).Offset(0, y),
			})
		}
		y += h
	}
	return out
}

// ApplyUpdates applies a batch of structural edits as one transaction,
// opening the before/after snapshot window. Deletes and reloads are
// resolved against before indices, inserts against after indices, and
// a move is a paired delete and insert carrying the item model across.
// Any malformed or out-of-range edit rejects the whole batch with an
// error and leaves the state untouched.
func (m *ModelState) ApplyUpdates(batch UpdateBatch) error {
	if m.inBatch {
		return fmt.Errorf("magazine: batch update already in progress")
	}
	for _, e := range batch.Sections {
		if err := e.validate(); err != nil {
			return err
		}
	}
	for _, e := range batch.Items {
		if err := e.validate(); err != nil {
			return err
		}
	}

	old := m.after

	// All edits land on clones; the originals become the before
	// snapshot untouched.
	working := make([]*SectionModel, len(old))
	for i, s := range old {
		working[i] = s.clone()
	}
	byBefore := append([]*SectionModel(nil), working...)
	deleted := make([]bool, len(old))

	// Section reloads first: same index space as the before list.
	for _, e := range batch.Sections {
		if e.Action != UpdateReload {
			continue
		}
		if e.Before < 0 || e.Before >= len(working) {
			return fmt.Errorf("magazine: section reload index %d out of range", e.Before)
		}
		if e.Model == nil {
			return fmt.Errorf("magazine: section reload at %d missing model", e.Before)
		}
		working[e.Before] = e.Model
		byBefore[e.Before] = e.Model
	}

	// Section deletes and move sources, descending so before indices
	// stay valid as the list shrinks.
	type sectionRemoval struct {
		index   int
		editIdx int // batch.Sections index for moves, -1 for deletes
	}
	var sectionRemovals []sectionRemoval
	for idx, e := range batch.Sections {
		switch e.Action {
		case UpdateDelete:
			sectionRemovals = append(sectionRemovals, sectionRemoval{e.Before, -1})
		case UpdateMove:
			sectionRemovals = append(sectionRemovals, sectionRemoval{e.Before, idx})
		}
	}
	sort.Slice(sectionRemovals, func(i, j int) bool {
		return sectionRemovals[i].index > sectionRemovals[j].index
	})
	movedSections := make(map[int]*SectionModel)
	for _, r := range sectionRemovals {
		if r.index < 0 || r.index >= len(working) {
			return fmt.Errorf("magazine: section delete index %d out of range", r.index)
		}
		model := working[r.index]
		working = append(working[:r.index], working[r.index+1:]...)
		if r.editIdx >= 0 {
			movedSections[r.editIdx] = model
		} else {
			deleted[r.index] = true
		}
	}

	// Section inserts and move destinations, ascending in after space.
	type sectionInsertion struct {
		index int
		model *SectionModel
	}
	var sectionInsertions []sectionInsertion
	for idx, e := range batch.Sections {
		switch e.Action {
		case UpdateInsert:
			if e.Model == nil {
				return fmt.Errorf("magazine: section insert at %d missing model", e.After)
			}
			sectionInsertions = append(sectionInsertions, sectionInsertion{e.After, e.Model})
		case UpdateMove:
			sectionInsertions = append(sectionInsertions, sectionInsertion{e.After, movedSections[idx]})
		}
	}
	sort.Slice(sectionInsertions, func(i, j int) bool {
		return sectionInsertions[i].index < sectionInsertions[j].index
	})
	for _, ins := range sectionInsertions {
		if ins.index < 0 || ins.index > len(working) {
			return fmt.Errorf("magazine: section insert index %d out of range", ins.index)
		}
		working = append(working, nil)
		copy(working[ins.index+1:], working[ins.index:])
		working[ins.index] = ins.model
	}

	beforeSection := func(p IndexPath, action UpdateAction) (*SectionModel, error) {
		if p.Section < 0 || p.Section >= len(byBefore) {
			return nil, fmt.Errorf("magazine: item %v section %d out of range", action, p.Section)
		}
		if deleted[p.Section] {
			return nil, fmt.Errorf("magazine: item %v references deleted section %d", action, p.Section)
		}
		return byBefore[p.Section], nil
	}

	// Item reloads: before paths, indices still pre-edit.
	for _, e := range batch.Items {
		if e.Action != UpdateReload {
			continue
		}
		sec, err := beforeSection(e.Before, e.Action)
		if err != nil {
			return err
		}
		if e.Before.Item < 0 || e.Before.Item >= sec.NumberOfItems() {
			return fmt.Errorf("magazine: item reload index %v out of range", e.Before)
		}
		sec.Reload(e.Before.Item, e.Sizing)
	}

	// Item deletes and move sources, descending per section.
	type itemRemoval struct {
		sec     *SectionModel
		index   int
		editIdx int
	}
	var itemRemovals []itemRemoval
	for idx, e := range batch.Items {
		var editIdx int
		switch e.Action {
		case UpdateDelete:
			editIdx = -1
		case UpdateMove:
			editIdx = idx
		default:
			continue
		}
		sec, err := beforeSection(e.Before, e.Action)
		if err != nil {
			return err
		}
		itemRemovals = append(itemRemovals, itemRemoval{sec, e.Before.Item, editIdx})
	}
	sort.Slice(itemRemovals, func(i, j int) bool {
		return itemRemovals[i].index > itemRemovals[j].index
	})
	movedItems := make(map[int]ItemModel)
	for _, r := range itemRemovals {
		if r.index < 0 || r.index >= r.sec.NumberOfItems() {
			return fmt.Errorf("magazine: item delete index %d out of range", r.index)
		}
		removed := r.sec.Delete(r.index)
		if r.editIdx >= 0 {
			movedItems[r.editIdx] = removed
		}
	}

	// Item inserts and move destinations, ascending in after space.
	type itemInsertion struct {
		path  IndexPath
		model ItemModel
	}
	var itemInsertions []itemInsertion
	for idx, e := range batch.Items {
		switch e.Action {
		case UpdateInsert:
			itemInsertions = append(itemInsertions, itemInsertion{e.After, NewItemModel(e.ID, e.Sizing)})
		case UpdateMove:
			itemInsertions = append(itemInsertions, itemInsertion{e.After, movedItems[idx]})
		}
	}
	sort.Slice(itemInsertions, func(i, j int) bool {
		return itemInsertions[i].path.Item < itemInsertions[j].path.Item
	})
	for _, ins := range itemInsertions {
		if ins.path.Section < 0 || ins.path.Section >= len(working) {
			return fmt.Errorf("magazine: item insert section %d out of range", ins.path.Section)
		}
		sec := working[ins.path.Section]
		if ins.path.Item < 0 || ins.path.Item > sec.NumberOfItems() {
			return fmt.Errorf("magazine: item insert index %v out of range", ins.path)
		}
		sec.Insert(ins.model, ins.path.Item)
	}

	m.before = old
	m.after = working
	m.inBatch = true
	return nil
}

// ClearInProgressBatchUpdateState closes the snapshot window; the
// after snapshot becomes the single authoritative one.
func (m *ModelState) ClearInProgressBatchUpdateState() {
	m.before = m.after
	m.inBatch = false
}
