package magazine

// DataSource supplies the structure of the hosted content: how many
// sections and items exist, their identities, and their sizing
// requests. The engine calls it synchronously during preparation.
type DataSource interface {
	NumberOfSections() int
	NumberOfItems(section int) int
	ItemID(path IndexPath) string
	ItemSizing(path IndexPath) ItemSizing
}

// MetricsSource supplies per-section layout metrics on demand.
type MetricsSource interface {
	MetricsForSection(section int) SectionMetrics
}

// prepareActions is the set of invalidation actions owed on the next
// preparation cycle. The reasons are independent and can coexist, so
// this is a flag set rather than an enum.
type prepareActions uint8

const (
	recreateSectionModels prepareActions = 1 << iota
	refreshLayoutAttributes
	updateSectionMetrics
)

func (a prepareActions) has(flag prepareActions) bool { return a&flag != 0 }

// Engine is the container-facing façade. It owns the ModelState
// exclusively, decides which invalidation work each preparation cycle
// requires, and answers the host's geometry queries.
//
// Between a count change announced by the data source and the arrival
// of the matching update batch, geometry queries return empty results
// rather than stale frames.
type Engine struct {
	data    DataSource
	metrics MetricsSource
	state   *ModelState

	pending prepareActions
	attrs   map[IndexPath]*LayoutAttributes
}

// NewEngine creates an engine over the given sources. The first
// preparation cycle builds all section models.
func NewEngine(data DataSource, metrics MetricsSource) *Engine {
	return &Engine{
		data:    data,
		metrics: metrics,
		state:   NewModelState(),
		pending: recreateSectionModels | refreshLayoutAttributes,
		attrs:   make(map[IndexPath]*LayoutAttributes),
	}
}

// InvalidateEverything schedules a full rebuild: section models,
// metrics, and cached attributes.
func (e *Engine) InvalidateEverything() {
	e.pending |= recreateSectionModels | refreshLayoutAttributes | updateSectionMetrics
}

// InvalidateMetrics schedules a metrics refresh for every section,
// for container width or inset changes.
func (e *Engine) InvalidateMetrics() {
	e.pending |= updateSectionMetrics | refreshLayoutAttributes
}

// Prepare performs whichever invalidation actions are pending. Called
// implicitly by every query; hosts may call it at the top of their
// layout pass.
func (e *Engine) Prepare() {
	if e.pending == 0 {
		return
	}
	if e.pending.has(recreateSectionModels) {
		e.state.SetSections(e.buildSections())
	} else if e.pending.has(updateSectionMetrics) {
		for si := 0; si < e.state.NumberOfSections(AfterUpdates); si++ {
			sec, _ := e.state.Section(si, AfterUpdates)
			sec.UpdateMetrics(e.metrics.MetricsForSection(si))
		}
	}
	if e.pending.has(refreshLayoutAttributes) {
		clear(e.attrs)
	}
	e.pending = 0
}

func (e *Engine) buildSections() []*SectionModel {
	sections := make([]*SectionModel, e.data.NumberOfSections())
	for si := range sections {
		sections[si] = e.buildSection(si)
	}
	return sections
}

func (e *Engine) buildSection(si int) *SectionModel {
	items := make([]ItemModel, e.data.NumberOfItems(si))
	for ii := range items {
		p := IndexPath{Section: si, Item: ii}
		items[ii] = NewItemModel(e.data.ItemID(p), e.data.ItemSizing(p))
	}
	return NewSectionModel(e.metrics.MetricsForSection(si), items)
}

// resolved reports whether the after snapshot agrees with the data
// source's current counts. A mismatch is the transient window between
// a structural change notice and its update batch.
func (e *Engine) resolved() bool {
	n := e.state.NumberOfSections(AfterUpdates)
	if n != e.data.NumberOfSections() {
		return false
	}
	for si := 0; si < n; si++ {
		count, _ := e.state.NumberOfItems(si, AfterUpdates)
		if count != e.data.NumberOfItems(si) {
			return false
		}
	}
	return true
}

// ApplyUpdates applies a structural edit batch, opening the
// before/after snapshot window. Insert payloads left empty are filled
// from the data source. FinalizeUpdates closes the window.
func (e *Engine) ApplyUpdates(batch UpdateBatch) error {
	e.Prepare()
	if err := e.state.ApplyUpdates(e.fillPayloads(batch)); err != nil {
		return err
	}
	e.pending |= refreshLayoutAttributes
	return nil
}

// fillPayloads resolves empty insert and reload payloads against the
// data source. Hosts with exotic batches can supply payloads directly.
func (e *Engine) fillPayloads(batch UpdateBatch) UpdateBatch {
	filled := UpdateBatch{
		Sections: append([]SectionEdit(nil), batch.Sections...),
		Items:    append([]ItemEdit(nil), batch.Items...),
	}
	for i, edit := range filled.Sections {
		if edit.Model != nil {
			continue
		}
		switch edit.Action {
		case UpdateInsert:
			filled.Sections[i].Model = e.buildSection(edit.After)
		case UpdateReload:
			filled.Sections[i].Model = e.buildSection(edit.Before)
		}
	}
	for i, edit := range filled.Items {
		if edit.Action == UpdateInsert && edit.ID == "" {
			filled.Items[i].ID = e.data.ItemID(edit.After)
			filled.Items[i].Sizing = e.data.ItemSizing(edit.After)
		}
	}
	return filled
}

// FinalizeUpdates closes the batch window opened by ApplyUpdates.
func (e *Engine) FinalizeUpdates() {
	e.state.ClearInProgressBatchUpdateState()
	e.pending |= refreshLayoutAttributes
}

// ReportPreferredHeight records a measured height for an item. Returns
// false when the path cannot be resolved yet (a report arriving in the
// transient window, or after the item was removed), which the host
// treats as "measure again next cycle".
func (e *Engine) ReportPreferredHeight(path IndexPath, height float64) bool {
	e.Prepare()
	if !e.resolved() {
		return false
	}
	sec, ok := e.state.Section(path.Section, AfterUpdates)
	if !ok || path.Item < 0 || path.Item >= sec.NumberOfItems() {
		return false
	}
	if sec.UpdateItemHeight(height, path.Item) {
		e.pending |= refreshLayoutAttributes
	}
	return true
}

// FrameForItem returns the item's frame in container coordinates.
func (e *Engine) FrameForItem(path IndexPath, snap Snapshot) (Rect, bool) {
	e.Prepare()
	if !e.resolved() {
		return Rect{}, false
	}
	return e.state.FrameForItem(path, snap)
}

// ItemsIn returns attributes for every item intersecting rect.
// Attribute records for the after snapshot are cached and reused
// between cycles until an invalidation regenerates them.
func (e *Engine) ItemsIn(rect Rect, snap Snapshot) []*LayoutAttributes {
	e.Prepare()
	if !e.resolved() {
		return nil
	}
	records := e.state.ItemsIn(rect, snap)
	out := make([]*LayoutAttributes, len(records))
	for i := range records {
		if snap == AfterUpdates {
			out[i] = e.cachedAttributes(records[i])
		} else {
			rec := records[i]
			out[i] = &rec
		}
	}
	return out
}

func (e *Engine) cachedAttributes(rec LayoutAttributes) *LayoutAttributes {
	if a, ok := e.attrs[rec.Path]; ok {
		*a = rec
		return a
	}
	a := &rec
	e.attrs[rec.Path] = a
	return a
}

// ContentHeight is the total scrollable height.
func (e *Engine) ContentHeight(snap Snapshot) float64 {
	e.Prepare()
	if !e.resolved() {
		return 0
	}
	return e.state.ContentHeight(snap)
}

// SectionOriginY is the Y origin of a section in container
// coordinates.
func (e *Engine) SectionOriginY(section int, snap Snapshot) (float64, bool) {
	e.Prepare()
	if !e.resolved() {
		return 0, false
	}
	return e.state.SectionOriginY(section, snap)
}
