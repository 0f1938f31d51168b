// Package magazine is an incremental layout engine for vertically
// scrolling containers of variable-height items. The host feeds it
// structural edits and measured item heights; the engine answers
// geometry queries (frames, visible items, content height) while
// recomputing only the rows an edit actually touched.
package magazine

// IndexPath identifies an item by section and position within that
// section.
type IndexPath struct {
	Section int
	Item    int
}

// Snapshot selects which side of an in-flight batch update a query
// resolves against. Outside a batch the two coincide.
type Snapshot uint8

const (
	// BeforeUpdates resolves against the layout as it was when the
	// current batch started.
	BeforeUpdates Snapshot = iota
	// AfterUpdates resolves against the layout with the current batch
	// applied.
	AfterUpdates
)

// LayoutAttributes is the outbound geometry record for one item.
type LayoutAttributes struct {
	Path  IndexPath
	ID    string
	Frame Rect
}
