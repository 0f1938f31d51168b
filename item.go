package magazine

// ItemSizing is the host's sizing request for an item at creation or
// reload time.
type ItemSizing struct {
	// EstimatedHeight positions the item until a measured height
	// arrives.
	EstimatedHeight float64

	// WidthFraction is the share of the section's available width the
	// item requests, in (0, 1]. Zero means full width. Fractions below
	// one are the extension point for multi-item rows; every sizing
	// mode shipped today uses full width, so rows hold one item each.
	WidthFraction float64
}

// ItemModel is the per-item geometry state owned by a SectionModel.
type ItemModel struct {
	// ID is a host-supplied identity that survives reorders.
	ID string

	// Origin is the item's position within its section, set during row
	// packing. Pending row offsets are not folded in; frame queries
	// apply them on the way out.
	Origin Point

	// Size holds the packed width and the estimated height.
	Size Size

	// PreferredHeight is the measured height reported by the host.
	// Valid only when HasPreferredHeight is set.
	PreferredHeight    float64
	HasPreferredHeight bool

	widthFraction float64
}

// NewItemModel creates an item from a sizing request.
func NewItemModel(id string, sizing ItemSizing) ItemModel {
	return ItemModel{
		ID:            id,
		Size:          Size{Height: sizing.EstimatedHeight},
		widthFraction: sizing.WidthFraction,
	}
}

// ResolvedHeight is the measured height when one has been reported,
// otherwise the estimate.
func (m *ItemModel) ResolvedHeight() float64 {
	if m.HasPreferredHeight {
		return m.PreferredHeight
	}
	return m.Size.Height
}

// Frame is the item's rect in section coordinates, using the resolved
// height. Pending row offsets are the section's concern.
func (m *ItemModel) Frame() Rect {
	return Rect{
		Origin: m.Origin,
		Size:   Size{Width: m.Size.Width, Height: m.ResolvedHeight()},
	}
}

// packedWidth is the width the packer assigns from the available width.
func (m *ItemModel) packedWidth(available float64) float64 {
	f := m.widthFraction
	if f <= 0 || f > 1 {
		f = 1
	}
	return available * f
}
