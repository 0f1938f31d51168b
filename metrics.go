package magazine

// SectionMetrics carries the per-section inputs that row packing
// depends on. A change to any field repacks the section from row 0.
type SectionMetrics struct {
	// Width is the full width of the container made available to the
	// section, insets included.
	Width float64

	// Insets shrink the content area items pack into.
	Insets Insets

	// RowSpacing is the vertical gap between adjacent rows.
	RowSpacing float64
}

// AvailableWidth is the width items can actually occupy.
func (m SectionMetrics) AvailableWidth() float64 {
	w := m.Width - m.Insets.Horizontal()
	if w < 0 {
		return 0
	}
	return w
}
