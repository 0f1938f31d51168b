package magazine

// Point is a position in container or section coordinates.
type Point struct {
	X, Y float64
}

// Size is a width/height pair.
type Size struct {
	Width, Height float64
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	Origin Point
	Size   Size
}

// MakeRect builds a Rect from components.
func MakeRect(x, y, w, h float64) Rect {
	return Rect{Origin: Point{X: x, Y: y}, Size: Size{Width: w, Height: h}}
}

func (r Rect) MinX() float64 { return r.Origin.X }
func (r Rect) MinY() float64 { return r.Origin.Y }
func (r Rect) MaxX() float64 { return r.Origin.X + r.Size.Width }
func (r Rect) MaxY() float64 { return r.Origin.Y + r.Size.Height }

// IsEmpty reports whether the rect encloses no area.
func (r Rect) IsEmpty() bool {
	return r.Size.Width <= 0 || r.Size.Height <= 0
}

// Intersects reports whether r and other overlap. Empty rects
// intersect nothing.
func (r Rect) Intersects(other Rect) bool {
	if r.IsEmpty() || other.IsEmpty() {
		return false
	}
	return r.MinX() < other.MaxX() && other.MinX() < r.MaxX() &&
		r.MinY() < other.MaxY() && other.MinY() < r.MaxY()
}

// Offset returns r translated by dx, dy.
func (r Rect) Offset(dx, dy float64) Rect {
	r.Origin.X += dx
	r.Origin.Y += dy
	return r
}

// Insets are distances from the edges of a section to its content.
type Insets struct {
	Top, Left, Bottom, Right float64
}

// Horizontal is the combined left and right inset.
func (i Insets) Horizontal() float64 { return i.Left + i.Right }

// Vertical is the combined top and bottom inset.
func (i Insets) Vertical() float64 { return i.Top + i.Bottom }
