package surface

// Point is a cell coordinate on the terminal.
type Point struct {
	X int
	Y int
}

// Rect is a layout rectangle in cells.
type Rect struct {
	Top    int
	Left   int
	Width  int
	Height int
}

func (r Rect) Right() int {
	return r.Left + r.Width
}

func (r Rect) Bottom() int {
	return r.Top + r.Height
}

// Empty reports whether the rectangle covers no cell.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains reports whether the cell (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.Left && x < r.Right() && y >= r.Top && y < r.Bottom()
}

// Translate returns the rectangle moved by (dx, dy).
func (r Rect) Translate(dx, dy int) Rect {
	r.Left += dx
	r.Top += dy
	return r
}

// Intersect returns the overlap of r and o; the result is Empty when they
// do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	left := maxInt(r.Left, o.Left)
	top := maxInt(r.Top, o.Top)
	right := minInt(r.Right(), o.Right())
	bottom := minInt(r.Bottom(), o.Bottom())
	if right <= left || bottom <= top {
		return Rect{Top: top, Left: left}
	}
	return Rect{Top: top, Left: left, Width: right - left, Height: bottom - top}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
