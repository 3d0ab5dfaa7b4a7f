// Package placement decides where a floating panel opens relative to an
// anchor so that it stays inside the viewport.
//
// The algorithm is greedy: each axis picks the side with more room once and
// caps the panel to that room. It never reconsiders a choice and ignores
// other panels.
package placement

import "viewscope/internal/surface"

// Inset is kept free between a panel and the viewport edge.
const Inset = 3

// DefaultPointerMargin is the half-size of the anchor box around the pointer.
const DefaultPointerMargin = 3

// VSide is the vertical direction a panel grows to.
type VSide string

const (
	VTop    VSide = "top"
	VBottom VSide = "bottom"
)

// HSide is the horizontal direction a panel grows to.
type HSide string

const (
	HLeft  HSide = "left"
	HRight HSide = "right"
)

// Anchor is given by its edges. Pointer anchors are intentionally inverted
// horizontally (Left > Right) so the panel never covers the pointer.
type Anchor struct {
	Top    int
	Left   int
	Right  int
	Bottom int
}

// AnchorFromRect converts a rectangle to an anchor.
func AnchorFromRect(r surface.Rect) Anchor {
	return Anchor{Top: r.Top, Left: r.Left, Right: r.Right(), Bottom: r.Bottom()}
}

// AnchorFromPointer builds the small anchor around the pointer.
func AnchorFromPointer(p surface.Point, margin int) Anchor {
	if margin <= 0 {
		margin = DefaultPointerMargin
	}
	return Anchor{
		Top:    p.Y - margin,
		Bottom: p.Y + margin,
		Left:   p.X + margin,
		Right:  p.X - margin,
	}
}

// Space is the room available around an anchor.
type Space struct {
	Above int
	Below int
	Left  int
	Right int
}

// Measure computes the available space around the anchor.
func Measure(a Anchor, viewport surface.Rect) Space {
	return Space{
		Above: a.Top - viewport.Top - Inset,
		Below: viewport.Bottom() - a.Bottom - Inset,
		Left:  a.Right - viewport.Left - Inset,
		Right: viewport.Right() - a.Left - Inset,
	}
}

// Placement is the chosen side per axis. Only the offset of the anchored
// edge is meaningful: Bottom for VTop, Top for VBottom, Right for HLeft,
// Left for HRight. Offsets are measured from the matching viewport edge.
type Placement struct {
	VTo       VSide
	HTo       HSide
	Top       int
	Bottom    int
	Left      int
	Right     int
	MaxHeight int
	MaxWidth  int
}

// Place runs the flip decision for both axes.
func Place(a Anchor, viewport surface.Rect) Placement {
	space := Measure(a, viewport)
	var p Placement
	if space.Above > space.Below {
		p.VTo = VTop
		p.MaxHeight = space.Above
		p.Bottom = viewport.Bottom() - a.Top
	} else {
		p.VTo = VBottom
		p.MaxHeight = space.Below
		p.Top = a.Bottom - viewport.Top
	}
	if space.Left > space.Right {
		p.HTo = HLeft
		p.MaxWidth = space.Left
		p.Right = viewport.Right() - a.Right
	} else {
		p.HTo = HRight
		p.MaxWidth = space.Right
		p.Left = a.Left - viewport.Left
	}
	return p
}

// Resolve turns a placement and a panel's natural size into a concrete box
// in viewport coordinates. The size is capped to the available room.
func (p Placement) Resolve(width, height int, viewport surface.Rect) surface.Rect {
	width = clampSize(width, p.MaxWidth)
	height = clampSize(height, p.MaxHeight)
	r := surface.Rect{Width: width, Height: height}
	if p.VTo == VTop {
		r.Top = viewport.Bottom() - p.Bottom - height
	} else {
		r.Top = viewport.Top + p.Top
	}
	if p.HTo == HLeft {
		r.Left = viewport.Right() - p.Right - width
	} else {
		r.Left = viewport.Left + p.Left
	}
	return r
}

func clampSize(v, limit int) int {
	if limit < 0 {
		limit = 0
	}
	if v > limit {
		return limit
	}
	if v < 0 {
		return 0
	}
	return v
}
