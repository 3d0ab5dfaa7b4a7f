// Package surface is the in-memory element tree the terminal host renders:
// nodes with boxes, scroll offsets and overflow, a flow layout, hit testing
// and a lipgloss painter.
package surface

import (
	"slices"
	"sort"
)

// Surface owns one element tree rooted at a viewport-sized root node.
type Surface struct {
	root   *Node
	seq    uint64
	dirty  bool
	layout bool
}

// New creates a surface with a root of the given size.
func New(width, height int) *Surface {
	s := &Surface{}
	s.root = s.NewNode("root")
	s.root.Width = width
	s.root.Height = height
	s.root.Overflow = OverflowHidden
	s.dirty = true
	return s
}

// NewNode creates a detached node owned by the surface.
func (s *Surface) NewNode(kind string, classes ...string) *Node {
	s.seq++
	n := &Node{ID: s.seq, Kind: kind, surface: s}
	n.AddClass(classes...)
	return n
}

func (s *Surface) Root() *Node {
	return s.root
}

// Size returns the viewport size.
func (s *Surface) Size() (int, int) {
	return s.root.Width, s.root.Height
}

// Resize changes the viewport size.
func (s *Surface) Resize(width, height int) {
	if s.root.Width == width && s.root.Height == height {
		return
	}
	s.root.Width = width
	s.root.Height = height
	s.dirty = true
}

// Viewport is the visible region of the surface.
func (s *Surface) Viewport() Rect {
	w, h := s.Size()
	return Rect{Width: w, Height: h}
}

// Contains reports whether b lies inside the rendered region of a.
func (s *Surface) Contains(a, b *Node) bool {
	return a.Contains(b)
}

// Attached reports whether n is still part of the visible tree.
func (s *Surface) Attached(n *Node) bool {
	return n != nil && s.root.Contains(n)
}

// ElementsFromPoint lists the nodes under (x, y), topmost first. Clipping of
// non-visible overflow ancestors and Z stacking are honoured; transparent
// subtrees never match.
func (s *Surface) ElementsFromPoint(x, y int) []*Node {
	s.ensureLayout()
	var out []*Node
	hitTest(s.root, x, y, s.Viewport(), &out)
	return out
}

func hitTest(n *Node, x, y int, clip Rect, out *[]*Node) {
	if n.Transparent {
		return
	}
	childClip := clip
	if n.Overflow != OverflowVisible {
		childClip = clip.Intersect(n.clientAbsRect())
	}
	children := paintOrder(n.children)
	for i := len(children) - 1; i >= 0; i-- {
		hitTest(children[i], x, y, childClip, out)
	}
	if n.AbsRect().Contains(x, y) && clip.Contains(x, y) {
		*out = append(*out, n)
	}
}

// paintOrder sorts children by Z keeping tree order among equals.
func paintOrder(children []*Node) []*Node {
	ordered := slices.Clone(children)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Z < ordered[j].Z
	})
	return ordered
}

func (s *Surface) ensureLayout() {
	if !s.dirty || s.layout {
		return
	}
	s.layout = true
	s.dirty = false
	s.root.Box = Rect{Width: s.root.Width, Height: s.root.Height}
	layoutChildren(s.root)
	s.layout = false
}

// Layout forces a layout pass when the tree changed.
func (s *Surface) Layout() {
	s.ensureLayout()
}
