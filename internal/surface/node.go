package surface

import "slices"

// Overflow mirrors the overflow behaviour of a rendered region.
type Overflow int

const (
	OverflowVisible Overflow = iota
	OverflowHidden
	OverflowScroll
	OverflowAuto
)

func (o Overflow) String() string {
	switch o {
	case OverflowHidden:
		return "hidden"
	case OverflowScroll:
		return "scroll"
	case OverflowAuto:
		return "auto"
	default:
		return "visible"
	}
}

// ParseOverflow maps a config string to an Overflow; unknown values are visible.
func ParseOverflow(s string) Overflow {
	switch s {
	case "hidden":
		return OverflowHidden
	case "scroll":
		return OverflowScroll
	case "auto":
		return OverflowAuto
	default:
		return OverflowVisible
	}
}

// Direction is the flow direction of a node's children.
type Direction int

const (
	Column Direction = iota
	Row
)

// Node is one element of the surface tree.
//
// Box is relative to the parent's content origin. Layout assigns it for flow
// nodes; Absolute nodes keep whatever SetBox gave them.
type Node struct {
	ID   uint64
	Kind string

	Dir      Direction
	Width    int
	Height   int
	Padding  int
	Border   bool
	Overflow Overflow
	Absolute bool
	Z        int
	// Transparent nodes (and their subtrees) are skipped by hit testing.
	Transparent bool

	Box        Rect
	ScrollTop  int
	ScrollLeft int

	text     string
	contentW int
	contentH int
	classes  []string
	data     map[string]string
	parent   *Node
	children []*Node
	surface  *Surface
}

func (n *Node) Parent() *Node {
	if n == nil {
		return nil
	}
	return n.parent
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	if n == nil {
		return nil
	}
	return append([]*Node(nil), n.children...)
}

func (n *Node) Text() string {
	return n.text
}

func (n *Node) SetText(text string) {
	if n.text == text {
		return
	}
	n.text = text
	n.invalidate()
}

// SetBox positions an absolute node.
func (n *Node) SetBox(r Rect) {
	if n.Box == r {
		return
	}
	n.Box = r
	n.invalidate()
}

// Invalidate marks the owning surface for relayout after direct field edits.
func (n *Node) Invalidate() {
	n.invalidate()
}

func (n *Node) invalidate() {
	if n.surface != nil {
		n.surface.dirty = true
	}
}

// Surface returns the owning surface.
func (n *Node) Surface() *Surface {
	return n.surface
}

// Append creates a node of the given kind as n's last child.
func (n *Node) Append(kind string, classes ...string) *Node {
	return n.AppendChild(n.surface.NewNode(kind, classes...))
}

// AppendChild moves c to the end of n's children, detaching it first.
func (n *Node) AppendChild(c *Node) *Node {
	if n == nil || c == nil || c == n {
		return c
	}
	c.Remove()
	c.parent = n
	n.children = append(n.children, c)
	n.invalidate()
	return c
}

// Remove detaches n from its parent. It is a no-op for detached nodes.
func (n *Node) Remove() {
	if n == nil || n.parent == nil {
		return
	}
	p := n.parent
	if idx := slices.Index(p.children, n); idx >= 0 {
		p.children = slices.Delete(p.children, idx, idx+1)
	}
	n.parent = nil
	p.invalidate()
}

// Clear detaches every child.
func (n *Node) Clear() {
	for _, c := range n.Children() {
		c.Remove()
	}
}

// Contains reports whether o is n or one of its descendants.
func (n *Node) Contains(o *Node) bool {
	if n == nil || o == nil {
		return false
	}
	for cur := o; cur != nil; cur = cur.parent {
		if cur == n {
			return true
		}
	}
	return false
}

func (n *Node) Classes() []string {
	return append([]string(nil), n.classes...)
}

func (n *Node) HasClass(class string) bool {
	return slices.Contains(n.classes, class)
}

func (n *Node) AddClass(classes ...string) {
	for _, c := range classes {
		if c != "" && !n.HasClass(c) {
			n.classes = append(n.classes, c)
		}
	}
}

func (n *Node) RemoveClass(class string) {
	if idx := slices.Index(n.classes, class); idx >= 0 {
		n.classes = slices.Delete(n.classes, idx, idx+1)
	}
}

// ToggleClass adds the class when on is true and removes it otherwise.
func (n *Node) ToggleClass(class string, on bool) {
	if on {
		n.AddClass(class)
		return
	}
	n.RemoveClass(class)
}

// Data returns a data-* attribute.
func (n *Node) Data(key string) (string, bool) {
	v, ok := n.data[key]
	return v, ok
}

func (n *Node) SetData(key, value string) {
	if n.data == nil {
		n.data = map[string]string{}
	}
	n.data[key] = value
}

func (n *Node) DeleteData(key string) {
	delete(n.data, key)
}

// Inset is the border plus padding thickness on every side.
func (n *Node) Inset() int {
	inset := n.Padding
	if n.Border {
		inset++
	}
	return inset
}

// ClientSize is the visible content area (box minus inset).
func (n *Node) ClientSize() (int, int) {
	in := n.Inset()
	return maxInt(0, n.Box.Width-2*in), maxInt(0, n.Box.Height-2*in)
}

// ContentSize is the extent of laid-out content, which can exceed ClientSize.
func (n *Node) ContentSize() (int, int) {
	n.ensureLayout()
	return n.contentW, n.contentH
}

// AbsRect returns the node's rectangle in surface coordinates.
func (n *Node) AbsRect() Rect {
	n.ensureLayout()
	r := n.Box
	if n.parent != nil {
		ox, oy := n.parent.contentOrigin()
		r = r.Translate(ox, oy)
	}
	return r
}

// contentOrigin is where children's Box (0,0) lands in surface coordinates.
func (n *Node) contentOrigin() (int, int) {
	r := n.Box
	if n.parent != nil {
		ox, oy := n.parent.contentOrigin()
		r = r.Translate(ox, oy)
	}
	in := n.Inset()
	return r.Left + in - n.ScrollLeft, r.Top + in - n.ScrollTop
}

// clientAbsRect is the absolute rectangle of the client area.
func (n *Node) clientAbsRect() Rect {
	r := n.AbsRect()
	in := n.Inset()
	w, h := n.ClientSize()
	return Rect{Top: r.Top + in, Left: r.Left + in, Width: w, Height: h}
}

// Scrollable reports whether the node can scroll its content.
func (n *Node) Scrollable() bool {
	if n.Overflow != OverflowScroll && n.Overflow != OverflowAuto {
		return false
	}
	cw, ch := n.ContentSize()
	w, h := n.ClientSize()
	return cw > w || ch > h
}

// MaxScroll returns the largest valid (left, top) scroll offsets.
func (n *Node) MaxScroll() (int, int) {
	cw, ch := n.ContentSize()
	w, h := n.ClientSize()
	return maxInt(0, cw-w), maxInt(0, ch-h)
}

// ScrollTo sets the scroll offsets, clamped to the scrollable range.
func (n *Node) ScrollTo(left, top int) {
	ml, mt := n.MaxScroll()
	n.ScrollLeft = clamp(left, 0, ml)
	n.ScrollTop = clamp(top, 0, mt)
}

// ScrollBy scrolls relative to the current offsets.
func (n *Node) ScrollBy(dx, dy int) {
	n.ScrollTo(n.ScrollLeft+dx, n.ScrollTop+dy)
}

func (n *Node) ensureLayout() {
	if n.surface != nil {
		n.surface.ensureLayout()
	}
}

// Walk visits n and its descendants depth first; returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children() {
		c.Walk(fn)
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
