// Package layout holds the geometry helpers shared by popups and the
// inspector: rectangles relative to an ancestor, scroll container lookup and
// minimal scrolling to keep a node visible.
package layout

import "viewscope/internal/surface"

// BoundingRectRelativeTo returns node's rectangle in the coordinate space of
// ancestor's content box, including ancestor's own scroll offset. A nil
// ancestor yields surface coordinates.
func BoundingRectRelativeTo(node, ancestor *surface.Node) surface.Rect {
	r := node.AbsRect()
	if ancestor == nil {
		return r
	}
	a := ancestor.AbsRect()
	in := ancestor.Inset()
	return surface.Rect{
		Top:    r.Top - a.Top - in + ancestor.ScrollTop,
		Left:   r.Left - a.Left - in + ancestor.ScrollLeft,
		Width:  r.Width,
		Height: r.Height,
	}
}

// NearestScrollableAncestor walks up from node's parent to the first
// ancestor whose content can scroll, falling back to the topmost ancestor.
func NearestScrollableAncestor(node *surface.Node) *surface.Node {
	if node == nil {
		return nil
	}
	last := node
	for cur := node.Parent(); cur != nil; cur = cur.Parent() {
		if cur.Scrollable() {
			return cur
		}
		last = cur
	}
	return last
}

// EnsureVisible scrolls node's nearest scrollable ancestor by the minimum
// amount on each axis so the node's leading edges come into view.
func EnsureVisible(node *surface.Node) {
	viewport := NearestScrollableAncestor(node)
	if viewport == nil || viewport == node {
		return
	}
	left, top := VisibleScroll(node, viewport)
	if left != viewport.ScrollLeft || top != viewport.ScrollTop {
		viewport.ScrollTo(left, top)
	}
}

// VisibleScroll computes the scroll offsets EnsureVisible would apply.
func VisibleScroll(node, viewport *surface.Node) (int, int) {
	rect := BoundingRectRelativeTo(node, viewport)
	clientW, clientH := viewport.ClientSize()
	scrollTop, scrollLeft := viewport.ScrollTop, viewport.ScrollLeft

	viewTop, viewBottom := scrollTop, scrollTop+clientH
	viewLeft, viewRight := scrollLeft, scrollLeft+clientW
	elTop, elBottom := rect.Top, rect.Top+rect.Height
	elLeft, elRight := rect.Left, rect.Left+rect.Width

	toTop, toLeft := scrollTop, scrollLeft
	switch {
	case elTop < viewTop:
		toTop = elTop
	case elBottom > viewBottom:
		toTop = min(elTop, elBottom-clientH)
	}
	switch {
	case elLeft < viewLeft:
		toLeft = elLeft
	case elRight > viewRight:
		toLeft = min(elLeft, scrollLeft+(elRight-viewRight))
	}
	return toLeft, toTop
}
