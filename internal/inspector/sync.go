package inspector

import (
	"viewscope/internal/events"
	"viewscope/internal/layout"
	"viewscope/internal/surface"
	"viewscope/internal/viewtree"
)

// sync rebuilds overlays from a fresh visual tree and re-resolves hover.
// It does nothing while a leaf is selected.
func (s *Session) sync() {
	if !s.active || s.selected != nil {
		return
	}
	s.layer.SetBox(s.surface.Viewport())
	tree := s.engine.VisualTree([]*surface.Node{s.detail.El()})

	stale := make(map[*surface.Node]struct{}, len(s.overlayByNode))
	for n := range s.overlayByNode {
		stale[n] = struct{}{}
	}
	s.walk(tree, s.layer, stale)
	for n := range stale {
		s.removeOverlay(n)
	}
	s.syncs++
	s.updateHover()
}

func (s *Session) walk(leaves []*viewtree.Leaf, parentEl *surface.Node, stale map[*surface.Node]struct{}) {
	for _, leaf := range leaves {
		if !leaf.Inspectable() {
			if len(leaf.Children) > 0 {
				s.walk(leaf.Children, parentEl, stale)
			}
			continue
		}

		box := layout.BoundingRectRelativeTo(leaf.Node, parentEl)
		ov := s.overlayByNode[leaf.Node]
		if ov == nil {
			ov = &Overlay{El: parentEl.Append("overlay", "overlay")}
			ov.El.Absolute = true
			if leaf.ViewRoot != nil {
				ov.El.AddClass("view-root")
			}
			s.overlayByNode[leaf.Node] = ov
		} else {
			delete(stale, leaf.Node)
			if ov.El.Parent() != parentEl {
				parentEl.AppendChild(ov.El)
			}
		}
		s.leafByOverlay[ov.El] = leaf

		if ov.Box == nil || *ov.Box != box {
			ov.El.SetBox(box)
			ov.Box = &box
			ov.writes++
		}

		if len(leaf.Children) > 0 {
			if leaf.Node.Overflow != surface.OverflowVisible {
				ov.El.Overflow = surface.OverflowHidden
			} else {
				ov.El.Overflow = surface.OverflowVisible
			}
			s.walk(leaf.Children, ov.El, stale)
		}
	}
}

func (s *Session) removeOverlay(n *surface.Node) {
	ov := s.overlayByNode[n]
	if ov == nil {
		return
	}
	ov.El.Remove()
	delete(s.leafByOverlay, ov.El)
	delete(s.overlayByNode, n)
	if s.lastOverlay == ov.El {
		s.lastOverlay = nil
	}
}

func (s *Session) clearOverlays() {
	for n := range s.overlayByNode {
		s.removeOverlay(n)
	}
	clear(s.leafByOverlay)
	s.lastOverlay = nil
}

// updateHover resolves the topmost overlay under the pointer.
func (s *Session) updateHover() {
	p := s.pointer.Get()
	var found *surface.Node
	for _, el := range s.surface.ElementsFromPoint(p.X, p.Y) {
		if _, ok := s.leafByOverlay[el]; ok {
			found = el
			break
		}
	}
	s.onHover(found)
}

func (s *Session) onHover(overlayEl *surface.Node) {
	if overlayEl == s.lastOverlay {
		return
	}
	if s.lastOverlay != nil {
		s.lastOverlay.RemoveClass("hovered")
	}
	s.lastOverlay = overlayEl

	if overlayEl == nil {
		s.stopHideTimer()
		s.hideTimer = s.sched.AfterFunc(s.cfg.HideDelay, s.hide)
		return
	}
	overlayEl.AddClass("hovered")

	leaf := s.leafByOverlay[overlayEl]
	if leaf == nil {
		s.hoverLeaf = nil
		return
	}
	if s.hoverLeaf != nil && sameView(s.hoverLeaf, leaf) {
		return
	}
	s.hoverLeaf = leaf
	s.stopHideTimer()
	s.showDetail()
}

// sameView reports whether two leaves belong to the same logical view.
func sameView(a, b *viewtree.Leaf) bool {
	if a.View != nil || b.View != nil {
		return a.View == b.View
	}
	return a.ViewRoot == b.ViewRoot
}

func (s *Session) hide() {
	s.hideTimer = nil
	if s.lastOverlay != nil {
		s.lastOverlay.RemoveClass("hovered")
	}
	s.lastOverlay = nil
	s.hoverLeaf = nil
	s.selected = nil
	s.detail.Hide()
}

func (s *Session) showDetail() bool {
	if err := s.detail.Show(nil); err != nil {
		s.log.WithError(err).Warn("detail panel render failed")
		return false
	}
	return true
}

// onDetailHidden drops the hover and selection the panel was showing, so
// a panel closed from outside does not leave sync frozen.
func (s *Session) onDetailHidden() {
	s.hoverLeaf = nil
	s.selected = nil
}

// Select locks the detail panel onto leaf and freezes overlay sync. A nil
// leaf clears the selection; during quick activation it turns the
// inspector off instead.
func (s *Session) Select(leaf *viewtree.Leaf) {
	s.selected = leaf
	switch {
	case leaf != nil:
		s.stopHideTimer()
		if !s.showDetail() {
			return
		}
		s.detail.Freeze()
		s.cancelHint.DeleteData("alt")
	case s.quick:
		s.deactivate()
	default:
		clear(s.expanded)
		s.sidebarScroll = 0
		s.hide()
		s.debounce.Schedule()
	}
}

// onLayerClick handles clicks that reach the overlay layer: over an
// overlay it locks the hovered leaf, on the background it clears.
func (s *Session) onLayerClick(e *events.Event) {
	if !s.active {
		return
	}
	var next *viewtree.Leaf
	if s.hoverLeaf != nil && s.selected == nil && s.overOverlay(e.Target) {
		next = s.hoverLeaf
	}
	s.Select(next)
}

func (s *Session) overOverlay(target *surface.Node) bool {
	for cur := target; cur != nil && cur != s.layer; cur = cur.Parent() {
		if _, ok := s.leafByOverlay[cur]; ok {
			return true
		}
	}
	return false
}
