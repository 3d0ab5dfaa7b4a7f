package popup

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"viewscope/internal/layout"
	"viewscope/internal/placement"
	"viewscope/internal/sched"
	"viewscope/internal/surface"
)

// ActiveClass marks the element a visible popup is anchored to.
const ActiveClass = "popup-active"

// ErrDestroyed is returned when showing a destroyed popup.
var ErrDestroyed = errors.New("popup destroyed")

// Popup is one floating panel.
type Popup struct {
	reg  *Registry
	id   string
	opts Options
	el   *surface.Node

	hoverSel         surface.Selector
	hideIfOutside    bool
	hideOnResize     bool
	hideTimer        sched.Timer
	lastTrigger      *surface.Node
	lastHoverTrigger *surface.Node
	hoverPinned      bool
	frozen           bool
	destroyed        bool
	lastPlacement    placement.Placement
}

// New creates a closed popup. Invalid pin modes and hover selectors are
// logged and ignored.
func (r *Registry) New(opts Options) *Popup {
	if opts.Position == "" {
		opts.Position = PositionTrigger
	}
	p := &Popup{
		reg:           r,
		id:            uuid.NewString(),
		hideIfOutside: boolOr(opts.HideIfEventOutside, true),
		hideOnResize:  boolOr(opts.HideOnResize, true),
	}
	log := r.log.WithField("popup", p.id)

	if !opts.HoverPin.valid() {
		log.WithField("option", "hoverPin").WithField("value", string(opts.HoverPin)).
			Warnf("bad hover pin mode (should be none, %s, %s)", PinPopupHover, PinTriggerClick)
		opts.HoverPin = PinNone
	}
	if opts.HoverTriggers != "" {
		sel, err := surface.ParseSelector(opts.HoverTriggers)
		if err != nil {
			log.WithError(err).WithField("option", "hoverTriggers").WithField("value", opts.HoverTriggers).
				Warn("bad hover trigger selector, hover activation disabled")
		} else {
			p.hoverSel = sel
		}
	}
	p.opts = opts

	p.el = r.surface.NewNode("popup", "popup")
	p.el.Absolute = true
	p.el.Border = true
	p.el.Overflow = surface.OverflowAuto
	p.el.AddClass(opts.ClassName)
	p.el.SetData("popup-id", p.id)

	if p.hoverConfigured() {
		p.el.AddClass("show-on-hover")
		p.el.SetData("pin-mode", p.opts.HoverPin.String())
		// without a pin mode the panel never takes the pointer away from the trigger
		p.el.Transparent = p.opts.HoverPin == PinNone
		r.hoverInstances = append(r.hoverInstances, p)
		r.ensureShared()
	}
	return p
}

func (p *Popup) ID() string {
	return p.id
}

// El is the panel element; render callbacks fill it.
func (p *Popup) El() *surface.Node {
	return p.el
}

// Trigger is the element the panel is currently anchored to.
func (p *Popup) Trigger() *surface.Node {
	return p.lastTrigger
}

func (p *Popup) Options() Options {
	return p.opts
}

func (p *Popup) HoverPinned() bool {
	return p.hoverPinned
}

func (p *Popup) Frozen() bool {
	return p.frozen
}

// Placement is the result of the last position update.
func (p *Popup) Placement() placement.Placement {
	return p.lastPlacement
}

func (p *Popup) hoverConfigured() bool {
	return !p.hoverSel.Empty()
}

// Visible reports membership in the registry's open list.
func (p *Popup) Visible() bool {
	return slices.Contains(p.reg.open, p)
}

// RelatedPopups returns the open popups whose trigger lies inside this
// panel.
func (p *Popup) RelatedPopups() []*Popup {
	if p.el == nil {
		return nil
	}
	var out []*Popup
	for _, q := range p.reg.open {
		if q != p && q.lastTrigger != nil && p.reg.surface.Contains(p.el, q.lastTrigger) {
			out = append(out, q)
		}
	}
	return out
}

// findTargetRelated returns the popup among p and its related popups,
// searched transitively, whose panel contains target.
func (p *Popup) findTargetRelated(target *surface.Node) *Popup {
	return p.findTargetRelatedSeen(target, map[*Popup]bool{})
}

func (p *Popup) findTargetRelatedSeen(target *surface.Node, seen map[*Popup]bool) *Popup {
	if seen[p] || p.el == nil {
		return nil
	}
	seen[p] = true
	if p.reg.surface.Contains(p.el, target) {
		return p
	}
	for _, related := range p.RelatedPopups() {
		if found := related.findTargetRelatedSeen(target, seen); found != nil {
			return found
		}
	}
	return nil
}

// Toggle hides an open popup or shows a closed one.
func (p *Popup) Toggle(trigger *surface.Node) error {
	if p.Visible() {
		p.Hide()
		return nil
	}
	return p.Show(trigger)
}

// Show renders the panel and opens it anchored to trigger. Calling it again
// re-renders the content.
func (p *Popup) Show(trigger *surface.Node) error {
	return p.ShowWith(trigger, p.opts.Render)
}

// ShowWith is Show with a one-off render callback.
func (p *Popup) ShowWith(trigger *surface.Node, render RenderFunc) error {
	if p.destroyed {
		return ErrDestroyed
	}
	p.stopHideTimer()
	if p.hoverConfigured() {
		for _, related := range p.RelatedPopups() {
			related.Hide()
		}
	}
	p.el.ToggleClass("inspect", p.reg.inspectMode.Get())

	if render != nil {
		p.el.Clear()
		p.el.SetText("")
		p.el.ScrollTo(0, 0)
		if err := render(p.el, trigger, p.Hide); err != nil {
			p.el.Clear()
			p.el.SetText("")
			// an empty panel must not stay open, locked or not
			p.hide(true)
			return fmt.Errorf("popup %s: render: %w", p.id, err)
		}
	}

	if p.lastTrigger != nil {
		p.lastTrigger.RemoveClass(ActiveClass)
	}
	if trigger != nil {
		trigger.AddClass(ActiveClass)
	}
	p.lastTrigger = trigger

	if !p.Visible() {
		p.reg.add(p)
	}
	// re-appending keeps the most recently shown panel on top
	p.reg.layer.AppendChild(p.el)
	p.UpdatePosition()
	return nil
}

// UpdatePosition places the panel against its anchor and then repositions
// related popups.
func (p *Popup) UpdatePosition() {
	if !p.Visible() || (p.opts.Position != PositionPointer && p.lastTrigger == nil) {
		return
	}
	s := p.reg.surface
	viewport := s.Viewport()

	var anchor placement.Anchor
	if p.opts.Position == PositionPointer {
		anchor = placement.AnchorFromPointer(p.reg.pointer.Get(), p.reg.cfg.PointerMargin)
	} else {
		anchor = placement.AnchorFromRect(layout.BoundingRectRelativeTo(p.lastTrigger, s.Root()))
	}
	pl := placement.Place(anchor, viewport)
	w, h := surface.Natural(p.el, max(pl.MaxWidth, 0))
	p.el.SetBox(pl.Resolve(w, h, viewport))
	p.el.SetData("vTo", string(pl.VTo))
	p.el.SetData("hTo", string(pl.HTo))
	p.lastPlacement = pl

	for _, related := range p.RelatedPopups() {
		related.UpdatePosition()
	}
}

// Freeze stops automatic repositioning.
func (p *Popup) Freeze() {
	p.frozen = true
	p.el.AddClass("frozen")
}

// Unfreeze resumes repositioning and updates the position right away.
func (p *Popup) Unfreeze() {
	p.frozen = false
	p.el.RemoveClass("frozen")
	p.UpdatePosition()
}

// Hide closes the panel and, before it, every related popup. Panels locked
// by the inspector stay open.
func (p *Popup) Hide() {
	p.hide(false)
}

// hide with force ignores inspector locks, for this panel and the related
// popups anchored inside it.
func (p *Popup) hide(force bool) {
	p.stopHideTimer()
	if !p.Visible() || (!force && p.reg.Locked(p)) {
		return
	}
	if force {
		delete(p.reg.locked, p)
	}
	for _, related := range p.RelatedPopups() {
		related.hide(force)
	}
	p.reg.remove(p)
	p.el.Remove()
	p.Unfreeze()
	p.setPinned(false)
	if p.lastTrigger != nil {
		p.lastTrigger.RemoveClass(ActiveClass)
		p.lastTrigger = nil
	}
	if p.opts.OnHide != nil {
		p.opts.OnHide()
	}
}

// Destroy hides the popup and detaches it from the registry for good.
func (p *Popup) Destroy() {
	if p.destroyed {
		return
	}
	delete(p.reg.locked, p)
	if idx := slices.Index(p.reg.hoverInstances, p); idx >= 0 {
		p.reg.hoverInstances = slices.Delete(p.reg.hoverInstances, idx, idx+1)
	}
	p.Hide()
	p.destroyed = true
	p.lastTrigger = nil
	p.lastHoverTrigger = nil
	p.reg.releaseShared()
}

func (p *Popup) setPinned(on bool) {
	p.hoverPinned = on
	p.el.ToggleClass("pinned", on)
}

func (p *Popup) stopHideTimer() {
	if p.hideTimer != nil {
		p.hideTimer.Stop()
		p.hideTimer = nil
	}
}

func (p *Popup) hideIfEventOutside(target *surface.Node) {
	if !p.hideIfOutside || p.reg.Locked(p) {
		return
	}
	if p.lastTrigger != nil && p.lastTrigger.Contains(target) {
		return
	}
	if target != nil && p.findTargetRelated(target) != nil {
		return
	}
	p.Hide()
}

func (p *Popup) hideIfTriggerDetached() {
	s := p.reg.surface
	if (p.lastHoverTrigger != nil && !s.Attached(p.lastHoverTrigger)) ||
		(p.lastTrigger != nil && !s.Attached(p.lastTrigger)) {
		p.Hide()
	}
}
