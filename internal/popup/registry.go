// Package popup implements floating panels anchored to a trigger element or
// the pointer, with hover activation, pinning, freezing and outside
// dismissal. All panels of one host are owned by a Registry.
package popup

import (
	"slices"

	"viewscope/internal/events"
	"viewscope/internal/logger"
	"viewscope/internal/sched"
	"viewscope/internal/surface"
)

// LayerZ stacks the popup layer above page content and inspector overlays.
const LayerZ = 200

// Deps are the host services a registry works with.
type Deps struct {
	Surface     *surface.Surface
	Dispatcher  *events.Dispatcher
	Scheduler   sched.Scheduler
	Pointer     *events.Value[surface.Point]
	InspectMode *events.Value[bool]
	Config      Config
}

// Registry owns the ordered list of open popups, the hover-trigger
// instances and the listeners they share.
type Registry struct {
	surface     *surface.Surface
	layer       *surface.Node
	dispatcher  *events.Dispatcher
	sched       sched.Scheduler
	pointer     *events.Value[surface.Point]
	inspectMode *events.Value[bool]
	cfg         Config
	log         *logger.LogEntry

	open           []*Popup
	hoverInstances []*Popup
	locked         map[*Popup]struct{}

	shared       []events.Subscription
	resize       *events.Subscription
	unsubscribes []func()
	disposed     bool
}

// NewRegistry creates the popup layer and subscribes to pointer and
// inspect-mode changes.
func NewRegistry(deps Deps) *Registry {
	r := &Registry{
		surface:     deps.Surface,
		dispatcher:  deps.Dispatcher,
		sched:       deps.Scheduler,
		pointer:     deps.Pointer,
		inspectMode: deps.InspectMode,
		cfg:         deps.Config.withDefaults(),
		log:         logger.Named("popup"),
		locked:      map[*Popup]struct{}{},
	}
	if r.pointer == nil {
		r.pointer = events.NewValue(surface.Point{})
	}
	if r.inspectMode == nil {
		r.inspectMode = events.NewValue(false)
	}

	r.layer = r.surface.NewNode("layer", "popup-layer")
	r.layer.Absolute = true
	r.layer.Z = LayerZ
	r.surface.Root().AppendChild(r.layer)

	r.unsubscribes = append(r.unsubscribes,
		r.pointer.Subscribe(func(surface.Point) { r.followPointer() }),
		r.inspectMode.Subscribe(r.onInspectMode),
	)
	return r
}

// Layer is the container every panel is appended to.
func (r *Registry) Layer() *surface.Node {
	return r.layer
}

// Open returns the open popups in z-order.
func (r *Registry) Open() []*Popup {
	return slices.Clone(r.open)
}

// Locked reports whether p is immune to ordinary dismissal.
func (r *Registry) Locked(p *Popup) bool {
	_, ok := r.locked[p]
	return ok
}

func (r *Registry) onInspectMode(enabled bool) {
	if !enabled {
		clear(r.locked)
		return
	}
	for _, p := range r.open {
		r.locked[p] = struct{}{}
	}
}

func (r *Registry) followPointer() {
	for _, p := range r.Open() {
		if p.opts.Position == PositionPointer && !p.hoverPinned && !p.frozen {
			p.UpdatePosition()
		}
	}
}

func (r *Registry) add(p *Popup) {
	r.open = append(r.open, p)
	if len(r.open) == 1 {
		sub := r.dispatcher.Add(events.Resize, r.hideOnResize)
		r.resize = &sub
	}
	r.ensureShared()
}

func (r *Registry) remove(p *Popup) {
	if idx := slices.Index(r.open, p); idx >= 0 {
		r.open = slices.Delete(r.open, idx, idx+1)
	}
	if len(r.open) == 0 {
		if r.resize != nil {
			r.resize.Remove()
			r.resize = nil
		}
		r.releaseShared()
	}
}

// ensureShared installs the listeners shared by every popup. They stay
// while any popup is open or any hover-trigger instance exists.
func (r *Registry) ensureShared() {
	if r.shared != nil || r.disposed {
		return
	}
	r.shared = []events.Subscription{
		r.dispatcher.Add(events.PointerEnter, r.onPointerEnter),
		r.dispatcher.Add(events.PointerLeave, r.onPointerLeave),
		r.dispatcher.Add(events.Scroll, r.onScroll),
		r.dispatcher.Add(events.Click, r.onClick),
	}
	r.log.Debug("shared listeners installed")
}

func (r *Registry) releaseShared() {
	if r.shared == nil || len(r.open) > 0 || len(r.hoverInstances) > 0 {
		return
	}
	for _, sub := range r.shared {
		sub.Remove()
	}
	r.shared = nil
	r.log.Debug("shared listeners removed")
}

func (r *Registry) onPointerEnter(e *events.Event) {
	if e.Target == nil {
		return
	}
	for _, p := range slices.Clone(r.hoverInstances) {
		related := p.findTargetRelated(e.Target)
		var trigger *surface.Node
		if related != nil {
			trigger = related.el
		} else {
			trigger = p.hoverSel.Closest(e.Target)
		}
		if trigger == nil {
			continue
		}
		p.stopHideTimer()
		if trigger == p.lastHoverTrigger {
			continue
		}
		// a pinned related popup keeps the previous hover trigger
		if related == nil || !related.hoverPinned {
			p.lastHoverTrigger = trigger
		}
		if related == nil {
			p.setPinned(false)
			if err := p.Show(trigger); err != nil {
				r.log.WithError(err).WithField("popup", p.id).Warn("hover show failed")
			}
		}
	}
}

func (r *Registry) onPointerLeave(e *events.Event) {
	for _, p := range slices.Clone(r.hoverInstances) {
		if p.lastHoverTrigger != nil && p.lastHoverTrigger == e.Target {
			p.lastHoverTrigger = nil
			p.stopHideTimer()
			p.hideTimer = r.sched.AfterFunc(r.cfg.HoverHideDelay, p.Hide)
		}
	}
}

func (r *Registry) onScroll(e *events.Event) {
	r.hideIfEventOutside(e)
}

func (r *Registry) onClick(e *events.Event) {
	r.hideIfEventOutside(e)
	r.sched.Defer(r.hideIfTriggerDetached)

	for _, p := range slices.Clone(r.hoverInstances) {
		if p.opts.HoverPin != PinTriggerClick {
			continue
		}
		if p.lastHoverTrigger != nil && p.lastTrigger != nil && p.lastTrigger.Contains(e.Target) {
			p.lastHoverTrigger = nil
			p.setPinned(true)
			e.StopPropagation()
		}
	}
}

func (r *Registry) hideIfEventOutside(e *events.Event) {
	for _, p := range r.Open() {
		p.hideIfEventOutside(e.Target)
	}
}

func (r *Registry) hideIfTriggerDetached() {
	for _, p := range r.Open() {
		p.hideIfTriggerDetached()
	}
}

func (r *Registry) hideOnResize(*events.Event) {
	for _, p := range r.Open() {
		if !p.hideOnResize || r.Locked(p) {
			continue
		}
		p.Hide()
	}
}

// Dispose hides every popup regardless of locks and removes all listeners
// and subscriptions. The registry is unusable afterwards.
func (r *Registry) Dispose() {
	if r.disposed {
		return
	}
	clear(r.locked)
	for _, p := range slices.Backward(r.Open()) {
		p.Hide()
	}
	r.disposed = true
	r.hoverInstances = nil
	for _, sub := range r.shared {
		sub.Remove()
	}
	r.shared = nil
	if r.resize != nil {
		r.resize.Remove()
		r.resize = nil
	}
	for _, unsubscribe := range r.unsubscribes {
		unsubscribe()
	}
	r.unsubscribes = nil
	r.layer.Remove()
}
