// Package host owns one inspectable widget: the surface, its event
// dispatcher and loop, the popup registry, the view engine and the
// inspector session. Input arrives as cell coordinates and keys and is
// turned into dispatched events.
package host

import (
	"slices"

	"viewscope/internal/events"
	"viewscope/internal/inspector"
	"viewscope/internal/logger"
	"viewscope/internal/popup"
	"viewscope/internal/sched"
	"viewscope/internal/surface"
	"viewscope/internal/viewtree"
	"viewscope/internal/views"
)

// HintTriggers selects elements whose hint is shown in a hover popup.
const HintTriggers = "[data-hint]"

type Options struct {
	Width     int
	Height    int
	Inspector inspector.Config
	Popup     popup.Config
}

// Host is the widget runtime. All methods must be called from one goroutine.
type Host struct {
	Surface     *surface.Surface
	Dispatcher  *events.Dispatcher
	Loop        *sched.Loop
	Pointer     *events.Value[surface.Point]
	InspectMode *events.Value[bool]
	Popups      *popup.Registry
	Views       *views.Engine
	Inspector   *inspector.Session

	content *surface.Node
	hint    *popup.Popup
	// hovered is the chain from the element under the pointer up to the root.
	hovered []*surface.Node
	log     *logger.LogEntry
}

func New(opts Options) *Host {
	if opts.Width <= 0 {
		opts.Width = 80
	}
	if opts.Height <= 0 {
		opts.Height = 24
	}
	h := &Host{
		Surface:     surface.New(opts.Width, opts.Height),
		Dispatcher:  events.NewDispatcher(),
		Loop:        sched.NewLoop(),
		Pointer:     events.NewValue(surface.Point{X: -1, Y: -1}),
		InspectMode: events.NewValue(false),
		log:         logger.Named("host"),
	}
	h.content = h.Surface.Root().Append("block", "content")
	h.Views = views.New(h.Dispatcher)
	h.Popups = popup.NewRegistry(popup.Deps{
		Surface:     h.Surface,
		Dispatcher:  h.Dispatcher,
		Scheduler:   h.Loop,
		Pointer:     h.Pointer,
		InspectMode: h.InspectMode,
		Config:      opts.Popup,
	})
	h.Inspector = inspector.New(inspector.Deps{
		Surface:     h.Surface,
		Dispatcher:  h.Dispatcher,
		Scheduler:   h.Loop,
		Pointer:     h.Pointer,
		InspectMode: h.InspectMode,
		Popups:      h.Popups,
		Engine:      h.Views,
		Config:      opts.Inspector,
	})
	h.hint = h.Popups.New(popup.Options{
		HoverTriggers: HintTriggers,
		HoverPin:      popup.PinTriggerClick,
		ClassName:     "hint",
		Render:        renderHint,
	})
	return h
}

func renderHint(body, trigger *surface.Node, _ func()) error {
	text, _ := trigger.Data("hint")
	body.Append("text", "hint-text").SetText(text)
	return nil
}

// Content is the node views are mounted into.
func (h *Host) Content() *surface.Node {
	return h.content
}

// Mount renders config as the named view root, replacing a previous mount
// of the same name.
func (h *Host) Mount(name string, config viewtree.Config, data, ctx any) error {
	_, err := h.Views.Mount(h.content, name, config, data, ctx)
	h.settle()
	return err
}

// StartInspect turns inspect mode on.
func (h *Host) StartInspect() {
	h.InspectMode.Set(true)
	h.Inspector.Start()
	h.settle()
}

// StopInspect turns inspect mode off.
func (h *Host) StopInspect() {
	h.InspectMode.Set(false)
	h.Inspector.Stop()
	h.settle()
}

func (h *Host) ToggleInspect() {
	if h.Inspector.Active() {
		h.StopInspect()
		return
	}
	h.StartInspect()
}

// PointerMove records the pointer and fires leave/enter events for the
// elements it left and entered, then a move event on the topmost element.
func (h *Host) PointerMove(x, y int) {
	h.Pointer.Set(surface.Point{X: x, Y: y})
	target := h.retarget()
	h.Dispatcher.Dispatch(&events.Event{Kind: events.PointerMove, Target: target, X: x, Y: y})
	h.settle()
}

// Click moves the pointer to (x, y) if needed and clicks the topmost element.
func (h *Host) Click(x, y int) {
	if p := h.Pointer.Get(); p.X != x || p.Y != y {
		h.PointerMove(x, y)
	}
	h.Dispatcher.Dispatch(&events.Event{Kind: events.Click, Target: h.top(x, y), X: x, Y: y})
	h.settle()
}

// Scroll moves the pointer to (x, y) if needed, scrolls the nearest
// scrollable element under it and dispatches a scroll event targeting it.
// Hover is re-resolved since content moved under the pointer.
func (h *Host) Scroll(x, y, dx, dy int) {
	if p := h.Pointer.Get(); p.X != x || p.Y != y {
		h.PointerMove(x, y)
	}
	target := h.top(x, y)
	for cur := target; cur != nil; cur = cur.Parent() {
		if cur.Scrollable() {
			cur.ScrollBy(dx, dy)
			target = cur
			break
		}
	}
	h.Dispatcher.Dispatch(&events.Event{Kind: events.Scroll, Target: target, X: x, Y: y, DX: dx, DY: dy})
	h.retarget()
	h.settle()
}

func (h *Host) KeyDown(key string) {
	h.Dispatcher.Dispatch(&events.Event{Kind: events.KeyDown, Key: key})
	h.settle()
}

func (h *Host) KeyUp(key string) {
	h.Dispatcher.Dispatch(&events.Event{Kind: events.KeyUp, Key: key})
	h.settle()
}

// Resize changes the surface size and dispatches a resize event.
func (h *Host) Resize(width, height int) {
	w, hh := h.Surface.Size()
	if w == width && hh == height {
		return
	}
	h.Surface.Resize(width, height)
	h.Dispatcher.Dispatch(&events.Event{Kind: events.Resize})
	h.settle()
}

// Paint renders the surface.
func (h *Host) Paint(theme surface.Theme) string {
	return h.Surface.Paint(theme)
}

// Hovered returns the element under the pointer.
func (h *Host) Hovered() *surface.Node {
	if len(h.hovered) == 0 {
		return nil
	}
	return h.hovered[0]
}

// Dispose tears down the inspector and every popup.
func (h *Host) Dispose() {
	h.Inspector.Dispose()
	h.hint.Destroy()
	h.Popups.Dispose()
	h.hovered = nil
}

func (h *Host) top(x, y int) *surface.Node {
	if hits := h.Surface.ElementsFromPoint(x, y); len(hits) > 0 {
		return hits[0]
	}
	return nil
}

// retarget diffs the hovered chain at the current pointer and dispatches
// leave events innermost first, then enter events outermost first.
func (h *Host) retarget() *surface.Node {
	p := h.Pointer.Get()
	target := h.top(p.X, p.Y)
	var chain []*surface.Node
	for cur := target; cur != nil; cur = cur.Parent() {
		chain = append(chain, cur)
	}
	prev := h.hovered
	h.hovered = chain

	for _, n := range prev {
		if !slices.Contains(chain, n) {
			h.Dispatcher.Dispatch(&events.Event{Kind: events.PointerLeave, Target: n, X: p.X, Y: p.Y})
		}
	}
	for _, n := range slices.Backward(chain) {
		if !slices.Contains(prev, n) {
			h.Dispatcher.Dispatch(&events.Event{Kind: events.PointerEnter, Target: n, X: p.X, Y: p.Y})
		}
	}
	return target
}

// settle runs deferred work queued by the last event.
func (h *Host) settle() {
	h.Loop.RunMicrotasks()
}
