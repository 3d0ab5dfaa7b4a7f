// Package inspector draws highlight overlays over the rendered views, keeps
// them in sync with the live visual tree and shows which view produced the
// element under the pointer.
package inspector

import (
	"time"

	"github.com/google/uuid"

	"viewscope/internal/events"
	"viewscope/internal/logger"
	"viewscope/internal/popup"
	"viewscope/internal/sched"
	"viewscope/internal/surface"
	"viewscope/internal/viewtree"
)

// LayerZ stacks the overlay layer above content and below popups.
const LayerZ = 100

// Config holds the inspector timings and key bindings.
type Config struct {
	SyncDebounce time.Duration
	SyncInterval time.Duration
	HideDelay    time.Duration
	QuickKey     string
	CancelKey    string
}

func (c Config) withDefaults() Config {
	if c.SyncDebounce <= 0 {
		c.SyncDebounce = 50 * time.Millisecond
	}
	if c.SyncInterval <= 0 {
		c.SyncInterval = 500 * time.Millisecond
	}
	if c.HideDelay <= 0 {
		c.HideDelay = 100 * time.Millisecond
	}
	if c.QuickKey == "" {
		c.QuickKey = "alt"
	}
	if c.CancelKey == "" {
		c.CancelKey = "esc"
	}
	return c
}

// Deps are the host services a session works with.
type Deps struct {
	Surface     *surface.Surface
	Dispatcher  *events.Dispatcher
	Scheduler   sched.Scheduler
	Pointer     *events.Value[surface.Point]
	InspectMode *events.Value[bool]
	Popups      *popup.Registry
	Engine      viewtree.Engine
	Config      Config
}

// Overlay is the highlight bound to one rendered node.
type Overlay struct {
	El *surface.Node
	// Box is relative to the parent overlay; nil until first computed.
	Box    *surface.Rect
	writes int
}

// Writes counts how often the overlay box was actually updated.
func (o *Overlay) Writes() int {
	return o.writes
}

// Session is the inspector of one host. It follows the inspect-mode toggle.
type Session struct {
	surface     *surface.Surface
	dispatcher  *events.Dispatcher
	sched       sched.Scheduler
	pointer     *events.Value[surface.Point]
	inspectMode *events.Value[bool]
	engine      viewtree.Engine
	cfg         Config
	log         *logger.LogEntry

	layer      *surface.Node
	cancelHint *surface.Node
	detail     *popup.Popup
	debounce   *sched.Debouncer

	active    bool
	quick     bool
	sessionID string

	overlayByNode map[*surface.Node]*Overlay
	leafByOverlay map[*surface.Node]*viewtree.Leaf
	lastOverlay   *surface.Node
	hoverLeaf     *viewtree.Leaf
	selected      *viewtree.Leaf
	expanded      map[*viewtree.Leaf]bool
	sidebarScroll int
	syncs         int

	hideTimer   sched.Timer
	tick        sched.Timer
	activeSubs  []events.Subscription
	activeUnsub func()
	keySubs     []events.Subscription
	modeUnsub   func()
}

// New builds the session and binds it to the inspect-mode toggle. The
// quick-activation key listener stays installed until Dispose.
func New(deps Deps) *Session {
	s := &Session{
		surface:       deps.Surface,
		dispatcher:    deps.Dispatcher,
		sched:         deps.Scheduler,
		pointer:       deps.Pointer,
		inspectMode:   deps.InspectMode,
		engine:        deps.Engine,
		cfg:           deps.Config.withDefaults(),
		log:           logger.Named("inspector"),
		overlayByNode: map[*surface.Node]*Overlay{},
		leafByOverlay: map[*surface.Node]*viewtree.Leaf{},
		expanded:      map[*viewtree.Leaf]bool{},
	}
	s.debounce = sched.NewDebouncer(s.sched, s.cfg.SyncDebounce, s.sync)

	s.layer = s.surface.NewNode("layer", "inspector-overlay")
	s.layer.Absolute = true
	s.layer.Z = LayerZ
	s.cancelHint = s.layer.Append("text", "cancel-hint")
	s.cancelHint.Absolute = true
	s.dispatcher.On(s.layer, events.Click, s.onLayerClick)

	s.detail = deps.Popups.New(popup.Options{
		ClassName:          "inspect-details",
		Position:           popup.PositionPointer,
		HideIfEventOutside: boolPtr(false),
		HideOnResize:       boolPtr(false),
		Render:             s.renderDetail,
		OnHide:             s.onDetailHidden,
	})

	s.keySubs = []events.Subscription{
		s.dispatcher.Add(events.KeyDown, s.onQuickKey),
		s.dispatcher.Add(events.KeyUp, s.onQuickKey),
	}
	s.modeUnsub = s.inspectMode.SubscribeSync(func(on bool) {
		if on {
			s.Start()
			return
		}
		s.Stop()
	})
	return s
}

func boolPtr(v bool) *bool {
	return &v
}

// Start activates the inspector. It is a no-op when already active.
func (s *Session) Start() {
	if s.active {
		return
	}
	s.active = true
	s.sessionID = uuid.NewString()
	s.log = logger.Named("inspector").WithField("session", s.sessionID)

	s.activeSubs = []events.Subscription{
		s.dispatcher.Add(events.Scroll, func(*events.Event) { s.debounce.Schedule() }),
		s.dispatcher.Add(events.KeyDown, s.onCancelKey),
	}
	s.activeUnsub = s.pointer.Subscribe(func(surface.Point) { s.debounce.Schedule() })
	s.tick = s.sched.Every(s.cfg.SyncInterval, s.debounce.Schedule)
	s.surface.Root().AppendChild(s.layer)
	s.updateCancelHint()
	s.log.Info("inspect mode on")
	s.debounce.Flush()
}

// Stop deactivates the inspector and tears down overlays, timers and
// listeners. It is a no-op when inactive.
func (s *Session) Stop() {
	if !s.active {
		return
	}
	s.active = false
	s.tick.Stop()
	s.tick = nil
	s.debounce.Cancel()
	for _, sub := range s.activeSubs {
		sub.Remove()
	}
	s.activeSubs = nil
	s.activeUnsub()
	s.activeUnsub = nil
	s.quick = false
	s.cancelHint.DeleteData("alt")
	s.layer.Remove()
	s.hide()
	s.stopHideTimer()
	s.clearOverlays()
	clear(s.expanded)
	s.sidebarScroll = 0
	if r, ok := s.engine.(interface{ Release(*surface.Node) }); ok {
		r.Release(s.detail.El())
	}
	s.log.Info("inspect mode off")
}

// Dispose stops the session and unbinds it from the host.
func (s *Session) Dispose() {
	s.Stop()
	if s.modeUnsub != nil {
		s.modeUnsub()
		s.modeUnsub = nil
	}
	for _, sub := range s.keySubs {
		sub.Remove()
	}
	s.keySubs = nil
	s.dispatcher.RemoveNode(s.layer)
	s.detail.Destroy()
}

// deactivate turns inspect mode off through the shared toggle.
func (s *Session) deactivate() {
	s.inspectMode.Set(false)
	s.Stop()
}

func (s *Session) Active() bool {
	return s.active
}

// Quick reports whether the session was started by holding the quick key.
func (s *Session) Quick() bool {
	return s.quick
}

func (s *Session) Hovered() *viewtree.Leaf {
	return s.hoverLeaf
}

func (s *Session) Selected() *viewtree.Leaf {
	return s.selected
}

func (s *Session) Layer() *surface.Node {
	return s.layer
}

func (s *Session) Detail() *popup.Popup {
	return s.detail
}

// Overlays returns the number of live overlays.
func (s *Session) Overlays() int {
	return len(s.overlayByNode)
}

// OverlayFor returns the overlay of a rendered node, if any.
func (s *Session) OverlayFor(n *surface.Node) *Overlay {
	return s.overlayByNode[n]
}

// Syncs counts completed synchronization passes.
func (s *Session) Syncs() int {
	return s.syncs
}

func (s *Session) onQuickKey(e *events.Event) {
	if e.Key != s.cfg.QuickKey {
		return
	}
	switch e.Kind {
	case events.KeyDown:
		if !s.active {
			s.inspectMode.Set(true)
			s.Start()
			s.quick = true
			s.updateCancelHint()
		}
	case events.KeyUp:
		if s.quick && s.selected == nil {
			s.deactivate()
		}
	}
}

func (s *Session) onCancelKey(e *events.Event) {
	if e.Key == s.cfg.CancelKey {
		s.deactivate()
	}
}

func (s *Session) updateCancelHint() {
	text := s.cfg.CancelKey + ": stop inspecting"
	if s.quick {
		s.cancelHint.SetData("alt", "true")
		text = "release " + s.cfg.QuickKey + " to stop, click to lock"
	} else {
		s.cancelHint.DeleteData("alt")
	}
	s.cancelHint.SetText(text)
	w, _ := s.surface.Size()
	tw, _ := surface.Natural(s.cancelHint, w)
	s.cancelHint.SetBox(surface.Rect{Left: w - tw, Width: tw, Height: 1})
}

func (s *Session) stopHideTimer() {
	if s.hideTimer != nil {
		s.hideTimer.Stop()
		s.hideTimer = nil
	}
}
