package popup

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"viewscope/internal/events"
	"viewscope/internal/placement"
	"viewscope/internal/sched"
	"viewscope/internal/surface"
)

type harness struct {
	s       *surface.Surface
	d       *events.Dispatcher
	loop    *sched.Loop
	pointer *events.Value[surface.Point]
	inspect *events.Value[bool]
	reg     *Registry
	content *surface.Node
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		s:       surface.New(80, 24),
		d:       events.NewDispatcher(),
		loop:    sched.NewLoop(),
		pointer: events.NewValue(surface.Point{}),
		inspect: events.NewValue(false),
	}
	h.content = h.s.Root().Append("block", "content")
	h.reg = NewRegistry(Deps{
		Surface:     h.s,
		Dispatcher:  h.d,
		Scheduler:   h.loop,
		Pointer:     h.pointer,
		InspectMode: h.inspect,
	})
	t.Cleanup(h.reg.Dispose)
	return h
}

func (h *harness) trigger(text string, classes ...string) *surface.Node {
	n := h.content.Append("button", classes...)
	n.SetText(text)
	return n
}

func (h *harness) dispatch(kind events.Kind, target *surface.Node) *events.Event {
	e := &events.Event{Kind: kind, Target: target}
	h.d.Dispatch(e)
	h.loop.RunMicrotasks()
	return e
}

func textRender(text string) RenderFunc {
	return func(body, _ *surface.Node, _ func()) error {
		body.Append("text").SetText(text)
		return nil
	}
}

func assertOpen(t *testing.T, h *harness, want ...*Popup) {
	t.Helper()
	got := h.reg.Open()
	if len(got) != len(want) {
		t.Fatalf("open list has %d popups, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("open[%d] = %s, want %s", i, got[i].ID(), want[i].ID())
		}
	}
}

func TestVisibleMatchesOpenList(t *testing.T) {
	h := newHarness(t)
	p := h.reg.New(Options{Render: textRender("hello")})
	trig := h.trigger("T")

	steps := []struct {
		name string
		op   func() error
		want bool
	}{
		{"show", func() error { return p.Show(trig) }, true},
		{"show again", func() error { return p.Show(trig) }, true},
		{"hide", func() error { p.Hide(); return nil }, false},
		{"hide again", func() error { p.Hide(); return nil }, false},
		{"toggle on", func() error { return p.Toggle(trig) }, true},
		{"toggle off", func() error { return p.Toggle(trig) }, false},
	}
	for _, step := range steps {
		if err := step.op(); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		inList := len(h.reg.Open()) == 1 && h.reg.Open()[0] == p
		if p.Visible() != step.want || inList != step.want {
			t.Fatalf("%s: visible=%v inList=%v, want %v", step.name, p.Visible(), inList, step.want)
		}
		if h.s.Attached(p.El()) != step.want {
			t.Fatalf("%s: panel attached=%v, want %v", step.name, h.s.Attached(p.El()), step.want)
		}
	}
}

func TestShowMarksTriggerAndPlacesPanel(t *testing.T) {
	h := newHarness(t)
	p := h.reg.New(Options{ClassName: "hint", Render: textRender("hello")})
	first := h.trigger("first")
	second := h.trigger("second")

	if err := p.Show(first); err != nil {
		t.Fatalf("show: %v", err)
	}
	if !first.HasClass(ActiveClass) {
		t.Fatalf("trigger should carry %q", ActiveClass)
	}
	want := surface.Rect{Top: 1, Left: 0, Width: 7, Height: 3}
	if diff := cmp.Diff(want, p.El().Box); diff != "" {
		t.Fatalf("panel box (-want +got):\n%s", diff)
	}
	if v, _ := p.El().Data("vTo"); v != "bottom" {
		t.Fatalf("vTo = %q, want bottom", v)
	}
	if !p.El().HasClass("hint") {
		t.Fatalf("class name not applied")
	}

	if err := p.Show(second); err != nil {
		t.Fatalf("show second: %v", err)
	}
	if first.HasClass(ActiveClass) || !second.HasClass(ActiveClass) {
		t.Fatalf("active marker should move to the new trigger")
	}
	if got := len(p.El().Children()); got != 1 {
		t.Fatalf("show should re-render into a cleared body, got %d children", got)
	}

	p.Hide()
	if second.HasClass(ActiveClass) || p.Trigger() != nil {
		t.Fatalf("hide should clear the trigger marker")
	}
}

func TestUpdatePositionIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.content.Append("block").Height = 20
	trig := h.trigger("bottom")
	p := h.reg.New(Options{Render: textRender("hello")})
	if err := p.Show(trig); err != nil {
		t.Fatalf("show: %v", err)
	}
	first, firstPlacement := p.El().Box, p.Placement()
	p.UpdatePosition()
	if diff := cmp.Diff(first, p.El().Box); diff != "" {
		t.Fatalf("box moved (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(firstPlacement, p.Placement()); diff != "" {
		t.Fatalf("placement changed (-first +second):\n%s", diff)
	}
	if got := p.Placement().VTo; got != placement.VTop {
		t.Fatalf("placement VTo = %q, want top for a trigger near the bottom", got)
	}
	if v, _ := p.El().Data("vTo"); v != "top" {
		t.Fatalf("vTo = %q, want top for a trigger near the bottom", v)
	}
	if p.El().Box.Bottom() != 20 {
		t.Fatalf("panel bottom = %d, want 20", p.El().Box.Bottom())
	}
}

func TestHideClosesRelatedPopupsFirst(t *testing.T) {
	h := newHarness(t)
	t1 := h.trigger("T1")
	var t2 *surface.Node
	var closed []string
	parentOpenWhenChildClosed := false

	a := h.reg.New(Options{
		Render: func(body, _ *surface.Node, _ func()) error {
			t2 = body.Append("button")
			t2.SetText("T2")
			return nil
		},
		OnHide: func() { closed = append(closed, "A") },
	})
	b := h.reg.New(Options{
		Render: textRender("nested"),
		OnHide: func() {
			closed = append(closed, "B")
			parentOpenWhenChildClosed = a.Visible()
		},
	})
	c := h.reg.New(Options{Render: textRender("other")})

	if err := a.Show(t1); err != nil {
		t.Fatalf("show A: %v", err)
	}
	if err := b.Show(t2); err != nil {
		t.Fatalf("show B: %v", err)
	}
	if err := c.Show(h.trigger("T3")); err != nil {
		t.Fatalf("show C: %v", err)
	}
	assertOpen(t, h, a, b, c)
	if diff := cmp.Diff([]string{b.ID()}, ids(a.RelatedPopups())); diff != "" {
		t.Fatalf("related popups (-want +got):\n%s", diff)
	}

	a.Hide()
	if b.Visible() || a.Visible() {
		t.Fatalf("A and B should be hidden")
	}
	if diff := cmp.Diff([]string{"B", "A"}, closed); diff != "" {
		t.Fatalf("close order (-want +got):\n%s", diff)
	}
	if !parentOpenWhenChildClosed {
		t.Fatalf("A should still be open while B closes")
	}
	if len(a.RelatedPopups()) != 0 {
		t.Fatalf("hidden popup still has related popups")
	}
	assertOpen(t, h, c)
	c.Hide()
	assertOpen(t, h)
}

func TestRelatedPopupsFollowParent(t *testing.T) {
	h := newHarness(t)
	t1 := h.trigger("T1")
	var t2 *surface.Node
	a := h.reg.New(Options{Position: PositionPointer, Render: func(body, _ *surface.Node, _ func()) error {
		t2 = body.Append("button")
		t2.SetText("T2")
		return nil
	}})
	b := h.reg.New(Options{Render: textRender("nested")})
	if err := a.Show(t1); err != nil {
		t.Fatalf("show A: %v", err)
	}
	if err := b.Show(t2); err != nil {
		t.Fatalf("show B: %v", err)
	}
	before := b.El().Box
	h.pointer.Set(surface.Point{X: 30, Y: 10})
	if b.El().Box == before {
		t.Fatalf("nested popup did not follow its moving parent")
	}
	if b.El().Box.Top != t2.AbsRect().Bottom() {
		t.Fatalf("nested popup top = %d, want %d", b.El().Box.Top, t2.AbsRect().Bottom())
	}
}

func TestRenderErrorPropagates(t *testing.T) {
	h := newHarness(t)
	boom := errors.New("boom")
	p := h.reg.New(Options{Render: func(body, _ *surface.Node, _ func()) error {
		body.Append("text").SetText("partial")
		return boom
	}})
	err := p.Show(h.trigger("T"))
	if !errors.Is(err, boom) {
		t.Fatalf("Show error = %v, want boom", err)
	}
	if p.Visible() {
		t.Fatalf("failed render must not leave the popup open")
	}
	if len(p.El().Children()) != 0 {
		t.Fatalf("failed render must not leave partial content")
	}
}

func TestRenderErrorClosesLockedPopup(t *testing.T) {
	h := newHarness(t)
	boom := errors.New("boom")
	fail := false
	p := h.reg.New(Options{Render: func(body, _ *surface.Node, _ func()) error {
		body.Append("text").SetText("content")
		if fail {
			return boom
		}
		return nil
	}})
	trig := h.trigger("T")
	if err := p.Show(trig); err != nil {
		t.Fatalf("show: %v", err)
	}
	h.inspect.Set(true)
	if !h.reg.Locked(p) {
		t.Fatalf("inspect mode should lock the open popup")
	}

	fail = true
	if err := p.Show(trig); !errors.Is(err, boom) {
		t.Fatalf("Show error = %v, want boom", err)
	}
	if p.Visible() || len(p.El().Children()) != 0 {
		t.Fatalf("failed render must close the locked popup, visible=%v children=%d", p.Visible(), len(p.El().Children()))
	}
	if h.reg.Locked(p) {
		t.Fatalf("closed popup should drop its lock")
	}
	assertOpen(t, h)
}

func TestShowHidesRelatedOnlyWhenHoverConfigured(t *testing.T) {
	cases := []struct {
		name       string
		hover      string
		wantNested bool
	}{
		{name: "click popup keeps nested", hover: "", wantNested: true},
		{name: "hover popup hides nested", hover: ".t1", wantNested: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			t1 := h.trigger("T1", "t1")
			var t2 *surface.Node
			a := h.reg.New(Options{HoverTriggers: tc.hover, Render: func(body, _ *surface.Node, _ func()) error {
				t2 = body.Append("button")
				t2.SetText("T2")
				return nil
			}})
			b := h.reg.New(Options{Render: textRender("nested")})
			if err := a.Show(t1); err != nil {
				t.Fatalf("show A: %v", err)
			}
			if err := b.Show(t2); err != nil {
				t.Fatalf("show B: %v", err)
			}

			// showing again without re-rendering keeps T2 attached
			if err := a.ShowWith(t1, nil); err != nil {
				t.Fatalf("show A again: %v", err)
			}
			if got := b.Visible(); got != tc.wantNested {
				t.Fatalf("nested popup visible = %v, want %v", got, tc.wantNested)
			}
		})
	}
}

func TestInvalidOptionsAreCoerced(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()
	h := newHarness(t)

	p := h.reg.New(Options{HoverTriggers: ".hint", HoverPin: "sticky"})
	if p.Options().HoverPin != PinNone {
		t.Fatalf("HoverPin = %q, want none", p.Options().HoverPin)
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel || entry.Data["value"] != "sticky" {
		t.Fatalf("expected a warning about the pin mode, got %+v", entry)
	}
	if v, _ := p.El().Data("pin-mode"); v != "none" {
		t.Fatalf("pin-mode = %q, want none", v)
	}

	q := h.reg.New(Options{HoverTriggers: "[data-x=", Render: textRender("x")})
	if q.hoverConfigured() {
		t.Fatalf("invalid selector should disable hover activation")
	}
	if hook.LastEntry().Data["option"] != "hoverTriggers" {
		t.Fatalf("expected a warning about hoverTriggers, got %+v", hook.LastEntry())
	}
}

func TestHoverShowAndDelayedHide(t *testing.T) {
	h := newHarness(t)
	p := h.reg.New(Options{HoverTriggers: ".hint", Render: textRender("tip")})
	trig := h.trigger("hover me", "hint")
	label := trig.Append("text")

	h.dispatch(events.PointerEnter, label)
	if !p.Visible() || p.Trigger() != trig {
		t.Fatalf("hover should show the popup anchored to the matching ancestor")
	}
	if !p.El().Transparent || !p.El().HasClass("show-on-hover") {
		t.Fatalf("unpinnable hover panel should be transparent and marked show-on-hover")
	}

	h.dispatch(events.PointerLeave, trig)
	h.loop.Advance(50 * time.Millisecond)
	h.dispatch(events.PointerEnter, trig)
	h.loop.Advance(200 * time.Millisecond)
	if !p.Visible() {
		t.Fatalf("re-entering within the delay should cancel the hide")
	}

	h.dispatch(events.PointerLeave, trig)
	h.loop.Advance(99 * time.Millisecond)
	if !p.Visible() {
		t.Fatalf("popup hid before the delay elapsed")
	}
	h.loop.Advance(time.Millisecond)
	if p.Visible() {
		t.Fatalf("popup should hide 100ms after the pointer left")
	}
}

func TestPopupHoverKeepsPanelOpen(t *testing.T) {
	h := newHarness(t)
	p := h.reg.New(Options{HoverTriggers: ".hint", HoverPin: PinPopupHover, Render: textRender("tip")})
	trig := h.trigger("hover me", "hint")

	h.dispatch(events.PointerEnter, trig)
	if p.El().Transparent {
		t.Fatalf("popup-hover panel must receive the pointer")
	}
	h.dispatch(events.PointerLeave, trig)
	h.loop.Advance(40 * time.Millisecond)
	h.dispatch(events.PointerEnter, p.El().Children()[0])
	h.loop.Advance(time.Second)
	if !p.Visible() {
		t.Fatalf("pointer over the panel should keep it open")
	}
	if p.Trigger() != trig {
		t.Fatalf("hovering the panel must not re-anchor it")
	}

	h.dispatch(events.PointerLeave, p.El())
	h.loop.Advance(100 * time.Millisecond)
	if p.Visible() {
		t.Fatalf("leaving the panel should hide it after the delay")
	}
}

func TestTriggerClickPins(t *testing.T) {
	h := newHarness(t)
	p := h.reg.New(Options{HoverTriggers: ".hint", HoverPin: PinTriggerClick, Render: textRender("tip")})
	trig := h.trigger("hover me", "hint")
	outside := h.trigger("elsewhere")

	h.dispatch(events.PointerEnter, trig)
	e := h.dispatch(events.Click, trig)
	if !e.Stopped() {
		t.Fatalf("pinning click should stop propagation")
	}
	if !p.HoverPinned() || !p.El().HasClass("pinned") {
		t.Fatalf("click on the trigger should pin the popup")
	}

	h.dispatch(events.PointerLeave, trig)
	h.loop.Advance(time.Second)
	if !p.Visible() {
		t.Fatalf("pinned popup should survive the pointer leaving")
	}

	h.dispatch(events.Click, outside)
	if p.Visible() {
		t.Fatalf("outside click should dismiss a pinned popup")
	}
	if p.HoverPinned() {
		t.Fatalf("pin should be cleared on hide")
	}
}

func TestOutsideInteractionDismisses(t *testing.T) {
	h := newHarness(t)
	keep := false
	trig := h.trigger("T")
	outside := h.trigger("O")
	p := h.reg.New(Options{Render: textRender("a")})
	sticky := h.reg.New(Options{HideIfEventOutside: &keep, Render: textRender("b")})

	for _, q := range []*Popup{p, sticky} {
		if err := q.Show(trig); err != nil {
			t.Fatalf("show: %v", err)
		}
	}

	h.dispatch(events.Click, p.El().Children()[0])
	h.dispatch(events.Click, trig)
	if !p.Visible() {
		t.Fatalf("clicks inside the panel or on the trigger must not dismiss")
	}

	h.dispatch(events.Scroll, outside)
	if p.Visible() {
		t.Fatalf("outside scroll should dismiss")
	}
	if !sticky.Visible() {
		t.Fatalf("HideIfEventOutside=false should keep the popup open")
	}
}

func TestDetachedTriggerHidesAfterClick(t *testing.T) {
	h := newHarness(t)
	trig := h.trigger("T")
	p := h.reg.New(Options{Render: textRender("a")})
	if err := p.Show(trig); err != nil {
		t.Fatalf("show: %v", err)
	}
	trig.Remove()
	if !p.Visible() {
		t.Fatalf("detachment alone does not hide")
	}
	h.dispatch(events.Click, p.El())
	if p.Visible() {
		t.Fatalf("popup with a detached trigger should hide after a click")
	}
}

func TestResizeListenerLifecycle(t *testing.T) {
	h := newHarness(t)
	keep := false
	p := h.reg.New(Options{Render: textRender("a")})
	q := h.reg.New(Options{HideOnResize: &keep, Render: textRender("b")})

	if h.d.Count() != 0 {
		t.Fatalf("no listeners expected before the first show, got %d", h.d.Count())
	}
	if err := p.Show(h.trigger("T")); err != nil {
		t.Fatalf("show: %v", err)
	}
	if err := q.Show(h.trigger("U")); err != nil {
		t.Fatalf("show: %v", err)
	}
	h.dispatch(events.Resize, nil)
	if p.Visible() || !q.Visible() {
		t.Fatalf("resize should hide only popups with HideOnResize")
	}
	q.Hide()
	if h.d.Count() != 0 {
		t.Fatalf("listeners left after the list emptied: %d", h.d.Count())
	}
	added, removed := h.d.Stats()
	if added != removed {
		t.Fatalf("unbalanced listeners: added %d removed %d", added, removed)
	}
}

func TestInspectModeLocksOpenPopups(t *testing.T) {
	h := newHarness(t)
	p := h.reg.New(Options{Render: textRender("a")})
	if err := p.Show(h.trigger("T")); err != nil {
		t.Fatalf("show: %v", err)
	}
	h.inspect.Set(true)
	p.Hide()
	h.dispatch(events.Resize, nil)
	if !p.Visible() {
		t.Fatalf("locked popup should ignore dismissal")
	}
	if err := p.Show(h.trigger("U")); err != nil {
		t.Fatalf("show: %v", err)
	}
	if !p.El().HasClass("inspect") {
		t.Fatalf("panel shown in inspect mode should carry the inspect class")
	}
	h.inspect.Set(false)
	p.Hide()
	if p.Visible() {
		t.Fatalf("popup should hide once inspect mode is off")
	}
}

func TestPointerPopupFollowsPointerUnlessFrozen(t *testing.T) {
	h := newHarness(t)
	p := h.reg.New(Options{Position: PositionPointer, Render: textRender("a")})
	h.pointer.Set(surface.Point{X: 10, Y: 5})
	if err := p.Show(nil); err != nil {
		t.Fatalf("show: %v", err)
	}
	if got := p.El().Box; got.Left != 13 || got.Top != 8 {
		t.Fatalf("box = %+v, want left 13 top 8", got)
	}

	h.pointer.Set(surface.Point{X: 20, Y: 6})
	if got := p.El().Box; got.Left != 23 || got.Top != 9 {
		t.Fatalf("box = %+v, want left 23 top 9", got)
	}

	p.Freeze()
	h.pointer.Set(surface.Point{X: 40, Y: 2})
	if got := p.El().Box; got.Left != 23 {
		t.Fatalf("frozen popup moved to %+v", got)
	}
	p.Unfreeze()
	if got := p.El().Box; got.Left != 43 || got.Top != 5 {
		t.Fatalf("unfreeze should reposition, got %+v", got)
	}
}

func TestDestroyReleasesSharedListeners(t *testing.T) {
	h := newHarness(t)
	a := h.reg.New(Options{HoverTriggers: ".hint", Render: textRender("a")})
	b := h.reg.New(Options{HoverTriggers: ".hint", Render: textRender("b")})
	if h.d.Count() == 0 {
		t.Fatalf("hover popups should install shared listeners")
	}
	a.Destroy()
	if h.d.Count() == 0 {
		t.Fatalf("shared listeners removed while a hover popup remains")
	}
	b.Destroy()
	b.Destroy()
	if h.d.Count() != 0 {
		t.Fatalf("listeners left after the last hover popup: %d", h.d.Count())
	}
	if err := a.Show(nil); !errors.Is(err, ErrDestroyed) {
		t.Fatalf("Show after Destroy = %v, want ErrDestroyed", err)
	}
}

func TestDisposeHidesLockedPopups(t *testing.T) {
	h := newHarness(t)
	p := h.reg.New(Options{HoverTriggers: ".hint", Render: textRender("a")})
	if err := p.Show(h.trigger("T", "hint")); err != nil {
		t.Fatalf("show: %v", err)
	}
	h.inspect.Set(true)

	h.reg.Dispose()
	if p.Visible() {
		t.Fatalf("dispose should hide locked popups")
	}
	if h.d.Count() != 0 {
		t.Fatalf("dispose left %d listeners", h.d.Count())
	}
	if h.inspect.Subscribers() != 0 || h.pointer.Subscribers() != 0 {
		t.Fatalf("dispose left value subscriptions")
	}
	if h.s.Attached(h.reg.Layer()) {
		t.Fatalf("popup layer still attached")
	}
}

func ids(ps []*Popup) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID())
	}
	return out
}
