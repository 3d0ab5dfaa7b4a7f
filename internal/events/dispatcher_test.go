package events

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"viewscope/internal/surface"
)

func TestDispatchHostListenersThenBubble(t *testing.T) {
	s := surface.New(10, 10)
	outer := s.Root().AppendChild(s.NewNode("block"))
	inner := outer.AppendChild(s.NewNode("text"))

	d := NewDispatcher()
	var got []string
	d.On(outer, Click, func(*Event) { got = append(got, "outer") })
	d.On(inner, Click, func(*Event) { got = append(got, "inner") })
	d.Add(Click, func(*Event) { got = append(got, "host") })
	d.Add(Scroll, func(*Event) { got = append(got, "scroll") })

	d.Dispatch(&Event{Kind: Click, Target: inner})
	if diff := cmp.Diff([]string{"host", "inner", "outer"}, got); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
}

func TestStopPropagation(t *testing.T) {
	s := surface.New(10, 10)
	n := s.Root().AppendChild(s.NewNode("button"))

	d := NewDispatcher()
	reached := false
	d.Add(Click, func(e *Event) { e.StopPropagation() })
	d.On(n, Click, func(*Event) { reached = true })

	e := &Event{Kind: Click, Target: n}
	d.Dispatch(e)
	if reached || !e.Stopped() {
		t.Fatalf("stopped event reached node listener")
	}
}

func TestRemoveDuringDispatchUsesSnapshot(t *testing.T) {
	d := NewDispatcher()
	var got []string
	var second Subscription
	d.Add(Click, func(*Event) {
		got = append(got, "first")
		second.Remove()
		d.Add(Click, func(*Event) { got = append(got, "late") })
	})
	second = d.Add(Click, func(*Event) { got = append(got, "second") })
	d.Add(Click, func(*Event) { got = append(got, "third") })

	d.Dispatch(&Event{Kind: Click})
	if diff := cmp.Diff([]string{"first", "third"}, got); diff != "" {
		t.Fatalf("order (-want +got):\n%s", diff)
	}
}

func TestAddRemoveAccounting(t *testing.T) {
	s := surface.New(10, 10)
	n := s.Root().AppendChild(s.NewNode("block"))
	child := n.AppendChild(s.NewNode("text"))

	d := NewDispatcher()
	sub := d.Add(KeyDown, func(*Event) {})
	d.On(n, Click, func(*Event) {})
	d.On(child, Click, func(*Event) {})

	sub.Remove()
	sub.Remove()
	d.RemoveNode(n)

	if d.Count() != 0 {
		t.Fatalf("Count = %d, want 0", d.Count())
	}
	added, removed := d.Stats()
	if added != 3 || removed != 3 {
		t.Fatalf("stats = %d/%d, want 3/3", added, removed)
	}
}

func TestValueSubscribe(t *testing.T) {
	v := NewValue(false)
	var got []bool
	unsubscribe := v.SubscribeSync(func(b bool) { got = append(got, b) })

	if v.Set(false) {
		t.Fatalf("Set with the same value should not notify")
	}
	v.Set(true)
	unsubscribe()
	unsubscribe()
	v.Set(false)

	if diff := cmp.Diff([]bool{false, true}, got); diff != "" {
		t.Fatalf("notifications (-want +got):\n%s", diff)
	}
	if v.Subscribers() != 0 {
		t.Fatalf("Subscribers = %d, want 0", v.Subscribers())
	}
}
