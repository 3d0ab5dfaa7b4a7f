package surface

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func buildColumn(t *testing.T) (*Surface, *Node, *Node, *Node) {
	t.Helper()
	s := New(40, 10)
	panel := s.NewNode("block", "panel")
	panel.Border = true
	first := s.NewNode("text")
	first.SetText("first")
	second := s.NewNode("text")
	second.SetText("second")
	panel.AppendChild(first)
	panel.AppendChild(second)
	s.Root().AppendChild(panel)
	return s, panel, first, second
}

func TestLayoutColumnFlow(t *testing.T) {
	_, panel, first, second := buildColumn(t)

	if diff := cmp.Diff(Rect{Width: 40, Height: 4}, panel.AbsRect()); diff != "" {
		t.Fatalf("panel rect mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Rect{Top: 1, Left: 1, Width: 38, Height: 1}, first.AbsRect()); diff != "" {
		t.Fatalf("first rect mismatch (-want +got):\n%s", diff)
	}
	if got := second.AbsRect().Top; got != 2 {
		t.Fatalf("second top = %d, want 2", got)
	}
}

func TestLayoutRowShrinksToContent(t *testing.T) {
	s := New(40, 5)
	row := s.NewNode("row")
	row.Dir = Row
	a := s.NewNode("badge")
	a.SetText("abc")
	b := s.NewNode("badge")
	b.SetText("de")
	row.AppendChild(a)
	row.AppendChild(b)
	s.Root().AppendChild(row)

	if diff := cmp.Diff(Rect{Top: 0, Left: 3, Width: 2, Height: 1}, b.AbsRect()); diff != "" {
		t.Fatalf("second badge rect mismatch (-want +got):\n%s", diff)
	}
}

func TestTextWrapsToWidth(t *testing.T) {
	s := New(10, 5)
	n := s.NewNode("text")
	n.SetText("hello brave new world")
	s.Root().AppendChild(n)
	if got := n.AbsRect().Height; got != 3 {
		t.Fatalf("wrapped height = %d, want 3", got)
	}
}

func TestScrollClampsAndShiftsChildren(t *testing.T) {
	s := New(20, 10)
	scroller := s.NewNode("scroll")
	scroller.Height = 3
	scroller.Overflow = OverflowScroll
	for i := 0; i < 6; i++ {
		line := s.NewNode("text")
		line.SetText("line")
		scroller.AppendChild(line)
	}
	s.Root().AppendChild(scroller)

	if !scroller.Scrollable() {
		t.Fatalf("expected scroller to be scrollable")
	}
	scroller.ScrollTo(0, 99)
	if scroller.ScrollTop != 3 {
		t.Fatalf("ScrollTop = %d, want clamp to 3", scroller.ScrollTop)
	}
	last := scroller.Children()[5]
	if got := last.AbsRect().Top; got != 2 {
		t.Fatalf("last line top = %d, want 2", got)
	}
}

func TestElementsFromPointTopmostFirstAndClipped(t *testing.T) {
	s, panel, first, _ := buildColumn(t)

	hits := s.ElementsFromPoint(2, 1)
	want := []*Node{first, panel, s.Root()}
	if len(hits) != len(want) {
		t.Fatalf("hits = %d, want %d", len(hits), len(want))
	}
	for i := range want {
		if hits[i] != want[i] {
			t.Fatalf("hit %d = %s#%d, want %s#%d", i, hits[i].Kind, hits[i].ID, want[i].Kind, want[i].ID)
		}
	}

	panel.Overflow = OverflowHidden
	panel.Height = 2
	panel.Invalidate()
	for _, n := range s.ElementsFromPoint(2, 2) {
		if n.Kind == "text" {
			t.Fatalf("clipped text node must not be hit")
		}
	}
}

func TestElementsFromPointHonoursZAndTransparency(t *testing.T) {
	s := New(10, 5)
	low := s.NewNode("layer")
	low.Absolute = true
	low.Z = 1
	low.SetBox(Rect{Width: 10, Height: 5})
	high := s.NewNode("layer")
	high.Absolute = true
	high.Z = 5
	high.SetBox(Rect{Width: 10, Height: 5})
	s.Root().AppendChild(high)
	s.Root().AppendChild(low)

	if hits := s.ElementsFromPoint(1, 1); hits[0] != high {
		t.Fatalf("expected higher Z layer first")
	}
	high.Transparent = true
	if hits := s.ElementsFromPoint(1, 1); hits[0] != low {
		t.Fatalf("transparent layer must be skipped")
	}
}

func TestAttachedAndContains(t *testing.T) {
	s, panel, first, _ := buildColumn(t)
	if !s.Contains(panel, first) || s.Contains(first, panel) {
		t.Fatalf("containment mismatch")
	}
	first.Remove()
	if s.Attached(first) {
		t.Fatalf("removed node must be detached")
	}
	if !s.Attached(panel) {
		t.Fatalf("panel must stay attached")
	}
}

func TestSelectorMatching(t *testing.T) {
	s := New(10, 5)
	item := s.NewNode("item", "hint", "wide")
	item.SetData("kind", "user")
	inner := s.NewNode("text")
	item.AppendChild(inner)

	cases := []struct {
		sel  string
		want bool
	}{
		{"item", true},
		{".hint", true},
		{"item.hint.wide", true},
		{"[kind]", true},
		{"[data-kind=user]", true},
		{"[kind='admin']", false},
		{"row, .hint", true},
		{"*", true},
		{"text.hint", false},
	}
	for _, tc := range cases {
		t.Run(tc.sel, func(t *testing.T) {
			sel, err := ParseSelector(tc.sel)
			if err != nil {
				t.Fatalf("ParseSelector(%q): %v", tc.sel, err)
			}
			if got := sel.Match(item); got != tc.want {
				t.Fatalf("Match(%q) = %v, want %v", tc.sel, got, tc.want)
			}
		})
	}

	if got := MustParseSelector(".hint").Closest(inner); got != item {
		t.Fatalf("Closest should climb to the hint item")
	}
}

func TestSelectorRejectsInvalidInput(t *testing.T) {
	for _, src := range []string{"", "a b", ".", "[=x]", "[open"} {
		if _, err := ParseSelector(src); err == nil {
			t.Fatalf("ParseSelector(%q) expected error", src)
		}
	}
}

func TestPaintDrawsTextAndBorder(t *testing.T) {
	s, _, _, _ := buildColumn(t)
	out := s.Paint(nil)
	lines := strings.Split(out, "\n")
	if len(lines) != 10 {
		t.Fatalf("painted %d lines, want 10", len(lines))
	}
	if !strings.HasPrefix(lines[0], "╭") {
		t.Fatalf("expected border corner, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "first") || !strings.Contains(lines[2], "second") {
		t.Fatalf("missing text in %q / %q", lines[1], lines[2])
	}
}
