package surface

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// layoutChildren assigns boxes to the flow children of n for its current box
// and records n's content extent.
func layoutChildren(n *Node) {
	innerW, _ := n.ClientSize()
	lines := wrapText(n.text, innerW)
	cursorX, cursorY := 0, len(lines)
	contentW := textWidth(lines)
	contentH := len(lines)
	rowH := 0
	for _, c := range n.children {
		if c.Absolute {
			layoutChildren(c)
			continue
		}
		switch n.Dir {
		case Row:
			w, h := measure(c, maxInt(0, innerW-cursorX), false)
			c.Box = Rect{Top: cursorY, Left: cursorX, Width: w, Height: h}
			cursorX += w
			rowH = maxInt(rowH, h)
			contentW = maxInt(contentW, cursorX)
			contentH = maxInt(contentH, cursorY+rowH)
		default:
			w, h := measure(c, innerW, true)
			c.Box = Rect{Top: cursorY, Left: 0, Width: w, Height: h}
			cursorY += h
			contentW = maxInt(contentW, w)
			contentH = maxInt(contentH, cursorY)
		}
		layoutChildren(c)
	}
	n.contentW = contentW
	n.contentH = contentH
}

// measure sizes a flow node. Fill nodes take the available width; the others
// shrink to their natural width.
func measure(n *Node, availW int, fill bool) (int, int) {
	w := n.Width
	if w == 0 {
		if fill {
			w = availW
		} else {
			w, _ = Natural(n, availW)
		}
	}
	h := n.Height
	if h == 0 {
		inset := n.Inset()
		h = contentHeight(n, maxInt(0, w-2*inset)) + 2*inset
	}
	return w, h
}

func contentHeight(n *Node, innerW int) int {
	lines := len(wrapText(n.text, innerW))
	h := lines
	rowH := 0
	cursorX := 0
	for _, c := range n.children {
		if c.Absolute {
			continue
		}
		if n.Dir == Row {
			w, ch := measure(c, maxInt(0, innerW-cursorX), false)
			cursorX += w
			rowH = maxInt(rowH, ch)
			continue
		}
		_, ch := measure(c, innerW, true)
		h += ch
	}
	return h + rowH
}

// Natural returns the size n would take with at most maxW columns.
func Natural(n *Node, maxW int) (int, int) {
	inset := n.Inset()
	innerMax := maxInt(0, maxW-2*inset)
	w := textWidth(wrapText(n.text, innerMax))
	if n.Width > 0 {
		w = n.Width - 2*inset
	} else {
		sum := 0
		for _, c := range n.children {
			if c.Absolute {
				continue
			}
			cw, _ := Natural(c, innerMax)
			if n.Dir == Row {
				sum += cw
				continue
			}
			w = maxInt(w, cw)
		}
		w = maxInt(w, sum)
	}
	w = minInt(w+2*inset, maxInt(maxW, 0))
	h := n.Height
	if h == 0 {
		h = contentHeight(n, maxInt(0, w-2*inset)) + 2*inset
	}
	return w, h
}

func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	var out []string
	for _, raw := range strings.Split(text, "\n") {
		if width <= 0 || runewidth.StringWidth(raw) <= width {
			out = append(out, raw)
			continue
		}
		out = append(out, wrapLine(raw, width)...)
	}
	return out
}

func wrapLine(line string, width int) []string {
	var out []string
	current := ""
	for _, word := range strings.Fields(line) {
		for runewidth.StringWidth(word) > width {
			if current != "" {
				out = append(out, current)
				current = ""
			}
			head := runewidth.Truncate(word, width, "")
			if head == "" {
				head = string([]rune(word)[:1])
			}
			out = append(out, head)
			word = word[len(head):]
		}
		switch {
		case word == "":
		case current == "":
			current = word
		case runewidth.StringWidth(current)+1+runewidth.StringWidth(word) <= width:
			current += " " + word
		default:
			out = append(out, current)
			current = word
		}
	}
	if current != "" || len(out) == 0 {
		out = append(out, current)
	}
	return out
}

func textWidth(lines []string) int {
	w := 0
	for _, l := range lines {
		w = maxInt(w, runewidth.StringWidth(l))
	}
	return w
}
