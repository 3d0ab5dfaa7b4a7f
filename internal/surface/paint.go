package surface

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Style is the comparable subset of cell styling the painter understands.
type Style struct {
	Fg        string
	Bg        string
	Bold      bool
	Faint     bool
	Underline bool
	Reverse   bool
}

func (s Style) lipgloss() lipgloss.Style {
	st := lipgloss.NewStyle().Bold(s.Bold).Faint(s.Faint).Underline(s.Underline).Reverse(s.Reverse)
	if s.Fg != "" {
		st = st.Foreground(lipgloss.Color(s.Fg))
	}
	if s.Bg != "" {
		st = st.Background(lipgloss.Color(s.Bg))
	}
	return st
}

// Look describes how one node is painted.
type Look struct {
	Style Style
	// Fill paints the node's whole box with the style background.
	Fill bool
	// Tint only recolours the background of cells already painted.
	Tint string
	// Hidden skips the node and its subtree.
	Hidden bool
}

// Theme decides the look of every node.
type Theme func(n *Node) Look

type cell struct {
	r     rune
	style Style
	cont  bool
}

// Paint renders the visible surface into a styled string, one line per row.
func (s *Surface) Paint(theme Theme) string {
	s.ensureLayout()
	w, h := s.Size()
	if w <= 0 || h <= 0 {
		return ""
	}
	grid := make([][]cell, h)
	for y := range grid {
		grid[y] = make([]cell, w)
		for x := range grid[y] {
			grid[y][x] = cell{r: ' '}
		}
	}
	paintNode(grid, s.root, s.Viewport(), theme)

	var b strings.Builder
	for y, row := range grid {
		if y > 0 {
			b.WriteByte('\n')
		}
		var run strings.Builder
		current := row[0].style
		for _, c := range row {
			if c.cont {
				continue
			}
			if c.style != current {
				b.WriteString(renderRun(current, run.String()))
				run.Reset()
				current = c.style
			}
			run.WriteRune(c.r)
		}
		b.WriteString(renderRun(current, run.String()))
	}
	return b.String()
}

func renderRun(st Style, text string) string {
	if text == "" {
		return ""
	}
	if st == (Style{}) {
		return text
	}
	return st.lipgloss().Render(text)
}

func paintNode(grid [][]cell, n *Node, clip Rect, theme Theme) {
	look := Look{}
	if theme != nil {
		look = theme(n)
	}
	if look.Hidden {
		return
	}
	r := n.AbsRect()
	visible := r.Intersect(clip)
	if look.Fill && !visible.Empty() {
		fillRect(grid, visible, look.Style)
	}
	if look.Tint != "" && !visible.Empty() {
		tintRect(grid, visible, look.Tint)
	}
	if n.Border {
		drawBorder(grid, r, clip, look.Style)
	}
	if n.text != "" {
		inner := n.clientAbsRect()
		textClip := clip.Intersect(inner)
		ox, oy := n.contentOrigin()
		for i, line := range wrapText(n.text, inner.Width) {
			putString(grid, ox, oy+i, line, textClip, look.Style)
		}
	}
	childClip := clip
	if n.Overflow != OverflowVisible {
		childClip = clip.Intersect(n.clientAbsRect())
	}
	for _, c := range paintOrder(n.children) {
		paintNode(grid, c, childClip, theme)
	}
}

func fillRect(grid [][]cell, r Rect, st Style) {
	for y := r.Top; y < r.Bottom(); y++ {
		for x := r.Left; x < r.Right(); x++ {
			grid[y][x] = cell{r: ' ', style: st}
		}
	}
}

func tintRect(grid [][]cell, r Rect, bg string) {
	for y := r.Top; y < r.Bottom(); y++ {
		for x := r.Left; x < r.Right(); x++ {
			grid[y][x].style.Bg = bg
		}
	}
}

func drawBorder(grid [][]cell, r Rect, clip Rect, st Style) {
	if r.Width < 2 || r.Height < 2 {
		return
	}
	put := func(x, y int, ch rune) {
		if clip.Contains(x, y) {
			grid[y][x] = cell{r: ch, style: st}
		}
	}
	right, bottom := r.Right()-1, r.Bottom()-1
	for x := r.Left + 1; x < right; x++ {
		put(x, r.Top, '─')
		put(x, bottom, '─')
	}
	for y := r.Top + 1; y < bottom; y++ {
		put(r.Left, y, '│')
		put(right, y, '│')
	}
	put(r.Left, r.Top, '╭')
	put(right, r.Top, '╮')
	put(r.Left, bottom, '╰')
	put(right, bottom, '╯')
}

func putString(grid [][]cell, x, y int, text string, clip Rect, st Style) {
	for _, ch := range text {
		w := runewidth.RuneWidth(ch)
		if w == 0 {
			continue
		}
		if clip.Contains(x, y) && (w == 1 || clip.Contains(x+1, y)) {
			grid[y][x] = cell{r: ch, style: st}
			if w == 2 {
				grid[y][x+1] = cell{cont: true, style: st}
			}
		}
		x += w
	}
}
