package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// StatusMode 枚举状态栏左侧的模式徽标。
type StatusMode int

const (
	// StatusBrowse 表示普通浏览，未开启检查模式。
	StatusBrowse StatusMode = iota
	// StatusInspect 表示检查模式开启，悬停即显示详情。
	StatusInspect
	// StatusQuick 表示通过快捷键临时开启的检查模式。
	StatusQuick
	// StatusLocked 表示已锁定选中某个叶子。
	StatusLocked
)

func (s StatusMode) String() string {
	switch s {
	case StatusBrowse:
		return "browse"
	case StatusInspect:
		return "inspect"
	case StatusQuick:
		return "quick"
	case StatusLocked:
		return "locked"
	default:
		return "unknown"
	}
}

func (s StatusMode) badge() string {
	return " " + strings.ToUpper(s.String()) + " "
}

var (
	modeStyles = map[StatusMode]lipgloss.Style{
		StatusBrowse:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color(colorMuted)),
		StatusInspect: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color(colorAccent)).Bold(true),
		StatusQuick:   lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color(colorWarn)).Bold(true),
		StatusLocked:  lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color(colorLink)).Bold(true),
	}
	faintStyle = lipgloss.NewStyle().Faint(true)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E06C75"))
)

// statusBar 是单行状态栏：模式徽标 + 面包屑 + 右侧提示。
type statusBar struct {
	mode   StatusMode
	crumbs string
	note   string
	err    bool
}

// render 在给定宽度内绘制状态栏，超宽时优先截断面包屑。
func (b statusBar) render(width int) string {
	if width <= 0 {
		return ""
	}
	badge := b.mode.badge()
	note := b.note
	badgeW := runewidth.StringWidth(badge)
	noteW := runewidth.StringWidth(note)
	if badgeW+noteW+1 > width {
		note = truncateToWidth(note, max(width-badgeW-1, 0))
		noteW = runewidth.StringWidth(note)
	}
	room := width - badgeW - noteW - 2
	crumbs := ""
	if room > 0 {
		crumbs = truncateToWidth(b.crumbs, room)
	}
	gap := width - badgeW - 1 - runewidth.StringWidth(crumbs) - noteW
	if gap < 0 {
		gap = 0
	}

	noteStyle := faintStyle
	if b.err {
		noteStyle = errStyle
	}
	return modeStyles[b.mode].Render(badge) + " " + crumbs + strings.Repeat(" ", gap) + noteStyle.Render(note)
}

// truncateToWidth 按显示宽度截断，宽字符不会被拆开。
func truncateToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	w := 0
	out := make([]rune, 0, len(text))
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if w+rw > width-1 {
			break
		}
		out = append(out, r)
		w += rw
	}
	return string(out) + "…"
}
