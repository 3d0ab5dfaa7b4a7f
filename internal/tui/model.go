package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"viewscope/internal/host"
	"viewscope/internal/layoutfile"
	"viewscope/internal/logger"
	"viewscope/internal/sched"
	"viewscope/internal/surface"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MountName 是布局文件挂载到宿主时使用的视图根名称。
const MountName = "main"

// chromeHeight 是状态栏与帮助行占用的行数。
const chromeHeight = 2

type Options struct {
	Host   *host.Host
	Layout *layoutfile.Layout
	Theme  surface.Theme
	// Copy 写入剪贴板；为空时使用系统剪贴板。
	Copy func(string) error
}

// LayoutMsg 由布局文件监听器投递，携带重新加载的布局或错误。
type LayoutMsg struct {
	Layout *layoutfile.Layout
	Err    error
}

type Model struct {
	host   *host.Host
	layout *layoutfile.Layout
	theme  surface.Theme
	keys   keyMap
	help   help.Model
	copy   func(string) error
	// tick 把 loop 上新挂起的定时器转换成 tea 命令；测试中可替换。
	tick func(sched.Arm) tea.Cmd

	width  int
	height int
	note   string
	err    error
	log    *logger.LogEntry
}

func New(opts Options) *Model {
	theme := opts.Theme
	if theme == nil {
		theme = DefaultTheme()
	}
	copyFn := opts.Copy
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	w, h := opts.Host.Surface.Size()
	m := &Model{
		host:   opts.Host,
		layout: opts.Layout,
		theme:  theme,
		keys:   defaultKeyMap(),
		help:   help.New(),
		copy:   copyFn,
		tick:   tickArm,
		width:  w,
		height: h + chromeHeight,
		log:    logger.Named("tui"),
	}
	if opts.Layout != nil {
		m.mount(opts.Layout)
	}
	return m
}

func tickArm(a sched.Arm) tea.Cmd {
	id := a.ID
	return tea.Tick(a.Delay, func(time.Time) tea.Msg {
		return sched.FiredMsg{ID: id}
	})
}

func (m *Model) Init() tea.Cmd {
	return m.armed()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case sched.FiredMsg:
		m.host.Loop.Fire(msg.ID)
	case LayoutMsg:
		if msg.Err != nil {
			m.fail("reload", msg.Err)
			break
		}
		m.mount(msg.Layout)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case tea.KeyMsg:
		if cmd := m.handleKey(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	if cmd := m.armed(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// armed 收集自上次调用以来新挂起的定时器。
func (m *Model) armed() tea.Cmd {
	arms := m.host.Loop.TakeArmed()
	if len(arms) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(arms))
	for _, a := range arms {
		cmds = append(cmds, m.tick(a))
	}
	return tea.Batch(cmds...)
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
	m.host.Resize(width, max(height-chromeHeight, 1))
}

func (m *Model) mount(l *layoutfile.Layout) {
	m.layout = l
	if err := m.host.Mount(MountName, l.View, l.Data, l.Context); err != nil {
		m.fail("mount", err)
		return
	}
	m.err = nil
	if l.Path != "" {
		m.note = "loaded " + l.Path
	}
}

func (m *Model) fail(op string, err error) {
	m.err = err
	m.note = fmt.Sprintf("%s: %v", op, err)
	m.log.WithError(err).WithField("op", op).Warn("layout error")
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	_, surfaceH := m.host.Surface.Size()
	if msg.Y >= surfaceH {
		// 状态栏区域不属于宿主表面。
		return
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.host.Scroll(msg.X, msg.Y, 0, -1)
		return
	case tea.MouseButtonWheelDown:
		m.host.Scroll(msg.X, msg.Y, 0, 1)
		return
	case tea.MouseButtonWheelLeft:
		m.host.Scroll(msg.X, msg.Y, -1, 0)
		return
	case tea.MouseButtonWheelRight:
		m.host.Scroll(msg.X, msg.Y, 1, 0)
		return
	}
	switch msg.Action {
	case tea.MouseActionMotion:
		m.host.PointerMove(msg.X, msg.Y)
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.host.Click(msg.X, msg.Y)
		}
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		m.host.ToggleInspect()
		m.note = ""
		return nil
	case key.Matches(msg, m.keys.Copy):
		m.copySelection()
		return nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	}
	// 其余按键（包括 esc）交给宿主分发，由 inspector 的按键监听处理。
	m.host.KeyDown(msg.String())
	return nil
}

func (m *Model) copySelection() {
	summary := m.host.Inspector.Summary()
	if summary == "" {
		m.note = "nothing to copy"
		return
	}
	if err := m.copy(summary); err != nil {
		m.fail("copy", err)
		return
	}
	m.err = nil
	m.note = "copied " + firstLine(summary)
}

func (m *Model) Mode() StatusMode {
	insp := m.host.Inspector
	switch {
	case !insp.Active():
		return StatusBrowse
	case insp.Selected() != nil:
		return StatusLocked
	case insp.Quick():
		return StatusQuick
	default:
		return StatusInspect
	}
}

func (m *Model) View() string {
	canvas := m.host.Paint(m.theme)
	bar := statusBar{
		mode:   m.Mode(),
		crumbs: m.crumbs(),
		note:   m.note,
		err:    m.err != nil,
	}
	// 帮助行固定一行，展开时把全部绑定平铺。
	bindings := m.keys.ShortHelp()
	if m.help.ShowAll {
		bindings = slices.Concat(m.keys.FullHelp()...)
	}
	helpLine := m.help.ShortHelpView(bindings)
	return lipgloss.JoinVertical(lipgloss.Left, canvas, bar.render(m.width), helpLine)
}

// crumbs 取 inspector 摘要的第一行作为面包屑。
func (m *Model) crumbs() string {
	if !m.host.Inspector.Active() {
		if m.layout != nil {
			return m.layout.Title
		}
		return ""
	}
	return firstLine(m.host.Inspector.Summary())
}

func (m *Model) Note() string {
	return m.note
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
