package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap 定义 TUI 自身处理的按键；其余按键转发给宿主。
type keyMap struct {
	Toggle key.Binding
	Copy   key.Binding
	Help   key.Binding
	Quit   key.Binding
	Cancel key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Toggle: key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "inspect")),
		Copy:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy selection")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		// esc 由 inspector 的取消键监听处理，这里只用于帮助行展示。
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "stop inspecting")),
	}
}

// ShortHelp 实现 help.KeyMap。
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Copy, k.Help, k.Quit}
}

// FullHelp 实现 help.KeyMap。
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Cancel, k.Copy},
		{k.Help, k.Quit},
	}
}
