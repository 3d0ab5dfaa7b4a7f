package events

import "viewscope/internal/surface"

// Kind 描述宿主分发的事件类型。
type Kind string

const (
	PointerMove  Kind = "pointermove"
	PointerEnter Kind = "pointerenter"
	PointerLeave Kind = "pointerleave"
	Click        Kind = "click"
	Scroll       Kind = "scroll"
	KeyDown      Kind = "keydown"
	KeyUp        Kind = "keyup"
	Resize       Kind = "resize"
)

// Event 是宿主内传递的唯一事件格式。
// Target 对 Resize 与键盘事件可以为空。
type Event struct {
	Kind   Kind
	Target *surface.Node
	X      int
	Y      int
	// Key 使用 bubbletea 的按键名称，例如 "esc"、"alt"。
	Key string
	// DX/DY 为滚动量（行/列）。
	DX int
	DY int

	stopped bool
}

// StopPropagation 阻止后续监听器接收该事件。
func (e *Event) StopPropagation() {
	e.stopped = true
}

// Stopped 报告事件是否已被拦截。
func (e *Event) Stopped() bool {
	return e.stopped
}

// Listener 处理一次事件。
type Listener func(e *Event)
