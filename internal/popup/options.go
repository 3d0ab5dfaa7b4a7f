package popup

import (
	"time"

	"viewscope/internal/surface"
)

// Position selects what a panel is anchored to.
type Position string

const (
	PositionTrigger Position = "trigger"
	PositionPointer Position = "pointer"
)

// PinMode controls how a hover-shown panel becomes sticky.
type PinMode string

const (
	PinNone PinMode = ""
	// PinPopupHover keeps the panel open while the pointer is over the
	// trigger or the panel itself.
	PinPopupHover PinMode = "popup-hover"
	// PinTriggerClick pins a hover-shown panel when its trigger is clicked.
	PinTriggerClick PinMode = "trigger-click"
)

func (m PinMode) valid() bool {
	switch m {
	case PinNone, PinPopupHover, PinTriggerClick:
		return true
	default:
		return false
	}
}

func (m PinMode) String() string {
	if m == PinNone {
		return "none"
	}
	return string(m)
}

// RenderFunc fills body with the panel content. hide closes the panel.
type RenderFunc func(body, trigger *surface.Node, hide func()) error

// Options configures a Popup.
type Options struct {
	Position Position
	// HoverTriggers is a selector matching elements that show the panel on
	// hover. Empty disables hover activation.
	HoverTriggers string
	HoverPin      PinMode
	// HideIfEventOutside defaults to true.
	HideIfEventOutside *bool
	// HideOnResize defaults to true.
	HideOnResize *bool
	ClassName    string
	Render       RenderFunc
	// OnHide runs after the panel closed.
	OnHide func()
}

// Config holds registry-wide tunables.
type Config struct {
	HoverHideDelay time.Duration
	PointerMargin  int
}

func (c Config) withDefaults() Config {
	if c.HoverHideDelay <= 0 {
		c.HoverHideDelay = 100 * time.Millisecond
	}
	if c.PointerMargin <= 0 {
		c.PointerMargin = 3
	}
	return c
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
