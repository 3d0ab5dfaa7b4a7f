package tui

import "viewscope/internal/surface"

const (
	colorAccent = "#7D56F4"
	colorMuted  = "#6C6C6C"
	colorHover  = "#3A2E6B"
	colorPanel  = "#1E1E2E"
	colorWarn   = "#E5C07B"
	colorLink   = "#61AFEF"
)

// DefaultTheme 按节点类型与 class 决定绘制外观。
func DefaultTheme() surface.Theme {
	return func(n *surface.Node) surface.Look {
		switch {
		case n.HasClass("inspector-overlay"):
			return surface.Look{}
		case n.Kind == "overlay":
			if n.HasClass("hovered") {
				return surface.Look{Tint: colorHover}
			}
			return surface.Look{}
		case n.HasClass("cancel-hint"):
			return surface.Look{Style: surface.Style{Fg: colorWarn, Bold: true}}
		case n.Kind == "popup":
			st := surface.Style{Fg: colorAccent, Bg: colorPanel}
			if n.HasClass("pinned") || n.HasClass("frozen") {
				st.Bold = true
			}
			return surface.Look{Style: st, Fill: true}
		case n.HasClass("crumb"):
			st := surface.Style{Fg: colorMuted, Bg: colorPanel}
			if n.HasClass("current") {
				st = surface.Style{Fg: colorAccent, Bg: colorPanel, Bold: true}
			}
			if n.HasClass("skipped") {
				st.Faint = true
			}
			return surface.Look{Style: st}
		case n.HasClass("selected"):
			return surface.Look{Style: surface.Style{Fg: colorAccent, Bg: colorPanel, Reverse: true}}
		case n.HasClass("link"):
			return surface.Look{Style: surface.Style{Fg: colorLink, Bg: colorPanel, Underline: true}}
		case n.Kind == "badge":
			return surface.Look{Style: surface.Style{Fg: colorAccent, Bold: true}}
		case n.Kind == "button":
			return surface.Look{Style: surface.Style{Reverse: true}}
		case n.HasClass("popup-active"):
			return surface.Look{Style: surface.Style{Underline: true}}
		case n.Border:
			return surface.Look{Style: surface.Style{Fg: colorMuted}}
		}
		return surface.Look{}
	}
}
