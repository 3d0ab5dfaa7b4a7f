package inspector

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"viewscope/internal/layout"
	"viewscope/internal/surface"
	"viewscope/internal/viewtree"
)

const sidebarHeight = 6

var (
	sidebarSel  = surface.MustParseSelector(".sidebar")
	selectedSel = surface.MustParseSelector(".selected")
)

// renderDetail fills the detail panel for the selected or hovered leaf.
func (s *Session) renderDetail(body, _ *surface.Node, _ func()) error {
	target := s.target()
	if target == nil {
		return nil
	}
	stack := viewtree.Breadcrumbs(target)
	if s.selected != nil {
		for _, l := range stack {
			if l != target {
				s.expanded[l] = true
			}
		}
	}

	content := []any{s.toolbarConfig(stack)}
	if s.selected != nil && len(stack) > 0 {
		content = append(content, s.sidebarConfig(stack[0]))
	}
	content = append(content, s.sectionConfigs(target)...)

	config := viewtree.Config{
		"view":      "block",
		"className": "inspect-panel",
		"content":   content,
	}
	ctx := map[string]any{"selected": target}
	if err := s.engine.Render(body, config, literalSlice(stack), ctx); err != nil {
		return err
	}
	if s.selected != nil {
		s.sched.Defer(func() { s.restoreSidebar(body) })
	}
	return nil
}

func (s *Session) target() *viewtree.Leaf {
	if s.selected != nil {
		return s.selected
	}
	return s.hoverLeaf
}

func (s *Session) toolbarConfig(stack []*viewtree.Leaf) viewtree.Config {
	var crumbs []any
	for i, l := range stack {
		classes := []string{"crumb"}
		if l.ViewRoot != nil {
			classes = append(classes, "view-root")
		}
		if l.View != nil && l.View.Skipped {
			classes = append(classes, "skipped")
		}
		if i == len(stack)-1 {
			classes = append(classes, "current")
		}
		crumbs = append(crumbs, viewtree.Config{
			"view":      "badge",
			"className": strings.Join(classes, " "),
			"text":      literal(l.Label()),
		})
	}
	if s.selected != nil {
		crumbs = append(crumbs, viewtree.Config{
			"view":    "button",
			"text":    "Close inspector",
			"onClick": func(*surface.Node, any) { s.deactivate() },
		})
	}
	return viewtree.Config{"view": "row", "className": "toolbar", "content": crumbs}
}

// sidebarConfig is the tree of logical leaves below the outermost
// breadcrumb, used to move the selection around.
func (s *Session) sidebarConfig(root *viewtree.Leaf) viewtree.Config {
	link := viewtree.Config{
		"view": "text",
		"text": func(d any) any { return asLeaf(d).Label() },
		"className": func(d any) string {
			leaf := asLeaf(d)
			var classes []string
			if leaf == s.selected {
				classes = append(classes, "selected")
			} else {
				classes = append(classes, "link")
			}
			if leaf.ViewRoot != nil {
				classes = append(classes, "view-root")
			}
			if leaf.View != nil && leaf.View.Skipped {
				classes = append(classes, "skipped")
			}
			return strings.Join(classes, " ")
		},
		"onClick": func(_ *surface.Node, d any) {
			leaf := asLeaf(d)
			if leaf == s.selected {
				return
			}
			if sidebar := findSidebar(s.detail.El()); sidebar != nil {
				s.sidebarScroll = sidebar.ScrollTop
			}
			s.Select(leaf)
		},
	}
	dataBadge := viewtree.Config{
		"view": "badge",
		"text": "D",
		"when": func(d any) any { return dataChanged(asLeaf(d)) },
	}
	contextBadge := viewtree.Config{
		"view": "badge",
		"text": "C",
		"when": func(d any) any { return contextChanged(asLeaf(d)) },
	}

	return viewtree.Config{
		"view":      "scroll",
		"className": "sidebar",
		"height":    sidebarHeight,
		"content": viewtree.Config{
			"view":     "tree",
			"data":     literal([]any{root}),
			"children": func(item any) []any { return literalSlice(logicalChildren(asLeaf(item))) },
			"expanded": func(item any, _ int) bool { return s.expanded[asLeaf(item)] },
			"onToggle": func(item any, open bool) {
				if open {
					s.expanded[asLeaf(item)] = true
				} else {
					delete(s.expanded, asLeaf(item))
				}
			},
			"item": viewtree.Config{"view": "row", "content": []any{link, dataBadge, contextBadge}},
		},
	}
}

func (s *Session) sectionConfigs(target *viewtree.Leaf) []any {
	var out []any
	section := func(class, title string, content ...any) {
		out = append(out, viewtree.Config{
			"view":      "block",
			"className": "content-section " + class,
			"content":   append([]any{viewtree.Config{"view": "text", "className": "section-title", "text": title}}, content...),
		})
	}
	structOf := func(v any) viewtree.Config {
		return viewtree.Config{"view": "struct", "data": literal(v), "limit": 12}
	}

	if v := target.View; v != nil {
		if v.Skipped {
			out = append(out, viewtree.Config{"view": "badge", "className": "content-section skip", "text": "skipped"})
		}
		if v.Props != nil {
			section("props", "props", structOf(v.Props))
		}
		cfg := []any{structOf(v.Config)}
		if deps := s.engine.ConfigTransitionDeps(v.Config); deps != nil {
			cfg = append(cfg, viewtree.Config{
				"view":      "tree",
				"className": "config-deps",
				"data":      literal(asAnySlice(deps.Deps)),
				"children":  func(item any) []any { return asAnySlice(item.(*viewtree.DepNode).Deps) },
				"label":     func(item any) string { return depLabel(item.(*viewtree.DepNode)) },
				"expanded":  3,
			})
		}
		section("config", "config", cfg...)

		var data []any
		if binding, ok := v.Config["data"]; ok {
			data = append(data,
				structOf(v.InputData),
				viewtree.Config{"view": "text", "className": "flow-down", "text": "↓"},
				viewtree.Config{"view": "text", "className": "binding", "text": literal(bindingText(binding))},
				viewtree.Config{"view": "text", "className": "flow-down", "text": "↓"},
			)
		}
		section("data", "data", append(data, structOf(v.Data))...)
	} else {
		section("data", "data", structOf(target.Data()))
	}
	section("context", "context", structOf(target.Context()))
	return out
}

// restoreSidebar brings back the sidebar scroll offset from before the
// selection changed and keeps the selected entry in view.
func (s *Session) restoreSidebar(body *surface.Node) {
	sidebar := findSidebar(body)
	if sidebar == nil {
		return
	}
	sidebar.ScrollTo(0, s.sidebarScroll)
	if selected := findFirst(sidebar, selectedSel); selected != nil {
		layout.EnsureVisible(selected)
	}
}

func findSidebar(body *surface.Node) *surface.Node {
	return findFirst(body, sidebarSel)
}

// findFirst returns the first node under root, in tree order, matching sel.
func findFirst(root *surface.Node, sel surface.Selector) *surface.Node {
	var found *surface.Node
	root.Walk(func(n *surface.Node) bool {
		if found == nil && sel.Match(n) {
			found = n
		}
		return found == nil
	})
	return found
}

// Summary describes the selected (or hovered) leaf: its breadcrumb path and
// its config as YAML.
func (s *Session) Summary() string {
	target := s.target()
	if target == nil {
		return ""
	}
	var names []string
	for _, l := range viewtree.Breadcrumbs(target) {
		names = append(names, l.Label())
	}
	var b strings.Builder
	b.WriteString(strings.Join(names, " › "))
	if target.Node != nil {
		r := target.Node.AbsRect()
		fmt.Fprintf(&b, " @ %d,%d %dx%d", r.Left, r.Top, r.Width, r.Height)
	}
	b.WriteString("\n")
	if target.View != nil {
		if out, err := yaml.Marshal(viewtree.Printable(target.View.Config)); err == nil {
			b.Write(out)
		}
	}
	return b.String()
}

func logicalChildren(leaf *viewtree.Leaf) []*viewtree.Leaf {
	var out []*viewtree.Leaf
	for _, c := range leaf.Children {
		if c.Logical() {
			out = append(out, c)
			continue
		}
		out = append(out, logicalChildren(c)...)
	}
	return out
}

func logicalParent(leaf *viewtree.Leaf) *viewtree.Leaf {
	for cur := leaf.Parent; cur != nil; cur = cur.Parent {
		if cur.Logical() {
			return cur
		}
	}
	return nil
}

func dataChanged(leaf *viewtree.Leaf) bool {
	if leaf.View == nil {
		return false
	}
	if _, ok := leaf.View.Config["data"]; ok {
		return true
	}
	parent := logicalParent(leaf)
	return parent != nil && !viewtree.SameValue(leaf.Data(), parent.Data())
}

func contextChanged(leaf *viewtree.Leaf) bool {
	parent := logicalParent(leaf)
	return parent != nil && !viewtree.SameValue(leaf.Context(), parent.Context())
}

func depLabel(dep *viewtree.DepNode) string {
	if m, ok := dep.Value.(map[string]any); ok {
		if prop, ok := m["prop"]; ok {
			return fmt.Sprintf("%v ← %v", prop, m["query"])
		}
	}
	return fmt.Sprint(viewtree.Printable(dep.Value))
}

func bindingText(v any) string {
	if q, ok := v.(string); ok {
		return q
	}
	out, err := yaml.Marshal(viewtree.Printable(v))
	if err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimRight(string(out), "\n")
}

// literal keeps a value from being read as a query by the engine.
func literal(v any) func(any) any {
	return func(any) any { return v }
}

func asLeaf(v any) *viewtree.Leaf {
	leaf, _ := v.(*viewtree.Leaf)
	if leaf == nil {
		return &viewtree.Leaf{}
	}
	return leaf
}

func literalSlice(leaves []*viewtree.Leaf) []any {
	out := make([]any, len(leaves))
	for i, l := range leaves {
		out[i] = l
	}
	return out
}

func asAnySlice(deps []*viewtree.DepNode) []any {
	out := make([]any, len(deps))
	for i, d := range deps {
		out[i] = d
	}
	return out
}
