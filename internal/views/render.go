package views

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"viewscope/internal/events"
	"viewscope/internal/surface"
	"viewscope/internal/viewtree"
)

type renderCtx struct {
	e      *Engine
	frag   *fragment
	parent *surface.Node
	leaf   *viewtree.Leaf
	cfg    viewtree.Config
	props  map[string]any
	data   any
	ctx    any
	// path is a stable position used as the key of tree expansion state.
	path string
}

// content renders nested configs into node into; their leaves become
// children of the current leaf.
func (r *renderCtx) content(into *surface.Node, v any, data any) error {
	return r.contentAt(into, v, data, r.path)
}

func (r *renderCtx) contentAt(into *surface.Node, v any, data any, path string) error {
	for i, cfg := range configs(v) {
		if err := r.renderOne(into, cfg, data, fmt.Sprintf("%s.%d", path, i)); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderCtx) renderOne(into *surface.Node, cfg viewtree.Config, input any, path string) error {
	name := cfg.Name()
	if name == "" {
		name = "block"
	}
	def, ok := r.e.defs[name]
	if !ok {
		return r.e.undefined(name)
	}
	data := input
	if v, ok := cfg["data"]; ok {
		data = resolve(v, input)
	}
	view := &viewtree.View{Name: name, Config: cfg, InputData: input, Data: data, Context: r.ctx}
	leaf := r.leaf.AppendChild(&viewtree.Leaf{View: view})
	if w, ok := cfg["when"]; ok && !truthy(resolve(w, data)) {
		view.Skipped = true
		return nil
	}
	view.Props = props(cfg, data)
	child := &renderCtx{
		e:      r.e,
		frag:   r.frag,
		parent: into,
		leaf:   leaf,
		cfg:    cfg,
		props:  view.Props,
		data:   data,
		ctx:    r.ctx,
		path:   path,
	}
	return def(child)
}

// node creates the view's own element and applies the generic props.
func (r *renderCtx) node(kind string) *surface.Node {
	n := r.parent.Append(kind, "view-"+r.leaf.View.Name)
	switch cls := r.props["className"].(type) {
	case string:
		n.AddClass(strings.Fields(cls)...)
	case []any:
		for _, c := range cls {
			n.AddClass(str(c))
		}
	case []string:
		n.AddClass(cls...)
	}
	if fn, ok := r.cfg["className"].(func(any) string); ok {
		n.AddClass(strings.Fields(fn(r.data))...)
	}
	if v, ok := asInt(r.props["width"]); ok {
		n.Width = v
	}
	if v, ok := asInt(r.props["height"]); ok {
		n.Height = v
	}
	if v, ok := asInt(r.props["padding"]); ok {
		n.Padding = v
	}
	if v, ok := asBool(r.props["border"]); ok {
		n.Border = v
	}
	if v, ok := r.props["overflow"].(string); ok {
		n.Overflow = surface.ParseOverflow(v)
	}
	if hint := str(r.props["hint"]); hint != "" {
		n.SetData("hint", hint)
		n.AddClass("has-hint")
	}
	r.leaf.Node = n
	r.onClick(n)
	return n
}

func (r *renderCtx) onClick(n *surface.Node) {
	var h Handler
	switch fn := r.cfg["onClick"].(type) {
	case Handler:
		h = fn
	case func(*surface.Node, any):
		h = fn
	}
	if h != nil {
		data := r.data
		r.listen(n, func(e *events.Event) {
			e.StopPropagation()
			h(n, data)
		})
	}
}

func (r *renderCtx) listen(n *surface.Node, fn events.Listener) {
	if r.e.dispatcher == nil {
		return
	}
	r.frag.subs = append(r.frag.subs, r.e.dispatcher.On(n, events.Click, fn))
}

func (r *renderCtx) text() string {
	if t, ok := r.props["text"]; ok {
		return str(t)
	}
	return str(r.data)
}

func renderBlock(r *renderCtx) error {
	n := r.node("block")
	return r.content(n, r.cfg["content"], r.data)
}

func renderRow(r *renderCtx) error {
	n := r.node("row")
	n.Dir = surface.Row
	return r.content(n, r.cfg["content"], r.data)
}

// renderContext renders its content without an element of its own,
// extending the context with the "set" prop.
func renderContext(r *renderCtx) error {
	if set, ok := r.props["set"].(map[string]any); ok {
		next := map[string]any{}
		if prev, ok := r.ctx.(map[string]any); ok {
			for k, v := range prev {
				next[k] = v
			}
		}
		for k, v := range set {
			next[k] = v
		}
		r.ctx = next
	}
	return r.content(r.parent, r.cfg["content"], r.data)
}

func renderText(r *renderCtx) error {
	r.node("text").SetText(r.text())
	return nil
}

func renderBadge(r *renderCtx) error {
	r.node("badge").SetText(" " + r.text() + " ")
	return nil
}

func renderButton(r *renderCtx) error {
	r.node("button").SetText("[ " + r.text() + " ]")
	return nil
}

func renderList(r *renderCtx) error {
	n := r.node("list")
	item := r.cfg["item"]
	if item == nil {
		item = viewtree.Config{"view": "text"}
	}
	for i, v := range asSlice(r.data) {
		if err := r.contentAt(n, item, v, fmt.Sprintf("%s/%d", r.path, i)); err != nil {
			return err
		}
	}
	return nil
}

// renderStruct prints data as YAML, optionally capped to "limit" lines.
func renderStruct(r *renderCtx) error {
	n := r.node("struct")
	out, err := yaml.Marshal(viewtree.Printable(r.data))
	text := strings.TrimRight(string(out), "\n")
	if err != nil {
		text = fmt.Sprintf("%v", r.data)
	}
	if limit, ok := asInt(r.props["limit"]); ok && limit > 0 {
		lines := strings.Split(text, "\n")
		if len(lines) > limit {
			text = strings.Join(append(lines[:limit], fmt.Sprintf("… %d more", len(lines)-limit)), "\n")
		}
	}
	n.SetText(text)
	return nil
}

func renderScroll(r *renderCtx) error {
	n := r.node("scroll")
	if _, ok := r.props["overflow"]; !ok {
		n.Overflow = surface.OverflowAuto
	}
	return r.content(n, r.cfg["content"], r.data)
}
