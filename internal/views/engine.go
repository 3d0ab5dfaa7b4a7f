// Package views is the built-in declarative view engine: it renders view
// configurations into surface nodes and answers visual tree queries.
package views

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"

	"github.com/sahilm/fuzzy"

	"viewscope/internal/events"
	"viewscope/internal/logger"
	"viewscope/internal/surface"
	"viewscope/internal/viewtree"
)

// ErrUndefinedView is returned when a config names an unknown view.
var ErrUndefinedView = errors.New("undefined view")

// Handler is called when a rendered node with an onClick config is clicked.
type Handler func(node *surface.Node, data any)

type renderFunc func(r *renderCtx) error

// fragment is one Render call's output, kept so it can be queried and
// re-rendered in place.
type fragment struct {
	container *surface.Node
	config    viewtree.Config
	data      any
	ctx       any
	root      *viewtree.Leaf
	leaves    []*viewtree.Leaf
	subs      []events.Subscription
	expanded  map[string]bool
}

type mount struct {
	name string
	node *surface.Node
}

// Engine renders views and tracks what it rendered.
type Engine struct {
	dispatcher *events.Dispatcher
	defs       map[string]renderFunc
	mounts     []*mount
	fragments  map[*surface.Node]*fragment
	log        *logger.LogEntry
}

// New creates an engine. Click handlers are only wired when d is non-nil.
func New(d *events.Dispatcher) *Engine {
	e := &Engine{
		dispatcher: d,
		fragments:  map[*surface.Node]*fragment{},
		log:        logger.Named("views"),
	}
	e.defs = map[string]renderFunc{
		"block":   renderBlock,
		"row":     renderRow,
		"context": renderContext,
		"text":    renderText,
		"badge":   renderBadge,
		"button":  renderButton,
		"list":    renderList,
		"struct":  renderStruct,
		"scroll":  renderScroll,
		"tree":    renderTree,
	}
	return e
}

// IsDefined reports whether name is a known view.
func (e *Engine) IsDefined(name string) bool {
	_, ok := e.defs[name]
	return ok
}

// Names lists the defined views.
func (e *Engine) Names() []string {
	names := slices.Collect(maps.Keys(e.defs))
	sort.Strings(names)
	return names
}

func (e *Engine) undefined(name string) error {
	if matches := fuzzy.Find(name, e.Names()); len(matches) > 0 {
		return fmt.Errorf("%w %q (did you mean %q?)", ErrUndefinedView, name, matches[0].Str)
	}
	return fmt.Errorf("%w %q", ErrUndefinedView, name)
}

// Mount renders config into a new view-root node appended to container.
// Mounting an existing name replaces it.
func (e *Engine) Mount(container *surface.Node, name string, config viewtree.Config, data, ctx any) (*surface.Node, error) {
	e.Unmount(name)
	node := container.Append("block", "view-root")
	node.SetData("view-root", name)
	m := &mount{name: name, node: node}
	e.mounts = append(e.mounts, m)

	frag := &fragment{
		container: node,
		config:    config,
		data:      data,
		ctx:       ctx,
		root:      &viewtree.Leaf{Node: node, ViewRoot: &viewtree.ViewRoot{Name: name, Data: data, Context: ctx}},
		expanded:  map[string]bool{},
	}
	e.fragments[node] = frag
	return node, e.refresh(frag)
}

// Update re-renders a mount with new config and data.
func (e *Engine) Update(name string, config viewtree.Config, data, ctx any) error {
	m := e.mount(name)
	if m == nil {
		return fmt.Errorf("mount %q not found", name)
	}
	frag := e.fragments[m.node]
	frag.config = config
	frag.data = data
	frag.ctx = ctx
	frag.root.ViewRoot = &viewtree.ViewRoot{Name: name, Data: data, Context: ctx}
	return e.refresh(frag)
}

// Unmount removes a mount and its listeners.
func (e *Engine) Unmount(name string) {
	m := e.mount(name)
	if m == nil {
		return
	}
	e.Release(m.node)
	m.node.Remove()
	e.mounts = slices.DeleteFunc(e.mounts, func(x *mount) bool { return x == m })
}

func (e *Engine) mount(name string) *mount {
	for _, m := range e.mounts {
		if m.name == name {
			return m
		}
	}
	return nil
}

// Rerender renders every mount again from its stored config.
func (e *Engine) Rerender() error {
	var errs []error
	for _, m := range e.mounts {
		errs = append(errs, e.refresh(e.fragments[m.node]))
	}
	return errors.Join(errs...)
}

// Render replaces container's content with config rendered against data.
func (e *Engine) Render(container *surface.Node, config viewtree.Config, data, ctx any) error {
	frag := e.fragments[container]
	if frag == nil {
		frag = &fragment{container: container, expanded: map[string]bool{}}
		e.fragments[container] = frag
	}
	frag.config = config
	frag.data = data
	frag.ctx = ctx
	return e.refresh(frag)
}

// Release forgets the fragment rendered into container and removes its
// click listeners. The nodes themselves are left alone.
func (e *Engine) Release(container *surface.Node) {
	frag := e.fragments[container]
	if frag == nil {
		return
	}
	frag.dropListeners()
	delete(e.fragments, container)
}

// Listeners returns how many click listeners rendered content holds.
func (e *Engine) Listeners() int {
	n := 0
	for _, frag := range e.fragments {
		n += len(frag.subs)
	}
	return n
}

func (f *fragment) dropListeners() {
	for _, sub := range f.subs {
		sub.Remove()
	}
	f.subs = nil
}

func (e *Engine) refresh(frag *fragment) error {
	frag.dropListeners()
	frag.container.Clear()
	frag.leaves = nil
	parent := frag.root
	if parent != nil {
		parent.Children = nil
	} else {
		parent = &viewtree.Leaf{}
	}
	r := &renderCtx{e: e, frag: frag, parent: frag.container, leaf: parent, data: frag.data, ctx: frag.ctx, path: "r"}
	if err := r.content(frag.container, frag.config, frag.data); err != nil {
		frag.dropListeners()
		frag.container.Clear()
		if frag.root != nil {
			frag.root.Children = nil
		}
		e.log.WithError(err).Warn("render failed")
		return err
	}
	if frag.root == nil {
		frag.leaves = parent.Children
		for _, l := range frag.leaves {
			l.Parent = nil
		}
	}
	return nil
}

// VisualTree returns the mounted view roots followed by the fragments
// rendered into the given roots. Detached content is left out.
func (e *Engine) VisualTree(roots []*surface.Node) []*viewtree.Leaf {
	var out []*viewtree.Leaf
	for _, m := range e.mounts {
		if m.node.Surface().Attached(m.node) {
			out = append(out, e.fragments[m.node].root)
		}
	}
	containers := slices.Collect(maps.Keys(e.fragments))
	sort.Slice(containers, func(i, j int) bool { return containers[i].ID < containers[j].ID })
	for _, c := range containers {
		frag := e.fragments[c]
		if frag.root != nil || !c.Surface().Attached(c) {
			continue
		}
		if !slices.ContainsFunc(roots, func(root *surface.Node) bool { return root != nil && root.Contains(c) }) {
			continue
		}
		out = append(out, frag.leaves...)
	}
	return out
}

// ConfigTransitionDeps lists the props of config computed from queries.
func (e *Engine) ConfigTransitionDeps(config viewtree.Config) *viewtree.DepNode {
	keys := slices.Collect(maps.Keys(config))
	sort.Strings(keys)
	var deps []*viewtree.DepNode
	for _, k := range keys {
		q, ok := config[k].(string)
		if !ok || !isQuery(q) || k == "view" {
			continue
		}
		deps = append(deps, &viewtree.DepNode{Value: map[string]any{"prop": k, "query": q}})
	}
	if len(deps) == 0 {
		return nil
	}
	return &viewtree.DepNode{Value: config.Name(), Deps: deps}
}
