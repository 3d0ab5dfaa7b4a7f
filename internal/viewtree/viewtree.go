// Package viewtree describes the visual tree snapshot a render engine
// exposes: leaves tying logical views to the nodes they rendered.
package viewtree

import "viewscope/internal/surface"

// Config is a declarative view configuration. The "view" key names the
// view; the remaining keys are view specific.
type Config map[string]any

// Name returns the view name of the configuration.
func (c Config) Name() string {
	if name, ok := c["view"].(string); ok {
		return name
	}
	return ""
}

// View is one rendered view instance.
type View struct {
	Name      string
	Config    Config
	Props     map[string]any
	Data      any
	InputData any
	Context   any
	// Skipped views were not rendered because their condition failed.
	Skipped bool
}

// ViewRoot marks a top-level mount point.
type ViewRoot struct {
	Name    string
	Data    any
	Context any
}

// Leaf is a node of the visual tree. Leaves without a rendered node, or
// with neither View nor ViewRoot, are structural.
type Leaf struct {
	Node     *surface.Node
	View     *View
	ViewRoot *ViewRoot
	Children []*Leaf
	// Parent is a navigation aid only; the tree is owned by the engine.
	Parent *Leaf
}

// Inspectable reports whether the leaf gets its own overlay.
func (l *Leaf) Inspectable() bool {
	return l != nil && l.Node != nil && (l.View != nil || l.ViewRoot != nil)
}

// Logical reports whether the leaf carries a view or a view root.
func (l *Leaf) Logical() bool {
	return l != nil && (l.View != nil || l.ViewRoot != nil)
}

// Label is the display name: the root name, the view name, or "#root".
func (l *Leaf) Label() string {
	switch {
	case l == nil:
		return ""
	case l.ViewRoot != nil:
		return l.ViewRoot.Name
	case l.View != nil && l.View.Name != "":
		return l.View.Name
	default:
		return "#root"
	}
}

// Data returns the data of the view or view root.
func (l *Leaf) Data() any {
	switch {
	case l == nil:
		return nil
	case l.View != nil:
		return l.View.Data
	case l.ViewRoot != nil:
		return l.ViewRoot.Data
	}
	return nil
}

// Context returns the render context of the view or view root.
func (l *Leaf) Context() any {
	switch {
	case l == nil:
		return nil
	case l.View != nil:
		return l.View.Context
	case l.ViewRoot != nil:
		return l.ViewRoot.Context
	}
	return nil
}

// AppendChild links c under l.
func (l *Leaf) AppendChild(c *Leaf) *Leaf {
	c.Parent = l
	l.Children = append(l.Children, c)
	return c
}

// DepNode is one step of a config value derivation.
type DepNode struct {
	Value any
	Deps  []*DepNode
}

// Engine is the render engine the inspector and popups consume.
type Engine interface {
	// VisualTree returns a fresh snapshot of the mounted views plus the
	// fragments rendered into the given extra roots.
	VisualTree(roots []*surface.Node) []*Leaf
	// Render replaces container's content with the rendered config.
	Render(container *surface.Node, config Config, data any, ctx any) error
	IsDefined(name string) bool
	ConfigTransitionDeps(config Config) *DepNode
}

// Walk visits leaves depth first; returning false skips the children.
func Walk(leaves []*Leaf, fn func(*Leaf) bool) {
	for _, l := range leaves {
		if l == nil || !fn(l) {
			continue
		}
		Walk(l.Children, fn)
	}
}

// Breadcrumbs returns the logical ancestors of leaf from the closest view
// root down to leaf itself. Structural leaves are skipped.
func Breadcrumbs(leaf *Leaf) []*Leaf {
	var stack []*Leaf
	for cur := leaf; cur != nil; cur = cur.Parent {
		if !cur.Logical() {
			continue
		}
		stack = append(stack, cur)
		if cur.ViewRoot != nil {
			break
		}
	}
	for i, j := 0, len(stack)-1; i < j; i, j = i+1, j-1 {
		stack[i], stack[j] = stack[j], stack[i]
	}
	return stack
}

// Find returns the first leaf whose rendered node is n.
func Find(leaves []*Leaf, n *surface.Node) *Leaf {
	var found *Leaf
	Walk(leaves, func(l *Leaf) bool {
		if found != nil {
			return false
		}
		if l.Node == n {
			found = l
			return false
		}
		return true
	})
	return found
}
