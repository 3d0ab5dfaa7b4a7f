package views

import (
	"fmt"

	"viewscope/internal/events"
	"viewscope/internal/surface"
)

// renderTree renders nested items. Props: "children" (key, default
// "children"), "label" (key), "expanded" (depth, default 1). The config may
// instead carry functions for children, label, expanded and onToggle.
func renderTree(r *renderCtx) error {
	n := r.node("tree")
	return r.treeItems(n, asSlice(r.data), 0, r.path)
}

func (r *renderCtx) treeItems(into *surface.Node, items []any, depth int, path string) error {
	for i, item := range items {
		itemPath := fmt.Sprintf("%s/%d", path, i)
		kids := r.treeChildren(item)
		open := len(kids) > 0 && r.treeExpanded(item, depth, itemPath)

		row := into.Append("row", "tree-item")
		row.Dir = surface.Row
		toggle := row.Append("text", "tree-toggle")
		switch {
		case len(kids) == 0:
			toggle.SetText("  ")
		case open:
			toggle.SetText("▾ ")
		default:
			toggle.SetText("▸ ")
		}
		if len(kids) > 0 {
			r.listen(toggle, r.toggleHandler(item, itemPath, !open))
		}

		if itemCfg := r.cfg["item"]; itemCfg != nil {
			if err := r.contentAt(row, itemCfg, item, itemPath); err != nil {
				return err
			}
		} else {
			row.Append("text", "tree-label").SetText(r.treeLabel(item))
		}

		if open {
			nested := into.Append("row", "tree-children")
			nested.Dir = surface.Row
			nested.Append("text", "tree-indent").SetText("  ")
			col := nested.Append("block")
			if err := r.treeItems(col, kids, depth+1, itemPath); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *renderCtx) toggleHandler(item any, path string, next bool) events.Listener {
	frag := r.frag
	e := r.e
	onToggle, _ := r.cfg["onToggle"].(func(any, bool))
	return func(ev *events.Event) {
		ev.StopPropagation()
		frag.expanded[path] = next
		if onToggle != nil {
			onToggle(item, next)
		}
		if err := e.refresh(frag); err != nil {
			e.log.WithError(err).Warn("tree toggle re-render failed")
		}
	}
}

func (r *renderCtx) treeChildren(item any) []any {
	if fn, ok := r.cfg["children"].(func(any) []any); ok {
		return fn(item)
	}
	key := "children"
	if k, ok := r.props["children"].(string); ok && k != "" {
		key = k
	}
	return asSlice(lookup(item, key))
}

func (r *renderCtx) treeExpanded(item any, depth int, path string) bool {
	if state, ok := r.frag.expanded[path]; ok {
		return state
	}
	if fn, ok := r.cfg["expanded"].(func(any, int) bool); ok {
		return fn(item, depth)
	}
	limit := 1
	if v, ok := asInt(r.props["expanded"]); ok {
		limit = v
	}
	return depth < limit
}

func (r *renderCtx) treeLabel(item any) string {
	if fn, ok := r.cfg["label"].(func(any) string); ok {
		return fn(item)
	}
	if k, ok := r.props["label"].(string); ok && k != "" {
		return str(lookup(item, k))
	}
	if m, ok := item.(map[string]any); ok {
		if name, ok := m["name"]; ok {
			return str(name)
		}
	}
	return str(item)
}
