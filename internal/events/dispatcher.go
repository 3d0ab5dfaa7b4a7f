package events

import (
	"slices"

	"viewscope/internal/logger"
	"viewscope/internal/surface"
)

// log 复用全局 logger，标记事件组件。
var log = logger.Named("events")

type registration struct {
	kind    Kind
	node    *surface.Node
	fn      Listener
	removed bool
}

// Subscription 是一次监听注册；Remove 可重复调用。
type Subscription struct {
	d   *Dispatcher
	reg *registration
}

// Remove 注销监听器，重复调用无副作用。
func (s Subscription) Remove() {
	if s.d == nil || s.reg == nil || s.reg.removed {
		return
	}
	s.reg.removed = true
	s.d.drop(s.reg)
}

// Dispatcher 是单线程的同步事件分发器。
// 宿主级监听器（Add）先于节点监听器（On）执行，节点监听器从目标向上冒泡。
type Dispatcher struct {
	host  []*registration
	nodes []*registration
	added int
	freed int
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Add 注册宿主级监听器，接收所有该类型的事件。
func (d *Dispatcher) Add(kind Kind, fn Listener) Subscription {
	reg := &registration{kind: kind, fn: fn}
	d.host = append(d.host, reg)
	d.added++
	return Subscription{d: d, reg: reg}
}

// On 注册节点监听器，仅当事件目标位于 node 子树内时触发。
func (d *Dispatcher) On(node *surface.Node, kind Kind, fn Listener) Subscription {
	reg := &registration{kind: kind, node: node, fn: fn}
	d.nodes = append(d.nodes, reg)
	d.added++
	return Subscription{d: d, reg: reg}
}

func (d *Dispatcher) drop(reg *registration) {
	list := &d.host
	if reg.node != nil {
		list = &d.nodes
	}
	if idx := slices.Index(*list, reg); idx >= 0 {
		*list = slices.Delete(*list, idx, idx+1)
		d.freed++
	}
}

// Count 返回当前有效的监听器数量。
func (d *Dispatcher) Count() int {
	return len(d.host) + len(d.nodes)
}

// Stats 返回累计的注册与注销次数，用于检查监听器是否成对释放。
func (d *Dispatcher) Stats() (added, removed int) {
	return d.added, d.freed
}

// Dispatch 依次调用监听器。遍历基于快照，监听器在回调中增删注册不会导致跳过或重复。
func (d *Dispatcher) Dispatch(e *Event) {
	if e == nil {
		return
	}
	if e.Kind != PointerMove {
		log.WithField("kind", e.Kind).Trace("dispatch")
	}
	for _, reg := range slices.Clone(d.host) {
		if e.stopped {
			return
		}
		if reg.removed || reg.kind != e.Kind {
			continue
		}
		reg.fn(e)
	}
	if e.Target == nil {
		return
	}
	nodes := slices.Clone(d.nodes)
	for cur := e.Target; cur != nil; cur = cur.Parent() {
		for _, reg := range nodes {
			if e.stopped {
				return
			}
			if reg.removed || reg.node != cur || reg.kind != e.Kind {
				continue
			}
			reg.fn(e)
		}
	}
}

// RemoveNode 注销挂在 node 子树上的所有节点监听器。
func (d *Dispatcher) RemoveNode(node *surface.Node) {
	for _, reg := range slices.Clone(d.nodes) {
		if node.Contains(reg.node) {
			reg.removed = true
			d.drop(reg)
		}
	}
}
