package events

import "slices"

type valueSub[T comparable] struct {
	fn      func(T)
	removed bool
}

// Value 是可订阅的单值，例如 inspectMode 开关和指针坐标。
type Value[T comparable] struct {
	v    T
	subs []*valueSub[T]
}

func NewValue[T comparable](initial T) *Value[T] {
	return &Value[T]{v: initial}
}

func (v *Value[T]) Get() T {
	return v.v
}

// Set 更新值；值变化时通知订阅者并返回 true。
func (v *Value[T]) Set(next T) bool {
	if v.v == next {
		return false
	}
	v.v = next
	for _, sub := range slices.Clone(v.subs) {
		if !sub.removed {
			sub.fn(next)
		}
	}
	return true
}

// Subscribe 注册变更回调，返回的函数用于取消订阅（可重复调用）。
func (v *Value[T]) Subscribe(fn func(T)) func() {
	sub := &valueSub[T]{fn: fn}
	v.subs = append(v.subs, sub)
	return func() {
		if sub.removed {
			return
		}
		sub.removed = true
		if idx := slices.Index(v.subs, sub); idx >= 0 {
			v.subs = slices.Delete(v.subs, idx, idx+1)
		}
	}
}

// SubscribeSync 与 Subscribe 相同，但会立即以当前值调用一次 fn。
func (v *Value[T]) SubscribeSync(fn func(T)) func() {
	unsubscribe := v.Subscribe(fn)
	fn(v.v)
	return unsubscribe
}

// Subscribers 返回当前订阅者数量。
func (v *Value[T]) Subscribers() int {
	return len(v.subs)
}
