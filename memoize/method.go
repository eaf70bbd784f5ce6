package memoize

import "github.com/mpyw/depmemo"

// Method adapts a function written against a concrete argument type A into
// one that can be passed to Cache.Call, which only ever hands a caller the
// traced *depmemo.View rather than the concrete type. adapt recovers the
// A-shaped surface a caller actually wants to program against - typically
// a small interface A implements alongside depmemo.Accessible, or A itself
// when it is just an alias for *depmemo.View.
//
// The returned function is what callers invoke directly; it traces its
// argument, hands adapt's result to fn, and memoizes by the resulting
// Imprint exactly as Cache.Call does.
func Method[A, V any](c *Cache[V], adapt func(view *depmemo.View) A, fn func(A) (V, error)) func(arg any) (V, error) {
	return func(arg any) (V, error) {
		return c.Call(arg, func(view *depmemo.View) (V, error) {
			return fn(adapt(view))
		})
	}
}
