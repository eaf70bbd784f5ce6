// Package memoize builds a drop-in memoizing cache on top of depmemo's
// tracing and matching primitives: TTL-bounded entries, an opt-in
// errgroup-friendly benchmarking surface (see cmd/depmemo-bench), and
// concurrent-call coalescing via golang.org/x/sync/singleflight so that
// two goroutines racing to fill the same cache slot only run the
// underlying function once.
package memoize

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mpyw/depmemo"
)

// Cache memoizes the result of calling a function against arguments,
// keyed by the pattern of property accesses the function performs against
// its argument rather than the argument's identity or full structural
// equality. V is the memoized result type.
type Cache[V any] struct {
	mu    sync.Mutex
	tree  *depmemo.Tree
	group singleflight.Group
	opts  *options
}

type entry[V any] struct {
	value      V
	err        error
	insertedAt time.Time
}

// New returns an empty Cache configured by ops.
func New[V any](ops ...Option) *Cache[V] {
	return &Cache[V]{
		tree: depmemo.NewTree(),
		opts: newOptions(ops),
	}
}

// Call returns the cached result of fn(view) for an argument compatible
// with one already seen, running fn and recording its access pattern on a
// miss. Concurrent calls sharing the same argument identity are coalesced
// via singleflight: only one of them actually invokes fn.
//
// fn receives the traced View rather than arg directly; it must read
// through the view (not close over arg) for the recorded Imprint to
// reflect what it actually used.
func (c *Cache[V]) Call(arg any, fn func(view *depmemo.View) (V, error)) (V, error) {
	if value, err, ok := c.lookup(arg, true); ok {
		return value, err
	}

	shared, err, _ := c.group.Do(coalesceKey(arg), func() (any, error) {
		// Re-check under the singleflight key: another goroutine may have
		// just inserted a compatible entry while we were waiting to enter
		// group.Do. An expired entry found here was already reported to
		// onEvict by the lookup above, so it is not reported again.
		if value, ferr, ok := c.lookup(arg, false); ok {
			return value, ferr
		}

		view, finalize, traceErr := depmemo.Trace(arg)
		if traceErr != nil {
			return *new(V), traceErr
		}
		value, callErr := fn(view)
		imp := finalize()

		if callErr == nil || c.opts.cacheErrors {
			c.store(imp, entry[V]{value: value, err: callErr, insertedAt: now()})
		}
		return value, callErr
	})
	return shared.(V), err
}

func (c *Cache[V]) lookup(arg any, notifyEvict bool) (value V, err error, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, lookupErr := c.tree.Lookup(arg)
	if lookupErr != nil {
		return value, nil, false
	}
	e := raw.(entry[V])
	if c.opts.ttl > 0 && now().Sub(e.insertedAt) > c.opts.ttl {
		if notifyEvict && c.opts.onEvict != nil {
			c.opts.onEvict(e.value)
		}
		return value, nil, false
	}
	return e.value, e.err, true
}

func (c *Cache[V]) store(imp *depmemo.Imprint, e entry[V]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tree.Insert(imp, e)
}

// coalesceKey derives a singleflight key from arg. Pointer-shaped
// arguments are keyed by pointer identity, since that is what two racing
// calls sharing a cache miss actually have in common; everything else
// falls back to a formatted value. This only affects how aggressively
// concurrent misses are coalesced - correctness of what gets cached and
// returned comes entirely from the Imprint tree, not from this key.
func coalesceKey(arg any) string {
	v := reflect.ValueOf(arg)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		if v.IsNil() {
			return "nil"
		}
		return fmt.Sprintf("%d", v.Pointer())
	default:
		return fmt.Sprintf("%#v", arg)
	}
}

var nowFunc = time.Now

func now() time.Time {
	return nowFunc()
}
