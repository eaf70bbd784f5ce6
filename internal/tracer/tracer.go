// Package tracer wraps a root value in interceptors that record every
// property read, existence probe, and key enumeration performed through
// them into a per-path Imprint tree, then freezes that tree on demand.
//
// This is the mechanism half of the design: the tracer does not decide
// what a "pattern of access" means for caching purposes (package matcher
// does that) nor how many such patterns a process accumulates (package
// imprinttree does that). It only answers "what did this call actually
// touch".
package tracer

import (
	"errors"
	"fmt"

	"github.com/mpyw/depmemo/internal/access"
	"github.com/mpyw/depmemo/internal/imprint"
)

// ErrInvalidTarget is returned by Trace when root is nil or not something
// the tracer can wrap: not an Accessible, a struct, a map, or a pointer to
// either.
var ErrInvalidTarget = errors.New("tracer: invalid trace target")

// ErrUnsupported is returned by every write-shaped method a View exposes
// (Set, Delete). The tracer models read-only access only; mutating an
// argument mid-call is a programming error in the memoized function, not
// something the tracer can record a meaningful imprint for.
var ErrUnsupported = errors.New("tracer: write-shaped operation is not supported during tracing")

// Accessible lets a caller's type take full control of what tracing a
// value means for it. It is a re-export of access.Accessible so consumers
// of this package never need to import the internal/access package
// directly.
type Accessible = access.Accessible

// state is shared by every View created under one Trace call. Finalize
// flips disabled once, which every descendant View observes on its next
// access, rather than the tracer having to walk the (potentially large)
// view tree to disable each one individually.
type state struct {
	disabled bool
}

// View is the interception handle Trace hands back. It behaves
// observationally like the value it wraps for reads, has-probes, and key
// enumeration, and records each one into the Imprint node it owns.
type View struct {
	st       *state
	backend  access.Backend
	node     *imprint.Imprint
	children map[imprint.Key]*View
}

// Trace wraps root and returns a read-only view over it plus a finalize
// function. finalize must be called exactly once, when the caller is done
// reading through view; it freezes and returns the recorded Imprint and
// permanently stops further recording by every View created under this
// call.
//
// root must be non-nil and traceable (an Accessible, a struct, a map, or a
// pointer to either); otherwise Trace returns ErrInvalidTarget.
func Trace(root any) (view *View, finalize func() *imprint.Imprint, err error) {
	if root == nil {
		return nil, nil, ErrInvalidTarget
	}
	st := &state{}
	node := imprint.New()
	v, err := newView(st, root, node)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidTarget, err)
	}
	finalize = func() *imprint.Imprint {
		st.disabled = true
		return node.Freeze()
	}
	return v, finalize, nil
}

func newView(st *state, val any, node *imprint.Imprint) (*View, error) {
	backend, resolved, err := access.Wrap(val)
	if err != nil {
		return nil, err
	}
	node.SetCtor(imprint.NewCtorHandle(resolved))
	return &View{st: st, backend: backend, node: node}, nil
}

// Get reads key, returning the same View for repeated reads of a key that
// yields an object (view stability), or the raw value for a key that
// yields a primitive. While tracing is active, object-valued reads are
// additionally recorded into a stable per-key child Imprint node, and a
// read of an absent key is recorded as a has-probe that returned false;
// once finalized, Get simply forwards to the underlying value without
// recording or re-wrapping.
func (v *View) Get(key imprint.Key) (any, bool) {
	val, ok := v.backend.Get(key)
	if !ok {
		if !v.st.disabled {
			v.node.SetHas(key, false)
		}
		return val, false
	}
	if v.st.disabled {
		return val, true
	}
	if !access.IsObject(val) {
		v.node.SetRead(key, imprint.NewPrimitiveEntry(val))
		return val, true
	}

	if child, ok := v.children[key]; ok {
		return child, true
	}

	childNode := v.node.ChildRead(key)
	child, err := newView(v.st, val, childNode)
	if err != nil {
		// access.IsObject already screened val; this should not happen in
		// practice, but degrade to recording the raw value rather than
		// panicking or silently dropping the observation.
		v.node.SetRead(key, imprint.NewPrimitiveEntry(val))
		return val, true
	}
	if v.children == nil {
		v.children = make(map[imprint.Key]*View)
	}
	v.children[key] = child
	return child, true
}

// Has probes key's existence and records the observed boolean.
func (v *View) Has(key imprint.Key) bool {
	exists := v.backend.Has(key)
	if !v.st.disabled {
		v.node.SetHas(key, exists)
	}
	return exists
}

// Keys enumerates the full own-key set and records it verbatim, in
// observed order.
func (v *View) Keys() []imprint.Key {
	keys := v.backend.Keys()
	if !v.st.disabled {
		v.node.SetOwnKeys(keys)
	}
	return append([]imprint.Key(nil), keys...)
}

// Set always fails: the tracer does not model writes. See ErrUnsupported.
func (v *View) Set(imprint.Key, any) error {
	return ErrUnsupported
}

// Delete always fails: the tracer does not model writes. See ErrUnsupported.
func (v *View) Delete(imprint.Key) error {
	return ErrUnsupported
}
