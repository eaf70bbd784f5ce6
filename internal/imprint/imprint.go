// Package imprint defines the recursive record of property-access
// observations the tracer records and the matcher and tree later consume.
//
// An Imprint is the pattern of reads, existence probes, and key enumerations
// performed against a single object during one traced call. It says nothing
// about the object's full shape, only the slice of it a computation actually
// touched.
package imprint

import (
	"reflect"
)

// Key identifies a property slot on a traced value: a struct field name, a
// map key, or anything else a caller's Accessible implementation chooses to
// use. It must be comparable, since it is used as a map key throughout.
type Key any

// ReadEntry is what a single Read observation recorded: either a primitive
// value, or a nested Imprint describing the sub-accesses made through that
// key. Exactly one of the two is meaningful, selected by IsNested.
type ReadEntry struct {
	Primitive any
	Nested    *Imprint
	IsNested  bool
}

// NewPrimitiveEntry wraps a primitive value as a ReadEntry.
func NewPrimitiveEntry(v any) ReadEntry {
	return ReadEntry{Primitive: v}
}

// NewNestedEntry wraps a child Imprint as a ReadEntry.
func NewNestedEntry(child *Imprint) ReadEntry {
	return ReadEntry{Nested: child, IsNested: true}
}

// Imprint is a recursive record of the accesses made against one object.
//
// A freshly allocated Imprint is mutable and grows as the tracer records
// reads, has-probes, and key enumerations; Freeze sanitizes it and, from
// that point on, it is treated as immutable (see package tracer and
// package imprinttree for the two owners across its lifetime).
type Imprint struct {
	Ctor    *CtorHandle
	Read    map[Key]ReadEntry
	Has     map[Key]bool
	OwnKeys []Key

	frozen bool
}

// New returns an empty, mutable Imprint.
func New() *Imprint {
	return &Imprint{}
}

// SetCtor records the constructor observed on the object this node
// describes. Calling it more than once simply replaces the handle, matching
// the "last observed value wins" rule applied to every other field.
func (im *Imprint) SetCtor(h *CtorHandle) {
	im.Ctor = h
}

// SetRead records that key was read and yielded entry, overwriting any
// previous observation for key (re-reading a key is idempotent).
func (im *Imprint) SetRead(key Key, entry ReadEntry) {
	if im.Read == nil {
		im.Read = make(map[Key]ReadEntry)
	}
	im.Read[key] = entry
}

// ChildRead returns the nested Imprint for key, allocating and recording one
// on first call. Subsequent calls for the same key return the same pointer,
// which is what lets the tracer hand back an identity-stable View for
// repeated sub-reads of the same property.
//
// If key was previously recorded as a primitive, it is promoted to a nested
// entry: the last observed value wins, and this call is what observes it.
func (im *Imprint) ChildRead(key Key) *Imprint {
	if entry, ok := im.Read[key]; ok && entry.IsNested {
		return entry.Nested
	}
	child := &Imprint{}
	im.SetRead(key, NewNestedEntry(child))
	return child
}

// SetHas records that key's existence was probed and returned exists.
func (im *Imprint) SetHas(key Key, exists bool) {
	if im.Has == nil {
		im.Has = make(map[Key]bool)
	}
	im.Has[key] = exists
}

// SetOwnKeys records the full own-key enumeration, in observed order,
// overwriting any previous enumeration.
func (im *Imprint) SetOwnKeys(keys []Key) {
	im.OwnKeys = append([]Key(nil), keys...)
}

// Frozen reports whether Freeze has already run on this node.
func (im *Imprint) Frozen() bool {
	return im.frozen
}

// Freeze sanitizes the imprint tree rooted at im: empty Read/Has containers
// are elided to nil, and every nested child is frozen recursively. It is
// idempotent and safe to call more than once.
func (im *Imprint) Freeze() *Imprint {
	if im.frozen {
		return im
	}
	im.frozen = true
	for _, entry := range im.Read {
		if entry.IsNested {
			entry.Nested.Freeze()
		}
	}
	if len(im.Read) == 0 {
		im.Read = nil
	}
	if len(im.Has) == 0 {
		im.Has = nil
	}
	return im
}

// IsEmpty reports whether im carries no observations at all: no ctor, no
// reads, no has-probes, no own-key enumeration. split uses this to elide an
// empty remainder to nil rather than returning a vacuous Imprint.
func IsEmpty(im *Imprint) bool {
	return im == nil || (im.Ctor == nil && len(im.Read) == 0 && len(im.Has) == 0 && im.OwnKeys == nil)
}

// PrimitiveEqual decides whether two recorded primitive values are equal,
// the way the matcher and split need: value equality for comparable values,
// NaN-compares-unequal by virtue of Go's own equality semantics, and false
// (rather than a panic) for values of differing or non-comparable types.
func PrimitiveEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}
