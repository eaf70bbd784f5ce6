// Package access provides the capability-interface-or-reflect duality the
// tracer and matcher both need to read an arbitrary Go value as a keyed
// object: a Get/Has/Keys surface, regardless of whether the value is a
// caller-supplied Accessible, a struct, or a map.
//
// Go has no object-interception primitive equivalent to a language-level
// Proxy. This package is the fallback the design notes in SPEC_FULL.md §9
// describe: callers who want a custom notion of "property" implement
// Accessible directly; everything else is walked through reflect.
package access

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/mpyw/depmemo/internal/imprint"
)

// Accessible is the small capability interface a caller's type can
// implement to take full control over what counts as a property access.
type Accessible interface {
	Get(key imprint.Key) (value any, ok bool)
	Has(key imprint.Key) bool
	Keys() []imprint.Key
}

// ErrNotAnObject is returned by Wrap when a value is nil or not something
// the tracer/matcher can treat as a keyed object (Accessible, a struct, a
// map, or a pointer to either).
var ErrNotAnObject = errors.New("access: value is not an object")

// Backend is the uniform read surface Wrap produces.
type Backend interface {
	Get(key imprint.Key) (any, bool)
	Has(key imprint.Key) bool
	Keys() []imprint.Key
}

// IsObject reports whether val would succeed if passed to Wrap, without
// allocating a Backend for it.
func IsObject(val any) bool {
	if val == nil {
		return false
	}
	if _, ok := val.(Accessible); ok {
		return true
	}
	rv := reflect.ValueOf(val)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct, reflect.Map:
		return true
	default:
		return false
	}
}

// Wrap returns a Backend for val, plus the dereferenced value a caller can
// use to derive a constructor handle from (see imprint.NewCtorHandle).
//
// Arrays and slices are deliberately out of scope: the data model this
// package serves is keyed-property access (struct fields, map entries),
// not positional indexing.
func Wrap(val any) (backend Backend, resolved any, err error) {
	if val == nil {
		return nil, nil, ErrNotAnObject
	}
	if acc, ok := val.(Accessible); ok {
		return accessibleBackend{acc}, val, nil
	}

	rv := reflect.ValueOf(val)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, nil, ErrNotAnObject
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		return structBackend{v: rv}, rv.Interface(), nil
	case reflect.Map:
		return mapBackend{v: rv}, rv.Interface(), nil
	default:
		return nil, nil, ErrNotAnObject
	}
}

type accessibleBackend struct{ acc Accessible }

func (b accessibleBackend) Get(key imprint.Key) (any, bool) { return b.acc.Get(key) }
func (b accessibleBackend) Has(key imprint.Key) bool        { return b.acc.Has(key) }
func (b accessibleBackend) Keys() []imprint.Key             { return b.acc.Keys() }

// structBackend treats a struct's exported fields as its keyed properties.
// Every declared exported field "exists" - Go structs have a fixed shape,
// unlike JS objects, so Has is trivially true for any declared field name.
// Keys returns declared field order, which is fixed at compile time and is
// the Go analogue of stable key-insertion order.
type structBackend struct{ v reflect.Value }

func (b structBackend) fields() []reflect.StructField {
	return reflect.VisibleFields(b.v.Type())
}

func (b structBackend) Get(key imprint.Key) (any, bool) {
	name, ok := key.(string)
	if !ok {
		return nil, false
	}
	for _, f := range b.fields() {
		if f.IsExported() && f.Name == name {
			return b.v.FieldByIndex(f.Index).Interface(), true
		}
	}
	return nil, false
}

func (b structBackend) Has(key imprint.Key) bool {
	_, ok := b.Get(key)
	return ok
}

func (b structBackend) Keys() []imprint.Key {
	fields := b.fields()
	keys := make([]imprint.Key, 0, len(fields))
	for _, f := range fields {
		if f.IsExported() {
			keys = append(keys, imprint.Key(f.Name))
		}
	}
	return keys
}

// mapBackend treats map entries as keyed properties. Go maps carry no
// iteration order, unlike the JS objects spec.md models; Keys reports a
// sorted, deterministic order as the closest Go analogue (see SPEC_FULL.md
// §3 for the rationale).
type mapBackend struct{ v reflect.Value }

func (b mapBackend) keyValue(key imprint.Key) (reflect.Value, bool) {
	kv := reflect.ValueOf(key)
	if !kv.IsValid() || !kv.Type().AssignableTo(b.v.Type().Key()) {
		return reflect.Value{}, false
	}
	return kv, true
}

func (b mapBackend) Get(key imprint.Key) (any, bool) {
	kv, ok := b.keyValue(key)
	if !ok {
		return nil, false
	}
	mv := b.v.MapIndex(kv)
	if !mv.IsValid() {
		return nil, false
	}
	return mv.Interface(), true
}

func (b mapBackend) Has(key imprint.Key) bool {
	kv, ok := b.keyValue(key)
	if !ok {
		return false
	}
	return b.v.MapIndex(kv).IsValid()
}

func (b mapBackend) Keys() []imprint.Key {
	mapKeys := b.v.MapKeys()
	keys := make([]imprint.Key, 0, len(mapKeys))
	for _, k := range mapKeys {
		keys = append(keys, k.Interface())
	}
	slices.SortFunc(keys, func(a, b imprint.Key) int {
		return strings.Compare(sortKey(a), sortKey(b))
	})
	return keys
}

// sortKey gives any comparable key a total order for deterministic
// enumeration. It need not be meaningful, only stable and consistent.
func sortKey(k imprint.Key) string {
	if s, ok := k.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", k)
}
