// Package matcher decides whether a fresh value is compatible with a
// previously recorded Imprint: whether repeating the same reads against it
// would observe the same primitives and the same shape.
package matcher

import (
	"reflect"

	"github.com/mpyw/depmemo/internal/access"
	"github.com/mpyw/depmemo/internal/imprint"
)

// Match reports whether obj is compatible with imp, evaluating spec's five
// rules in order and short-circuiting to false on the first disagreement.
// A nil imprint (no observations at all) matches anything that is itself a
// valid object.
func Match(imp *imprint.Imprint, obj any) bool {
	if obj == nil {
		return false
	}
	backend, resolved, err := access.Wrap(obj)
	if err != nil {
		return false
	}
	if imp == nil {
		return true
	}

	if imp.Ctor != nil {
		if typ, live := imp.Ctor.Live(); live {
			if reflect.TypeOf(resolved) != typ {
				return false
			}
		}
	}

	for key, expected := range imp.Has {
		if backend.Has(key) != expected {
			return false
		}
	}

	if imp.OwnKeys != nil {
		actual := backend.Keys()
		if len(actual) != len(imp.OwnKeys) {
			return false
		}
		for i, k := range imp.OwnKeys {
			if actual[i] != k {
				return false
			}
		}
	}

	for key, entry := range imp.Read {
		actual, ok := backend.Get(key)
		if entry.IsNested {
			if !ok || !Match(entry.Nested, actual) {
				return false
			}
			continue
		}
		if !ok || !imprint.PrimitiveEqual(actual, entry.Primitive) {
			return false
		}
	}

	return true
}
