// Package explain produces a human-readable reason a lookup missed: which
// single observation in a stored Imprint disagreed with the candidate
// value. It mirrors package matcher's rule order exactly, so whatever
// Match would have rejected first is exactly what Explain reports.
//
// This is diagnostic-only: nothing in the hot lookup path depends on it,
// matching the teacher's own debug package, which sits beside the
// production analysis path rather than inside it.
package explain

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mpyw/depmemo/internal/access"
	"github.com/mpyw/depmemo/internal/imprint"
)

// Reason classifies which kind of observation first disagreed.
type Reason int

const (
	// ReasonMatched means there was no disagreement; Explain returns nil in
	// this case, but the zero value is named for completeness.
	ReasonMatched Reason = iota
	// ReasonNotAnObject means the candidate is not a value a tracer could
	// have wrapped at all (nil, a primitive, or an unsupported type).
	ReasonNotAnObject
	// ReasonCtorMismatch means the recorded constructor is still live and
	// disagrees with the candidate's dynamic type.
	ReasonCtorMismatch
	// ReasonHasMismatch means a recorded has-probe disagrees.
	ReasonHasMismatch
	// ReasonOwnKeysMismatch means the recorded key enumeration disagrees,
	// either in length or in order.
	ReasonOwnKeysMismatch
	// ReasonReadMismatch means a recorded read disagrees: a missing key, a
	// differing primitive, or (recursively) a nested mismatch.
	ReasonReadMismatch
)

func (r Reason) String() string {
	switch r {
	case ReasonNotAnObject:
		return "not an object"
	case ReasonCtorMismatch:
		return "constructor mismatch"
	case ReasonHasMismatch:
		return "has-probe mismatch"
	case ReasonOwnKeysMismatch:
		return "own-keys mismatch"
	case ReasonReadMismatch:
		return "read mismatch"
	default:
		return "matched"
	}
}

// Report describes the first point of disagreement found while comparing
// an Imprint against a candidate object, walking from the root down through
// any nested path that led to the mismatch.
type Report struct {
	Reason Reason
	Path   []imprint.Key // the nested-read path from the root to the disagreement, if any
	Key    imprint.Key   // the specific key involved, if any
	Want   any
	Got    any
}

// String renders a one-line, human-readable summary of the mismatch.
func (r *Report) String() string {
	if r == nil {
		return "matched"
	}
	var buf strings.Builder
	fmt.Fprintf(&buf, "%s", r.Reason)
	if len(r.Path) > 0 || r.Key != nil {
		fmt.Fprint(&buf, " at ")
		for _, p := range r.Path {
			fmt.Fprintf(&buf, "%v.", p)
		}
		if r.Key != nil {
			fmt.Fprintf(&buf, "%v", r.Key)
		}
	}
	if r.Reason != ReasonNotAnObject {
		fmt.Fprintf(&buf, " (want %#v, got %#v)", r.Want, r.Got)
	}
	return buf.String()
}

// Explain reports why obj does not match imp, or nil if it does. It walks
// the same rules as matcher.Match, in the same order, stopping at the
// first disagreement.
func Explain(imp *imprint.Imprint, obj any) *Report {
	return explainAt(imp, obj, nil)
}

func explainAt(imp *imprint.Imprint, obj any, path []imprint.Key) *Report {
	if obj == nil {
		return &Report{Reason: ReasonNotAnObject, Path: path}
	}
	backend, resolved, err := access.Wrap(obj)
	if err != nil {
		return &Report{Reason: ReasonNotAnObject, Path: path}
	}
	if imp == nil {
		return nil
	}

	if imp.Ctor != nil {
		if typ, live := imp.Ctor.Live(); live {
			if actual := reflect.TypeOf(resolved); actual != typ {
				return &Report{Reason: ReasonCtorMismatch, Path: path, Want: typ, Got: actual}
			}
		}
	}

	for key, expected := range imp.Has {
		if actual := backend.Has(key); actual != expected {
			return &Report{Reason: ReasonHasMismatch, Path: path, Key: key, Want: expected, Got: actual}
		}
	}

	if imp.OwnKeys != nil {
		actual := backend.Keys()
		if len(actual) != len(imp.OwnKeys) {
			return &Report{Reason: ReasonOwnKeysMismatch, Path: path, Want: imp.OwnKeys, Got: actual}
		}
		for i, k := range imp.OwnKeys {
			if actual[i] != k {
				return &Report{Reason: ReasonOwnKeysMismatch, Path: path, Want: imp.OwnKeys, Got: actual}
			}
		}
	}

	for key, entry := range imp.Read {
		actual, ok := backend.Get(key)
		if entry.IsNested {
			if !ok {
				return &Report{Reason: ReasonReadMismatch, Path: path, Key: key, Want: "present", Got: "absent"}
			}
			if sub := explainAt(entry.Nested, actual, append(append([]imprint.Key(nil), path...), key)); sub != nil {
				return sub
			}
			continue
		}
		if !ok {
			return &Report{Reason: ReasonReadMismatch, Path: path, Key: key, Want: entry.Primitive, Got: "absent"}
		}
		if !imprint.PrimitiveEqual(actual, entry.Primitive) {
			return &Report{Reason: ReasonReadMismatch, Path: path, Key: key, Want: entry.Primitive, Got: actual}
		}
	}

	return nil
}
