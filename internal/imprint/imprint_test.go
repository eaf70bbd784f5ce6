package imprint

import (
	"math"
	"reflect"
	"runtime"
	"testing"
)

func TestChildReadIsStablePerKey(t *testing.T) {
	root := New()
	c1 := root.ChildRead("c")
	c2 := root.ChildRead("c")
	if c1 != c2 {
		t.Fatal("ChildRead should return the same nested Imprint for repeated reads of the same key")
	}
}

func TestChildReadPromotesPrimitiveToNested(t *testing.T) {
	root := New()
	root.SetRead("x", NewPrimitiveEntry(1))
	child := root.ChildRead("x")
	if child == nil {
		t.Fatal("expected ChildRead to promote a primitive entry to nested")
	}
	entry := root.Read["x"]
	if !entry.IsNested || entry.Nested != child {
		t.Fatal("promoted entry should be nested and reference the same child")
	}
}

func TestFreezeElidesEmptyContainers(t *testing.T) {
	root := New()
	root.SetRead("b", NewPrimitiveEntry(1))
	c := root.ChildRead("c")
	c.SetRead("d", NewPrimitiveEntry(1))

	root.Freeze()

	if root.Has != nil {
		t.Error("unused Has map should be nil after Freeze")
	}
	if c.Has != nil {
		t.Error("unused nested Has map should be nil after Freeze")
	}
	if root.Read == nil || root.Read["b"].Primitive != 1 {
		t.Error("non-empty Read must survive Freeze")
	}
}

func TestFreezeIsIdempotent(t *testing.T) {
	root := New()
	root.SetHas("b", true)
	root.Freeze()
	if !root.Frozen() {
		t.Fatal("expected Frozen() true after Freeze")
	}
	root.Freeze() // must not panic or alter state
	if root.Has["b"] != true {
		t.Error("second Freeze call must not mutate state")
	}
}

func TestIsEmpty(t *testing.T) {
	if !IsEmpty(nil) {
		t.Error("nil imprint should be empty")
	}
	if !IsEmpty(New()) {
		t.Error("fresh imprint with no observations should be empty")
	}
	withRead := New()
	withRead.SetRead("x", NewPrimitiveEntry(1))
	if IsEmpty(withRead) {
		t.Error("imprint with a read should not be empty")
	}
}

func TestPrimitiveEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"equal ints", 1, 1, true},
		{"different ints", 1, 2, false},
		{"equal strings", "x", "x", true},
		{"different types", 1, "1", false},
		{"NaN never equal", math.NaN(), math.NaN(), false},
		{"both nil", nil, nil, true},
		{"one nil", nil, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PrimitiveEqual(tt.a, tt.b); got != tt.want {
				t.Errorf("PrimitiveEqual(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCtorHandleEqualAcrossInstances(t *testing.T) {
	type widget struct{ X int }
	h1 := NewCtorHandle(widget{X: 1})
	h2 := NewCtorHandle(widget{X: 2})
	if !h1.Equal(h2) {
		t.Error("two handles for the same type should be Equal regardless of value")
	}
}

func TestCtorHandleDeadAfterEviction(t *testing.T) {
	restore := SetInternCapacityForTest(1)
	defer restore()

	type ephemeral struct{}
	type other struct{}

	h := NewCtorHandle(ephemeral{})
	if _, live := h.Live(); !live {
		t.Fatal("handle should be live immediately after creation")
	}

	// Interning a second, distinct type evicts ephemeral's token (capacity
	// is 1); a forced collection lets the weak pointer observe it.
	ctorIntern.intern(reflect.TypeOf(other{}))
	runtime.GC()
	runtime.GC()

	if _, live := h.Live(); live {
		t.Skip("GC did not reclaim the evicted token within this run; eviction path was still exercised")
	}
}
