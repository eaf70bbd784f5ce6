package tracer

import (
	"errors"
	"testing"

	"github.com/mpyw/depmemo/internal/imprint"
)

func TestTraceRejectsInvalidTargets(t *testing.T) {
	for _, v := range []any{nil, 1, "s"} {
		if _, _, err := Trace(v); !errors.Is(err, ErrInvalidTarget) {
			t.Errorf("Trace(%#v) err = %v, want ErrInvalidTarget", v, err)
		}
	}
}

// S1 — primitive tracking.
func TestScenarioS1PrimitiveTracking(t *testing.T) {
	root := map[string]any{"b": 1, "c": map[string]any{"d": 1, "e": 2}}
	view, finalize, err := Trace(root)
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}

	bv, _ := view.Get("b")
	if bv != 1 {
		t.Fatalf("root.b = %v, want 1", bv)
	}
	cv, _ := view.Get("c")
	c, ok := cv.(*View)
	if !ok {
		t.Fatalf("root.c should be a *View, got %T", cv)
	}
	dv, _ := c.Get("d")
	if dv != 1 {
		t.Fatalf("root.c.d = %v, want 1", dv)
	}

	im := finalize()
	if im.Read["b"].Primitive != 1 {
		t.Errorf("imprint.Read[b] = %+v, want primitive 1", im.Read["b"])
	}
	cEntry := im.Read["c"]
	if !cEntry.IsNested {
		t.Fatalf("imprint.Read[c] should be nested")
	}
	if cEntry.Nested.Read["d"].Primitive != 1 {
		t.Errorf("imprint.Read[c].Nested.Read[d] = %+v, want primitive 1", cEntry.Nested.Read["d"])
	}
	if _, ok := cEntry.Nested.Read["e"]; ok {
		t.Error("e was never read and must not appear in the imprint")
	}
	if im.Has != nil || im.OwnKeys != nil {
		t.Error("no has/ownKeys observations were made at the root")
	}
}

// S2 — has tracking.
func TestScenarioS2HasTracking(t *testing.T) {
	root := map[string]any{"b": 1, "c": map[string]any{"d": 1, "e": 2}}
	view, finalize, _ := Trace(root)

	view.Has("b")
	cv, _ := view.Get("c")
	c := cv.(*View)
	c.Has("x")

	im := finalize()
	if im.Has["b"] != true {
		t.Errorf("imprint.Has[b] = %v, want true", im.Has["b"])
	}
	if im.Read["c"].Nested.Has["x"] != false {
		t.Errorf("imprint.Read[c].Nested.Has[x] = %v, want false", im.Read["c"].Nested.Has["x"])
	}
}

// S3 — ownKeys.
func TestScenarioS3OwnKeys(t *testing.T) {
	root := map[string]any{"c": map[string]any{"d": 0, "e": 0}}
	view, finalize, _ := Trace(root)

	cv, _ := view.Get("c")
	c := cv.(*View)
	c.Keys()

	im := finalize()
	got := im.Read["c"].Nested.OwnKeys
	want := []imprint.Key{"d", "e"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("ownKeys = %v, want %v", got, want)
	}
}

// S4 — shared sub-object reached via distinct paths is path-sensitive.
func TestScenarioS4PathSensitivity(t *testing.T) {
	shared := map[string]any{"x": 1, "y": 2}
	root := map[string]any{"p": shared, "q": shared}
	view, finalize, _ := Trace(root)

	pv, _ := view.Get("p")
	p := pv.(*View)
	p.Get("x")

	qv, _ := view.Get("q")
	q := qv.(*View)
	q.Get("y")

	im := finalize()
	pImp := im.Read["p"].Nested
	qImp := im.Read["q"].Nested

	if pImp == qImp {
		t.Fatal("p and q reach the same underlying object but must have independent child imprints")
	}
	if _, ok := pImp.Read["x"]; !ok {
		t.Error("p.x was read and must appear under p's imprint")
	}
	if _, ok := pImp.Read["y"]; ok {
		t.Error("p.y was never read and must not appear under p's imprint")
	}
	if _, ok := qImp.Read["y"]; !ok {
		t.Error("q.y was read and must appear under q's imprint")
	}
	if _, ok := qImp.Read["x"]; ok {
		t.Error("q.x was never read and must not appear under q's imprint")
	}
}

func TestViewStabilityAcrossRepeatedReads(t *testing.T) {
	root := map[string]any{"c": map[string]any{"d": 1}}
	view, _, _ := Trace(root)

	v1, _ := view.Get("c")
	v2, _ := view.Get("c")
	if v1 != v2 {
		t.Error("repeated reads of the same key must return an identity-equal view")
	}
}

func TestWriteShapedOperationsAreUnsupported(t *testing.T) {
	root := map[string]any{"b": 1}
	view, _, _ := Trace(root)

	if err := view.Set("b", 2); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Set err = %v, want ErrUnsupported", err)
	}
	if err := view.Delete("b"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Delete err = %v, want ErrUnsupported", err)
	}
}

func TestFinalizeDisablesFurtherRecording(t *testing.T) {
	root := map[string]any{"b": 1, "c": map[string]any{"d": 1}}
	view, finalize, _ := Trace(root)

	view.Get("b")
	im := finalize()
	beforeLen := len(im.Read)

	// Further reads must still forward a value but not record it.
	if v, ok := view.Get("c"); !ok {
		t.Fatal("disabled view should still forward reads")
	} else if _, isView := v.(*View); isView {
		t.Error("disabled Get should return the raw value, not a wrapped View")
	}
	if len(im.Read) != beforeLen {
		t.Error("reads made after finalize must not mutate the frozen imprint")
	}
}

func TestCtorIsRecordedPerNode(t *testing.T) {
	type widget struct{ N int }
	root := map[string]any{"w": widget{N: 1}}
	view, finalize, _ := Trace(root)

	wv, _ := view.Get("w")
	w := wv.(*View)
	w.Has("anything") // an observation on the nested view; its ctor was recorded when the view was created

	im := finalize()
	wImp := im.Read["w"].Nested
	if wImp.Ctor == nil {
		t.Fatal("expected a ctor handle to be recorded for the nested struct")
	}
	if typ, live := wImp.Ctor.Live(); !live || typ.Name() != "widget" {
		t.Errorf("ctor handle = (%v, %v), want live widget type", typ, live)
	}
}
