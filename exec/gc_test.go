package exec

import (
	"testing"

	"github.com/mayhemheroes/asteria/gc"
	"github.com/mayhemheroes/asteria/value"
)

// TestCycleCollectionReclaimsClosures grounds spec.md §8 scenario 4 in
// the one way the value model actually forms a reference cycle: two
// closures declared in the same block, each returning the other,
// mutually reachable through their shared captured context once that
// block's own binding hold is released at function return.
func TestCycleCollectionReclaimsClosures(t *testing.T) {
	interp := NewInterpreter()
	q := compile(t, `
		func make() {
			var fa;
			var fb;
			fa = func() { return fb; };
			fb = func() { return fa; };
		}
		make();
	`)
	if _, exc := interp.Run(q); exc != nil {
		t.Fatalf("unexpected exception: %s", exc.Error())
	}
	n := interp.GC.CollectGeneration(gc.Newest)
	if n < 2 {
		t.Fatalf("expected the unreachable closure cycle collected, got %d", n)
	}
}

func TestObjectLiteralAndMerge(t *testing.T) {
	got := mustRun(t, `
		var a = {x: 1, y: 2};
		var b = {y: 3, z: 4};
		return a + b;
	`)
	want := value.NewObject([]string{"x", "y", "z"}, []value.Value{value.Int(1), value.Int(3), value.Int(4)})
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
