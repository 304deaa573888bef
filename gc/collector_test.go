package gc

import (
	"testing"

	"github.com/mayhemheroes/asteria/value"
)

// closureCycle wires two Variables into a mutual reference cycle the only
// way the value model allows one to form: each holds a Func whose captured
// Context binds a name to the other Variable (spec.md §8 scenario 4).
// Binding a Variable into a captured Context is a durable hold, so — the
// way exec would at the point of capture — each bind increments the
// bound-to Variable's Refcount.
func closureCycle(c *Collector) (a, b *value.Variable) {
	a = c.CreateVariable(value.Null{}, Newest)
	b = c.CreateVariable(value.Null{}, Newest)

	actx := value.NewContext(value.ExecutiveContextKind, nil)
	actx.Declare("other", b)
	b.Refcount++
	a.Set(value.Func{Name: "fa", Captured: actx, Body: value.NativeFunc(nil)})

	bctx := value.NewContext(value.ExecutiveContextKind, nil)
	bctx.Declare("other", a)
	a.Refcount++
	b.Set(value.Func{Name: "fb", Captured: bctx, Body: value.NativeFunc(nil)})

	return a, b
}

func TestCollectGenerationReclaimsUnreferencedCycle(t *testing.T) {
	c := New()
	closureCycle(c)

	n := c.CollectGeneration(Newest)
	if n != 2 {
		t.Fatalf("expected both cycle members collected, got %d", n)
	}
	if c.CountTracked(Newest) != 0 {
		t.Fatalf("expected generation empty after collecting the cycle, got %d tracked", c.CountTracked(Newest))
	}
	if c.CountPooled() != 2 {
		t.Fatalf("expected 2 variables returned to the pool, got %d", c.CountPooled())
	}
}

func TestCollectGenerationRescuesReachableCycle(t *testing.T) {
	c := New()
	a, _ := closureCycle(c)
	a.Refcount++ // an external holder keeps the whole cycle alive

	n := c.CollectGeneration(Newest)
	if n != 0 {
		t.Fatalf("expected the externally-held cycle to survive, got %d collected", n)
	}
	if c.CountTracked(Middle) != 2 {
		t.Fatalf("expected both cycle members still tracked, promoted into Middle, got %d", c.CountTracked(Middle))
	}
}

func TestCollectGenerationReclaimsIsolatedVariable(t *testing.T) {
	c := New()
	c.CreateVariable(value.Int(42), Newest)

	n := c.CollectGeneration(Newest)
	if n != 1 {
		t.Fatalf("expected the unreferenced variable collected, got %d", n)
	}
}

func TestCollectGenerationPromotesSurvivors(t *testing.T) {
	c := New()
	v := c.CreateVariable(value.Int(1), Newest)
	v.Refcount++ // held by something outside this generation

	n := c.CollectGeneration(Newest)
	if n != 0 {
		t.Fatalf("expected the held variable to survive, got %d collected", n)
	}
	if c.CountTracked(Newest) != 0 {
		t.Fatalf("expected the survivor promoted out of Newest, got %d still there", c.CountTracked(Newest))
	}
	if c.CountTracked(Middle) != 1 {
		t.Fatalf("expected the survivor promoted into Middle, got %d", c.CountTracked(Middle))
	}
	if v.Generation != int(Middle) {
		t.Fatalf("expected v.Generation updated to Middle, got %d", v.Generation)
	}
}

func TestCollectGenerationDoesNotPromoteFromOldest(t *testing.T) {
	c := New()
	v := c.CreateVariable(value.Int(1), Oldest)
	v.Refcount++

	n := c.CollectGeneration(Oldest)
	if n != 0 {
		t.Fatalf("expected the held variable to survive, got %d collected", n)
	}
	if c.CountTracked(Oldest) != 1 {
		t.Fatalf("expected the survivor to remain in Oldest (nowhere to promote), got %d", c.CountTracked(Oldest))
	}
}

func TestCreateVariableCollectsOverThresholdGeneration(t *testing.T) {
	c := New()
	c.SetThreshold(Newest, 2)

	c.CreateVariable(value.Int(1), Newest)
	c.CreateVariable(value.Int(2), Newest)
	// Both above are unreferenced; the next allocation should trigger a
	// collection of Newest before handing out a third variable.
	c.CreateVariable(value.Int(3), Newest)

	if c.CountTracked(Newest) != 1 {
		t.Fatalf("expected prior generation swept before the new allocation, got %d tracked", c.CountTracked(Newest))
	}
}

func TestCreateVariableResetsPooledState(t *testing.T) {
	c := New()
	v := c.CreateVariable(value.Int(1), Newest)

	c.CollectGeneration(Newest) // unreferenced, so reclaimed and pooled

	// Pool selection never looks at these fields; set them to obviously
	// stale values to confirm CreateVariable resets them on reuse.
	v.Refcount = 99
	v.GCRef = 77

	w := c.CreateVariable(value.Str("reused"), Newest)
	if w != v {
		t.Fatalf("expected the pooled variable to be reused")
	}
	if w.Refcount != 1 {
		t.Fatalf("expected Refcount reset to 1 on reuse, got %d", w.Refcount)
	}
	if w.GCRef != 0 {
		t.Fatalf("expected GCRef reset to 0 on reuse, got %d", w.GCRef)
	}
	if w.Uninitialized {
		t.Fatalf("expected reused variable initialized")
	}
	if got, ok := w.Value().(value.Str); !ok || got != "reused" {
		t.Fatalf("expected reused variable holding the new value, got %v", w.Value())
	}
}

func TestFinalizeRefusesReentrantCall(t *testing.T) {
	c := New()
	c.CreateVariable(value.Int(1), Newest)
	c.collecting = true

	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected Finalize to panic while a collection is in progress")
		}
	}()
	c.Finalize()
}

func TestFinalizeClearsEveryGeneration(t *testing.T) {
	c := New()
	c.CreateVariable(value.Int(1), Newest)
	c.CreateVariable(value.Int(2), Middle)
	c.CreateVariable(value.Int(3), Oldest)

	n := c.Finalize()
	if n != 3 {
		t.Fatalf("expected 3 variables finalized, got %d", n)
	}
	for _, g := range []Generation{Newest, Middle, Oldest} {
		if c.CountTracked(g) != 0 {
			t.Fatalf("expected generation %s empty after Finalize, got %d", g, c.CountTracked(g))
		}
	}
}
