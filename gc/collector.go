// Package gc implements the three-generation, cycle-aware collector that
// owns every value.Variable's lifetime. The algorithm is the generational
// trial-deletion scheme described at
// https://pythoninternal.wordpress.com/2014/08/04/the-garbage-collector/
// and ported in structure from original_source's
// asteria/src/runtime/garbage_collector.cpp: seed each tracked variable's
// gc-reference counter, walk the reachable graph incrementing it per
// internal edge, then split tracked variables into reachable (rescued by
// propagating from any variable with an external holder) and unreachable
// (refcount fully accounted for by internal edges) sets. The source's
// rocket-container reuse (m_staged/m_temp_1/m_temp_2 as preallocated
// scratch hashmaps) is not carried over — a Go map and a slice-backed
// work stack serve the same role with no functional difference.
//
// Refcount on a value.Variable always includes the +1 this collector
// itself holds for as long as it tracks that variable (set once, at
// CreateVariable time); every other increment or decrement is exec's
// job as it binds and unbinds *Variable pointers. The source's own
// classification compares gc_ref against use_count()-1 because its
// classify loop takes a temporary rcptr copy of each candidate while
// iterating, inflating use_count by one for the duration of the check;
// ranging over a Go map of pointers takes no such copy, so here the
// comparison is the plain gc_ref == refcount, with no adjustment.
package gc

import (
	"github.com/mayhemheroes/asteria/errs"
	"github.com/mayhemheroes/asteria/value"
)

// Generation is one of the collector's three tracked generations.
type Generation int

const (
	Newest Generation = iota
	Middle
	Oldest
	numGenerations
)

func (g Generation) String() string {
	switch g {
	case Newest:
		return "newest"
	case Middle:
		return "middle"
	case Oldest:
		return "oldest"
	default:
		return "unknown"
	}
}

// defaultThresholds mirrors the source's { 10, 70, 500 }.
var defaultThresholds = [numGenerations]int{10, 70, 500}

// Collector owns every live value.Variable. Not safe for concurrent use,
// matching the single-threaded interpreter model (spec.md §5).
type Collector struct {
	tracked    [numGenerations]map[*value.Variable]struct{}
	counts     [numGenerations]int
	thresholds [numGenerations]int
	pool       []*value.Variable
	collecting bool
}

// New returns a Collector with the default generation thresholds.
func New() *Collector {
	c := &Collector{thresholds: defaultThresholds}
	for i := range c.tracked {
		c.tracked[i] = make(map[*value.Variable]struct{})
	}
	return c
}

// Threshold returns gen's allocation-count collection trigger.
func (c *Collector) Threshold(gen Generation) int { return c.thresholds[gen] }

// SetThreshold changes gen's allocation-count collection trigger.
func (c *Collector) SetThreshold(gen Generation, n int) { c.thresholds[gen] = n }

// CountTracked returns how many variables gen currently tracks.
func (c *Collector) CountTracked(gen Generation) int { return len(c.tracked[gen]) }

// CountPooled returns how many uninitialized variables are cached for reuse.
func (c *Collector) CountPooled() int { return len(c.pool) }

// ClearPooled discards cached variables, returning their backing memory.
func (c *Collector) ClearPooled() { c.pool = nil }

// CreateVariable allocates a variable holding val, tracked in gen. Any
// generation at or over its threshold is collected first, exactly as
// the source's create_variable does before handing out a new cell.
func (c *Collector) CreateVariable(val value.Value, gen Generation) *value.Variable {
	for g := Newest; g < numGenerations; g++ {
		if c.counts[g] >= c.thresholds[g] {
			c.collectGeneration(g)
		}
	}

	var v *value.Variable
	if n := len(c.pool); n > 0 {
		v = c.pool[n-1]
		c.pool = c.pool[:n-1]
		v.Uninitialized = false
		v.Immutable = false
		v.GCRef = 0
		v.Set(val)
	} else {
		v = value.NewVariable(val)
	}
	v.Refcount = 1
	v.Generation = int(gen)
	c.tracked[gen][v] = struct{}{}
	c.counts[gen]++
	return v
}

// CollectGeneration runs one generational sweep and returns the number of
// variables reclaimed. Exported so a host can trigger a specific-generation
// collection (spec.md §6's collect() surface), not just the threshold-
// triggered automatic path.
func (c *Collector) CollectGeneration(gen Generation) int {
	return c.collectGeneration(gen)
}

// CollectUpTo collects every generation from Newest through limit
// inclusive and clears the reuse pool, matching collect_variables.
func (c *Collector) CollectUpTo(limit Generation) int {
	nvars := 0
	for g := Newest; g <= limit && g < numGenerations; g++ {
		nvars += c.collectGeneration(g)
	}
	c.pool = nil
	return nvars
}

// Finalize uninitializes every tracked variable across all generations
// and clears the pool, returning the total reclaimed. It refuses to run
// while a collection is already in progress (a reentrant call from
// within a Variable's destructor, say), matching the source's guard.
func (c *Collector) Finalize() int {
	if c.collecting {
		errs.Fatalf("garbage collector not finalizable while in use")
	}
	nvars := 0
	for g := Newest; g < numGenerations; g++ {
		tracked := c.tracked[g]
		nvars += len(tracked)
		for v := range tracked {
			v.Uninitialize()
		}
		c.tracked[g] = make(map[*value.Variable]struct{})
	}
	nvars += len(c.pool)
	c.pool = nil
	return nvars
}

// collectGeneration implements do_collect_generation. Ignores recursive
// requests triggered by a Variable's uninitialization running embedder
// finalizers that themselves allocate.
func (c *Collector) collectGeneration(gen Generation) int {
	if c.collecting {
		return 0
	}
	c.collecting = true
	defer func() { c.collecting = false }()

	tracked := c.tracked[gen]
	var next map[*value.Variable]struct{}
	if gen+1 < numGenerations {
		next = c.tracked[gen+1]
	}

	// Phase 1: seed gc_ref=1 for every tracked variable, then walk the
	// reachable graph (including into other generations) incrementing
	// gc_ref once per internal edge discovered.
	visited := make(map[*value.Variable]bool, len(tracked))
	for v := range tracked {
		v.GCRef = 1
		visited[v] = true
	}
	for v := range tracked {
		walkChildren(v, visited, func(w *value.Variable) { w.GCRef++ })
	}

	// Phase 2: a tracked variable whose gc_ref accounts for its entire
	// refcount has no holder beyond this collector and the internal
	// edges just walked, so it is provisionally unreachable. Anything
	// with a holder beyond that is reachable, and so is everything
	// transitively reachable from it — rescue that whole subgraph.
	unreachable := make(map[*value.Variable]struct{})
	reachable := make(map[*value.Variable]struct{})
	for v := range tracked {
		if _, done := reachable[v]; done {
			continue
		}
		if v.GCRef == v.Refcount {
			unreachable[v] = struct{}{}
			continue
		}
		rescue(v, reachable, unreachable)
	}

	nvars := 0
	for v := range unreachable {
		v.Uninitialize()
		delete(tracked, v)
		nvars++
		c.pool = append(c.pool, v)
	}

	if next != nil {
		for v := range reachable {
			if _, ok := tracked[v]; ok {
				delete(tracked, v)
				next[v] = struct{}{}
				v.Generation = int(gen + 1)
				c.counts[gen+1]++
			}
		}
	}

	c.counts[gen] = 0
	return nvars
}

// walkChildren visits every value.Variable directly or indirectly
// reachable from v's current value, calling visit once per edge
// (multiplicity matters: a variable referenced from two places gets
// visited twice) while recursing into each distinct child only once.
func walkChildren(v *value.Variable, seen map[*value.Variable]bool, visit func(*value.Variable)) {
	v.Value().WalkVariables(func(w *value.Variable) {
		visit(w)
		if !seen[w] {
			seen[w] = true
			walkChildren(w, seen, visit)
		}
	})
}

// rescue marks v and everything reachable from it as confirmed-reachable,
// removing any of them from the provisional unreachable set.
func rescue(v *value.Variable, reachable map[*value.Variable]struct{}, unreachable map[*value.Variable]struct{}) {
	stack := []*value.Variable{v}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, done := reachable[cur]; done {
			continue
		}
		cur.GCRef = 0
		delete(unreachable, cur)
		reachable[cur] = struct{}{}
		cur.Value().WalkVariables(func(w *value.Variable) {
			stack = append(stack, w)
		})
	}
}
