package value

import "strings"

// arrayData is the copy-on-write backing store for Array, mirrored from
// the teacher's sliceList: every mutation returns a fresh arrayData
// rather than touching the receiver's slice in place.
type arrayData struct {
	elems []Value
}

func (d *arrayData) set(i int, v Value) *arrayData {
	next := make([]Value, len(d.elems))
	copy(next, d.elems)
	next[i] = v
	return &arrayData{elems: next}
}

func (d *arrayData) insert(i int, v Value) *arrayData {
	next := make([]Value, len(d.elems)+1)
	copy(next[:i], d.elems[:i])
	next[i] = v
	copy(next[i+1:], d.elems[i:])
	return &arrayData{elems: next}
}

func (d *arrayData) deleteAt(i int) *arrayData {
	next := make([]Value, len(d.elems)-1)
	copy(next[:i], d.elems[:i])
	copy(next[i:], d.elems[i+1:])
	return &arrayData{elems: next}
}

// Array is an ordered sequence of Values (spec.md §3.1). Indices are
// 0-based; negative indices wrap per spec.md §3.3 (resolveIndex).
type Array struct {
	data *arrayData
}

// NewArray builds an Array over a copy of elems.
func NewArray(elems []Value) Array {
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return Array{data: &arrayData{elems: cp}}
}

func (Array) Kind() Kind { return KindArray }

func (a Array) String() string {
	if a.data == nil || len(a.data.elems) == 0 {
		return "[]"
	}
	parts := make([]string, len(a.data.elems))
	for i, e := range a.data.elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (a Array) Truthy() bool { return a.Len() > 0 }

func (a Array) Equal(o Value) bool {
	oa, ok := o.(Array)
	if !ok || a.Len() != oa.Len() {
		return false
	}
	for i, e := range a.Elements() {
		if !e.Equal(oa.Elements()[i]) {
			return false
		}
	}
	return true
}

func (a Array) WalkVariables(visit func(*Variable)) {
	for _, e := range a.Elements() {
		e.WalkVariables(visit)
	}
}

func (a Array) Len() int {
	if a.data == nil {
		return 0
	}
	return len(a.data.elems)
}

func (a Array) Elements() []Value {
	if a.data == nil {
		return nil
	}
	return a.data.elems
}

// ResolveIndex applies the wrap rule of spec.md §3.3: negative indices
// wrap to i+len; ok is false if the result is still negative (read
// yields null, open prepends fillers — callers decide which).
func ResolveIndex(i int, length int) (idx int, ok bool) {
	if i < 0 {
		i += length
	}
	return i, i >= 0
}

// Get reads the element at i (post-wrap); out-of-range reads yield Null,
// matching the reference-read semantics of an unopened path.
func (a Array) Get(i int) Value {
	idx, ok := ResolveIndex(i, a.Len())
	if !ok || idx >= a.Len() {
		return Null{}
	}
	return a.Elements()[idx]
}

// Set returns a new Array with index i (post-wrap) holding v. Indices
// beyond the current length, or still negative after wrapping, grow the
// array with Null fillers (spec.md §3.3 "open() ... prepends null
// fillers" generalized to append on the positive side).
func (a Array) Set(i int, v Value) Array {
	idx, ok := ResolveIndex(i, a.Len())
	if !ok {
		fillers := -idx
		next := make([]Value, 0, fillers+a.Len())
		next = append(next, v)
		for k := 0; k < fillers-1; k++ {
			next = append(next, Null{})
		}
		next = append(next, a.Elements()...)
		return NewArray(next)
	}
	if idx >= a.Len() {
		next := make([]Value, idx+1)
		copy(next, a.Elements())
		for k := a.Len(); k < idx; k++ {
			next[k] = Null{}
		}
		next[idx] = v
		return NewArray(next)
	}
	return Array{data: a.data.set(idx, v)}
}

func (a Array) Append(v Value) Array {
	next := make([]Value, a.Len()+1)
	copy(next, a.Elements())
	next[a.Len()] = v
	return NewArray(next)
}

func (a Array) InsertAt(i int, v Value) Array {
	if i < 0 {
		i = 0
	}
	if i > a.Len() {
		i = a.Len()
	}
	return Array{data: a.data.insert(i, v)}
}

func (a Array) DeleteAt(i int) Array {
	idx, ok := ResolveIndex(i, a.Len())
	if !ok || idx >= a.Len() {
		return a
	}
	return Array{data: a.data.deleteAt(idx)}
}

func (a Array) Slice(start, end int) Array {
	if start < 0 {
		start = 0
	}
	if end > a.Len() {
		end = a.Len()
	}
	if start >= end {
		return NewArray(nil)
	}
	return NewArray(a.Elements()[start:end])
}
