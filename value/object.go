package value

import "strings"

// objectData is the copy-on-write backing store for Object. Unlike the
// teacher's MooMap (which hashes arbitrary Values), Asteria objects are
// keyed by string only (spec.md §3.1), so this is a plain ordered map:
// keys in insertion order plus a lookup index.
type objectData struct {
	keys   []string
	values map[string]Value
}

func (d *objectData) clone() *objectData {
	keys := make([]string, len(d.keys))
	copy(keys, d.keys)
	values := make(map[string]Value, len(d.values))
	for k, v := range d.values {
		values[k] = v
	}
	return &objectData{keys: keys, values: values}
}

// Object is an insertion-ordered mapping from string to Value; duplicate
// keys are forbidden (spec.md §3.1).
type Object struct {
	data *objectData
}

// NewObject builds an Object from pairs, in order; a later duplicate key
// overwrites the earlier entry's value but keeps its original position.
func NewObject(keys []string, vals []Value) Object {
	d := &objectData{values: make(map[string]Value, len(keys))}
	for i, k := range keys {
		if _, exists := d.values[k]; !exists {
			d.keys = append(d.keys, k)
		}
		d.values[k] = vals[i]
	}
	return Object{data: d}
}

func (Object) Kind() Kind { return KindObject }

func (o Object) String() string {
	if o.data == nil || len(o.data.keys) == 0 {
		return "{}"
	}
	parts := make([]string, len(o.data.keys))
	for i, k := range o.data.keys {
		parts[i] = k + ":" + o.data.values[k].String()
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func (o Object) Truthy() bool { return o.Len() > 0 }

func (o Object) Equal(ov Value) bool {
	oo, ok := ov.(Object)
	if !ok || o.Len() != oo.Len() {
		return false
	}
	for _, k := range o.Keys() {
		v, present := oo.Get(k)
		if !present || !v.Equal(o.data.values[k]) {
			return false
		}
	}
	return true
}

func (o Object) WalkVariables(visit func(*Variable)) {
	if o.data == nil {
		return
	}
	for _, k := range o.data.keys {
		o.data.values[k].WalkVariables(visit)
	}
}

func (o Object) Len() int {
	if o.data == nil {
		return 0
	}
	return len(o.data.keys)
}

func (o Object) Keys() []string {
	if o.data == nil {
		return nil
	}
	return o.data.keys
}

func (o Object) Get(key string) (Value, bool) {
	if o.data == nil {
		return nil, false
	}
	v, ok := o.data.values[key]
	return v, ok
}

// Set returns a new Object with key bound to v, appended at the end if
// key is new, or updated in place (keeping its position) otherwise.
func (o Object) Set(key string, v Value) Object {
	var next *objectData
	if o.data == nil {
		next = &objectData{values: make(map[string]Value, 1)}
	} else {
		next = o.data.clone()
	}
	if _, exists := next.values[key]; !exists {
		next.keys = append(next.keys, key)
	}
	next.values[key] = v
	return Object{data: next}
}

func (o Object) Delete(key string) Object {
	if o.data == nil {
		return o
	}
	if _, exists := o.data.values[key]; !exists {
		return o
	}
	next := &objectData{values: make(map[string]Value, len(o.data.values)-1)}
	for _, k := range o.data.keys {
		if k == key {
			continue
		}
		next.keys = append(next.keys, k)
		next.values[k] = o.data.values[k]
	}
	return Object{data: next}
}

// Merge returns a new Object holding the right-biased union of o and
// rhs (spec.md §4.4: "object `+` is right-biased merge").
func (o Object) Merge(rhs Object) Object {
	result := o
	for _, k := range rhs.Keys() {
		v, _ := rhs.Get(k)
		result = result.Set(k, v)
	}
	return result
}
