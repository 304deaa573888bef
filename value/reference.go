package value

import "fmt"

// ModifierKind discriminates the steps of a Reference's path (spec.md §3.3).
type ModifierKind int

const (
	ModArrayIndex ModifierKind = iota
	ModObjectKey
	ModArrayHead
	ModArrayTail
	ModArrayRandom
)

// Modifier is one path step applied after the Reference's root.
type Modifier struct {
	Kind  ModifierKind
	Index int64  // valid for ModArrayIndex
	Key   string // valid for ModObjectKey
}

func ArrayIndex(i int64) Modifier  { return Modifier{Kind: ModArrayIndex, Index: i} }
func ObjectKey(k string) Modifier  { return Modifier{Kind: ModObjectKey, Key: k} }
func ArrayHead() Modifier          { return Modifier{Kind: ModArrayHead} }
func ArrayTail() Modifier          { return Modifier{Kind: ModArrayTail} }
func ArrayRandom() Modifier        { return Modifier{Kind: ModArrayRandom} }

// RootKind discriminates Reference's root (spec.md §3.3).
type RootKind int

const (
	RootUninitialized RootKind = iota
	RootVoid
	RootTemporary
	RootVariable
	RootPTC
)

// PendingTailCall is a captured tail call: the callee plus its already
// evaluated arguments, resolved by the driver loop at the caller's
// stack depth instead of recursing (spec.md §3.3, §4.4, GLOSSARY "PTC").
type PendingTailCall struct {
	Callee Value
	Args   []Value
	This   Value
}

// Reference is a path into the value graph: a root plus a vector of
// Modifier steps (spec.md §3.3). The path is expected to stay short
// (typically <=3 modifiers); this is a flat slice, not a pointer chain.
type Reference struct {
	Root      RootKind
	Temp      Value
	Var       *Variable
	PTC       *PendingTailCall
	Modifiers []Modifier
}

func Void() Reference                        { return Reference{Root: RootVoid} }
func Temporary(v Value) Reference             { return Reference{Root: RootTemporary, Temp: v} }
func VariableRef(v *Variable) Reference       { return Reference{Root: RootVariable, Var: v} }
func PTCRef(p *PendingTailCall) Reference     { return Reference{Root: RootPTC, PTC: p} }

// WithModifier returns a copy of r with m appended to its path.
func (r Reference) WithModifier(m Modifier) Reference {
	next := make([]Modifier, len(r.Modifiers)+1)
	copy(next, r.Modifiers)
	next[len(next)-1] = m
	r.Modifiers = next
	return r
}

// Read walks the path read-only, yielding Null for any step that misses
// rather than erroring (spec.md §3.3: "read() walks modifiers read-only").
func (r Reference) Read() (Value, error) {
	root, err := r.readRoot()
	if err != nil {
		return nil, err
	}
	cur := root
	for _, m := range r.Modifiers {
		cur = readStep(cur, m)
	}
	return cur, nil
}

func (r Reference) readRoot() (Value, error) {
	switch r.Root {
	case RootTemporary:
		return r.Temp, nil
	case RootVariable:
		if r.Var == nil {
			return Null{}, nil
		}
		if r.Var.Uninitialized {
			return nil, fmt.Errorf("reference to uninitialized variable")
		}
		return r.Var.Value(), nil
	case RootVoid, RootUninitialized:
		return nil, fmt.Errorf("reference has no readable value")
	case RootPTC:
		return nil, fmt.Errorf("reference is a pending tail call")
	default:
		return Null{}, nil
	}
}

func readStep(cur Value, m Modifier) Value {
	switch m.Kind {
	case ModArrayIndex:
		a, ok := cur.(Array)
		if !ok {
			return Null{}
		}
		return a.Get(int(m.Index))
	case ModObjectKey:
		o, ok := cur.(Object)
		if !ok {
			return Null{}
		}
		v, present := o.Get(m.Key)
		if !present {
			return Null{}
		}
		return v
	case ModArrayHead:
		a, ok := cur.(Array)
		if !ok || a.Len() == 0 {
			return Null{}
		}
		return a.Get(0)
	case ModArrayTail:
		a, ok := cur.(Array)
		if !ok || a.Len() == 0 {
			return Null{}
		}
		return a.Get(a.Len() - 1)
	case ModArrayRandom:
		a, ok := cur.(Array)
		if !ok || a.Len() == 0 {
			return Null{}
		}
		return a.Get(0)
	default:
		return Null{}
	}
}

// Open walks the path, creating missing intermediate containers, and
// returns a writer that stores the leaf (spec.md §3.3: "open() walks
// modifiers creating missing intermediate containers").
//
// Writing through a Temporary root, or through an Immutable Variable's
// root, is rejected with an error (the exec package raises it as a
// type_error exception, exec.CodeTypeError); it is never silently allowed.
func (r Reference) Open(write func(current Value) Value) error {
	if r.Root == RootTemporary {
		return fmt.Errorf("cannot write through a temporary reference")
	}
	if r.Root != RootVariable || r.Var == nil {
		return fmt.Errorf("reference has no variable root to open")
	}
	if r.Var.Immutable {
		return fmt.Errorf("cannot write through an immutable variable")
	}
	if len(r.Modifiers) == 0 {
		cur := r.Var.Value()
		if r.Var.Uninitialized {
			cur = Null{}
		}
		r.Var.Set(write(cur))
		return nil
	}
	root := r.Var.Value()
	if r.Var.Uninitialized {
		root = Null{}
	}
	updated, err := openStep(root, r.Modifiers, write)
	if err != nil {
		return err
	}
	r.Var.Set(updated)
	return nil
}

func openStep(cur Value, path []Modifier, write func(Value) Value) (Value, error) {
	m := path[0]
	rest := path[1:]

	switch m.Kind {
	case ModArrayIndex:
		a, ok := cur.(Array)
		if !ok {
			a = NewArray(nil)
		}
		if len(rest) == 0 {
			return a.Set(int(m.Index), write(a.Get(int(m.Index)))), nil
		}
		idx, ok := ResolveIndex(int(m.Index), a.Len())
		child := Value(Null{})
		if ok && idx < a.Len() {
			child = a.Get(int(m.Index))
		}
		next, err := openStep(child, rest, write)
		if err != nil {
			return nil, err
		}
		return a.Set(int(m.Index), next), nil
	case ModObjectKey:
		o, ok := cur.(Object)
		if !ok {
			o = NewObject(nil, nil)
		}
		if len(rest) == 0 {
			existing, _ := o.Get(m.Key)
			return o.Set(m.Key, write(existing)), nil
		}
		child, present := o.Get(m.Key)
		if !present {
			child = Null{}
		}
		next, err := openStep(child, rest, write)
		if err != nil {
			return nil, err
		}
		return o.Set(m.Key, next), nil
	case ModArrayHead:
		a, ok := cur.(Array)
		if !ok {
			a = NewArray(nil)
		}
		if a.Len() == 0 {
			a = a.InsertAt(0, Null{})
		}
		if len(rest) == 0 {
			return a.Set(0, write(a.Get(0))), nil
		}
		next, err := openStep(a.Get(0), rest, write)
		if err != nil {
			return nil, err
		}
		return a.Set(0, next), nil
	case ModArrayTail:
		a, ok := cur.(Array)
		if !ok {
			a = NewArray(nil)
		}
		if a.Len() == 0 {
			a = a.Append(Null{})
		}
		last := a.Len() - 1
		if len(rest) == 0 {
			return a.Set(last, write(a.Get(last))), nil
		}
		next, err := openStep(a.Get(last), rest, write)
		if err != nil {
			return nil, err
		}
		return a.Set(last, next), nil
	case ModArrayRandom:
		a, ok := cur.(Array)
		if !ok || a.Len() == 0 {
			a = NewArray([]Value{Null{}})
		}
		if len(rest) == 0 {
			return a.Set(0, write(a.Get(0))), nil
		}
		next, err := openStep(a.Get(0), rest, write)
		if err != nil {
			return nil, err
		}
		return a.Set(0, next), nil
	default:
		return nil, fmt.Errorf("unknown modifier kind %v", m.Kind)
	}
}

// Unset removes the leaf named by the path's final modifier (spec.md
// §3.3: "unset() removes a leaf").
func (r Reference) Unset() error {
	if r.Root != RootVariable || r.Var == nil {
		return fmt.Errorf("reference has no variable root to unset")
	}
	if r.Var.Immutable {
		return fmt.Errorf("cannot unset through an immutable variable")
	}
	if len(r.Modifiers) == 0 {
		r.Var.Uninitialize()
		return nil
	}
	parent := Reference{Root: RootVariable, Var: r.Var, Modifiers: r.Modifiers[:len(r.Modifiers)-1]}
	leaf := r.Modifiers[len(r.Modifiers)-1]
	return parent.Open(func(cur Value) Value {
		switch leaf.Kind {
		case ModObjectKey:
			if o, ok := cur.(Object); ok {
				return o.Delete(leaf.Key)
			}
		case ModArrayIndex:
			if a, ok := cur.(Array); ok {
				idx, ok := ResolveIndex(int(leaf.Index), a.Len())
				if ok && idx < a.Len() {
					return a.DeleteAt(int(leaf.Index))
				}
			}
		}
		return cur
	})
}

// ConvertToTemporary materializes the reference's current value into a
// Temporary reference (spec.md §3.3: "convert_to_temporary() materializes").
func (r Reference) ConvertToTemporary() (Reference, error) {
	v, err := r.Read()
	if err != nil {
		return Reference{}, err
	}
	return Temporary(v), nil
}
