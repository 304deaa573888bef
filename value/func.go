package value

import "reflect"

// Callable is implemented by the exec package's compiled function body.
// Func holds a Callable rather than an AIR queue directly so this package
// never imports exec: exec imports value, not the reverse.
type Callable interface {
	Invoke(args []Value, this Value) (Value, error)
}

// NativeFunc adapts a Go function into a Callable, for host-exposed
// builtins installed the way std is described in spec.md §6.
type NativeFunc func(args []Value, this Value) (Value, error)

func (f NativeFunc) Invoke(args []Value, this Value) (Value, error) { return f(args, this) }

// Func is a callable Value: either native (Callable is a NativeFunc) or
// AIR-backed (Callable is an *exec.CompiledFunc). Params/HasRest describe
// the parameter list for arity checking and binding; Captured is the
// lexical Context a closure was created in (nil for native functions).
type Func struct {
	Name     string
	Params   []string
	HasRest  bool
	Captured *Context
	Body     Callable
}

func (Func) Kind() Kind { return KindFunc }

func (f Func) String() string {
	if f.Name == "" {
		return "function"
	}
	return "function " + f.Name
}

func (Func) Truthy() bool { return true }

// Equal is identity-based: two Func values are equal only if they share
// the same underlying Body, matching the typeof/equality contract of
// spec.md §8 scenario 1 (functions compare by identity, not structure).
func (f Func) Equal(o Value) bool {
	of, ok := o.(Func)
	return ok && sameCallable(f.Body, of.Body)
}

// sameCallable compares by underlying pointer/func identity via reflect,
// since Callable may be backed by a func value (NativeFunc), which is not
// comparable with == when boxed in an interface.
func sameCallable(a, b Callable) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() != vb.Kind() {
		return false
	}
	switch va.Kind() {
	case reflect.Func, reflect.Ptr, reflect.Chan, reflect.Map, reflect.Slice, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	default:
		return a == b
	}
}

// WalkVariables walks the Variables bound anywhere in the captured
// Context's parent chain, not just its own innermost scope: a closure
// can resolve a name through any ancestor context (Context.Resolve walks
// Parent), so the GC must treat that whole chain as reachable through
// this Func, not just the leaf scope it was created in.
func (f Func) WalkVariables(visit func(*Variable)) {
	for c := f.Captured; c != nil; c = c.Parent {
		c.WalkVariables(visit)
	}
}
