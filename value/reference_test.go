package value

import "testing"

func TestReferenceOpenCreatesIntermediateArray(t *testing.T) {
	v := NewVariable(Null{})
	ref := VariableRef(v).WithModifier(ArrayIndex(2)).WithModifier(ObjectKey("name"))

	if err := ref.Open(func(Value) Value { return Str("asteria") }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := ref.Read()
	if err != nil {
		t.Fatalf("unexpected read error: %v", err)
	}
	if got.(Str) != "asteria" {
		t.Fatalf("got %v, want asteria", got)
	}

	arr, ok := v.Value().(Array)
	if !ok || arr.Len() != 3 {
		t.Fatalf("expected a 3-element array root, got %v", v.Value())
	}
}

func TestReferenceWriteThroughImmutableFails(t *testing.T) {
	v := NewVariable(Int(1))
	v.Immutable = true
	ref := VariableRef(v)

	if err := ref.Open(func(Value) Value { return Int(2) }); err == nil {
		t.Fatalf("expected error writing through immutable variable")
	}
}

func TestReferenceWriteThroughTemporaryFails(t *testing.T) {
	ref := Temporary(Int(1))
	if err := ref.Open(func(Value) Value { return Int(2) }); err == nil {
		t.Fatalf("expected error writing through a temporary reference")
	}
}

func TestReferenceUnsetRemovesLeaf(t *testing.T) {
	v := NewVariable(NewObject([]string{"a", "b"}, []Value{Int(1), Int(2)}))
	ref := VariableRef(v).WithModifier(ObjectKey("a"))

	if err := ref.Unset(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	o := v.Value().(Object)
	if _, ok := o.Get("a"); ok {
		t.Fatalf("expected key 'a' removed")
	}
	if _, ok := o.Get("b"); !ok {
		t.Fatalf("expected key 'b' to remain")
	}
}
