package value

import "testing"

func TestArrayNegativeIndexWrap(t *testing.T) {
	a := NewArray([]Value{Int(10), Int(20), Int(30)})

	a = a.Set(-1, Int(99))
	want := []int64{10, 20, 99}
	for i, w := range want {
		if int64(a.Get(i).(Int)) != w {
			t.Fatalf("index %d: got %v, want %d", i, a.Get(i), w)
		}
	}

	a = a.Set(-10, Int(7))
	if a.Len() != 10 {
		t.Fatalf("expected wrapped-fill length 10, got %d", a.Len())
	}
	if int64(a.Get(0).(Int)) != 7 {
		t.Fatalf("expected leading element 7, got %v", a.Get(0))
	}
	tail := []int64{10, 20, 99}
	for i, w := range tail {
		got := a.Get(a.Len() - len(tail) + i)
		if int64(got.(Int)) != w {
			t.Fatalf("tail index %d: got %v, want %d", i, got, w)
		}
	}
}

func TestArrayEqual(t *testing.T) {
	a := NewArray([]Value{Int(1), Str("x")})
	b := NewArray([]Value{Int(1), Str("x")})
	c := NewArray([]Value{Int(1), Str("y")})

	if !a.Equal(b) {
		t.Fatalf("expected a == b")
	}
	if a.Equal(c) {
		t.Fatalf("expected a != c")
	}
}

func TestArrayAppendIsCopyOnWrite(t *testing.T) {
	a := NewArray([]Value{Int(1)})
	b := a.Append(Int(2))

	if a.Len() != 1 {
		t.Fatalf("original array mutated: len %d", a.Len())
	}
	if b.Len() != 2 {
		t.Fatalf("expected appended array len 2, got %d", b.Len())
	}
}
