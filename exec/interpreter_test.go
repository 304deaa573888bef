package exec

import (
	"testing"

	"github.com/mayhemheroes/asteria/value"
)

func TestNestedClosureTypeof(t *testing.T) {
	src := `func three(){ func two(){ func one(){ return typeof two; } return one(); } return two(); } return three();`
	got := mustRun(t, src)
	if s, ok := got.(value.Str); !ok || string(s) != "function" {
		t.Fatalf("expected \"function\", got %#v", got)
	}
}

func TestArithmeticAndComparison(t *testing.T) {
	cases := []struct {
		src  string
		want value.Value
	}{
		{`return 2 + 3 * 4;`, value.Int(14)},
		{`return 2 ** 3 ** 2;`, value.Int(512)},
		{`return "foo" + "bar";`, value.Str("foobar")},
		{`return 1 < 2;`, value.Bool(true)},
		{`return [1,2] + [3];`, value.NewArray([]value.Value{value.Int(1), value.Int(2), value.Int(3)})},
	}
	for _, c := range cases {
		got := mustRun(t, c.src)
		if !got.Equal(c.want) {
			t.Errorf("%s: got %v, want %v", c.src, got, c.want)
		}
	}
}

func TestDivisionByZeroThrows(t *testing.T) {
	exc := mustThrow(t, `return 1 / 0;`)
	if excCode(exc) != CodeDivisionByZero {
		t.Fatalf("expected division_by_zero, got %s (%s)", excCode(exc), exc.Error())
	}
}

func TestNegativeIndexWrapAndOpen(t *testing.T) {
	got := mustRun(t, `var a = [10,20,30]; a[-1] = 99; return a;`)
	want := value.NewArray([]value.Value{value.Int(10), value.Int(20), value.Int(99)})
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	got = mustRun(t, `var a = [10,20,30]; a[-5] = 7; return a;`)
	want = value.NewArray([]value.Value{value.Int(7), value.Null{}, value.Int(10), value.Int(20), value.Int(30)})
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestUninitializedVariableReadThrows(t *testing.T) {
	exc := mustThrow(t, `var a = 1; unset a; return a;`)
	if excCode(exc) != CodeTypeError {
		t.Fatalf("expected type_error, got %s", excCode(exc))
	}
}

func TestMissingIndexAndPropertyReadNull(t *testing.T) {
	got := mustRun(t, `var a = [1,2]; return a[50];`)
	if _, ok := got.(value.Null); !ok {
		t.Fatalf("expected null for out-of-range read, got %#v", got)
	}
	got = mustRun(t, `var o = {x: 1}; return o.y;`)
	if _, ok := got.(value.Null); !ok {
		t.Fatalf("expected null for missing property read, got %#v", got)
	}
}

func TestForEachOverArrayAndObject(t *testing.T) {
	got := mustRun(t, `
		var sum = 0;
		for each (v in [1,2,3]) { sum = sum + v; }
		return sum;
	`)
	if !got.Equal(value.Int(6)) {
		t.Fatalf("got %v, want 6", got)
	}

	got = mustRun(t, `
		var keys = "";
		for each (v, k in {a: 1, b: 2}) { keys = keys + k; }
		return keys;
	`)
	s, ok := got.(value.Str)
	if !ok || len(string(s)) != 2 {
		t.Fatalf("expected a 2-character key string, got %#v", got)
	}
}

func TestForEachClosureAliasesLoopVariable(t *testing.T) {
	got := mustRun(t, `
		var fns = [];
		for each (v in [1,2,3]) {
			func grab() { return v; }
			fns = fns + [grab];
		}
		var out = [];
		for each (f in fns) { out = out + [f()]; }
		return out;
	`)
	want := value.NewArray([]value.Value{value.Int(3), value.Int(3), value.Int(3)})
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v (loop variable should alias across iterations)", got, want)
	}
}

func TestPreAndPostIncrement(t *testing.T) {
	got := mustRun(t, `var a = {x: 1}; var pre = ++a.x; var post = a.x++; return [pre, post, a.x];`)
	want := value.NewArray([]value.Value{value.Int(2), value.Int(2), value.Int(3)})
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
