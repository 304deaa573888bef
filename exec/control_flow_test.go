package exec

import (
	"testing"

	"github.com/mayhemheroes/asteria/value"
)

func TestDeferLIFOWithThrow(t *testing.T) {
	got := mustRun(t, `
		var log = [];
		func record(n) { log = log + [n]; return n; }
		try {
			defer record(1);
			defer record(2);
			throw "x";
		} catch(e) {
			log = log + [e];
		}
		return log;
	`)
	want := value.NewArray([]value.Value{value.Int(2), value.Int(1), value.Str("x")})
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFinallyRunsOnNormalCompletionAndOnCatch(t *testing.T) {
	got := mustRun(t, `
		var log = [];
		try {
			log = log + ["try"];
		} finally {
			log = log + ["finally"];
		}
		try {
			throw "boom";
		} catch(e) {
			log = log + [e];
		} finally {
			log = log + ["finally2"];
		}
		return log;
	`)
	want := value.NewArray([]value.Value{value.Str("try"), value.Str("finally"), value.Str("boom"), value.Str("finally2")})
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFinallyRunsOnBreakAndContinue(t *testing.T) {
	got := mustRun(t, `
		var log = [];
		for (var i = 0; i < 3; i = i + 1) {
			try {
				if (i == 1) { continue; }
				if (i == 2) { break; }
				log = log + [i];
			} finally {
				log = log + ["fin" + typeof i];
			}
		}
		return log;
	`)
	want := value.NewArray([]value.Value{
		value.Int(0), value.Str("fininteger"),
		value.Str("fininteger"),
		value.Str("fininteger"),
	})
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFinallyRunsOnFunctionReturn(t *testing.T) {
	got := mustRun(t, `
		var log = [];
		func f() {
			try {
				return 1;
			} finally {
				log = log + ["ran"];
			}
		}
		var r = f();
		return [r, log];
	`)
	want := value.NewArray([]value.Value{value.Int(1), value.NewArray([]value.Value{value.Str("ran")})})
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestUncaughtThrowPropagatesAcrossCalls(t *testing.T) {
	exc := mustThrow(t, `
		func inner() { throw "deep"; }
		func outer() { return inner(); }
		return outer();
	`)
	s, ok := exc.Value.(value.Str)
	if !ok || string(s) != "deep" {
		t.Fatalf("expected thrown value \"deep\", got %#v", exc.Value)
	}
	if len(exc.Frames) == 0 {
		t.Fatalf("expected a non-empty backtrace")
	}
}

func TestRethrowFromCatchIsCaughtByOuterTry(t *testing.T) {
	got := mustRun(t, `
		try {
			try {
				throw "a";
			} catch(e) {
				throw e + "b";
			}
		} catch(e2) {
			return e2;
		}
		return "unreached";
	`)
	if s, ok := got.(value.Str); !ok || string(s) != "ab" {
		t.Fatalf("got %#v, want \"ab\"", got)
	}
}

func TestTailCallDoesNotGrowStack(t *testing.T) {
	got := mustRun(t, `
		func count(n, acc) {
			if (n == 0) { return acc; }
			return count(n - 1, acc + 1);
		}
		return count(200000, 0);
	`)
	if !got.Equal(value.Int(200000)) {
		t.Fatalf("got %v, want 200000", got)
	}
}

func TestArityErrorOnTooFewArguments(t *testing.T) {
	exc := mustThrow(t, `
		func needs_two(a, b) { return a + b; }
		return needs_two(1);
	`)
	if excCode(exc) != CodeArityError {
		t.Fatalf("expected arity_error, got %s", excCode(exc))
	}
}

func TestRestParameterRelaxesUpperBound(t *testing.T) {
	got := mustRun(t, `
		func first(a, ...) { return a; }
		return first(1, 2, 3);
	`)
	if !got.Equal(value.Int(1)) {
		t.Fatalf("got %v, want 1", got)
	}
}
