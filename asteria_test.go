package asteria

import (
	"testing"

	"github.com/mayhemheroes/asteria/config"
	"github.com/mayhemheroes/asteria/gc"
	"github.com/mayhemheroes/asteria/value"
)

func TestExecuteStringReturnsValue(t *testing.T) {
	eng := New(config.Default())
	got, err := eng.ExecuteString(`return 1 + 2;`, "inline")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(value.Int(3)) {
		t.Fatalf("got %v, want 3", got)
	}
}

func TestExecuteStringSurfacesUncaughtException(t *testing.T) {
	eng := New(config.Default())
	_, err := eng.ExecuteString(`return 1 / 0;`, "inline")
	if err == nil {
		t.Fatal("expected an error for an uncaught exception")
	}
}

func TestLoadStringSurfacesParseError(t *testing.T) {
	eng := New(config.Default())
	_, err := eng.LoadString(`var a = ;`, "inline")
	if err == nil {
		t.Fatal("expected a parse error for malformed source")
	}
}

func TestGlobalAllowsHostBindingBeforeRun(t *testing.T) {
	eng := New(config.Default())
	v := eng.interp.GC.CreateVariable(value.Int(42), gc.Oldest)
	eng.Global().Declare("answer", v)

	got, err := eng.ExecuteString(`return answer;`, "inline")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(value.Int(42)) {
		t.Fatalf("got %v, want 42", got)
	}
}

func TestConfigGCThresholdIsApplied(t *testing.T) {
	eng := New(config.Config{GC: config.GC{Newest: 3}})
	if got := eng.interp.GC.Threshold(gc.Newest); got != 3 {
		t.Fatalf("expected configured threshold 3, got %d", got)
	}
}

func TestLoadFileMissingReturnsError(t *testing.T) {
	eng := New(config.Default())
	if _, err := eng.LoadFile("/nonexistent/path/to/script.ast"); err == nil {
		t.Fatal("expected an error loading a missing file")
	}
}
