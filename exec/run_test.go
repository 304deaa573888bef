package exec

import (
	"testing"

	"github.com/mayhemheroes/asteria/air"
	"github.com/mayhemheroes/asteria/ast"
	"github.com/mayhemheroes/asteria/avmc"
	"github.com/mayhemheroes/asteria/token"
	"github.com/mayhemheroes/asteria/value"
)

// compile lexes and parses src into a Queue the way a real embedding
// front-end would, so these tests exercise the full lexer/ast/air/exec
// pipeline rather than hand-built Nodes.
func compile(t *testing.T, src string) avmc.Queue {
	t.Helper()
	toks, lexErr := token.New(src, "test", token.Options{}).Tokenize()
	if lexErr != nil {
		t.Fatalf("lex error: %v", lexErr)
	}
	prog, err := ast.ParseProgram(toks)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	q, err := air.Lower(prog)
	if err != nil {
		t.Fatalf("lower error: %v", err)
	}
	return q
}

// run compiles and executes src against a fresh Interpreter, returning
// the program's final value and (if it threw uncaught) its Exception.
func run(t *testing.T, src string) (value.Value, *Exception) {
	t.Helper()
	interp := NewInterpreter()
	q := compile(t, src)
	return interp.Run(q)
}

func mustRun(t *testing.T, src string) value.Value {
	t.Helper()
	v, exc := run(t, src)
	if exc != nil {
		t.Fatalf("unexpected exception running %q: %s", src, exc.Error())
	}
	return v
}

func mustThrow(t *testing.T, src string) *Exception {
	t.Helper()
	v, exc := run(t, src)
	if exc == nil {
		t.Fatalf("expected exception running %q, got value %v", src, v)
	}
	return exc
}

func excCode(exc *Exception) string {
	o, ok := exc.Value.(value.Object)
	if !ok {
		return ""
	}
	c, _ := o.Get("code")
	s, _ := c.(value.Str)
	return string(s)
}
