package ast

import (
	"testing"

	"github.com/mayhemheroes/asteria/token"
)

func mustLex(t *testing.T, src string) []token.Token {
	t.Helper()
	toks, err := token.New(src, "<test>", token.Options{}).Tokenize()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	return toks
}

func TestParseNestedClosureTypeof(t *testing.T) {
	src := `func three(){ func two(){ func one(){ return typeof two; } return one(); } return two(); } return three();`
	prog, err := ParseProgram(mustLex(t, src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(prog.Body) != 2 {
		t.Fatalf("expected 2 top-level statements, got %d", len(prog.Body))
	}
	fn, ok := prog.Body[0].(*FuncStmt)
	if !ok || fn.Func.Name != "three" {
		t.Fatalf("expected func stmt 'three', got %#v", prog.Body[0])
	}
}

func TestParseIfElseIf(t *testing.T) {
	src := `if (x == 1) { return 1; } else if (x == 2) { return 2; } else { return 3; }`
	prog, err := ParseProgram(mustLex(t, src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	ifStmt, ok := prog.Body[0].(*IfStmt)
	if !ok {
		t.Fatalf("expected IfStmt, got %#v", prog.Body[0])
	}
	elseIf, ok := ifStmt.Else.(*IfStmt)
	if !ok {
		t.Fatalf("expected chained IfStmt for else-if, got %#v", ifStmt.Else)
	}
	if _, ok := elseIf.Else.(*BlockStmt); !ok {
		t.Fatalf("expected trailing else block")
	}
}

func TestParseCompoundAssignment(t *testing.T) {
	prog, err := ParseProgram(mustLex(t, `a += 2;`))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	es := prog.Body[0].(*ExprStmt)
	assign, ok := es.Expr.(*AssignExpr)
	if !ok || assign.Operator != "+" {
		t.Fatalf("expected compound assignment with operator '+', got %#v", es.Expr)
	}
}

func TestParsePowerIsRightAssociative(t *testing.T) {
	prog, err := ParseProgram(mustLex(t, `return 2 ** 3 ** 2;`))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	ret := prog.Body[0].(*ReturnStmt)
	bin, ok := ret.Value.(*BinaryExpr)
	if !ok || bin.Operator != "**" {
		t.Fatalf("expected top-level **, got %#v", ret.Value)
	}
	if _, ok := bin.Right.(*BinaryExpr); !ok {
		t.Fatalf("expected right-associative nesting on the right operand")
	}
	if _, ok := bin.Left.(*IntExpr); !ok {
		t.Fatalf("expected a literal left operand, got %#v", bin.Left)
	}
}

func TestParseDeferAndTryCatch(t *testing.T) {
	src := `try { defer log(1); defer log(2); throw "x"; } catch(e){}`
	prog, err := ParseProgram(mustLex(t, src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	tryStmt, ok := prog.Body[0].(*TryStmt)
	if !ok {
		t.Fatalf("expected TryStmt, got %#v", prog.Body[0])
	}
	if len(tryStmt.Body.Body) != 3 {
		t.Fatalf("expected 2 defers + 1 throw in try body, got %d stmts", len(tryStmt.Body.Body))
	}
	if tryStmt.Catch == nil || tryStmt.Catch.Name != "e" {
		t.Fatalf("expected catch(e), got %#v", tryStmt.Catch)
	}
}

func TestParseArrayAndObjectLiterals(t *testing.T) {
	prog, err := ParseProgram(mustLex(t, `var a = [10,20,30]; var o = {x: 1, y: 2};`))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	v1 := prog.Body[0].(*VarStmt)
	arr, ok := v1.Value.(*ArrayExpr)
	if !ok || len(arr.Elements) != 3 {
		t.Fatalf("expected 3-element array literal, got %#v", v1.Value)
	}
	v2 := prog.Body[1].(*VarStmt)
	obj, ok := v2.Value.(*ObjectExpr)
	if !ok || len(obj.Pairs) != 2 {
		t.Fatalf("expected 2-pair object literal, got %#v", v2.Value)
	}
}
