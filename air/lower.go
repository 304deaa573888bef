// Package air lowers the ast package's statement tree into an avmc.Queue
// (spec.md §4.2): a flat, jump-based instruction stream in the shape of
// the teacher's vm bytecode compiler, generalized from MOO's stack-op
// set to Asteria's operator/control-flow set.
package air

import (
	"fmt"

	"github.com/mayhemheroes/asteria/ast"
	"github.com/mayhemheroes/asteria/avmc"
)

// loopLabels tracks the jump targets a break/continue must resolve to for
// one breakable construct (a loop or a switch), plus an optional user
// label. continue only ever targets a loop frame — break searches any
// frame, continue skips switch frames (isLoop == false).
type loopLabels struct {
	label          string
	isLoop         bool
	baseDepth      int   // l.blockDepth just before this construct's own block opened
	breakFixups    []int // indices of OpJump placeholders to patch to "after construct"
	continueFixups []int // indices of OpJump placeholders to patch to "continue point"
}

type lowerer struct {
	q          avmc.Queue
	frames     []*loopLabels
	blockDepth int // number of currently-open OpEnterBlock scopes
}

// Lower compiles a parsed Program into an executable Queue.
func Lower(prog *ast.Program) (avmc.Queue, error) {
	l := &lowerer{}
	if err := l.block(prog.Body); err != nil {
		return nil, err
	}
	return l.q, nil
}

// LowerBlock lowers a standalone statement list (a function body, a
// defer's target statement, a catch/finally block) to its own Queue.
func LowerBlock(body []ast.Stmt) (avmc.Queue, error) {
	l := &lowerer{}
	if err := l.block(body); err != nil {
		return nil, err
	}
	return l.q, nil
}

func (l *lowerer) emit(n avmc.Node) int { return l.q.Append(n) }

func (l *lowerer) patchJumpTarget(idx int, target int64) { l.q[idx].I = target }

func (l *lowerer) block(stmts []ast.Stmt) error {
	l.emit(avmc.Node{Op: avmc.OpEnterBlock})
	l.blockDepth++
	for _, s := range stmts {
		if err := l.stmt(s); err != nil {
			return err
		}
	}
	l.blockDepth--
	l.emit(avmc.Node{Op: avmc.OpLeaveBlock})
	return nil
}

func (l *lowerer) stmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.ExprStmt:
		if err := l.expr(n.Expr); err != nil {
			return err
		}
		l.emit(avmc.Node{Op: avmc.OpPop, Pos: n.Pos})
		return nil
	case *ast.VarStmt:
		if n.Value != nil {
			if err := l.expr(n.Value); err != nil {
				return err
			}
		} else {
			l.emit(avmc.Node{Op: avmc.OpPushNull, Pos: n.Pos})
		}
		l.emit(avmc.Node{Op: avmc.OpDeclare, Str: n.Name, Pos: n.Pos})
		return nil
	case *ast.FuncStmt:
		tmpl, err := l.closureTemplate(n.Func)
		if err != nil {
			return err
		}
		l.emit(avmc.Node{Op: avmc.OpMakeClosure, Sparam: tmpl, Pos: n.Pos})
		l.emit(avmc.Node{Op: avmc.OpDeclare, Str: n.Func.Name, Pos: n.Pos})
		return nil
	case *ast.BlockStmt:
		return l.block(n.Body)
	case *ast.IfStmt:
		return l.ifStmt(n)
	case *ast.SwitchStmt:
		return l.switchStmt(n)
	case *ast.WhileStmt:
		return l.whileStmt(n, "")
	case *ast.DoWhileStmt:
		return l.doWhileStmt(n)
	case *ast.ForStmt:
		return l.forStmt(n, "")
	case *ast.ForEachStmt:
		return l.forEachStmt(n, "")
	case *ast.BreakStmt:
		return l.breakStmt(n)
	case *ast.ContinueStmt:
		return l.continueStmt(n)
	case *ast.ReturnStmt:
		if n.Value != nil {
			if call, ok := n.Value.(*ast.CallExpr); ok {
				call.TailCall = true
			}
			if err := l.expr(n.Value); err != nil {
				return err
			}
			l.emit(avmc.Node{Op: avmc.OpReturn, Pos: n.Pos})
		} else {
			l.emit(avmc.Node{Op: avmc.OpReturnVoid, Pos: n.Pos})
		}
		return nil
	case *ast.ThrowStmt:
		if err := l.expr(n.Value); err != nil {
			return err
		}
		l.emit(avmc.Node{Op: avmc.OpThrow, Pos: n.Pos})
		return nil
	case *ast.TryStmt:
		return l.tryStmt(n)
	case *ast.DeferStmt:
		body, err := LowerBlock([]ast.Stmt{n.Body})
		if err != nil {
			return err
		}
		l.emit(avmc.Node{Op: avmc.OpPushDefer, Sparam: body, Pos: n.Pos})
		return nil
	case *ast.AssertStmt:
		if err := l.expr(n.Condition); err != nil {
			return err
		}
		flag := int64(0)
		if n.Message != nil {
			if err := l.expr(n.Message); err != nil {
				return err
			}
			flag = 1
		}
		l.emit(avmc.Node{Op: avmc.OpAssert, I: flag, Pos: n.Pos})
		return nil
	case *ast.UnsetStmt:
		target, err := buildAssignTarget(n.Target, "")
		if err != nil {
			return err
		}
		l.emit(avmc.Node{Op: avmc.OpUnset, Sparam: target, Pos: n.Pos})
		return nil
	default:
		return fmt.Errorf("air: unsupported statement %T", s)
	}
}

func (l *lowerer) closureTemplate(fn *ast.FuncExpr) (*avmc.ClosureTemplate, error) {
	body, err := LowerBlock(fn.Body)
	if err != nil {
		return nil, err
	}
	return &avmc.ClosureTemplate{Name: fn.Name, Params: fn.Params, HasRest: fn.HasRest, Body: body}, nil
}

func (l *lowerer) ifStmt(n *ast.IfStmt) error {
	if err := l.expr(n.Condition); err != nil {
		return err
	}
	jumpElse := l.emit(avmc.Node{Op: avmc.OpJumpIfFalse, Pos: n.Pos})
	if err := l.block(n.Then.Body); err != nil {
		return err
	}
	jumpEnd := l.emit(avmc.Node{Op: avmc.OpJump})
	l.patchJumpTarget(jumpElse, int64(l.q.Len()))
	if n.Else != nil {
		switch e := n.Else.(type) {
		case *ast.BlockStmt:
			if err := l.block(e.Body); err != nil {
				return err
			}
		case *ast.IfStmt:
			if err := l.ifStmt(e); err != nil {
				return err
			}
		}
	}
	l.patchJumpTarget(jumpEnd, int64(l.q.Len()))
	return nil
}

func (l *lowerer) switchStmt(n *ast.SwitchStmt) error {
	if err := l.expr(n.Value); err != nil {
		return err
	}
	// Desugar to a chain of equality comparisons against a dup'd subject,
	// matching the spec's "switch table" category without needing a
	// dedicated jump-table opcode for a first implementation.
	var endFixups []int
	var defaultCase *ast.SwitchCase
	for i := range n.Cases {
		c := &n.Cases[i]
		if c.Default {
			defaultCase = c
			continue
		}
		var caseFixups []int
		for _, v := range c.Values {
			l.emit(avmc.Node{Op: avmc.OpDup})
			if err := l.expr(v); err != nil {
				return err
			}
			l.emit(avmc.Node{Op: avmc.OpBinary, Str: "=="})
			caseFixups = append(caseFixups, l.emit(avmc.Node{Op: avmc.OpJumpIfTrue}))
		}
		skip := l.emit(avmc.Node{Op: avmc.OpJump})
		for _, f := range caseFixups {
			l.patchJumpTarget(f, int64(l.q.Len()))
		}
		l.emit(avmc.Node{Op: avmc.OpPop}) // drop the matched comparison's true/subject residue
		sw := &loopLabels{baseDepth: l.blockDepth}
		l.frames = append(l.frames, sw)
		if err := l.blockNoEnter(c.Body); err != nil {
			return err
		}
		l.frames = l.frames[:len(l.frames)-1]
		for _, f := range sw.breakFixups {
			endFixups = append(endFixups, f)
		}
		endFixups = append(endFixups, l.emit(avmc.Node{Op: avmc.OpJump}))
		l.patchJumpTarget(skip, int64(l.q.Len()))
	}
	l.emit(avmc.Node{Op: avmc.OpPop}) // subject, unmatched
	if defaultCase != nil {
		sw := &loopLabels{baseDepth: l.blockDepth}
		l.frames = append(l.frames, sw)
		if err := l.blockNoEnter(defaultCase.Body); err != nil {
			return err
		}
		l.frames = l.frames[:len(l.frames)-1]
		endFixups = append(endFixups, sw.breakFixups...)
	}
	for _, f := range endFixups {
		l.patchJumpTarget(f, int64(l.q.Len()))
	}
	return nil
}

// blockNoEnter is block's twin for a switch case body: a fresh scope,
// named differently only because its caller already consumed the case's
// opening punctuation and needs no separate AST block node.
func (l *lowerer) blockNoEnter(stmts []ast.Stmt) error {
	return l.block(stmts)
}

func (l *lowerer) whileStmt(n *ast.WhileStmt, label string) error {
	ll := &loopLabels{label: label, isLoop: true, baseDepth: l.blockDepth}
	l.frames = append(l.frames, ll)

	top := l.q.Len()
	if err := l.expr(n.Condition); err != nil {
		return err
	}
	exitFixup := l.emit(avmc.Node{Op: avmc.OpJumpIfFalse})
	if err := l.block(n.Body.Body); err != nil {
		return err
	}
	l.emit(avmc.Node{Op: avmc.OpJump, I: int64(top)})
	end := l.q.Len()
	l.patchJumpTarget(exitFixup, int64(end))

	l.finishLoopAt(ll, top, end)
	return nil
}

func (l *lowerer) doWhileStmt(n *ast.DoWhileStmt) error {
	ll := &loopLabels{isLoop: true, baseDepth: l.blockDepth}
	l.frames = append(l.frames, ll)

	top := l.q.Len()
	if err := l.block(n.Body.Body); err != nil {
		return err
	}
	continueAt := l.q.Len()
	if err := l.expr(n.Condition); err != nil {
		return err
	}
	l.emit(avmc.Node{Op: avmc.OpJumpIfTrue, I: int64(top)})
	end := l.q.Len()

	l.finishLoopAt(ll, continueAt, end)
	return nil
}

func (l *lowerer) forStmt(n *ast.ForStmt, label string) error {
	l.emit(avmc.Node{Op: avmc.OpEnterBlock})
	l.blockDepth++
	if n.Init != nil {
		if err := l.stmt(n.Init); err != nil {
			return err
		}
	}
	ll := &loopLabels{label: label, isLoop: true, baseDepth: l.blockDepth}
	l.frames = append(l.frames, ll)

	top := l.q.Len()
	var exitFixup int
	hasCond := n.Condition != nil
	if hasCond {
		if err := l.expr(n.Condition); err != nil {
			return err
		}
		exitFixup = l.emit(avmc.Node{Op: avmc.OpJumpIfFalse})
	}
	if err := l.block(n.Body.Body); err != nil {
		return err
	}
	continueAt := l.q.Len()
	if n.Post != nil {
		if err := l.stmt(n.Post); err != nil {
			return err
		}
	}
	l.emit(avmc.Node{Op: avmc.OpJump, I: int64(top)})
	end := l.q.Len()
	if hasCond {
		l.patchJumpTarget(exitFixup, int64(end))
	}
	l.finishLoopAt(ll, continueAt, end)
	l.blockDepth--
	l.emit(avmc.Node{Op: avmc.OpLeaveBlock})
	return nil
}

func (l *lowerer) forEachStmt(n *ast.ForEachStmt, label string) error {
	l.emit(avmc.Node{Op: avmc.OpEnterBlock})
	l.blockDepth++
	if err := l.expr(n.Container); err != nil {
		return err
	}
	l.emit(avmc.Node{Op: avmc.OpForEachInit})

	ll := &loopLabels{label: label, isLoop: true, baseDepth: l.blockDepth}
	l.frames = append(l.frames, ll)

	top := l.q.Len()
	exitFixup := l.emit(avmc.Node{Op: avmc.OpForEachNext, Str: n.ValueName + "\x00" + n.KeyName})
	if err := l.block(n.Body.Body); err != nil {
		return err
	}
	l.emit(avmc.Node{Op: avmc.OpJump, I: int64(top)})
	end := l.q.Len()
	l.patchJumpTarget(exitFixup, int64(end))

	l.finishLoopAt(ll, top, end)
	l.blockDepth--
	l.emit(avmc.Node{Op: avmc.OpLeaveBlock})
	return nil
}

func (l *lowerer) finishLoopAt(ll *loopLabels, continueAt, end int) {
	for _, f := range ll.breakFixups {
		l.patchJumpTarget(f, int64(end))
	}
	for _, f := range ll.continueFixups {
		l.patchJumpTarget(f, int64(continueAt))
	}
	l.frames = l.frames[:len(l.frames)-1]
}

// findFrame returns the nearest enclosing breakable/continuable frame.
// break matches any frame (loop or switch); continue skips switch
// frames and only ever targets a loop.
func (l *lowerer) findFrame(label string, loopOnly bool) *loopLabels {
	for i := len(l.frames) - 1; i >= 0; i-- {
		f := l.frames[i]
		if loopOnly && !f.isLoop {
			continue
		}
		if label == "" || f.label == label {
			return f
		}
	}
	return nil
}

func (l *lowerer) breakStmt(n *ast.BreakStmt) error {
	ll := l.findFrame(n.Label, false)
	if ll == nil {
		return fmt.Errorf("air: break outside loop or switch at line %d", n.Pos.Line)
	}
	for i := 0; i < l.blockDepth-ll.baseDepth; i++ {
		l.emit(avmc.Node{Op: avmc.OpLeaveBlock})
	}
	idx := l.emit(avmc.Node{Op: avmc.OpJump, Pos: n.Pos})
	ll.breakFixups = append(ll.breakFixups, idx)
	return nil
}

func (l *lowerer) continueStmt(n *ast.ContinueStmt) error {
	ll := l.findFrame(n.Label, true)
	if ll == nil {
		return fmt.Errorf("air: continue outside loop at line %d", n.Pos.Line)
	}
	for i := 0; i < l.blockDepth-ll.baseDepth; i++ {
		l.emit(avmc.Node{Op: avmc.OpLeaveBlock})
	}
	idx := l.emit(avmc.Node{Op: avmc.OpJump, Pos: n.Pos})
	ll.continueFixups = append(ll.continueFixups, idx)
	return nil
}

func (l *lowerer) tryStmt(n *ast.TryStmt) error {
	tmpl := &avmc.TryTemplate{}
	if n.Catch != nil {
		body, err := LowerBlock(n.Catch.Body.Body)
		if err != nil {
			return err
		}
		tmpl.HasCatch = true
		tmpl.CatchName = n.Catch.Name
		tmpl.CatchBody = body
	}
	if n.Finally != nil {
		body, err := LowerBlock(n.Finally.Body)
		if err != nil {
			return err
		}
		tmpl.HasFinally = true
		tmpl.FinallyBody = body
	}
	l.emit(avmc.Node{Op: avmc.OpTryPush, Sparam: tmpl, Pos: n.Pos})
	if err := l.block(n.Body.Body); err != nil {
		return err
	}
	l.emit(avmc.Node{Op: avmc.OpTryPop, Pos: n.Pos})
	tmpl.PopIndex = l.q.Len()
	return nil
}

func buildAssignTarget(target ast.Expr, operator string) (*avmc.AssignTarget, error) {
	var path []avmc.PathStep
	cur := target
	for {
		switch e := cur.(type) {
		case *ast.IdentifierExpr:
			reversePath(path)
			return &avmc.AssignTarget{RootName: e.Name, Path: path, Operator: operator}, nil
		case *ast.IndexExpr:
			q, err := lowerExprQueue(e.Index)
			if err != nil {
				return nil, err
			}
			path = append(path, avmc.PathStep{Kind: avmc.StepIndex, IndexQueue: q})
			cur = e.Expr
		case *ast.PropertyExpr:
			path = append(path, avmc.PathStep{Kind: avmc.StepProp, Key: e.Name})
			cur = e.Expr
		default:
			return nil, fmt.Errorf("air: invalid assignment target at line %d", target.Position().Line)
		}
	}
}

func reversePath(path []avmc.PathStep) {
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
}

func lowerExprQueue(e ast.Expr) (avmc.Queue, error) {
	l := &lowerer{}
	if err := l.expr(e); err != nil {
		return nil, err
	}
	return l.q, nil
}
