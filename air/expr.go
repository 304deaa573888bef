package air

import (
	"fmt"

	"github.com/mayhemheroes/asteria/ast"
	"github.com/mayhemheroes/asteria/avmc"
	"github.com/mayhemheroes/asteria/value"
)

func (l *lowerer) expr(e ast.Expr) error {
	switch n := e.(type) {
	case *ast.NullExpr:
		l.emit(avmc.Node{Op: avmc.OpPushNull, Pos: n.Pos})
		return nil
	case *ast.BoolExpr:
		l.emit(avmc.Node{Op: avmc.OpPushLiteral, Sparam: value.Bool(n.Value), Pos: n.Pos})
		return nil
	case *ast.IntExpr:
		l.emit(avmc.Node{Op: avmc.OpPushLiteral, Sparam: value.Int(n.Value), Pos: n.Pos})
		return nil
	case *ast.RealExpr:
		l.emit(avmc.Node{Op: avmc.OpPushLiteral, Sparam: value.Real(n.Value), Pos: n.Pos})
		return nil
	case *ast.StringExpr:
		l.emit(avmc.Node{Op: avmc.OpPushLiteral, Sparam: value.Str(n.Value), Pos: n.Pos})
		return nil
	case *ast.ThisExpr:
		l.emit(avmc.Node{Op: avmc.OpThis, Pos: n.Pos})
		return nil
	case *ast.IdentifierExpr:
		l.emit(avmc.Node{Op: avmc.OpLoadVar, Str: n.Name, Pos: n.Pos})
		return nil
	case *ast.UnaryExpr:
		return l.unaryExpr(n)
	case *ast.BinaryExpr:
		if err := l.expr(n.Left); err != nil {
			return err
		}
		if err := l.expr(n.Right); err != nil {
			return err
		}
		l.emit(avmc.Node{Op: avmc.OpBinary, Str: n.Operator, Pos: n.Pos})
		return nil
	case *ast.LogicalExpr:
		return l.logicalExpr(n)
	case *ast.TernaryExpr:
		return l.ternaryExpr(n)
	case *ast.AssignExpr:
		return l.assignExpr(n)
	case *ast.IndexExpr:
		if err := l.expr(n.Expr); err != nil {
			return err
		}
		if err := l.expr(n.Index); err != nil {
			return err
		}
		l.emit(avmc.Node{Op: avmc.OpIndexGet, Pos: n.Pos})
		return nil
	case *ast.PropertyExpr:
		if err := l.expr(n.Expr); err != nil {
			return err
		}
		l.emit(avmc.Node{Op: avmc.OpPropGet, Str: n.Name, Pos: n.Pos})
		return nil
	case *ast.CallExpr:
		return l.callExpr(n)
	case *ast.ArrayExpr:
		for _, el := range n.Elements {
			if err := l.expr(el); err != nil {
				return err
			}
		}
		l.emit(avmc.Node{Op: avmc.OpMakeArray, I: int64(len(n.Elements)), Pos: n.Pos})
		return nil
	case *ast.ObjectExpr:
		keys := make([]string, len(n.Pairs))
		for i, pair := range n.Pairs {
			keys[i] = pair.Key
			if err := l.expr(pair.Value); err != nil {
				return err
			}
		}
		l.emit(avmc.Node{Op: avmc.OpMakeObject, Sparam: keys, I: int64(len(keys)), Pos: n.Pos})
		return nil
	case *ast.FuncExpr:
		tmpl, err := l.closureTemplate(n)
		if err != nil {
			return err
		}
		l.emit(avmc.Node{Op: avmc.OpMakeClosure, Sparam: tmpl, Pos: n.Pos})
		return nil
	default:
		return fmt.Errorf("air: unsupported expression %T", e)
	}
}

func (l *lowerer) unaryExpr(n *ast.UnaryExpr) error {
	switch n.Operator {
	case "typeof":
		if err := l.expr(n.Operand); err != nil {
			return err
		}
		l.emit(avmc.Node{Op: avmc.OpUnary, Str: "typeof", Pos: n.Pos})
		return nil
	case "++", "--":
		target, err := buildAssignTarget(n.Operand, n.Operator)
		if err != nil {
			return err
		}
		postfix := int64(0)
		if n.Postfix {
			postfix = 1
		}
		l.emit(avmc.Node{Op: avmc.OpAssign, Sparam: target, I: postfix, Pos: n.Pos})
		return nil
	default:
		if err := l.expr(n.Operand); err != nil {
			return err
		}
		l.emit(avmc.Node{Op: avmc.OpUnary, Str: n.Operator, Pos: n.Pos})
		return nil
	}
}

func (l *lowerer) logicalExpr(n *ast.LogicalExpr) error {
	if err := l.expr(n.Left); err != nil {
		return err
	}
	switch n.Operator {
	case "&&":
		jump := l.emit(avmc.Node{Op: avmc.OpJumpIfFalseKeep, Pos: n.Pos})
		l.emit(avmc.Node{Op: avmc.OpPop})
		if err := l.expr(n.Right); err != nil {
			return err
		}
		l.patchJumpTarget(jump, int64(l.q.Len()))
		return nil
	case "||":
		jump := l.emit(avmc.Node{Op: avmc.OpJumpIfTrueKeep, Pos: n.Pos})
		l.emit(avmc.Node{Op: avmc.OpPop})
		if err := l.expr(n.Right); err != nil {
			return err
		}
		l.patchJumpTarget(jump, int64(l.q.Len()))
		return nil
	case "??":
		// Null-coalescing: left wins unless it is null.
		l.emit(avmc.Node{Op: avmc.OpDup})
		l.emit(avmc.Node{Op: avmc.OpUnary, Str: "isnull"})
		jump := l.emit(avmc.Node{Op: avmc.OpJumpIfFalse, Pos: n.Pos})
		l.emit(avmc.Node{Op: avmc.OpPop})
		if err := l.expr(n.Right); err != nil {
			return err
		}
		end := l.emit(avmc.Node{Op: avmc.OpJump})
		l.patchJumpTarget(jump, int64(l.q.Len()))
		l.patchJumpTarget(end, int64(l.q.Len()))
		return nil
	default:
		return fmt.Errorf("air: unknown logical operator %q", n.Operator)
	}
}

func (l *lowerer) ternaryExpr(n *ast.TernaryExpr) error {
	if err := l.expr(n.Condition); err != nil {
		return err
	}
	jumpElse := l.emit(avmc.Node{Op: avmc.OpJumpIfFalse, Pos: n.Pos})
	if err := l.expr(n.Then); err != nil {
		return err
	}
	jumpEnd := l.emit(avmc.Node{Op: avmc.OpJump})
	l.patchJumpTarget(jumpElse, int64(l.q.Len()))
	if err := l.expr(n.Else); err != nil {
		return err
	}
	l.patchJumpTarget(jumpEnd, int64(l.q.Len()))
	return nil
}

func (l *lowerer) assignExpr(n *ast.AssignExpr) error {
	target, err := buildAssignTarget(n.Target, n.Operator)
	if err != nil {
		return err
	}
	if err := l.expr(n.Value); err != nil {
		return err
	}
	l.emit(avmc.Node{Op: avmc.OpAssign, Sparam: target, Pos: n.Pos})
	return nil
}

// callExpr pushes, in order, `this` then the callee then the arguments.
// A method call's receiver is evaluated exactly once: it is duplicated
// on the stack rather than re-evaluated for both the property lookup
// and the `this` binding.
func (l *lowerer) callExpr(n *ast.CallExpr) error {
	if prop, ok := n.Callee.(*ast.PropertyExpr); ok {
		if err := l.expr(prop.Expr); err != nil {
			return err
		}
		l.emit(avmc.Node{Op: avmc.OpDup})
		l.emit(avmc.Node{Op: avmc.OpPropGet, Str: prop.Name, Pos: prop.Pos})
	} else {
		l.emit(avmc.Node{Op: avmc.OpPushNull})
		if err := l.expr(n.Callee); err != nil {
			return err
		}
	}
	for _, a := range n.Args {
		if err := l.expr(a); err != nil {
			return err
		}
	}
	argc := int64(len(n.Args)) << 1
	if n.TailCall {
		argc |= 1
	}
	l.emit(avmc.Node{Op: avmc.OpCall, I: argc, Pos: n.Pos})
	return nil
}
