package exec

import (
	"fmt"

	"github.com/mayhemheroes/asteria/avmc"
	"github.com/mayhemheroes/asteria/gc"
	"github.com/mayhemheroes/asteria/token"
	"github.com/mayhemheroes/asteria/value"
)

// CompiledFunc is the value.Callable backing every AIR-lowered function
// body (spec.md §3.4, §4.2): a Queue plus the parameter list needed to
// bind arguments into a fresh FunctionContext parented at the lexical
// scope the closure captured, never the caller's dynamic context.
type CompiledFunc struct {
	interp  *Interpreter
	name    string
	params  []string
	hasRest bool
	body    avmc.Queue
	parent  *value.Context
}

// NewCompiledFunc grounds a ClosureTemplate into a callable body, closing
// over the Context active when its OpMakeClosure node ran.
func NewCompiledFunc(interp *Interpreter, tmpl *avmc.ClosureTemplate, parent *value.Context) *CompiledFunc {
	return &CompiledFunc{interp: interp, name: tmpl.Name, params: tmpl.Params, hasRest: tmpl.HasRest, body: tmpl.Body, parent: parent}
}

// pendingTailCall is how Invoke reports that its Queue ended in a tail
// call rather than a value: it never resolves the trampoline itself, so
// that a chain of tail calls into unrelated functions is resolved as a
// loop in callValue instead of Go-level recursion (spec.md §4.4,
// GLOSSARY "PTC").
type pendingTailCall struct {
	ptc *value.PendingTailCall
}

func (pendingTailCall) Error() string { return "pending tail call" }

// Invoke implements value.Callable.
func (f *CompiledFunc) Invoke(args []value.Value, this value.Value) (value.Value, error) {
	fctx := value.NewContext(value.FunctionContextKind, f.parent)
	if exc := bindParams(f.interp, fctx, f.name, f.params, f.hasRest, args); exc != nil {
		return nil, exc
	}
	fr := newFrame(f.interp, f.body, fctx, this)
	out := fr.run()
	switch out.kind {
	case outReturn:
		return out.val, nil
	case outThrow:
		out.exc.Frames = append(out.exc.Frames, BacktraceFrame{Kind: FrameFunc, Signature: signature(f.name)})
		return nil, out.exc
	case outPTC:
		return nil, pendingTailCall{ptc: out.ptc}
	default:
		return value.Null{}, nil
	}
}

func signature(name string) string {
	if name == "" {
		return "anonymous function"
	}
	return "function " + name
}

// bindParams checks arity and declares each parameter in fctx. HasRest
// only relaxes the upper bound (extra positional arguments are accepted
// and ignored); the parser's bare `...` gives no name to bind them under.
func bindParams(interp *Interpreter, fctx *value.Context, name string, params []string, hasRest bool, args []value.Value) *Exception {
	if len(args) < len(params) || (!hasRest && len(args) > len(params)) {
		return raise(token.Position{}, CodeArityError, fmt.Sprintf("%s expects %d argument(s), got %d", signature(name), len(params), len(args)))
	}
	for i, p := range params {
		v := interp.GC.CreateVariable(args[i], gc.Newest)
		v.Refcount++
		fctx.Declare(p, v)
	}
	return nil
}
