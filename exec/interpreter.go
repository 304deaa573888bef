// Package exec runs the AVMC instruction queues air/lower.go produces
// (spec.md §4-§5): a flat []avmc.Node per Queue, an instruction-pointer
// loop advancing through it, and a runtime stack of lexical block scopes
// standing in for the nested ExecutiveContexts the source's tree-walking
// interpreter pushed implicitly. Separate Queues exist only at function
// calls and at try/catch/finally/defer boundaries; everything else (if,
// while, for, switch-case bodies) is inlined in one Queue via
// OpEnterBlock/OpLeaveBlock markers, in the spirit of the teacher's
// StackFrame running one flat Program.Code with an IP.
package exec

import (
	"strings"

	"github.com/mayhemheroes/asteria/avmc"
	"github.com/mayhemheroes/asteria/gc"
	"github.com/mayhemheroes/asteria/token"
	"github.com/mayhemheroes/asteria/value"
)

// Interpreter owns the collector and the global lexical scope every
// program and closure ultimately chains to (spec.md §5: "not safe for
// concurrent use").
type Interpreter struct {
	GC     *gc.Collector
	Global *value.Context
}

// NewInterpreter returns an Interpreter with a fresh collector and an
// empty global scope.
func NewInterpreter() *Interpreter {
	return &Interpreter{GC: gc.New(), Global: value.NewContext(value.GlobalContextKind, nil)}
}

// Run executes a top-level Queue (Lower's output) as a nameless,
// parameterless function closing over Global, with `this` null.
func (in *Interpreter) Run(q avmc.Queue) (value.Value, *Exception) {
	top := &CompiledFunc{interp: in, body: q, parent: in.Global}
	return in.callValue(token.Position{}, value.Func{Body: top}, nil, value.Null{})
}

// callValue is the only place a Callable's Invoke is ever called, so it
// is the only place a chain of tail calls needs to resolve: a
// pendingTailCall error loops back here with the new callee/args/this
// instead of recursing into Invoke again, bounding native stack growth
// for tail-recursive scripts (spec.md §4.4).
func (in *Interpreter) callValue(pos token.Position, callee value.Value, args []value.Value, this value.Value) (value.Value, *Exception) {
	for {
		fn, ok := callee.(value.Func)
		if !ok {
			return nil, raise(pos, CodeTypeError, "value is not callable")
		}
		val, err := fn.Body.Invoke(args, this)
		if err == nil {
			return val, nil
		}
		if exc, ok := err.(*Exception); ok {
			return nil, exc
		}
		if ptc, ok := err.(pendingTailCall); ok {
			callee, args, this = ptc.ptc.Callee, ptc.ptc.Args, ptc.ptc.This
			continue
		}
		return nil, raise(pos, CodeTypeError, err.Error())
	}
}

// --- control-flow outcomes ---

type outcomeKind int

const (
	outNext outcomeKind = iota
	outReturn
	outThrow
	outPTC
)

// outcome is what running a Queue (to completion or to an overriding
// control-flow event) produced.
type outcome struct {
	kind outcomeKind
	val  value.Value
	exc  *Exception
	ptc  *value.PendingTailCall
}

// blockScope is one open ExecutiveContext plus the defer bodies pushed
// into it, LIFO (spec.md §3.4, §4.2 OpPushDefer).
type blockScope struct {
	ctx    *value.Context
	defers []avmc.Queue
}

// tryHandler is one open try construct's runtime bookkeeping. depth is
// len(blocks) at the moment OpTryPush ran, i.e. before the try body's own
// OpEnterBlock: a block-pop that brings len(blocks) back down to depth
// has exactly left the protected region, whether by falling off the end
// of the body, by a break/continue chain passing through it, or by a
// return/tail-call unwind (spec.md §4.2 TryTemplate.PopIndex doc).
type tryHandler struct {
	tmpl     *avmc.TryTemplate
	depth    int
	ownerCtx *value.Context
}

// unwindResult is unwindThrow's verdict: either a handler caught the
// exception and dispatch should resume this same frame at resumeIP, or it
// escaped every open try and out carries what the caller should do next
// (propagate a throw, or let a defer/finally's own return/tail-call win).
type unwindResult struct {
	caught   bool
	resumeIP int
	out      outcome
}

// frame runs one Queue: a function body, or a nested defer/catch/finally
// body, or a tiny single-expression Queue (an AssignTarget's dynamic
// index step). Each Go-level frame.run() call is independent; tail calls
// never recurse into a new frame via Go's call stack (that would defeat
// their whole point) — they unwind this one and hand a PendingTailCall up
// through Invoke/callValue instead.
type frame struct {
	interp *Interpreter
	q      avmc.Queue
	ip     int
	stack  []value.Value
	blocks []*blockScope
	tries  []*tryHandler
	iters  []*forEachIter
	fctx   *value.Context
	this   value.Value
}

func newFrame(interp *Interpreter, q avmc.Queue, fctx *value.Context, this value.Value) *frame {
	return &frame{interp: interp, q: q, fctx: fctx, this: this}
}

func (f *frame) topCtx() *value.Context {
	if len(f.blocks) == 0 {
		return f.fctx
	}
	return f.blocks[len(f.blocks)-1].ctx
}

func (f *frame) push(v value.Value) { f.stack = append(f.stack, v) }

func (f *frame) pop() value.Value {
	n := len(f.stack) - 1
	v := f.stack[n]
	f.stack = f.stack[:n]
	return v
}

func (f *frame) peek() value.Value { return f.stack[len(f.stack)-1] }

func (f *frame) enterBlock() {
	f.blocks = append(f.blocks, &blockScope{ctx: value.NewContext(value.ExecutiveContextKind, f.topCtx())})
}

// declareVar binds name to a freshly allocated Variable in the innermost
// context, decrementing the Refcount of whatever it shadows directly in
// that same context (a re-Declare overwrite drops that binding's hold;
// [[gc]]'s Refcount contract).
func (f *frame) declareVar(name string, val value.Value) *value.Variable {
	ctx := f.topCtx()
	if ctx.ResolveContext(name) == ctx {
		ctx.Resolve(name).Refcount--
	}
	v := f.interp.GC.CreateVariable(val, gc.Newest)
	v.Refcount++
	ctx.Declare(name, v)
	return v
}

// resolveOrDeclare implements the "assignment/read creates in the
// innermost context if the name is unbound anywhere upward" rule shared
// by OpLoadVar and every assignment target's root (air's AssignTarget
// doc).
func (f *frame) resolveOrDeclare(name string) *value.Variable {
	if v := f.topCtx().Resolve(name); v != nil {
		return v
	}
	return f.declareVar(name, value.Null{})
}

// runSubAt runs q as an independent frame parented at ctx, sharing this
// frame's `this`. The returned Value is q's stack top if it ran to
// completion with something left on it (an expression Queue); defer,
// catch and finally bodies leave nothing, so callers that only care
// about the outcome just ignore it.
func (f *frame) runSubAt(q avmc.Queue, ctx *value.Context) (value.Value, outcome) {
	sub := newFrame(f.interp, q, ctx, f.this)
	out := sub.run()
	if out.kind != outNext {
		return nil, out
	}
	if n := len(sub.stack); n > 0 {
		return sub.stack[n-1], out
	}
	return value.Null{}, out
}

func (f *frame) evalQueue(q avmc.Queue) (value.Value, outcome) {
	return f.runSubAt(q, f.topCtx())
}

// raise routes exc through this frame's open try handlers. ok=true means
// a handler caught it and the dispatch loop should jump to the new ip and
// keep running; ok=false means the caller must return out as this
// frame's own outcome.
func (f *frame) raise(exc *Exception) (out outcome, ok bool) {
	res := f.unwindThrow(exc)
	if res.caught {
		f.ip = res.resumeIP
		return outcome{}, true
	}
	return res.out, false
}

// popBlockRaw pops the innermost block scope, releasing the execution-
// time hold each of its direct bindings took at Declare and running its
// defers LIFO. It knows nothing about try handlers; popOneBlock and
// unwindThrow layer that on top.
func (f *frame) popBlockRaw() outcome {
	n := len(f.blocks) - 1
	scope := f.blocks[n]
	f.blocks = f.blocks[:n]
	scope.ctx.WalkVariables(func(v *value.Variable) { v.Refcount-- })
	for i := len(scope.defers) - 1; i >= 0; i-- {
		if _, out := f.runSubAt(scope.defers[i], scope.ctx); out.kind != outNext {
			return out
		}
	}
	return outcome{kind: outNext}
}

func (f *frame) runFinally(h *tryHandler) outcome {
	if !h.tmpl.HasFinally {
		return outcome{kind: outNext}
	}
	_, out := f.runSubAt(h.tmpl.FinallyBody, h.ownerCtx)
	return out
}

func (f *frame) runCatch(h *tryHandler, exc *Exception) outcome {
	ctx := value.NewContext(value.ExecutiveContextKind, h.ownerCtx)
	v := f.interp.GC.CreateVariable(exc.Value, gc.Newest)
	v.Refcount++
	ctx.Declare(h.tmpl.CatchName, v)
	_, out := f.runSubAt(h.tmpl.CatchBody, ctx)
	v.Refcount--
	return out
}

// popOneBlock pops one block and, if that exactly abandons a try handler
// (normal fall-through out of its body, or a break/continue leave-chain
// passing through it), runs only that handler's finally — never its
// catch, which only ever fires on an actual thrown value via
// unwindThrow. Used by the dispatch loop's OpLeaveBlock case and by
// unwindNormal's return/tail-call unwind.
func (f *frame) popOneBlock() outcome {
	out := f.popBlockRaw()
	if out.kind != outNext {
		return out
	}
	depth := len(f.blocks)
	for len(f.tries) > 0 && f.tries[len(f.tries)-1].depth == depth {
		h := f.tries[len(f.tries)-1]
		f.tries = f.tries[:len(f.tries)-1]
		if fin := f.runFinally(h); fin.kind != outNext {
			return fin
		}
	}
	return outcome{kind: outNext}
}

// unwindThrow searches outward from the current block for a handler that
// catches exc, running every finally it passes on the way (spec.md §4.4
// try/catch/finally). Handlers are checked before popping the next block
// so a re-entrant call (a finally that itself throws) resumes the search
// exactly where it left off instead of skipping a level.
func (f *frame) unwindThrow(exc *Exception) unwindResult {
	for {
		depth := len(f.blocks)
		for len(f.tries) > 0 && f.tries[len(f.tries)-1].depth == depth {
			h := f.tries[len(f.tries)-1]
			f.tries = f.tries[:len(f.tries)-1]
			if h.tmpl.HasCatch {
				res := f.runCatch(h, exc)
				switch res.kind {
				case outNext:
					if fin := f.runFinally(h); fin.kind != outNext {
						return unwindResult{out: fin}
					}
					return unwindResult{caught: true, resumeIP: h.tmpl.PopIndex}
				case outThrow:
					exc = res.exc
					if fin := f.runFinally(h); fin.kind != outNext {
						return unwindResult{out: fin}
					}
				default:
					if fin := f.runFinally(h); fin.kind != outNext {
						return unwindResult{out: fin}
					}
					return unwindResult{out: res}
				}
				continue
			}
			if fin := f.runFinally(h); fin.kind != outNext {
				return unwindResult{out: fin}
			}
		}
		if len(f.blocks) == 0 {
			return unwindResult{out: outcome{kind: outThrow, exc: exc}}
		}
		out := f.popBlockRaw()
		switch out.kind {
		case outThrow:
			exc = out.exc
		case outNext:
		default:
			return unwindResult{out: out}
		}
	}
}

// unwindNormal drains every open block down to the function boundary for
// a return or tail call, running defers and abandoned finally clauses.
// One of them overriding pending (itself returning, throwing, or tail-
// calling) replaces it, the same as a Go defer recovering and returning
// its own value; a defer that throws hands off to unwindThrow so any
// still-open try further out gets a chance to catch it.
func (f *frame) unwindNormal(pending outcome) outcome {
	for len(f.blocks) > 0 {
		out := f.popOneBlock()
		switch out.kind {
		case outNext:
		case outThrow:
			res := f.unwindThrow(out.exc)
			if res.caught {
				f.ip = res.resumeIP
				return f.run()
			}
			return res.out
		default:
			pending = out
		}
	}
	return pending
}

// run is the AVMC dispatch loop: advance the instruction pointer through
// f.q, executing each Node until a control-flow opcode produces an
// overriding outcome or the Queue runs out (outNext, spec.md §4.3).
func (f *frame) run() outcome {
	for f.ip < len(f.q) {
		node := f.q[f.ip]
		f.ip++
		switch node.Op {
		case avmc.OpPushLiteral:
			f.push(node.Sparam.(value.Value))
		case avmc.OpPushNull:
			f.push(value.Null{})
		case avmc.OpLoadVar:
			v := f.resolveOrDeclare(node.Str)
			val, err := value.VariableRef(v).Read()
			if err != nil {
				if out, ok := f.raise(raise(node.Pos, CodeTypeError, err.Error())); !ok {
					return out
				}
				continue
			}
			f.push(val)
		case avmc.OpDeclare:
			f.declareVar(node.Str, f.pop())
		case avmc.OpThis:
			f.push(f.this)
		case avmc.OpPop:
			f.pop()
		case avmc.OpDup:
			f.push(f.peek())

		case avmc.OpMakeArray:
			n := int(node.I)
			elems := make([]value.Value, n)
			for i := n - 1; i >= 0; i-- {
				elems[i] = f.pop()
			}
			f.push(value.NewArray(elems))
		case avmc.OpMakeObject:
			keys := node.Sparam.([]string)
			n := int(node.I)
			vals := make([]value.Value, n)
			for i := n - 1; i >= 0; i-- {
				vals[i] = f.pop()
			}
			f.push(value.NewObject(keys, vals))
		case avmc.OpMakeClosure:
			tmpl := node.Sparam.(*avmc.ClosureTemplate)
			captured := f.topCtx()
			body := NewCompiledFunc(f.interp, tmpl, captured)
			f.push(value.Func{Name: tmpl.Name, Params: tmpl.Params, HasRest: tmpl.HasRest, Captured: captured, Body: body})

		case avmc.OpUnary:
			res, exc := unaryOp(node.Pos, node.Str, f.pop())
			if exc != nil {
				if out, ok := f.raise(exc); !ok {
					return out
				}
				continue
			}
			f.push(res)
		case avmc.OpBinary:
			r, l := f.pop(), f.pop()
			res, exc := binaryOp(node.Pos, node.Str, l, r)
			if exc != nil {
				if out, ok := f.raise(exc); !ok {
					return out
				}
				continue
			}
			f.push(res)
		case avmc.OpAssign:
			if out, ok := f.execAssign(node); !ok {
				return out
			}
		case avmc.OpIndexGet:
			idx, container := f.pop(), f.pop()
			f.push(indexGet(container, idx))
		case avmc.OpPropGet:
			container := f.pop()
			if o, ok := container.(value.Object); ok {
				if v, present := o.Get(node.Str); present {
					f.push(v)
					continue
				}
			}
			f.push(value.Null{})
		case avmc.OpUnset:
			target := node.Sparam.(*avmc.AssignTarget)
			ref, exc := f.buildReference(node.Pos, target)
			if exc != nil {
				if out, ok := f.raise(exc); !ok {
					return out
				}
				continue
			}
			if err := ref.Unset(); err != nil {
				if out, ok := f.raise(raise(node.Pos, CodeTypeError, err.Error())); !ok {
					return out
				}
				continue
			}

		case avmc.OpJump:
			f.ip = int(node.I)
		case avmc.OpJumpIfFalse:
			if !f.pop().Truthy() {
				f.ip = int(node.I)
			}
		case avmc.OpJumpIfTrue:
			if f.pop().Truthy() {
				f.ip = int(node.I)
			}
		case avmc.OpJumpIfFalseKeep:
			if !f.peek().Truthy() {
				f.ip = int(node.I)
			}
		case avmc.OpJumpIfTrueKeep:
			if f.peek().Truthy() {
				f.ip = int(node.I)
			}

		case avmc.OpEnterBlock:
			f.enterBlock()
		case avmc.OpLeaveBlock:
			out := f.popOneBlock()
			switch out.kind {
			case outNext:
			case outThrow:
				if o, ok := f.raise(out.exc); !ok {
					return o
				}
			default:
				return out
			}

		case avmc.OpPushDefer:
			scope := f.blocks[len(f.blocks)-1]
			scope.defers = append(scope.defers, node.Sparam.(avmc.Queue))

		case avmc.OpCall:
			if out, ok := f.execCall(node); !ok {
				return out
			}
		case avmc.OpReturn:
			return f.unwindNormal(outcome{kind: outReturn, val: f.pop()})
		case avmc.OpReturnVoid:
			return f.unwindNormal(outcome{kind: outReturn, val: value.Null{}})
		case avmc.OpThrow:
			exc := newException(node.Pos, f.pop())
			if out, ok := f.raise(exc); !ok {
				return out
			}
		case avmc.OpAssert:
			if out, ok := f.execAssert(node); !ok {
				return out
			}

		case avmc.OpTryPush:
			f.tries = append(f.tries, &tryHandler{tmpl: node.Sparam.(*avmc.TryTemplate), depth: len(f.blocks), ownerCtx: f.topCtx()})
		case avmc.OpTryPop:
			// The matching handler was already drained, either by the
			// normal OpLeaveBlock that just closed the try body (it and
			// this node are always adjacent) or by an earlier catch/
			// unwind; nothing is left to do here at runtime.

		case avmc.OpForEachInit:
			if out, ok := f.execForEachInit(node); !ok {
				return out
			}
		case avmc.OpForEachNext:
			f.execForEachNext(node)

		default:
			return outcome{kind: outThrow, exc: raise(node.Pos, CodeTypeError, "unreachable opcode")}
		}
	}
	return outcome{kind: outNext}
}

func (f *frame) execCall(node avmc.Node) (outcome, bool) {
	argc := int(node.I >> 1)
	tail := node.I&1 == 1
	args := make([]value.Value, argc)
	for i := argc - 1; i >= 0; i-- {
		args[i] = f.pop()
	}
	callee := f.pop()
	this := f.pop()

	if tail {
		fn, ok := callee.(value.Func)
		if !ok {
			return f.raise(raise(node.Pos, CodeTypeError, "value is not callable"))
		}
		ptc := &value.PendingTailCall{Callee: fn, Args: args, This: this}
		return f.unwindNormal(outcome{kind: outPTC, ptc: ptc}), false
	}

	val, exc := f.interp.callValue(node.Pos, callee, args, this)
	if exc != nil {
		return f.raise(exc)
	}
	f.push(val)
	return outcome{}, true
}

func (f *frame) execAssert(node avmc.Node) (outcome, bool) {
	msg := ""
	if node.I == 1 {
		msg = f.pop().String()
	}
	cond := f.pop()
	if cond.Truthy() {
		return outcome{}, true
	}
	if msg == "" {
		msg = "assertion failed"
	}
	return f.raise(raise(node.Pos, CodeAssertion, msg))
}

// execAssign implements OpAssign's three shapes: plain `=` (the new value
// is already on the stack), a compound binary-op assignment (read, apply,
// write back), and ++/-- (no stack operand; applied against the literal
// 1, node.I distinguishing postfix from prefix per air/expr.go).
func (f *frame) execAssign(node avmc.Node) (outcome, bool) {
	target := node.Sparam.(*avmc.AssignTarget)
	ref, exc := f.buildReference(node.Pos, target)
	if exc != nil {
		return f.raise(exc)
	}

	switch target.Operator {
	case "":
		rhs := f.pop()
		if err := ref.Open(func(value.Value) value.Value { return rhs }); err != nil {
			return f.raise(raise(node.Pos, CodeTypeError, err.Error()))
		}
		f.push(rhs)
	case "++", "--":
		op := "+"
		if target.Operator == "--" {
			op = "-"
		}
		old, rerr := ref.Read()
		if rerr != nil {
			return f.raise(raise(node.Pos, CodeTypeError, rerr.Error()))
		}
		newVal, oexc := binaryOp(node.Pos, op, old, value.Int(1))
		if oexc != nil {
			return f.raise(oexc)
		}
		if err := ref.Open(func(value.Value) value.Value { return newVal }); err != nil {
			return f.raise(raise(node.Pos, CodeTypeError, err.Error()))
		}
		if node.I == 1 {
			f.push(old)
		} else {
			f.push(newVal)
		}
	default:
		rhs := f.pop()
		old, rerr := ref.Read()
		if rerr != nil {
			return f.raise(raise(node.Pos, CodeTypeError, rerr.Error()))
		}
		newVal, oexc := binaryOp(node.Pos, target.Operator, old, rhs)
		if oexc != nil {
			return f.raise(oexc)
		}
		if err := ref.Open(func(value.Value) value.Value { return newVal }); err != nil {
			return f.raise(raise(node.Pos, CodeTypeError, err.Error()))
		}
		f.push(newVal)
	}
	return outcome{}, true
}

// buildReference resolves an AssignTarget's root (auto-declaring it if
// unbound, like OpLoadVar) and walks its static path, evaluating each
// dynamic index step's own Queue and choosing ArrayIndex vs ObjectKey
// from the evaluated value's runtime type (spec.md §3.3).
func (f *frame) buildReference(pos token.Position, target *avmc.AssignTarget) (value.Reference, *Exception) {
	v := f.resolveOrDeclare(target.RootName)
	ref := value.VariableRef(v)
	for _, step := range target.Path {
		switch step.Kind {
		case avmc.StepProp:
			ref = ref.WithModifier(value.ObjectKey(step.Key))
		case avmc.StepIndex:
			idxVal, out := f.evalQueue(step.IndexQueue)
			if out.kind == outThrow {
				return value.Reference{}, out.exc
			}
			switch iv := idxVal.(type) {
			case value.Int:
				ref = ref.WithModifier(value.ArrayIndex(int64(iv)))
			case value.Str:
				ref = ref.WithModifier(value.ObjectKey(string(iv)))
			default:
				return value.Reference{}, raise(pos, CodeTypeError, "index must be an integer or string")
			}
		}
	}
	return ref, nil
}

func indexGet(container, idx value.Value) value.Value {
	switch c := container.(type) {
	case value.Array:
		if i, ok := idx.(value.Int); ok {
			return c.Get(int(i))
		}
	case value.Object:
		if s, ok := idx.(value.Str); ok {
			if v, present := c.Get(string(s)); present {
				return v
			}
		}
	}
	return value.Null{}
}

// forEachIter is one open for-each loop's iteration state, kept off the
// operand stack the way a for-loop's locals live in the block scope
// instead: OpForEachNext mutates the SAME pair of Variables every
// iteration rather than declaring a fresh pair, so a closure created
// inside the loop body captures the loop variable by reference and sees
// it alias across iterations — a deliberate simplification (spec.md §4.2
// OpForEachInit/Next), not an oversight.
type forEachIter struct {
	isObject bool
	arr      value.Array
	obj      value.Object
	keys     []string
	idx      int
	valueVar *value.Variable
	keyVar   *value.Variable
}

func (f *frame) execForEachInit(node avmc.Node) (outcome, bool) {
	container := f.pop()
	it := &forEachIter{}
	switch c := container.(type) {
	case value.Array:
		it.arr = c
	case value.Object:
		it.isObject = true
		it.obj = c
		it.keys = c.Keys()
	default:
		return f.raise(raise(node.Pos, CodeTypeError, "for-each requires an array or object"))
	}
	f.iters = append(f.iters, it)
	return outcome{}, true
}

func (f *frame) execForEachNext(node avmc.Node) {
	it := f.iters[len(f.iters)-1]
	length := it.arr.Len()
	if it.isObject {
		length = len(it.keys)
	}
	if it.idx >= length {
		f.iters = f.iters[:len(f.iters)-1]
		f.ip = int(node.I)
		return
	}

	var val, key value.Value
	if it.isObject {
		k := it.keys[it.idx]
		v, _ := it.obj.Get(k)
		val, key = v, value.Str(k)
	} else {
		val, key = it.arr.Get(it.idx), value.Int(it.idx)
	}
	it.idx++

	names := strings.SplitN(node.Str, "\x00", 2)
	valueName, keyName := names[0], names[1]
	if it.valueVar == nil {
		it.valueVar = f.declareVar(valueName, val)
		if keyName != "" {
			it.keyVar = f.declareVar(keyName, key)
		}
		return
	}
	it.valueVar.Set(val)
	if it.keyVar != nil {
		it.keyVar.Set(key)
	}
}
