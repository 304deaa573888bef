package exec

import (
	"fmt"

	"github.com/mayhemheroes/asteria/token"
	"github.com/mayhemheroes/asteria/value"
)

// Runtime exception categories (spec.md §6): the "code" field of the
// {code, message} object that raise builds.
const (
	CodeTypeError       = "type_error"
	CodeIndexError      = "index_error"
	CodeKeyError        = "key_error"
	CodeArityError      = "arity_error"
	CodeIntegerOverflow = "integer_overflow"
	CodeDivisionByZero  = "division_by_zero"
	CodeAssertion       = "assertion"
)

// FrameKind discriminates one BacktraceFrame.
type FrameKind string

const (
	FrameThrow  FrameKind = "throw"
	FrameCatch  FrameKind = "catch"
	FrameFunc   FrameKind = "func"
	FrameNative FrameKind = "native"
)

// BacktraceFrame is one entry of an Exception's unwind trail (spec.md
// §6, §7). token.Position carries no column, so Offset stands in for it.
type BacktraceFrame struct {
	Kind      FrameKind
	Line      uint32
	Offset    uint
	Signature string // function name for Func/Native frames
}

// Exception is a thrown Value plus the backtrace accumulated while it
// unwound uncaught (spec.md §4.4, §7). try/catch that recovers one never
// lets it escape to the host, so Frames is only ever inspected on an
// Exception a caller actually sees.
type Exception struct {
	Value  value.Value
	Frames []BacktraceFrame
}

func (e *Exception) Error() string {
	if e.Value == nil {
		return "exception"
	}
	return fmt.Sprintf("uncaught exception: %s", e.Value.String())
}

// newException builds an Exception carrying the throw site as its first
// backtrace frame.
func newException(pos token.Position, v value.Value) *Exception {
	return &Exception{Value: v, Frames: []BacktraceFrame{{Kind: FrameThrow, Line: pos.Line, Offset: pos.Offset}}}
}

// raise builds a structured runtime error value ({code, message}) and
// wraps it in an Exception, for the categories spec.md §7 names that
// originate from the engine itself rather than script code.
func raise(pos token.Position, code, message string) *Exception {
	v := value.NewObject([]string{"code", "message"}, []value.Value{value.Str(code), value.Str(message)})
	return newException(pos, v)
}
