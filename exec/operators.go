package exec

import (
	"math"

	"github.com/mayhemheroes/asteria/token"
	"github.com/mayhemheroes/asteria/value"
)

// unaryOp implements every OpUnary spelling (spec.md §4.4). "++"/"--"
// are not here: those lower to OpAssign against the AssignTarget path.
func unaryOp(pos token.Position, op string, v value.Value) (value.Value, *Exception) {
	switch op {
	case "typeof":
		return value.Str(v.Kind().String()), nil
	case "isnull":
		_, ok := v.(value.Null)
		return value.Bool(ok), nil
	case "!":
		return value.Bool(!v.Truthy()), nil
	case "-":
		switch n := v.(type) {
		case value.Int:
			return -n, nil
		case value.Real:
			return -n, nil
		}
		return nil, raise(pos, CodeTypeError, "unary - requires an integer or real")
	case "+":
		switch v.(type) {
		case value.Int, value.Real:
			return v, nil
		}
		return nil, raise(pos, CodeTypeError, "unary + requires an integer or real")
	case "~":
		n, ok := v.(value.Int)
		if !ok {
			return nil, raise(pos, CodeTypeError, "~ requires an integer")
		}
		return ^n, nil
	default:
		return nil, raise(pos, CodeTypeError, "unknown unary operator "+op)
	}
}

// binaryOp implements every OpBinary spelling. Integer arithmetic wraps
// on overflow by default (spec.md §4.4); no checked-operator syntax
// reaches this layer from the current parser/lowerer, so CheckedAdd is
// exposed separately for a future std binding to call.
func binaryOp(pos token.Position, op string, l, r value.Value) (value.Value, *Exception) {
	switch op {
	case "+":
		return addOp(pos, l, r)
	case "-", "*", "/", "%", "**":
		return arithOp(pos, op, l, r)
	case "==":
		return value.Bool(l.Equal(r)), nil
	case "!=":
		return value.Bool(!l.Equal(r)), nil
	case "<", "<=", ">", ">=", "<=>":
		return compareOp(pos, op, l, r)
	case "&", "|", "^", "<<", ">>":
		return bitwiseOp(pos, op, l, r)
	default:
		return nil, raise(pos, CodeTypeError, "unknown binary operator "+op)
	}
}

func addOp(pos token.Position, l, r value.Value) (value.Value, *Exception) {
	switch a := l.(type) {
	case value.Str:
		b, ok := r.(value.Str)
		if !ok {
			return nil, raise(pos, CodeTypeError, "string + requires a string")
		}
		return a + b, nil
	case value.Array:
		b, ok := r.(value.Array)
		if !ok {
			return nil, raise(pos, CodeTypeError, "array + requires an array")
		}
		elems := append(append([]value.Value{}, a.Elements()...), b.Elements()...)
		return value.NewArray(elems), nil
	case value.Object:
		b, ok := r.(value.Object)
		if !ok {
			return nil, raise(pos, CodeTypeError, "object + requires an object")
		}
		return a.Merge(b), nil
	}
	return arithOp(pos, "+", l, r)
}

func numericPair(l, r value.Value) (li, ri value.Int, lr, rr value.Real, bothInt, ok bool) {
	switch a := l.(type) {
	case value.Int:
		switch b := r.(type) {
		case value.Int:
			return a, b, 0, 0, true, true
		case value.Real:
			return 0, 0, value.Real(a), b, false, true
		}
	case value.Real:
		switch b := r.(type) {
		case value.Int:
			return 0, 0, a, value.Real(b), false, true
		case value.Real:
			return 0, 0, a, b, false, true
		}
	}
	return 0, 0, 0, 0, false, false
}

func arithOp(pos token.Position, op string, l, r value.Value) (value.Value, *Exception) {
	li, ri, lr, rr, bothInt, ok := numericPair(l, r)
	if !ok {
		return nil, raise(pos, CodeTypeError, "operator "+op+" requires two numbers")
	}
	if bothInt {
		switch op {
		case "+":
			return li + ri, nil
		case "-":
			return li - ri, nil
		case "*":
			return li * ri, nil
		case "/":
			if ri == 0 {
				return nil, raise(pos, CodeDivisionByZero, "integer division by zero")
			}
			return li / ri, nil
		case "%":
			if ri == 0 {
				return nil, raise(pos, CodeDivisionByZero, "integer modulo by zero")
			}
			return li % ri, nil
		case "**":
			return value.Int(intPow(int64(li), int64(ri))), nil
		}
	}
	switch op {
	case "+":
		return lr + rr, nil
	case "-":
		return lr - rr, nil
	case "*":
		return lr * rr, nil
	case "/":
		return lr / rr, nil
	case "%":
		return value.Real(math.Mod(float64(lr), float64(rr))), nil
	case "**":
		return value.Real(math.Pow(float64(lr), float64(rr))), nil
	}
	return nil, raise(pos, CodeTypeError, "unknown arithmetic operator "+op)
}

// intPow wraps on overflow like every other integer op here, computed by
// repeated squaring so a negative exponent just yields 0 (integer
// division truncates to zero for |base|>1, and 1/0-style edge cases
// collapse to the wrapping-arithmetic contract already in force).
func intPow(base, exp int64) int64 {
	if exp < 0 {
		if base == 1 {
			return 1
		}
		if base == -1 {
			if exp%2 == 0 {
				return 1
			}
			return -1
		}
		return 0
	}
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}

func compareOp(pos token.Position, op string, l, r value.Value) (value.Value, *Exception) {
	var cmp int
	switch a := l.(type) {
	case value.Str:
		b, ok := r.(value.Str)
		if !ok {
			return nil, raise(pos, CodeTypeError, "cannot compare string to a different type")
		}
		cmp = stringCompare(string(a), string(b))
	default:
		li, ri, lr, rr, bothInt, ok := numericPair(l, r)
		if !ok {
			return nil, raise(pos, CodeTypeError, "cannot compare non-numeric values")
		}
		if bothInt {
			cmp = intCompare(int64(li), int64(ri))
		} else {
			cmp = realCompare(float64(lr), float64(rr))
		}
	}
	switch op {
	case "<":
		return value.Bool(cmp < 0), nil
	case "<=":
		return value.Bool(cmp <= 0), nil
	case ">":
		return value.Bool(cmp > 0), nil
	case ">=":
		return value.Bool(cmp >= 0), nil
	case "<=>":
		return value.Int(cmp), nil
	}
	return nil, raise(pos, CodeTypeError, "unknown comparison operator "+op)
}

func stringCompare(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func intCompare(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func realCompare(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func bitwiseOp(pos token.Position, op string, l, r value.Value) (value.Value, *Exception) {
	a, ok := l.(value.Int)
	if !ok {
		return nil, raise(pos, CodeTypeError, "bitwise operator requires integers")
	}
	b, ok := r.(value.Int)
	if !ok {
		return nil, raise(pos, CodeTypeError, "bitwise operator requires integers")
	}
	switch op {
	case "&":
		return a & b, nil
	case "|":
		return a | b, nil
	case "^":
		return a ^ b, nil
	case "<<":
		return a << uint(b&63), nil
	case ">>":
		return a >> uint(b&63), nil
	}
	return nil, raise(pos, CodeTypeError, "unknown bitwise operator "+op)
}

// CheckedAdd returns the sum of a and b with ok=true, or 0 and ok=false
// if it overflows int64. Exposed for a future checked-arithmetic std binding; no opcode
// currently reaches it (spec.md §4.4's checked variant has no surface
// syntax in the parser this engine lowers from).
func CheckedAdd(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}
