package conformance

import (
	"fmt"

	"github.com/mayhemheroes/asteria/air"
	"github.com/mayhemheroes/asteria/ast"
	"github.com/mayhemheroes/asteria/avmc"
	"github.com/mayhemheroes/asteria/exec"
	"github.com/mayhemheroes/asteria/token"
	"github.com/mayhemheroes/asteria/value"
)

// TestResult is the outcome of running one LoadedTest.
type TestResult struct {
	Test    LoadedTest
	Passed  bool
	Skipped bool
	Error   error
}

// Run compiles and executes one test case against a fresh Interpreter
// (conformance cases must not see each other's global state) and checks
// its expectation.
func Run(t LoadedTest) TestResult {
	if t.Test.Skip != "" {
		return TestResult{Test: t, Skipped: true}
	}

	src := t.Test.Statement
	if src == "" {
		src = "return " + t.Test.Code + ";"
	}

	interp := exec.NewInterpreter()
	q, err := compile(src)
	if err != nil {
		return TestResult{Test: t, Error: fmt.Errorf("compile: %w", err)}
	}
	got, exc := interp.Run(q)

	passed, err := checkExpectation(t.Test.Expect, got, exc)
	return TestResult{Test: t, Passed: passed, Error: err}
}

// RunAll runs every test and returns results in the same order.
func RunAll(tests []LoadedTest) []TestResult {
	results := make([]TestResult, len(tests))
	for i, t := range tests {
		results[i] = Run(t)
	}
	return results
}

func compile(src string) (avmc.Queue, error) {
	toks, lexErr := token.New(src, "conformance", token.Options{}).Tokenize()
	if lexErr != nil {
		return avmc.Queue{}, lexErr
	}
	prog, err := ast.ParseProgram(toks)
	if err != nil {
		return avmc.Queue{}, err
	}
	return air.Lower(prog)
}

func checkExpectation(expect Expectation, got value.Value, exc *exec.Exception) (bool, error) {
	if expect.Error != "" {
		if exc == nil {
			return false, fmt.Errorf("expected exception %q, got value %v", expect.Error, got)
		}
		code := excCode(exc)
		if code != expect.Error {
			return false, fmt.Errorf("expected exception %q, got %q (%s)", expect.Error, code, exc.Error())
		}
		return true, nil
	}

	if exc != nil {
		return false, fmt.Errorf("unexpected exception: %s", exc.Error())
	}

	if expect.Type != "" {
		if got.Kind().String() != expect.Type {
			return false, fmt.Errorf("expected type %q, got %q", expect.Type, got.Kind().String())
		}
		return true, nil
	}

	if expect.Value != nil {
		want, err := fromYAML(expect.Value)
		if err != nil {
			return false, fmt.Errorf("decoding expected value: %w", err)
		}
		if !got.Equal(want) {
			return false, fmt.Errorf("expected %v, got %v", want, got)
		}
		return true, nil
	}

	return false, fmt.Errorf("test declares no expectation")
}

func excCode(exc *exec.Exception) string {
	o, ok := exc.Value.(value.Object)
	if !ok {
		return ""
	}
	c, _ := o.Get("code")
	s, _ := c.(value.Str)
	return string(s)
}

// fromYAML converts a yaml.v3-decoded interface{} into a value.Value,
// the same shape the teacher's convertYAMLValue does for its own Value
// union (int/float64/string/bool/slice/map).
func fromYAML(v interface{}) (value.Value, error) {
	switch val := v.(type) {
	case int:
		return value.Int(val), nil
	case int64:
		return value.Int(val), nil
	case float64:
		return value.Real(val), nil
	case string:
		return value.Str(val), nil
	case bool:
		return value.Bool(val), nil
	case nil:
		return value.Null{}, nil
	case []interface{}:
		elems := make([]value.Value, len(val))
		for i, e := range val {
			cv, err := fromYAML(e)
			if err != nil {
				return nil, err
			}
			elems[i] = cv
		}
		return value.NewArray(elems), nil
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		vals := make([]value.Value, 0, len(val))
		for k, e := range val {
			cv, err := fromYAML(e)
			if err != nil {
				return nil, err
			}
			keys = append(keys, k)
			vals = append(vals, cv)
		}
		return value.NewObject(keys, vals), nil
	default:
		return nil, fmt.Errorf("unsupported YAML value type: %T", v)
	}
}
