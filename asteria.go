// Package asteria is the embedding facade: the one entry point a host
// program needs to load source, run it, and tune the collector, without
// reaching into token/ast/air/exec/gc directly (spec.md §6's "External
// interfaces"). It wires the pipeline the way cmd/barn/main.go wires
// barn/db, barn/parser and barn/vm together for its own callers.
package asteria

import (
	"os"

	"github.com/mayhemheroes/asteria/air"
	"github.com/mayhemheroes/asteria/ast"
	"github.com/mayhemheroes/asteria/avmc"
	"github.com/mayhemheroes/asteria/config"
	"github.com/mayhemheroes/asteria/errs"
	"github.com/mayhemheroes/asteria/exec"
	"github.com/mayhemheroes/asteria/gc"
	"github.com/mayhemheroes/asteria/token"
	"github.com/mayhemheroes/asteria/value"
)

// Program is a loaded, lowered unit of source ready to run. Loading is
// separate from running so a host can load once and execute repeatedly
// (spec.md §6: "load_string" returns a handle distinct from evaluation).
type Program struct {
	queue avmc.Queue
}

// Engine owns one interpreter's collector and global scope (spec.md §9's
// GlobalContext). Not safe for concurrent use, matching exec.Interpreter.
type Engine struct {
	interp *exec.Interpreter
	opts   token.Options
}

// New returns an Engine configured from cfg. Pass config.Default() for
// the engine's built-in defaults (bare lexer, {10, 70, 500} thresholds).
func New(cfg config.Config) *Engine {
	e := &Engine{interp: exec.NewInterpreter(), opts: cfg.Parser.ToOptions()}
	cfg.GC.Apply(e.interp.GC)
	return e
}

// LoadString lexes and parses src into a runnable Program without
// executing it. filename is used only for positional error reporting.
func (e *Engine) LoadString(src, filename string) (*Program, error) {
	toks, lexErr := token.New(src, filename, e.opts).Tokenize()
	if lexErr != nil {
		return nil, lexErr
	}
	prog, err := ast.ParseProgram(toks)
	if err != nil {
		return nil, err
	}
	q, err := air.Lower(prog)
	if err != nil {
		return nil, err
	}
	return &Program{queue: q}, nil
}

// LoadFile reads path and loads it as src, using path as the filename
// for error reporting.
func (e *Engine) LoadFile(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Fatal{Message: err.Error()}
	}
	return e.LoadString(string(data), path)
}

// Execute runs p to completion, returning its top-level return value or
// the uncaught Exception that escaped it.
func (e *Engine) Execute(p *Program) (value.Value, *exec.Exception) {
	return e.interp.Run(p.queue)
}

// ExecuteString is a convenience wrapper combining LoadString and
// Execute for one-shot evaluation (the common embedding case spec.md §6
// calls out: "load_string(S).ok().map(...)").
func (e *Engine) ExecuteString(src, filename string) (value.Value, error) {
	p, err := e.LoadString(src, filename)
	if err != nil {
		return nil, err
	}
	v, exc := e.Execute(p)
	if exc != nil {
		return nil, exc
	}
	return v, nil
}

// Collect runs a full collection pass on gen and returns the number of
// Variables reclaimed (spec.md §8 invariant 4).
func (e *Engine) Collect(gen gc.Generation) int {
	return e.interp.GC.CollectGeneration(gen)
}

// Global exposes the engine's global lexical scope so a host can install
// native bindings before running any script (spec.md §6's
// create_variable/open_named_reference/create_function contract).
func (e *Engine) Global() *value.Context {
	return e.interp.Global
}
