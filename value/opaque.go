package value

// Opaque is a host-provided object type, treated as an atomic black box
// by the engine except for its enumerate-variables hook (spec.md §3.1,
// GLOSSARY "Opaque"). Host code implements this to expose handles
// (file descriptors, regex programs, DB cursors, …) as Asteria values.
type Opaque interface {
	Value
	ClassName() string
}

// OpaqueBase gives host Opaque implementations Equal/WalkVariables by
// embedding, matching the language reference's "atomic black box" rule.
// The embedded Equal reports false for every operand, the same opaque
// included, unless the embedder overrides it; the embedded WalkVariables
// enumerates no Variables unless the embedder overrides it.
type OpaqueBase struct{}

func (OpaqueBase) Kind() Kind                    { return KindOpaque }
func (OpaqueBase) Truthy() bool                  { return true }
func (OpaqueBase) WalkVariables(func(*Variable)) {}
func (OpaqueBase) Equal(Value) bool              { return false }
