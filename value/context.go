package value

// ContextKind distinguishes the three concrete context shapes spec.md
// §3.4 names; GlobalContext and FunctionContext carry extra state beyond
// the identifier map, tracked alongside in the exec package.
type ContextKind int

const (
	GlobalContextKind ContextKind = iota
	FunctionContextKind
	ExecutiveContextKind
)

// Context is an AbstractContext: a mapping from identifier to Reference
// plus an optional parent (spec.md §3.4). Name resolution walks parents;
// assignment creates in the innermost context unless the name already
// exists upward — callers implement that policy via Resolve/Declare.
type Context struct {
	Kind   ContextKind
	Parent *Context
	vars   map[string]*Variable
}

// NewContext creates an empty context of the given kind, chained to parent.
func NewContext(kind ContextKind, parent *Context) *Context {
	return &Context{Kind: kind, Parent: parent, vars: make(map[string]*Variable)}
}

// Declare binds name to v in THIS context (innermost), per spec.md §3.4
// "assignment creates in the innermost context unless the name already
// exists upward" — callers check Resolve first when that matters.
func (c *Context) Declare(name string, v *Variable) {
	c.vars[name] = v
}

// Resolve walks this context and its parents, returning the Variable
// bound to name, or nil if unbound anywhere in the chain.
func (c *Context) Resolve(name string) *Variable {
	for cur := c; cur != nil; cur = cur.Parent {
		if v, ok := cur.vars[name]; ok {
			return v
		}
	}
	return nil
}

// ResolveContext returns the context in the chain (innermost-first) that
// owns name, or nil.
func (c *Context) ResolveContext(name string) *Context {
	for cur := c; cur != nil; cur = cur.Parent {
		if _, ok := cur.vars[name]; ok {
			return cur
		}
	}
	return nil
}

// WalkVariables enumerates every Variable directly bound in this
// context (not its parents — a Func's Captured context is walked
// separately when the Func itself is enumerated).
func (c *Context) WalkVariables(visit func(*Variable)) {
	for _, v := range c.vars {
		visit(v)
	}
}

// Names returns the identifiers bound directly in this context, for
// diagnostics and `std` introspection.
func (c *Context) Names() []string {
	names := make([]string, 0, len(c.vars))
	for n := range c.vars {
		names = append(names, n)
	}
	return names
}
