package env

import "github.com/rush-shell/rush/internal/ast"

// Functions maps a function name to its body. Command trees are immutable
// once parsed, so storing the ast.Command value directly is sufficient to
// satisfy the "functions store a copy of their body" requirement -- no
// separate deep-clone of the tree is needed.
type Functions struct {
	bodies map[string]ast.Command
}

// NewFunctions returns an empty store.
func NewFunctions() *Functions {
	return &Functions{bodies: make(map[string]ast.Command)}
}

// Value returns the body installed under name, if any.
func (f *Functions) Value(name string) (ast.Command, bool) {
	b, ok := f.bodies[name]
	return b, ok
}

// Insert installs (or overwrites) name -> body.
func (f *Functions) Insert(name string, body ast.Command) {
	f.bodies[name] = body
}

// Clone returns a deep copy of the store; mutations to the clone are
// invisible to f.
func (f *Functions) Clone() *Functions {
	c := make(map[string]ast.Command, len(f.bodies))
	for k, v := range f.bodies {
		c[k] = v
	}
	return &Functions{bodies: c}
}
