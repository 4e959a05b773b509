package env

import "github.com/rush-shell/rush/internal/ast"

// Traps holds signal-name -> handler-command associations. The execution
// context carries a Traps store because it is part of a shell's state, but
// this core never dispatches a trap -- signal delivery is out of scope
// (spec ambient concern, not evaluated here).
type Traps struct {
	handlers map[string]ast.Command
}

// NewTraps returns an empty store.
func NewTraps() *Traps {
	return &Traps{handlers: make(map[string]ast.Command)}
}

// Set installs a handler for a trap name (e.g. "INT", "EXIT").
func (t *Traps) Set(name string, handler ast.Command) {
	t.handlers[name] = handler
}

// Get returns the handler installed for name, if any.
func (t *Traps) Get(name string) (ast.Command, bool) {
	h, ok := t.handlers[name]
	return h, ok
}

// Clone returns a deep copy of the store.
func (t *Traps) Clone() *Traps {
	c := make(map[string]ast.Command, len(t.handlers))
	for k, v := range t.handlers {
		c[k] = v
	}
	return &Traps{handlers: c}
}
