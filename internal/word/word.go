// Package word implements word expansion: a Word compiles to a byte string
// against a variable store. Only literal text and $VAR / ${VAR} substitution
// are supported; quoting, globbing, arithmetic and command substitution are
// not.
package word

import "strings"

// Variables is the read side of the store a Word expands against. It is
// satisfied by *env.Variables; declared here to avoid an import cycle
// between word and env (env.Functions stores ast.Command, and ast imports
// word, so word cannot import env).
type Variables interface {
	Value(name string) string
}

// Word is opaque to the execution core: it exposes one operation, compiling
// itself to a string against a variable store.
type Word interface {
	Compile(vars Variables) (string, error)
}

// Literal is text with no expansion.
type Literal string

// Compile returns l unchanged.
func (l Literal) Compile(Variables) (string, error) {
	return string(l), nil
}

// Variable expands to the named variable's value (empty string if unset).
type Variable struct {
	Name string
}

// Compile looks Name up in vars.
func (v Variable) Compile(vars Variables) (string, error) {
	return vars.Value(v.Name), nil
}

// Concat is a word built from adjacent literal and variable segments, e.g.
// the word `hello-$USER` in shell source.
type Concat []Word

// Compile concatenates the compiled form of every part.
func (c Concat) Compile(vars Variables) (string, error) {
	var sb strings.Builder
	for _, part := range c {
		s, err := part.Compile(vars)
		if err != nil {
			return "", err
		}
		sb.WriteString(s)
	}
	return sb.String(), nil
}
