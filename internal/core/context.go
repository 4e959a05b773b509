package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rush-shell/rush/internal/env"
)

// ExecutionContext holds the state threaded through evaluation: the current
// working directory, the variable store and the function store. It is
// cloned (deeply, for Vars/Funcs/Traps) by BraceGroup and shared by
// reference everywhere else.
type ExecutionContext struct {
	Cwd   string
	Vars  *env.Variables
	Funcs *env.Functions
	Traps *env.Traps
}

// NewExecutionContext builds a context seeded from the current process:
// vars from the environment, funcs empty, cwd from the working directory.
func NewExecutionContext() (*ExecutionContext, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("new execution context: %w", err)
	}
	return &ExecutionContext{
		Cwd:   cwd,
		Vars:  env.VariablesFromEnviron(),
		Funcs: env.NewFunctions(),
		Traps: env.NewTraps(),
	}, nil
}

// Clone returns a context whose Vars/Funcs/Traps are deep copies; mutations
// made through the clone are invisible to ec. Used by BraceGroup.
func (ec *ExecutionContext) Clone() *ExecutionContext {
	return &ExecutionContext{
		Cwd:   ec.Cwd,
		Vars:  ec.Vars.Clone(),
		Funcs: ec.Funcs.Clone(),
		Traps: ec.Traps.Clone(),
	}
}

// FindExecutable resolves name to an executable path. If name contains a
// path separator (including a "./" prefix) it is used verbatim; otherwise
// PATH is searched left to right, joining each directory with name and
// checking for existence with os.Stat.
func (ec *ExecutionContext) FindExecutable(name string) (string, error) {
	if strings.ContainsRune(name, '/') {
		return name, nil
	}

	for _, dir := range filepath.SplitList(ec.Vars.Value("PATH")) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", &MissingExecutableError{Name: name}
}
