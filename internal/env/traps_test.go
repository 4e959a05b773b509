package env_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rush-shell/rush/internal/ast"
	"github.com/rush-shell/rush/internal/env"
)

func TestTrapsSetAndGet(t *testing.T) {
	tr := env.NewTraps()
	_, ok := tr.Get("INT")
	assert.False(t, ok)

	handler := &ast.SimpleCommand{}
	tr.Set("INT", handler)

	got, ok := tr.Get("INT")
	assert.True(t, ok)
	assert.Same(t, handler, got)
}

func TestTrapsCloneIsolated(t *testing.T) {
	tr := env.NewTraps()
	tr.Set("INT", &ast.SimpleCommand{})

	clone := tr.Clone()
	clone.Set("EXIT", &ast.SimpleCommand{})

	_, ok := tr.Get("EXIT")
	assert.False(t, ok)
}
