package env_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rush-shell/rush/internal/env"
)

func TestVariablesDefineAndValue(t *testing.T) {
	v := env.NewVariables()
	assert.Equal(t, "", v.Value("FOO"))

	v.Define("FOO", "bar")
	assert.Equal(t, "bar", v.Value("FOO"))

	_, ok := v.Lookup("MISSING")
	assert.False(t, ok)

	val, ok := v.Lookup("FOO")
	assert.True(t, ok)
	assert.Equal(t, "bar", val)
}

func TestVariablesUnset(t *testing.T) {
	v := env.NewVariables()
	v.Define("FOO", "bar")
	v.Unset("FOO")
	_, ok := v.Lookup("FOO")
	assert.False(t, ok)
}

func TestVariablesCloneIsolated(t *testing.T) {
	v := env.NewVariables()
	v.Define("FOO", "bar")

	clone := v.Clone()
	clone.Define("FOO", "changed")
	clone.Define("NEW", "value")

	assert.Equal(t, "bar", v.Value("FOO"))
	assert.Equal(t, "", v.Value("NEW"))
	assert.Equal(t, "changed", clone.Value("FOO"))
}

func TestVariablesFromEnviron(t *testing.T) {
	t.Setenv("RUSH_TEST_VAR", "present")
	v := env.VariablesFromEnviron()
	assert.Equal(t, "present", v.Value("RUSH_TEST_VAR"))
}
