package core_test

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rush-shell/rush/internal/core"
	"github.com/rush-shell/rush/internal/parser"
)

// captureStdout redirects os.Stdout for the duration of fn and returns what
// was written to it. Needed because spawned children inherit the parent's
// stdout fd directly -- there is no in-process buffer to read from
// otherwise.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	done := make(chan string, 1)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	fn()

	require.NoError(t, w.Close())
	out := <-done
	return out
}

// TestThreeStagePipeline is S9: a three-stage pipeline exercises close_fds
// handling that a two-stage pipeline is too forgiving to catch -- a leaked
// write end of the second pipe would let `wc -l` hang waiting for EOF it
// never sees from `cat`.
func TestThreeStagePipeline(t *testing.T) {
	ec := newContext(t)
	jm := core.NewJobManager()

	out := captureStdout(t, func() {
		status := run(t, ec, jm, "echo hi | cat | wc -l")
		assert.Equal(t, 0, status.ExitCode)
	})
	assert.Equal(t, "1", strings.TrimSpace(out))
}

func TestPipelineByteCount(t *testing.T) {
	ec := newContext(t)
	jm := core.NewJobManager()

	out := captureStdout(t, func() {
		status := run(t, ec, jm, "echo hello | wc -c")
		assert.Equal(t, 0, status.ExitCode)
	})
	assert.Equal(t, "6", strings.TrimSpace(out))
}

// TestAndIfShortCircuits is S4: the right side of && never runs when the
// left side fails.
func TestAndIfShortCircuits(t *testing.T) {
	ec := newContext(t)
	jm := core.NewJobManager()

	out := captureStdout(t, func() {
		status := run(t, ec, jm, "false && echo skipped")
		assert.NotEqual(t, 0, status.ExitCode)
	})
	assert.Empty(t, strings.TrimSpace(out))
}

// TestOrIfShortCircuits is S5: the right side of || never runs when the
// left side succeeds.
func TestOrIfShortCircuits(t *testing.T) {
	ec := newContext(t)
	jm := core.NewJobManager()

	out := captureStdout(t, func() {
		status := run(t, ec, jm, "true || echo skipped")
		assert.Equal(t, 0, status.ExitCode)
	})
	assert.Empty(t, strings.TrimSpace(out))
}

// TestBraceGroupIsolatesVariables is S6: a variable assignment made inside
// a brace group does not escape to the caller's context.
func TestBraceGroupIsolatesVariables(t *testing.T) {
	ec := newContext(t)
	ec.Vars.Define("RUSH_TEST_X", "")
	jm := core.NewJobManager()

	out := captureStdout(t, func() {
		status := run(t, ec, jm, `{ RUSH_TEST_X=1; echo $RUSH_TEST_X; }`)
		assert.Equal(t, 0, status.ExitCode)
	})
	assert.Equal(t, "1", strings.TrimSpace(out))
	assert.Equal(t, "", ec.Vars.Value("RUSH_TEST_X"))
}

// TestSequentialGroupPropagatesLastStatus documents the resolved open
// question: a Group reports the status of its last command instead of
// always synthesizing success.
func TestSequentialGroupPropagatesLastStatus(t *testing.T) {
	ec := newContext(t)
	jm := core.NewJobManager()

	status := run(t, ec, jm, "true; false")
	assert.NotEqual(t, 0, status.ExitCode)

	status = run(t, ec, jm, "false; true")
	assert.Equal(t, 0, status.ExitCode)
}

// TestFunctionDefinitionAndInvocation is S8: a function is defined then
// invoked in the same source, through the full parser/evaluator round trip.
func TestFunctionDefinitionAndInvocation(t *testing.T) {
	ec := newContext(t)
	jm := core.NewJobManager()

	out := captureStdout(t, func() {
		status := run(t, ec, jm, "greet() { echo hi; }; greet")
		assert.Equal(t, 0, status.ExitCode)
	})
	assert.Equal(t, "hi", strings.TrimSpace(out))
}

func TestVariableInterpolationInArguments(t *testing.T) {
	ec := newContext(t)
	ec.Vars.Define("NAME", "world")
	jm := core.NewJobManager()

	out := captureStdout(t, func() {
		status := run(t, ec, jm, `echo "hello, $NAME"`)
		assert.Equal(t, 0, status.ExitCode)
	})
	assert.Equal(t, "hello, world", strings.TrimSpace(out))
}

func TestMissingExecutableInPipelineStopsEvaluation(t *testing.T) {
	ec := newContext(t)
	ec.Vars.Define("PATH", t.TempDir())
	jm := core.NewJobManager()

	tree, err := parser.Parse("nonexistent_cmd_xyz | cat")
	require.NoError(t, err)

	_, err = jm.Run(ec, tree)
	require.Error(t, err)
	var missing *core.MissingExecutableError
	assert.ErrorAs(t, err, &missing)
}
