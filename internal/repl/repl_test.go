package repl_test

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rush-shell/rush/internal/core"
	"github.com/rush-shell/rush/internal/repl"
)

// withStdin/withStdout temporarily redirect the process-wide streams repl.Run
// reads and writes -- it talks to os.Stdin/os.Stdout directly, the same way
// a real terminal session would.
func withStdin(t *testing.T, input string, fn func()) {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString(input)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	orig := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = orig }()
	fn()
}

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
	return <-done
}

func TestRunExecutesEachLine(t *testing.T) {
	ec, err := core.NewExecutionContext()
	require.NoError(t, err)
	ec.Vars.Define("RUSH_PREFIX", "true")
	jm := core.NewJobManager()

	var code int
	out := captureStdout(t, func() {
		withStdin(t, "echo one\necho two\n", func() {
			code = repl.Run(ec, jm)
		})
	})

	assert.Equal(t, 0, code)
	lines := strings.Fields(out)
	assert.Equal(t, []string{"one", "two"}, lines)
}

func TestRunSkipsBlankLines(t *testing.T) {
	ec, err := core.NewExecutionContext()
	require.NoError(t, err)
	ec.Vars.Define("RUSH_PREFIX", "true")
	jm := core.NewJobManager()

	out := captureStdout(t, func() {
		withStdin(t, "\n\necho only\n", func() {
			repl.Run(ec, jm)
		})
	})

	assert.Equal(t, "only", strings.TrimSpace(out))
}
