// Package repl is a deliberately minimal line-at-a-time read-eval-print
// loop: no terminal cooked-mode input, history or cursor control. It reads
// whole lines from stdin with bufio.Scanner and hands each one to the same
// JobManager.Run the one-shot driver uses.
package repl

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rush-shell/rush/internal/core"
	"github.com/rush-shell/rush/internal/parser"
)

const defaultPrefix = `printf 'rush-%s$ ' "$RUSH_VERSION"`

// Run drives the read-eval-print loop until stdin is exhausted, returning
// the process exit code.
func Run(ec *core.ExecutionContext, jm *core.JobManager) int {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		printPrompt(ec, jm)

		if !scanner.Scan() {
			fmt.Println()
			return 0
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		tree, err := parser.Parse(line)
		if err != nil {
			printError(err)
			continue
		}
		if _, err := jm.Run(ec, tree); err != nil {
			printError(err)
		}
	}
}

// printPrompt runs RUSH_PREFIX (or the default prompt command) through the
// evaluator, exactly as the shell's own prompt mechanism does -- the prompt
// is itself shell source, not a format string interpreted by the REPL.
func printPrompt(ec *core.ExecutionContext, jm *core.JobManager) {
	prefixCmd := ec.Vars.Value("RUSH_PREFIX")
	if prefixCmd == "" {
		prefixCmd = defaultPrefix
	}

	tree, err := parser.Parse(prefixCmd)
	if err != nil {
		printError(err)
		return
	}
	if _, err := jm.Run(ec, tree); err != nil {
		printError(err)
	}
}

func printError(err error) {
	fmt.Fprintln(os.Stderr, err)
}
