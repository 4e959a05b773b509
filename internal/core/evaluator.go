package core

import (
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/rush-shell/rush/internal/ast"
)

// Run is the top-level evaluator entry point. It builds and spawns the
// command tree with an empty close-fd list and no environment augmentation,
// awaits every Jid produced, and returns the exit status of the last one.
// If none were produced it returns the status tracked for Jid-less
// constructs: the last inner status of a Group/BraceGroup, or success for a
// Function definition, Comment or bare assignment.
func (jm *JobManager) Run(ec *ExecutionContext, command ast.Command) (ExitStatus, error) {
	jids, err := jm.spawnProcsFromAST(&ProcOptions{}, ec, command)
	if err != nil {
		return ExitStatus{}, err
	}
	if err := jm.awaitAll(jids); err != nil {
		return ExitStatus{}, err
	}
	return jm.lastStatus(jids), nil
}

// spawnProcsFromAST recursively realizes command into zero or more spawned
// processes, returning their Jids in spawn order. The last Jid in the
// returned sequence is the "result" of the construct -- the exit code that
// represents it as a whole.
func (jm *JobManager) spawnProcsFromAST(opts *ProcOptions, ec *ExecutionContext, command ast.Command) ([]Jid, error) {
	switch cmd := command.(type) {

	case *ast.SimpleCommand:
		return jm.spawnSimpleCommand(opts, ec, cmd)

	case *ast.Pipeline:
		return jm.spawnPipeline(opts, ec, cmd)

	case *ast.BraceGroup:
		sub := ec.Clone()
		if err := jm.spawnSequential(opts, sub, cmd.Commands); err != nil {
			return nil, err
		}
		return nil, nil

	case *ast.Group:
		if err := jm.spawnSequential(opts, ec, cmd.Commands); err != nil {
			return nil, err
		}
		return nil, nil

	case *ast.ConditionalPair:
		return jm.spawnConditionalPair(opts, ec, cmd)

	case *ast.Function:
		name, err := cmd.Name.Compile(ec.Vars)
		if err != nil {
			return nil, &ExecFailedError{Cause: err}
		}
		ec.Funcs.Insert(name, cmd.Body)
		jm.lastSynthetic = successStatus(os.Getpid())
		return nil, nil

	case *ast.Comment:
		jm.lastSynthetic = successStatus(os.Getpid())
		return nil, nil

	default:
		return nil, &NotImplementedError{Kind: fmt.Sprintf("%T", command)}
	}
}

// spawnSequential runs each command in turn in ec, awaiting its Jids before
// moving to the next -- the strict sequential semantics Group and
// BraceGroup share. After each child, lastSynthetic is updated so the
// construct as a whole reports the right-most observed status even though
// it returns no Jid of its own.
func (jm *JobManager) spawnSequential(opts *ProcOptions, ec *ExecutionContext, commands []ast.Command) error {
	if len(commands) == 0 {
		jm.lastSynthetic = successStatus(os.Getpid())
		return nil
	}
	for _, c := range commands {
		jids, err := jm.spawnProcsFromAST(opts, ec, c)
		if err != nil {
			return err
		}
		if err := jm.awaitAll(jids); err != nil {
			return err
		}
		jm.lastSynthetic = jm.lastStatus(jids)
	}
	return nil
}

func (jm *JobManager) spawnSimpleCommand(opts *ProcOptions, ec *ExecutionContext, cmd *ast.SimpleCommand) ([]Jid, error) {
	argv := make([]string, 0, len(cmd.Arguments))
	for _, w := range cmd.Arguments {
		s, err := w.Compile(ec.Vars)
		if err != nil {
			return nil, &ExecFailedError{Cause: err}
		}
		argv = append(argv, s)
	}
	if len(argv) == 0 {
		return nil, &ExecFailedError{Cause: fmt.Errorf("empty command")}
	}

	if len(argv) == 1 {
		if name, value, ok := parseAssignment(argv[0]); ok {
			ec.Vars.Define(name, value)
			jm.lastSynthetic = successStatus(os.Getpid())
			return nil, nil
		}
	}

	argv0 := argv[0]
	if body, ok := ec.Funcs.Value(argv0); ok {
		return jm.spawnProcsFromAST(opts, ec, body)
	}

	exe := argv0
	if !isVerbatimPath(argv0) {
		var err error
		exe, err = ec.FindExecutable(argv0)
		if err != nil {
			return nil, err
		}
	}

	jid, err := spawnProc(jm, exe, argv, ec.Cwd, opts)
	if err != nil {
		return nil, err
	}
	return []Jid{jid}, nil
}

func isVerbatimPath(name string) bool {
	for _, c := range name {
		if c == '/' {
			return true
		}
	}
	return false
}

// parseAssignment recognizes a bare `name=value` word -- a single-argument
// simple command of this shape sets a variable and produces no job, rather
// than being resolved as a function or executable named e.g. "X=1".
func parseAssignment(s string) (name, value string, ok bool) {
	i := strings.IndexByte(s, '=')
	if i <= 0 || !isValidIdentifier(s[:i]) {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

func isValidIdentifier(s string) bool {
	for i, r := range s {
		if i == 0 {
			if r != '_' && !unicode.IsLetter(r) {
				return false
			}
			continue
		}
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// spawnPipeline creates a single pipe connecting From's stdout to To's
// stdin, spawns both sides (from first), then closes the parent's own
// copies of both pipe ends. Spawning both sides before closing anything is
// required: closing the write end before the reader is spawned would
// deliver EOF to a reader that never gets a chance to exist, and closing
// either end before both forks happen risks deadlock once a pipe buffer
// fills on a long-running writer.
func (jm *JobManager) spawnPipeline(opts *ProcOptions, ec *ExecutionContext, p *ast.Pipeline) ([]Jid, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, &PipelineCreationFailedError{Cause: err}
	}

	fromClose := append(append([]*os.File{}, opts.CloseFds...), r)
	if opts.Stdout != nil {
		fromClose = append(fromClose, opts.Stdout)
	}
	toClose := append(append([]*os.File{}, opts.CloseFds...), w)
	if opts.Stdin != nil {
		toClose = append(toClose, opts.Stdin)
	}

	fromOpts := &ProcOptions{CloseFds: fromClose, Env: opts.Env, Stdin: opts.Stdin, Stdout: w}
	toOpts := &ProcOptions{CloseFds: toClose, Env: opts.Env, Stdin: r, Stdout: opts.Stdout}

	fromJids, err := jm.spawnProcsFromAST(fromOpts, ec, p.From)
	if err != nil {
		return nil, err
	}
	toJids, err := jm.spawnProcsFromAST(toOpts, ec, p.To)
	if err != nil {
		return nil, err
	}

	if err := r.Close(); err != nil && !os.IsNotExist(err) {
		return nil, &PipelineCreationFailedError{Cause: err}
	}
	if err := w.Close(); err != nil && !os.IsNotExist(err) {
		return nil, &PipelineCreationFailedError{Cause: err}
	}

	return append(fromJids, toJids...), nil
}

func (jm *JobManager) spawnConditionalPair(opts *ProcOptions, ec *ExecutionContext, cond *ast.ConditionalPair) ([]Jid, error) {
	leftJids, err := jm.spawnProcsFromAST(opts, ec, cond.Left)
	if err != nil {
		return nil, err
	}
	if err := jm.awaitAll(leftJids); err != nil {
		return nil, err
	}

	code := jm.lastExitCode(leftJids)
	runRight := (cond.Operator == ast.AndIf && code == 0) || (cond.Operator == ast.OrIf && code != 0)
	if !runRight {
		return leftJids, nil
	}

	rightJids, err := jm.spawnProcsFromAST(opts, ec, cond.Right)
	if err != nil {
		return nil, err
	}
	if err := jm.awaitAll(rightJids); err != nil {
		return nil, err
	}
	return rightJids, nil
}
