package core

import (
	"os"
	"strings"
	"syscall"
)

// ProcOptions bundles the low-level options of a single spawn: which file
// descriptors the child must never see past exec, additional environment
// entries to layer on top of the inherited environment, and which fds to
// duplicate onto the child's stdin/stdout.
type ProcOptions struct {
	// CloseFds are pipe ends belonging to other pipeline stages. They must
	// not survive into the child's address space across exec.
	CloseFds []*os.File
	// Env holds additional KEY=VALUE entries layered on top of the
	// inherited environment. Empty means inherit unchanged.
	Env []string
	// Stdin/Stdout, if set, are duplicated onto the child's fd 0/1. Nil
	// means inherit the parent's corresponding fd.
	Stdin, Stdout *os.File
}

// spawnProc is the only place a child process comes into being. It is
// implemented directly on syscall.ForkExec rather than os/exec so the fd
// handling a pipeline-aware spawner needs (close_fds, stdin/stdout
// redirection, chdir, environment augmentation) is explicit in one place.
//
// Go's runtime forbids running arbitrary Go code in a freshly forked child
// before exec (only one native thread survives a raw fork() in a
// multi-threaded process), so the "child closes close_fds before exec" step
// is realized differently than a single-threaded C program would do it:
// every fd named in CloseFds is marked close-on-exec on the PARENT's
// descriptor table entry before the fork happens. Fork duplicates that
// per-descriptor flag into the child, and exec in the child then closes any
// close-on-exec descriptor automatically -- the same outcome, reached
// through syscall.CloseOnExec instead of an explicit close() in the child.
func spawnProc(jm *JobManager, exe string, argv []string, cwd string, opts *ProcOptions) (Jid, error) {
	for _, f := range opts.CloseFds {
		if err := syscall.CloseOnExec(int(f.Fd())); err != nil {
			return 0, &ExecFailedError{Cause: err}
		}
	}

	files := [3]uintptr{os.Stdin.Fd(), os.Stdout.Fd(), os.Stderr.Fd()}
	if opts.Stdin != nil {
		files[0] = opts.Stdin.Fd()
	}
	if opts.Stdout != nil {
		files[1] = opts.Stdout.Fd()
	}

	attr := &syscall.ProcAttr{
		Dir:   cwd,
		Env:   mergeEnv(opts.Env),
		Files: files[:],
	}

	pid, err := syscall.ForkExec(exe, argv, attr)
	if err != nil {
		return 0, &ExecFailedError{Cause: err}
	}

	return jm.addJob(pid), nil
}

// mergeEnv layers extra KEY=VALUE entries on top of the inherited
// environment. Augmentation entries override parent entries of the same
// key (last-wins); a naive append would leave duplicate keys in the exec
// environment and rely on the C library's getenv() to pick the right one.
// When extra is empty the result is os.Environ() unchanged: unlike os/exec,
// syscall.ForkExec gives the child an empty environment for a nil Env.
func mergeEnv(extra []string) []string {
	base := os.Environ()
	if len(extra) == 0 {
		return base
	}

	merged := make([]string, 0, len(base)+len(extra))
	merged = append(merged, base...)

	for _, kv := range extra {
		key := kv
		if i := strings.IndexByte(kv, '='); i >= 0 {
			key = kv[:i]
		}
		replaced := false
		for i, existing := range merged {
			if existingKey(existing) == key {
				merged[i] = kv
				replaced = true
				break
			}
		}
		if !replaced {
			merged = append(merged, kv)
		}
	}

	return merged
}

func existingKey(kv string) string {
	if i := strings.IndexByte(kv, '='); i >= 0 {
		return kv[:i]
	}
	return kv
}
