package core

import (
	"os"
	"syscall"

	"golang.org/x/exp/slices"
	"golang.org/x/sys/unix"
)

// JobManager allocates job identifiers, tracks running and completed
// children, and waits for arbitrary subsets of them in arbitrary completion
// order. It owns the only blocking operation in this core: wait(2).
type JobManager struct {
	nextJid   Jid
	running   map[int]Jid // pid -> jid, for children forked and not yet reaped
	completed map[Jid]ExitStatus

	// lastSynthetic is the status reported by run() and by a
	// ConditionalPair's short-circuit check when the relevant construct
	// produced no Jid of its own -- a Group/BraceGroup, a Function
	// definition, a Comment, or a bare assignment. It tracks the last real status observed
	// rather than always reporting success, so e.g. `{ false; }` fails.
	lastSynthetic ExitStatus
}

// NewJobManager returns a JobManager with no running or completed jobs.
func NewJobManager() *JobManager {
	return &JobManager{
		running:       make(map[int]Jid),
		completed:     make(map[Jid]ExitStatus),
		lastSynthetic: successStatus(os.Getpid()),
	}
}

func (jm *JobManager) addJob(pid int) Jid {
	jid := jm.nextJid
	jm.running[pid] = jid
	jm.nextJid++
	return jid
}

// next performs a blocking wait on any child, retrying until it observes an
// Exited or Signaled status for a pid this manager is tracking. Stopped or
// continued statuses, and statuses for pids this manager never forked, are
// ignored and the wait is retried.
func (jm *JobManager) next() (Jid, ExitStatus, error) {
	for {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(-1, &ws, 0, nil)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return 0, ExitStatus{}, &WaitFailedError{Cause: err}
		}

		var status ExitStatus
		switch {
		case ws.Exited():
			status = ExitStatus{Pid: pid, ExitCode: ws.ExitStatus()}
		case ws.Signaled():
			sig := syscall.Signal(ws.Signal())
			status = ExitStatus{Pid: pid, ExitCode: -1, CoreDumped: ws.CoreDump(), Signal: &sig}
		default:
			// Stopped/continued: not a terminal status, keep waiting.
			continue
		}

		jid, ok := jm.running[pid]
		if !ok {
			// Reaped a pid we are not tracking (e.g. already reaped via a
			// prior wait, or an unrelated adopted child). Retry.
			continue
		}
		delete(jm.running, pid)
		return jid, status, nil
	}
}

// await returns the ExitStatus of jid, blocking on further reaps if it has
// not completed yet.
func (jm *JobManager) await(jid Jid) (ExitStatus, error) {
	if status, ok := jm.completed[jid]; ok {
		return status, nil
	}
	for {
		reaped, status, err := jm.next()
		if err != nil {
			return ExitStatus{}, err
		}
		jm.completed[reaped] = status
		if reaped == jid {
			return status, nil
		}
	}
}

// awaitAll waits until every Jid in jids has completed. Every reaped status
// is retained in jm.completed regardless of whether it was pending, so a
// later await/stat can still observe it.
func (jm *JobManager) awaitAll(jids []Jid) error {
	pending := make([]Jid, 0, len(jids))
	for _, jid := range jids {
		if _, ok := jm.completed[jid]; !ok && !slices.Contains(pending, jid) {
			pending = append(pending, jid)
		}
	}

	for len(pending) > 0 {
		reaped, status, err := jm.next()
		if err != nil {
			return err
		}
		jm.completed[reaped] = status
		if i := slices.Index(pending, reaped); i >= 0 {
			pending = slices.Delete(pending, i, i+1)
		}
	}
	return nil
}

// Stat returns the current status of jid.
func (jm *JobManager) Stat(jid Jid) (JobStatus, error) {
	if status, ok := jm.completed[jid]; ok {
		return JobStatus{State: JobComplete, Status: status}, nil
	}
	for _, running := range jm.running {
		if running == jid {
			return JobStatus{State: JobRunning}, nil
		}
	}
	return JobStatus{}, &InvalidJobIdError{Jid: jid}
}

// lastStatus returns the recorded status of the last Jid in jids, or the
// synthetic status tracked for Jid-less constructs if jids is empty.
func (jm *JobManager) lastStatus(jids []Jid) ExitStatus {
	if len(jids) == 0 {
		return jm.lastSynthetic
	}
	return jm.completed[jids[len(jids)-1]]
}

// lastExitCode is the exit-code-only view lastStatus is usually consulted
// for (ConditionalPair's short-circuit test).
func (jm *JobManager) lastExitCode(jids []Jid) int {
	return jm.lastStatus(jids).ExitCode
}
