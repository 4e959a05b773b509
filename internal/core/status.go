package core

import "syscall"

// Jid is an opaque, monotonically increasing job identifier, unique within
// one JobManager's lifetime.
type Jid uint64

// ExitStatus describes how a child terminated. If Signal is non-nil,
// ExitCode is -1 and CoreDumped may be true; if Signal is nil, ExitCode is
// the raw exit code and CoreDumped is false.
type ExitStatus struct {
	Pid        int
	ExitCode   int
	CoreDumped bool
	Signal     *syscall.Signal
}

// successStatus is the synthetic status reported for constructs that spawn
// no child of their own (an empty Group, a Function definition, a Comment).
func successStatus(pid int) ExitStatus {
	return ExitStatus{Pid: pid, ExitCode: 0}
}

// JobState is the coarse state returned by Stat.
type JobState int

const (
	// JobRunning means the job has been forked and not yet reaped.
	JobRunning JobState = iota
	// JobComplete means the job has been reaped; Status is populated.
	JobComplete
)

// JobStatus is the result of a Stat call.
type JobStatus struct {
	State  JobState
	Status ExitStatus
}
