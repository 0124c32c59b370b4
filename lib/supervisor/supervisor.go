// Copyright 2026 The Portico Authors
// SPDX-License-Identifier: Apache-2.0

// Package supervisor spawns the backend service as a child process and
// observes its lifetime. Exactly one child is supervised at a time: the
// orchestrator owns the Supervisor and never starts a second backend
// while one is running.
//
// The child's stdin is not shared (it reads from the null device); its
// stdout and stderr are forwarded line-by-line into the structured
// logger. On unix the child runs in its own process group so Stop can
// signal the whole tree, including anything the backend itself spawned.
package supervisor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"
)

// killGracePeriod is how long Stop waits after the termination signal
// before force-killing the child.
const killGracePeriod = 5 * time.Second

// maxLineLength bounds a single forwarded output line. Longer lines are
// split by the scanner rather than dropped.
const maxLineLength = 1 << 20

// StartSpec describes the child process to spawn.
type StartSpec struct {
	// Executable is the resolved runtime path or a bare command name
	// (resolved against PATH at exec time).
	Executable string

	// Args are the arguments after the executable.
	Args []string

	// Env is the complete environment for the child. Nil inherits the
	// parent environment unchanged.
	Env []string

	// WorkingDirectory is the child's working directory. Empty means
	// the parent's.
	WorkingDirectory string

	// OnExit, when non-nil, is invoked exactly once after the child
	// exits and the supervisor has cleared its handle. It runs on the
	// reaper goroutine.
	OnExit func(exitCode int)
}

// Handle represents a running (or exited) supervised child.
type Handle struct {
	// PID is the child's process ID.
	PID int

	process  processHandle
	done     chan struct{}
	exitCode int
}

// processHandle is the subset of *os.Process the supervisor uses,
// extracted so tests can observe termination without a real process.
type processHandle interface {
	Kill() error
}

// Done is closed once the child has exited and been reaped.
func (h *Handle) Done() <-chan struct{} { return h.done }

// ExitCode returns the child's exit code. Valid only after Done is
// closed; -1 means the child terminated without an exit code (killed by
// signal, or wait failed).
func (h *Handle) ExitCode() int { return h.exitCode }

// Supervisor manages at most one backend child process.
type Supervisor struct {
	logger *slog.Logger

	mu     sync.Mutex
	handle *Handle
}

// New returns a Supervisor with no child running.
func New(logger *slog.Logger) *Supervisor {
	return &Supervisor{logger: logger}
}

// Running reports whether a child is currently supervised.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle != nil
}

// Handle returns the current child handle, or nil when no child is
// running.
func (s *Supervisor) Handle() *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handle
}

// Start spawns the child described by spec. Spawn failure (executable
// not found, permission denied) leaves the supervisor empty and returns
// the error; there is no automatic retry. Starting while a child is
// already running is a caller error.
func (s *Supervisor) Start(spec StartSpec) (*Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handle != nil {
		return nil, fmt.Errorf("backend process already running (pid %d)", s.handle.PID)
	}

	cmd := exec.Command(spec.Executable, spec.Args...)
	cmd.Env = spec.Env
	cmd.Dir = spec.WorkingDirectory
	cmd.Stdin = nil // child reads from the null device, never from us
	cmd.SysProcAttr = sysProcAttr()

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting backend process %q: %w", spec.Executable, err)
	}

	handle := &Handle{
		PID:     cmd.Process.Pid,
		process: cmd.Process,
		done:    make(chan struct{}),
	}
	s.handle = handle

	s.logger.Info("backend process started",
		"pid", handle.PID,
		"executable", spec.Executable,
	)

	var streams sync.WaitGroup
	streams.Add(2)
	go s.forwardLines(stdout, "stdout", &streams)
	go s.forwardLines(stderr, "stderr", &streams)

	go s.reap(cmd, handle, &streams, spec.OnExit)

	return handle, nil
}

// Stop terminates the current child, if any. It sends the termination
// signal to the child's process group, waits for the reaper up to the
// grace period, then force-kills. Safe to call when no child is running
// and safe to call repeatedly.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	handle := s.handle
	s.mu.Unlock()
	if handle == nil {
		return
	}

	if err := terminate(handle.PID); err != nil {
		// The child may have exited between the handle read and the
		// signal; the reaper will clear everything either way.
		s.logger.Warn("terminating backend process", "pid", handle.PID, "error", err)
	}

	select {
	case <-handle.done:
	case <-time.After(killGracePeriod):
		s.logger.Warn("backend did not exit after termination signal, killing",
			"pid", handle.PID,
		)
		handle.process.Kill()
		<-handle.done
	}
}

// forwardLines copies one output stream into the logger line-by-line.
func (s *Supervisor) forwardLines(stream io.Reader, name string, streams *sync.WaitGroup) {
	defer streams.Done()
	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 64*1024), maxLineLength)
	for scanner.Scan() {
		s.logger.Info("backend output", "stream", name, "line", scanner.Text())
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.ErrClosedPipe) {
		s.logger.Warn("reading backend output", "stream", name, "error", err)
	}
}

// reap waits for the output streams to drain and the child to exit,
// clears the supervisor's handle, then notifies the exit observer.
func (s *Supervisor) reap(cmd *exec.Cmd, handle *Handle, streams *sync.WaitGroup, onExit func(int)) {
	streams.Wait()

	exitCode := 0
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}

	s.mu.Lock()
	if s.handle == handle {
		s.handle = nil
	}
	handle.exitCode = exitCode
	close(handle.done)
	s.mu.Unlock()

	s.logger.Info("backend process exited",
		"pid", handle.PID,
		"exit_code", exitCode,
	)

	if onExit != nil {
		onExit(exitCode)
	}
}
