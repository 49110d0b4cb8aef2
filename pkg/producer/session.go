// Package producer wraps single invocations of the external charger producer
// process: spawn, stream capture, termination, exit observation. It knows
// nothing about the producer's JSON payloads; decoding lives in pkg/demux.
package producer

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"
)

// Command describes one invocation of the external producer.
type Command struct {
	Path string
	Args []string
	Env  []string // extra variables appended to the inherited environment
}

// Outcome is the terminal state of a finished session. Stdout is only
// populated in buffered mode; in streaming mode the caller consumed the
// stdout pipe directly.
type Outcome struct {
	ExitCode int
	Stdout   []byte
	Stderr   string
}

// Session is one spawned producer process. Exactly one OS-level process per
// session. The outcome is finalized exactly once, on first Wait; afterwards
// the session is read-only.
type Session struct {
	cmd    *exec.Cmd
	stdout bytes.Buffer
	stderr bytes.Buffer
	pipe   io.ReadCloser // streaming mode only

	waitOnce sync.Once
	done     chan struct{}
	outcome  Outcome
}

// Spawn starts the producer in buffered mode: stdout and stderr accumulate
// in memory until exit and are returned by Wait. Used for the one-shot
// snapshot call. Returns a SpawnError if the process cannot be started.
func Spawn(ctx context.Context, command Command) (*Session, error) {
	session := newSession(ctx, command)
	session.cmd.Stdout = &session.stdout

	if err := session.cmd.Start(); err != nil {
		return nil, &SpawnError{Path: command.Path, Err: err}
	}

	slog.Debug("Producer spawned", "component", "Producer", "path", command.Path, "args", command.Args, "pid", session.cmd.Process.Pid)
	return session, nil
}

// SpawnStreaming starts the producer in streaming mode: stdout is exposed as
// a pipe for incremental consumption, stderr accumulates for diagnostics.
// Used for the long-lived monitoring session.
func SpawnStreaming(ctx context.Context, command Command) (*Session, error) {
	session := newSession(ctx, command)

	pipe, err := session.cmd.StdoutPipe()
	if err != nil {
		return nil, &SpawnError{Path: command.Path, Err: err}
	}
	session.pipe = pipe

	if err := session.cmd.Start(); err != nil {
		return nil, &SpawnError{Path: command.Path, Err: err}
	}

	slog.Debug("Producer spawned in streaming mode", "component", "Producer", "path", command.Path, "args", command.Args, "pid", session.cmd.Process.Pid)
	return session, nil
}

func newSession(ctx context.Context, command Command) *Session {
	cmd := exec.CommandContext(ctx, command.Path, command.Args...)
	cmd.Env = append(os.Environ(), command.Env...)
	// Don't let an orphaned grandchild holding the stdout pipe stall Wait
	// after the producer itself has exited.
	cmd.WaitDelay = 3 * time.Second

	session := &Session{cmd: cmd, done: make(chan struct{})}
	cmd.Stderr = &session.stderr
	return session
}

// Stdout returns the live stdout pipe of a streaming-mode session. Nil for
// buffered sessions.
func (s *Session) Stdout() io.Reader { return s.pipe }

// Wait blocks until the process exits and returns the finalized outcome.
// Safe to call from multiple goroutines; the outcome is computed once.
func (s *Session) Wait() Outcome {
	s.waitOnce.Do(func() {
		err := s.cmd.Wait()

		code := 0
		if s.cmd.ProcessState != nil {
			code = s.cmd.ProcessState.ExitCode()
		}
		if err != nil && code == 0 {
			// Wait failed for a non-exit reason (e.g. pipe copy error);
			// treat as abnormal termination.
			code = -1
		}

		s.outcome = Outcome{
			ExitCode: code,
			Stdout:   s.stdout.Bytes(),
			Stderr:   s.stderr.String(),
		}
		close(s.done)
	})

	<-s.done
	return s.outcome
}

// Terminate asks the process to shut down with SIGTERM. Idempotent: already
// exited or never-started processes are a no-op.
func (s *Session) Terminate() {
	if s.cmd.Process == nil {
		return
	}
	if err := s.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// Process already gone; nothing to do.
		slog.Debug("Terminate signal not delivered", "component", "Producer", "pid", s.cmd.Process.Pid, "error", err)
	}
}
