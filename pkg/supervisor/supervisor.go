// Package supervisor owns the long-lived monitoring session against the
// external producer: spawn in monitoring mode, decode framed events from
// stdout, forward each to a callback, observe process exit. At most one
// monitoring subprocess exists at a time, process-wide.
package supervisor

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"chargerbridge/pkg/demux"
	"chargerbridge/pkg/models"
	"chargerbridge/pkg/producer"
)

// stopGrace is how long Stop waits for the producer to honor SIGTERM before
// force-killing it through context cancellation.
const stopGrace = 5 * time.Second

// Handle identifies one active monitoring session. Returned by Start and
// consumed by Stop; replaces any ambient "current subprocess" global.
type Handle struct {
	session *producer.Session
	cancel  context.CancelFunc
	done    chan struct{} // closed when the pump loop has fully wound down
}

// Done is closed once the session's process has exited and its event pump
// finished. Useful for tests and for consumers that watch for crashes.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Supervisor spawns and owns the monitoring producer instance.
type Supervisor struct {
	command producer.Command

	mu     sync.Mutex
	active *Handle
}

// New creates a Supervisor. The command must already carry the producer's
// monitoring flag.
func New(command producer.Command) *Supervisor {
	return &Supervisor{command: command}
}

// Start spawns the monitoring session and forwards each decoded status
// update to onEvent, sequentially and in arrival order. If a session is
// already active the call is a no-op and returns the active handle.
// On process exit (clean or crashed) the active marker clears so a later
// Start may respawn; the supervisor never restarts on its own.
func (s *Supervisor) Start(onEvent func(models.BridgeEvent)) (*Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		slog.Info("Monitoring session already active, ignoring start", "component", "Supervisor")
		return s.active, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	session, err := producer.SpawnStreaming(ctx, s.command)
	if err != nil {
		cancel()
		slog.Error("Failed to start monitoring session", "component", "Supervisor", "error", err)
		return nil, err
	}

	handle := &Handle{session: session, cancel: cancel, done: make(chan struct{})}
	s.active = handle

	go s.pump(handle, onEvent)

	slog.Info("Monitoring session started", "component", "Supervisor", "path", s.command.Path)
	return handle, nil
}

// Stop terminates the session owned by handle and waits for full teardown.
// Idempotent; a nil or already-finished handle is a no-op.
func (s *Supervisor) Stop(handle *Handle) {
	if handle == nil {
		return
	}

	handle.session.Terminate()
	select {
	case <-handle.done:
	case <-time.After(stopGrace):
		slog.Warn("Producer ignored SIGTERM, killing", "component", "Supervisor")
		handle.cancel()
		<-handle.done
	}
}

// Active reports whether a monitoring session currently owns a subprocess.
func (s *Supervisor) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active != nil
}

// pump decodes stdout lines until the stream ends, then finalizes the
// session. Runs in its own goroutine; the sole caller of onEvent.
func (s *Supervisor) pump(handle *Handle, onEvent func(models.BridgeEvent)) {
	defer close(handle.done)
	defer handle.cancel()

	scanner := demux.NewEventScanner(handle.session.Stdout())
	scanner.Diagnostic = func(line string, err error) {
		slog.Warn("Skipping malformed monitor line", "component", "Supervisor", "line", line, "error", err)
	}

	for {
		event, ok := scanner.Next()
		if !ok {
			break
		}
		if !event.IsStatusUpdate() {
			slog.Debug("Ignoring non-update envelope", "component", "Supervisor", "event", string(event.Event), "ip", event.IP)
			continue
		}
		onEvent(event)
	}

	if err := scanner.Err(); err != nil {
		// The stdout stream is unrecoverable; kill the session so Wait
		// returns and the active marker clears for a deliberate restart.
		slog.Warn("Monitor stdout read failed, killing session", "component", "Supervisor", "error", err)
		handle.cancel()
	}

	outcome := handle.session.Wait()
	slog.Info("Monitoring session ended", "component", "Supervisor",
		"exit_code", outcome.ExitCode, "stderr", strings.TrimSpace(outcome.Stderr))

	s.mu.Lock()
	if s.active == handle {
		s.active = nil
	}
	s.mu.Unlock()
}
