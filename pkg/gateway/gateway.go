// Package gateway implements the one-shot snapshot call against the external
// producer: spawn a fresh process in default mode, wait for exit, decode the
// whole output exactly once.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chargerbridge/pkg/demux"
	"chargerbridge/pkg/models"
	"chargerbridge/pkg/producer"
)

// Gateway issues snapshot calls. Every call spawns its own producer session
// and keeps all state on the stack, so concurrent calls never share a
// session: FetchSnapshot is fully reentrant.
type Gateway struct {
	command producer.Command
	timeout time.Duration // 0 disables the per-call timeout
}

// New creates a Gateway that spawns the given producer command per call.
func New(command producer.Command, timeout time.Duration) *Gateway {
	return &Gateway{command: command, timeout: timeout}
}

// FetchSnapshot runs one producer invocation to completion and returns the
// decoded result. Failures come back as a SnapshotResult with Success=false;
// nothing is thrown past this boundary. Cancellation of ctx (or expiry of
// the configured timeout) kills the subprocess.
func (g *Gateway) FetchSnapshot(ctx context.Context) models.SnapshotResult {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	session, err := producer.Spawn(ctx, g.command)
	if err != nil {
		slog.Error("Snapshot spawn failed", "component", "Gateway", "path", g.command.Path, "error", err)
		return models.SnapshotFailure(err)
	}

	outcome := session.Wait()

	if ctxErr := ctx.Err(); errors.Is(ctxErr, context.DeadlineExceeded) {
		slog.Error("Snapshot call timed out", "component", "Gateway", "timeout", g.timeout.String())
		return models.SnapshotFailure(fmt.Errorf("snapshot call timed out after %s", g.timeout))
	}

	result, err := demux.DecodeSnapshot(outcome)
	if err != nil {
		slog.Error("Snapshot decode failed", "component", "Gateway", "exit_code", outcome.ExitCode, "error", err)
		return models.SnapshotFailure(err)
	}

	slog.Info("Snapshot fetched", "component", "Gateway", "success", result.Success, "device_count", len(result.Devices))
	return result
}
