package producer

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shell builds a Command running an inline shell script, standing in for the
// external producer.
func shell(script string) Command {
	return Command{Path: "/bin/sh", Args: []string{"-c", script}}
}

func TestSpawnBufferedCapturesStreams(t *testing.T) {
	session, err := Spawn(context.Background(), shell(`echo '{"devices":[]}'; echo oops >&2`))
	require.NoError(t, err)

	outcome := session.Wait()
	assert.Equal(t, 0, outcome.ExitCode)
	assert.Contains(t, string(outcome.Stdout), `{"devices":[]}`)
	assert.Contains(t, outcome.Stderr, "oops")
}

func TestSpawnCapturesExitCode(t *testing.T) {
	session, err := Spawn(context.Background(), shell(`echo boom >&2; exit 3`))
	require.NoError(t, err)

	outcome := session.Wait()
	assert.Equal(t, 3, outcome.ExitCode)
	assert.Contains(t, outcome.Stderr, "boom")
}

func TestSpawnMissingExecutable(t *testing.T) {
	_, err := Spawn(context.Background(), Command{Path: "/nonexistent/charger_api"})
	require.Error(t, err)

	var spawnErr *SpawnError
	require.ErrorAs(t, err, &spawnErr)
	assert.Equal(t, "/nonexistent/charger_api", spawnErr.Path)
}

func TestSpawnInjectsEnvironment(t *testing.T) {
	session, err := Spawn(context.Background(), Command{
		Path: "/bin/sh",
		Args: []string{"-c", `printf '%s' "$CHARGER_API_USERNAME"`},
		Env:  []string{"CHARGER_API_USERNAME=Assembler"},
	})
	require.NoError(t, err)

	outcome := session.Wait()
	assert.Equal(t, "Assembler", string(outcome.Stdout))
}

func TestSpawnStreamingPipesStdout(t *testing.T) {
	session, err := SpawnStreaming(context.Background(), shell(`printf 'line1\nline2\n'`))
	require.NoError(t, err)

	out, err := io.ReadAll(session.Stdout())
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2\n", string(out))

	outcome := session.Wait()
	assert.Equal(t, 0, outcome.ExitCode)
	assert.Empty(t, outcome.Stdout) // streaming mode does not buffer stdout
}

func TestWaitIsIdempotent(t *testing.T) {
	session, err := Spawn(context.Background(), shell(`exit 1`))
	require.NoError(t, err)

	first := session.Wait()
	second := session.Wait()
	assert.Equal(t, first, second)
}

func TestTerminateStopsProcess(t *testing.T) {
	session, err := SpawnStreaming(context.Background(), shell(`exec sleep 30`))
	require.NoError(t, err)

	done := make(chan Outcome, 1)
	go func() {
		io.Copy(io.Discard, session.Stdout())
		done <- session.Wait()
	}()

	session.Terminate()

	select {
	case outcome := <-done:
		assert.NotEqual(t, 0, outcome.ExitCode)
	case <-time.After(5 * time.Second):
		t.Fatal("process did not exit after Terminate")
	}

	// Idempotent after exit.
	session.Terminate()
}

func TestContextCancellationKillsProcess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	session, err := Spawn(ctx, shell(`exec sleep 30`))
	require.NoError(t, err)

	cancel()
	outcome := session.Wait()
	assert.NotEqual(t, 0, outcome.ExitCode)
}
