package producer

import "fmt"

// SpawnError means the producer executable could not be started at all
// (missing binary, permission problem). Fatal to the call that spawned it.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start producer %q: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ExitError means the producer exited non-zero. Stdout is discarded; the
// exit code and accumulated stderr are what the caller gets.
type ExitError struct {
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("producer exited with code %d", e.ExitCode)
	}
	return fmt.Sprintf("producer exited with code %d: %s", e.ExitCode, e.Stderr)
}

// MalformedOutputError means the producer exited cleanly but its stdout was
// not a valid snapshot document. Excerpt holds a truncated slice of the raw
// output for diagnostics.
type MalformedOutputError struct {
	Err     error
	Excerpt string
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("producer output is not valid JSON: %v (output: %q)", e.Err, e.Excerpt)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }
