// Package demux splits the producer's output streams into structured records.
// Two strategies: whole-output decoding for the one-shot snapshot call
// (atomic: one complete answer or one clear failure) and line-by-line
// streaming decoding for the monitoring session (resilient: one corrupt line
// never halts the feed).
package demux

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"chargerbridge/pkg/models"
	"chargerbridge/pkg/producer"
)

// excerptLimit bounds the raw-output excerpt carried by a
// MalformedOutputError so a runaway producer cannot bloat logs.
const excerptLimit = 256

// snapshotPayload is the producer's default-mode stdout document. The
// producer omits the success key on the happy path and sets it to false on
// failure, so Success is a pointer to distinguish absent from false.
type snapshotPayload struct {
	Success *bool                  `json:"success"`
	Message string                 `json:"message"`
	Devices []models.ChargerRecord `json:"devices"`
	Version int                    `json:"version"`
}

// DecodeSnapshot applies whole-output decoding to a finished producer
// session. A non-zero exit code takes precedence over any stdout content:
// the accumulated stdout is discarded and the error carries exit code and
// stderr. A zero exit with undecodable stdout yields a MalformedOutputError;
// the failure is never silently dropped.
func DecodeSnapshot(outcome producer.Outcome) (models.SnapshotResult, error) {
	if outcome.ExitCode != 0 {
		return models.SnapshotResult{}, &producer.ExitError{
			ExitCode: outcome.ExitCode,
			Stderr:   strings.TrimSpace(outcome.Stderr),
		}
	}

	var payload snapshotPayload
	if err := json.Unmarshal(bytes.TrimSpace(outcome.Stdout), &payload); err != nil {
		return models.SnapshotResult{}, &producer.MalformedOutputError{
			Err:     err,
			Excerpt: excerpt(outcome.Stdout),
		}
	}

	if payload.Success != nil && !*payload.Success {
		return models.SnapshotResult{Success: false, Message: payload.Message}, nil
	}
	return models.SnapshotResult{Success: true, Devices: payload.Devices}, nil
}

func excerpt(raw []byte) string {
	trimmed := strings.TrimSpace(string(raw))
	if len(trimmed) > excerptLimit {
		return trimmed[:excerptLimit] + "..."
	}
	return trimmed
}

// maxLineBytes bounds a single monitoring line. A full charger fleet update
// fits well under this; anything larger is a runaway producer and the line
// gets skipped, never ending the stream.
const maxLineBytes = 1024 * 1024

// EventScanner decodes the producer's monitoring-mode stdout incrementally.
// A chunk may contain zero, one, or several newline-delimited documents, and
// a document may span chunks. One decode attempt per complete line only;
// malformed and oversized lines are reported through Diagnostic and skipped.
type EventScanner struct {
	reader *bufio.Reader
	err    error

	// Diagnostic is invoked for each line that is not a valid event
	// envelope. Non-fatal: the scan continues with the next line.
	Diagnostic func(line string, err error)
}

// NewEventScanner wraps the monitoring session's stdout.
func NewEventScanner(stdout io.Reader) *EventScanner {
	return &EventScanner{reader: bufio.NewReaderSize(stdout, 64*1024)}
}

// Next returns the next decoded event envelope, skipping empty, malformed,
// and oversized lines. Returns false when the stream ends (producer exit or
// pipe close); Err reports any underlying read failure.
func (s *EventScanner) Next() (models.BridgeEvent, bool) {
	for {
		line, ok := s.nextLine()
		if !ok {
			return models.BridgeEvent{}, false
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		var event models.BridgeEvent
		if err := json.Unmarshal(line, &event); err != nil {
			s.diagnose(string(line), err)
			continue
		}
		return event, true
	}
}

// Err returns the first non-EOF error encountered while reading.
func (s *EventScanner) Err() error { return s.err }

func (s *EventScanner) diagnose(line string, err error) {
	if s.Diagnostic != nil {
		s.Diagnostic(line, err)
	}
}

// nextLine accumulates one newline-terminated line. A line over maxLineBytes
// is diagnosed with a truncated excerpt, its remainder discarded up to the
// next newline, and scanning resumes with the line after it.
func (s *EventScanner) nextLine() ([]byte, bool) {
	var line []byte
	for {
		chunk, err := s.reader.ReadSlice('\n')
		line = append(line, chunk...)

		if len(line) > maxLineBytes {
			if err == bufio.ErrBufferFull {
				err = s.discardLine()
			}
			s.diagnose(excerpt(line), bufio.ErrTooLong)
			if err == nil {
				line = line[:0]
				continue
			}
			if err != io.EOF {
				s.err = err
			}
			return nil, false
		}

		switch err {
		case nil:
			return line, true
		case bufio.ErrBufferFull:
			continue
		case io.EOF:
			// A final unterminated line still counts.
			if len(line) > 0 {
				return line, true
			}
			return nil, false
		default:
			s.err = err
			return nil, false
		}
	}
}

// discardLine drops input up to and including the next newline.
func (s *EventScanner) discardLine() error {
	for {
		_, err := s.reader.ReadSlice('\n')
		if err != bufio.ErrBufferFull {
			return err
		}
	}
}
