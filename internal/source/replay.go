// internal/source/replay.go
package source

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/2samgu2/heartbeat-android/internal/rppg"
)

// Replay reads recorded samples from a semicolon-separated file, one frame
// per row:
//
//	timestamp;value[;value;value];resync
//
// with resync as 0/1. A header row is skipped if present. Rows that do not
// parse stop the stream; Err reports the first failure.
type Replay struct {
	file    *os.File
	scanner *bufio.Scanner
	line    int
	err     error
}

// OpenReplay opens a recorded sample file.
func OpenReplay(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay: %w", err)
	}
	return &Replay{file: f, scanner: bufio.NewScanner(f)}, nil
}

// Next returns the next recorded sample, false at end of file or on a
// malformed row.
func (r *Replay) Next() (rppg.Sample, bool) {
	for r.scanner.Scan() {
		r.line++
		text := strings.TrimSpace(r.scanner.Text())
		if text == "" {
			continue
		}

		s, err := parseRow(text)
		if err != nil {
			if r.line == 1 {
				// Header row
				continue
			}
			r.err = fmt.Errorf("line %d: %w", r.line, err)
			return rppg.Sample{}, false
		}
		return s, true
	}
	r.err = r.scanner.Err()
	return rppg.Sample{}, false
}

// Err returns the first read or parse failure, nil on clean end of file.
func (r *Replay) Err() error {
	return r.err
}

// Close closes the underlying file.
func (r *Replay) Close() error {
	return r.file.Close()
}

func parseRow(text string) (rppg.Sample, error) {
	fields := strings.Split(text, ";")
	if len(fields) != 3 && len(fields) != 5 {
		return rppg.Sample{}, fmt.Errorf("want 3 or 5 fields, got %d", len(fields))
	}

	ts, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil {
		return rppg.Sample{}, fmt.Errorf("timestamp: %w", err)
	}

	values := make([]float64, len(fields)-2)
	for i := range values {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i+1]), 64)
		if err != nil {
			return rppg.Sample{}, fmt.Errorf("value %d: %w", i, err)
		}
		values[i] = v
	}

	resync, err := strconv.ParseBool(strings.TrimSpace(fields[len(fields)-1]))
	if err != nil {
		return rppg.Sample{}, fmt.Errorf("resync: %w", err)
	}

	return rppg.Sample{Values: values, Timestamp: ts, Resync: resync}, nil
}
