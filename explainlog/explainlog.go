// Package explainlog writes the explanation of every completed cell to a
// plain text file.
package explainlog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/getsavvyinc/nbcomplete/slice"
)

const DefaultPath = "code_explanations.txt"

// Mode decides what happens to records left by earlier runs.
type Mode string

const (
	// Append keeps earlier records and adds new ones after them.
	Append Mode = "append"
	// Truncate empties the file once at the start of a run.
	Truncate Mode = "truncate"
)

var Modes = []Mode{Append, Truncate}

var ErrInvalidMode = errors.New("invalid log mode")

var separator = strings.Repeat("=", 50)

type Log struct {
	path string
	mode Mode
}

func New(path string, mode Mode) (*Log, error) {
	if !slice.Has(Modes, mode) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if path == "" {
		path = DefaultPath
	}
	return &Log{path: path, mode: mode}, nil
}

func (l *Log) Path() string { return l.path }

// Begin prepares the file for a new run. In Truncate mode existing records
// are discarded; in Append mode it is a no-op.
func (l *Log) Begin() error {
	if l.mode != Truncate {
		return nil
	}
	if err := os.Truncate(l.path, 0); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to truncate explanation log: %w", err)
	}
	return nil
}

// Append writes one record. The file is opened and closed on every call.
func (l *Log) Append(index int, code, explanation string) error {
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open explanation log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(Record(index, code, explanation)); err != nil {
		return fmt.Errorf("failed to write explanation log: %w", err)
	}
	return f.Close()
}

// Record formats a single log entry, separator line included.
func Record(index int, code, explanation string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Code Snippet %d:\n", index)
	fmt.Fprintf(&b, "%s\n\n", code)
	fmt.Fprintf(&b, "Explanation:\n%s\n", explanation)
	b.WriteString(separator + "\n\n")
	return b.String()
}
