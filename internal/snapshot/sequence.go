// Package snapshot enumerates pattern-named optimizer snapshot files.
// The optimizer persists one file per completed run with no manifest,
// so presence on disk is the only cardinality signal.
package snapshot

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var intVerb = regexp.MustCompile(`%0?\d*d`)

// Sequence is a cursor over a numbered snapshot family. The resolved
// path is derived deterministically from the pattern and the current
// number; existence of the file at that path is the sole source of
// truth for whether the snapshot exists.
type Sequence struct {
	pattern string
	number  int
}

// NewSequence validates the pattern and returns a cursor positioned at
// index 1. The pattern must contain exactly one decimal integer verb
// (e.g. "%06d") and no other format verbs.
func NewSequence(pattern string) (*Sequence, error) {
	verbs := intVerb.FindAllString(pattern, -1)
	if len(verbs) != 1 {
		return nil, fmt.Errorf("pattern %q must contain exactly one integer verb, found %d", pattern, len(verbs))
	}
	rest := intVerb.ReplaceAllString(pattern, "")
	if strings.ContainsRune(rest, '%') {
		return nil, fmt.Errorf("pattern %q contains unsupported format verbs", pattern)
	}
	return &Sequence{pattern: pattern, number: 1}, nil
}

// Number returns the current 1-based index.
func (s *Sequence) Number() int { return s.number }

// File returns the path resolved from the pattern and current index.
// The result depends only on the pattern and the number, never on
// cursor history.
func (s *Sequence) File() string {
	return fmt.Sprintf(s.pattern, s.number)
}

// Exists reports whether a regular file is present at the currently
// resolved path.
func (s *Sequence) Exists() bool {
	info, err := os.Stat(s.File())
	return err == nil && info.Mode().IsRegular()
}

// SetNumber jumps the cursor to index n without validating existence.
func (s *Sequence) SetNumber(n int) { s.number = n }

// Advance increments the index by 1. Callers must check Exists before
// loading; a missing index signals end-of-scan, not an error.
func (s *Sequence) Advance() { s.number++ }
