// Package diff records the fields a migration run rewrote and renders them
// as unified diffs for review before anything is written.
package diff

import (
	"fmt"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// DefaultContext is the number of context lines around each hunk.
const DefaultContext = 3

// Change is one rewritten field.
type Change struct {
	// Row is the 1-based data row, 0 for documents outside the table.
	Row    int
	ID     string
	Field  string
	Before string
	After  string
}

// Label names the change in diff headers.
func (c Change) Label() string {
	if c.Row == 0 {
		return c.Field
	}
	return fmt.Sprintf("row %d post %s %s", c.Row, c.ID, c.Field)
}

// Unified renders c as a unified diff with context lines around each hunk
// (DefaultContext when not positive).
func Unified(c Change, context int) (string, error) {
	if context <= 0 {
		context = DefaultContext
	}
	label := c.Label()
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(c.Before),
		B:        difflib.SplitLines(c.After),
		FromFile: "a/" + label,
		ToFile:   "b/" + label,
		Context:  context,
	})
}

// Recorder collects changes in the order they are found.
type Recorder struct {
	changes []Change
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// CompareRow records every cell of after that differs from before. header
// names the cells; cells past the header are named by position.
func (r *Recorder) CompareRow(row int, id string, header, before, after []string) {
	for i, value := range after {
		previous := ""
		if i < len(before) {
			previous = before[i]
		}
		if previous == value {
			continue
		}
		field := fmt.Sprintf("column %d", i)
		if i < len(header) {
			field = strings.TrimSpace(header[i])
		}
		r.changes = append(r.changes, Change{Row: row, ID: id, Field: field, Before: previous, After: value})
	}
}

// CompareText records a whole document named name when it changed.
func (r *Recorder) CompareText(name, before, after string) {
	if before == after {
		return
	}
	r.changes = append(r.changes, Change{Field: name, Before: before, After: after})
}

// Len returns the number of recorded changes.
func (r *Recorder) Len() int {
	return len(r.changes)
}

// Changes returns the recorded changes.
func (r *Recorder) Changes() []Change {
	return r.changes
}

// Report renders every recorded change, one diff after the other.
func (r *Recorder) Report(context int) (string, error) {
	var b strings.Builder
	for _, change := range r.changes {
		patch, err := Unified(change, context)
		if err != nil {
			return "", fmt.Errorf("diff %s: %w", change.Label(), err)
		}
		b.WriteString(patch)
	}
	return b.String(), nil
}
