// Package columns resolves named fields of a tabular export to their
// positions in the header row.
package columns

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-postmigrate/internal/logging"
	"github.com/goliatone/go-postmigrate/pkg/interfaces"
)

// Field names of the legacy post export.
const (
	ID         = "nid"
	Title      = "title"
	Content    = "content"
	Teaser     = "teaser"
	Link       = "link"
	Categories = "categories"
	Created    = "created"
)

// Required lists the fields every export must carry, in resolution order.
var Required = []string{ID, Title, Content, Teaser, Link, Categories, Created}

// ErrMissingColumn is returned when a required field is absent from the header.
var ErrMissingColumn = errors.New("columns: required column missing")

// MissingColumnError names the first required field that could not be resolved.
type MissingColumnError struct {
	Name string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("columns: can't find column %q", e.Name)
}

func (e *MissingColumnError) Unwrap() error { return ErrMissingColumn }

// Index is an immutable name to position mapping for one run.
type Index struct {
	positions map[string]int
	width     int
}

// Resolve matches every name in required against header, ignoring case and
// surrounding whitespace. The first matching cell wins when a header repeats
// a name. Resolution is all-or-nothing: the first unresolved name aborts it.
func Resolve(header []string, required []string, logger interfaces.Logger) (Index, error) {
	logger = logging.EnsureLogger(logger)

	normalized := make([]string, len(header))
	for i, cell := range header {
		normalized[i] = normalize(cell)
	}

	positions := make(map[string]int, len(required))
	for _, name := range required {
		key := normalize(name)
		pos := indexOf(normalized, key)
		if pos < 0 {
			logger.Debug("columns.missing", "column", key)
			return Index{}, &MissingColumnError{Name: key}
		}
		positions[key] = pos
		logger.Info("columns.resolved", "column", key, "position", pos)
	}

	return Index{positions: positions, width: len(header)}, nil
}

// Position returns the position of name and whether it was resolved.
func (idx Index) Position(name string) (int, bool) {
	pos, ok := idx.positions[normalize(name)]
	return pos, ok
}

// MustPosition returns the position of a name resolved by Resolve. It panics
// for names outside the resolved set, which is a programming error.
func (idx Index) MustPosition(name string) int {
	pos, ok := idx.Position(name)
	if !ok {
		panic(fmt.Sprintf("columns: %q was not resolved", name))
	}
	return pos
}

// Width is the number of cells in the header row.
func (idx Index) Width() int {
	return idx.width
}

// Names returns the resolved names.
func (idx Index) Names() []string {
	names := make([]string, 0, len(idx.positions))
	for name := range idx.positions {
		names = append(names, name)
	}
	return names
}

func indexOf(cells []string, key string) int {
	for i, cell := range cells {
		if cell == key {
			return i
		}
	}
	return -1
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
