package tabular

import (
	"errors"
	"fmt"
)

var (
	// ErrRead marks failures reading an input file.
	ErrRead = errors.New("tabular: read failed")
	// ErrWrite marks failures writing an output file.
	ErrWrite = errors.New("tabular: write failed")
)

// PathError is an I/O failure on a named file. It matches ErrRead or
// ErrWrite as well as the underlying cause with errors.Is.
type PathError struct {
	Op   string
	Path string
	Err  error
	kind error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() []error {
	return []error{e.kind, e.Err}
}

func readError(path string, err error) error {
	return &PathError{Op: "read", Path: path, Err: err, kind: ErrRead}
}

func writeError(path string, err error) error {
	return &PathError{Op: "write", Path: path, Err: err, kind: ErrWrite}
}
