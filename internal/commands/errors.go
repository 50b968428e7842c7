package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-postmigrate/internal/columns"
	"github.com/goliatone/go-postmigrate/internal/tabular"
)

const (
	commandValidationCode   = "COMMAND_VALIDATION_FAILED"
	commandContextCanceled  = "COMMAND_CONTEXT_CANCELED"
	commandContextTimeout   = "COMMAND_CONTEXT_TIMEOUT"
	commandContextErrorCode = "COMMAND_CONTEXT_ERROR"
	commandExecuteFailed    = "COMMAND_EXECUTION_FAILED"

	SchemaMissingColumnCode = "SCHEMA_MISSING_COLUMN"
	IOReadFailedCode        = "IO_READ_FAILED"
	IOWriteFailedCode       = "IO_WRITE_FAILED"
)

// TextCode returns the text code attached to a categorised command error.
func TextCode(err error) string {
	var categorised *goerrors.Error
	if errors.As(err, &categorised) {
		return categorised.TextCode
	}
	return ""
}

func wrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(commandValidationCode)
}

func wrapContextError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(commandContextCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode(commandContextTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(commandContextErrorCode)
	}
}

// wrapExecuteError categorises the failures a migration can end with: a
// schema mismatch is a validation problem of the input, I/O and anything
// else are command failures.
func wrapExecuteError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, columns.ErrMissingColumn):
		return goerrors.Wrap(err, goerrors.CategoryValidation, "input is missing a required column").
			WithTextCode(SchemaMissingColumnCode)
	case errors.Is(err, tabular.ErrRead):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "input could not be read").
			WithTextCode(IOReadFailedCode)
	case errors.Is(err, tabular.ErrWrite):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "output could not be written").
			WithTextCode(IOWriteFailedCode)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return wrapContextError(err)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
			WithTextCode(commandExecuteFailed)
	}
}
