package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-postmigrate/pkg/interfaces"
)

const (
	rootModule     = "migrate"
	columnsModule  = "migrate.columns"
	postsModule    = "migrate.posts"
	markupModule   = "migrate.markup"
	slugsModule    = "migrate.slugs"
	commentsModule = "migrate.comments"
	pipelineModule = "migrate.pipeline"
)

const (
	fieldPostID    = "post_id"
	fieldPostTitle = "title"
	fieldRowNumber = "row"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module identifier is
// attached as structured context so entries can be filtered per stage.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// ColumnsLogger returns the logger namespace reserved for column discovery.
func ColumnsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, columnsModule)
}

// PostsLogger returns the logger namespace reserved for row transformation.
func PostsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, postsModule)
}

// MarkupLogger returns the logger namespace reserved for markup rewriting.
func MarkupLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markupModule)
}

// SlugsLogger returns the logger namespace reserved for slug repair and uniqueness.
func SlugsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, slugsModule)
}

// CommentsLogger returns the logger namespace reserved for the comment export.
func CommentsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commentsModule)
}

// PipelineLogger returns the logger namespace reserved for the pipeline driver.
func PipelineLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, pipelineModule)
}

// WithPostContext enriches the logger with the identifying fields of a row:
// its 1-based data row number, post id and title. Empty values are ignored.
func WithPostContext(logger interfaces.Logger, row int, id, title string) interfaces.Logger {
	fields := map[string]any{}
	if row > 0 {
		fields[fieldRowNumber] = row
	}
	if trimmed := strings.TrimSpace(id); trimmed != "" {
		fields[fieldPostID] = trimmed
	}
	if trimmed := strings.TrimSpace(title); trimmed != "" {
		fields[fieldPostTitle] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
