package preprocesscmd

import (
	"context"

	"github.com/goliatone/go-postmigrate/internal/commands"
	"github.com/goliatone/go-postmigrate/internal/logging"
	"github.com/goliatone/go-postmigrate/internal/pipeline"
	"github.com/goliatone/go-postmigrate/internal/tabular"
	"github.com/goliatone/go-postmigrate/pkg/interfaces"
)

// Runner executes a migration job.
type Runner interface {
	Run(ctx context.Context, job pipeline.Job) (pipeline.Result, error)
}

// PreprocessHandler runs the migration pipeline over files using the shared command handler foundation.
type PreprocessHandler struct {
	inner *commands.Handler[PreprocessCommand]
}

// NewPreprocessHandler constructs a handler wired to runner.
func NewPreprocessHandler(runner Runner, logger interfaces.Logger, opts ...commands.HandlerOption[PreprocessCommand]) *PreprocessHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg PreprocessCommand) error {
		if runner == nil {
			return ErrRunnerRequired
		}
		result, err := runner.Run(ctx, jobFor(msg))
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Result: result,
			Metadata: map[string]any{
				"operation": "preprocess",
				"input":     msg.InputPath,
				"output":    msg.OutputPath,
				"dry_run":   msg.DryRun,
			},
		})
		return err
	}

	handlerOpts := []commands.HandlerOption[PreprocessCommand]{
		commands.WithLogger[PreprocessCommand](baseLogger),
		commands.WithOperation[PreprocessCommand]("posts.preprocess"),
		commands.WithMessageFields(func(msg PreprocessCommand) map[string]any {
			fields := map[string]any{
				"input":  msg.InputPath,
				"output": msg.OutputPath,
			}
			if msg.CommentExportPath != "" {
				fields["comments"] = msg.CommentExportPath
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[PreprocessCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PreprocessHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[PreprocessCommand].
func (h *PreprocessHandler) Execute(ctx context.Context, msg PreprocessCommand) error {
	return h.inner.Execute(ctx, msg)
}

func jobFor(msg PreprocessCommand) pipeline.Job {
	job := pipeline.Job{
		Source: tabular.NewCSVFile(msg.InputPath),
		Sink:   tabular.NewCSVFile(msg.OutputPath),
		DryRun: msg.DryRun,
	}
	if msg.CommentExportPath != "" {
		job.Comments = tabular.NewTextFile(msg.CommentExportPath, msg.CommentOutputPath)
	}
	if msg.DiffPath != "" {
		job.Report = tabular.NewTextFile(msg.DiffPath, "")
	}
	return job
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}
