package postmigrate

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-postmigrate/internal/commands"
	preprocesscmd "github.com/goliatone/go-postmigrate/internal/commands/preprocess"
	"github.com/goliatone/go-postmigrate/internal/logging"
	"github.com/goliatone/go-postmigrate/internal/markup"
	"github.com/goliatone/go-postmigrate/internal/pipeline"
	"github.com/goliatone/go-postmigrate/internal/posts"
	"github.com/goliatone/go-postmigrate/pkg/interfaces"
)

// PreprocessCommand exports the command message that migrates one post table.
type PreprocessCommand = preprocesscmd.PreprocessCommand

// PreprocessResult exports the envelope delivered to PreprocessCommand.ResultCallback.
type PreprocessResult = preprocesscmd.ResultEnvelope

// Result exports the counters of a migration run.
type Result = pipeline.Result

// CommandRegistry exports the registration contract used by RegisterCommands.
type CommandRegistry = preprocesscmd.CommandRegistry

// DispatcherRegistry exports the go-command dispatcher registry.
type DispatcherRegistry = preprocesscmd.DispatcherRegistry

// ErrModuleNotConfigured is returned when methods are called on a nil Module.
var ErrModuleNotConfigured = errors.New("postmigrate: module not configured")

// Option customises New.
type Option func(*moduleOptions)

type moduleOptions struct {
	provider interfaces.LoggerProvider
}

// WithLoggerProvider replaces the provider built from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *moduleOptions) {
		o.provider = provider
	}
}

// Module represents the top level migration runtime façade.
type Module struct {
	cfg      Config
	provider interfaces.LoggerProvider
	engine   *markup.Engine
	handlers *preprocesscmd.HandlerSet
}

// New validates cfg and wires the logger provider, markup engine, pipeline
// service and preprocess command handler.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := moduleOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	provider := options.provider
	if provider == nil {
		built, err := newLoggerProvider(cfg.Logging)
		if err != nil {
			return nil, err
		}
		provider = built
	}

	var location *time.Location
	if cfg.Comments.Enabled() {
		loc, err := cfg.Location()
		if err != nil {
			return nil, err
		}
		location = loc
	}

	engine := markup.NewEngine(markupOptions(cfg.Markup), logging.MarkupLogger(provider))
	service := pipeline.NewService(pipeline.Options{
		Posts: posts.Options{
			ReportRedirects: cfg.Posts.ReportRedirects,
			NewsPrefix:      cfg.Posts.NewsPrefix,
		},
		CommentLegacyBase: cfg.CommentLegacyBase(),
		CommentLinkBase:   cfg.Comments.LinkBase,
		Location:          location,
		DiffContext:       cfg.Report.DiffContext,
	},
		pipeline.WithMarkupRewriter(engine),
		pipeline.WithLoggerProvider(provider),
	)

	var handlerOpts []commands.HandlerOption[PreprocessCommand]
	if cfg.Timeout > 0 {
		handlerOpts = append(handlerOpts, commands.WithTimeout[PreprocessCommand](cfg.Timeout))
	}
	handlers, err := preprocesscmd.RegisterPreprocessCommands(nil, service, provider, preprocesscmd.WithHandlerOptions(handlerOpts...))
	if err != nil {
		return nil, err
	}

	return &Module{
		cfg:      cfg,
		provider: provider,
		engine:   engine,
		handlers: handlers,
	}, nil
}

// Config returns the configuration the module was built with.
func (m *Module) Config() Config {
	if m == nil {
		return Config{}
	}
	return m.cfg
}

// LoggerProvider returns the provider every stage logger derives from.
func (m *Module) LoggerProvider() interfaces.LoggerProvider {
	if m == nil {
		return nil
	}
	return m.provider
}

// MarkupRules lists the markup rules enabled by the configuration, in run order.
func (m *Module) MarkupRules() []string {
	if m == nil || m.engine == nil {
		return nil
	}
	return m.engine.Enabled()
}

// Handlers exposes the command handlers for direct execution.
func (m *Module) Handlers() *preprocesscmd.HandlerSet {
	if m == nil {
		return nil
	}
	return m.handlers
}

// RegisterCommands registers the module's command handlers with reg.
func (m *Module) RegisterCommands(reg CommandRegistry) error {
	if m == nil || m.handlers == nil {
		return ErrModuleNotConfigured
	}
	if reg == nil {
		return nil
	}
	return reg.RegisterCommand(m.handlers.Preprocess)
}

// Preprocess executes cmd. Every log entry of the run carries a run_id,
// generated unless ctx already holds one.
func (m *Module) Preprocess(ctx context.Context, cmd PreprocessCommand) error {
	if m == nil || m.handlers == nil {
		return ErrModuleNotConfigured
	}
	ctx = commands.EnsureContext(ctx)
	if _, ok := logging.ContextFields(ctx)["run_id"]; !ok {
		ctx = logging.ContextWithRunID(ctx, uuid.NewString())
	}
	return m.handlers.Preprocess.Execute(ctx, cmd)
}

// PreprocessFiles migrates input into output using the comment, report and
// dry-run settings of the module configuration.
func (m *Module) PreprocessFiles(ctx context.Context, input, output string) (Result, error) {
	if m == nil {
		return Result{}, ErrModuleNotConfigured
	}
	var result Result
	cmd := PreprocessCommand{
		InputPath:         input,
		OutputPath:        output,
		CommentExportPath: m.cfg.Comments.ExportPath,
		CommentOutputPath: m.cfg.Comments.OutputPath,
		DiffPath:          m.cfg.Report.DiffPath,
		DryRun:            m.cfg.DryRun,
		ResultCallback: func(envelope PreprocessResult) {
			result = envelope.Result
		},
	}
	err := m.Preprocess(ctx, cmd)
	return result, err
}

func markupOptions(cfg MarkupConfig) markup.Options {
	opts := markup.Options{
		ExternalDomain:     cfg.ExternalDomain,
		FilesBasePath:      cfg.FilesBasePath,
		LegacyFilesPrefix:  cfg.LegacyFilesPrefix,
		LightboxMigration:  cfg.LightboxMigration,
		OrphanPreviewWrap:  cfg.OrphanPreviewWrap,
		CodeRestructuring:  cfg.CodeRestructuring,
		GalleryReport:      cfg.GalleryReport,
		ObjectParagraphFix: cfg.ObjectParagraphFix,
		OverlayClass:       cfg.OverlayClass,
		GalleryMarker:      cfg.GalleryMarker,
	}
	defaults := markup.DefaultOptions()
	if opts.LegacyFilesPrefix == "" {
		opts.LegacyFilesPrefix = defaults.LegacyFilesPrefix
	}
	if opts.OverlayClass == "" {
		opts.OverlayClass = defaults.OverlayClass
	}
	if opts.GalleryMarker == "" {
		opts.GalleryMarker = defaults.GalleryMarker
	}
	if len(cfg.CodeTags) == 0 {
		opts.CodeTags = defaults.CodeTags
		return opts
	}
	opts.CodeTags = make([]markup.CodeTag, 0, len(cfg.CodeTags))
	for _, tag := range cfg.CodeTags {
		opts.CodeTags = append(opts.CodeTags, markup.CodeTag{
			Tag:   strings.ToLower(strings.TrimSpace(tag.Tag)),
			Class: strings.TrimSpace(tag.Class),
		})
	}
	return opts
}
