package preprocesscmd

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-command/dispatcher"

	"github.com/goliatone/go-postmigrate/internal/commands"
	"github.com/goliatone/go-postmigrate/pkg/interfaces"
)

// ErrRunnerRequired is returned when the handler has no pipeline to run.
var ErrRunnerRequired = errors.New("preprocess command: runner is nil")

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// HandlerSet groups the handlers produced by RegisterPreprocessCommands.
type HandlerSet struct {
	Preprocess *PreprocessHandler
}

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	handlerOpts []commands.HandlerOption[PreprocessCommand]
}

// WithHandlerOptions forwards options to the PreprocessHandler constructor.
func WithHandlerOptions(opts ...commands.HandlerOption[PreprocessCommand]) Option {
	return func(cfg *options) {
		cfg.handlerOpts = append(cfg.handlerOpts, opts...)
	}
}

// RegisterPreprocessCommands builds the preprocess handler and registers it with reg when
// provided. The HandlerSet is returned so callers can execute handlers directly.
func RegisterPreprocessCommands(reg CommandRegistry, runner Runner, provider interfaces.LoggerProvider, opts ...Option) (*HandlerSet, error) {
	if runner == nil {
		return nil, ErrRunnerRequired
	}

	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	logger := commands.CommandLogger(provider, "posts")
	handler := NewPreprocessHandler(runner, logger, cfg.handlerOpts...)

	if reg != nil {
		if err := reg.RegisterCommand(handler); err != nil {
			return nil, err
		}
	}
	return &HandlerSet{Preprocess: handler}, nil
}

// DispatcherRegistry subscribes handlers to the go-command dispatcher so
// commands can be sent with dispatcher.Dispatch.
type DispatcherRegistry struct {
	unsubscribe []func()
}

// RegisterCommand satisfies CommandRegistry.
func (r *DispatcherRegistry) RegisterCommand(handler any) error {
	switch h := handler.(type) {
	case *PreprocessHandler:
		sub := dispatcher.SubscribeCommand(h)
		r.unsubscribe = append(r.unsubscribe, sub.Unsubscribe)
		return nil
	default:
		return fmt.Errorf("preprocess command: unsupported handler %T", handler)
	}
}

// Close removes every subscription made through the registry.
func (r *DispatcherRegistry) Close() {
	for _, unsubscribe := range r.unsubscribe {
		unsubscribe()
	}
	r.unsubscribe = nil
}
