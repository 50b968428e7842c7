package postmigrate

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-postmigrate/internal/logging/console"
	"github.com/goliatone/go-postmigrate/internal/logging/gologger"
	"github.com/goliatone/go-postmigrate/pkg/interfaces"
)

func newLoggerProvider(cfg LoggingConfig) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "console":
		level, ok := console.ParseLevel(cfg.Level)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, cfg.Level)
		}
		return console.NewProvider(console.Options{MinLevel: &level}), nil
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
		})
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, cfg.Provider)
	}
}
