package postmigrate

import "github.com/goliatone/go-postmigrate/internal/runtimeconfig"

var (
	ErrCommentLegacyBaseRequired = runtimeconfig.ErrCommentLegacyBaseRequired
	ErrLoggingProviderUnknown    = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid       = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid      = runtimeconfig.ErrLoggingFormatInvalid
	ErrTimezoneInvalid           = runtimeconfig.ErrTimezoneInvalid
	ErrCodeTagInvalid            = runtimeconfig.ErrCodeTagInvalid
	ErrDiffContextInvalid        = runtimeconfig.ErrDiffContextInvalid
	ErrTimeoutInvalid            = runtimeconfig.ErrTimeoutInvalid
)

type (
	Config         = runtimeconfig.Config
	MarkupConfig   = runtimeconfig.MarkupConfig
	CodeTagConfig  = runtimeconfig.CodeTagConfig
	PostsConfig    = runtimeconfig.PostsConfig
	CommentsConfig = runtimeconfig.CommentsConfig
	ReportConfig   = runtimeconfig.ReportConfig
	LoggingConfig  = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML file over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.Load(path)
}
