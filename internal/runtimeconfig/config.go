package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrCommentLegacyBaseRequired rejects comment rewriting without a base to match legacy permalinks.
	ErrCommentLegacyBaseRequired = errors.New("postmigrate config: comment legacy base or external domain is required when comment rewriting is enabled")
	// ErrLoggingProviderUnknown rejects logging providers other than console and gologger.
	ErrLoggingProviderUnknown = errors.New("postmigrate config: logging provider is invalid")
	// ErrLoggingLevelInvalid rejects unrecognised log levels.
	ErrLoggingLevelInvalid = errors.New("postmigrate config: logging level is invalid")
	// ErrLoggingFormatInvalid rejects unrecognised log formats.
	ErrLoggingFormatInvalid = errors.New("postmigrate config: logging format is invalid")
	// ErrTimezoneInvalid rejects comment timezones unknown to the tz database.
	ErrTimezoneInvalid = errors.New("postmigrate config: comment timezone is invalid")
	// ErrCodeTagInvalid rejects code tags that are not tag names or repeat one.
	ErrCodeTagInvalid = errors.New("postmigrate config: code tag is invalid")
	// ErrDiffContextInvalid rejects a negative number of diff context lines.
	ErrDiffContextInvalid = errors.New("postmigrate config: diff context must be zero or positive")
	// ErrTimeoutInvalid rejects negative run timeouts.
	ErrTimeoutInvalid = errors.New("postmigrate config: timeout must be zero or positive")
)

// Config aggregates the options of a migration run. Zero values disable the
// optional rules and reports.
type Config struct {
	Markup   MarkupConfig   `yaml:"markup"`
	Posts    PostsConfig    `yaml:"posts"`
	Comments CommentsConfig `yaml:"comments"`
	Report   ReportConfig   `yaml:"report"`
	Logging  LoggingConfig  `yaml:"logging"`
	DryRun   bool           `yaml:"dry_run"`
	// Timeout bounds a whole run; zero disables it.
	Timeout time.Duration `yaml:"timeout"`
}

// MarkupConfig toggles the markup rewrite rules.
type MarkupConfig struct {
	// ExternalDomain enables root-relative rewriting of http://<domain>/ links.
	ExternalDomain string `yaml:"external_domain"`
	// FilesBasePath enables relocation of LegacyFilesPrefix targets.
	FilesBasePath      string          `yaml:"files_base_path"`
	LegacyFilesPrefix  string          `yaml:"legacy_files_prefix"`
	LightboxMigration  bool            `yaml:"lightbox_migration"`
	OrphanPreviewWrap  bool            `yaml:"orphan_preview_wrap"`
	CodeRestructuring  bool            `yaml:"code_restructuring"`
	GalleryReport      bool            `yaml:"gallery_report"`
	ObjectParagraphFix bool            `yaml:"object_paragraph_fix"`
	OverlayClass       string          `yaml:"overlay_class"`
	GalleryMarker      string          `yaml:"gallery_marker"`
	CodeTags           []CodeTagConfig `yaml:"code_tags"`
}

// CodeTagConfig maps a legacy code tag to its language class.
type CodeTagConfig struct {
	Tag   string `yaml:"tag"`
	Class string `yaml:"class"`
}

// PostsConfig captures row level diagnostics.
type PostsConfig struct {
	ReportRedirects bool   `yaml:"report_redirects"`
	NewsPrefix      string `yaml:"news_prefix"`
}

// CommentsConfig controls comment export rewriting. It is enabled by ExportPath.
type CommentsConfig struct {
	ExportPath string `yaml:"export_path"`
	// OutputPath defaults to ExportPath.
	OutputPath string `yaml:"output_path"`
	// LegacyBase defaults to http://<markup.external_domain>.
	LegacyBase string `yaml:"legacy_base"`
	LinkBase   string `yaml:"link_base"`
	Timezone   string `yaml:"timezone"`
}

// ReportConfig controls the unified diff report.
type ReportConfig struct {
	DiffPath    string `yaml:"diff_path"`
	DiffContext int    `yaml:"diff_context"`
}

// LoggingConfig selects the logger provider.
type LoggingConfig struct {
	Provider  string `yaml:"provider"`
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	AddSource bool   `yaml:"add_source"`
}

// DefaultConfig returns every rule disabled with the legacy site defaults.
func DefaultConfig() Config {
	return Config{
		Markup: MarkupConfig{
			LegacyFilesPrefix: "/sites/default/files",
			OverlayClass:      "magnific",
			GalleryMarker:     "image/image_galleries",
			CodeTags: []CodeTagConfig{
				{Tag: "code"},
				{Tag: "javascript", Class: "lang-js"},
				{Tag: "cpp", Class: "lang-cpp"},
				{Tag: "php", Class: "lang-php"},
				{Tag: "drupal6", Class: "lang-php"},
				{Tag: "qt", Class: "lang-cpp"},
				{Tag: "bash", Class: "lang-bsh"},
			},
		},
		Posts: PostsConfig{
			NewsPrefix: "/news/",
		},
		Comments: CommentsConfig{
			Timezone: "UTC",
		},
		Report: ReportConfig{
			DiffContext: 3,
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
			Format:   "",
		},
	}
}

// Enabled reports whether comment rewriting was requested.
func (c CommentsConfig) Enabled() bool {
	return strings.TrimSpace(c.ExportPath) != ""
}

// CommentLegacyBase returns the base of legacy permalinks in the comment
// export, derived from the external domain when not set.
func (cfg Config) CommentLegacyBase() string {
	if base := strings.TrimSpace(cfg.Comments.LegacyBase); base != "" {
		return base
	}
	if domain := strings.Trim(strings.TrimSpace(cfg.Markup.ExternalDomain), "/"); domain != "" {
		return "http://" + domain
	}
	return ""
}

// Location resolves the comment timezone, UTC when empty.
func (cfg Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(cfg.Comments.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTimezoneInvalid, name)
	}
	return loc, nil
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if cfg.Comments.Enabled() {
		if cfg.CommentLegacyBase() == "" {
			return ErrCommentLegacyBaseRequired
		}
		if _, err := cfg.Location(); err != nil {
			return err
		}
	}
	if cfg.Markup.CodeRestructuring {
		seen := map[string]bool{}
		for _, tag := range cfg.Markup.CodeTags {
			name := strings.ToLower(strings.TrimSpace(tag.Tag))
			if !isTagName(name) {
				return fmt.Errorf("%w: %q", ErrCodeTagInvalid, tag.Tag)
			}
			if seen[name] {
				return fmt.Errorf("%w: duplicate %q", ErrCodeTagInvalid, tag.Tag)
			}
			seen[name] = true
		}
	}
	if cfg.Report.DiffContext < 0 {
		return ErrDiffContextInvalid
	}
	if cfg.Timeout < 0 {
		return ErrTimeoutInvalid
	}

	provider := normalizeProvider(cfg.Logging.Provider)
	if provider != "" && !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func isTagName(name string) bool {
	if name == "" || name[0] < 'a' || name[0] > 'z' {
		return false
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	return true
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
