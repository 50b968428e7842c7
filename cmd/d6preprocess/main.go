package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	postmigrate "github.com/goliatone/go-postmigrate"
)

type preprocessor interface {
	PreprocessFiles(ctx context.Context, input, output string) (postmigrate.Result, error)
}

var moduleBuilder = func(cfg postmigrate.Config) (preprocessor, error) {
	module, err := postmigrate.New(cfg)
	if err != nil {
		return nil, err
	}
	return module, nil
}

var errUsage = errors.New("usage: d6preprocess [flags] <input.csv> <output.csv>")

// errRunFailed marks failures the preprocess command already logged.
var errRunFailed = errors.New("run failed")

func main() {
	err := runPreprocess(os.Args[1:], os.Stdout)
	switch {
	case err == nil:
	case errors.Is(err, errRunFailed):
		os.Exit(1)
	default:
		log.Fatalf("d6preprocess: %v", err)
	}
}

func runPreprocess(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("d6preprocess", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a YAML configuration file")
	filesBasePath := fs.String("files-base-path", "", "Move legacy file links under this path")
	externalDomain := fs.String("external-domain", "", "Rewrite absolute links on this domain to root-relative paths")
	commentExport := fs.String("comment-export-path", "", "Comment export whose post permalinks are rewritten")
	commentOutput := fs.String("comment-output-path", "", "Write the rewritten comment export here instead of in place")
	commentLinkBase := fs.String("comment-link-base", "", "Prefix for rewritten comment permalinks")
	commentLegacyBase := fs.String("comment-legacy-base", "", "Base of legacy comment permalinks (defaults to http://<external-domain>)")
	commentTimezone := fs.String("comment-timezone", "", "Timezone of the created column")
	lightbox := fs.Bool("enable-lightbox-migration", false, "Move lightbox markers to the overlay class")
	codeBlocks := fs.Bool("enable-code-restructuring", false, "Rewrite legacy code tags into pre/code blocks")
	orphanPreviews := fs.Bool("enable-orphan-preview-wrap", false, "Wrap unlinked preview images in a lightbox link")
	reportRedirects := fs.Bool("report-redirects", false, "Report links pointing outside the news prefix")
	reportGallery := fs.Bool("report-gallery-links", false, "Report links to legacy image galleries")
	objectParagraphs := fs.Bool("enable-object-paragraph-fix", false, "Replace paragraphs holding embedded objects with centred containers")
	dryRun := fs.Bool("dry-run", false, "Run every step without writing the output or comment export")
	diffReport := fs.String("diff-report", "", "Write a unified diff of every rewritten field to this path")
	diffContext := fs.Int("diff-context", 3, "Context lines in the diff report")
	logLevel := fs.String("log-level", "", "Log level (trace, debug, info, warn, error)")
	logFormat := fs.String("log-format", "", "go-logger output format (console, json, pretty)")
	logProvider := fs.String("log-provider", "", "Logger provider (console, gologger)")
	timeout := fs.Duration("timeout", 0, "Abort the run after this duration")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errUsage
	}

	cfg := postmigrate.DefaultConfig()
	if *configPath != "" {
		loaded, err := postmigrate.LoadConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "files-base-path":
			cfg.Markup.FilesBasePath = *filesBasePath
		case "external-domain":
			cfg.Markup.ExternalDomain = *externalDomain
		case "comment-export-path":
			cfg.Comments.ExportPath = *commentExport
		case "comment-output-path":
			cfg.Comments.OutputPath = *commentOutput
		case "comment-link-base":
			cfg.Comments.LinkBase = *commentLinkBase
		case "comment-legacy-base":
			cfg.Comments.LegacyBase = *commentLegacyBase
		case "comment-timezone":
			cfg.Comments.Timezone = *commentTimezone
		case "enable-lightbox-migration":
			cfg.Markup.LightboxMigration = *lightbox
		case "enable-code-restructuring":
			cfg.Markup.CodeRestructuring = *codeBlocks
		case "enable-orphan-preview-wrap":
			cfg.Markup.OrphanPreviewWrap = *orphanPreviews
		case "report-redirects":
			cfg.Posts.ReportRedirects = *reportRedirects
		case "report-gallery-links":
			cfg.Markup.GalleryReport = *reportGallery
		case "enable-object-paragraph-fix":
			cfg.Markup.ObjectParagraphFix = *objectParagraphs
		case "dry-run":
			cfg.DryRun = *dryRun
		case "diff-report":
			cfg.Report.DiffPath = *diffReport
		case "diff-context":
			cfg.Report.DiffContext = *diffContext
		case "log-level":
			cfg.Logging.Level = *logLevel
		case "log-format":
			cfg.Logging.Format = *logFormat
		case "log-provider":
			cfg.Logging.Provider = *logProvider
		case "timeout":
			cfg.Timeout = *timeout
		}
	})

	module, err := moduleBuilder(cfg)
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}

	started := time.Now()
	result, err := module.PreprocessFiles(context.Background(), fs.Arg(0), fs.Arg(1))
	if err != nil {
		return fmt.Errorf("%w: preprocess %s: %w", errRunFailed, fs.Arg(0), err)
	}
	printSummary(out, result, time.Since(started))
	return nil
}

func printSummary(out io.Writer, result postmigrate.Result, elapsed time.Duration) {
	fmt.Fprintf(out, "rows processed:     %d\n", result.Rows)
	fmt.Fprintf(out, "teasers cleared:    %d\n", result.TeasersCleared)
	fmt.Fprintf(out, "link errors:        %d\n", result.LinkErrors)
	fmt.Fprintf(out, "slugs repaired:     %d\n", result.SlugsRepaired)
	fmt.Fprintf(out, "slugs uniquified:   %d\n", result.SlugsUniquified)
	if result.Redirects > 0 {
		fmt.Fprintf(out, "redirects:          %d\n", result.Redirects)
	}
	if result.InvalidSlugs > 0 {
		fmt.Fprintf(out, "invalid slugs:      %d\n", result.InvalidSlugs)
	}
	for _, rule := range slices.Sorted(maps.Keys(result.Markup)) {
		fmt.Fprintf(out, "markup %s: %d\n", strings.ReplaceAll(rule, "_", " "), result.Markup[rule])
	}
	fmt.Fprintf(out, "comment links:      %d\n", result.CommentLinks)
	if result.Written {
		fmt.Fprintf(out, "completed in %s\n", elapsed.Round(time.Millisecond))
		return
	}
	fmt.Fprintf(out, "dry run: nothing written (%d changes) in %s\n", result.DiffChanges, elapsed.Round(time.Millisecond))
}
