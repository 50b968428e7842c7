// Package pipeline drives a migration run: column discovery, the per-row
// transform phase, the batch-wide slug pass, comment link rewriting and the
// final writes.
package pipeline

import (
	"context"
	"errors"
	"maps"
	"slices"
	"time"

	"github.com/goliatone/go-postmigrate/internal/columns"
	"github.com/goliatone/go-postmigrate/internal/comments"
	"github.com/goliatone/go-postmigrate/internal/diff"
	"github.com/goliatone/go-postmigrate/internal/logging"
	"github.com/goliatone/go-postmigrate/internal/posts"
	"github.com/goliatone/go-postmigrate/internal/slugs"
	"github.com/goliatone/go-postmigrate/pkg/interfaces"
)

// CommentDocumentName labels the comment export in diff reports.
const CommentDocumentName = "comments"

// ErrSourceRequired is returned when a job has no record source or sink.
var ErrSourceRequired = errors.New("pipeline: record source and sink are required")

// Job names the collaborators of one run.
type Job struct {
	Source interfaces.RecordSource
	Sink   interfaces.RecordSink
	// Comments enables comment link rewriting when set.
	Comments interfaces.TextStore
	// Report receives the unified diff of every rewritten field when set.
	Report interfaces.TextStore
	// DryRun runs every phase but skips writing Sink and Comments.
	DryRun bool
}

// Options configures the phases of a run.
type Options struct {
	Posts posts.Options
	// CommentLegacyBase prefixes legacy permalinks, e.g. http://example.com.
	CommentLegacyBase string
	// CommentLinkBase prefixes rewritten permalinks.
	CommentLinkBase string
	// Location resolves created dates; UTC when nil.
	Location    *time.Location
	DiffContext int
}

// Result counts what a run did.
type Result struct {
	Rows            int
	PaddedRows      int
	TeasersCleared  int
	LinkErrors      int
	Redirects       int
	SlugsRepaired   int
	SlugsUniquified int
	InvalidSlugs    int
	TagsSuffixed    int
	MarkupErrors    int
	CreatedErrors   int
	// Markup sums the count of every markup rule over all fragments.
	Markup       map[string]int
	CommentLinks int
	DiffChanges  int
	Written      bool
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithMarkupRewriter sets the markup engine run over content and teasers.
func WithMarkupRewriter(rewriter posts.MarkupRewriter) ServiceOption {
	return func(s *Service) {
		s.markup = rewriter
	}
}

// WithLoggerProvider derives the stage loggers from provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) ServiceOption {
	return func(s *Service) {
		s.provider = provider
	}
}

// Service runs migration jobs. It holds no per-run state.
type Service struct {
	opts     Options
	markup   posts.MarkupRewriter
	provider interfaces.LoggerProvider
}

// NewService builds a Service.
func NewService(opts Options, options ...ServiceOption) *Service {
	if opts.Posts.NewsPrefix == "" {
		opts.Posts.NewsPrefix = posts.DefaultNewsPrefix
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	s := &Service{opts: opts}
	for _, option := range options {
		if option != nil {
			option(s)
		}
	}
	return s
}

// Run executes job. Unreadable input, a missing required column or an
// unreadable comment export stop the run before any row is transformed;
// write failures are returned after the transform. Fatal errors are only
// logged at debug level here; the command layer reports them once. Per-row
// problems are logged and counted only.
func (s *Service) Run(ctx context.Context, job Job) (Result, error) {
	if job.Source == nil || job.Sink == nil {
		return Result{}, ErrSourceRequired
	}
	logger := logging.PipelineLogger(s.provider).WithContext(ctx)
	result := Result{Markup: map[string]int{}}

	records, err := job.Source.ReadRecords(ctx)
	if err != nil {
		logger.Debug("pipeline.input.unreadable", "error", err)
		return result, err
	}
	var header []string
	if len(records) > 0 {
		header = records[0]
	}
	index, err := columns.Resolve(header, columns.Required, logging.ColumnsLogger(s.provider).WithContext(ctx))
	if err != nil {
		return result, err
	}

	var commentText string
	var ledger *comments.Ledger
	if job.Comments != nil {
		if commentText, err = job.Comments.ReadText(ctx); err != nil {
			logger.Debug("pipeline.comments.unreadable", "error", err)
			return result, err
		}
		ledger = comments.NewLedger(s.opts.Location)
	}

	batch, before, failed, err := s.transform(ctx, records[1:], index, ledger, &result)
	if err != nil {
		return result, err
	}

	changes := slugs.NewUniquifier(logging.SlugsLogger(s.provider).WithContext(ctx)).Uniquify(batch)
	result.SlugsUniquified = len(changes)

	final := make(map[string]string, len(batch))
	for i, post := range batch {
		if failed[i] {
			continue
		}
		if !slugs.Acceptable(post.Link()) {
			result.InvalidSlugs++
			logging.WithPostContext(logger, post.Row, post.ID(), post.Title()).
				Warn("pipeline.slug.invalid", "slug", post.Link())
		}
		final[post.ID()] = post.Link()
	}

	rewrittenComments := commentText
	if ledger != nil {
		rewriter := comments.NewRewriter(s.opts.CommentLegacyBase, s.opts.CommentLinkBase, logging.CommentsLogger(s.provider).WithContext(ctx))
		rewrittenComments, result.CommentLinks = rewriter.Rewrite(commentText, ledger.Paths(s.opts.Posts.NewsPrefix, final))
	}

	if job.Report != nil {
		recorder := diff.NewRecorder()
		for i, post := range batch {
			recorder.CompareRow(post.Row, post.ID(), header, before[i], post.Cells())
		}
		if job.Comments != nil {
			recorder.CompareText(CommentDocumentName, commentText, rewrittenComments)
		}
		result.DiffChanges = recorder.Len()
		report, err := recorder.Report(s.opts.DiffContext)
		if err != nil {
			return result, err
		}
		if err := job.Report.WriteText(ctx, report); err != nil {
			logger.Debug("pipeline.report.unwritable", "error", err)
			return result, err
		}
	}

	if job.DryRun {
		logger.Info("pipeline.dry_run", "rows", result.Rows, "diff_changes", result.DiffChanges)
		s.summarize(logger, result)
		return result, nil
	}

	if err := job.Sink.WriteRecords(ctx, header, batch.Rows()); err != nil {
		logger.Debug("pipeline.output.unwritable", "error", err)
		return result, err
	}
	if job.Comments != nil {
		if err := job.Comments.WriteText(ctx, rewrittenComments); err != nil {
			logger.Debug("pipeline.comments.unwritable", "error", err)
			return result, err
		}
	}
	result.Written = true
	s.summarize(logger, result)
	return result, nil
}

// transform runs the per-row phase. It returns the posts, a copy of every
// row as read and which rows had an unparsable link.
func (s *Service) transform(ctx context.Context, rows [][]string, index columns.Index, ledger *comments.Ledger, result *Result) (posts.Batch, [][]string, []bool, error) {
	logger := logging.PipelineLogger(s.provider).WithContext(ctx)
	options := []posts.TransformerOption{
		posts.WithLogger(logging.PostsLogger(s.provider)),
	}
	if s.markup != nil {
		options = append(options, posts.WithMarkupRewriter(s.markup))
	}
	if ledger != nil {
		options = append(options, posts.WithDateRecorder(ledger))
	}
	transformer := posts.NewTransformer(s.opts.Posts, options...)

	batch := make(posts.Batch, 0, len(rows))
	before := make([][]string, 0, len(rows))
	failed := make([]bool, 0, len(rows))
	for i, cells := range rows {
		if err := ctx.Err(); err != nil {
			return nil, nil, nil, err
		}
		before = append(before, slices.Clone(cells))
		post := posts.NewPost(i+1, cells, index)
		if post.Padded() > 0 {
			result.PaddedRows++
			logger.Warn("pipeline.row.padded", "row", post.Row, "missing_cells", post.Padded())
		}

		out := transformer.Transform(ctx, post)
		result.Rows++
		if out.TeaserCleared {
			result.TeasersCleared++
		}
		if out.LinkErr != nil {
			result.LinkErrors++
		}
		if out.Redirect {
			result.Redirects++
		}
		if out.Repair != slugs.RepairNone {
			result.SlugsRepaired++
		}
		result.TagsSuffixed += out.TagsSuffixed
		if out.MarkupErr != nil {
			result.MarkupErrors++
		}
		if out.CreatedErr != nil {
			result.CreatedErrors++
		}
		for _, outcome := range out.Markup {
			result.Markup[outcome.Rule] += outcome.Count
		}

		batch = append(batch, post)
		failed = append(failed, out.LinkErr != nil)
	}
	return batch, before, failed, nil
}

func (s *Service) summarize(logger interfaces.Logger, result Result) {
	args := []any{
		"rows", result.Rows,
		"teasers_cleared", result.TeasersCleared,
		"link_errors", result.LinkErrors,
		"redirects", result.Redirects,
		"slugs_repaired", result.SlugsRepaired,
		"slugs_uniquified", result.SlugsUniquified,
		"invalid_slugs", result.InvalidSlugs,
		"comment_links", result.CommentLinks,
		"written", result.Written,
	}
	for _, rule := range slices.Sorted(maps.Keys(result.Markup)) {
		args = append(args, "markup_"+rule, result.Markup[rule])
	}
	logger.Info("pipeline.completed", args...)
}
