package posts

import (
	"context"

	"github.com/goliatone/go-postmigrate/internal/columns"
	"github.com/goliatone/go-postmigrate/internal/logging"
	"github.com/goliatone/go-postmigrate/internal/markup"
	"github.com/goliatone/go-postmigrate/internal/slugs"
	"github.com/goliatone/go-postmigrate/pkg/interfaces"
)

// DefaultNewsPrefix is the path legacy news posts were published under.
const DefaultNewsPrefix = "/news/"

// MarkupRewriter rewrites a markup fragment of the post titled title.
type MarkupRewriter interface {
	Rewrite(fragment, title string) (string, markup.Report, error)
}

// DateRecorder keeps the created value of a post for comment link rewriting.
type DateRecorder interface {
	Record(id, created string) error
}

// Options toggles the optional row diagnostics.
type Options struct {
	// ReportRedirects warns about links outside NewsPrefix.
	ReportRedirects bool
	NewsPrefix      string
}

// Outcome summarises what Transform did to one post.
type Outcome struct {
	TeaserCleared bool
	LinkErr       error
	Redirect      bool
	Repair        slugs.Repair
	TagsSuffixed  int
	Markup        markup.Report
	MarkupErr     error
	CreatedErr    error
}

// TransformerOption configures a Transformer.
type TransformerOption func(*Transformer)

// WithMarkupRewriter sets the engine run over content and teaser fields.
func WithMarkupRewriter(rewriter MarkupRewriter) TransformerOption {
	return func(t *Transformer) {
		t.markup = rewriter
	}
}

// WithDateRecorder enables comment link bookkeeping.
func WithDateRecorder(recorder DateRecorder) TransformerOption {
	return func(t *Transformer) {
		t.dates = recorder
	}
}

// WithLogger sets the logger for row diagnostics.
func WithLogger(logger interfaces.Logger) TransformerOption {
	return func(t *Transformer) {
		t.logger = logging.EnsureLogger(logger)
	}
}

// Transformer applies the per-row field rules.
type Transformer struct {
	opts   Options
	markup MarkupRewriter
	dates  DateRecorder
	logger interfaces.Logger
}

// NewTransformer builds a Transformer. Without a markup rewriter content and
// teaser fields are left as they are.
func NewTransformer(opts Options, options ...TransformerOption) *Transformer {
	if opts.NewsPrefix == "" {
		opts.NewsPrefix = DefaultNewsPrefix
	}
	t := &Transformer{opts: opts, logger: logging.NoOp()}
	for _, option := range options {
		if option != nil {
			option(t)
		}
	}
	return t
}

// Transform rewrites post in place: teaser dedup, slug extraction and length
// repair, category normalisation, markup rewrite and date bookkeeping, in
// that order. Problems are logged and reported in the Outcome; every step
// runs regardless of earlier failures.
func (t *Transformer) Transform(ctx context.Context, post *Post) Outcome {
	logger := logging.WithPostContext(t.logger.WithContext(ctx), post.Row, post.ID(), post.Title())
	var out Outcome

	if post.Teaser() != "" && post.Teaser() == post.Content() {
		post.SetField(columns.Teaser, "")
		out.TeaserCleared = true
		logger.Info("posts.teaser.cleared")
	}

	t.rewriteLink(post, logger, &out)

	categories, suffixed := NormalizeCategories(post.Categories())
	if categories != post.Categories() {
		post.SetField(columns.Categories, categories)
		out.TagsSuffixed = suffixed
		if suffixed > 0 {
			logger.Debug("posts.categories.suffixed", "categories", categories, "suffixed", suffixed)
		}
	}
	if empty := EmptyCategories(categories); empty > 0 {
		logger.Debug("posts.categories.empty", "categories", categories, "empty", empty)
	}

	if t.markup != nil {
		for _, field := range []string{columns.Content, columns.Teaser} {
			t.rewriteMarkup(post, field, logger, &out)
		}
	}

	if t.dates != nil {
		if err := t.dates.Record(post.ID(), post.Created()); err != nil {
			out.CreatedErr = err
			logger.Warn("posts.created.unparsed", "created", post.Created(), "error", err)
		}
	}
	return out
}

func (t *Transformer) rewriteLink(post *Post, logger interfaces.Logger, out *Outcome) {
	link, err := slugs.Extract(post.Link())
	if err != nil {
		out.LinkErr = err
		logger.Error("posts.link.unparsed", "link", post.Link(), "error", err)
		return
	}

	if t.opts.ReportRedirects && !slugs.UnderPrefix(link.Href, t.opts.NewsPrefix) {
		out.Redirect = true
		logger.Warn("posts.link.redirect", "href", link.Href)
	}

	slug, repair := slugs.FitLength(link.Candidate, post.Title())
	out.Repair = repair
	if repair != slugs.RepairNone {
		logger.Info("posts.slug.repaired", "from", link.Candidate, "to", slug, "repair", repair.String())
	}
	post.SetField(columns.Link, slug)
}

func (t *Transformer) rewriteMarkup(post *Post, field string, logger interfaces.Logger, out *Outcome) {
	fragment := post.Field(field)
	if fragment == "" {
		return
	}
	rewritten, report, err := t.markup.Rewrite(fragment, post.Title())
	out.Markup = append(out.Markup, report...)
	if err != nil {
		if out.MarkupErr == nil {
			out.MarkupErr = err
		}
		logger.Error("posts.markup.failed", "field", field, "error", err)
		return
	}
	post.SetField(field, rewritten)
}
