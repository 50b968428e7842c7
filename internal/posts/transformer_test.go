package posts

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-postmigrate/internal/columns"
	"github.com/goliatone/go-postmigrate/internal/markup"
	"github.com/goliatone/go-postmigrate/internal/slugs"
	"github.com/goliatone/go-postmigrate/pkg/interfaces"
)

var header = []string{"nid", "title", "content", "teaser", "link", "categories", "created"}

func mustIndex(t *testing.T) columns.Index {
	t.Helper()
	index, err := columns.Resolve(header, columns.Required, nil)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	return index
}

type stubRewriter struct {
	calls []string
	err   error
}

func (s *stubRewriter) Rewrite(fragment, title string) (string, markup.Report, error) {
	s.calls = append(s.calls, fragment)
	if s.err != nil {
		return "", nil, s.err
	}
	return "<!-- " + title + " -->" + fragment, markup.Report{{Rule: markup.RuleLightbox, Count: 1}}, nil
}

type stubRecorder struct {
	recorded map[string]string
	err      error
}

func (s *stubRecorder) Record(id, created string) error {
	if s.err != nil {
		return s.err
	}
	if s.recorded == nil {
		s.recorded = map[string]string{}
	}
	s.recorded[id] = created
	return nil
}

type entry struct {
	level string
	msg   string
}

type captureLogger struct {
	entries *[]entry
}

func newCaptureLogger() (*captureLogger, *[]entry) {
	entries := &[]entry{}
	return &captureLogger{entries: entries}, entries
}

func (l *captureLogger) record(level, msg string) {
	*l.entries = append(*l.entries, entry{level: level, msg: msg})
}

func (l *captureLogger) Trace(msg string, _ ...any) { l.record("trace", msg) }
func (l *captureLogger) Debug(msg string, _ ...any) { l.record("debug", msg) }
func (l *captureLogger) Info(msg string, _ ...any) { l.record("info", msg) }
func (l *captureLogger) Warn(msg string, _ ...any) { l.record("warn", msg) }
func (l *captureLogger) Error(msg string, _ ...any) { l.record("error", msg) }
func (l *captureLogger) Fatal(msg string, _ ...any) { l.record("fatal", msg) }
func (l *captureLogger) WithFields(map[string]any) interfaces.Logger { return l }
func (l *captureLogger) WithContext(context.Context) interfaces.Logger { return l }

func hasEntry(entries []entry, level, msg string) bool {
	for _, e := range entries {
		if e.level == level && e.msg == msg {
			return true
		}
	}
	return false
}

func TestTransformScenarioRow(t *testing.T) {
	post := NewPost(1, []string{"1", "Hi", "<p>x</p>", "<p>x</p>", `<a href="/node/1">n</a>`, "Foo, Bar", "2020-01-02"}, mustIndex(t))
	logger, entries := newCaptureLogger()

	out := NewTransformer(Options{}, WithLogger(logger)).Transform(context.Background(), post)

	if post.Teaser() != "" || !out.TeaserCleared {
		t.Fatalf("expected teaser cleared, got %q", post.Teaser())
	}
	if post.Link() != "id-1" || out.Repair != slugs.RepairPrefixed {
		t.Fatalf("expected link id-1 via prefix, got %q (%s)", post.Link(), out.Repair)
	}
	if post.Categories() != "Foo|Bar" {
		t.Fatalf("expected categories Foo|Bar, got %q", post.Categories())
	}
	if post.Content() != "<p>x</p>" {
		t.Fatalf("expected content untouched without rewriter, got %q", post.Content())
	}
	if !hasEntry(*entries, "info", "posts.teaser.cleared") || !hasEntry(*entries, "info", "posts.slug.repaired") {
		t.Fatalf("expected teaser and slug diagnostics, got %+v", *entries)
	}
}

func TestTransformTransliteratesShortSlug(t *testing.T) {
	post := NewPost(3, []string{"12", "Привет, мир!", "", "", `<a href="/news/2010/01/02/p">p</a>`, "Ok, Bar", ""}, mustIndex(t))

	out := NewTransformer(Options{}).Transform(context.Background(), post)

	if post.Link() != "privet-mir" || out.Repair != slugs.RepairTransliterated {
		t.Fatalf("expected transliterated slug, got %q (%s)", post.Link(), out.Repair)
	}
	if post.Categories() != "Ok-tag|Bar" || out.TagsSuffixed != 1 {
		t.Fatalf("expected Ok-tag|Bar, got %q (%d)", post.Categories(), out.TagsSuffixed)
	}
	if out.TeaserCleared {
		t.Fatal("empty teaser must not count as cleared")
	}
}

func TestTransformKeepsUnparsableLink(t *testing.T) {
	post := NewPost(2, []string{"4", "Title", "body", "tease", "no link here", "Go, Qt", "2011-01-01"}, mustIndex(t))
	logger, entries := newCaptureLogger()

	out := NewTransformer(Options{}, WithLogger(logger)).Transform(context.Background(), post)

	if !errors.Is(out.LinkErr, slugs.ErrLinkParse) {
		t.Fatalf("expected link parse error, got %v", out.LinkErr)
	}
	if post.Link() != "no link here" {
		t.Fatalf("expected link unchanged, got %q", post.Link())
	}
	if post.Categories() != "Go-tag|Qt-tag" {
		t.Fatalf("expected remaining steps to run, got categories %q", post.Categories())
	}
	if !hasEntry(*entries, "error", "posts.link.unparsed") {
		t.Fatalf("expected error diagnostic, got %+v", *entries)
	}
}

func TestTransformReportsRedirects(t *testing.T) {
	cases := []struct {
		link     string
		redirect bool
	}{
		{link: `<a href="/news/2010/05/07/release">x</a>`, redirect: false},
		{link: `<a href="http://graker.ru/news/2010/05/07/release">x</a>`, redirect: false},
		{link: `<a href="/content/about-me">x</a>`, redirect: true},
	}
	for _, tc := range cases {
		post := NewPost(1, []string{"1", "T", "", "", tc.link, "", ""}, mustIndex(t))
		out := NewTransformer(Options{ReportRedirects: true}).Transform(context.Background(), post)
		if out.Redirect != tc.redirect {
			t.Fatalf("link %s: redirect = %v, want %v", tc.link, out.Redirect, tc.redirect)
		}
	}

	post := NewPost(1, []string{"1", "T", "", "", `<a href="/content/about-me">x</a>`, "", ""}, mustIndex(t))
	if out := NewTransformer(Options{}).Transform(context.Background(), post); out.Redirect {
		t.Fatal("redirects must not be reported when disabled")
	}
}

func TestTransformRewritesNonEmptyMarkup(t *testing.T) {
	rewriter := &stubRewriter{}
	post := NewPost(1, []string{"1", "Post", "<p>body</p>", "", `<a href="/news/post">x</a>`, "", ""}, mustIndex(t))

	out := NewTransformer(Options{}, WithMarkupRewriter(rewriter)).Transform(context.Background(), post)

	if len(rewriter.calls) != 1 || rewriter.calls[0] != "<p>body</p>" {
		t.Fatalf("expected only content rewritten, got calls %v", rewriter.calls)
	}
	if post.Content() != "<!-- Post --><p>body</p>" {
		t.Fatalf("unexpected content %q", post.Content())
	}
	if out.Markup.Count(markup.RuleLightbox) != 1 {
		t.Fatalf("expected markup report to be carried, got %+v", out.Markup)
	}
}

func TestTransformMarkupFailureKeepsField(t *testing.T) {
	rewriter := &stubRewriter{err: errors.New("render failed")}
	post := NewPost(1, []string{"1", "Post", "<p>body</p>", "<p>short</p>", `<a href="/news/post">x</a>`, "", ""}, mustIndex(t))

	out := NewTransformer(Options{}, WithMarkupRewriter(rewriter)).Transform(context.Background(), post)

	if out.MarkupErr == nil || len(rewriter.calls) != 2 {
		t.Fatalf("expected both fields attempted and an error, got %v / %v", out.MarkupErr, rewriter.calls)
	}
	if post.Content() != "<p>body</p>" || post.Teaser() != "<p>short</p>" {
		t.Fatalf("expected fields untouched, got %q / %q", post.Content(), post.Teaser())
	}
}

func TestTransformRecordsCreatedDates(t *testing.T) {
	recorder := &stubRecorder{}
	post := NewPost(1, []string{"8", "Post", "", "", `<a href="/news/post">x</a>`, "", "2020-01-02"}, mustIndex(t))

	out := NewTransformer(Options{}, WithDateRecorder(recorder)).Transform(context.Background(), post)
	if out.CreatedErr != nil || recorder.recorded["8"] != "2020-01-02" {
		t.Fatalf("expected created date recorded, got %v / %v", out.CreatedErr, recorder.recorded)
	}

	failing := &stubRecorder{err: errors.New("bad date")}
	out = NewTransformer(Options{}, WithDateRecorder(failing)).Transform(context.Background(), post)
	if out.CreatedErr == nil {
		t.Fatal("expected created error to be reported")
	}
}

func TestNewPostPadsShortRows(t *testing.T) {
	post := NewPost(5, []string{"1", "Title"}, mustIndex(t))

	if post.Padded() != 5 || len(post.Cells()) != len(header) {
		t.Fatalf("expected row padded to %d cells, got %d (%d padded)", len(header), len(post.Cells()), post.Padded())
	}
	if post.Created() != "" {
		t.Fatalf("expected empty padded cell, got %q", post.Created())
	}
}

func TestBatchUniquifiesByID(t *testing.T) {
	index := mustIndex(t)
	batch := Batch{
		NewPost(1, []string{"5", "First", "", "", "foo", "", ""}, index),
		NewPost(2, []string{"9", "Second", "", "", "foo", "", ""}, index),
		NewPost(3, []string{"7", "Third", "", "", "bar", "", ""}, index),
	}

	changes := slugs.NewUniquifier(nil).Uniquify(batch)

	if len(changes) != 1 || changes[0].To != "foo-1" {
		t.Fatalf("expected exactly one rename to foo-1, got %+v", changes)
	}
	got := batch.Slugs()
	if got["5"] == got["9"] {
		t.Fatalf("distinct ids share slug %q", got["5"])
	}
	if got["7"] != "bar" {
		t.Fatalf("expected unrelated slug untouched, got %q", got["7"])
	}
	if rows := batch.Rows(); len(rows) != 3 || rows[2][4] != "bar" {
		t.Fatalf("unexpected rows %v", rows)
	}
}

func TestTransformLogsEmptyCategories(t *testing.T) {
	cases := []struct {
		name       string
		categories string
		want       string
		logged     bool
	}{
		{name: "empty field", categories: "", want: "", logged: true},
		{name: "empty token", categories: "Foo||Bar", want: "Foo||Bar", logged: true},
		{name: "no empty token", categories: "Foo, Bar", want: "Foo|Bar"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			post := NewPost(1, []string{"7", "Title", "", "", `<a href="/news/2020/01/02/title">t</a>`, tc.categories, "2020-01-02"}, mustIndex(t))
			logger, entries := newCaptureLogger()

			NewTransformer(Options{}, WithLogger(logger)).Transform(context.Background(), post)

			if post.Categories() != tc.want {
				t.Fatalf("expected categories %q, got %q", tc.want, post.Categories())
			}
			if got := hasEntry(*entries, "debug", "posts.categories.empty"); got != tc.logged {
				t.Fatalf("expected empty categories logged=%v, got %+v", tc.logged, *entries)
			}
		})
	}
}

func TestEmptyCategories(t *testing.T) {
	cases := map[string]int{
		"":         1,
		"Foo":      0,
		"Foo||Bar": 1,
		"|Foo|":    2,
	}
	for in, want := range cases {
		if got := EmptyCategories(in); got != want {
			t.Fatalf("EmptyCategories(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestNormalizeCategories(t *testing.T) {
	cases := []struct {
		in       string
		want     string
		suffixed int
	}{
		{in: "Foo, Bar", want: "Foo|Bar"},
		{in: "Ok, Bar", want: "Ok-tag|Bar", suffixed: 1},
		{in: "Qt", want: "Qt-tag", suffixed: 1},
		{in: "Яд, Мир", want: "Яд-tag|Мир", suffixed: 1},
		{in: "Go|C, Linux", want: "Go-tag|C-tag|Linux", suffixed: 2},
		{in: "", want: ""},
	}
	for _, tc := range cases {
		got, suffixed := NormalizeCategories(tc.in)
		if got != tc.want || suffixed != tc.suffixed {
			t.Fatalf("NormalizeCategories(%q) = %q (%d), want %q (%d)", tc.in, got, suffixed, tc.want, tc.suffixed)
		}
	}
}
