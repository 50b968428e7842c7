package markup

import (
	"slices"
	"strings"
	"testing"
)

func allRules() Options {
	opts := DefaultOptions()
	opts.ExternalDomain = "graker.ru"
	opts.FilesBasePath = "/storage/old"
	opts.LightboxMigration = true
	opts.OrphanPreviewWrap = true
	opts.CodeRestructuring = true
	opts.GalleryReport = true
	opts.ObjectParagraphFix = true
	return opts
}

func rewrite(t *testing.T, opts Options, fragment string) (string, Report) {
	t.Helper()
	out, report, err := NewEngine(opts, nil).Rewrite(fragment, "Test post")
	if err != nil {
		t.Fatalf("Rewrite returned error: %v", err)
	}
	return out, report
}

func TestRulesRunInDeclaredOrder(t *testing.T) {
	want := []string{
		RuleExternalLinks,
		RuleFilePaths,
		RuleLightbox,
		RuleOrphanPreviews,
		RuleCodeBlocks,
		RuleGalleryLinks,
		RuleObjectParagraphs,
	}
	if got := Rules(); !slices.Equal(got, want) {
		t.Fatalf("Rules() = %v, want %v", got, want)
	}
	if got := NewEngine(allRules(), nil).Enabled(); !slices.Equal(got, want) {
		t.Fatalf("Enabled() = %v, want %v", got, want)
	}
}

func TestEngineEnablesOnlyConfiguredRules(t *testing.T) {
	opts := DefaultOptions()
	opts.FilesBasePath = "/storage/old"
	opts.ObjectParagraphFix = true

	got := NewEngine(opts, nil).Enabled()
	want := []string{RuleFilePaths, RuleObjectParagraphs}
	if !slices.Equal(got, want) {
		t.Fatalf("Enabled() = %v, want %v", got, want)
	}
}

func TestRewriteWithoutRulesReturnsFragment(t *testing.T) {
	fragment := "<p>untouched &amp; <b>bold"
	out, report, err := NewEngine(DefaultOptions(), nil).Rewrite(fragment, "t")
	if err != nil || out != fragment || report != nil {
		t.Fatalf("expected verbatim fragment, got %q %v %v", out, report, err)
	}
}

func TestExternalLinksBecomeRootRelative(t *testing.T) {
	opts := DefaultOptions()
	opts.ExternalDomain = "graker.ru"

	out, report := rewrite(t, opts, `<p><a href="http://graker.ru/news/2010/x">x</a> <img src="http://graker.ru/pic.png"> <a href="http://other.org/">o</a></p>`)

	want := `<p><a href="/news/2010/x">x</a> <img src="/pic.png"/> <a href="http://other.org/">o</a></p>`
	if out != want {
		t.Fatalf("unexpected output\nwant: %s\ngot:  %s", want, out)
	}
	if report.Count(RuleExternalLinks) != 2 {
		t.Fatalf("expected 2 rewritten targets, got %d", report.Count(RuleExternalLinks))
	}
}

func TestFilePathsFollowExternalLinkRewrite(t *testing.T) {
	opts := DefaultOptions()
	opts.ExternalDomain = "graker.ru"
	opts.FilesBasePath = "/storage/app/media/old"

	out, _ := rewrite(t, opts, `<a href="http://graker.ru/sites/default/files/doc.pdf">doc</a><img src="/sites/default/files/a.png">`)

	want := `<a href="/storage/app/media/old/doc.pdf">doc</a><img src="/storage/app/media/old/a.png"/>`
	if out != want {
		t.Fatalf("unexpected output\nwant: %s\ngot:  %s", want, out)
	}
}

func TestLightboxBecomesOverlayClass(t *testing.T) {
	opts := DefaultOptions()
	opts.LightboxMigration = true

	out, report := rewrite(t, opts, `Hello <a href="/x.jpg" rel="lightbox">x</a> <a href="/y.jpg" rel="lightbox[trip]" class="photo">y</a> <a href="/z" rel="nofollow">z</a> world`)

	want := `Hello <a href="/x.jpg" class="magnific">x</a> <a href="/y.jpg" class="photo magnific">y</a> <a href="/z" rel="nofollow">z</a> world`
	if out != want {
		t.Fatalf("unexpected output\nwant: %s\ngot:  %s", want, out)
	}
	if report.Count(RuleLightbox) != 2 {
		t.Fatalf("expected 2 migrated links, got %d", report.Count(RuleLightbox))
	}
	if strings.Contains(out, wrapperID) {
		t.Fatalf("wrapper leaked into output: %s", out)
	}
}

func TestOrphanPreviewsAreWrapped(t *testing.T) {
	opts := DefaultOptions()
	opts.OrphanPreviewWrap = true

	out, report := rewrite(t, opts, `<p>a<img src="/f/pic.preview.jpg">b</p><a href="/f/other.jpg"><img src="/f/other.preview.jpg"></a><img src="/f/plain.jpg">`)

	want := `<p>a<a class="magnific" href="/f/pic.jpg"><img src="/f/pic.preview.jpg"/></a>b</p><a href="/f/other.jpg"><img src="/f/other.preview.jpg"/></a><img src="/f/plain.jpg"/>`
	if out != want {
		t.Fatalf("unexpected output\nwant: %s\ngot:  %s", want, out)
	}
	if report.Count(RuleOrphanPreviews) != 1 {
		t.Fatalf("expected one wrapped preview, got %d", report.Count(RuleOrphanPreviews))
	}
}

func TestCodeBlocksAreLiftedAndPrettified(t *testing.T) {
	opts := DefaultOptions()
	opts.CodeRestructuring = true

	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "legacy tag in paragraph",
			in:   `<p>Intro<cpp>int x;<br>int y;</cpp></p>`,
			want: `<p>Intro</p><pre class="prettyprint lang-cpp"><code>int x;int y;</code></pre>`,
		},
		{
			name: "canonical tag at top level",
			in:   `<code>ls</code>`,
			want: `<pre class="prettyprint"><code>ls</code></pre>`,
		},
		{
			name: "existing pre gets classes",
			in:   `<pre><code>x</code></pre>`,
			want: `<pre class="prettyprint"><code>x</code></pre>`,
		},
		{
			name: "siblings keep their order",
			in:   `<p><code>a</code> and <code>b</code></p>`,
			want: `<p> and </p><pre class="prettyprint"><code>a</code></pre><pre class="prettyprint"><code>b</code></pre>`,
		},
		{
			name: "tag types follow declared order",
			in:   `<p><bash>b</bash><code>a</code></p>`,
			want: `<p></p><pre class="prettyprint"><code>a</code></pre><pre class="prettyprint lang-bsh"><code>b</code></pre>`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, report := rewrite(t, opts, tc.in)
			if out != tc.want {
				t.Fatalf("unexpected output\nwant: %s\ngot:  %s", tc.want, out)
			}
			if report.Count(RuleCodeBlocks) == 0 {
				t.Fatal("expected code block rule to report work")
			}
		})
	}
}

func TestGalleryLinksAreOnlyReported(t *testing.T) {
	opts := DefaultOptions()
	opts.GalleryReport = true

	fragment := `<p><a href="/image/image_galleries/12">gallery</a></p>`
	out, report := rewrite(t, opts, fragment)

	if out != fragment {
		t.Fatalf("expected fragment untouched, got %s", out)
	}
	if report.Count(RuleGalleryLinks) != 1 || report.Changed() {
		t.Fatalf("expected one flagged link without changes, got %+v", report)
	}
}

func TestObjectParagraphBecomesCenteredDiv(t *testing.T) {
	opts := DefaultOptions()
	opts.ObjectParagraphFix = true

	out, report := rewrite(t, opts, `<p align="center"><object data="movie.swf"></object></p><p><object data="b.swf"></object></p>`)

	want := `<div class="text-center"><object data="movie.swf"></object></div><div><object data="b.swf"></object></div>`
	if out != want {
		t.Fatalf("unexpected output\nwant: %s\ngot:  %s", want, out)
	}
	if report.Count(RuleObjectParagraphs) != 2 {
		t.Fatalf("expected two fixed paragraphs, got %d", report.Count(RuleObjectParagraphs))
	}
}

func TestCenteredObjectMovesAlignmentToContainer(t *testing.T) {
	opts := DefaultOptions()
	opts.ObjectParagraphFix = true

	out, _ := rewrite(t, opts, `<p><object align="center" data="movie.swf"></object></p>`)

	want := `<div class="text-center"><object data="movie.swf"></object></div>`
	if out != want {
		t.Fatalf("unexpected output\nwant: %s\ngot:  %s", want, out)
	}
}

func TestMalformedMarkupIsTolerated(t *testing.T) {
	opts := DefaultOptions()
	opts.ExternalDomain = "graker.ru"

	out, _ := rewrite(t, opts, `<p><a href="http://graker.ru/x">x</a><b>bold`)

	want := `<p><a href="/x">x</a><b>bold</b></p>`
	if out != want {
		t.Fatalf("unexpected output\nwant: %s\ngot:  %s", want, out)
	}
}

func TestRewriteIsIdempotent(t *testing.T) {
	opts := allRules()
	fragment := `<p>See <a href="http://graker.ru/news/x" rel="lightbox">post</a></p>` +
		`<p><img src="/sites/default/files/pic.preview.jpg"></p>` +
		`<p><php>echo 1;<br>echo 2;</php></p>` +
		`<p align="center"><object data="/v.swf"></object></p>`

	first, report := rewrite(t, opts, fragment)
	want := `<p>See <a href="/news/x" class="magnific">post</a></p>` +
		`<p><a class="magnific" href="/storage/old/pic.jpg"><img src="/storage/old/pic.preview.jpg"/></a></p>` +
		`<p></p><pre class="prettyprint lang-php"><code>echo 1;echo 2;</code></pre>` +
		`<div class="text-center"><object data="/v.swf"></object></div>`
	if first != want {
		t.Fatalf("unexpected first pass\nwant: %s\ngot:  %s", want, first)
	}
	if !report.Changed() {
		t.Fatal("expected first pass to report changes")
	}

	second, report := rewrite(t, opts, first)
	if second != first {
		t.Fatalf("second pass changed output\nfirst:  %s\nsecond: %s", first, second)
	}
	for _, outcome := range report {
		if outcome.Count != 0 {
			t.Fatalf("rule %s reported %d changes on canonical markup", outcome.Rule, outcome.Count)
		}
	}
}

func TestProcessingInstructionsSurviveRewrite(t *testing.T) {
	cases := []struct {
		name string
		opts func(*Options)
		in   string
		want string
	}{
		{
			name: "php listing in code tag",
			opts: func(o *Options) { o.CodeRestructuring = true },
			in:   `<php><?php echo 1; ?></php>`,
			want: `<pre class="prettyprint lang-php"><code><?php echo 1; ?></code></pre>`,
		},
		{
			name: "instruction holding a closing bracket",
			opts: func(o *Options) { o.CodeRestructuring = true },
			in:   `<p><drupal6><?php $node->title; ?></drupal6></p>`,
			want: `<p></p><pre class="prettyprint lang-php"><code><?php $node->title; ?></code></pre>`,
		},
		{
			name: "instruction next to a rewritten link",
			opts: func(o *Options) { o.ExternalDomain = "graker.ru" },
			in:   `<p><?php print $x; ?><a href="http://graker.ru/x">x</a></p>`,
			want: `<p><?php print $x; ?><a href="/x">x</a></p>`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := DefaultOptions()
			tc.opts(&opts)
			out, _ := rewrite(t, opts, tc.in)
			if out != tc.want {
				t.Fatalf("unexpected output\nwant: %s\ngot:  %s", tc.want, out)
			}
		})
	}
}

func TestTableRowsOutsideTableSurviveRewrite(t *testing.T) {
	opts := DefaultOptions()
	opts.ExternalDomain = "graker.ru"

	cases := []struct {
		in   string
		want string
	}{
		{
			in:   `<tr><td><a href="http://graker.ru/x">x</a></td></tr>`,
			want: `<tr><td><a href="/x">x</a></td></tr>`,
		},
		{
			in:   `<td><a href="http://graker.ru/x">x</a></td><td>y</td>`,
			want: `<td><a href="/x">x</a></td><td>y</td>`,
		},
	}
	for _, tc := range cases {
		out, _ := rewrite(t, opts, tc.in)
		if out != tc.want {
			t.Fatalf("unexpected output\nwant: %s\ngot:  %s", tc.want, out)
		}
	}
}
