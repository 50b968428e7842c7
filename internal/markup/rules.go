package markup

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Rule names, in execution order.
const (
	RuleExternalLinks    = "external_links"
	RuleFilePaths        = "file_paths"
	RuleLightbox         = "lightbox"
	RuleOrphanPreviews   = "orphan_previews"
	RuleCodeBlocks       = "code_blocks"
	RuleGalleryLinks     = "gallery_links"
	RuleObjectParagraphs = "object_paragraphs"
)

const (
	canonicalCode  = "code"
	prettifyClass  = "prettyprint"
	centeredClass  = "text-center"
	previewMarker  = ".preview."
	previewSuffix  = ".preview"
	lightboxMarker = "lightbox"
)

// Rule is one named transformation over a Tree. Apply returns how many
// elements it changed; for read-only rules, how many it flagged.
type Rule struct {
	Name     string
	ReadOnly bool
	Enabled  func(Options) bool
	Apply    func(*Tree, Options) int
}

// rules is the execution order. Later rules see the tree as earlier ones
// left it: file relocation matches targets already made root-relative, and
// code blocks are lifted out of paragraphs before objects are.
var rules = []Rule{
	{
		Name:    RuleExternalLinks,
		Enabled: func(o Options) bool { return strings.TrimSpace(o.ExternalDomain) != "" },
		Apply:   rewriteExternalLinks,
	},
	{
		Name:    RuleFilePaths,
		Enabled: func(o Options) bool { return o.FilesBasePath != "" && o.LegacyFilesPrefix != "" },
		Apply:   relocateFilePaths,
	},
	{
		Name:    RuleLightbox,
		Enabled: func(o Options) bool { return o.LightboxMigration },
		Apply:   migrateLightbox,
	},
	{
		Name:    RuleOrphanPreviews,
		Enabled: func(o Options) bool { return o.OrphanPreviewWrap },
		Apply:   wrapOrphanPreviews,
	},
	{
		Name:    RuleCodeBlocks,
		Enabled: func(o Options) bool { return o.CodeRestructuring && len(o.CodeTags) > 0 },
		Apply:   restructureCode,
	},
	{
		Name:     RuleGalleryLinks,
		ReadOnly: true,
		Enabled:  func(o Options) bool { return o.GalleryReport && o.GalleryMarker != "" },
		Apply:    countGalleryLinks,
	},
	{
		Name:    RuleObjectParagraphs,
		Enabled: func(o Options) bool { return o.ObjectParagraphFix },
		Apply:   liftObjects,
	},
}

// Rules returns every rule name in execution order.
func Rules() []string {
	names := make([]string, len(rules))
	for i, rule := range rules {
		names[i] = rule.Name
	}
	return names
}

type target struct {
	selector string
	attr     string
}

var targets = []target{
	{selector: "a[href]", attr: "href"},
	{selector: "img[src]", attr: "src"},
}

// rewriteTargets applies fn to every hyperlink href and image src.
func rewriteTargets(t *Tree, fn func(string) string) int {
	count := 0
	for _, tg := range targets {
		t.Each(tg.selector, func(s *goquery.Selection) {
			value, _ := s.Attr(tg.attr)
			if rewritten := fn(value); rewritten != value {
				s.SetAttr(tg.attr, rewritten)
				count++
			}
		})
	}
	return count
}

func rewriteExternalLinks(t *Tree, o Options) int {
	prefix := "http://" + strings.Trim(strings.TrimSpace(o.ExternalDomain), "/") + "/"
	return rewriteTargets(t, func(value string) string {
		if rest, ok := strings.CutPrefix(value, prefix); ok {
			return "/" + rest
		}
		return value
	})
}

func relocateFilePaths(t *Tree, o Options) int {
	return rewriteTargets(t, func(value string) string {
		if rest, ok := strings.CutPrefix(value, o.LegacyFilesPrefix); ok {
			return o.FilesBasePath + rest
		}
		return value
	})
}

func migrateLightbox(t *Tree, o Options) int {
	count := 0
	t.Each("a[rel]", func(s *goquery.Selection) {
		rel, _ := s.Attr("rel")
		rel = strings.ToLower(strings.TrimSpace(rel))
		// lightbox2 groups images as rel="lightbox[group]"
		if rel != lightboxMarker && !strings.HasPrefix(rel, lightboxMarker+"[") {
			return
		}
		s.RemoveAttr("rel")
		s.AddClass(o.OverlayClass)
		count++
	})
	return count
}

func wrapOrphanPreviews(t *Tree, o Options) int {
	count := 0
	for _, img := range t.Find("img[src]") {
		if isElement(img.Parent, "a") {
			continue
		}
		src := attr(img, "src")
		if !strings.Contains(src, previewMarker) {
			continue
		}
		link := newElement("a",
			html.Attribute{Key: "class", Val: o.OverlayClass},
			html.Attribute{Key: "href", Val: strings.ReplaceAll(src, previewSuffix, "")},
		)
		wrapNode(img, link)
		count++
	}
	return count
}

func countGalleryLinks(t *Tree, o Options) int {
	count := 0
	t.Each("a[href]", func(s *goquery.Selection) {
		if href, _ := s.Attr("href"); strings.Contains(href, o.GalleryMarker) {
			count++
		}
	})
	return count
}

// liftObjects replaces every paragraph holding an embedded object with a div,
// turning align="center" on the paragraph or the object into a class. The
// paragraph's other content moves along with the object.
func liftObjects(t *Tree, _ Options) int {
	count := 0
	for _, object := range t.Find("object") {
		paragraph := object.Parent
		if !isElement(paragraph, "p") {
			continue
		}
		block := newElement("div")
		centered := isCentered(paragraph)
		if isCentered(object) {
			removeAttr(object, "align")
			centered = true
		}
		if centered {
			setAttr(block, "class", centeredClass)
		}
		moveChildren(paragraph, block)
		replaceNode(paragraph, block)
		count++
	}
	return count
}

func isCentered(n *html.Node) bool {
	return strings.EqualFold(strings.TrimSpace(attr(n, "align")), "center")
}
