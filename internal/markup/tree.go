package markup

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	wrapperID         = "post-import-wrapper"
	instructionMarker = "post-import-instruction:"
)

var (
	// HTML5 parsing turns "<?php ... ?>" into a bogus comment and ends it at
	// the first '>', so instructions are swapped for placeholders first.
	instructionPattern = regexp.MustCompile(`(?s)<\?.*?\?>`)
	leadingTagPattern  = regexp.MustCompile(`^\s*<([a-zA-Z]+)`)
)

// Tree is a parsed markup fragment held under a synthetic wrapper element.
// The wrapper gives loose top-level text and elements a single root and is
// never part of the rendered output.
type Tree struct {
	root         *html.Node
	doc          *goquery.Document
	instructions []string
}

// Parse builds a Tree from fragment. Parsing follows the HTML5 algorithm, so
// unknown and unclosed tags are accepted and repaired rather than rejected.
// Processing instructions such as "<?php ... ?>" are kept verbatim, and a
// fragment starting with a table row or cell is parsed inside a table.
func Parse(fragment string) (*Tree, error) {
	var instructions []string
	fragment = instructionPattern.ReplaceAllStringFunc(fragment, func(instruction string) string {
		instructions = append(instructions, instruction)
		return "<!--" + instructionMarker + strconv.Itoa(len(instructions)-1) + "-->"
	})

	nodes, err := html.ParseFragment(strings.NewReader(fragment), fragmentContext(fragment))
	if err != nil {
		return nil, err
	}

	root := newElement("div", html.Attribute{Key: "id", Val: wrapperID})
	for _, node := range nodes {
		root.AppendChild(node)
	}
	return &Tree{root: root, doc: goquery.NewDocumentFromNode(root), instructions: instructions}, nil
}

// fragmentContext picks the element the fragment is parsed in. Table parts
// outside a table are dropped by the parser in any other context.
func fragmentContext(fragment string) *html.Node {
	name := "div"
	if match := leadingTagPattern.FindStringSubmatch(fragment); match != nil {
		switch strings.ToLower(match[1]) {
		case "tr":
			name = "tbody"
		case "td", "th":
			name = "tr"
		case "thead", "tbody", "tfoot", "caption", "colgroup", "col":
			name = "table"
		}
	}
	return &html.Node{Type: html.ElementNode, Data: name, DataAtom: atom.Lookup([]byte(name))}
}

// Find returns the elements below the wrapper matching selector, in document
// order. The slice is a snapshot: rules mutate the tree only after selecting.
func (t *Tree) Find(selector string) []*html.Node {
	return slices.Clone(t.doc.Find(selector).Nodes)
}

// Each calls fn for every element matching selector. fn may edit attributes
// but must not restructure the tree.
func (t *Tree) Each(selector string, fn func(*goquery.Selection)) {
	t.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		fn(s)
	})
}

// Render serialises the wrapper's children, leaving the wrapper out.
func (t *Tree) Render() (string, error) {
	if len(t.instructions) > 0 {
		t.restoreInstructions(t.root)
	}
	var b strings.Builder
	for child := t.root.FirstChild; child != nil; child = child.NextSibling {
		if err := html.Render(&b, child); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

// restoreInstructions puts the processing instructions taken out by Parse
// back as raw nodes, which html.Render writes without escaping.
func (t *Tree) restoreInstructions(n *html.Node) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.CommentNode:
			if original, ok := t.instruction(child.Data); ok {
				child.Type = html.RawNode
				child.Data = original
			}
		case html.TextNode:
			child.Data = t.restoreText(child.Data)
		case html.ElementNode:
			for i, a := range child.Attr {
				child.Attr[i].Val = t.restoreText(a.Val)
			}
			t.restoreInstructions(child)
		}
	}
}

func (t *Tree) instruction(data string) (string, bool) {
	index, ok := strings.CutPrefix(data, instructionMarker)
	if !ok {
		return "", false
	}
	i, err := strconv.Atoi(index)
	if err != nil || i < 0 || i >= len(t.instructions) {
		return "", false
	}
	return t.instructions[i], true
}

// restoreText handles instructions that ended up inside attribute values or
// raw text elements, where the placeholder was kept as plain text.
func (t *Tree) restoreText(value string) string {
	if !strings.Contains(value, "<!--"+instructionMarker) {
		return value
	}
	for i, original := range t.instructions {
		value = strings.ReplaceAll(value, "<!--"+instructionMarker+strconv.Itoa(i)+"-->", original)
	}
	return value
}

// attached reports whether n is still reachable from the wrapper.
func (t *Tree) attached(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == t.root {
			return true
		}
	}
	return false
}

func newElement(name string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     name,
		DataAtom: atom.Lookup([]byte(name)),
		Attr:     attrs,
	}
}

func isElement(n *html.Node, name string) bool {
	return n != nil && n.Type == html.ElementNode && n.Data == name
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, value string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

func removeAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			continue
		}
		kept = append(kept, a)
	}
	n.Attr = kept
}

func hasClass(n *html.Node, class string) bool {
	return slices.Contains(strings.Fields(attr(n, "class")), class)
}

// addClasses appends the missing classes and reports whether any was added.
func addClasses(n *html.Node, classes ...string) bool {
	current := strings.Fields(attr(n, "class"))
	added := false
	for _, class := range classes {
		if class != "" && !slices.Contains(current, class) {
			current = append(current, class)
			added = true
		}
	}
	if added {
		setAttr(n, "class", strings.Join(current, " "))
	}
	return added
}

// replaceNode puts replacement where old was and detaches old.
func replaceNode(old, replacement *html.Node) {
	parent := old.Parent
	parent.InsertBefore(replacement, old)
	parent.RemoveChild(old)
}

// wrapNode makes wrapper take n's place with n as its last child.
func wrapNode(n, wrapper *html.Node) {
	replaceNode(n, wrapper)
	wrapper.AppendChild(n)
}

// moveChildren transfers every child of from to the end of to.
func moveChildren(from, to *html.Node) {
	for child := from.FirstChild; child != nil; {
		next := child.NextSibling
		from.RemoveChild(child)
		to.AppendChild(child)
		child = next
	}
}

func cloneNode(n *html.Node) *html.Node {
	clone := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      slices.Clone(n.Attr),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		clone.AppendChild(cloneNode(child))
	}
	return clone
}
