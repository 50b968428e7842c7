package markup

import (
	"strings"

	"golang.org/x/net/html"
)

// restructureCode turns legacy code tags into prettify markup:
// <pre class="prettyprint lang-x"><code>...</code></pre>. Tags are handled in
// the order of o.CodeTags, each in document order. Code found inside a
// paragraph is moved right after it, since a pre block cannot live in a p.
func restructureCode(t *Tree, o Options) int {
	count := 0
	lifted := map[*html.Node]*html.Node{}
	for _, tag := range o.CodeTags {
		for _, node := range t.Find(tag.Tag) {
			if !t.attached(node) {
				// copied into a replacement of an enclosing code tag
				continue
			}
			if restructureCodeNode(node, tag, lifted) {
				count++
			}
		}
	}
	return count
}

func restructureCodeNode(node *html.Node, tag CodeTag, lifted map[*html.Node]*html.Node) bool {
	code := node
	if node.Data != canonicalCode {
		code = newElement(canonicalCode)
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			code.AppendChild(cloneNode(child))
		}
		replaceNode(node, code)
	} else if pre := code.Parent; isElement(pre, "pre") && hasClass(pre, prettifyClass) {
		return false
	}

	parent := code.Parent
	var paragraph *html.Node
	if isElement(parent, "p") && parent.Parent != nil {
		paragraph = parent
		anchor := paragraph
		if last, ok := lifted[paragraph]; ok && last.Parent == paragraph.Parent {
			anchor = last
		}
		paragraph.RemoveChild(code)
		paragraph.Parent.InsertBefore(code, anchor.NextSibling)
		parent = paragraph.Parent
	}

	classes := []string{prettifyClass}
	if class := strings.TrimSpace(tag.Class); class != "" {
		classes = append(classes, class)
	}

	block := parent
	if isElement(parent, "pre") {
		addClasses(parent, classes...)
	} else {
		block = newElement("pre", html.Attribute{Key: "class", Val: strings.Join(classes, " ")})
		wrapNode(code, block)
	}
	if paragraph != nil {
		lifted[paragraph] = block
	}

	removeLineBreaks(code)
	return true
}

func removeLineBreaks(code *html.Node) {
	var breaks []*html.Node
	for child := code.FirstChild; child != nil; child = child.NextSibling {
		if isElement(child, "br") {
			breaks = append(breaks, child)
		}
	}
	for _, br := range breaks {
		code.RemoveChild(br)
	}
}
