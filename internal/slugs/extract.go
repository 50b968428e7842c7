package slugs

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrLinkParse is returned when a link field carries no quoted href.
var ErrLinkParse = errors.New("slugs: link field has no quoted href")

// LinkParseError describes a link field that could not be parsed.
type LinkParseError struct {
	Field  string
	Reason string
}

func (e *LinkParseError) Error() string {
	return fmt.Sprintf("slugs: %s in link field %q", e.Reason, e.Field)
}

func (e *LinkParseError) Unwrap() error { return ErrLinkParse }

// Link is the href found in a legacy link field and the slug candidate taken
// from its last path segment.
type Link struct {
	Href      string
	Candidate string
}

// Extract reads the first double-quoted string of field, normally the href
// of an anchor rendered by the legacy CMS, and returns its last
// "/"-delimited segment as the slug candidate.
func Extract(field string) (Link, error) {
	start := strings.IndexByte(field, '"')
	if start < 0 {
		return Link{}, &LinkParseError{Field: field, Reason: "no quote found"}
	}
	rest := field[start+1:]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return Link{}, &LinkParseError{Field: field, Reason: "unterminated quote"}
	}

	href := rest[:end]
	candidate := href[strings.LastIndexByte(href, '/')+1:]
	return Link{Href: href, Candidate: candidate}, nil
}

// UnderPrefix reports whether the path of href starts with prefix. Absolute
// URLs are compared by their path component. Posts outside the prefix were
// reachable under a custom alias and may need a redirect after migration.
func UnderPrefix(href, prefix string) bool {
	path := href
	if parsed, err := url.Parse(href); err == nil && parsed.Path != "" {
		path = parsed.Path
	}
	return strings.HasPrefix(path, prefix)
}
