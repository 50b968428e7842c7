package comments

import (
	"slices"
	"strings"

	"github.com/goliatone/go-postmigrate/internal/logging"
	"github.com/goliatone/go-postmigrate/pkg/interfaces"
)

const nodePath = "/node/"

// Rewriter replaces legacy node permalinks in a comment export.
type Rewriter struct {
	legacyBase string
	linkBase   string
	logger     interfaces.Logger
}

// NewRewriter builds a Rewriter for permalinks rooted at legacyBase
// (e.g. http://example.com). New links are linkBase followed by the post path.
func NewRewriter(legacyBase, linkBase string, logger interfaces.Logger) *Rewriter {
	return &Rewriter{
		legacyBase: strings.TrimRight(strings.TrimSpace(legacyBase), "/"),
		linkBase:   strings.TrimRight(strings.TrimSpace(linkBase), "/"),
		logger:     logging.EnsureLogger(logger),
	}
}

// LegacyMarker is the literal permalink element of post id in the export.
func (r *Rewriter) LegacyMarker(id string) string {
	return "<link>" + r.legacyBase + nodePath + id + "</link>"
}

// Marker is the replacement permalink element for path.
func (r *Rewriter) Marker(path string) string {
	return "<link>" + r.linkBase + path + "</link>"
}

// Rewrite replaces every legacy marker of the ids in paths with the marker of
// the mapped path and returns the new text with the number of replacements.
// Replacement is a single pass over text, so a new path is never rewritten
// again. Markers of unknown ids are left alone.
func (r *Rewriter) Rewrite(text string, paths map[string]string) (string, int) {
	if text == "" || len(paths) == 0 {
		return text, 0
	}

	ids := make([]string, 0, len(paths))
	for id := range paths {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	pairs := make([]string, 0, len(ids)*2)
	total := 0
	for _, id := range ids {
		legacy := r.LegacyMarker(id)
		count := strings.Count(text, legacy)
		if count == 0 {
			continue
		}
		total += count
		pairs = append(pairs, legacy, r.Marker(paths[id]))
		r.logger.Debug("comments.link.rewritten", "post_id", id, "path", paths[id], "occurrences", count)
	}
	if total == 0 {
		return text, 0
	}

	r.logger.Info("comments.rewritten", "links", total, "posts", len(pairs)/2)
	return strings.NewReplacer(pairs...).Replace(text), total
}
