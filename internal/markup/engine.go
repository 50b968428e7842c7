// Package markup rewrites HTML fragments stored in legacy post fields into
// markup accepted by the new publishing platform.
package markup

import (
	"github.com/goliatone/go-postmigrate/internal/logging"
	"github.com/goliatone/go-postmigrate/pkg/interfaces"
)

// Outcome is the result of one rule on one fragment.
type Outcome struct {
	Rule     string
	Count    int
	ReadOnly bool
}

// Report lists the outcome of every enabled rule, in execution order.
type Report []Outcome

// Changed reports whether any mutating rule changed the tree.
func (r Report) Changed() bool {
	for _, outcome := range r {
		if !outcome.ReadOnly && outcome.Count > 0 {
			return true
		}
	}
	return false
}

// Count sums the counts recorded for rule. Reports of several fragments may
// be appended together.
func (r Report) Count(rule string) int {
	total := 0
	for _, outcome := range r {
		if outcome.Rule == rule {
			total += outcome.Count
		}
	}
	return total
}

// Engine applies the enabled rules, in their fixed order, to fragments.
type Engine struct {
	opts   Options
	rules  []Rule
	logger interfaces.Logger
}

// NewEngine selects the rules enabled by opts.
func NewEngine(opts Options, logger interfaces.Logger) *Engine {
	enabled := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		if rule.Enabled(opts) {
			enabled = append(enabled, rule)
		}
	}
	return &Engine{opts: opts, rules: enabled, logger: logging.EnsureLogger(logger)}
}

// Enabled returns the names of the rules this engine runs, in order.
func (e *Engine) Enabled() []string {
	names := make([]string, len(e.rules))
	for i, rule := range e.rules {
		names[i] = rule.Name
	}
	return names
}

// Rewrite parses fragment, runs the enabled rules and renders the result.
// A fragment no rule changed is returned verbatim, so serialisation alone
// never alters a field. title identifies the post in diagnostics.
func (e *Engine) Rewrite(fragment, title string) (string, Report, error) {
	if len(e.rules) == 0 {
		return fragment, nil, nil
	}

	tree, err := Parse(fragment)
	if err != nil {
		return fragment, nil, err
	}

	report := make(Report, 0, len(e.rules))
	for _, rule := range e.rules {
		count := rule.Apply(tree, e.opts)
		report = append(report, Outcome{Rule: rule.Name, Count: count, ReadOnly: rule.ReadOnly})
		e.reportRule(rule.Name, count, title)
	}

	if !report.Changed() {
		return fragment, report, nil
	}

	rendered, err := tree.Render()
	if err != nil {
		return fragment, report, err
	}
	return rendered, report, nil
}

func (e *Engine) reportRule(rule string, count int, title string) {
	if count == 0 {
		return
	}
	switch rule {
	case RuleCodeBlocks:
		e.logger.Info("markup.code.fixed", "title", title, "blocks", count)
	case RuleGalleryLinks:
		e.logger.Warn("markup.gallery.found", "title", title, "links", count)
	case RuleObjectParagraphs:
		e.logger.Warn("markup.object_paragraph.fixed", "title", title, "objects", count)
	default:
		e.logger.Debug("markup.rule.applied", "rule", rule, "title", title, "changes", count)
	}
}
