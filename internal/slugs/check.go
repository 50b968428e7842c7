package slugs

import "github.com/goliatone/go-slug"

// Acceptable reports whether value already satisfies the target platform's
// slug rules, as implemented by go-slug. Legacy slugs that fail are kept
// as-is and only reported, since rewriting them would break inbound links.
func Acceptable(value string) bool {
	return slug.IsValid(value)
}
