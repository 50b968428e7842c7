package posts

import (
	"strings"
	"unicode/utf8"
)

const (
	legacyCategorySeparator = ", "
	categorySeparator       = "|"
	shortCategorySuffix     = "-tag"
	minCategoryLength       = 3
)

// NormalizeCategories converts a legacy ", " separated category list to the
// "|" separated form. Categories shorter than three characters get a "-tag"
// suffix so their tag pages satisfy the minimum slug length. Empty tokens
// are kept empty. The second result counts suffixed categories.
func NormalizeCategories(value string) (string, int) {
	if value == "" {
		return value, 0
	}
	tokens := strings.Split(strings.ReplaceAll(value, legacyCategorySeparator, categorySeparator), categorySeparator)
	suffixed := 0
	for i, token := range tokens {
		if token == "" {
			continue
		}
		if utf8.RuneCountInString(token) < minCategoryLength {
			tokens[i] = token + shortCategorySuffix
			suffixed++
		}
	}
	return strings.Join(tokens, categorySeparator), suffixed
}

// EmptyCategories counts the empty tokens of a "|" separated category list.
// An empty list counts as one. NormalizeCategories leaves these tokens
// empty instead of suffixing them.
func EmptyCategories(value string) int {
	empty := 0
	for _, token := range strings.Split(value, categorySeparator) {
		if token == "" {
			empty++
		}
	}
	return empty
}
