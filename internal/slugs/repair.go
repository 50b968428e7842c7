package slugs

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	MinLength       = 3
	MaxLength       = 64
	TruncatedLength = 61

	shortPrefix = "id-"
)

// Repair describes how a slug candidate was changed to fit the length range.
type Repair int

const (
	RepairNone Repair = iota
	RepairTransliterated
	RepairPrefixed
	RepairTruncated
)

func (r Repair) String() string {
	switch r {
	case RepairTransliterated:
		return "transliterated"
	case RepairPrefixed:
		return "prefixed"
	case RepairTruncated:
		return "truncated"
	default:
		return "none"
	}
}

var separatorRuns = regexp.MustCompile(`[-\s]+`)

// FitLength returns a slug within [MinLength, MaxLength] for candidate.
// Short candidates are replaced by the transliterated title when that is long
// enough, otherwise prefixed with "id-". Long candidates are cut to
// TruncatedLength bytes on a rune boundary.
func FitLength(candidate, title string) (string, Repair) {
	length := len(candidate)
	switch {
	case length > MaxLength:
		return truncate(candidate, TruncatedLength), RepairTruncated
	case length >= MinLength:
		return candidate, RepairNone
	}

	if transliterated := Transliterate(title); len(transliterated) >= MinLength {
		if len(transliterated) > MaxLength {
			transliterated = strings.TrimRight(truncate(transliterated, TruncatedLength), "-")
		}
		return transliterated, RepairTransliterated
	}
	return shortPrefix + candidate, RepairPrefixed
}

// Transliterate turns title into a lowercase ASCII slug: diacritics are
// stripped, other scripts are romanised, punctuation and symbols are dropped
// and runs of whitespace or hyphens collapse into one hyphen.
func Transliterate(title string) string {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(stripMarks, title)
	if err != nil {
		plain = title
	}

	ascii := strings.ToLower(unidecode.Unidecode(plain))

	var b strings.Builder
	b.Grow(len(ascii))
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}

	collapsed := separatorRuns.ReplaceAllString(b.String(), "-")
	return strings.Trim(collapsed, "-")
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(value[cut]) {
		cut--
	}
	return value[:cut]
}
