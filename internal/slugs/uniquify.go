package slugs

import (
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-postmigrate/internal/logging"
	"github.com/goliatone/go-postmigrate/pkg/interfaces"
)

// Set is the view of a batch of posts the uniqueness pass works on.
type Set interface {
	Len() int
	ID(i int) string
	Title(i int) string
	Slug(i int) string
	SetSlug(i int, slug string)
}

// Change records one slug renamed by Uniquify.
type Change struct {
	Index int
	ID    string
	From  string
	To    string
}

// Uniquifier resolves slug collisions between posts with different ids.
type Uniquifier struct {
	logger interfaces.Logger
}

// NewUniquifier returns a Uniquifier logging renamed slugs to logger.
func NewUniquifier(logger interfaces.Logger) *Uniquifier {
	return &Uniquifier{logger: logging.EnsureLogger(logger)}
}

// Uniquify walks the set in order. Whenever a post's slug is also held by a
// post with another id, it appends "-1", "-2", ... until the slug is free
// against the current state of the whole set. Rows sharing an id are the
// same post and never collide with each other. A base too long to take the
// suffix is cut first, so renamed slugs stay within MaxLength.
//
// After the pass no two posts with distinct ids share a slug.
func (u *Uniquifier) Uniquify(set Set) []Change {
	holders := make(map[string][]int, set.Len())
	for i := 0; i < set.Len(); i++ {
		slug := set.Slug(i)
		holders[slug] = append(holders[slug], i)
	}

	var changes []Change
	for i := 0; i < set.Len(); i++ {
		id := set.ID(i)
		base := set.Slug(i)
		candidate := base
		for n := 1; collides(set, holders[candidate], id); n++ {
			candidate = withSuffix(base, n)
		}
		if candidate == base {
			continue
		}

		holders[base] = slices.DeleteFunc(holders[base], func(j int) bool { return j == i })
		holders[candidate] = append(holders[candidate], i)
		set.SetSlug(i, candidate)

		changes = append(changes, Change{Index: i, ID: id, From: base, To: candidate})
		u.logger.Info("slugs.uniquified", "post_id", id, "title", set.Title(i), "from", base, "to", candidate)
	}
	return changes
}

func withSuffix(base string, n int) string {
	suffix := "-" + strconv.Itoa(n)
	limit := MaxLength - len(suffix)
	if len(base) > limit {
		base = strings.TrimRight(truncate(base, limit), "-")
	}
	return base + suffix
}

func collides(set Set, holders []int, id string) bool {
	for _, j := range holders {
		if set.ID(j) != id {
			return true
		}
	}
	return false
}
