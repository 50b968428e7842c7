package slugs

import (
	"fmt"
	"strings"
	"testing"
)

type post struct {
	id    string
	title string
	slug  string
}

type postSet []post

func (s postSet) Len() int                   { return len(s) }
func (s postSet) ID(i int) string            { return s[i].id }
func (s postSet) Title(i int) string         { return s[i].title }
func (s postSet) Slug(i int) string          { return s[i].slug }
func (s postSet) SetSlug(i int, slug string) { s[i].slug = slug }

func assertUnique(t *testing.T, set postSet) {
	t.Helper()
	owners := map[string]string{}
	for _, p := range set {
		if owner, ok := owners[p.slug]; ok && owner != p.id {
			t.Fatalf("slug %q shared by ids %s and %s", p.slug, owner, p.id)
		}
		owners[p.slug] = p.id
	}
}

func TestUniquifyRenamesExactlyOneOfTwo(t *testing.T) {
	set := postSet{{id: "5", title: "Five", slug: "foo"}, {id: "9", title: "Nine", slug: "foo"}}

	changes := NewUniquifier(nil).Uniquify(set)

	if len(changes) != 1 {
		t.Fatalf("expected one change, got %v", changes)
	}
	renamed := 0
	for _, p := range set {
		switch p.slug {
		case "foo-1":
			renamed++
		case "foo":
		default:
			t.Fatalf("unexpected slug %q", p.slug)
		}
	}
	if renamed != 1 {
		t.Fatalf("expected exactly one foo-1, got %v", set)
	}
	assertUnique(t, set)
}

func TestUniquifySkipsTakenSuffixes(t *testing.T) {
	set := postSet{
		{id: "1", slug: "foo"},
		{id: "2", slug: "foo"},
		{id: "3", slug: "foo-1"},
		{id: "4", slug: "foo"},
	}

	NewUniquifier(nil).Uniquify(set)

	assertUnique(t, set)
	if set[2].slug != "foo-1" {
		t.Fatalf("expected pre-existing foo-1 to stay, got %q", set[2].slug)
	}
}

func TestUniquifyIgnoresRowsWithSameID(t *testing.T) {
	set := postSet{{id: "7", slug: "same"}, {id: "7", slug: "same"}}

	if changes := NewUniquifier(nil).Uniquify(set); len(changes) != 0 {
		t.Fatalf("expected rows of one post to keep their slug, got %v", changes)
	}
}

func TestUniquifyLeavesUniqueSlugsAlone(t *testing.T) {
	set := postSet{{id: "1", slug: "a"}, {id: "2", slug: "b"}, {id: "3", slug: "c"}}

	if changes := NewUniquifier(nil).Uniquify(set); len(changes) != 0 {
		t.Fatalf("expected no changes, got %v", changes)
	}
}

func TestUniquifyManyCollisions(t *testing.T) {
	set := make(postSet, 0, 40)
	for i := 0; i < 40; i++ {
		slug := "post"
		if i%3 == 0 {
			slug = fmt.Sprintf("post-%d", i%5)
		}
		set = append(set, post{id: fmt.Sprint(i), slug: slug})
	}

	NewUniquifier(nil).Uniquify(set)

	assertUnique(t, set)
}

func TestUniquifyKeepsLongSlugsWithinMaxLength(t *testing.T) {
	long := strings.Repeat("a", MaxLength)
	cases := []struct {
		name string
		base string
		want string
	}{
		{name: "at max length", base: long, want: strings.Repeat("a", MaxLength-2) + "-1"},
		{name: "one below", base: long[:MaxLength-1], want: strings.Repeat("a", MaxLength-2) + "-1"},
		{name: "cut on a separator", base: strings.Repeat("a", MaxLength-3) + "-bc", want: strings.Repeat("a", MaxLength-3) + "-1"},
		{name: "room for suffix", base: long[:MaxLength-2], want: long[:MaxLength-2] + "-1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			set := postSet{{id: "5", slug: tc.base}, {id: "9", slug: tc.base}}

			NewUniquifier(nil).Uniquify(set)

			if set[0].slug != tc.want || set[1].slug != tc.base {
				t.Fatalf("expected %q renamed to %q, got %v", tc.base, tc.want, set)
			}
			if len(set[0].slug) > MaxLength {
				t.Fatalf("slug %q exceeds %d bytes", set[0].slug, MaxLength)
			}
			assertUnique(t, set)
		})
	}
}
