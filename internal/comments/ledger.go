package comments

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ErrCreatedDate reports a created value that is empty or not a date.
var ErrCreatedDate = errors.New("comments: created date not parsable")

// Ledger keeps the creation date of every post whose comments may need new
// links. Paths are only built once the final slugs are known.
type Ledger struct {
	location *time.Location
	dates    map[string]time.Time
	order    []string
}

// NewLedger returns an empty ledger resolving dates in location (UTC when nil).
func NewLedger(location *time.Location) *Ledger {
	if location == nil {
		location = time.UTC
	}
	return &Ledger{location: location, dates: map[string]time.Time{}}
}

// Record parses created and stores it for id. Any layout dateparse
// recognises is accepted, including unix timestamps. A later record for the
// same id replaces the earlier one.
func (l *Ledger) Record(id, created string) error {
	value := strings.TrimSpace(created)
	if value == "" {
		return fmt.Errorf("%w: post %s has no created date", ErrCreatedDate, id)
	}
	ts, err := dateparse.ParseIn(value, l.location)
	if err != nil {
		return fmt.Errorf("%w: post %s: %v", ErrCreatedDate, id, err)
	}
	if _, seen := l.dates[id]; !seen {
		l.order = append(l.order, id)
	}
	l.dates[id] = ts.In(l.location)
	return nil
}

// Created returns the recorded date of id.
func (l *Ledger) Created(id string) (time.Time, bool) {
	ts, ok := l.dates[id]
	return ts, ok
}

// Len returns the number of recorded posts.
func (l *Ledger) Len() int {
	return len(l.order)
}

// Paths maps every recorded id with a known slug to its date-partitioned
// path under prefix. Ids missing from slugs are skipped.
func (l *Ledger) Paths(prefix string, slugs map[string]string) map[string]string {
	paths := make(map[string]string, len(l.order))
	for _, id := range l.order {
		slug, ok := slugs[id]
		if !ok || slug == "" {
			continue
		}
		paths[id] = Path(prefix, l.dates[id], slug)
	}
	return paths
}

// Path returns /<prefix>/<YYYY>/<MM>/<DD>/<slug>.
func Path(prefix string, created time.Time, slug string) string {
	var b strings.Builder
	b.WriteByte('/')
	if trimmed := strings.Trim(prefix, "/"); trimmed != "" {
		b.WriteString(trimmed)
		b.WriteByte('/')
	}
	b.WriteString(created.Format("2006/01/02"))
	b.WriteByte('/')
	b.WriteString(slug)
	return b.String()
}
