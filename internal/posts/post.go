package posts

import (
	"github.com/goliatone/go-postmigrate/internal/columns"
)

// Post is a data row read through the resolved column index. Setters write
// the underlying cells in place.
type Post struct {
	// Row is the 1-based position of the row below the header.
	Row    int
	cells  []string
	index  columns.Index
	padded int
}

// NewPost wraps cells. Rows shorter than the header are padded with empty
// cells so every resolved column is addressable.
func NewPost(row int, cells []string, index columns.Index) *Post {
	padded := 0
	if missing := index.Width() - len(cells); missing > 0 {
		cells = append(cells, make([]string, missing)...)
		padded = missing
	}
	return &Post{Row: row, cells: cells, index: index, padded: padded}
}

// Field returns the cell of column name, or "" when name is not resolved.
func (p *Post) Field(name string) string {
	pos, ok := p.index.Position(name)
	if !ok {
		return ""
	}
	return p.cells[pos]
}

// SetField overwrites the cell of column name.
func (p *Post) SetField(name, value string) {
	p.cells[p.index.MustPosition(name)] = value
}

func (p *Post) ID() string { return p.Field(columns.ID) }
func (p *Post) Title() string { return p.Field(columns.Title) }
func (p *Post) Content() string { return p.Field(columns.Content) }
func (p *Post) Teaser() string { return p.Field(columns.Teaser) }
func (p *Post) Link() string { return p.Field(columns.Link) }
func (p *Post) Categories() string { return p.Field(columns.Categories) }
func (p *Post) Created() string { return p.Field(columns.Created) }

// Cells returns the row in header order.
func (p *Post) Cells() []string {
	return p.cells
}

// Padded returns how many empty cells NewPost appended.
func (p *Post) Padded() int {
	return p.padded
}

// Batch is the full set of posts of a run. It is the unit of the slug
// uniqueness pass.
type Batch []*Post

func (b Batch) Len() int { return len(b) }
func (b Batch) ID(i int) string { return b[i].ID() }
func (b Batch) Title(i int) string { return b[i].Title() }
func (b Batch) Slug(i int) string { return b[i].Link() }
func (b Batch) SetSlug(i int, s string) { b[i].SetField(columns.Link, s) }

// Slugs maps every post id to its current link field. When ids repeat, the
// last row wins.
func (b Batch) Slugs() map[string]string {
	slugs := make(map[string]string, len(b))
	for _, post := range b {
		slugs[post.ID()] = post.Link()
	}
	return slugs
}

// Rows returns the cells of every post.
func (b Batch) Rows() [][]string {
	rows := make([][]string, len(b))
	for i, post := range b {
		rows[i] = post.Cells()
	}
	return rows
}
