package tabular

import (
	"context"
	"io"
	"os"

	"github.com/goliatone/go-postmigrate/pkg/interfaces"
)

var _ interfaces.TextStore = (*TextFile)(nil)

// TextFile is a document read and written whole. Writes go to OutputPath
// when set, otherwise the source is overwritten.
type TextFile struct {
	Path       string
	OutputPath string
}

// NewTextFile returns a TextFile reading path and writing output (path when
// output is empty).
func NewTextFile(path, output string) *TextFile {
	return &TextFile{Path: path, OutputPath: output}
}

func (f *TextFile) target() string {
	if f.OutputPath != "" {
		return f.OutputPath
	}
	return f.Path
}

func (f *TextFile) ReadText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", readError(f.Path, err)
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", readError(f.Path, err)
	}
	return string(data), nil
}

func (f *TextFile) WriteText(ctx context.Context, text string) error {
	target := f.target()
	err := writeAtomic(ctx, target, func(w io.Writer) error {
		_, err := io.WriteString(w, text)
		return err
	})
	if err != nil {
		return writeError(target, err)
	}
	return nil
}
