package interfaces

import "context"

// RecordSource yields every record of a tabular export, header row first.
// The returned slice is fully materialised; callers may iterate it any number
// of times.
type RecordSource interface {
	ReadRecords(ctx context.Context) ([][]string, error)
}

// RecordSink serialises a header row followed by data rows, keeping the
// column order of the input.
type RecordSink interface {
	WriteRecords(ctx context.Context, header []string, rows [][]string) error
}

// TextStore reads and writes a whole text document, such as a comment export.
type TextStore interface {
	ReadText(ctx context.Context) (string, error)
	WriteText(ctx context.Context, text string) error
}
