package tabular

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/goliatone/go-postmigrate/pkg/interfaces"
)

const byteOrderMark = "\ufeff"

var (
	_ interfaces.RecordSource = (*CSVFile)(nil)
	_ interfaces.RecordSink   = (*CSVFile)(nil)
)

// CSVFile reads and writes a delimited text file. Records may have varying
// lengths; quoting follows RFC 4180 with lazy quotes accepted on read.
type CSVFile struct {
	Path string
	// Comma is the field delimiter, ',' when zero.
	Comma rune
}

// NewCSVFile returns a comma separated file at path.
func NewCSVFile(path string) *CSVFile {
	return &CSVFile{Path: path}
}

func (f *CSVFile) comma() rune {
	if f.Comma == 0 {
		return ','
	}
	return f.Comma
}

// ReadRecords returns every record of the file, header included. A leading
// byte order mark is dropped from the first cell.
func (f *CSVFile) ReadRecords(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, readError(f.Path, err)
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, readError(f.Path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = f.comma()
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, readError(f.Path, err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], byteOrderMark)
	}
	return records, nil
}

// WriteRecords replaces the file with header followed by rows.
func (f *CSVFile) WriteRecords(ctx context.Context, header []string, rows [][]string) error {
	err := writeAtomic(ctx, f.Path, func(w io.Writer) error {
		writer := csv.NewWriter(w)
		writer.Comma = f.comma()
		if err := writer.Write(header); err != nil {
			return err
		}
		if err := writer.WriteAll(rows); err != nil {
			return err
		}
		return writer.Error()
	})
	if err != nil {
		return writeError(f.Path, err)
	}
	return nil
}
