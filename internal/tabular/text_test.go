package tabular

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestTextFileOverwritesSourceByDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comments.xml")
	if err := os.WriteFile(path, []byte("<link>old</link>"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	store := NewTextFile(path, "")

	text, err := store.ReadText(context.Background())
	if err != nil || text != "<link>old</link>" {
		t.Fatalf("ReadText = %q, %v", text, err)
	}
	if err := store.WriteText(context.Background(), "<link>new</link>"); err != nil {
		t.Fatalf("WriteText returned error: %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != "<link>new</link>" {
		t.Fatalf("expected source rewritten, got %q", data)
	}
}

func TestTextFileWritesToOutputPath(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "comments.xml")
	output := filepath.Join(dir, "comments.out.xml")
	if err := os.WriteFile(source, []byte("old"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	if err := NewTextFile(source, output).WriteText(context.Background(), "new"); err != nil {
		t.Fatalf("WriteText returned error: %v", err)
	}

	if data, _ := os.ReadFile(source); string(data) != "old" {
		t.Fatalf("expected source untouched, got %q", data)
	}
	if data, _ := os.ReadFile(output); string(data) != "new" {
		t.Fatalf("expected output written, got %q", data)
	}
}

func TestTextFileReadMissing(t *testing.T) {
	_, err := NewTextFile(filepath.Join(t.TempDir(), "nope.xml"), "").ReadText(context.Background())
	if !errors.Is(err, ErrRead) {
		t.Fatalf("expected ErrRead, got %v", err)
	}
}
