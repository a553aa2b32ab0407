// Package testgen generates EPUB and PDF fixtures with configurable metadata
// for exercising the ingest pipeline.
package testgen

import (
	"os"
	"path/filepath"
	"testing"
)

// EPUBOptions configures the generated EPUB file.
type EPUBOptions struct {
	Title   string
	Authors []string
	// Body distinguishes otherwise identical fixtures so they hash
	// differently.
	Body string
}

// PDFOptions configures the generated PDF file.
type PDFOptions struct {
	Title  string
	Author string
	// XMP embeds an uncompressed XMP metadata packet.
	XMP bool
	// Info writes an Info dictionary into the trailer.
	Info bool
	Body string
}

// WriteFile creates a file with the given content in the specified directory,
// creating parent directories as needed. Returns the full path.
func WriteFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0600); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ReadFile reads and returns the contents of a file.
func ReadFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file %s: %v", path, err)
	}
	return data
}
