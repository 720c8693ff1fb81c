// Package writer provides JSON and gzip writers for run reports and
// plan artifacts.
package writer

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// JSONWriter writes values as JSON.
type JSONWriter[T any] struct {
	// Indent specifies the indentation for pretty printing. Empty
	// means compact output.
	Indent string
}

// NewJSONWriter creates a compact JSON writer.
func NewJSONWriter[T any]() *JSONWriter[T] {
	return &JSONWriter[T]{}
}

// NewPrettyJSONWriter creates a JSON writer with pretty printing.
func NewPrettyJSONWriter[T any]() *JSONWriter[T] {
	return &JSONWriter[T]{Indent: "  "}
}

// Write writes the value as JSON to the writer.
func (w *JSONWriter[T]) Write(data T, out io.Writer) error {
	enc := json.NewEncoder(out)
	if w.Indent != "" {
		enc.SetIndent("", w.Indent)
	}
	return enc.Encode(data)
}

// WriteToFile writes the value as JSON to a file.
func (w *JSONWriter[T]) WriteToFile(data T, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()
	return w.Write(data, file)
}

// GzipFile compresses src into dst with the given level
// (gzip.DefaultCompression when out of range).
func GzipFile(src, dst string, level int) error {
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		level = gzip.DefaultCompression
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}
	defer out.Close()

	zw, err := gzip.NewWriterLevel(out, level)
	if err != nil {
		return err
	}
	if _, err := io.Copy(zw, in); err != nil {
		zw.Close()
		return fmt.Errorf("failed to compress: %w", err)
	}
	return zw.Close()
}

// GunzipFile decompresses src into dst.
func GunzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	zr, err := gzip.NewReader(in)
	if err != nil {
		return fmt.Errorf("failed to read gzip header: %w", err)
	}
	defer zr.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, zr); err != nil {
		return fmt.Errorf("failed to decompress: %w", err)
	}
	return nil
}
