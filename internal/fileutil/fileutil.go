// Package fileutil provides file and path utility functions.
package fileutil

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/atomic"
)

// Sentinel errors for file utility operations.
var (
	ErrExtensionEmpty         = errors.New("extension cannot be empty")
	ErrExtensionPathTraversal = errors.New("extension contains path separator or null byte")
	ErrFileNotFound           = errors.New("file not found")
	ErrWrongExtension         = errors.New("unexpected file extension")
	ErrOutputDirNotFound      = errors.New("output directory not found")
)

// ExtensionError reports an input file with the wrong extension.
// It matches ErrWrongExtension with errors.Is.
type ExtensionError struct {
	Path string
	Want string
}

func (e *ExtensionError) Error() string {
	return fmt.Sprintf("%v: %s (want %s)", ErrWrongExtension, e.Path, e.Want)
}

func (e *ExtensionError) Is(target error) bool { return target == ErrWrongExtension }

// Extensions accepted for input and output files.
const (
	ExtMarkdown = ".md"
	ExtCSS      = ".css"
	ExtPDF      = ".pdf"
	ExtHTML     = ".html"
)

// WriteTempFile creates a temporary file with the given content and extension.
// Returns the file path and a cleanup function to remove the file.
func WriteTempFile(content, extension string) (path string, cleanup func(), err error) {
	if err := ValidateExtension(extension); err != nil {
		return "", nil, err
	}

	tmpFile, err := os.CreateTemp("", "mdconvert-*."+extension)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}

	path = tmpFile.Name()
	cleanup = func() { _ = os.Remove(path) }

	if _, writeErr := tmpFile.WriteString(content); writeErr != nil {
		_ = tmpFile.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", writeErr)
	}

	if closeErr := tmpFile.Close(); closeErr != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing temp file: %w", closeErr)
	}

	return path, cleanup, nil
}

// WriteFileAtomic replaces path with data so readers see either the old or
// the new content, never a partial write.
func WriteFileAtomic(path string, data []byte) error {
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ValidateExtension checks that the extension is safe for use in temp file names.
func ValidateExtension(extension string) error {
	if extension == "" {
		return ErrExtensionEmpty
	}
	if strings.ContainsAny(extension, "/\\\x00") {
		return ErrExtensionPathTraversal
	}
	return nil
}

// ValidateInputFile checks that path is an existing regular file whose
// extension matches ext (case-insensitive).
func ValidateInputFile(path, ext string) error {
	if !strings.EqualFold(filepath.Ext(path), ext) {
		return &ExtensionError{Path: path, Want: ext}
	}
	if !FileExists(path) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	return nil
}

// OutputPath derives the PDF path for mdPath. An empty out places the PDF
// next to the Markdown file; an out ending in .pdf names the file; any other
// out is a directory. The directory that will hold the PDF must exist.
func OutputPath(mdPath, out string) (string, error) {
	name := strings.TrimSuffix(filepath.Base(mdPath), filepath.Ext(mdPath)) + ExtPDF

	var pdfPath string
	switch {
	case out == "":
		pdfPath = filepath.Join(filepath.Dir(mdPath), name)
	case strings.EqualFold(filepath.Ext(out), ExtPDF):
		pdfPath = out
	default:
		pdfPath = filepath.Join(out, name)
	}

	if !DirExists(filepath.Dir(pdfPath)) {
		return "", fmt.Errorf("%w: %s", ErrOutputDirNotFound, filepath.Dir(pdfPath))
	}
	return pdfPath, nil
}

// HTMLPath returns the debug HTML path written alongside pdfPath.
func HTMLPath(pdfPath string) string {
	return strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ExtHTML
}

// ModTime returns the modification time of path.
func ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists returns true if the path exists and is a directory.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
