// Package fileutils provides the file operations at the edge of a run:
// opening the game stream and creating export destinations.
package fileutils

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// StdinName is the input name that selects standard input.
const StdinName = "-"

// FileExists checks if a file exists and is not a directory
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirectoryExists checks if a directory exists
func DirectoryExists(dirPath string) bool {
	info, err := os.Stat(dirPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// EnsureDirectoryExists creates a directory if it doesn't exist
func EnsureDirectoryExists(dirPath string) error {
	if dirPath == "" || DirectoryExists(dirPath) {
		return nil
	}
	if err := os.MkdirAll(dirPath, 0750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return nil
}

// CreateFile creates or truncates a file for writing, creating parent
// directories as needed.
func CreateFile(filePath string) (*os.File, error) {
	if err := EnsureDirectoryExists(filepath.Dir(filePath)); err != nil {
		return nil, err
	}

	file, err := os.Create(filePath) // #nosec G304 -- CLI tool writes to user-configured paths
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return file, nil
}

// OpenInput opens the game stream named by path. An empty path or "-" reads
// standard input, and a ".gz" suffix is decompressed transparently. The
// returned name is suitable for logs and reports.
func OpenInput(path string, stdin io.Reader) (io.ReadCloser, string, error) {
	if path == "" || path == StdinName {
		return io.NopCloser(stdin), "stdin", nil
	}

	if !FileExists(path) {
		return nil, path, fmt.Errorf("input file does not exist: %s", path)
	}
	file, err := os.Open(path) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return nil, path, fmt.Errorf("failed to open input: %w", err)
	}

	if !strings.HasSuffix(strings.ToLower(path), ".gz") {
		return file, path, nil
	}

	gz, err := gzip.NewReader(file)
	if err != nil {
		_ = file.Close()
		return nil, path, fmt.Errorf("failed to open gzip input: %w", err)
	}
	return &gzipReadCloser{Reader: gz, file: file}, path, nil
}

type gzipReadCloser struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipReadCloser) Close() error {
	gzErr := g.Reader.Close()
	if err := g.file.Close(); err != nil {
		return err
	}
	return gzErr
}
