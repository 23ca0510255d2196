// Package batch discovers the PGN files of a directory and chains them into
// one game stream.
package batch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fjacquet/pgn-ratings/internal/fileutils"
	"fjacquet/pgn-ratings/internal/logging"
)

// Extensions recognised as PGN input, compared case-insensitively.
var Extensions = []string{".pgn", ".pgn.gz"}

// recordSeparator keeps the last record of one file from running into the
// first record of the next.
const recordSeparator = "\n\n"

// IsPGNFile reports whether name carries one of the PGN extensions.
func IsPGNFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range Extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Discover lists the PGN files directly inside dir in lexical order.
func Discover(dir string, logger logging.Logger) ([]string, error) {
	logger = logging.OrDefault(logger)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !IsPGNFile(entry.Name()) {
			logger.Debug("Ignoring non-PGN file", logging.Field{Key: logging.FieldFile, Value: entry.Name()})
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)

	logger.Info("Discovered PGN files",
		logging.Field{Key: logging.FieldInputFile, Value: dir},
		logging.Field{Key: logging.FieldCount, Value: len(files)})
	return files, nil
}

// Chain reads the given files one after another. Each file is opened only
// when the previous one is exhausted, so at most one is open at a time.
type Chain struct {
	paths   []string
	next    int
	current io.ReadCloser
	pending string
	logger  logging.Logger
}

// NewChain creates a Chain over paths.
func NewChain(paths []string, logger logging.Logger) *Chain {
	return &Chain{paths: paths, logger: logging.OrDefault(logger)}
}

// Read implements io.Reader.
func (c *Chain) Read(p []byte) (int, error) {
	for {
		if c.pending != "" {
			n := copy(p, c.pending)
			c.pending = c.pending[n:]
			return n, nil
		}
		if c.current == nil {
			if c.next >= len(c.paths) {
				return 0, io.EOF
			}
			if err := c.open(); err != nil {
				return 0, err
			}
		}

		n, err := c.current.Read(p)
		if err == io.EOF {
			if cerr := c.closeCurrent(); cerr != nil {
				return n, cerr
			}
			c.pending = recordSeparator
			err = nil
		}
		if n > 0 || err != nil {
			return n, err
		}
	}
}

func (c *Chain) open() error {
	path := c.paths[c.next]
	c.next++
	rc, _, err := fileutils.OpenInput(path, nil)
	if err != nil {
		return err
	}
	c.logger.Debug("Reading PGN file", logging.Field{Key: logging.FieldInputFile, Value: path})
	c.current = rc
	return nil
}

func (c *Chain) closeCurrent() error {
	err := c.current.Close()
	c.current = nil
	return err
}

// Close closes the file being read, if any.
func (c *Chain) Close() error {
	if c.current == nil {
		return nil
	}
	return c.closeCurrent()
}
