package version

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"
)

// Previous is the previously written output of a tracked file.
type Previous struct {
	Text    string
	Present bool
}

// Absent is the Previous value for a file with no usable prior output.
var Absent = Previous{}

// PreviousLocator reads prior output from a directory that mirrors the
// output tree.
//
// Read problems never fail the render: a missing file is absent, and an
// unreadable or non-UTF-8 file is absent with a warning.
type PreviousLocator struct {
	Root   string
	Logger *slog.Logger
}

// Locate returns the prior output for the relative path rel.
func (l PreviousLocator) Locate(rel string) Previous {
	logger := l.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if l.Root == "" {
		return Absent
	}

	path := filepath.Join(l.Root, filepath.FromSlash(rel))
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Debug("no previous output", "path", rel)
		return Absent
	case err != nil:
		logger.Warn("previous output unreadable, minting a fresh serial", "path", rel, "error", err)
		return Absent
	case !utf8.Valid(data):
		logger.Warn("previous output is not valid UTF-8, minting a fresh serial", "path", rel)
		return Absent
	}
	return Previous{Text: string(data), Present: true}
}
