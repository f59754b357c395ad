package render

import (
	"errors"
	"fmt"

	"github.com/roach88/gandalf/internal/version"
)

// Stage names where a file failed.
const (
	StageRead    = "read"
	StageParse   = "parse"
	StageRender  = "render"
	StageVersion = "version"
	StageWrite   = "write"
)

// FileError is the failure of one template file.
type FileError struct {
	Path     string // relative output path
	Template string
	Stage    string
	Err      error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s (%s): %s failed: %v", e.Path, e.Template, e.Stage, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// FileResult describes one successfully rendered file.
type FileResult struct {
	Path     string          `json:"path"`
	Template string          `json:"template"`
	Tracked  bool            `json:"tracked"`
	Serial   *version.Token  `json:"serial,omitempty"`
	Previous *version.Token  `json:"previous,omitempty"`
	Outcome  version.Outcome `json:"-"`
	Bytes    int             `json:"bytes"`
}

// Report collects the outcome of a render run in input order.
type Report struct {
	Files    []FileResult
	Failures []*FileError
}

// Failed reports whether any file failed.
func (r *Report) Failed() bool {
	return len(r.Failures) > 0
}

// Err joins all file failures, or returns nil.
func (r *Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Counts tallies tracked outcomes.
func (r *Report) Counts() map[string]int {
	counts := map[string]int{"rendered": len(r.Files), "failed": len(r.Failures)}
	for _, f := range r.Files {
		if f.Tracked {
			counts[f.Outcome.String()]++
		}
	}
	return counts
}
