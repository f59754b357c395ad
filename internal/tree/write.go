package tree

import (
	"fmt"
	"os"
	"path/filepath"
)

// Writer persists a rendered file at a relative output path.
type Writer interface {
	Write(rel string, text string) error
}

// DirWriter writes files under Root, creating parent directories.
//
// Files are written to a temporary sibling and renamed into place, so a
// reader never sees a half-written file and an interrupted run leaves the
// previous output intact.
type DirWriter struct {
	Root string
	Perm os.FileMode
}

// Write writes text to Root/rel.
func (w DirWriter) Write(rel string, text string) error {
	perm := w.Perm
	if perm == 0 {
		perm = 0o644
	}

	target := filepath.Join(w.Root, filepath.FromSlash(rel))
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create directory %s: %w", dir, err)
	}

	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, []byte(text), perm); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("could not write %s: %w", target, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("could not write %s: %w", target, err)
	}
	return nil
}
