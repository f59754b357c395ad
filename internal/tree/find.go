// Package tree maps a template file or directory onto the output tree and
// writes rendered files into it.
package tree

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Item is one template and the output path it renders to.
type Item struct {
	// Template is the filesystem path of the template file.
	Template string

	// Rel is the output path relative to Plan.Root, slash-separated.
	Rel string

	// Parent is the directory a single-file item is written into. It is
	// empty for items found by walking a template directory.
	Parent string
}

// Tracked reports whether the item lands inside dir. Directory items are
// matched on Rel; single-file items also match when their Parent ends in
// dir, so rendering straight to out/dns/example.com is still tracked.
func (it Item) Tracked(dir string) bool {
	if Under(it.Rel, dir) {
		return true
	}
	if it.Parent == "" {
		return false
	}
	dir = strings.Trim(path.Clean("/"+filepath.ToSlash(dir)), "/")
	if dir == "" {
		return false
	}
	parent := path.Clean(filepath.ToSlash(it.Parent))
	return parent == dir || strings.HasSuffix(parent, "/"+dir)
}

// Plan is the set of templates to render and the directory they render into.
type Plan struct {
	Root  string
	Items []Item
}

// Find builds the render plan.
//
// A single template file renders to output itself, or into output when
// output is an existing directory. A template directory is walked
// recursively and mirrored under output. When ext is non-empty it is
// stripped from output file names that end with it. Items are in lexical
// path order.
func Find(templates, output, ext string) (*Plan, error) {
	info, err := os.Stat(templates)
	if err != nil {
		return nil, fmt.Errorf("templates: %w", err)
	}

	if !info.IsDir() {
		if out, err := os.Stat(output); err == nil && out.IsDir() {
			return &Plan{
				Root:  output,
				Items: []Item{{Template: templates, Rel: stripExt(filepath.Base(templates), ext), Parent: output}},
			}, nil
		}
		root := filepath.Dir(output)
		return &Plan{
			Root:  root,
			Items: []Item{{Template: templates, Rel: filepath.Base(output), Parent: root}},
		}, nil
	}

	plan := &Plan{Root: output}
	err = filepath.WalkDir(templates, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(templates, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		dir, name := path.Split(rel)
		plan.Items = append(plan.Items, Item{Template: p, Rel: dir + stripExt(name, ext)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk templates: %w", err)
	}
	return plan, nil
}

func stripExt(name, ext string) string {
	if ext == "" || name == ext || !strings.HasSuffix(name, ext) {
		return name
	}
	return strings.TrimSuffix(name, ext)
}

// Under reports whether the slash-separated relative path rel lies inside
// dir. An empty dir contains nothing.
func Under(rel, dir string) bool {
	dir = strings.Trim(path.Clean("/"+filepath.ToSlash(dir)), "/")
	if dir == "" {
		return false
	}
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
	return rel == dir || strings.HasPrefix(rel, dir+"/")
}
