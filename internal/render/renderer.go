package render

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/template"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/gandalf/internal/records"
	"github.com/roach88/gandalf/internal/tree"
	"github.com/roach88/gandalf/internal/version"
	"github.com/roach88/gandalf/internal/view"
)

// DefaultDNSDir is the output subdirectory whose files are version-tracked.
const DefaultDNSDir = "dns"

// Options configures a Renderer.
type Options struct {
	// Store is the record store exposed as .DB. Required.
	Store records.Store

	// Vars is exposed as .Var.
	Vars map[string]any

	// DNSDir marks output paths under it as version-tracked. Empty disables
	// tracking.
	DNSDir string

	// Previous locates prior output of tracked files.
	Previous version.PreviousLocator

	// Engine runs the versioning protocol. Defaults to version.NewEngine().
	Engine *version.Engine

	// Writer persists rendered files. Required.
	Writer tree.Writer

	// Jobs bounds how many files render concurrently. Values below 2 render
	// sequentially.
	Jobs int

	Logger *slog.Logger
}

// Renderer renders template files into the output tree.
type Renderer struct {
	opts   Options
	logger *slog.Logger
}

// New creates a Renderer.
func New(opts Options) *Renderer {
	if opts.Engine == nil {
		opts.Engine = version.NewEngine()
	}
	if opts.Vars == nil {
		opts.Vars = map[string]any{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Renderer{opts: opts, logger: logger}
}

// Tracked reports whether item is version-tracked.
func (r *Renderer) Tracked(item tree.Item) bool {
	return item.Tracked(r.opts.DNSDir)
}

// RenderAll renders every item. Failures are collected in the report and
// never stop other files. Report entries follow the order of items.
func (r *Renderer) RenderAll(ctx context.Context, items []tree.Item) *Report {
	results := make([]*FileResult, len(items))
	failures := make([]*FileError, len(items))

	renderOne := func(i int) {
		if err := ctx.Err(); err != nil {
			failures[i] = &FileError{Path: items[i].Rel, Template: items[i].Template, Stage: StageRender, Err: err}
			return
		}
		res, err := r.RenderFile(ctx, items[i])
		if err != nil {
			failures[i] = err
			r.logger.Error("template failed", "path", err.Path, "template", err.Template, "stage", err.Stage, "error", err.Err)
			return
		}
		results[i] = res
	}

	if r.opts.Jobs > 1 {
		var g errgroup.Group
		g.SetLimit(r.opts.Jobs)
		for i := range items {
			g.Go(func() error {
				renderOne(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range items {
			renderOne(i)
		}
	}

	report := &Report{}
	for i := range items {
		if results[i] != nil {
			report.Files = append(report.Files, *results[i])
		}
		if failures[i] != nil {
			report.Failures = append(report.Failures, failures[i])
		}
	}
	return report
}

// RenderFile renders and writes one template.
func (r *Renderer) RenderFile(ctx context.Context, item tree.Item) (*FileResult, *FileError) {
	fail := func(stage string, err error) *FileError {
		return &FileError{Path: item.Rel, Template: item.Template, Stage: stage, Err: err}
	}

	src, err := os.ReadFile(item.Template)
	if err != nil {
		return nil, fail(StageRead, err)
	}

	tmpl, err := Parse(item.Template, string(src))
	if err != nil {
		return nil, fail(StageParse, err)
	}

	exec := func(rc *version.RenderContext) (string, error) {
		return r.Execute(tmpl, item.Rel, rc)
	}

	res := &FileResult{Path: item.Rel, Template: item.Template, Tracked: r.Tracked(item)}
	var text string
	if res.Tracked {
		prev := r.opts.Previous.Locate(item.Rel)
		vr, err := r.opts.Engine.Render(ctx, item.Rel, exec, prev)
		if err != nil {
			stage := StageRender
			if version.IsOverflow(err) {
				stage = StageVersion
			}
			return nil, fail(stage, err)
		}
		text = vr.Text
		res.Serial = &vr.Token
		res.Previous = vr.Previous
		res.Outcome = vr.Outcome
	} else {
		text, err = exec(r.opts.Engine.InitialContext())
		if err != nil {
			return nil, fail(StageRender, err)
		}
	}

	if err := r.opts.Writer.Write(item.Rel, text); err != nil {
		return nil, fail(StageWrite, err)
	}
	res.Bytes = len(text)

	attrs := []any{"path", item.Rel, "tracked", res.Tracked}
	if res.Serial != nil {
		attrs = append(attrs, "serial", res.Serial.String(), "outcome", res.Outcome.String())
	}
	r.logger.Info("rendered", attrs...)
	return res, nil
}

// Parse compiles template source with the gandalf function map.
// Missing map keys are execution errors.
func Parse(name, src string) (*template.Template, error) {
	return template.New(name).Option("missingkey=error").Funcs(FuncMap()).Parse(src)
}

// Execute runs tmpl once against a fresh namespace bound to rc.
func (r *Renderer) Execute(tmpl *template.Template, rel string, rc *version.RenderContext) (string, error) {
	ns := &Namespace{
		DB:   r.opts.Store,
		Var:  r.opts.Vars,
		Path: rel,
		View: view.New(),
		rc:   rc,
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ns); err != nil {
		return "", fmt.Errorf("execute: %w", err)
	}
	return buf.String(), nil
}
