package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/gandalf/internal/config"
	"github.com/roach88/gandalf/internal/render"
	"github.com/roach88/gandalf/internal/tree"
	"github.com/roach88/gandalf/internal/version"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Config       string
	Vars         string
	Previous     string
	DNSDir       string
	Schema       string
	Ext          string
	SerialScheme string
	DB           string
	Jobs         int
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "render [<csv> <templates> <output>]",
		Short: "Render templates against the inventory",
		Long: `Render a template file or template directory against the records of a
CSV inventory and write the results under the output path.

Files whose output path lies under the DNS directory are version-tracked:
their SOA serial is kept when the content is unchanged from the previous
output at the same path, and bumped otherwise.

The three paths may come from a project file given with --config instead.

Example:
  gandalf render hosts.csv templates/ out/
  gandalf render --var vars.yaml --previous /etc/bind hosts.csv templates/ out/
  gandalf render --config gandalf.yaml`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 3 {
				return NewExitError(ExitUsage, ErrCodeUsage,
					fmt.Sprintf("render takes 0 or 3 arguments, got %d", len(args)))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "project file (gandalf.yaml)")
	cmd.Flags().StringVar(&opts.Vars, "var", "", "YAML file of variables exposed as .Var")
	cmd.Flags().StringVar(&opts.Previous, "previous", "", "root of the previous output (default: the output root)")
	cmd.Flags().StringVar(&opts.DNSDir, "dns-dir", defaults.DNSDir, "output subdirectory of version-tracked zone files")
	cmd.Flags().StringVar(&opts.Schema, "schema", "", "CUE file defining #Record (default: built-in host schema)")
	cmd.Flags().StringVar(&opts.Ext, "ext", "", "template extension stripped from output names")
	cmd.Flags().StringVar(&opts.SerialScheme, "serial-scheme", defaults.SerialScheme, "serial scheme (date|counter)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "serve records from a SQLite snapshot at this path")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", defaults.Jobs, "templates rendered concurrently")

	return cmd
}

// resolveConfig layers the project file, flags and arguments.
func resolveConfig(opts *RenderOptions, args []string, cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if opts.Config != "" {
		loaded, err := config.Load(opts.Config)
		if err != nil {
			return nil, WrapExitError(ExitUsage, ErrCodeUsage, "invalid project file", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	overrides := []struct {
		flag string
		dst  *string
		val  string
	}{
		{"var", &cfg.Vars, opts.Vars},
		{"previous", &cfg.Previous, opts.Previous},
		{"dns-dir", &cfg.DNSDir, opts.DNSDir},
		{"schema", &cfg.Schema, opts.Schema},
		{"ext", &cfg.TemplateExt, opts.Ext},
		{"serial-scheme", &cfg.SerialScheme, opts.SerialScheme},
		{"db", &cfg.DB, opts.DB},
	}
	for _, o := range overrides {
		if flags.Changed(o.flag) {
			*o.dst = o.val
		}
	}
	if flags.Changed("jobs") {
		cfg.Jobs = opts.Jobs
	}
	if len(args) == 3 {
		cfg.CSV, cfg.Templates, cfg.Output = args[0], args[1], args[2]
	}

	var missing []string
	for _, f := range []struct{ name, val string }{{"csv", cfg.CSV}, {"templates", cfg.Templates}, {"output", cfg.Output}} {
		if f.val == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, NewExitError(ExitUsage, ErrCodeUsage, "missing "+strings.Join(missing, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, WrapExitError(ExitUsage, ErrCodeUsage, "invalid settings", err)
	}
	return cfg, nil
}

// RenderSummary is the JSON payload of a render run.
type RenderSummary struct {
	Output   string          `json:"output"`
	Files    []RenderedFile  `json:"files"`
	Failures []RenderFailure `json:"failures,omitempty"`
	Counts   map[string]int  `json:"counts"`
}

// RenderedFile describes one written file.
type RenderedFile struct {
	Path     string `json:"path"`
	Tracked  bool   `json:"tracked"`
	Serial   string `json:"serial,omitempty"`
	Previous string `json:"previous,omitempty"`
	Outcome  string `json:"outcome,omitempty"`
}

// RenderFailure describes one failed template.
type RenderFailure struct {
	Path     string `json:"path"`
	Template string `json:"template"`
	Stage    string `json:"stage"`
	Error    string `json:"error"`
}

func runRender(opts *RenderOptions, args []string, cmd *cobra.Command) error {
	s := newSession(opts.RootOptions, cmd)
	ctx := cmd.Context()

	cfg, err := resolveConfig(opts, args, cmd)
	if err != nil {
		return s.formatter.Fail(err)
	}

	recs, err := loadInventory(cfg.CSV, cfg.Schema, s.logger)
	if err != nil {
		return s.formatter.Fail(err)
	}
	vars, err := loadVars(cfg.Vars, cfg.Var)
	if err != nil {
		return s.formatter.Fail(err)
	}

	minter, err := version.MinterByName(cfg.SerialScheme)
	if err != nil {
		return s.formatter.Fail(WrapExitError(ExitUsage, ErrCodeUsage, "invalid serial scheme", err))
	}
	plan, err := tree.Find(cfg.Templates, cfg.Output, cfg.TemplateExt)
	if err != nil {
		return s.formatter.Fail(WrapExitError(ExitUsage, ErrCodeUsage, "could not find templates", err))
	}

	st, closeStore, err := openStore(ctx, cfg.DB, recs, s.logger)
	if err != nil {
		return s.formatter.Fail(err)
	}
	defer closeStore()

	previous := cfg.Previous
	if previous == "" {
		previous = plan.Root
	}

	engineOpts := []version.Option{version.WithMinter(minter), version.WithLogger(s.logger)}
	if opts.Clock != nil {
		engineOpts = append(engineOpts, version.WithClock(opts.Clock))
	}

	s.logger.Info("rendering", "templates", cfg.Templates, "output", plan.Root, "files", len(plan.Items), "records", len(recs))
	renderer := render.New(render.Options{
		Store:    st,
		Vars:     vars,
		DNSDir:   cfg.DNSDir,
		Previous: version.PreviousLocator{Root: previous, Logger: s.logger},
		Engine:   version.NewEngine(engineOpts...),
		Writer:   tree.DirWriter{Root: plan.Root},
		Jobs:     cfg.Jobs,
		Logger:   s.logger,
	})
	report := renderer.RenderAll(ctx, plan.Items)

	summary := summarize(plan.Root, report)
	if report.Failed() {
		e := WrapExitError(ExitRenderFailed, ErrCodeRenderFailed,
			fmt.Sprintf("%d of %d templates failed", len(report.Failures), len(plan.Items)), report.Err())
		e.Details = summary
		return s.formatter.Fail(e)
	}
	return s.formatter.Success(summary, summaryText(summary))
}

func summarize(root string, report *render.Report) RenderSummary {
	summary := RenderSummary{Output: root, Files: []RenderedFile{}, Counts: report.Counts()}
	for _, f := range report.Files {
		rf := RenderedFile{Path: f.Path, Tracked: f.Tracked}
		if f.Serial != nil {
			rf.Serial = f.Serial.String()
			rf.Outcome = f.Outcome.String()
		}
		if f.Previous != nil {
			rf.Previous = f.Previous.String()
		}
		summary.Files = append(summary.Files, rf)
	}
	for _, f := range report.Failures {
		summary.Failures = append(summary.Failures, RenderFailure{
			Path:     f.Path,
			Template: f.Template,
			Stage:    f.Stage,
			Error:    f.Err.Error(),
		})
	}
	return summary
}

func summaryText(s RenderSummary) string {
	var b strings.Builder
	for _, f := range s.Files {
		if f.Tracked {
			fmt.Fprintf(&b, "  %s  serial %s (%s)\n", f.Path, f.Serial, f.Outcome)
		} else {
			fmt.Fprintf(&b, "  %s\n", f.Path)
		}
	}
	fmt.Fprintf(&b, "✓ Rendered %d file(s) into %s", len(s.Files), s.Output)
	return b.String()
}
