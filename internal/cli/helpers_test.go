package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/gandalf/internal/testutil"
)

const testRunID = "run-test"

const hostsCSV = `hostname,ip,mac,vlan,role
ns1,10.0.10.2,AA:BB:CC:00:00:01,10,dns
web1,10.0.10.11,aa:bb:cc:00:00:02,10,web
db1,10.0.20.21,aa:bb:cc:00:00:03,20,db
printer,10.0.30.5,,30,other
`

const zoneTemplate = "$TTL 3600\n" +
	"@\tIN\tSOA\tns1.{{ .Var.domain }}. hostmaster.{{ .Var.domain }}. (\n" +
	"\t{{ .DNSVersion }} ; serial\n" +
	"\t3600 900 604800 300 )\n" +
	"{{ .View.Use \"dns\" }}{{ .View.Call (.DB.Search (where \"vlan == 10\")) }}"

// project is an inventory, a template tree and a variables file on disk.
type project struct {
	dir       string
	csv       string
	templates string
	output    string
	vars      string
}

func newProject(t *testing.T) *project {
	t.Helper()
	dir := t.TempDir()
	p := &project{
		dir:       dir,
		csv:       filepath.Join(dir, "hosts.csv"),
		templates: filepath.Join(dir, "templates"),
		output:    filepath.Join(dir, "out"),
		vars:      filepath.Join(dir, "vars.yaml"),
	}
	p.write(t, "hosts.csv", hostsCSV)
	p.write(t, "vars.yaml", "domain: example.com\n")
	p.write(t, "templates/hosts.tmpl", "{{ .View.Use \"hosts\" }}{{ .View.Call (.DB.All) }}")
	p.write(t, "templates/dns/example.com.tmpl", zoneTemplate)
	return p
}

func (p *project) write(t *testing.T, rel, content string) string {
	t.Helper()
	path := filepath.Join(p.dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (p *project) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(p.output, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

// renderArgs are the usual arguments of a render run over the project.
func (p *project) renderArgs(extra ...string) []string {
	args := []string{"render", "--var", p.vars, "--ext", ".tmpl"}
	args = append(args, extra...)
	return append(args, p.csv, p.templates, p.output)
}

// withJSON adds --format json after the subcommand name.
func withJSON(args []string) []string {
	return append([]string{args[0], "--format", "json"}, args[1:]...)
}

func testOptions() *RootOptions {
	return &RootOptions{
		RunIDs: testutil.NewFixedRunIDGenerator(testRunID),
		Clock:  testutil.Day(2026, 10, 18),
	}
}

// execute runs the root command and returns stdout, stderr and the error.
func execute(t *testing.T, opts *RootOptions, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand(opts)
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
