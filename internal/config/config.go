// Package config reads the optional gandalf.yaml project file and the
// auxiliary variables file exposed to templates as .Var.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/gandalf/internal/version"
)

// DefaultFile is the project file name looked up in the working directory.
const DefaultFile = "gandalf.yaml"

// Config holds the settings of a render run. Relative paths in a project
// file are resolved against the file's directory.
type Config struct {
	CSV          string         `yaml:"csv"`
	Templates    string         `yaml:"templates"`
	Output       string         `yaml:"output"`
	Previous     string         `yaml:"previous"`
	DNSDir       string         `yaml:"dns_dir"`
	Vars         string         `yaml:"vars"`
	Schema       string         `yaml:"schema"`
	TemplateExt  string         `yaml:"template_ext"`
	SerialScheme string         `yaml:"serial_scheme"`
	DB           string         `yaml:"db"`
	Jobs         int            `yaml:"jobs"`
	Var          map[string]any `yaml:"var"`
}

// Default returns the settings used when neither a project file nor a flag
// provides a value.
func Default() *Config {
	return &Config{
		DNSDir:       "dns",
		SerialScheme: "date",
		Jobs:         1,
	}
}

// ReadError reports a file that could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("could not read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// SyntaxError reports a file that is not valid YAML or does not have the
// expected shape.
type SyntaxError struct {
	Path string
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Load reads a project file on top of Default. Unknown keys are errors.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &SyntaxError{Path: path, Err: err}
	}
	cfg.resolve(filepath.Dir(path))

	if err := cfg.Validate(); err != nil {
		return nil, &SyntaxError{Path: path, Err: err}
	}
	return cfg, nil
}

// resolve makes relative paths relative to dir.
func (c *Config) resolve(dir string) {
	for _, p := range []*string{&c.CSV, &c.Templates, &c.Output, &c.Previous, &c.Vars, &c.Schema, &c.DB} {
		if *p != "" && !filepath.IsAbs(*p) && *p != ":memory:" {
			*p = filepath.Join(dir, *p)
		}
	}
}

// Validate checks values that can be wrong independently of the file system.
func (c *Config) Validate() error {
	if _, err := version.MinterByName(c.SerialScheme); err != nil {
		return err
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", c.Jobs)
	}
	return nil
}

// LoadVars reads a YAML variables file. The top level must be a mapping; an
// empty file yields an empty map.
func LoadVars(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	return ParseVars(path, data)
}

// ParseVars decodes variables read from name.
func ParseVars(name string, data []byte) (map[string]any, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &SyntaxError{Path: name, Err: err}
	}
	vars := map[string]any{}
	if len(node.Content) == 0 {
		return vars, nil
	}
	if root := node.Content[0]; root.Kind != yaml.MappingNode {
		return nil, &SyntaxError{Path: name, Err: fmt.Errorf("line %d: top level must be a mapping", root.Line)}
	}
	if err := node.Decode(&vars); err != nil {
		return nil, &SyntaxError{Path: name, Err: err}
	}
	return vars, nil
}

// MergeVars overlays file variables on inline ones from the project file.
func MergeVars(inline, file map[string]any) map[string]any {
	out := make(map[string]any, len(inline)+len(file))
	for k, v := range inline {
		out[k] = v
	}
	for k, v := range file {
		out[k] = v
	}
	return out
}
