// Package library reads a YAML manifest of scripted functions and builds
// them with the matching engine.
//
//	functions:
//	  - name: double
//	    engine: starlark
//	    source: |
//	      def main(x):
//	          return x * 2
//	  - name: stamp
//	    engine: risor
//	    dependencies: [current-date-time]
//	    source: ctx["now"]
//	  - name: greet
//	    engine: extism
//	    entrypoint: greet
//	    path: plugins/greet.wasm
//
// Relative paths resolve against the directory of a manifest loaded from
// disk.
package library

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/robbyt/go-xfn/platform/deps"
	"github.com/robbyt/go-xfn/platform/script/loader"
)

// Engine names a scripting backend.
type Engine string

const (
	EngineStarlark Engine = "starlark"
	EngineRisor    Engine = "risor"
	EngineExpr     Engine = "expr"
	EngineExtism   Engine = "extism"
)

var (
	ErrInvalidManifest = errors.New("invalid library manifest")
	ErrUnknownEngine   = errors.New("unknown engine")
)

// Manifest is the decoded library document.
type Manifest struct {
	Functions []FunctionSpec `yaml:"functions"`

	// baseDir is set when the manifest came from disk.
	baseDir string
}

// FunctionSpec declares one scripted function.
type FunctionSpec struct {
	Name         string   `yaml:"name"`
	Engine       Engine   `yaml:"engine"`
	Entrypoint   string   `yaml:"entrypoint,omitempty"`
	Dependencies []string `yaml:"dependencies,omitempty"`
	Source       string   `yaml:"source,omitempty"`
	Path         string   `yaml:"path,omitempty"`
}

// Parse decodes and validates a manifest.
func Parse(data []byte) (*Manifest, error) {
	m := &Manifest{}
	if err := yaml.UnmarshalWithOptions(data, m, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Load reads a manifest from ldr.
func Load(ldr loader.Loader) (*Manifest, error) {
	data, err := loader.ReadAll(ldr)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ldr.GetSourceURL(), err)
	}
	m.baseDir = baseDir(ldr.GetSourceURL())
	return m, nil
}

func baseDir(u *url.URL) string {
	if u == nil || u.Scheme != "file" {
		return ""
	}
	return filepath.Dir(u.Path)
}

// Validate checks names, engines, sources and dependency names.
func (m *Manifest) Validate() error {
	if len(m.Functions) == 0 {
		return fmt.Errorf("%w: no functions declared", ErrInvalidManifest)
	}
	seen := make(map[string]struct{}, len(m.Functions))
	for i, fs := range m.Functions {
		if fs.Name == "" {
			return fmt.Errorf("%w: function %d has no name", ErrInvalidManifest, i)
		}
		if _, dup := seen[fs.Name]; dup {
			return fmt.Errorf("%w: duplicate function %q", ErrInvalidManifest, fs.Name)
		}
		seen[fs.Name] = struct{}{}

		if err := fs.validate(); err != nil {
			return fmt.Errorf("%w: function %q: %w", ErrInvalidManifest, fs.Name, err)
		}
	}
	return nil
}

func (fs FunctionSpec) validate() error {
	switch fs.Engine {
	case EngineStarlark, EngineRisor, EngineExpr, EngineExtism:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEngine, fs.Engine)
	}
	if (fs.Source == "") == (fs.Path == "") {
		return fmt.Errorf("exactly one of source or path is required")
	}
	if fs.Entrypoint != "" && (fs.Engine == EngineRisor || fs.Engine == EngineExpr) {
		return fmt.Errorf("engine %s does not take an entrypoint", fs.Engine)
	}
	if _, err := fs.DependencySet(); err != nil {
		return err
	}
	return nil
}

// DependencySet parses the declared dependency names.
func (fs FunctionSpec) DependencySet() (deps.Set, error) {
	return deps.ParseList(fs.Dependencies)
}

// sourceLoader returns the loader for the function body. Inline extism
// sources are base64 text.
func (m *Manifest) sourceLoader(fs FunctionSpec) (loader.Loader, error) {
	if fs.Source != "" {
		return loader.NewFromString(fs.Source)
	}
	path := fs.Path
	if !filepath.IsAbs(path) && m.baseDir != "" {
		path = filepath.Join(m.baseDir, path)
	}
	return loader.NewFromDisk(path)
}
