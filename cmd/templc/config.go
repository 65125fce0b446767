package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"doctemplates/cmd/templc/macro"
	"doctemplates/cmd/templc/macroyaml"
)

// appName is the single source of truth for the application name.
// All derived identifiers (env vars, config paths, error messages) are computed from it.
const appName = "templc"

// Derived env var names, computed once at init from appName.
var (
	envConfigDir = strings.ToUpper(appName) + "_CONFIG_DIR"
	envTemplates = strings.ToUpper(appName) + "_TEMPLATES"
)

// resolveConfigDir returns the base config directory for the application.
// Priority: $<APPNAME>_CONFIG_DIR > $XDG_CONFIG_HOME/<appName> > ~/.config/<appName>
func resolveConfigDir() (string, error) {
	if v := os.Getenv(envConfigDir); v != "" {
		return v, nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// resolveTemplateFiles returns all template files to load.
// Order: configDir/templates/*.yml → $<APPNAME>_TEMPLATES → flagFiles
// Missing directories are silently skipped; explicitly provided paths are kept as-is
// (errors will surface at read time with a clear message).
func resolveTemplateFiles(configDir string, flagFiles []string) ([]string, error) {
	autoFiles, err := globYAML(filepath.Join(configDir, "templates"))
	if err != nil {
		return nil, err
	}
	files := autoFiles
	files = append(files, splitColon(os.Getenv(envTemplates))...)
	files = append(files, flagFiles...)
	return files, nil
}

// globYAML returns sorted *.yml / *.yaml files in dir.
// Returns nil without error if dir does not exist.
func globYAML(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yml") || strings.HasSuffix(name, ".yaml") {
			files = append(files, filepath.Join(dir, name))
		}
	}
	return files, nil
}

// splitColon splits a colon-separated string, filtering empty parts.
func splitColon(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ":")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// readSources resolves the template files and reads them in order.
func readSources(flagFiles []string) ([][]byte, error) {
	configDir, err := resolveConfigDir()
	if err != nil {
		return nil, err
	}
	files, err := resolveTemplateFiles(configDir, flagFiles)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf(
			"no template files found: add *.yml files to %s, set $%s, or use --file",
			filepath.Join(configDir, "templates"), envTemplates,
		)
	}

	inputs := make([][]byte, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("template file %s: %w", f, err)
		}
		inputs = append(inputs, data)
	}
	return inputs, nil
}

// workspace is a loaded template set: the sources as written and the table
// they compile to.
type workspace struct {
	registry *macro.Registry
	table    macro.Table
}

// source returns the template as written, for parameter names.
func (ws *workspace) source(name macro.Identifier) macro.Template {
	t, _ := ws.registry.Get(name)
	return t
}

// lookup returns the compiled template or an error naming the closest match.
func (ws *workspace) lookup(name string) (*macro.CompiledTemplate, error) {
	if c, ok := ws.table[macro.Identifier(name)]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("template %q not found\navailable: %s", name, joinNames(ws.table.Names()))
}

// load reads and compiles every configured template file.
func load(flagFiles []string, trace io.Writer) (*workspace, error) {
	inputs, err := readSources(flagFiles)
	if err != nil {
		return nil, err
	}
	return compileSources(inputs, trace)
}

func compileSources(inputs [][]byte, trace io.Writer) (*workspace, error) {
	reg, err := macroyaml.ParseMany(inputs...)
	if err != nil {
		return nil, err
	}
	if reg.Len() == 0 {
		return nil, fmt.Errorf("no templates defined in the loaded files")
	}
	table, err := newEngine(trace).Compile(reg.Templates())
	if err != nil {
		return nil, err
	}
	return &workspace{registry: reg, table: table}, nil
}

func newEngine(trace io.Writer) *macro.Engine {
	var opts []macro.Option
	if trace != nil {
		opts = append(opts, macro.WithTrace(trace))
	}
	return macro.NewEngine(macro.StandardCatalogue(), opts...)
}

func joinNames(names []macro.Identifier) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}
