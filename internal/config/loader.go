package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
)

// Source is where a setting was last written.
type Source struct {
	Kind   SourceKind
	File   string
	Line   int
	Column int
}

func (s Source) String() string {
	if s.Kind != SourceFile || s.File == "" {
		return string(SourceDefault)
	}
	if s.Line > 0 {
		return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
	}
	return s.File
}

type LoadResult struct {
	Config  *Config
	Sources map[string]Source // YAML-path -> last writer source (file only)
	Files   []string          // all loaded files, in load order
}

func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "maxmode", "config.yaml"), nil
}

// Load reads the configuration from the standard location. A missing file
// yields the defaults.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithSources loads config and returns file-level sources for introspection.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads the config file at path and everything it includes.
func LoadFromPath(path string) (*LoadResult, error) {
	l := &loader{
		seen:    make(map[string]struct{}),
		sources: make(map[string]Source),
	}

	if _, err := os.Stat(path); err == nil {
		if err := l.load(path); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg := l.raw.apply()
	if err := cfg.Validate(); err != nil {
		return nil, withSource(err, l.sources)
	}
	return &LoadResult{
		Config:  cfg,
		Sources: l.sources,
		Files:   l.files,
	}, nil
}

// loader merges a config file with its includes. Includes are applied first,
// in order, and the including file overrides them.
type loader struct {
	raw     RawConfig
	sources map[string]Source
	files   []string

	seen  map[string]struct{}
	stack []string
}

func (l *loader) load(path string) error {
	canon := canonicalPath(path)
	if slices.Contains(l.stack, canon) {
		chain := append(append([]string(nil), l.stack...), canon)
		return fmt.Errorf("include cycle detected: %s", strings.Join(chain, " -> "))
	}
	if _, ok := l.seen[canon]; ok {
		return nil
	}
	l.seen[canon] = struct{}{}

	data, err := os.ReadFile(canon)
	if err != nil {
		return fmt.Errorf("%s: failed to read: %w", canon, err)
	}
	var raw RawConfig
	if err := decodeStrictYAML(data, &raw); err != nil {
		return fmt.Errorf("%s: %w", canon, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%s: failed to parse yaml: %w", canon, err)
	}
	top := rootMapping(&doc)

	l.stack = append(l.stack, canon)
	for _, inc := range includeNodes(top) {
		paths, err := expandInclude(canon, inc.Value)
		if err != nil {
			return fmt.Errorf("%s:%d:%d: include %q: %w", canon, inc.Line, inc.Column, inc.Value, err)
		}
		for _, p := range paths {
			if err := l.load(p); err != nil {
				return err
			}
		}
	}
	l.stack = l.stack[:len(l.stack)-1]

	l.raw = l.raw.merge(raw)
	recordSources(top, canon, "", l.sources)
	l.files = append(l.files, canon)
	return nil
}

func decodeStrictYAML(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// canonicalPath resolves symlinks when it can, so the same file reached two
// ways is loaded once.
func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real
	}
	return abs
}

// expandInclude resolves an include entry to files. A directory contributes
// its *.yaml and *.yml files in name order.
func expandInclude(baseFile string, include string) ([]string, error) {
	path, err := resolveInclude(baseFile, include)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(ent.Name())) {
		case ".yaml", ".yml":
			files = append(files, filepath.Join(path, ent.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

func resolveInclude(baseFile string, include string) (string, error) {
	if include == "" {
		return "", fmt.Errorf("path is empty")
	}
	if include == "~" || strings.HasPrefix(include, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		include = filepath.Join(home, strings.TrimPrefix(include, "~"))
	}
	if filepath.IsAbs(include) {
		return include, nil
	}
	return filepath.Join(filepath.Dir(baseFile), include), nil
}

func rootMapping(doc *yaml.Node) *yaml.Node {
	node := doc
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil
	}
	return node
}

// includeNodes returns the scalar nodes of the top-level include key.
func includeNodes(top *yaml.Node) []*yaml.Node {
	if top == nil {
		return nil
	}
	for i := 0; i+1 < len(top.Content); i += 2 {
		if top.Content[i].Value != "include" {
			continue
		}
		val := top.Content[i+1]
		switch val.Kind {
		case yaml.ScalarNode:
			return []*yaml.Node{val}
		case yaml.SequenceNode:
			var out []*yaml.Node
			for _, item := range val.Content {
				if item.Kind == yaml.ScalarNode {
					out = append(out, item)
				}
			}
			return out
		}
		return nil
	}
	return nil
}

// recordSources stores the position of every value under node, keyed by its
// dotted path. Later files overwrite earlier ones.
func recordSources(node *yaml.Node, file string, prefix string, out map[string]Source) {
	if node == nil || node.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		path := key.Value
		if prefix != "" {
			path = prefix + "." + path
		}
		out[path] = Source{Kind: SourceFile, File: file, Line: val.Line, Column: val.Column}
		recordSources(val, file, path, out)
	}
}

// withSource fills in the file position of a ValidationError.
func withSource(err error, sources map[string]Source) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	if src, ok := sources[verr.Path]; ok {
		verr.Source = src
	}
	return verr
}
