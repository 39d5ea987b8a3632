package museums

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/samvad-hq/collection-probe/pkg/fetcher"
	"gopkg.in/yaml.v3"
)

// Package museums holds collection source definitions (YAML/JSON) and the
// inspectors that summarise their responses.

const (
	FormatJSON = "json"
	FormatHTML = "html"
)

// ParamSpec is one query parameter as declared in the sources file.
// Value may be any scalar; it is stringified when the query is built.
type ParamSpec struct {
	Name  string `json:"name" yaml:"name"`
	Value any    `json:"value" yaml:"value"`
}

// Source describes one collection endpoint.
type Source struct {
	ID      string      `json:"id" yaml:"id"`
	Name    string      `json:"name" yaml:"name"`
	Type    string      `json:"type" yaml:"type"`
	BaseURL string      `json:"base_url" yaml:"base_url"`
	Format  string      `json:"format" yaml:"format"`
	Params  []ParamSpec `json:"params" yaml:"params"`
	// APIKeySecret names the configuration secret holding the API key.
	APIKeySecret string `json:"api_key_secret" yaml:"api_key_secret"`
	// APIKeyParam is the query parameter the key travels in.
	APIKeyParam string         `json:"api_key_param" yaml:"api_key_param"`
	Config      map[string]any `json:"config" yaml:"config"`
}

// ParseJSON reports whether responses from this source are decoded as JSON.
func (s Source) ParseJSON() bool {
	return s.Format == FormatJSON
}

// Query builds the ordered collection query: the API key parameter first when
// configured, then params in file order. An empty key is passed through as is.
func (s Source) Query(apiKey string) fetcher.Query {
	q := make(fetcher.Query, 0, len(s.Params)+1)
	if s.APIKeyParam != "" {
		q = q.Add(s.APIKeyParam, apiKey)
	}
	for _, p := range s.Params {
		q = q.Add(p.Name, p.Value)
	}
	return q
}

// SecretParams returns the query parameter names that carry credentials.
func (s Source) SecretParams() []string {
	if s.APIKeyParam == "" {
		return nil
	}
	return []string{s.APIKeyParam}
}

type registryFile struct {
	Sources []Source `json:"sources" yaml:"sources"`
}

// Registry materializes source definitions loaded from config files.
type Registry struct {
	mu      sync.RWMutex
	sources []Source
	idx     map[string]Source
}

// LoadRegistry loads sources from a YAML or JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sources file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sources file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read sources file: %w", err)
	}

	return ParseRegistry(raw, filepath.Ext(path))
}

// ParseRegistry decodes and validates registry content. ext selects the
// decoder (".yaml", ".yml", ".json"); an empty ext tries each in turn.
func ParseRegistry(data []byte, ext string) (*Registry, error) {
	file, err := parseRegistryFile(data, ext)
	if err != nil {
		return nil, err
	}
	if len(file.Sources) == 0 {
		return nil, errors.New("sources file contains no sources entries")
	}

	reg := &Registry{
		sources: make([]Source, len(file.Sources)),
		idx:     make(map[string]Source, len(file.Sources)),
	}
	for i := range file.Sources {
		s := sanitizeSource(file.Sources[i])
		if err := validateSource(s); err != nil {
			return nil, fmt.Errorf("source[%d]: %w", i, err)
		}
		if _, exists := reg.idx[s.ID]; exists {
			return nil, fmt.Errorf("duplicate source id %q", s.ID)
		}
		reg.sources[i] = s
		reg.idx[s.ID] = s
	}
	return reg, nil
}

type unmarshalFn func([]byte, any) error

func parseRegistryFile(data []byte, ext string) (registryFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var file registryFile
		if err := d.fn(data, &file); err == nil {
			return file, nil
		}
	}

	return registryFile{}, errors.New("sources file format not recognized (expected YAML or JSON)")
}

func sanitizeSource(s Source) Source {
	s.ID = strings.TrimSpace(s.ID)
	s.Name = strings.TrimSpace(s.Name)
	s.Type = strings.ToLower(strings.TrimSpace(s.Type))
	s.BaseURL = strings.TrimSpace(s.BaseURL)
	s.Format = strings.ToLower(strings.TrimSpace(s.Format))
	s.APIKeySecret = strings.TrimSpace(s.APIKeySecret)
	s.APIKeyParam = strings.TrimSpace(s.APIKeyParam)

	if s.Format == "" {
		s.Format = FormatJSON
	}
	if s.Config == nil {
		s.Config = map[string]any{}
	}
	params := make([]ParamSpec, 0, len(s.Params))
	for _, p := range s.Params {
		p.Name = strings.TrimSpace(p.Name)
		params = append(params, p)
	}
	s.Params = params

	return s
}

func validateSource(s Source) error {
	if s.ID == "" {
		return errors.New("id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("name is required for source %q", s.ID)
	}
	if s.Type == "" {
		return fmt.Errorf("type is required for source %q", s.ID)
	}
	if s.BaseURL == "" {
		return fmt.Errorf("base_url is required for source %q", s.ID)
	}
	if u, err := url.Parse(s.BaseURL); err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("base_url for source %q must be an absolute url", s.ID)
	}
	if s.Format != FormatJSON && s.Format != FormatHTML {
		return fmt.Errorf("format for source %q must be %q or %q", s.ID, FormatJSON, FormatHTML)
	}
	for i, p := range s.Params {
		if p.Name == "" {
			return fmt.Errorf("params[%d] for source %q has no name", i, s.ID)
		}
	}
	if s.APIKeySecret != "" && s.APIKeyParam == "" {
		return fmt.Errorf("api_key_param is required when api_key_secret is set for source %q", s.ID)
	}
	return nil
}

// ByID returns the source with the given id.
func (r *Registry) ByID(id string) (Source, bool) {
	if r == nil {
		return Source{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Source{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.idx[id]
	return s, ok
}

// All returns all configured sources in file order.
func (r *Registry) All() []Source {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// Select returns the sources with the given ids in the order asked for.
// An empty ids list returns every source.
func (r *Registry) Select(ids []string) ([]Source, error) {
	if len(ids) == 0 {
		return r.All(), nil
	}
	out := make([]Source, 0, len(ids))
	for _, id := range ids {
		s, ok := r.ByID(id)
		if !ok {
			return nil, fmt.Errorf("unknown source %q", id)
		}
		out = append(out, s)
	}
	return out, nil
}
