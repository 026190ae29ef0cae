// Package config handles workspace configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/matsen/citegraph/internal/datastore"
	"github.com/matsen/citegraph/internal/search"
	"github.com/matsen/citegraph/internal/source"
	"github.com/matsen/citegraph/internal/viz"
)

// Config represents workspace configuration stored in .citegraph/config.json.
type Config struct {
	PapersURL       string  `json:"papers_url"`                  // Title index document
	EdgesURL        string  `json:"edges_url"`                   // Adjacency document
	SearchIndexURL  string  `json:"search_index_url"`            // Search index document
	FallbackTitle   string  `json:"fallback_title,omitempty"`    // Label for papers without a title
	RecenterOnClick *bool   `json:"recenter_on_click,omitempty"` // Node click selects the node
	PopularCount    int     `json:"popular_count,omitempty"`     // Size of the popular papers list
	FetchRate       float64 `json:"fetch_rate,omitempty"`        // HTTP requests per second
	ListenAddr      string  `json:"listen_addr,omitempty"`       // Address for 'citegraph serve'
}

const (
	WorkspaceDir = ".citegraph"
	ConfigFile   = "config.json"
	CacheDir     = "cache"
	DBFile       = "graph.db"

	DefaultPapersFile      = "papers.json"
	DefaultEdgesFile       = "citation_edges.json"
	DefaultSearchIndexFile = "search_index.json"
	DefaultListenAddr      = "127.0.0.1:8080"
)

// Keys lists the settable configuration keys.
var Keys = []string{
	"papers_url", "edges_url", "search_index_url",
	"fallback_title", "recenter_on_click", "popular_count", "fetch_rate", "listen_addr",
}

// Default returns the configuration written by 'citegraph init'.
func Default() *Config {
	recenter := true
	return &Config{
		PapersURL:       DefaultPapersFile,
		EdgesURL:        DefaultEdgesFile,
		SearchIndexURL:  DefaultSearchIndexFile,
		FallbackTitle:   viz.DefaultFallbackTitle,
		RecenterOnClick: &recenter,
		PopularCount:    search.DefaultLimit,
		FetchRate:       source.DefaultRate,
		ListenAddr:      DefaultListenAddr,
	}
}

// WorkspacePath returns the path to the .citegraph directory from a root path.
func WorkspacePath(root string) string {
	return filepath.Join(root, WorkspaceDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, WorkspaceDir, ConfigFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, WorkspaceDir, CacheDir)
}

// DBPath returns the path to the snapshot cache from a root path.
func DBPath(root string) string {
	return filepath.Join(root, WorkspaceDir, CacheDir, DBFile)
}

// IsWorkspace checks if the given path contains a citegraph workspace.
func IsWorkspace(root string) bool {
	info, err := os.Stat(WorkspacePath(root))
	return err == nil && info.IsDir()
}

// FindWorkspace walks up from the given path to find a citegraph workspace.
// Returns the workspace root path or an error if not found.
func FindWorkspace(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsWorkspace(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNoWorkspace
		}
		abs = parent
	}
}

// Load reads configuration from the workspace at the given root.
// Unset optional fields take their defaults.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := Default()
	if c.FallbackTitle == "" {
		c.FallbackTitle = def.FallbackTitle
	}
	if c.RecenterOnClick == nil {
		c.RecenterOnClick = def.RecenterOnClick
	}
	if c.PopularCount <= 0 {
		c.PopularCount = def.PopularCount
	}
	if c.FetchRate == 0 {
		c.FetchRate = def.FetchRate
	}
	if c.ListenAddr == "" {
		c.ListenAddr = def.ListenAddr
	}
}

// Save writes configuration to the workspace at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Validate checks that all three documents are configured with supported schemes.
func (c *Config) Validate() error {
	docs := []struct{ key, value string }{
		{"papers_url", c.PapersURL},
		{"edges_url", c.EdgesURL},
		{"search_index_url", c.SearchIndexURL},
	}
	for _, d := range docs {
		if d.value == "" {
			return fmt.Errorf("%w: %s is not set", ErrInvalidConfig, d.key)
		}
		if source.SchemeOf(d.value) == source.SchemeOther {
			return fmt.Errorf("%w: %s has unsupported scheme: %s", ErrInvalidConfig, d.key, d.value)
		}
	}
	return nil
}

// Locations returns the document locations. Relative local paths are resolved
// against the workspace root.
func (c *Config) Locations(root string) datastore.Locations {
	resolve := func(loc string) string {
		if source.SchemeOf(loc) != source.SchemeFile || strings.Contains(loc, "://") {
			return loc
		}
		loc = ExpandPath(loc)
		if filepath.IsAbs(loc) {
			return loc
		}
		return filepath.Join(root, loc)
	}
	return datastore.Locations{
		Titles:      resolve(c.PapersURL),
		Adjacency:   resolve(c.EdgesURL),
		SearchIndex: resolve(c.SearchIndexURL),
	}
}

// GraphOptions returns the graph building policy.
func (c *Config) GraphOptions() viz.Options {
	opts := viz.DefaultOptions()
	if c.FallbackTitle != "" {
		opts.FallbackTitle = c.FallbackTitle
	}
	if c.RecenterOnClick != nil {
		opts.AllowRecenterOnNodeClick = *c.RecenterOnClick
	}
	return opts
}

// Get returns the value of key as a string.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "papers_url":
		return c.PapersURL, nil
	case "edges_url":
		return c.EdgesURL, nil
	case "search_index_url":
		return c.SearchIndexURL, nil
	case "fallback_title":
		return c.FallbackTitle, nil
	case "recenter_on_click":
		if c.RecenterOnClick == nil {
			return "", nil
		}
		return strconv.FormatBool(*c.RecenterOnClick), nil
	case "popular_count":
		return strconv.Itoa(c.PopularCount), nil
	case "fetch_rate":
		return strconv.FormatFloat(c.FetchRate, 'g', -1, 64), nil
	case "listen_addr":
		return c.ListenAddr, nil
	default:
		return "", unknownKey(key)
	}
}

// Set parses value and assigns it to key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "papers_url":
		c.PapersURL = value
	case "edges_url":
		c.EdgesURL = value
	case "search_index_url":
		c.SearchIndexURL = value
	case "fallback_title":
		c.FallbackTitle = value
	case "recenter_on_click":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: recenter_on_click must be true or false", ErrInvalidConfig)
		}
		c.RecenterOnClick = &b
	case "popular_count":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: popular_count must be a positive integer", ErrInvalidConfig)
		}
		c.PopularCount = n
	case "fetch_rate":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: fetch_rate must be a number", ErrInvalidConfig)
		}
		c.FetchRate = f
	case "listen_addr":
		c.ListenAddr = value
	default:
		return unknownKey(key)
	}
	return nil
}

func unknownKey(key string) error {
	valid := append([]string(nil), Keys...)
	sort.Strings(valid)
	return fmt.Errorf("%w: unknown key %q (valid: %s)", ErrInvalidConfig, key, strings.Join(valid, ", "))
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
