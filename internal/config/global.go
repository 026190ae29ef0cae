package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/matsen/citegraph/internal/source"
)

// Errors returned by workspace resolution and validation.
var (
	// ErrNoWorkspace is returned when no .citegraph directory is found.
	ErrNoWorkspace = errors.New("not in a citegraph workspace (no .citegraph directory found)")

	// ErrInvalidConfig is returned for malformed or incomplete configuration.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// GlobalConfig represents configuration stored in ~/.config/citegraph/config.yml.
type GlobalConfig struct {
	WorkspacePath string          `yaml:"workspace_path,omitempty"`
	S3            source.S3Config `yaml:"s3,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "citegraph"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/citegraph/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.WorkspacePath != "" {
		cfg.WorkspacePath = ExpandPath(cfg.WorkspacePath)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetConfigValue returns the environment variable envKey if set, else configValue.
func GetConfigValue(envKey, configValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return configValue
}

// S3Settings returns the S3 connection settings, with AWS_REGION, AWS_ENDPOINT,
// AWS_ACCESS_KEY and AWS_SECRET_KEY taking priority over the global config.
func S3Settings() source.S3Config {
	cfg, err := LoadGlobalConfig()
	if err != nil || cfg == nil {
		cfg = &GlobalConfig{}
	}
	return source.S3Config{
		Region:    GetConfigValue("AWS_REGION", cfg.S3.Region),
		Endpoint:  GetConfigValue("AWS_ENDPOINT", cfg.S3.Endpoint),
		AccessKey: GetConfigValue("AWS_ACCESS_KEY", cfg.S3.AccessKey),
		SecretKey: GetConfigValue("AWS_SECRET_KEY", cfg.S3.SecretKey),
	}
}

// ResolveWorkspace finds the workspace containing start, falling back to
// workspace_path from the global config.
func ResolveWorkspace(start string) (string, error) {
	root, err := FindWorkspace(start)
	if err == nil {
		return root, nil
	}

	cfg, gerr := LoadGlobalConfig()
	if gerr != nil {
		return "", gerr
	}
	if cfg.WorkspacePath == "" {
		return "", err
	}
	if !IsWorkspace(cfg.WorkspacePath) {
		return "", fmt.Errorf("%w: workspace_path %s has no .citegraph directory", ErrNoWorkspace, cfg.WorkspacePath)
	}
	return cfg.WorkspacePath, nil
}

// HelpfulConfigMessage returns a hint shown when no workspace is found.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No citegraph workspace found.

Run 'citegraph init' in the directory holding papers.json, citation_edges.json
and search_index.json, or create %s to set a default:
  mkdir -p %s
  echo 'workspace_path: /path/to/your/workspace' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
