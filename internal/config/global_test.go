package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := GlobalConfigPath(), "/custom/config/citegraph/config.yml"; got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	if got, want := GlobalConfigPath(), filepath.Join(home, ".config", "citegraph", "config.yml"); got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}
}

func writeGlobalConfig(t *testing.T, content string) {
	t.Helper()
	ResetGlobalConfigCache()
	t.Cleanup(ResetGlobalConfigCache)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	if content == "" {
		return
	}
	dir := filepath.Join(tmpDir, GlobalConfigDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, GlobalConfigFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadGlobalConfig_NotFound(t *testing.T) {
	writeGlobalConfig(t, "")

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg.WorkspacePath != "" || cfg.S3.Region != "" {
		t.Errorf("LoadGlobalConfig() = %+v, want empty", cfg)
	}
}

func TestLoadGlobalConfig_Valid(t *testing.T) {
	writeGlobalConfig(t, `workspace_path: /data/graph
s3:
  region: eu-central-1
  endpoint: http://localhost:9000
  access_key: minio
  secret_key: minio123
`)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg.WorkspacePath != "/data/graph" {
		t.Errorf("WorkspacePath = %q", cfg.WorkspacePath)
	}
	if cfg.S3.Region != "eu-central-1" || cfg.S3.Endpoint != "http://localhost:9000" || cfg.S3.AccessKey != "minio" {
		t.Errorf("S3 = %+v", cfg.S3)
	}
}

func TestLoadGlobalConfig_Invalid(t *testing.T) {
	writeGlobalConfig(t, "workspace_path: [unclosed")

	if _, err := LoadGlobalConfig(); err == nil {
		t.Error("LoadGlobalConfig() should fail for invalid YAML")
	}
}

func TestGlobalConfigCache(t *testing.T) {
	writeGlobalConfig(t, "workspace_path: /first\n")

	first, err := LoadGlobalConfig()
	if err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(os.Getenv("XDG_CONFIG_HOME"), GlobalConfigDir, GlobalConfigFile), []byte("workspace_path: /second\n"), 0644)

	second, _ := LoadGlobalConfig()
	if second != first {
		t.Error("LoadGlobalConfig() did not use the cache")
	}

	ResetGlobalConfigCache()
	third, _ := LoadGlobalConfig()
	if third.WorkspacePath != "/second" {
		t.Errorf("after reset WorkspacePath = %q, want /second", third.WorkspacePath)
	}
}

func TestGetConfigValue(t *testing.T) {
	t.Setenv("CITEGRAPH_TEST_KEY", "from-env")
	if got := GetConfigValue("CITEGRAPH_TEST_KEY", "from-config"); got != "from-env" {
		t.Errorf("GetConfigValue() = %q, want from-env", got)
	}

	t.Setenv("CITEGRAPH_TEST_KEY", "")
	if got := GetConfigValue("CITEGRAPH_TEST_KEY", "from-config"); got != "from-config" {
		t.Errorf("GetConfigValue() = %q, want from-config", got)
	}
}

func TestS3Settings(t *testing.T) {
	writeGlobalConfig(t, "s3:\n  region: us-west-2\n  access_key: file-key\n  secret_key: file-secret\n")
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_ENDPOINT", "")
	t.Setenv("AWS_ACCESS_KEY", "env-key")
	t.Setenv("AWS_SECRET_KEY", "")

	got := S3Settings()
	if got.Region != "us-west-2" || got.AccessKey != "env-key" || got.SecretKey != "file-secret" {
		t.Errorf("S3Settings() = %+v", got)
	}
}

func TestResolveWorkspace(t *testing.T) {
	ws := t.TempDir()
	os.MkdirAll(WorkspacePath(ws), 0755)
	writeGlobalConfig(t, "workspace_path: "+ws+"\n")

	got, err := ResolveWorkspace(t.TempDir())
	if err != nil {
		t.Fatalf("ResolveWorkspace() error = %v", err)
	}
	if got != ws {
		t.Errorf("ResolveWorkspace() = %q, want %q", got, ws)
	}
}

func TestResolveWorkspace_NoFallback(t *testing.T) {
	writeGlobalConfig(t, "")

	if _, err := ResolveWorkspace(t.TempDir()); err == nil {
		t.Error("ResolveWorkspace() should fail without workspace or global default")
	}
}

func TestHelpfulConfigMessage(t *testing.T) {
	msg := HelpfulConfigMessage()
	for _, want := range []string{"citegraph init", "workspace_path", GlobalConfigFile} {
		if !strings.Contains(msg, want) {
			t.Errorf("HelpfulConfigMessage() missing %q", want)
		}
	}
}
