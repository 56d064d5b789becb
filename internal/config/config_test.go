package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DatasetsRoot != DefaultDatasetsRoot || cfg.SampleLimit != DefaultSampleLimit {
		t.Errorf("defaults: %+v", cfg)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("log defaults: %+v", cfg.Log)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "semforge.yaml")
	content := "datasets_root: /data/csv\nsample_limit: 500\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DatasetsRoot != "/data/csv" || cfg.SampleLimit != 500 {
		t.Errorf("file values: %+v", cfg)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level: %s", cfg.Log.Level)
	}
	// Unset file fields keep their defaults.
	if cfg.RegistryPath != DefaultRegistryPath {
		t.Errorf("registry path: %s", cfg.RegistryPath)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	cfg := Default()
	env := map[string]string{
		"SEMFORGE_DATASETS_ROOT": "/mnt/datasets",
		"SEMFORGE_SAMPLE_LIMIT":  "100",
		"SEMFORGE_LOG_FORMAT":    "json",
	}
	if err := applyEnv(&cfg, func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}); err != nil {
		t.Fatal(err)
	}
	if cfg.DatasetsRoot != "/mnt/datasets" || cfg.SampleLimit != 100 || cfg.Log.Format != "json" {
		t.Errorf("env overrides: %+v", cfg)
	}
}

func TestEnvBadInteger(t *testing.T) {
	cfg := Default()
	err := applyEnv(&cfg, func(key string) (string, bool) {
		if key == "SEMFORGE_SAMPLE_LIMIT" {
			return "lots", true
		}
		return "", false
	})
	if err == nil {
		t.Fatal("expected error for non-numeric sample limit")
	}
}

func TestNormalizeClampsSampleLimit(t *testing.T) {
	cfg := Default()
	cfg.SampleLimit = -5
	cfg.normalize()
	if cfg.SampleLimit != DefaultSampleLimit {
		t.Errorf("sample limit: %d", cfg.SampleLimit)
	}
}
