package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	testboil.FailTestIfDiff(t, cfg.FlashModel, "gemini-1.5-flash")
	testboil.FailTestIfDiff(t, cfg.ProModel, "gemini-1.5-pro")
	testboil.FailTestIfDiff(t, cfg.BaseURL, "https://generativelanguage.googleapis.com/v1beta/models")
	testboil.FailTestIfDiff(t, cfg.TimeoutSeconds, 30)
	testboil.FailTestIfDiff(t, cfg.MaxWorkers, 2)
	testboil.FailTestIfDiff(t, cfg.APIKey, "")
}

func TestLoadConfigProjectOverride(t *testing.T) {
	isolate(t)
	if err := os.MkdirAll(".gemini-collab", 0755); err != nil {
		t.Fatal(err)
	}
	yaml := "flash_model: custom-flash\ntimeout_seconds: 5\n"
	if err := os.WriteFile(filepath.Join(".gemini-collab", "config.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	testboil.FailTestIfDiff(t, cfg.FlashModel, "custom-flash")
	testboil.FailTestIfDiff(t, cfg.TimeoutSeconds, 5)
	// Untouched fields keep their defaults
	testboil.FailTestIfDiff(t, cfg.ProModel, "gemini-1.5-pro")
}

func TestLoadConfigUserOverriddenByProject(t *testing.T) {
	isolate(t)
	home := os.Getenv("HOME")
	if err := os.MkdirAll(filepath.Join(home, ".gemini-collab"), 0755); err != nil {
		t.Fatal(err)
	}
	userYaml := "flash_model: user-flash\npro_model: user-pro\n"
	if err := os.WriteFile(filepath.Join(home, ".gemini-collab", "config.yaml"), []byte(userYaml), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(".gemini-collab", 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(".gemini-collab", "config.yaml"), []byte("flash_model: project-flash\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	testboil.FailTestIfDiff(t, cfg.FlashModel, "project-flash")
	testboil.FailTestIfDiff(t, cfg.ProModel, "user-pro")
}

func TestLoadConfigReadsCredentialFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("GEMINI_API_KEY", "secret-key")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	testboil.FailTestIfDiff(t, cfg.APIKey, "secret-key")
}

func TestLoadConfigBadYAML(t *testing.T) {
	isolate(t)
	if err := os.MkdirAll(".gemini-collab", 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(".gemini-collab", "config.yaml"), []byte("{not yaml"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}
