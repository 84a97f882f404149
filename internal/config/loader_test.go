package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	if cfg.Model.Name != "gpt-3.5-turbo" {
		t.Errorf("Model.Name = %q, want default", cfg.Model.Name)
	}
	if cfg.Agent.MaxSteps != 5 {
		t.Errorf("Agent.MaxSteps = %d, want 5", cfg.Agent.MaxSteps)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
}

func TestLoadParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shopsage.yaml")
	data := `
model:
  name: gpt-4o
  temperature: 0.3
agent:
  max_steps: 7
server:
  port: 9090
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := Load(path)

	if cfg.Model.Name != "gpt-4o" {
		t.Errorf("Model.Name = %q, want gpt-4o", cfg.Model.Name)
	}
	if cfg.Agent.MaxSteps != 7 {
		t.Errorf("Agent.MaxSteps = %d, want 7", cfg.Agent.MaxSteps)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Meilisearch.Host != "http://localhost:7700" {
		t.Errorf("Meilisearch.Host = %q, want default", cfg.Meilisearch.Host)
	}
}

func TestLoadMalformedFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("model: [not a map"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := Load(path)
	if cfg.Model.Name != "gpt-3.5-turbo" {
		t.Errorf("Model.Name = %q, want default after parse failure", cfg.Model.Name)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DATABASE_URL", "postgres://envhost/db")
	t.Setenv("MEILI_MASTER_KEY", "masterkey")

	cfg := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	if cfg.Model.APIKey != "sk-test" {
		t.Errorf("Model.APIKey = %q, want env value", cfg.Model.APIKey)
	}
	if cfg.Database.URL != "postgres://envhost/db" {
		t.Errorf("Database.URL = %q, want env value", cfg.Database.URL)
	}
	if cfg.Meilisearch.APIKey != "masterkey" {
		t.Errorf("Meilisearch.APIKey = %q, want env value", cfg.Meilisearch.APIKey)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "shopsage.yaml")
	cfg := DefaultConfig()
	cfg.Model.Name = "gpt-4o-mini"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := Load(path)
	if loaded.Model.Name != "gpt-4o-mini" {
		t.Errorf("Model.Name = %q after round trip, want gpt-4o-mini", loaded.Model.Name)
	}
}
