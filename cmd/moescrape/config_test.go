package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"moescrape/pkg/config"
)

// The init template must survive a round trip through the loader,
// otherwise 'config init' hands the user a file 'config validate'
// rejects.
func TestExampleConfigLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moescrape.yaml")
	if err := os.WriteFile(path, []byte(exampleConfig), 0644); err != nil {
		t.Fatalf("failed to write template: %v", err)
	}

	cfg := config.DefaultConfig()
	if err := cfg.LoadFromFile(path); err != nil {
		t.Fatalf("generated template failed to load: %v", err)
	}

	if cfg.API.Timeout != 30*time.Second {
		t.Errorf("API.Timeout = %v, want 30s", cfg.API.Timeout)
	}
	if cfg.RateLimit.MaxJitter != 100*time.Millisecond {
		t.Errorf("RateLimit.MaxJitter = %v, want 100ms", cfg.RateLimit.MaxJitter)
	}
	if cfg.Retry.BaseDelay != 2*time.Second {
		t.Errorf("Retry.BaseDelay = %v, want 2s", cfg.Retry.BaseDelay)
	}
	if cfg.Retry.MaxDelay != 60*time.Second {
		t.Errorf("Retry.MaxDelay = %v, want 60s", cfg.Retry.MaxDelay)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("generated template failed validation: %v", err)
	}
}
