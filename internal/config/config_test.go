package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.DataBackend != BackendSQLite {
		t.Errorf("DataBackend = %q, want sqlite", cfg.DataBackend)
	}
	if cfg.ResponseDelayMin != time.Second || cfg.ResponseDelayMax != 2*time.Second {
		t.Errorf("response delay = [%s, %s], want [1s, 2s]", cfg.ResponseDelayMin, cfg.ResponseDelayMax)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("RESPONSE_DELAY_MIN", "0s")
	t.Setenv("RESPONSE_DELAY_MAX", "0s")
	t.Setenv("SYNC_BATCH_SIZE", "25")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.DataBackend != BackendMemory {
		t.Errorf("DataBackend = %q, want memory", cfg.DataBackend)
	}
	if cfg.ResponseDelayMax != 0 {
		t.Errorf("ResponseDelayMax = %s, want 0s", cfg.ResponseDelayMax)
	}
	if cfg.SyncBatchSize != 25 {
		t.Errorf("SyncBatchSize = %d, want 25", cfg.SyncBatchSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("overridden config should validate: %v", err)
	}
}

func TestLoadMalformedValuesFallBack(t *testing.T) {
	t.Setenv("SYNC_BATCH_SIZE", "lots")
	t.Setenv("RESPONSE_DELAY_MIN", "soon")

	cfg := Load()
	if cfg.SyncBatchSize != 10 {
		t.Errorf("SyncBatchSize = %d, want fallback 10", cfg.SyncBatchSize)
	}
	if cfg.ResponseDelayMin != time.Second {
		t.Errorf("ResponseDelayMin = %s, want fallback 1s", cfg.ResponseDelayMin)
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := Load()
	cfg.Port = "notaport"
	cfg.DataBackend = "postgres"
	cfg.AMQPURL = "http://broker"
	cfg.ResponseDelayMin = 3 * time.Second
	cfg.ResponseDelayMax = time.Second

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"PORT", "DATA_BACKEND", "AMQP_URL", "RESPONSE_DELAY_MAX"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("validation error should mention %s: %v", want, err)
		}
	}
}
