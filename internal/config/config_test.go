package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ListenAddr != "127.0.0.1:65001" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.DBDriver != "sqlite" {
		t.Errorf("DBDriver = %q", cfg.DBDriver)
	}
	if cfg.SweepInterval != 2*time.Second {
		t.Errorf("SweepInterval = %v", cfg.SweepInterval)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", "0.0.0.0:7000")
	t.Setenv("SWEEP_INTERVAL_SECONDS", "10")
	t.Setenv("DB_DRIVER", "postgres")

	cfg := Load()
	if cfg.ListenAddr != "0.0.0.0:7000" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.SweepInterval != 10*time.Second {
		t.Errorf("SweepInterval = %v", cfg.SweepInterval)
	}
	if cfg.DBDriver != "postgres" {
		t.Errorf("DBDriver = %q", cfg.DBDriver)
	}
}

func TestGetEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("SWEEP_INTERVAL_SECONDS", "soon")
	if got := getEnvInt("SWEEP_INTERVAL_SECONDS", 2); got != 2 {
		t.Errorf("getEnvInt = %d, want the fallback 2", got)
	}
}
