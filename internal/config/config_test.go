package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setEnv(t *testing.T, env map[string]string) {
	t.Helper()

	for _, key := range []string{
		"ENV", "DB_DRIVER", "DB_PATH", "PLAN_SERVICE_URL", "FINANCE_SERVICE_URL", "SERVICE_API_KEY",
		"REQUEST_TIMEOUT", "STATE_BACKEND", "STATE_DIR", "USER_ID", "GRID_MONTHS",
	} {
		t.Setenv(key, "")
	}
	for k, v := range env {
		t.Setenv(k, v)
	}
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setEnv(t, map[string]string{"XDG_STATE_HOME": "/tmp/xdg"})
		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.DBDriver != "sqlite" || cfg.DBPath != "echoplan.db" {
			t.Errorf("unexpected database defaults: %s %s", cfg.DBDriver, cfg.DBPath)
		}
		if cfg.Remote() {
			t.Error("expected local mode without PLAN_SERVICE_URL")
		}
		if cfg.RequestTimeout != 15*time.Second {
			t.Errorf("expected 15s timeout, got %v", cfg.RequestTimeout)
		}
		if cfg.GridMonths != 6 {
			t.Errorf("expected 6 grid months, got %d", cfg.GridMonths)
		}
		if cfg.StatePath() != filepath.Join("/tmp/xdg", "echoplan", "state.toml") {
			t.Errorf("unexpected state path %s", cfg.StatePath())
		}
		if cfg.UserID != "local" || cfg.StateBackend != "db" {
			t.Errorf("unexpected defaults: user %s backend %s", cfg.UserID, cfg.StateBackend)
		}
	})

	t.Run("remote_mode", func(t *testing.T) {
		setEnv(t, map[string]string{
			"PLAN_SERVICE_URL": "https://plans.example.com/",
			"SERVICE_API_KEY":  "secret",
			"REQUEST_TIMEOUT":  "3s",
			"DB_DRIVER":        "POSTGRES",
			"STATE_BACKEND":    "file",
			"GRID_MONTHS":      "12",
		})
		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cfg.Remote() {
			t.Error("expected remote mode")
		}
		if cfg.PlanServiceURL != "https://plans.example.com" {
			t.Errorf("expected trailing slash trimmed, got %s", cfg.PlanServiceURL)
		}
		if cfg.FinanceServiceURL != cfg.PlanServiceURL {
			t.Errorf("expected finance URL to default to plan URL, got %s", cfg.FinanceServiceURL)
		}
		if cfg.RequestTimeout != 3*time.Second || cfg.DBDriver != "postgres" || cfg.StateBackend != "file" || cfg.GridMonths != 12 {
			t.Errorf("unexpected config: %+v", cfg)
		}
	})

	invalid := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"driver", map[string]string{"DB_DRIVER": "mysql"}, "DB_DRIVER"},
		{"state_backend", map[string]string{"STATE_BACKEND": "redis"}, "STATE_BACKEND"},
		{"timeout", map[string]string{"REQUEST_TIMEOUT": "soon"}, "REQUEST_TIMEOUT"},
		{"negative_timeout", map[string]string{"REQUEST_TIMEOUT": "-1s"}, "REQUEST_TIMEOUT"},
		{"grid_months", map[string]string{"GRID_MONTHS": "0"}, "GRID_MONTHS"},
		{"grid_months_nan", map[string]string{"GRID_MONTHS": "six"}, "GRID_MONTHS"},
	}
	for _, tt := range invalid {
		t.Run("invalid_"+tt.name, func(t *testing.T) {
			setEnv(t, tt.env)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %s, got %v", tt.want, err)
			}
		})
	}
}
