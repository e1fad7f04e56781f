package database

import (
	"path/filepath"
	"testing"

	"echoplan/internal/config"
	"echoplan/internal/models"
)

func TestNewManager(t *testing.T) {
	t.Run("sqlite_auto_migrates", func(t *testing.T) {
		cfg := &Config{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "data", "echoplan.db")}
		m, err := NewManager(cfg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer func() { _ = m.Close() }()

		if err := m.Migrate(); err != nil {
			t.Fatalf("unexpected migrate error: %v", err)
		}
		for _, model := range models.AllModels() {
			if !m.DB().Migrator().HasTable(model) {
				t.Errorf("expected table for %T", model)
			}
		}
	})

	t.Run("unknown_driver", func(t *testing.T) {
		if _, err := NewManager(&Config{Driver: "mysql"}); err == nil {
			t.Error("expected error for unsupported driver")
		}
	})
}

func TestConfig(t *testing.T) {
	cfg := NewConfig(&config.Config{
		DBDriver: "postgres", DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "n", DBSSLMode: "disable",
	})
	if cfg.URL() != "postgres://u:p@db:5432/n?sslmode=disable" {
		t.Errorf("unexpected URL %s", cfg.URL())
	}
	if cfg.DSN() != "host=db port=5432 user=u password=p dbname=n sslmode=disable" {
		t.Errorf("unexpected DSN %s", cfg.DSN())
	}
	if cfg.MigrationsDir != "migrations" {
		t.Errorf("unexpected migrations dir %s", cfg.MigrationsDir)
	}
}
