package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Env string

	// Local database
	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Remote collaborators. Empty PlanServiceURL selects the local store.
	PlanServiceURL    string
	FinanceServiceURL string
	ServiceAPIKey     string
	RequestTimeout    time.Duration

	// Active plan persistence
	StateBackend string
	StateDir     string
	UserID       string

	// Grid
	GridMonths int
}

// Remote reports whether the engine talks to the remote Plan Service.
func (c *Config) Remote() bool {
	return c.PlanServiceURL != ""
}

// StatePath returns the file used by the file-backed state store.
func (c *Config) StatePath() string {
	return filepath.Join(c.StateDir, "state.toml")
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env: getEnv("ENV", "development"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBPath:     getEnv("DB_PATH", "echoplan.db"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "echoplan"),
		DBPassword: getEnv("DB_PASSWORD", "echoplan"),
		DBName:     getEnv("DB_NAME", "echoplan"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		PlanServiceURL:    strings.TrimRight(getEnv("PLAN_SERVICE_URL", ""), "/"),
		FinanceServiceURL: strings.TrimRight(getEnv("FINANCE_SERVICE_URL", ""), "/"),
		ServiceAPIKey:     getEnv("SERVICE_API_KEY", ""),

		StateBackend: strings.ToLower(getEnv("STATE_BACKEND", "db")),
		StateDir:     getEnv("STATE_DIR", defaultStateDir()),
		UserID:       getEnv("USER_ID", "local"),
	}

	if config.DBDriver != "sqlite" && config.DBDriver != "postgres" {
		return nil, fmt.Errorf("invalid DB_DRIVER %q: must be sqlite or postgres", config.DBDriver)
	}
	if config.StateBackend != "db" && config.StateBackend != "file" {
		return nil, fmt.Errorf("invalid STATE_BACKEND %q: must be db or file", config.StateBackend)
	}
	if config.FinanceServiceURL == "" {
		config.FinanceServiceURL = config.PlanServiceURL
	}

	timeout, err := parseTimeout(getEnv("REQUEST_TIMEOUT", ""))
	if err != nil {
		return nil, err
	}
	config.RequestTimeout = timeout

	months, err := strconv.Atoi(getEnv("GRID_MONTHS", "6"))
	if err != nil || months < 1 || months > 36 {
		return nil, fmt.Errorf("invalid GRID_MONTHS %q: must be between 1 and 36", getEnv("GRID_MONTHS", "6"))
	}
	config.GridMonths = months

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

func defaultStateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "echoplan")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "echoplan")
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 15 * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid REQUEST_TIMEOUT %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %v", d)
	}
	return d, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
