package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the matchmaker configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Oracle   OracleConfig   `yaml:"oracle"`
	Matching MatchingConfig `yaml:"matching"`
	Auth     AuthConfig     `yaml:"auth"`
	Events   EventsConfig   `yaml:"events"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds bearer token settings. An empty secret disables token checks.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
	TokenTTL  int    `yaml:"token_ttl_hours"` // used by the token command
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, valkey, postgres (default: redis)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	DSN              string   `yaml:"dsn"` // postgres only; addrs then optionally back budget counters
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IsPostgres reports whether entities and matches live in Postgres.
func (d DatabaseConfig) IsPostgres() bool { return d.Driver == "postgres" }

// OracleConfig holds the scoring oracle settings.
type OracleConfig struct {
	Provider    string       `yaml:"provider"`
	APIKey      string       `yaml:"api_key"`
	BaseURL     string       `yaml:"base_url"`
	Model       string       `yaml:"model"`
	Temperature float32      `yaml:"temperature"`
	TimeoutSec  int          `yaml:"timeout_sec"`
	Budget      BudgetConfig `yaml:"budget"`
}

// BudgetConfig holds token budget settings.
type BudgetConfig struct {
	DailyTokenLimit   int64  `yaml:"daily_token_limit"`   // 0 = unlimited
	MonthlyTokenLimit int64  `yaml:"monthly_token_limit"` // 0 = unlimited
	Action            string `yaml:"action"`              // "reject" | "warn" (default)
}

// Enabled reports whether any limit is set.
func (b BudgetConfig) Enabled() bool {
	return b.DailyTokenLimit > 0 || b.MonthlyTokenLimit > 0
}

// MatchingConfig holds candidate selection and scoring settings.
type MatchingConfig struct {
	MinScore       float64 `yaml:"min_score"`
	TopN           int     `yaml:"top_n"`
	Concurrency    int     `yaml:"concurrency"`
	MaxAttempts    int     `yaml:"max_attempts"`
	RetryBackoffMs int     `yaml:"retry_backoff_ms"`
}

// EventsConfig holds the optional NATS publisher settings. An empty URL disables events.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// a run waits on up to top_n oracle calls
		c.HTTP.WriteTimeoutSec = 300
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Oracle.Provider == "" {
		c.Oracle.Provider = "gemini"
	}
	if c.Oracle.Model == "" {
		c.Oracle.Model = "gemini-2.0-flash"
	}
	if c.Oracle.TimeoutSec <= 0 {
		c.Oracle.TimeoutSec = 60
	}
	if c.Matching.MinScore <= 0 {
		c.Matching.MinScore = 0.1
	}
	if c.Matching.TopN <= 0 {
		c.Matching.TopN = 20
	}
	if c.Matching.Concurrency <= 0 {
		c.Matching.Concurrency = 5
	}
	if c.Matching.MaxAttempts <= 0 {
		c.Matching.MaxAttempts = 1
	}
	if c.Matching.RetryBackoffMs <= 0 {
		c.Matching.RetryBackoffMs = 500
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "matchmaker"
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 24
	}
	if c.Events.Subject == "" {
		c.Events.Subject = "matches.computed"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "redis", "valkey":
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", c.Database.Driver)
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for driver \"postgres\"")
		}
	default:
		return fmt.Errorf("database.driver must be \"redis\", \"valkey\" or \"postgres\", got %q", c.Database.Driver)
	}
	switch c.Oracle.Budget.Action {
	case "", "warn", "reject":
		// ok
	default:
		return fmt.Errorf(
			"oracle.budget.action must be \"warn\" or \"reject\", got %q",
			c.Oracle.Budget.Action,
		)
	}
	if c.Oracle.Temperature < 0 || c.Oracle.Temperature > 2 {
		return fmt.Errorf("oracle.temperature must be between 0 and 2, got %v", c.Oracle.Temperature)
	}
	if c.Matching.MinScore >= 1 {
		return fmt.Errorf("matching.min_score must be below 1, got %v", c.Matching.MinScore)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
