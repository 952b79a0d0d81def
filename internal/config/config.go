package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Groq       GroqConfig       `yaml:"groq"`
	ExerciseDB ExerciseDBConfig `yaml:"exercisedb"`
	Session    SessionConfig    `yaml:"session"`
	Tailscale  TailscaleConfig  `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// AuthConfig holds the unlock PIN. PINHash (bcrypt) takes precedence over PIN.
type AuthConfig struct {
	PIN     string `yaml:"pin"`
	PINHash string `yaml:"pin_hash"`
}

type GroqConfig struct {
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url"`
	ProgramModel string `yaml:"program_model"`
	NoteModel    string `yaml:"note_model"`
}

type ExerciseDBConfig struct {
	RapidAPIKey string `yaml:"rapidapi_key"`
	BaseURL     string `yaml:"base_url"`
	WgerBaseURL string `yaml:"wger_base_url"`
	CacheMB     int    `yaml:"cache_mb"`
}

type SessionConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix REPRX_ and underscore-separated paths:
//
//	REPRX_SERVER_HOST, REPRX_SERVER_PORT,
//	REPRX_DB_HOST, REPRX_DB_PORT, REPRX_DB_NAME,
//	REPRX_DB_USER, REPRX_DB_PASSWORD, REPRX_DB_SSLMODE,
//	REPRX_AUTH_PIN, REPRX_AUTH_PIN_HASH,
//	REPRX_GROQ_API_KEY, REPRX_EXERCISEDB_RAPIDAPI_KEY,
//	REPRX_SESSION_TICK_INTERVAL, REPRX_TAILSCALE_ENABLED
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REPRX_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("REPRX_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("REPRX_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("REPRX_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("REPRX_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("REPRX_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("REPRX_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("REPRX_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("REPRX_AUTH_PIN"); v != "" {
		cfg.Auth.PIN = v
	}
	if v := os.Getenv("REPRX_AUTH_PIN_HASH"); v != "" {
		cfg.Auth.PINHash = v
	}
	if v := os.Getenv("REPRX_GROQ_API_KEY"); v != "" {
		cfg.Groq.APIKey = v
	}
	if v := os.Getenv("REPRX_EXERCISEDB_RAPIDAPI_KEY"); v != "" {
		cfg.ExerciseDB.RapidAPIKey = v
	}
	if v := os.Getenv("REPRX_SESSION_TICK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Session.TickInterval = d
		}
	}
	if v := os.Getenv("REPRX_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Groq.BaseURL == "" {
		cfg.Groq.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Groq.ProgramModel == "" {
		cfg.Groq.ProgramModel = "llama3-70b-8192"
	}
	if cfg.Groq.NoteModel == "" {
		cfg.Groq.NoteModel = "llama-3.1-8b-instant"
	}
	if cfg.ExerciseDB.BaseURL == "" {
		cfg.ExerciseDB.BaseURL = "https://exercisedb.p.rapidapi.com"
	}
	if cfg.ExerciseDB.WgerBaseURL == "" {
		cfg.ExerciseDB.WgerBaseURL = "https://wger.de/api/v2"
	}
	if cfg.ExerciseDB.CacheMB == 0 {
		cfg.ExerciseDB.CacheMB = 8
	}
	if cfg.Session.TickInterval == 0 {
		cfg.Session.TickInterval = time.Second
	}
	if cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "reprx"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.PIN == "" && c.Auth.PINHash == "" {
		return fmt.Errorf("auth.pin or auth.pin_hash is required")
	}
	if c.Session.TickInterval < 0 {
		return fmt.Errorf("session.tick_interval must be positive")
	}
	if c.ExerciseDB.CacheMB < 0 {
		return fmt.Errorf("exercisedb.cache_mb must not be negative")
	}
	return nil
}
