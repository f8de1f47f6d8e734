package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds settings for both the client and the reference backend.
// Precedence: defaults < YAML file (NOTESYNC_CONFIG) < environment.
type Config struct {
	Env      string `yaml:"env"`
	LogLevel string `yaml:"log_level"`

	// Client
	APIURL                       string        `yaml:"api_url"`
	DataDir                      string        `yaml:"data_dir"`
	DBPath                       string        `yaml:"db_path"`
	PrefsPath                    string        `yaml:"prefs_path"`
	DestructiveMigrationFallback bool          `yaml:"destructive_migration_fallback"`
	HTTPTimeout                  time.Duration `yaml:"http_timeout"`
	SyncInterval                 time.Duration `yaml:"sync_interval"`
	SyncMaxInterval              time.Duration `yaml:"sync_max_interval"`
	Platform                     string        `yaml:"platform"`

	// Reference backend
	Port           string `yaml:"port"`
	DatabaseURL    string `yaml:"database_url"`
	JWTSecret      string `yaml:"jwt_secret"`
	OpenAIAPIKey   string `yaml:"openai_api_key"`
	TranscriberURL string `yaml:"transcriber_url"`
	WhisperBinary  string `yaml:"whisper_binary"`
	WhisperModel   string `yaml:"whisper_model"`
	WhisperPort    int    `yaml:"whisper_port"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Env:             "development",
		LogLevel:        "info",
		APIURL:          "http://127.0.0.1:3000/api",
		DataDir:         "./data",
		SyncInterval:    2 * time.Minute,
		SyncMaxInterval: 5 * time.Minute,
		Platform:        "desktop",
		Port:            "3000",
		DatabaseURL:     "./data/notesyncd.db",
	}
}

// Load reads .env, the optional YAML file and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path := GetEnv("NOTESYNC_CONFIG", ""); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Env = GetEnv("ENV", cfg.Env)
	cfg.LogLevel = GetEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.APIURL = strings.TrimRight(GetEnv("NOTESYNC_API_URL", cfg.APIURL), "/")
	cfg.DataDir = GetEnv("NOTESYNC_DATA_DIR", cfg.DataDir)
	cfg.DBPath = GetEnv("NOTESYNC_DB_PATH", cfg.DBPath)
	cfg.PrefsPath = GetEnv("NOTESYNC_PREFS_PATH", cfg.PrefsPath)
	cfg.Platform = GetEnv("NOTESYNC_PLATFORM", cfg.Platform)
	cfg.Port = GetEnv("PORT", cfg.Port)
	cfg.DatabaseURL = GetEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.JWTSecret = GetEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.OpenAIAPIKey = GetEnv("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.TranscriberURL = GetEnv("TRANSCRIBER_URL", cfg.TranscriberURL)
	cfg.WhisperBinary = GetEnv("WHISPER_BINARY", cfg.WhisperBinary)
	cfg.WhisperModel = GetEnv("WHISPER_MODEL", cfg.WhisperModel)

	var err error
	if cfg.WhisperPort, err = getInt("WHISPER_PORT", cfg.WhisperPort); err != nil {
		return nil, err
	}
	if cfg.DestructiveMigrationFallback, err = getBool("NOTESYNC_DESTRUCTIVE_MIGRATIONS", cfg.DestructiveMigrationFallback); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getDuration("NOTESYNC_HTTP_TIMEOUT", cfg.HTTPTimeout); err != nil {
		return nil, err
	}
	if cfg.SyncInterval, err = getDuration("NOTESYNC_SYNC_INTERVAL", cfg.SyncInterval); err != nil {
		return nil, err
	}
	if cfg.SyncMaxInterval, err = getDuration("NOTESYNC_SYNC_MAX_INTERVAL", cfg.SyncMaxInterval); err != nil {
		return nil, err
	}

	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(cfg.DataDir, "notesync.db")
	}
	if cfg.PrefsPath == "" {
		cfg.PrefsPath = filepath.Join(cfg.DataDir, "prefs.json")
	}
	if cfg.SyncMaxInterval < cfg.SyncInterval {
		cfg.SyncMaxInterval = cfg.SyncInterval
	}

	return cfg, nil
}

// IsProduction reports whether the process runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func GetEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, def bool) (bool, error) {
	v := GetEnv(key, "")
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getInt(key string, def int) (int, error) {
	v := GetEnv(key, "")
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := GetEnv(key, "")
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
