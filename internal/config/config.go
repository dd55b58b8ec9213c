package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full server configuration: defaults, then the YAML file,
// then environment variables.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	DB      DBConfig      `yaml:"db"`
	Auth    AuthConfig    `yaml:"auth"`
	Admin   AdminConfig   `yaml:"admin"`
	Uploads UploadsConfig `yaml:"uploads"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	Log     LogConfig     `yaml:"log"`
}

// HTTPConfig holds the listen address and allowed CORS origins.
type HTTPConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// DBConfig is the Postgres connection and pool size.
type DBConfig struct {
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// AuthConfig holds the session and token secrets.
type AuthConfig struct {
	SessionSecret string        `yaml:"session_secret"`
	JWTSecret     string        `yaml:"jwt_secret"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
}

// AdminConfig holds the X-API-KEY value for the staff API.
type AdminConfig struct {
	APIKey string `yaml:"api_key"`
}

// UploadsConfig says where image files live and the URL prefix they are
// served under.
type UploadsConfig struct {
	Dir        string `yaml:"dir"`
	PublicPath string `yaml:"public_path"`
}

// KafkaConfig enables catalog event publishing when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// LogConfig sets the slog level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the settings used when nothing overrides them.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{Addr: ":8080", CORSOrigins: []string{"*"}},
		DB:   DBConfig{MaxOpenConns: 20, MaxIdleConns: 5},
		Auth: AuthConfig{
			SessionSecret: "dev_fallback_secret",
			JWTSecret:     "dev_fallback_secret",
			TokenTTL:      24 * time.Hour,
		},
		Uploads: UploadsConfig{Dir: "uploads", PublicPath: "/uploads"},
		Kafka:   KafkaConfig{Topic: "marketplace.catalog"},
		Log:     LogConfig{Level: "info"},
	}
}

// Load reads .env files (current, parent and repo root, so the server can
// be started from cmd/server), then the optional YAML file at path, then
// environment overrides.
func Load(path string) (*Config, error) {
	_ = godotenv.Overload(".env", "../.env", "../../.env")

	cfg := Default()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	setString(&c.DB.DSN, "DB_DSN")
	if port := os.Getenv("APP_PORT"); port != "" {
		c.HTTP.Addr = ":" + port
	}
	setString(&c.Auth.SessionSecret, "SESSION_SECRET")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			c.Auth.TokenTTL = d
		} else {
			slog.Warn("ignoring invalid TOKEN_TTL", "value", ttl, "err", err)
		}
	}
	setString(&c.Admin.APIKey, "ADMIN_API_KEY")
	setString(&c.Uploads.Dir, "UPLOAD_DIR")
	setString(&c.Kafka.Topic, "KAFKA_TOPIC")
	setList(&c.Kafka.Brokers, "KAFKA_BROKERS")
	setList(&c.HTTP.CORSOrigins, "CORS_ORIGINS")
	setString(&c.Log.Level, "LOG_LEVEL")
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is empty (check your .env)")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	return nil
}

// SlogLevel maps Log.Level onto slog; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setList(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}
