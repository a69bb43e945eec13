package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends accepted by store.backend
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	LLM      LLMConfig      `mapstructure:"llm"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Profile  ProfileConfig  `mapstructure:"profile"`
	Chat     ChatConfig     `mapstructure:"chat"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns the listen address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StoreConfig selects the record store backend
type StoreConfig struct {
	// Backend is "sqlite" or "postgres"
	Backend string       `mapstructure:"backend"`
	SQLite  SQLiteConfig `mapstructure:"sqlite"`
}

// SQLiteConfig holds the SQLite backend configuration
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode"`
	MaxConnections int    `mapstructure:"max_connections"`
	// AutoMigrate applies pending migrations when the store first connects
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// DSN returns the PostgreSQL connection string
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedisConfig holds the optional receipt cache configuration
type RedisConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Host       string        `mapstructure:"host"`
	Port       int           `mapstructure:"port"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db"`
	ReceiptTTL time.Duration `mapstructure:"receipt_ttl"`
}

// Addr returns the Redis address
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LLMConfig holds the text-generation provider configuration
type LLMConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// SMTPConfig holds the primary mail transport and its fallback
type SMTPConfig struct {
	SMTPServerConfig `mapstructure:",squash"`
	FromName         string             `mapstructure:"from_name"`
	FromEmail        string             `mapstructure:"from_email"`
	Fallback         SMTPFallbackConfig `mapstructure:"fallback"`
}

// SMTPServerConfig describes one SMTP endpoint
type SMTPServerConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	Secure   bool          `mapstructure:"secure"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// SMTPFallbackConfig is attempted once after a transient primary failure.
// Empty credentials inherit the primary ones.
type SMTPFallbackConfig struct {
	Enabled          bool `mapstructure:"enabled"`
	SMTPServerConfig `mapstructure:",squash"`
}

// ProfileConfig is the sender identity embedded in every generated email
type ProfileConfig struct {
	Name         string `mapstructure:"name"`
	Title        string `mapstructure:"title"`
	Location     string `mapstructure:"location"`
	Links        string `mapstructure:"links"`
	Phone        string `mapstructure:"phone"`
	AttachResume bool   `mapstructure:"attach_resume"`
	ResumePath   string `mapstructure:"resume_path"`
}

// ChatConfig holds chat adapter settings
type ChatConfig struct {
	// ChannelID restricts command handling to one channel when set
	ChannelID string `mapstructure:"channel_id"`
}

// Load reads configuration from .env, config file and environment variables
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/mrmailer")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("MRMAILER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the settings needed to process commands
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Backend {
	case BackendSQLite:
		if c.Store.SQLite.Path == "" {
			errs = append(errs, errors.New("store.sqlite.path is required for the sqlite backend"))
		}
	case BackendPostgres:
	default:
		errs = append(errs, fmt.Errorf("store.backend %q is not supported, use %q or %q",
			c.Store.Backend, BackendSQLite, BackendPostgres))
	}
	if c.LLM.APIKey == "" {
		errs = append(errs, errors.New("llm.api_key is required"))
	}
	if c.SMTP.Host == "" {
		errs = append(errs, errors.New("smtp.host is required"))
	}
	if c.SMTP.FromEmail == "" {
		errs = append(errs, errors.New("smtp.from_email is required"))
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3003)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Store defaults
	v.SetDefault("store.backend", BackendSQLite)
	v.SetDefault("store.sqlite.path", "./data/mrmailer.sqlite")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "mrmailer")
	v.SetDefault("database.user", "mrmailer")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.auto_migrate", true)

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.receipt_ttl", "720h")

	// LLM defaults
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("llm.model", "openai/gpt-4o-mini")

	// SMTP defaults
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.user", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.secure", false)
	v.SetDefault("smtp.timeout", "30s")
	v.SetDefault("smtp.from_name", "")
	v.SetDefault("smtp.from_email", "")

	v.SetDefault("smtp.fallback.enabled", true)
	v.SetDefault("smtp.fallback.host", "smtp.gmail.com")
	v.SetDefault("smtp.fallback.port", 465)
	v.SetDefault("smtp.fallback.user", "")
	v.SetDefault("smtp.fallback.password", "")
	v.SetDefault("smtp.fallback.secure", true)
	v.SetDefault("smtp.fallback.timeout", "30s")

	// Profile defaults
	v.SetDefault("profile.name", "John Doe")
	v.SetDefault("profile.title", "Fullstack Developer")
	v.SetDefault("profile.location", "Remote")
	v.SetDefault("profile.links", "https://portfolio.example.com")
	v.SetDefault("profile.phone", "")
	v.SetDefault("profile.attach_resume", false)
	v.SetDefault("profile.resume_path", "")

	// Chat defaults
	v.SetDefault("chat.channel_id", "")
}
