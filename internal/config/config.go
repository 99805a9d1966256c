package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Auth       AuthConfig       `mapstructure:"auth"`
	CORS       CORSConfig       `mapstructure:"cors"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	Detection  DetectionConfig  `mapstructure:"detection"`
	Engagement EngagementConfig `mapstructure:"engagement"`
	Callback   CallbackConfig   `mapstructure:"callback"`
	Generator  GeneratorConfig  `mapstructure:"generator"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	Debug       bool   `mapstructure:"debug"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	Schema          string        `mapstructure:"schema"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s&search_path=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.Schema,
	)
}

type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
	TLS       bool   `mapstructure:"tls"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type NATSConfig struct {
	Enabled    bool               `mapstructure:"enabled"`
	URL        string             `mapstructure:"url"`
	StreamName string             `mapstructure:"stream_name"`
	Subjects   NATSSubjectsConfig `mapstructure:"subjects"`
}

type NATSSubjectsConfig struct {
	SessionStarted string `mapstructure:"session_started"`
	ScamDetected   string `mapstructure:"scam_detected"`
	ReportEmitted  string `mapstructure:"report_emitted"`
}

type AuthConfig struct {
	APIKey     string `mapstructure:"api_key"`
	AdminToken string `mapstructure:"admin_token"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	RequestsPerHour   int  `mapstructure:"requests_per_hour"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	TimeFormat string `mapstructure:"time_format"`
}

// DetectionConfig tunes the scam classifier.
type DetectionConfig struct {
	ScamThreshold float64 `mapstructure:"scam_threshold"`
}

// EngagementConfig bounds how long a conversation is kept alive.
type EngagementConfig struct {
	MaxMessages    int           `mapstructure:"max_messages"`
	SilenceTimeout time.Duration `mapstructure:"silence_timeout"`
	SessionTTL     time.Duration `mapstructure:"session_ttl"`
}

// CallbackConfig controls delivery of final intelligence reports to the
// external evaluation endpoint.
type CallbackConfig struct {
	URL          string        `mapstructure:"url"`
	Secret       string        `mapstructure:"secret"`
	MinMessages  int           `mapstructure:"min_messages"`
	MinArtifacts int           `mapstructure:"min_artifacts"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Workers      int           `mapstructure:"workers"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

// GeneratorConfig holds settings for the persona reply generator.
type GeneratorConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/honeypot-lab")
	}

	// Environment variables
	v.SetEnvPrefix("HONEYPOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind nested env vars explicitly (viper doesn't auto-bind nested struct fields)
	v.BindEnv("redis.enabled", "HONEYPOT_REDIS_ENABLED")
	v.BindEnv("redis.host", "HONEYPOT_REDIS_HOST")
	v.BindEnv("redis.port", "HONEYPOT_REDIS_PORT")
	v.BindEnv("redis.password", "HONEYPOT_REDIS_PASSWORD")
	v.BindEnv("redis.tls", "HONEYPOT_REDIS_TLS")
	v.BindEnv("database.enabled", "HONEYPOT_DATABASE_ENABLED")
	v.BindEnv("database.host", "HONEYPOT_DATABASE_HOST")
	v.BindEnv("database.port", "HONEYPOT_DATABASE_PORT")
	v.BindEnv("database.user", "HONEYPOT_DATABASE_USER")
	v.BindEnv("database.password", "HONEYPOT_DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "HONEYPOT_DATABASE_DBNAME")
	v.BindEnv("database.sslmode", "HONEYPOT_DATABASE_SSLMODE")
	v.BindEnv("nats.enabled", "HONEYPOT_NATS_ENABLED")
	v.BindEnv("nats.url", "HONEYPOT_NATS_URL")
	v.BindEnv("auth.api_key", "HONEYPOT_AUTH_API_KEY")
	v.BindEnv("auth.admin_token", "HONEYPOT_AUTH_ADMIN_TOKEN")
	v.BindEnv("callback.url", "HONEYPOT_CALLBACK_URL")
	v.BindEnv("callback.secret", "HONEYPOT_CALLBACK_SECRET")
	v.BindEnv("generator.api_key", "HONEYPOT_GENERATOR_API_KEY")
	v.BindEnv("generator.base_url", "HONEYPOT_GENERATOR_BASE_URL")
	v.BindEnv("app.environment", "HONEYPOT_APP_ENVIRONMENT")

	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine, env vars and defaults still apply
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "honeypot-lab")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "1.0.0")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.http_port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")

	v.SetDefault("redis.key_prefix", "honeypot")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.schema", "public")
	v.SetDefault("database.max_open_conns", 10)

	v.SetDefault("nats.stream_name", "HONEYPOT_EVENTS")
	v.SetDefault("nats.subjects.session_started", "honeypot.session.started")
	v.SetDefault("nats.subjects.scam_detected", "honeypot.scam.detected")
	v.SetDefault("nats.subjects.report_emitted", "honeypot.report.emitted")

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Admin-Token"})
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.requests_per_minute", 120)
	v.SetDefault("ratelimit.requests_per_hour", 2000)

	v.SetDefault("detection.scam_threshold", 0.60)

	v.SetDefault("engagement.max_messages", 20)
	v.SetDefault("engagement.silence_timeout", 2*time.Hour)
	v.SetDefault("engagement.session_ttl", 24*time.Hour)

	v.SetDefault("callback.min_messages", 8)
	v.SetDefault("callback.min_artifacts", 2)
	v.SetDefault("callback.timeout", 30*time.Second)
	v.SetDefault("callback.workers", 2)
	v.SetDefault("callback.max_retries", 3)

	v.SetDefault("generator.enabled", false)
	v.SetDefault("generator.base_url", "https://api.openai.com/v1")
	v.SetDefault("generator.model", "gpt-4o-mini")
	v.SetDefault("generator.temperature", 0.9)
	v.SetDefault("generator.max_tokens", 150)
	v.SetDefault("generator.timeout", 20*time.Second)
}

// LoadDefault loads configuration with default path
func LoadDefault() (*Config, error) {
	return Load("")
}
