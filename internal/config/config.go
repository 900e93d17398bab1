package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Port    string `mapstructure:"PORT"`
	GinMode string `mapstructure:"GIN_MODE"`

	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`

	AuthMode  string `mapstructure:"AUTH_MODE"` // "firebase" or "jwt"
	JWTSecret string `mapstructure:"JWT_SECRET"`

	StorageBackend string `mapstructure:"STORAGE_BACKEND"` // "local" or "gcs"
	UploadDir      string `mapstructure:"UPLOAD_DIR"`
	StorageBucket  string `mapstructure:"STORAGE_BUCKET"`
	MaxUploadMB    int64  `mapstructure:"MAX_UPLOAD_MB"`

	RedisAddr         string        `mapstructure:"REDIS_ADDR"`
	RedisPassword     string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB           int           `mapstructure:"REDIS_DB"`
	DirectoryCacheTTL time.Duration `mapstructure:"DIRECTORY_CACHE_TTL"`

	RabbitMQURL   string `mapstructure:"RABBITMQ_URL"`
	RabbitMQQueue string `mapstructure:"RABBITMQ_QUEUE"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     string `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	MailFrom     string `mapstructure:"MAIL_FROM"`

	SignatureEncryptionKey string `mapstructure:"SIGNATURE_ENCRYPTION_KEY"` // Base64 encoded, optional
	ClientURL              string `mapstructure:"CLIENT_URL"`
}

var configKeys = []string{
	"PORT", "GIN_MODE",
	"FIREBASE_PROJECT_ID", "GOOGLE_APPLICATION_CREDENTIALS", "FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"AUTH_MODE", "JWT_SECRET",
	"STORAGE_BACKEND", "UPLOAD_DIR", "STORAGE_BUCKET", "MAX_UPLOAD_MB",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "DIRECTORY_CACHE_TTL",
	"RABBITMQ_URL", "RABBITMQ_QUEUE",
	"SMTP_HOST", "SMTP_PORT", "SMTP_USERNAME", "SMTP_PASSWORD", "MAIL_FROM",
	"SIGNATURE_ENCRYPTION_KEY", "CLIENT_URL",
}

// LoadConfig loads configuration from environment variables using Viper.
// When PATH_CONFIG names a YAML file, its top-level keys (same names as the
// environment variables) provide defaults that the environment overrides.
func LoadConfig() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadNotifierConfig loads the same settings for the notification worker, which
// only needs the queue and the SMTP server.
func LoadNotifierConfig() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if err := cfg.validateNotifier(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("AUTH_MODE", "firebase")
	v.SetDefault("STORAGE_BACKEND", "local")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("MAX_UPLOAD_MB", 20)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("DIRECTORY_CACHE_TTL", "10m")
	v.SetDefault("RABBITMQ_QUEUE", "document-events")
	v.SetDefault("SMTP_PORT", "2525")

	if path := os.Getenv("PATH_CONFIG"); path != "" {
		if err := applyFileDefaults(v, path); err != nil {
			return nil, err
		}
	}

	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}
	return &cfg, nil
}

// applyFileDefaults reads a flat YAML file and registers each entry as a default.
func applyFileDefaults(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	values := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	for key, value := range values {
		v.SetDefault(strings.ToUpper(key), value)
	}
	return nil
}

func (cfg *Config) validate() error {
	if cfg.FirebaseProjectID == "" {
		return errors.New("FIREBASE_PROJECT_ID is required")
	}
	switch cfg.AuthMode {
	case "firebase":
	case "jwt":
		if cfg.JWTSecret == "" {
			return errors.New("JWT_SECRET is required when AUTH_MODE is 'jwt'")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be 'firebase' or 'jwt', got '%s'", cfg.AuthMode)
	}
	switch cfg.StorageBackend {
	case "local":
		if cfg.UploadDir == "" {
			return errors.New("UPLOAD_DIR is required when STORAGE_BACKEND is 'local'")
		}
	case "gcs":
		if cfg.StorageBucket == "" {
			return errors.New("STORAGE_BUCKET is required when STORAGE_BACKEND is 'gcs'")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be 'local' or 'gcs', got '%s'", cfg.StorageBackend)
	}
	if cfg.MaxUploadMB <= 0 {
		return errors.New("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

func (cfg *Config) validateNotifier() error {
	if cfg.RabbitMQURL == "" {
		return errors.New("RABBITMQ_URL is required for the notifier")
	}
	if cfg.RabbitMQQueue == "" {
		return errors.New("RABBITMQ_QUEUE is required for the notifier")
	}
	if cfg.SMTPHost == "" || cfg.MailFrom == "" {
		return errors.New("SMTP_HOST and MAIL_FROM are required for the notifier")
	}
	return nil
}
