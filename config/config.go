// Package config assembles application configuration from three layers:
// built-in defaults, an optional YAML file, and environment variables.
// Later layers override earlier ones.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/vaultgate/pkg/logger"
	"github.com/dmitrymomot/vaultgate/pkg/mailer"
	"github.com/dmitrymomot/vaultgate/pkg/mailer/resend"
	"github.com/dmitrymomot/vaultgate/pkg/storage"
)

// FileEnvVar names the environment variable holding the path of the
// optional YAML overlay.
const FileEnvVar = "VAULTGATE_CONFIG"

// ErrInvalidConfig indicates the assembled configuration cannot start
// the service.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Config is the full application configuration tree.
type Config struct {
	Server  Server              `yaml:"server"`
	Storage storage.Config      `yaml:"storage"`
	Files   Files               `yaml:"files"`
	OTP     OTP                 `yaml:"otp"`
	Token   Token               `yaml:"token"`
	Log     logger.Config       `yaml:"log"`
	Sentry  logger.SentryConfig `yaml:"sentry"`
	Mailer  mailer.Config       `yaml:"mailer"`
	Resend  resend.Config       `yaml:"resend"`
}

// Server holds HTTP server settings.
type Server struct {
	Addr            string        `yaml:"addr" env:"SERVER_ADDR"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT"`
}

// OTP holds one-time passcode settings.
type OTP struct {
	Length int           `yaml:"length" env:"OTP_LENGTH"`
	TTL    time.Duration `yaml:"ttl" env:"OTP_TTL"`
}

// Token holds session token settings.
type Token struct {
	Secret string        `yaml:"secret" env:"JWT_SECRET"`
	TTL    time.Duration `yaml:"ttl" env:"JWT_TTL"`
}

// Files holds upload validation and download settings.
type Files struct {
	MaxSizeMB         int64         `yaml:"max_size_mb" env:"FILES_MAX_SIZE_MB"`
	AllowedExtensions []string      `yaml:"allowed_extensions" env:"FILES_ALLOWED_EXTENSIONS"`
	AllowedMIMETypes  []string      `yaml:"allowed_mime_types" env:"FILES_ALLOWED_MIME_TYPES"`
	PresignTTL        time.Duration `yaml:"presign_ttl" env:"FILES_PRESIGN_TTL"`
}

// MaxSizeBytes converts the configured megabyte limit to bytes.
func (f Files) MaxSizeBytes() int64 {
	return f.MaxSizeMB * 1024 * 1024
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: storage.Config{
			Region:       storage.DefaultRegion,
			BucketPrefix: "user-",
			PathStyle:    true,
		},
		Files: Files{
			MaxSizeMB: 500,
			AllowedExtensions: []string{
				".jpg", ".jpeg", ".png", ".pdf", ".txt", ".mp4", ".mov",
			},
			AllowedMIMETypes: []string{
				"image/jpeg", "image/png", "application/pdf",
				"text/plain", "video/mp4", "video/quicktime",
			},
			PresignTTL: 15 * time.Minute,
		},
		OTP: OTP{
			Length: 6,
			TTL:    5 * time.Minute,
		},
		Token: Token{
			TTL: 5 * time.Minute,
		},
	}
}

// Load assembles the configuration: defaults, then the YAML file named
// by VAULTGATE_CONFIG when set, then environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv(FileEnvVar); path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("%w: parse environment: %v", ErrInvalidConfig, err)
	}

	// The bucket capacity marker follows the upload cap unless the
	// operator pins it separately.
	if cfg.Storage.QuotaBytes == 0 {
		cfg.Storage.QuotaBytes = cfg.Files.MaxSizeBytes()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrInvalidConfig, path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
	}
	return nil
}

// Validate checks that everything required to start is present.
func (c *Config) Validate() error {
	var missing []string
	if c.Storage.Endpoint == "" {
		missing = append(missing, "storage endpoint")
	}
	if c.Storage.AccessKey == "" {
		missing = append(missing, "storage access key")
	}
	if c.Storage.SecretKey == "" {
		missing = append(missing, "storage secret key")
	}
	if c.Token.Secret == "" {
		missing = append(missing, "token secret")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrInvalidConfig, missing)
	}

	if c.Files.MaxSizeMB <= 0 {
		return fmt.Errorf("%w: max file size must be positive", ErrInvalidConfig)
	}
	if c.OTP.Length < 4 {
		return fmt.Errorf("%w: otp length must be at least 4", ErrInvalidConfig)
	}
	if c.OTP.TTL <= 0 || c.Token.TTL <= 0 {
		return fmt.Errorf("%w: ttl values must be positive", ErrInvalidConfig)
	}
	return nil
}
