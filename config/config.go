// Package config loads the service configuration from the environment.
//
// Variables are read with the CATALOG_ prefix. The first underscore after
// the prefix separates the section from the key, so CATALOG_SERVER_PORT
// maps to server.port and CATALOG_SERVER_READ_TIMEOUT to
// server.read_timeout. A .env file, when present, is loaded first.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "CATALOG_"

type Config struct {
	Primary  Primary        `koanf:"primary" validate:"required"`
	Server   ServerConfig   `koanf:"server" validate:"required"`
	Database DatabaseConfig `koanf:"database" validate:"required"`
	Storage  StorageConfig  `koanf:"storage" validate:"required"`
	Log      LogConfig      `koanf:"log" validate:"required"`
}

type Primary struct {
	// Env is "local" on developer machines; it turns on SQL logging.
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig timeouts are in seconds.
type ServerConfig struct {
	Port               string `koanf:"port" validate:"required"`
	ReadTimeout        int    `koanf:"read_timeout" validate:"min=1"`
	WriteTimeout       int    `koanf:"write_timeout" validate:"min=1"`
	IdleTimeout        int    `koanf:"idle_timeout" validate:"min=1"`
	ShutdownTimeout    int    `koanf:"shutdown_timeout" validate:"min=1"`
	CORSAllowedOrigins string `koanf:"cors_allowed_origins"`
}

// AllowedOrigins splits the comma separated origin list.
func (s ServerConfig) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(s.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

type DatabaseConfig struct {
	URL         string `koanf:"url" validate:"required"`
	AutoMigrate bool   `koanf:"auto_migrate"`
}

type StorageConfig struct {
	ImageDir    string `koanf:"image_dir" validate:"required"`
	MaxUploadMB int    `koanf:"max_upload_mb" validate:"min=1"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Pretty bool   `koanf:"pretty"`
}

// Default returns the configuration used for every key the environment
// leaves unset.
func Default() *Config {
	return &Config{
		Primary: Primary{Env: "production"},
		Server: ServerConfig{
			Port:               "8080",
			ReadTimeout:        15,
			WriteTimeout:       30,
			IdleTimeout:        60,
			ShutdownTimeout:    30,
			CORSAllowedOrigins: "*",
		},
		Database: DatabaseConfig{
			AutoMigrate: true,
		},
		Storage: StorageConfig{
			ImageDir:    "static/images",
			MaxUploadMB: 10,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads envFile (if it exists) and then the process environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	k := koanf.New(".")

	err := k.Load(env.Provider(envPrefix, ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// envKey turns CATALOG_SERVER_READ_TIMEOUT into server.read_timeout.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.Replace(key, "_", ".", 1)
}
