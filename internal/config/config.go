package config

import (
	"errors"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
)

const configPathEnvVar = "CONFIG_PATH"

// DotEnvFile is loaded into the process environment before the config is read, if present.
var DotEnvFile = ".env"

type Config interface {
	EnvConfig
	CorsConfig
	APIConfig
	SessionConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars `yaml:"server"`
	Cors    `yaml:"cors"`
	API     `yaml:"api"`
	Session `yaml:"session"`
}

// New loads the configuration from CONFIG_PATH when set, otherwise from the environment.
func New() (Config, error) {
	return Load(os.Getenv(configPathEnvVar))
}

// Load reads an optional YAML file at path with environment variables layered on top.
func Load(path string) (Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.Wrapf(err, "[config Load] failed to load %s", DotEnvFile)
	}

	var c mainConfig
	if path != "" {
		if err := cleanenv.ReadConfig(path, &c); err != nil {
			return nil, apperrors.Wrapf(err, "[config Load] failed to read %s", path)
		}
		return c, nil
	}

	if err := cleanenv.ReadEnv(&c); err != nil {
		return nil, apperrors.Wrapf(err, "[config Load] failed to read env")
	}
	return c, nil
}
