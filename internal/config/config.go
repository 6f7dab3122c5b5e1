// Package config resolves application settings from defaults, an optional
// YAML file, a .env file and the process environment, in that order.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/yatube/internal/database"
	"gopkg.in/yaml.v3"
)

const (
	MediaLocal = "local"
	MediaS3    = "s3"

	LogFormatDev  = "dev"
	LogFormatJSON = "json"
)

var ErrInvalidConfig = xerrors.Message("Invalid configuration")

type Config struct {
	Addr           string        `yaml:"addr"`
	DBDriver       string        `yaml:"db_driver"`
	DBDSN          string        `yaml:"db_dsn"`
	DBMaxIdleConns int           `yaml:"db_max_idle_conns"`
	DBTimeout      time.Duration `yaml:"db_timeout"`
	JWTSecret      string        `yaml:"jwt_secret"`
	TokenTTL       time.Duration `yaml:"token_ttl"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	MediaBackend   string        `yaml:"media_backend"`
	MediaRoot      string        `yaml:"media_root"`
	MediaURL       string        `yaml:"media_url"`
	S3Region       string        `yaml:"s3_region"`
	S3Bucket       string        `yaml:"s3_bucket"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`
}

func Default() Config {
	return Config{
		Addr:           ":8000",
		DBDriver:       database.DriverSQLite,
		DBDSN:          "file:yatube.db?_foreign_keys=on&_busy_timeout=5000",
		DBMaxIdleConns: 10,
		DBTimeout:      3 * time.Second,
		TokenTTL:       24 * time.Hour,
		CacheTTL:       20 * time.Second,
		MediaBackend:   MediaLocal,
		MediaRoot:      "media",
		MediaURL:       "/media/",
		LogLevel:       "info",
		LogFormat:      LogFormatDev,
	}
}

// Load builds the configuration. An empty path skips the YAML file; a missing
// .env file is ignored.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, xerrors.New(err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, xerrors.Newf("parse %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, xerrors.New(err)
	}

	cfg.Addr = getEnv("ADDR", cfg.Addr)
	cfg.DBDriver = getEnv("DB_DRIVER", cfg.DBDriver)
	cfg.DBDSN = getEnv("DB_DSN", cfg.DBDSN)
	cfg.DBMaxIdleConns = getEnvAsInt("DB_MAX_IDLE_CONNS", cfg.DBMaxIdleConns)
	cfg.DBTimeout = getEnvAsDuration("DB_TIMEOUT", cfg.DBTimeout)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.TokenTTL = getEnvAsDuration("TOKEN_TTL", cfg.TokenTTL)
	cfg.CacheTTL = getEnvAsDuration("CACHE_TTL", cfg.CacheTTL)
	cfg.MediaBackend = getEnv("MEDIA_BACKEND", cfg.MediaBackend)
	cfg.MediaRoot = getEnv("MEDIA_ROOT", cfg.MediaRoot)
	cfg.MediaURL = getEnv("MEDIA_URL", cfg.MediaURL)
	cfg.S3Region = getEnv("S3_REGION", cfg.S3Region)
	cfg.S3Bucket = getEnv("S3_BUCKET", cfg.S3Bucket)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.JWTSecret == "":
		return xerrors.Newf("%w: JWT_SECRET must be set", ErrInvalidConfig)
	case c.DBDriver != database.DriverPostgres && c.DBDriver != database.DriverSQLite:
		return xerrors.Newf("%w: unknown DB_DRIVER %q", ErrInvalidConfig, c.DBDriver)
	case c.DBDSN == "":
		return xerrors.Newf("%w: DB_DSN must be set", ErrInvalidConfig)
	case c.MediaBackend != MediaLocal && c.MediaBackend != MediaS3:
		return xerrors.Newf("%w: unknown MEDIA_BACKEND %q", ErrInvalidConfig, c.MediaBackend)
	case c.MediaBackend == MediaS3 && (c.S3Bucket == "" || c.S3Region == ""):
		return xerrors.Newf("%w: S3_BUCKET and S3_REGION are required for the s3 backend", ErrInvalidConfig)
	case c.LogFormat != LogFormatDev && c.LogFormat != LogFormatJSON:
		return xerrors.Newf("%w: unknown LOG_FORMAT %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultVal int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultVal
}
