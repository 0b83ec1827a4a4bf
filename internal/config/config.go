package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Supported values of DB_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for the application
type Config struct {
	App    AppConfig
	Auth   AuthConfig
	DB     DatabaseConfig
	Redis  RedisConfig
	Logger LoggerConfig
}

// AppConfig holds configuration for the listeners
type AppConfig struct {
	Env                    string
	HTTPPort               string
	HTTPSPort              string
	TLSCertFile            string
	TLSKeyFile             string
	ShutdownTimeoutSeconds int
	CORSAllowedOrigin      string
}

// AuthConfig holds credential and token settings
type AuthConfig struct {
	SecretKey       string
	TokenTTLSeconds int
	BcryptCost      int
	ProtectUsers    bool
}

// DatabaseConfig holds configuration for the database
type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	SQLitePath      string
	AutoCreateTable bool
}

// RedisConfig holds configuration for the optional user cache
type RedisConfig struct {
	Enabled         bool
	Host            string
	Port            string
	Password        string
	DB              int
	CacheTTLSeconds int
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level            string
	Format           string
	OutputPath       string
	SlowQuerySeconds float64
	EnableSampling   bool
	MaxSizeMB        int
	MaxBackups       int
	MaxAgeDays       int
	ServiceName      string
	ServiceVersion   string
}

// LoadConfig reads an optional app.env in path, overlaid by environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Env:                    v.GetString("APP_ENV"),
			HTTPPort:               v.GetString("HTTP_PORT"),
			HTTPSPort:              v.GetString("HTTPS_PORT"),
			TLSCertFile:            v.GetString("TLS_CERT_FILE"),
			TLSKeyFile:             v.GetString("TLS_KEY_FILE"),
			ShutdownTimeoutSeconds: v.GetInt("SHUTDOWN_TIMEOUT_SECONDS"),
			CORSAllowedOrigin:      v.GetString("CORS_ALLOWED_ORIGIN"),
		},
		Auth: AuthConfig{
			SecretKey:       v.GetString("SECRET_KEY"),
			TokenTTLSeconds: v.GetInt("TOKEN_TTL_SECONDS"),
			BcryptCost:      v.GetInt("BCRYPT_COST"),
			ProtectUsers:    v.GetBool("AUTH_PROTECT_USERS"),
		},
		DB: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("DB_DRIVER")),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetString("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			SQLitePath:      v.GetString("DB_SQLITE_PATH"),
			AutoCreateTable: v.GetBool("DB_AUTO_CREATE_TABLE"),
		},
		Redis: RedisConfig{
			Enabled:         v.GetBool("REDIS_ENABLED"),
			Host:            v.GetString("REDIS_HOST"),
			Port:            v.GetString("REDIS_PORT"),
			Password:        v.GetString("REDIS_PASSWORD"),
			DB:              v.GetInt("REDIS_DB"),
			CacheTTLSeconds: v.GetInt("REDIS_CACHE_TTL_SECONDS"),
		},
		Logger: LoggerConfig{
			Level:            v.GetString("LOG_LEVEL"),
			Format:           v.GetString("LOG_FORMAT"),
			OutputPath:       v.GetString("LOG_OUTPUT_PATH"),
			SlowQuerySeconds: v.GetFloat64("LOG_SLOW_QUERY_SECONDS"),
			EnableSampling:   v.GetBool("LOG_ENABLE_SAMPLING"),
			MaxSizeMB:        v.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups:       v.GetInt("LOG_MAX_BACKUPS"),
			MaxAgeDays:       v.GetInt("LOG_MAX_AGE_DAYS"),
			ServiceName:      v.GetString("SERVICE_NAME"),
			ServiceVersion:   v.GetString("SERVICE_VERSION"),
		},
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_PORT", "4000")
	v.SetDefault("HTTPS_PORT", "4001")
	v.SetDefault("TLS_CERT_FILE", "")
	v.SetDefault("TLS_KEY_FILE", "")
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 10)
	v.SetDefault("CORS_ALLOWED_ORIGIN", "*")

	v.SetDefault("SECRET_KEY", "")
	v.SetDefault("TOKEN_TTL_SECONDS", 3600)
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)
	v.SetDefault("AUTH_PROTECT_USERS", false)

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "usuarios")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_SQLITE_PATH", "usuarios.db")
	v.SetDefault("DB_AUTO_CREATE_TABLE", false)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_CACHE_TTL_SECONDS", 300)

	// Logger defaults
	if v.GetString("APP_ENV") == "production" {
		v.SetDefault("LOG_LEVEL", "info")
		v.SetDefault("LOG_FORMAT", "json")
		v.SetDefault("LOG_ENABLE_SAMPLING", true)
	} else {
		v.SetDefault("LOG_LEVEL", "debug")
		v.SetDefault("LOG_FORMAT", "console")
		v.SetDefault("LOG_ENABLE_SAMPLING", false)
	}
	v.SetDefault("LOG_OUTPUT_PATH", "stdout")
	v.SetDefault("LOG_SLOW_QUERY_SECONDS", 0.2)
	v.SetDefault("LOG_MAX_SIZE_MB", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 3)
	v.SetDefault("LOG_MAX_AGE_DAYS", 28)
	v.SetDefault("SERVICE_NAME", "user-api-service")
	v.SetDefault("SERVICE_VERSION", "1.0.0")
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if err := validatePort("HTTP_PORT", c.App.HTTPPort); err != nil {
		errs = append(errs, err)
	}
	if (c.App.TLSCertFile == "") != (c.App.TLSKeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE must be set together"))
	}
	if c.TLSEnabled() {
		if err := validatePort("HTTPS_PORT", c.App.HTTPSPort); err != nil {
			errs = append(errs, err)
		} else if c.App.HTTPSPort == c.App.HTTPPort {
			errs = append(errs, errors.New("HTTPS_PORT must differ from HTTP_PORT"))
		}
	}
	if c.App.ShutdownTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT_SECONDS must be positive"))
	}

	if strings.TrimSpace(c.Auth.SecretKey) == "" {
		errs = append(errs, errors.New("SECRET_KEY is required"))
	}
	if c.Auth.TokenTTLSeconds <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL_SECONDS must be positive"))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}

	switch c.DB.Driver {
	case DriverPostgres:
		if c.DB.Host == "" || c.DB.Name == "" {
			errs = append(errs, errors.New("DB_HOST and DB_NAME are required for postgres"))
		}
	case DriverSQLite:
		if c.DB.SQLitePath == "" {
			errs = append(errs, errors.New("DB_SQLITE_PATH is required for sqlite"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver))
	}

	if c.Redis.Enabled {
		if err := validatePort("REDIS_PORT", c.Redis.Port); err != nil {
			errs = append(errs, err)
		}
		if c.Redis.CacheTTLSeconds <= 0 {
			errs = append(errs, errors.New("REDIS_CACHE_TTL_SECONDS must be positive"))
		}
	}

	return errors.Join(errs...)
}

func validatePort(key, value string) error {
	port, err := strconv.Atoi(value)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%s must be a port number, got %q", key, value)
	}
	return nil
}

// TLSEnabled reports whether the HTTPS listener should run.
func (c *Config) TLSEnabled() bool {
	return c.App.TLSCertFile != "" && c.App.TLSKeyFile != ""
}

// ShutdownTimeout is the graceful shutdown budget.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.App.ShutdownTimeoutSeconds) * time.Second
}

// TokenTTL is the lifetime of issued bearer tokens.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLSeconds) * time.Second
}

// CacheTTL is the lifetime of cached user records.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Redis.CacheTTLSeconds) * time.Second
}

// DSN returns the PostgreSQL Data Source Name
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}
