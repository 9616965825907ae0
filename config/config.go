// Package config loads jobly settings from defaults, an optional jobly.yaml,
// a .env file and JOBLY_* environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Skryldev/jobly/db"
)

// EnvPrefix prefixes every environment variable, e.g. JOBLY_DATABASE_URL.
const EnvPrefix = "JOBLY"

// Config is the full application configuration.
type Config struct {
	Database Database `mapstructure:"database"`
	Log      Log      `mapstructure:"log"`
}

// Database describes the connection. URL wins over the structured fields
// when both are set.
type Database struct {
	Driver   string `mapstructure:"driver" validate:"oneof=postgres mysql sqlite3"`
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"gte=0,lte=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`

	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	DefaultTimeout  time.Duration `mapstructure:"default_timeout"`
	SlowQuery       time.Duration `mapstructure:"slow_query"`

	// ConnectAttempts and RetryDelay govern the startup connection retry.
	ConnectAttempts int           `mapstructure:"connect_attempts" validate:"gte=1"`
	RetryDelay      time.Duration `mapstructure:"retry_delay"`
}

// Log selects the slog handler.
type Log struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
	// Args includes bound query parameters in query logs.
	Args bool `mapstructure:"args"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 0)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "jobly")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	v.SetDefault("database.default_timeout", 5*time.Second)
	v.SetDefault("database.slow_query", 200*time.Millisecond)
	v.SetDefault("database.connect_attempts", 5)
	v.SetDefault("database.retry_delay", time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.args", false)
}

// Load reads the configuration. file may be empty, in which case jobly.yaml
// is looked up in the working directory and skipped when absent. A .env file
// in the working directory is loaded without overriding the environment.
func Load(file string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("jobly/config: .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("jobly")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("jobly/config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("jobly/config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("jobly/config: %w", err)
	}
	return &cfg, nil
}

// Options converts the structured connection fields for db.OpenWithDriver.
func (d Database) Options() db.DriverOptions {
	return db.DriverOptions{
		Host:     d.Host,
		Port:     d.Port,
		User:     d.User,
		Password: d.Password,
		Database: d.Name,
		SSLMode:  d.SSLMode,
	}
}

// DBConfig builds the pool configuration. DSN is left empty unless URL is
// set, so OpenWithDriver builds it from Options.
func (d Database) DBConfig(hooks ...db.Hook) db.Config {
	return db.Config{
		DSN:             d.URL,
		DriverName:      d.Driver,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
		DefaultTimeout:  d.DefaultTimeout,
		Hooks:           hooks,
	}
}

// SlogLevel maps Level onto slog.
func (l Log) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
