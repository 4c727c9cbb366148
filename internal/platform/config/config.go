package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Cfg holds the loaded application configuration for the whole process.
var Cfg *Config

// Config mirrors the structure of config.yaml.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Mode    string     `mapstructure:"mode"` // "debug" or "release"
	Address string     `mapstructure:"address"`
	Cors    CorsConfig `mapstructure:"cors"`
}

// CorsConfig lists the browser origins allowed to call the API.
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig groups the relational store and the Redis cache.
type DatabaseConfig struct {
	SQL   SQLConfig   `mapstructure:"sql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// SQLConfig selects the GORM driver. SQLite is the development default; the
// production directory runs on Postgres, so both drivers are supported.
type SQLConfig struct {
	Driver string `mapstructure:"driver"` // "sqlite" or "postgres"
	DSN    string `mapstructure:"dsn"`
}

// RedisConfig holds the connection parameters for the cache.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoadConfig locates, loads and parses config.yaml, applying environment
// variable overrides (SERVER_ADDRESS, DATABASE_REDIS_ADDRESS, ...).
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.mode", "release")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("database.sql.driver", "sqlite")
	v.SetDefault("database.sql.dsn", "directory.db")
	v.SetDefault("database.redis.address", "localhost:6379")

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine, defaults plus env cover local runs.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	Cfg = &cfg
	return Cfg, nil
}
