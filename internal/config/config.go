package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Order    OrderConfig    `yaml:"order"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	Path            string        `yaml:"path"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
	AutoMigrate     bool          `yaml:"autoMigrate"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type OrderConfig struct {
	DefaultPerPage int           `yaml:"defaultPerPage"`
	MaxPerPage     int           `yaml:"maxPerPage"`
	TxTimeout      time.Duration `yaml:"txTimeout"`
	CreateAttempts int           `yaml:"createAttempts"`
}

type KafkaConfig struct {
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

// Enabled reports whether order events should be published.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.Topic != ""
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          DriverSQLite,
			Path:            "mfgtrack.db",
			Host:            "localhost",
			Port:            3306,
			User:            "mfgtrack",
			Password:        "secret",
			Name:            "mfgtrack",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			AutoMigrate:     true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Order: OrderConfig{
			DefaultPerPage: 20,
			MaxPerPage:     100,
			TxTimeout:      5 * time.Second,
			CreateAttempts: 3,
		},
		Kafka: KafkaConfig{
			Topic:        "mfgtrack.orders",
			WriteTimeout: 5 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// ApplyEnv overrides cfg with any of the known environment variables that are
// set. Unset variables leave the file or default value in place.
func ApplyEnv(cfg *Config) error {
	v := viper.New()
	keys := []string{
		"SERVER_PORT", "SERVER_WRITE_TIMEOUT",
		"DB_DRIVER", "DB_PATH", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME", "DB_AUTO_MIGRATE",
		"LOG_LEVEL", "LOG_FORMAT",
		"ORDER_MAX_PER_PAGE",
		"KAFKA_BROKERS", "KAFKA_TOPIC",
		"METRICS_ENABLED",
	}
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("binding env %s: %w", key, err)
		}
	}

	if v.IsSet("SERVER_PORT") {
		cfg.Server.Port = v.GetInt("SERVER_PORT")
	}
	if v.IsSet("SERVER_WRITE_TIMEOUT") {
		d, err := time.ParseDuration(v.GetString("SERVER_WRITE_TIMEOUT"))
		if err != nil {
			return fmt.Errorf("parsing SERVER_WRITE_TIMEOUT: %w", err)
		}
		cfg.Server.WriteTimeout = d
	}

	if v.IsSet("DB_DRIVER") {
		cfg.Database.Driver = strings.ToLower(v.GetString("DB_DRIVER"))
	}
	if v.IsSet("DB_PATH") {
		cfg.Database.Path = v.GetString("DB_PATH")
	}
	if v.IsSet("DB_HOST") {
		cfg.Database.Host = v.GetString("DB_HOST")
	}
	if v.IsSet("DB_PORT") {
		cfg.Database.Port = v.GetInt("DB_PORT")
	}
	if v.IsSet("DB_USER") {
		cfg.Database.User = v.GetString("DB_USER")
	}
	if v.IsSet("DB_PASSWORD") {
		cfg.Database.Password = v.GetString("DB_PASSWORD")
	}
	if v.IsSet("DB_NAME") {
		cfg.Database.Name = v.GetString("DB_NAME")
	}
	if v.IsSet("DB_MAX_OPEN_CONNS") {
		cfg.Database.MaxOpenConns = v.GetInt("DB_MAX_OPEN_CONNS")
	}
	if v.IsSet("DB_MAX_IDLE_CONNS") {
		cfg.Database.MaxIdleConns = v.GetInt("DB_MAX_IDLE_CONNS")
	}
	if v.IsSet("DB_CONN_MAX_LIFETIME") {
		d, err := time.ParseDuration(v.GetString("DB_CONN_MAX_LIFETIME"))
		if err != nil {
			return fmt.Errorf("parsing DB_CONN_MAX_LIFETIME: %w", err)
		}
		cfg.Database.ConnMaxLifetime = d
	}
	if v.IsSet("DB_AUTO_MIGRATE") {
		cfg.Database.AutoMigrate = v.GetBool("DB_AUTO_MIGRATE")
	}

	if v.IsSet("LOG_LEVEL") {
		cfg.Log.Level = v.GetString("LOG_LEVEL")
	}
	if v.IsSet("LOG_FORMAT") {
		cfg.Log.Format = strings.ToLower(v.GetString("LOG_FORMAT"))
	}

	if v.IsSet("ORDER_MAX_PER_PAGE") {
		cfg.Order.MaxPerPage = v.GetInt("ORDER_MAX_PER_PAGE")
	}

	if v.IsSet("KAFKA_BROKERS") {
		cfg.Kafka.Brokers = splitList(v.GetString("KAFKA_BROKERS"))
	}
	if v.IsSet("KAFKA_TOPIC") {
		cfg.Kafka.Topic = v.GetString("KAFKA_TOPIC")
	}

	if v.IsSet("METRICS_ENABLED") {
		cfg.Metrics.Enabled = v.GetBool("METRICS_ENABLED")
	}

	return nil
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMySQL:
		if c.Database.Host == "" || c.Database.Name == "" {
			return fmt.Errorf("database host and name are required for driver %q", DriverMySQL)
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required for driver %q", DriverSQLite)
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}

	if c.Order.MaxPerPage <= 0 {
		return fmt.Errorf("order.maxPerPage must be positive")
	}
	if c.Order.DefaultPerPage <= 0 || c.Order.DefaultPerPage > c.Order.MaxPerPage {
		c.Order.DefaultPerPage = c.Order.MaxPerPage
	}
	if c.Order.CreateAttempts < 1 {
		c.Order.CreateAttempts = 1
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
