package config

import (
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Identity IdentityConfig `mapstructure:"identity"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"`
}

// StoreConfig selects the persistence driver: "postgres" or "sqlite".
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

type KafkaConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	Brokers         []string `mapstructure:"brokers"`
	ConsumerGroupID string   `mapstructure:"consumer_group_id"`
	Topics          []string `mapstructure:"topics"`
}

// IdentityConfig holds the shared secret for decoding host-app bearer tokens.
// Empty secret disables the bearer identity fallback.
type IdentityConfig struct {
	Secret string `mapstructure:"secret"`
}

// Load reads configuration from environment variables and config files.
// Environment variables override file values. Prefix: PANEL_
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.name", "panel_notifications")
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.password", "password")
	v.SetDefault("sqlite.path", "notifications.db")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.consumer_group_id", "panel-notifications-group")
	v.SetDefault("kafka.topics", []string{"content-events", "account-events", "notification-commands"})
	v.SetDefault("identity.secret", "")

	// Environment variables (e.g. PANEL_STORE_DRIVER -> store.driver)
	v.SetEnvPrefix("PANEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Also support plain env vars for Docker Compose convenience
	v.BindEnv("postgres.host", "DB_HOST")
	v.BindEnv("postgres.port", "DB_PORT")
	v.BindEnv("postgres.name", "DB_NAME")
	v.BindEnv("postgres.user", "DB_USER")
	v.BindEnv("postgres.password", "DB_PASSWORD")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("identity.secret", "IDENTITY_SECRET")
	v.BindEnv("server.port", "PORT")

	// Try loading config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // Not required

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (p PostgresConfig) DSN() string {
	return "host=" + p.Host +
		" port=" + strconv.Itoa(p.Port) +
		" dbname=" + p.Name +
		" user=" + p.User +
		" password=" + p.Password +
		" sslmode=disable"
}
