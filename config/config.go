package config

import (
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Simulation SimulationConfig `yaml:"simulation"`
	Executor   ExecutorConfig   `yaml:"executor"`
	MQTT       MQTTConfig       `yaml:"mqtt"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Forecast   ForecastConfig   `yaml:"forecast"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	// CacheTTLSeconds enables response caching of the dashboard endpoint when positive.
	CacheTTLSeconds int `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // postgres or sqlite
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogLevel               string `yaml:"log_level"`
}

// SimulationConfig controls the background sensor generator.
type SimulationConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"`
	Profile         string        `yaml:"profile"` // baseline or wide
	Seed            int64         `yaml:"seed"`
	// ProfileDefaulted is set when Profile was filled in by ApplyDefaults.
	ProfileDefaulted bool `yaml:"-"`
}

// ExecutorConfig controls the loop that drains pending control commands.
type ExecutorConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"`
	Actuator        string        `yaml:"actuator"` // log or mqtt
}

// MQTTConfig holds the broker settings used by the MQTT actuator.
type MQTTConfig struct {
	Broker                string `yaml:"broker"`
	ClientID              string `yaml:"client_id"`
	TopicPrefix           string `yaml:"topic_prefix"`
	QoS                   byte   `yaml:"qos"`
	ConnectTimeoutSeconds int    `yaml:"connect_timeout_seconds"`
}

// KafkaConfig holds the settings of the optional reading publisher.
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// ForecastConfig holds the forecaster parameters.
type ForecastConfig struct {
	History          int     `yaml:"history"`
	MinHistory       int     `yaml:"min_history"`
	Horizon          int     `yaml:"horizon"`
	MinWindow        int     `yaml:"min_window"`
	MaxWindow        int     `yaml:"max_window"`
	Estimators       int     `yaml:"estimators"`
	MaxDepth         int     `yaml:"max_depth"`
	LearningRate     float64 `yaml:"learning_rate"`
	Seed             int64   `yaml:"seed"`
	DashboardHistory int     `yaml:"dashboard_history"`
}

// PushConfig holds the VAPID keys for web push alerts.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether both VAPID keys are configured.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// WorkerPoolConfig holds the configuration for the alert worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// TracingConfig holds the OTLP exporter settings. Tracing is off when Endpoint is empty.
type TracingConfig struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
}

// LogConfig holds the application log settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills every unset field with its default value.
func (cfg *Config) ApplyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "orchard.db"
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}

	if cfg.Simulation.Profile == "" {
		cfg.Simulation.Profile = "baseline"
		cfg.Simulation.ProfileDefaulted = true
	}
	if cfg.Simulation.IntervalSeconds <= 0 {
		cfg.Simulation.IntervalSeconds = 5
	}
	cfg.Simulation.Interval = time.Duration(cfg.Simulation.IntervalSeconds) * time.Second

	if cfg.Executor.Actuator == "" {
		cfg.Executor.Actuator = "log"
	}
	if cfg.Executor.IntervalSeconds <= 0 {
		cfg.Executor.IntervalSeconds = 60
	}
	cfg.Executor.Interval = time.Duration(cfg.Executor.IntervalSeconds) * time.Second

	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = "orchard/control"
	}
	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = "orchard-executor"
	}
	if cfg.MQTT.ConnectTimeoutSeconds <= 0 {
		cfg.MQTT.ConnectTimeoutSeconds = 10
	}

	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "orchard.readings"
	}

	f := &cfg.Forecast
	if f.History <= 0 {
		f.History = 100
	}
	if f.MinHistory <= 0 {
		f.MinHistory = 8
	}
	if f.Horizon <= 0 {
		f.Horizon = 30
	}
	if f.MinWindow <= 0 {
		f.MinWindow = 3
	}
	if f.MaxWindow <= 0 {
		f.MaxWindow = 12
	}
	if f.MaxWindow < f.MinWindow {
		f.MaxWindow = f.MinWindow
	}
	if f.Estimators <= 0 {
		f.Estimators = 100
	}
	if f.MaxDepth <= 0 {
		f.MaxDepth = 3
	}
	if f.LearningRate <= 0 {
		f.LearningRate = 0.1
	}
	if f.Seed == 0 {
		f.Seed = 42
	}
	if f.DashboardHistory <= 0 {
		f.DashboardHistory = 20
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		slog.Info("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if cfg.Tracing.ServiceName == "" {
		cfg.Tracing.ServiceName = "smart-orchard"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
