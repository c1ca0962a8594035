package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Backend struct {
		Type string `yaml:"type"` // kafka or clickhouse
	} `yaml:"backend"`
	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic"`
		RequiredAcks int      `yaml:"required_acks"`
		Compression  string   `yaml:"compression"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers"`
			BufferSize int           `yaml:"buffer_size"`
			RetryMax   int           `yaml:"retry_max"`
			BackoffMin time.Duration `yaml:"backoff_min"`
			BackoffMax time.Duration `yaml:"backoff_max"`
			MinBytes   int           `yaml:"min_bytes"`
			MaxBytes   int           `yaml:"max_bytes"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Deribit struct {
		BaseURL        string        `yaml:"base_url"`
		WebSocketURL   string        `yaml:"websocket_url"`
		Assets         []string      `yaml:"assets"` // e.g. BTC, ETH
		RequestTimeout time.Duration `yaml:"request_timeout"`
		RateLimitRPS   int           `yaml:"rate_limit_rps"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"deribit"`
	Dvol struct {
		Workers      int           `yaml:"workers"`       // parallel (asset, hour) units
		VovWindow    int           `yaml:"vov_window"`    // rolling window, days
		FVovAlpha    float64       `yaml:"f_vov_alpha"`   // scaling exponent
		CacheTTL     time.Duration `yaml:"cache_ttl"`     // latest-result cache
		RecomputeLag time.Duration `yaml:"recompute_lag"` // wait after the hour closes
		Validation   struct {
			CorrelationThreshold float64 `yaml:"correlation_threshold"`
		} `yaml:"validation"`
	} `yaml:"dvol"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("ASSETS"); v != "" {
		c.Deribit.Assets = strings.Split(v, ",")
	}
	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Dvol.Workers <= 0 {
		c.Dvol.Workers = 4
	}
	if c.Dvol.VovWindow <= 0 {
		c.Dvol.VovWindow = 30
	}
	if c.Dvol.FVovAlpha <= 0 {
		c.Dvol.FVovAlpha = 0.75
	}
	if c.Dvol.Validation.CorrelationThreshold <= 0 {
		c.Dvol.Validation.CorrelationThreshold = 0.90
	}
	if c.Dvol.CacheTTL <= 0 {
		c.Dvol.CacheTTL = 5 * time.Minute
	}
	if c.Deribit.BaseURL == "" {
		c.Deribit.BaseURL = "https://www.deribit.com/api/v2"
	}
	if c.Deribit.WebSocketURL == "" {
		c.Deribit.WebSocketURL = "wss://www.deribit.com/ws/api/v2"
	}
	if c.Deribit.RequestTimeout <= 0 {
		c.Deribit.RequestTimeout = 10 * time.Second
	}
	if c.Deribit.RateLimitRPS <= 0 {
		c.Deribit.RateLimitRPS = 10
	}
	if c.Deribit.ReconnectDelay <= 0 {
		c.Deribit.ReconnectDelay = 5 * time.Second
	}
	if c.Deribit.PingInterval <= 0 {
		c.Deribit.PingInterval = 30 * time.Second
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Backend.Type == "" {
		return fmt.Errorf("backend.type is required")
	}
	if c.Backend.Type != "kafka" && c.Backend.Type != "clickhouse" {
		return fmt.Errorf("backend.type must be 'kafka' or 'clickhouse', got '%s'", c.Backend.Type)
	}
	if len(c.Deribit.Assets) == 0 {
		return fmt.Errorf("deribit.assets cannot be empty")
	}
	if c.Backend.Type == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required for the kafka backend")
	}
	if c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required")
	}
	return nil
}
