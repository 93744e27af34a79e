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
	Engine struct {
		ShortWindow             int           `yaml:"short_window"`
		LongWindow              int           `yaml:"long_window"`
		RSIWindow               int           `yaml:"rsi_window"`
		SupportResistanceWindow int           `yaml:"support_resistance_window"`
		MinConfirmations        int           `yaml:"min_confirmations"`
		HistoryDepth            int           `yaml:"history_depth"`
		Interval                time.Duration `yaml:"interval"`
	} `yaml:"engine"`
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
			DLQTopic   string        `yaml:"dlq_topic"`
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
	Redis struct {
		Addr       string `yaml:"addr"`
		Password   string `yaml:"password"`
		DB         int    `yaml:"db"`
		KeyPrefix  string `yaml:"key_prefix"`
		MaxHistory int    `yaml:"max_history"`
	} `yaml:"redis"`
	Cache struct {
		Backend string `yaml:"backend"` // memory (default) or redis
	} `yaml:"cache"`
	Quotes struct {
		Transport      string        `yaml:"transport"` // websocket (default) or rest
		APIKey         string        `yaml:"api_key"`
		WebSocketURL   string        `yaml:"websocket_url"`
		RESTURL        string        `yaml:"rest_url"`
		Assets         []string      `yaml:"assets"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
		PollInterval   time.Duration `yaml:"poll_interval"`
	} `yaml:"quotes"`
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

	// Validate required fields
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

	// Override with environment variables
	if v := os.Getenv("QUOTES_API_KEY"); v != "" {
		c.Quotes.APIKey = v
	}
	if v := os.Getenv("ASSETS"); v != "" {
		c.Quotes.Assets = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}

	return c, nil
}

// Validate checks if the configuration is valid. Required fields have no
// silent fallbacks; engine windows default here, explicitly, in one place.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Quotes.Assets) == 0 {
		return fmt.Errorf("quotes.assets cannot be empty")
	}
	if c.Quotes.APIKey == "" {
		return fmt.Errorf("quotes.api_key is required")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	switch c.Quotes.Transport {
	case "":
		c.Quotes.Transport = "websocket"
	case "websocket", "rest":
	default:
		return fmt.Errorf("quotes.transport must be websocket or rest")
	}
	if c.Quotes.Transport == "rest" && c.Quotes.RESTURL == "" {
		return fmt.Errorf("quotes.rest_url is required for rest transport")
	}
	switch c.Cache.Backend {
	case "":
		c.Cache.Backend = "memory"
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be memory or redis")
	}

	if c.Engine.ShortWindow <= 0 {
		c.Engine.ShortWindow = 10
	}
	if c.Engine.LongWindow <= 0 {
		c.Engine.LongWindow = 30
	}
	if c.Engine.ShortWindow >= c.Engine.LongWindow {
		return fmt.Errorf("engine.short_window must be below engine.long_window")
	}
	if c.Engine.RSIWindow <= 0 {
		c.Engine.RSIWindow = 14
	}
	if c.Engine.SupportResistanceWindow <= 0 {
		c.Engine.SupportResistanceWindow = 20
	}
	if c.Engine.MinConfirmations <= 0 {
		c.Engine.MinConfirmations = 2
	}
	if c.Engine.HistoryDepth <= 0 {
		c.Engine.HistoryDepth = 100
	}
	if c.Engine.HistoryDepth < c.Engine.LongWindow {
		return fmt.Errorf("engine.history_depth must cover engine.long_window")
	}
	if c.Engine.Interval <= 0 {
		c.Engine.Interval = 5 * time.Minute
	}
	return nil
}
