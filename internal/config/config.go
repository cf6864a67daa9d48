package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration
type Config struct {
	API    APIConfig    `yaml:"api"`
	Kafka  KafkaConfig  `yaml:"kafka"`
	Redis  RedisConfig  `yaml:"redis"`
	Email  EmailConfig  `yaml:"email"`
	Slack  SlackConfig  `yaml:"slack"`
	Stripe StripeConfig `yaml:"stripe"`
	OpenAI OpenAIConfig `yaml:"openai"`
	Trust  TrustConfig  `yaml:"trust"`
	Invite InviteConfig `yaml:"invite"`
	Report ReportConfig `yaml:"report"`
}

// APIConfig represents HTTP gateway configuration
type APIConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	EnableCORS     bool          `yaml:"enable_cors"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

// KafkaConfig represents event bus configuration
type KafkaConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Brokers      []string      `yaml:"brokers"`
	ClientID     string        `yaml:"client_id"`
	BatchSize    int           `yaml:"batch_size"`
	BatchTimeout time.Duration `yaml:"batch_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// RedisConfig represents cache backend configuration
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// EmailConfig represents outbound mail configuration
type EmailConfig struct {
	SMTPAddr string `yaml:"smtp_addr"`
	From     string `yaml:"from"`
}

// SlackConfig represents internal notification configuration
type SlackConfig struct {
	Token   string `yaml:"token"`
	Channel string `yaml:"channel"`
}

// StripeConfig represents billing lookup configuration
type StripeConfig struct {
	APIKey string `yaml:"api_key"`
}

// OpenAIConfig represents report narrative configuration
type OpenAIConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// TrustConfig tunes the trust score engine
type TrustConfig struct {
	Min          float64 `yaml:"min"`
	Max          float64 `yaml:"max"`
	RatingWeight float64 `yaml:"rating_weight"`
}

// InviteConfig tunes the invite dispatcher
type InviteConfig struct {
	QueueSize int `yaml:"queue_size"`
}

// ReportConfig tunes report caching
type ReportConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// Load reads configuration from CONFIG_PATH (default config/config.yaml) and
// fills in defaults.
func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.API.ReadTimeout == 0 {
		c.API.ReadTimeout = 15 * time.Second
	}
	if c.API.WriteTimeout == 0 {
		c.API.WriteTimeout = 15 * time.Second
	}
	if c.API.IdleTimeout == 0 {
		c.API.IdleTimeout = 60 * time.Second
	}
	if c.Kafka.ClientID == "" {
		c.Kafka.ClientID = "engagehub"
	}
	if c.Kafka.BatchSize == 0 {
		c.Kafka.BatchSize = 100
	}
	if c.Kafka.BatchTimeout == 0 {
		c.Kafka.BatchTimeout = time.Second
	}
	if c.Kafka.WriteTimeout == 0 {
		c.Kafka.WriteTimeout = 10 * time.Second
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "engagehub"
	}
	if c.Trust.Max == 0 {
		c.Trust.Min = 0
		c.Trust.Max = 10
	}
	if c.Trust.RatingWeight == 0 {
		c.Trust.RatingWeight = 0.5
	}
	if c.Invite.QueueSize == 0 {
		c.Invite.QueueSize = 256
	}
	if c.Report.CacheTTL == 0 {
		c.Report.CacheTTL = 5 * time.Minute
	}
}
