package config

import (
	"fmt"
	"strings"
)

// Validate performs comprehensive validation of the configuration
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return fmt.Errorf("api config error: %v", err)
	}
	if err := c.validateKafka(); err != nil {
		return fmt.Errorf("kafka config error: %v", err)
	}
	if err := c.validateRedis(); err != nil {
		return fmt.Errorf("redis config error: %v", err)
	}
	if err := c.validateTrust(); err != nil {
		return fmt.Errorf("trust config error: %v", err)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if c.API.EnableCORS && len(c.API.AllowedOrigins) == 0 {
		return fmt.Errorf("allowed_origins is required when CORS is enabled")
	}
	return nil
}

func (c *Config) validateKafka() error {
	if !c.Kafka.Enabled {
		return nil
	}
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("brokers is required when kafka is enabled")
	}
	for _, broker := range c.Kafka.Brokers {
		if !strings.Contains(broker, ":") {
			return fmt.Errorf("invalid broker format: %s (expected host:port)", broker)
		}
	}
	return nil
}

func (c *Config) validateRedis() error {
	if !c.Redis.Enabled {
		return nil
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("addr is required when redis is enabled")
	}
	return nil
}

func (c *Config) validateTrust() error {
	if c.Trust.Max <= c.Trust.Min {
		return fmt.Errorf("max must be greater than min")
	}
	if c.Trust.RatingWeight <= 0 {
		return fmt.Errorf("rating_weight must be positive")
	}
	return nil
}
