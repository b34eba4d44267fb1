package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quantgate/binance-gateway/pkg/schema"
)

// Config is the top-level configuration file shape.
type Config struct {
	Gateway GatewayConfig `yaml:"gateway"`
	Logging LoggingConfig `yaml:"logging"`
}

// GatewayConfig holds the gateway's connection settings. Key and Secret are
// credential references: an environment variable name, a file path, or the
// literal value (tried in that order).
type GatewayConfig struct {
	Key            string        `yaml:"key"`
	Secret         string        `yaml:"secret"`
	Server         string        `yaml:"server"` // live | test
	ProxyHost      string        `yaml:"proxy_host"`
	ProxyPort      int           `yaml:"proxy_port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	TimerInterval  time.Duration `yaml:"timer_interval"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	MaxAge int    `yaml:"max_age"`
}

// ServerKind converts the configured server string.
func (g GatewayConfig) ServerKind() schema.ServerKind {
	if strings.EqualFold(g.Server, "test") {
		return schema.ServerTest
	}
	return schema.ServerLive
}

// ProxyURL builds the proxy URL, or "" when no proxy is configured.
func (g GatewayConfig) ProxyURL() string {
	if g.ProxyHost == "" || g.ProxyPort <= 0 {
		return ""
	}
	return fmt.Sprintf("http://%s:%d", g.ProxyHost, g.ProxyPort)
}

// LoadConfig reads and validates the configuration file. Environment
// variables BINANCE_API_KEY, BINANCE_API_SECRET and BINANCE_SERVER override
// the file values when set.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Config{
		Gateway: GatewayConfig{
			Server:         "live",
			RequestTimeout: 5 * time.Second,
			TimerInterval:  10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if v := os.Getenv("BINANCE_API_KEY"); v != "" {
		config.Gateway.Key = strings.TrimSpace(v)
	}
	if v := os.Getenv("BINANCE_API_SECRET"); v != "" {
		config.Gateway.Secret = strings.TrimSpace(v)
	}
	if v := os.Getenv("BINANCE_SERVER"); v != "" {
		config.Gateway.Server = strings.TrimSpace(v)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Gateway.Key == "" {
		return fmt.Errorf("gateway.key is required")
	}
	if cfg.Gateway.Secret == "" {
		return fmt.Errorf("gateway.secret is required")
	}
	switch strings.ToLower(cfg.Gateway.Server) {
	case "live", "test":
	default:
		return fmt.Errorf("gateway.server must be 'live' or 'test', got '%s'", cfg.Gateway.Server)
	}
	if cfg.Gateway.ProxyPort < 0 || cfg.Gateway.ProxyPort > 65535 {
		return fmt.Errorf("gateway.proxy_port %d is out of range", cfg.Gateway.ProxyPort)
	}
	if cfg.Gateway.RequestTimeout <= 0 {
		return fmt.Errorf("gateway.request_timeout must be greater than 0")
	}
	if cfg.Gateway.TimerInterval <= 0 {
		return fmt.Errorf("gateway.timer_interval must be greater than 0")
	}
	return nil
}
