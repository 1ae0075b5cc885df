// Package config loads the simulator configuration: YAML file first, then
// environment overrides, then validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

type Config struct {
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Broker  BrokerConfig  `yaml:"broker"`
	Roster  RosterConfig  `yaml:"roster"`
	HTTP    HTTPConfig    `yaml:"http"`
	GRPC    GRPCConfig    `yaml:"grpc"`
	Logging LoggingConfig `yaml:"logging"`
}

// MQTTConfig describes how every device connection reaches the broker.
type MQTTConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	User           string        `yaml:"user"`
	Password       string        `yaml:"password"`
	ClientPrefix   string        `yaml:"client_prefix"`
	QoS            int           `yaml:"qos"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	PublishTimeout time.Duration `yaml:"publish_timeout"`
	ConnectRetries int           `yaml:"connect_retries"`
	Breaker        BreakerConfig `yaml:"breaker"`
}

// BreakerConfig tunes the per-connection publish circuit breaker.
type BreakerConfig struct {
	Failures int           `yaml:"failures"`
	OpenFor  time.Duration `yaml:"open_for"`
}

// BrokerConfig controls the optional in-process broker.
type BrokerConfig struct {
	Embedded bool   `yaml:"embedded"`
	Address  string `yaml:"address"`
}

type RosterConfig struct {
	Path string `yaml:"path"` // empty = built-in seed roster
}

type HTTPConfig struct {
	Port int `yaml:"port"`
}

type GRPCConfig struct {
	Port int `yaml:"port"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		MQTT: MQTTConfig{
			Host:           "localhost",
			Port:           1883,
			User:           "guest",
			Password:       "guest",
			ClientPrefix:   "field-simulator",
			QoS:            0,
			ConnectTimeout: 5 * time.Second,
			PublishTimeout: 2 * time.Second,
			ConnectRetries: 5,
			Breaker: BreakerConfig{
				Failures: 3,
				OpenFor:  10 * time.Second,
			},
		},
		Broker: BrokerConfig{
			Embedded: false,
			Address:  ":1883",
		},
		HTTP: HTTPConfig{Port: 8080},
		GRPC: GRPCConfig{Port: 9090},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	cfg.MQTT.Host = envStr("RABBITMQ_HOST", cfg.MQTT.Host)
	cfg.MQTT.Port = envInt("RABBITMQ_PORT", cfg.MQTT.Port)
	cfg.MQTT.User = envStr("RABBITMQ_USER", cfg.MQTT.User)
	cfg.MQTT.Password = envStr("RABBITMQ_PASSWORD", cfg.MQTT.Password)
	cfg.MQTT.ClientPrefix = envStr("RABBITMQ_CLIENTID", cfg.MQTT.ClientPrefix)

	cfg.HTTP.Port = envInt("HTTP_PORT", cfg.HTTP.Port)
	cfg.GRPC.Port = envInt("GRPC_PORT", cfg.GRPC.Port)

	cfg.Logging.Level = envStr("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.Format = envStr("LOG_FORMAT", cfg.Logging.Format)

	cfg.Roster.Path = envStr("ROSTER_PATH", cfg.Roster.Path)
	cfg.Broker.Embedded = envBool("EMBEDDED_BROKER", cfg.Broker.Embedded)
}

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []string

	if c.MQTT.Host == "" {
		errs = append(errs, "mqtt.host is required")
	}
	if !validPort(c.MQTT.Port) {
		errs = append(errs, "mqtt.port must be between 1 and 65535")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.ConnectTimeout <= 0 {
		errs = append(errs, "mqtt.connect_timeout must be positive")
	}
	if c.MQTT.PublishTimeout <= 0 {
		errs = append(errs, "mqtt.publish_timeout must be positive")
	}
	if c.MQTT.ConnectRetries < 1 {
		errs = append(errs, "mqtt.connect_retries must be at least 1")
	}
	if c.MQTT.Breaker.Failures < 1 {
		errs = append(errs, "mqtt.breaker.failures must be at least 1")
	}
	if c.Broker.Embedded && c.Broker.Address == "" {
		errs = append(errs, "broker.address is required when broker.embedded is set")
	}
	if !validPort(c.HTTP.Port) {
		errs = append(errs, "http.port must be between 1 and 65535")
	}
	if !validPort(c.GRPC.Port) {
		errs = append(errs, "grpc.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}

func validPort(p int) bool { return p >= 1 && p <= 65535 }

// BrokerURL is the address paho dials.
func (c MQTTConfig) BrokerURL() string {
	return fmt.Sprintf("tcp://%s:%d", c.Host, c.Port)
}
