package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML configs can say "5s" or "250ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// SweeperConfig holds the background sweep interval
type SweeperConfig struct {
	Interval Duration `yaml:"interval"`
}

// LoggingConfig holds in-memory logger settings
type LoggingConfig struct {
	Level      string `yaml:"level"`
	BufferSize int    `yaml:"buffer_size"`
}

// MetricsConfig holds Prometheus settings
type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
}

// Config is the central configuration struct embedding all component configs
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Sweeper SweeperConfig `yaml:"sweeper"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server:  ServerConfig{Addr: ":8080"},
		Sweeper: SweeperConfig{Interval: Duration(5 * time.Second)},
		Logging: LoggingConfig{Level: "info", BufferSize: 1000},
		Metrics: MetricsConfig{Namespace: "kvstore"},
	}
}

// LoadFromFile loads configuration from a YAML file, layered over defaults
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv applies environment variable overrides to the config
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("KVSTORE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("KVSTORE_SWEEP_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Sweeper.Interval = Duration(parsed)
		}
	}
	if v := os.Getenv("KVSTORE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
