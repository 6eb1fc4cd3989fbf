package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rpggio/canopy/internal/domain/conservation"
	"gopkg.in/yaml.v3"
)

// ErrInvalid indicates a configuration value that cannot be used.
var ErrInvalid = errors.New("invalid config")

// Transport modes for the MCP server.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config defines application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	Auth      AuthConfig      `yaml:"auth"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Tracker   TrackerConfig   `yaml:"tracker"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"`
}

// AuthConfig guards the HTTP transport. Tokens maps bearer tokens to the
// operator they identify.
type AuthConfig struct {
	Enabled bool              `yaml:"enabled"`
	Tokens  map[string]string `yaml:"tokens"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// GatewayConfig locates the contract node and the deployed contract.
type GatewayConfig struct {
	URL             string        `yaml:"url"`
	Token           string        `yaml:"token"`
	Timeout         time.Duration `yaml:"timeout"`
	ContractAddress string        `yaml:"contract_address"`
}

// TrackerConfig holds the validator gate thresholds and unit rounding.
type TrackerConfig struct {
	MinReputation     int    `yaml:"min_reputation"`
	MinValidators     int    `yaml:"min_validators"`
	LookupConcurrency int    `yaml:"lookup_concurrency"`
	Rounding          string `yaml:"rounding"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: TransportStdio,
		},
		DB: DBConfig{
			Path: "canopy.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Gateway: GatewayConfig{
			URL:     "http://localhost:3999/rpc",
			Timeout: 30 * time.Second,
		},
		Tracker: TrackerConfig{
			MinReputation:     conservation.DefaultMinReputation,
			MinValidators:     conservation.DefaultMinValidators,
			LookupConcurrency: conservation.DefaultLookupConcurrency,
			Rounding:          conservation.RoundHalfEven.String(),
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CANOPY_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if host := os.Getenv("CANOPY_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if err := envInt("CANOPY_SERVER_PORT", &cfg.Server.Port); err != nil {
		return err
	}
	if mode := os.Getenv("CANOPY_TRANSPORT"); mode != "" {
		cfg.Transport.Mode = strings.ToLower(mode)
	}
	if dbPath := os.Getenv("CANOPY_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("CANOPY_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("CANOPY_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if url := os.Getenv("CANOPY_GATEWAY_URL"); url != "" {
		cfg.Gateway.URL = url
	}
	if token := os.Getenv("CANOPY_GATEWAY_TOKEN"); token != "" {
		cfg.Gateway.Token = token
	}
	if timeout := os.Getenv("CANOPY_GATEWAY_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid CANOPY_GATEWAY_TIMEOUT: %w", err)
		}
		cfg.Gateway.Timeout = d
	}
	if addr := os.Getenv("CANOPY_CONTRACT_ADDRESS"); addr != "" {
		cfg.Gateway.ContractAddress = addr
	}
	if err := envInt("CANOPY_MIN_REPUTATION", &cfg.Tracker.MinReputation); err != nil {
		return err
	}
	if err := envInt("CANOPY_MIN_VALIDATORS", &cfg.Tracker.MinValidators); err != nil {
		return err
	}
	if rounding := os.Getenv("CANOPY_ROUNDING"); rounding != "" {
		cfg.Tracker.Rounding = rounding
	}
	return nil
}

func envInt(name string, dst *int) error {
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = n
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Gateway.URL) == "" {
		return fmt.Errorf("%w: gateway url is required", ErrInvalid)
	}
	if c.Gateway.Timeout < 0 {
		return fmt.Errorf("%w: gateway timeout %s", ErrInvalid, c.Gateway.Timeout)
	}
	if _, err := c.Tracker.RoundingMode(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Tracker.MinValidators <= 0 {
		return fmt.Errorf("%w: min validators must be positive, got %d", ErrInvalid, c.Tracker.MinValidators)
	}
	if c.Tracker.MinReputation <= 0 || c.Tracker.MinReputation > 100 {
		return fmt.Errorf("%w: min reputation must be within 1..100, got %d", ErrInvalid, c.Tracker.MinReputation)
	}
	switch c.Transport.Mode {
	case TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("%w: unknown transport mode %q", ErrInvalid, c.Transport.Mode)
	}
	if c.Transport.Mode == TransportHTTP && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		return fmt.Errorf("%w: server port %d", ErrInvalid, c.Server.Port)
	}
	if c.Auth.Enabled && len(c.Auth.Tokens) == 0 {
		return fmt.Errorf("%w: auth enabled without tokens", ErrInvalid)
	}
	return nil
}

// RoundingMode parses the configured rounding rule.
func (t TrackerConfig) RoundingMode() (conservation.RoundingMode, error) {
	return conservation.ParseRoundingMode(t.Rounding)
}

// TrackerOptions converts the configuration into tracker options.
func (c Config) TrackerOptions() (conservation.Options, error) {
	mode, err := c.Tracker.RoundingMode()
	if err != nil {
		return conservation.Options{}, err
	}
	return conservation.Options{
		ContractAddress:   c.Gateway.ContractAddress,
		MinReputation:     c.Tracker.MinReputation,
		MinValidators:     c.Tracker.MinValidators,
		LookupConcurrency: c.Tracker.LookupConcurrency,
		Rounding:          mode,
	}, nil
}
