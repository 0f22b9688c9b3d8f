// Package config loads Agentlang's runtime configuration from a YAML file
// with environment-variable overrides, mirroring the teacher's
// file-then-env layering.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nucleus/agentlang/internal/resolver"
)

// ServerConfig controls the gRPC front door for remote resolver hosting
// (spec.md §4.3's RemoteResolver peer).
type ServerConfig struct {
	GRPCAddr string `yaml:"grpc_addr"`
}

// DatabaseConfig controls the Postgres-backed resolver's connection.
type DatabaseConfig struct {
	DSN             string `yaml:"dsn"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_seconds"`
}

// TemporalConfig controls the execution-graph worker's Temporal client
// (spec.md §4.9's SUSPEND/resume tier).
type TemporalConfig struct {
	Address   string `yaml:"address"`
	Namespace string `yaml:"namespace"`
	TaskQueue string `yaml:"task_queue"`
}

// LoggingConfig controls internal/logging's output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ResolverPolicyConfig is the YAML-shaped twin of resolver.PolicyConfig
// (spec.md §5's timeout/retry/circuit-breaker envelope), expressed with
// plain durations-as-milliseconds so it marshals cleanly.
type ResolverPolicyConfig struct {
	RequestTimeoutMS   int    `yaml:"request_timeout_ms"`
	MaxAttempts        int    `yaml:"max_attempts"`
	Backoff            string `yaml:"backoff"`
	BaseDelayMS        int    `yaml:"base_delay_ms"`
	MaxDelayMS         int    `yaml:"max_delay_ms"`
	FailureThreshold   int    `yaml:"failure_threshold"`
	ResetTimeoutMS     int    `yaml:"reset_timeout_ms"`
	HalfOpenMaxInFlight int   `yaml:"half_open_max_in_flight"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server   ServerConfig         `yaml:"server"`
	Database DatabaseConfig       `yaml:"database"`
	Temporal TemporalConfig       `yaml:"temporal"`
	Logging  LoggingConfig        `yaml:"logging"`
	Resolver ResolverPolicyConfig `yaml:"resolver"`
}

// New returns a Config populated with the teacher's own defaults
// (spec.md §5's "reasonable defaults" requirement; grounded on
// resolver.DefaultPolicyConfig and _keep/cmd_worker/main.go's constants).
func New() *Config {
	def := resolver.DefaultPolicyConfig()
	return &Config{
		Server: ServerConfig{GRPCAddr: ":9098"},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 1800,
		},
		Temporal: TemporalConfig{
			Address:   "127.0.0.1:7233",
			Namespace: "default",
			TaskQueue: "agentlang",
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Resolver: ResolverPolicyConfig{
			RequestTimeoutMS:    int(def.RequestTimeout / time.Millisecond),
			MaxAttempts:         def.MaxAttempts,
			Backoff:             string(def.Backoff),
			BaseDelayMS:         int(def.BaseDelay / time.Millisecond),
			MaxDelayMS:          int(def.MaxDelay / time.Millisecond),
			FailureThreshold:    int(def.FailureThreshold),
			ResetTimeoutMS:      int(def.ResetTimeout / time.Millisecond),
			HalfOpenMaxInFlight: int(def.HalfOpenMax),
		},
	}
}

// Load reads configuration from the file named by CONFIG_FILE (or
// "configs/config.yaml" if unset, silently skipped if absent), then
// applies environment-variable overrides on top.
func Load() (*Config, error) {
	cfg := New()

	path := strings.TrimSpace(os.Getenv("CONFIG_FILE"))
	if path == "" {
		path = "configs/config.yaml"
	}
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	strVar(&cfg.Server.GRPCAddr, "AGENTLANG_GRPC_ADDR")
	strVar(&cfg.Database.DSN, "AGENTLANG_DATABASE_URL")
	intVar(&cfg.Database.MaxOpenConns, "AGENTLANG_DATABASE_MAX_OPEN_CONNS")
	intVar(&cfg.Database.MaxIdleConns, "AGENTLANG_DATABASE_MAX_IDLE_CONNS")
	strVar(&cfg.Temporal.Address, "TEMPORAL_ADDRESS")
	strVar(&cfg.Temporal.Namespace, "TEMPORAL_NAMESPACE")
	strVar(&cfg.Temporal.TaskQueue, "AGENTLANG_TASK_QUEUE")
	strVar(&cfg.Logging.Level, "LOG_LEVEL")
	strVar(&cfg.Logging.Format, "LOG_FORMAT")
	intVar(&cfg.Resolver.MaxAttempts, "AGENTLANG_RESOLVER_MAX_ATTEMPTS")
	intVar(&cfg.Resolver.RequestTimeoutMS, "AGENTLANG_RESOLVER_TIMEOUT_MS")
}

func strVar(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func intVar(dst *int, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

// Policy converts the YAML-shaped resolver config into a
// resolver.PolicyConfig ready for resolver.NewPolicy.
func (c *Config) Policy() resolver.PolicyConfig {
	r := c.Resolver
	return resolver.PolicyConfig{
		RequestTimeout:   time.Duration(r.RequestTimeoutMS) * time.Millisecond,
		MaxAttempts:      r.MaxAttempts,
		Backoff:          resolver.BackoffKind(r.Backoff),
		BaseDelay:        time.Duration(r.BaseDelayMS) * time.Millisecond,
		MaxDelay:         time.Duration(r.MaxDelayMS) * time.Millisecond,
		FailureThreshold: uint32(r.FailureThreshold),
		ResetTimeout:     time.Duration(r.ResetTimeoutMS) * time.Millisecond,
		HalfOpenMax:      uint32(r.HalfOpenMaxInFlight),
	}
}

// ConnMaxLifetimeDuration converts DatabaseConfig's second count to a
// time.Duration for sql.DB.SetConnMaxLifetime.
func (d DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}
