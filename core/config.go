package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultHost          = "compute.googleapis.com"
	DefaultTransportKind = "rest"
)

type RetryConfig struct {
	MaxAttempts          int           `koanf:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoff       time.Duration `koanf:"initial_backoff" mapstructure:"initial_backoff"`
	MaxBackoff           time.Duration `koanf:"max_backoff" mapstructure:"max_backoff"`
	Multiplier           float64       `koanf:"multiplier" mapstructure:"multiplier"`
	Deadline             time.Duration `koanf:"deadline" mapstructure:"deadline"`
	RetryableStatusCodes []int         `koanf:"retryable_status_codes" mapstructure:"retryable_status_codes"`
	RetryableGRPCCodes   []string      `koanf:"retryable_grpc_codes" mapstructure:"retryable_grpc_codes"`
}

// Enabled reports whether the configuration asks for more than one attempt.
func (c RetryConfig) Enabled() bool {
	return c.MaxAttempts > 1
}

type Config struct {
	ServiceName     string                   `koanf:"service_name" mapstructure:"service_name"`
	Host            string                   `koanf:"host" mapstructure:"host"`
	Transport       string                   `koanf:"transport" mapstructure:"transport"`
	Insecure        bool                     `koanf:"insecure" mapstructure:"insecure"`
	CredentialsFile string                   `koanf:"credentials_file" mapstructure:"credentials_file"`
	Scopes          []string                 `koanf:"scopes" mapstructure:"scopes"`
	QuotaProjectID  string                   `koanf:"quota_project_id" mapstructure:"quota_project_id"`
	DefaultTimeout  time.Duration            `koanf:"default_timeout" mapstructure:"default_timeout"`
	Timeouts        map[string]time.Duration `koanf:"timeouts" mapstructure:"timeouts"`
	Retry           RetryConfig              `koanf:"retry" mapstructure:"retry"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "backendservices",
		Host:        DefaultHost,
		Transport:   DefaultTransportKind,
		Timeouts:    map[string]time.Duration{},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if strings.TrimSpace(c.Host) == "" {
		return fmt.Errorf("core: host is required")
	}
	if c.DefaultTimeout < 0 {
		return fmt.Errorf("core: default_timeout must not be negative")
	}
	if _, err := c.OperationTimeouts(); err != nil {
		return err
	}
	return c.Retry.Validate()
}

func (c RetryConfig) Validate() error {
	if c.MaxAttempts < 0 {
		return fmt.Errorf("core: retry.max_attempts must not be negative")
	}
	if c.InitialBackoff < 0 || c.MaxBackoff < 0 || c.Deadline < 0 {
		return fmt.Errorf("core: retry durations must not be negative")
	}
	if c.Multiplier != 0 && c.Multiplier < 1 {
		return fmt.Errorf("core: retry.multiplier must be at least 1")
	}
	for _, code := range c.RetryableStatusCodes {
		if code < 100 || code > 599 {
			return fmt.Errorf("core: retry.retryable_status_codes: invalid status %d", code)
		}
	}
	if _, err := parseGRPCCodes(c.RetryableGRPCCodes); err != nil {
		return fmt.Errorf("core: retry.retryable_grpc_codes: %w", err)
	}
	return nil
}

// OperationTimeouts resolves the Timeouts keys to operations. Two keys naming
// the same operation (get and Get, get_health and get-health) are rejected.
func (c Config) OperationTimeouts() (map[Operation]time.Duration, error) {
	resolved := make(map[Operation]time.Duration, len(c.Timeouts))
	keys := make(map[Operation]string, len(c.Timeouts))
	for name, timeout := range c.Timeouts {
		op, err := ParseOperation(name)
		if err != nil {
			return nil, fmt.Errorf("core: timeouts: %w", err)
		}
		if timeout < 0 {
			return nil, fmt.Errorf("core: timeouts: %s must not be negative", name)
		}
		if previous, ok := keys[op]; ok {
			first, second := previous, name
			if second < first {
				first, second = second, first
			}
			return nil, fmt.Errorf("core: timeouts: %q and %q both configure %s", first, second, op)
		}
		keys[op] = name
		resolved[op] = timeout
	}
	return resolved, nil
}

// TimeoutFor returns the configured per-attempt timeout for op, falling back to
// DefaultTimeout. Zero means unbounded.
func (c Config) TimeoutFor(op Operation) time.Duration {
	resolved, err := c.OperationTimeouts()
	if err != nil {
		return c.DefaultTimeout
	}
	return timeoutFor(resolved, op, c.DefaultTimeout)
}

func timeoutFor(resolved map[Operation]time.Duration, op Operation, fallback time.Duration) time.Duration {
	if timeout, ok := resolved[op]; ok {
		return timeout
	}
	return fallback
}
