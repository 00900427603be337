package cliconfig

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/vcshare/internal/domain"
)

// DefaultSendPort is the first port assigned to targets given without one.
const DefaultSendPort = 8000

// Config holds CLI configuration for vcshare.
type Config struct {
	// Share generation and sending.
	Threshold   int
	SendPort    int
	DialTimeout time.Duration

	// Receiving.
	Host             string
	DestDir          string
	MaxFiles         int
	ReconstructAfter int
	ReconstructOut   string
	StopFile         string
	StopPort         int
	Scramble         int
	StatusFile       string

	AcceptTimeout time.Duration
	ReadTimeout   time.Duration
	IdleTimeout   time.Duration
	PortWait      time.Duration

	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Threshold:      128,
		SendPort:       DefaultSendPort,
		DialTimeout:    5 * time.Second,
		Host:           "0.0.0.0",
		ReconstructOut: "reconstruction.png",
		AcceptTimeout:  time.Second,
		ReadTimeout:    time.Second,
		PortWait:       5 * time.Second,
		LogLevel:       "info",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 255 {
		return fmt.Errorf("%w: threshold %d outside 0..255", domain.ErrInvalidConfig, c.Threshold)
	}
	if c.SendPort <= 0 || c.SendPort > 65535 {
		return fmt.Errorf("%w: send port %d", domain.ErrInvalidConfig, c.SendPort)
	}
	if c.StopPort < 0 || c.StopPort > 65535 {
		return fmt.Errorf("%w: stop port %d", domain.ErrInvalidConfig, c.StopPort)
	}
	if c.MaxFiles < 0 {
		return fmt.Errorf("%w: max files must not be negative", domain.ErrInvalidConfig)
	}
	if c.ReconstructAfter < 0 {
		return fmt.Errorf("%w: reconstruct-after must not be negative", domain.ErrInvalidConfig)
	}
	if c.Scramble < 0 {
		return fmt.Errorf("%w: scramble must not be negative", domain.ErrInvalidConfig)
	}
	if c.DialTimeout <= 0 {
		return fmt.Errorf("%w: dial timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.AcceptTimeout <= 0 || c.ReadTimeout <= 0 {
		return fmt.Errorf("%w: accept and read timeouts must be positive", domain.ErrInvalidConfig)
	}
	if c.IdleTimeout < 0 {
		return fmt.Errorf("%w: idle timeout must not be negative", domain.ErrInvalidConfig)
	}
	if c.PortWait <= 0 {
		return fmt.Errorf("%w: port wait must be positive", domain.ErrInvalidConfig)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level %q: %w", domain.ErrInvalidConfig, c.LogLevel, err)
	}
	if c.ReconstructOut == "" {
		c.ReconstructOut = DefaultConfig().ReconstructOut
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setIntPtr sets an int value when present, including zero.
func (s *configSetter) setIntPtr(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setIntFromString parses a string to int and sets the destination.
// Zero is accepted so a threshold or port can be cleared from the
// environment.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i < 0 {
		return nil
	}
	*dst = i
	return nil
}
