package cliconfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/vcshare/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 128, cfg.Threshold)
	assert.Equal(t, DefaultSendPort, cfg.SendPort)
	assert.Equal(t, "reconstruction.png", cfg.ReconstructOut)
	assert.Equal(t, time.Second, cfg.AcceptTimeout)
	assert.Equal(t, time.Second, cfg.ReadTimeout)
	assert.Equal(t, 5*time.Second, cfg.PortWait)
	assert.NoError(t, cfg.Validate(), "default config must be valid")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", modify: func(c *Config) {}},
		{name: "threshold zero", modify: func(c *Config) { c.Threshold = 0 }},
		{name: "threshold too large", modify: func(c *Config) { c.Threshold = 256 }, wantErr: true},
		{name: "negative threshold", modify: func(c *Config) { c.Threshold = -1 }, wantErr: true},
		{name: "send port zero", modify: func(c *Config) { c.SendPort = 0 }, wantErr: true},
		{name: "send port too large", modify: func(c *Config) { c.SendPort = 70000 }, wantErr: true},
		{name: "stop port disabled", modify: func(c *Config) { c.StopPort = 0 }},
		{name: "stop port too large", modify: func(c *Config) { c.StopPort = 65536 }, wantErr: true},
		{name: "negative max", modify: func(c *Config) { c.MaxFiles = -1 }, wantErr: true},
		{name: "negative reconstruct-after", modify: func(c *Config) { c.ReconstructAfter = -2 }, wantErr: true},
		{name: "negative scramble", modify: func(c *Config) { c.Scramble = -3 }, wantErr: true},
		{name: "zero dial timeout", modify: func(c *Config) { c.DialTimeout = 0 }, wantErr: true},
		{name: "zero accept timeout", modify: func(c *Config) { c.AcceptTimeout = 0 }, wantErr: true},
		{name: "negative idle timeout", modify: func(c *Config) { c.IdleTimeout = -time.Second }, wantErr: true},
		{name: "zero port wait", modify: func(c *Config) { c.PortWait = 0 }, wantErr: true},
		{name: "bad log level", modify: func(c *Config) { c.LogLevel = "loud" }, wantErr: true},
		{name: "debug log level", modify: func(c *Config) { c.LogLevel = "debug" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestConfig_Validate_Derivations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ReconstructOut = ""
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "reconstruction.png", cfg.ReconstructOut)
}
