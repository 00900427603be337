package cliconfig

import (
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Threshold        *int   `toml:"threshold"`
	SendPort         int    `toml:"send_port"`
	DialTimeout      string `toml:"dial_timeout"`
	Host             string `toml:"host"`
	DestDir          string `toml:"dest_dir"`
	MaxFiles         int    `toml:"max_files"`
	ReconstructAfter int    `toml:"reconstruct_after"`
	ReconstructOut   string `toml:"reconstruct_out"`
	StopFile         string `toml:"stop_file"`
	StopPort         int    `toml:"stop_port"`
	Scramble         int    `toml:"scramble"`
	StatusFile       string `toml:"status_file"`
	AcceptTimeout    string `toml:"accept_timeout"`
	ReadTimeout      string `toml:"read_timeout"`
	IdleTimeout      string `toml:"idle_timeout"`
	PortWait         string `toml:"port_wait"`
	LogLevel         string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.vcshare/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".vcshare", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("host", fc.Host, &cfg.Host)
	s.setString("dest", fc.DestDir, &cfg.DestDir)
	s.setString("reconstruct-out", fc.ReconstructOut, &cfg.ReconstructOut)
	s.setString("stop-file", fc.StopFile, &cfg.StopFile)
	s.setString("status-file", fc.StatusFile, &cfg.StatusFile)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	s.setIntPtr("threshold", fc.Threshold, &cfg.Threshold)
	s.setInt("send-port", fc.SendPort, &cfg.SendPort)
	s.setInt("max", fc.MaxFiles, &cfg.MaxFiles)
	s.setInt("reconstruct-after", fc.ReconstructAfter, &cfg.ReconstructAfter)
	s.setInt("stop-port", fc.StopPort, &cfg.StopPort)
	s.setInt("scramble", fc.Scramble, &cfg.Scramble)

	durations := []struct {
		flag  string
		value string
		dst   *time.Duration
	}{
		{"dial-timeout", fc.DialTimeout, &cfg.DialTimeout},
		{"accept-timeout", fc.AcceptTimeout, &cfg.AcceptTimeout},
		{"read-timeout", fc.ReadTimeout, &cfg.ReadTimeout},
		{"idle-timeout", fc.IdleTimeout, &cfg.IdleTimeout},
		{"port-wait", fc.PortWait, &cfg.PortWait},
	}
	for _, d := range durations {
		if err := s.setDuration(d.flag, d.value, d.dst); err != nil {
			return err
		}
	}
	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
