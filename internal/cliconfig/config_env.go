package cliconfig

import "os"

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "VCSHARE_"

// ApplyEnvConfig applies configuration from environment variables (VCSHARE_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)
	env := func(name string) string { return os.Getenv(EnvPrefix + name) }

	s.setString("host", env("HOST"), &cfg.Host)
	s.setString("dest", env("DEST_DIR"), &cfg.DestDir)
	s.setString("reconstruct-out", env("RECONSTRUCT_OUT"), &cfg.ReconstructOut)
	s.setString("stop-file", env("STOP_FILE"), &cfg.StopFile)
	s.setString("status-file", env("STATUS_FILE"), &cfg.StatusFile)
	s.setString("log-level", env("LOG_LEVEL"), &cfg.LogLevel)

	ints := []struct {
		flag, name string
		dst        *int
	}{
		{"threshold", "THRESHOLD", &cfg.Threshold},
		{"send-port", "SEND_PORT", &cfg.SendPort},
		{"max", "MAX_FILES", &cfg.MaxFiles},
		{"reconstruct-after", "RECONSTRUCT_AFTER", &cfg.ReconstructAfter},
		{"stop-port", "STOP_PORT", &cfg.StopPort},
		{"scramble", "SCRAMBLE", &cfg.Scramble},
	}
	for _, i := range ints {
		if err := s.setIntFromString(i.flag, env(i.name), i.dst); err != nil {
			return err
		}
	}

	if err := s.setDuration("dial-timeout", env("DIAL_TIMEOUT"), &cfg.DialTimeout); err != nil {
		return err
	}
	if err := s.setDuration("accept-timeout", env("ACCEPT_TIMEOUT"), &cfg.AcceptTimeout); err != nil {
		return err
	}
	if err := s.setDuration("read-timeout", env("READ_TIMEOUT"), &cfg.ReadTimeout); err != nil {
		return err
	}
	if err := s.setDuration("idle-timeout", env("IDLE_TIMEOUT"), &cfg.IdleTimeout); err != nil {
		return err
	}
	if err := s.setDuration("port-wait", env("PORT_WAIT"), &cfg.PortWait); err != nil {
		return err
	}
	return nil
}
