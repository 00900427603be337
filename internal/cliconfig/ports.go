package cliconfig

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bft-labs/vcshare/internal/domain"
)

// ParsePorts parses a port list such as "8000;8001" or "8000,8001".
// Empty entries are skipped.
func ParsePorts(raw string) ([]uint16, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ';' || r == ',' })
	ports := make([]uint16, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		p, err := strconv.ParseUint(f, 10, 16)
		if err != nil || p == 0 {
			return nil, fmt.Errorf("%w: invalid port %q", domain.ErrInvalidConfig, f)
		}
		ports = append(ports, uint16(p))
	}
	if len(ports) == 0 {
		return nil, fmt.Errorf("%w: no ports in %q", domain.ErrInvalidConfig, raw)
	}
	return ports, nil
}
