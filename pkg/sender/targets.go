package sender

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Target is a destination host with an optional port. Port 0 means the port
// is assigned per share from a base port.
type Target struct {
	Host string
	Port int
}

// ParseTargets splits a list such as "h1;h2:9000,[::1]:8001" into targets.
// Entries are separated by ';' or ','. An entry whose port does not parse
// keeps its host and leaves the port unassigned.
func ParseTargets(raw string) []Target {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ';' || r == ',' })
	targets := make([]Target, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		targets = append(targets, parseTarget(f))
	}
	return targets
}

func parseTarget(s string) Target {
	if host, port, err := net.SplitHostPort(s); err == nil {
		return Target{Host: host, Port: parsePort(port)}
	}
	// Bare IPv6 literal or bare host.
	if strings.Count(s, ":") > 1 || !strings.Contains(s, ":") {
		return Target{Host: strings.Trim(s, "[]")}
	}
	i := strings.LastIndex(s, ":")
	return Target{Host: s[:i], Port: parsePort(s[i+1:])}
}

func parsePort(s string) int {
	p, err := strconv.Atoi(s)
	if err != nil || p <= 0 || p > 65535 {
		return 0
	}
	return p
}

// AssignTargets returns one address per share, round-robin over targets.
// A target without a port gets basePort+i for share i.
func AssignTargets(n int, targets []Target, basePort int) ([]string, error) {
	if len(targets) == 0 {
		return nil, ErrNoTargets
	}
	addrs := make([]string, n)
	for i := range addrs {
		t := targets[i%len(targets)]
		port := t.Port
		if port == 0 {
			port = basePort + i
		}
		if port <= 0 || port > 65535 {
			return nil, fmt.Errorf("share %d: port %d out of range", i, port)
		}
		addrs[i] = net.JoinHostPort(t.Host, strconv.Itoa(port))
	}
	return addrs, nil
}

// Result is the outcome of sending one share.
type Result struct {
	Path string
	Addr string
	Err  error
}

// OK reports whether the share was sent.
func (r Result) OK() bool { return r.Err == nil }

// SendShares sends paths[i] to the i-th assigned address, one at a time.
// It fails only when no address can be assigned; per-file failures are
// reported in the results.
func (s *Sender) SendShares(ctx context.Context, paths []string, targets []Target, basePort int) ([]Result, error) {
	addrs, err := AssignTargets(len(paths), targets, basePort)
	if err != nil {
		return nil, err
	}
	results := make([]Result, len(paths))
	for i, p := range paths {
		results[i] = Result{Path: p, Addr: addrs[i], Err: s.SendFile(ctx, p, addrs[i])}
	}
	return results, nil
}
