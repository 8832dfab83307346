package domain

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ValidationError marks a target that was rejected before any process
// was launched.
type ValidationError struct {
	Target string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid target %q: %s", e.Target, e.Reason)
}

// Validate checks the target address against its declared kind.
func (t ScanTarget) Validate() error {
	addr := strings.TrimSpace(t.Address)
	if addr == "" {
		return &ValidationError{Target: t.Address, Reason: "empty address"}
	}

	switch t.Kind {
	case AddressIP:
		if net.ParseIP(addr) == nil {
			return &ValidationError{Target: addr, Reason: "not a valid IP address"}
		}
	case AddressNetwork:
		if _, _, err := net.ParseCIDR(addr); err != nil {
			return &ValidationError{Target: addr, Reason: "not a valid CIDR network"}
		}
	case AddressHostname:
		if strings.ContainsAny(addr, " /") {
			return &ValidationError{Target: addr, Reason: "not a valid hostname"}
		}
	case AddressURL:
		u, err := url.Parse(addr)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return &ValidationError{Target: addr, Reason: "not a valid URL"}
		}
	default:
		return &ValidationError{Target: addr, Reason: fmt.Sprintf("unknown address kind %q", t.Kind)}
	}

	for _, p := range t.Ports {
		if p == 0 {
			return &ValidationError{Target: addr, Reason: "port 0 is not scannable"}
		}
	}
	return nil
}

// Host returns the bare address handed to the probing tool: for URL
// targets the hostname component, otherwise the address as given.
func (t ScanTarget) Host() string {
	if t.Kind == AddressURL {
		if u, err := url.Parse(t.Address); err == nil && u.Hostname() != "" {
			return u.Hostname()
		}
	}
	return strings.TrimSpace(t.Address)
}
