// Package parser normalizes probing-tool output into findings. The
// structured XML document on stdout is the primary path; a line-based
// text fallback covers tool builds or failure modes where the document
// is truncated or absent.
package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Ullaakut/nmap/v3"

	"bytemomo/scylla/internal/domain"
)

// FormatError marks raw output that neither parse path could make sense
// of. Callers treat it as a data-quality problem on one target, not as a
// failure of the scan batch.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unrecognized scanner output: %v", e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

var portLine = regexp.MustCompile(`(?m)^(\d{1,5})/(tcp|udp)\s+(open|closed|filtered)(?:\s+(\S+))?`)

var sweepLine = regexp.MustCompile(`(?m)^Nmap scan report for (\S+)(?: \(([\d.:a-fA-F]+)\))?`)

// ParsePortScan extracts port, service, and host findings from raw scan
// output. The XML document is tried first; on a malformed document the
// text fallback runs, and only when both paths yield nothing is a
// FormatError returned.
func ParsePortScan(raw string) (domain.Findings, error) {
	findings, err := parseXML(raw)
	if err == nil {
		return findings, nil
	}

	fallback := parseText(raw)
	if fallback.Empty() {
		return domain.Findings{}, &FormatError{Err: err}
	}
	return fallback, nil
}

// ParsePingSweep extracts live hosts from discovery output. Host
// discovery reports carry no port table, so the text report lines are
// authoritative when the document is unusable.
func ParsePingSweep(raw string) (domain.Findings, error) {
	findings, err := parseXML(raw)
	if err == nil {
		return findings, nil
	}

	var hosts []domain.HostFinding
	for _, m := range sweepLine.FindAllStringSubmatch(raw, -1) {
		h := domain.HostFinding{Status: "up"}
		if m[2] != "" {
			h.Hostname = m[1]
			h.IP = m[2]
		} else {
			h.IP = m[1]
		}
		hosts = append(hosts, h)
	}
	if len(hosts) == 0 {
		return domain.Findings{}, &FormatError{Err: err}
	}
	return domain.Findings{Hosts: hosts}, nil
}

// parseXML walks the structured scan document into findings.
func parseXML(raw string) (domain.Findings, error) {
	var run nmap.Run
	if err := nmap.Parse([]byte(raw), &run); err != nil {
		return domain.Findings{}, err
	}

	var findings domain.Findings
	for _, host := range run.Hosts {
		addr := pickHostAddress(host)
		if findings.Host == "" {
			findings.Host = addr
		}

		if host.Status.State != "" {
			hf := domain.HostFinding{IP: addr, Status: host.Status.State}
			if len(host.Hostnames) > 0 {
				hf.Hostname = host.Hostnames[0].Name
			}
			findings.Hosts = append(findings.Hosts, hf)
		}

		for _, port := range host.Ports {
			pf := domain.PortFinding{
				Port:     port.ID,
				Protocol: domain.Protocol(port.Protocol),
				State:    domain.PortState(port.State.State),
				Service:  port.Service.Name,
				Product:  port.Service.Product,
				Version:  port.Service.Version,
			}
			findings.Ports = append(findings.Ports, pf)

			if port.Service.Name != "" {
				findings.Services = append(findings.Services, domain.ServiceFinding{
					Port:    port.ID,
					Service: port.Service.Name,
					Product: port.Service.Product,
					Version: port.Service.Version,
				})
			}
		}
	}
	return findings, nil
}

// parseText recovers findings from the human-readable port table. It
// sees only what the table prints: port, protocol, state, and the
// service column when present.
func parseText(raw string) domain.Findings {
	var findings domain.Findings
	for _, m := range portLine.FindAllStringSubmatch(raw, -1) {
		n, err := strconv.ParseUint(m[1], 10, 16)
		if err != nil {
			continue
		}
		pf := domain.PortFinding{
			Port:     uint16(n),
			Protocol: domain.Protocol(m[2]),
			State:    domain.PortState(m[3]),
			Service:  m[4],
		}
		findings.Ports = append(findings.Ports, pf)
		if pf.Service != "" {
			findings.Services = append(findings.Services, domain.ServiceFinding{
				Port:    pf.Port,
				Service: pf.Service,
			})
		}
	}

	for _, m := range sweepLine.FindAllStringSubmatch(raw, -1) {
		if findings.Host == "" {
			if m[2] != "" {
				findings.Host = m[2]
			} else {
				findings.Host = m[1]
			}
		}
	}
	return findings
}

// pickHostAddress prefers an IPv4 address, then IPv6, then whatever the
// host carries first.
func pickHostAddress(host nmap.Host) string {
	var ipv6 string
	for _, a := range host.Addresses {
		switch strings.ToLower(a.AddrType) {
		case "ipv4":
			return a.Addr
		case "ipv6":
			if ipv6 == "" {
				ipv6 = a.Addr
			}
		}
	}
	if ipv6 != "" {
		return ipv6
	}
	if len(host.Addresses) > 0 {
		return host.Addresses[0].Addr
	}
	return ""
}
