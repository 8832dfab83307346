// Package scanner builds probing-tool invocations from scan requests.
package scanner

import (
	"sort"
	"strconv"
	"strings"

	"bytemomo/scylla/internal/domain"
)

// modeFlags maps each scan mode to the tool's base technique flags.
var modeFlags = map[domain.ScanMode][]string{
	domain.ModePingSweep:         {"-sn"},
	domain.ModePortScan:          {"-sT"},
	domain.ModeServiceDetection:  {"-sV"},
	domain.ModeOSDetection:       {"-O"},
	domain.ModeVulnerabilityScan: {"-sV", "--script", "vuln"},
	domain.ModeStealthScan:       {"-sS", "-f"},
	domain.ModeUDPScan:           {"-sU"},
	domain.ModeComprehensive:     {"-sS", "-sV", "-O", "-A"},
}

// intensityFlags maps each intensity to timing, retry, and per-host
// timeout flags. The timeout bounds how long the tool spends on a
// single unresponsive host; patient intensities get a wider bound.
var intensityFlags = map[domain.ScanIntensity][]string{
	domain.IntensityLight:      {"-T1", "--max-retries", "1", "--host-timeout", "15m"},
	domain.IntensityNormal:     {"-T3", "--max-retries", "2", "--host-timeout", "10m"},
	domain.IntensityAggressive: {"-T4", "--max-retries", "3", "--host-timeout", "5m"},
	domain.IntensityInsane:     {"-T5", "--max-retries", "5", "--host-timeout", "2m"},
}

// BuildArgs maps a scan request onto the probing tool's argument list.
// It is pure: identical inputs always produce identical arguments, so
// invocations are reproducible for tests and audit logs. Unrecognized
// intensities fall back to normal rather than failing. Structured XML
// output on stdout is always requested so the parser's primary path
// stays exercised.
func BuildArgs(target domain.ScanTarget, mode domain.ScanMode, intensity domain.ScanIntensity) []string {
	var args []string

	flags, ok := modeFlags[mode]
	if !ok {
		flags = modeFlags[domain.ModePortScan]
	}
	args = append(args, flags...)

	timing, ok := intensityFlags[intensity]
	if !ok {
		timing = intensityFlags[domain.IntensityNormal]
	}
	args = append(args, timing...)

	if len(target.Ports) > 0 {
		args = append(args, "-p", joinPorts(target.Ports))
	}
	if len(target.ExcludedPorts) > 0 {
		args = append(args, "--exclude-ports", joinPorts(target.ExcludedPorts))
	}

	args = append(args, "-oX", "-")
	args = append(args, target.Host())
	return args
}

// joinPorts renders ports as a comma-joined ascending list. Duplicates
// are kept; deduplication is the caller's responsibility.
func joinPorts(ports []uint16) string {
	sorted := make([]uint16, len(ports))
	copy(sorted, ports)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, len(sorted))
	for i, p := range sorted {
		parts[i] = strconv.Itoa(int(p))
	}
	return strings.Join(parts, ",")
}
