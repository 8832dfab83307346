package scanner

import (
	"reflect"
	"testing"

	"bytemomo/scylla/internal/domain"
)

func ipTarget(addr string, ports ...uint16) domain.ScanTarget {
	return domain.ScanTarget{Address: addr, Kind: domain.AddressIP, Ports: ports}
}

func TestBuildArgsDeterministic(t *testing.T) {
	target := ipTarget("10.0.0.5", 443, 80, 22)

	first := BuildArgs(target, domain.ModeServiceDetection, domain.IntensityAggressive)
	for i := 0; i < 10; i++ {
		again := BuildArgs(target, domain.ModeServiceDetection, domain.IntensityAggressive)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("call %d produced %v, first call produced %v", i, again, first)
		}
	}
}

func TestBuildArgsModeFlags(t *testing.T) {
	tests := []struct {
		mode domain.ScanMode
		want []string
	}{
		{domain.ModePingSweep, []string{"-sn"}},
		{domain.ModePortScan, []string{"-sT"}},
		{domain.ModeServiceDetection, []string{"-sV"}},
		{domain.ModeOSDetection, []string{"-O"}},
		{domain.ModeStealthScan, []string{"-sS", "-f"}},
		{domain.ModeUDPScan, []string{"-sU"}},
		{domain.ModeComprehensive, []string{"-sS", "-sV", "-O", "-A"}},
	}

	for _, tt := range tests {
		args := BuildArgs(ipTarget("192.168.1.1"), tt.mode, domain.IntensityNormal)
		if !reflect.DeepEqual(args[:len(tt.want)], tt.want) {
			t.Errorf("mode %s: got prefix %v, want %v", tt.mode, args[:len(tt.want)], tt.want)
		}
	}
}

func TestBuildArgsUnknownIntensityFallsBackToNormal(t *testing.T) {
	target := ipTarget("192.168.1.1")

	normal := BuildArgs(target, domain.ModePortScan, domain.IntensityNormal)
	unknown := BuildArgs(target, domain.ModePortScan, domain.ScanIntensity("ludicrous"))

	if !reflect.DeepEqual(normal, unknown) {
		t.Errorf("unknown intensity produced %v, want normal's %v", unknown, normal)
	}
}

func TestBuildArgsIntensityTiming(t *testing.T) {
	tests := []struct {
		intensity   domain.ScanIntensity
		timing      string
		retries     string
		hostTimeout string
	}{
		{domain.IntensityLight, "-T1", "1", "15m"},
		{domain.IntensityNormal, "-T3", "2", "10m"},
		{domain.IntensityAggressive, "-T4", "3", "5m"},
		{domain.IntensityInsane, "-T5", "5", "2m"},
	}

	for _, tt := range tests {
		args := BuildArgs(ipTarget("192.168.1.1"), domain.ModePortScan, tt.intensity)
		if !containsSeq(args, tt.timing) {
			t.Errorf("intensity %s: %v missing %s", tt.intensity, args, tt.timing)
		}
		if !containsSeq(args, "--max-retries", tt.retries) {
			t.Errorf("intensity %s: %v missing --max-retries %s", tt.intensity, args, tt.retries)
		}
		if !containsSeq(args, "--host-timeout", tt.hostTimeout) {
			t.Errorf("intensity %s: %v missing --host-timeout %s", tt.intensity, args, tt.hostTimeout)
		}
	}
}

func TestBuildArgsPortListAscendingWithDuplicates(t *testing.T) {
	target := ipTarget("10.0.0.1", 8080, 22, 443, 22)

	args := BuildArgs(target, domain.ModePortScan, domain.IntensityNormal)
	if !containsSeq(args, "-p", "22,22,443,8080") {
		t.Errorf("got %v, want ascending undeduplicated port list 22,22,443,8080", args)
	}
}

func TestBuildArgsNoPortsOmitsRestriction(t *testing.T) {
	args := BuildArgs(ipTarget("10.0.0.1"), domain.ModePortScan, domain.IntensityNormal)
	for _, a := range args {
		if a == "-p" {
			t.Fatalf("port restriction emitted without ports: %v", args)
		}
	}
}

func TestBuildArgsExcludedPorts(t *testing.T) {
	target := domain.ScanTarget{
		Address:       "10.0.0.1",
		Kind:          domain.AddressIP,
		ExcludedPorts: []uint16{9100, 25},
	}

	args := BuildArgs(target, domain.ModePortScan, domain.IntensityNormal)
	if !containsSeq(args, "--exclude-ports", "25,9100") {
		t.Errorf("got %v, want --exclude-ports 25,9100", args)
	}
}

func TestBuildArgsAlwaysRequestsXMLAndEndsWithTarget(t *testing.T) {
	args := BuildArgs(ipTarget("192.168.1.0"), domain.ModePingSweep, domain.IntensityLight)

	if !containsSeq(args, "-oX", "-") {
		t.Errorf("got %v, want -oX - for structured output", args)
	}
	if args[len(args)-1] != "192.168.1.0" {
		t.Errorf("got %v, want target address as final argument", args)
	}
}

func TestBuildArgsURLTargetUsesHostname(t *testing.T) {
	target := domain.ScanTarget{Address: "https://example.com:8443/app", Kind: domain.AddressURL}

	args := BuildArgs(target, domain.ModePortScan, domain.IntensityNormal)
	if args[len(args)-1] != "example.com" {
		t.Errorf("got final argument %q, want bare hostname example.com", args[len(args)-1])
	}
}

// containsSeq reports whether want appears in args as a contiguous run.
func containsSeq(args []string, want ...string) bool {
	for i := 0; i+len(want) <= len(args); i++ {
		match := true
		for j := range want {
			if args[i+j] != want[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
