package domain

import (
	"errors"
	"testing"
)

func TestValidateByKind(t *testing.T) {
	tests := []struct {
		name    string
		target  ScanTarget
		wantErr bool
	}{
		{"ipv4", ScanTarget{Address: "10.0.0.5", Kind: AddressIP}, false},
		{"ipv6", ScanTarget{Address: "fe80::1", Kind: AddressIP}, false},
		{"bad ip", ScanTarget{Address: "10.0.0.999", Kind: AddressIP}, true},
		{"cidr", ScanTarget{Address: "192.168.1.0/24", Kind: AddressNetwork}, false},
		{"bad cidr", ScanTarget{Address: "192.168.1.0/33", Kind: AddressNetwork}, true},
		{"hostname", ScanTarget{Address: "web01.lab.local", Kind: AddressHostname}, false},
		{"hostname with space", ScanTarget{Address: "web 01", Kind: AddressHostname}, true},
		{"url", ScanTarget{Address: "https://example.com/app", Kind: AddressURL}, false},
		{"url without scheme", ScanTarget{Address: "example.com/app", Kind: AddressURL}, true},
		{"empty", ScanTarget{Address: "  ", Kind: AddressIP}, true},
		{"unknown kind", ScanTarget{Address: "10.0.0.5", Kind: AddressKind("mac")}, true},
		{"port zero", ScanTarget{Address: "10.0.0.5", Kind: AddressIP, Ports: []uint16{80, 0}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.target.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Errorf("error type = %T, want *ValidationError", err)
				}
			}
		})
	}
}

func TestHost(t *testing.T) {
	tests := []struct {
		target ScanTarget
		want   string
	}{
		{ScanTarget{Address: "10.0.0.5", Kind: AddressIP}, "10.0.0.5"},
		{ScanTarget{Address: " web01 ", Kind: AddressHostname}, "web01"},
		{ScanTarget{Address: "https://example.com:8443/app", Kind: AddressURL}, "example.com"},
		{ScanTarget{Address: "://broken", Kind: AddressURL}, "://broken"},
	}

	for _, tt := range tests {
		if got := tt.target.Host(); got != tt.want {
			t.Errorf("Host(%q) = %q, want %q", tt.target.Address, got, tt.want)
		}
	}
}

func TestFindingsOpenPortsAndEmpty(t *testing.T) {
	f := Findings{Ports: []PortFinding{
		{Port: 22, State: PortOpen},
		{Port: 23, State: PortFiltered},
		{Port: 80, State: PortOpen},
	}}

	open := f.OpenPorts()
	if len(open) != 2 {
		t.Fatalf("open ports = %d, want 2", len(open))
	}
	if f.Empty() {
		t.Error("findings with ports reported empty")
	}
	if !(Findings{}).Empty() {
		t.Error("zero findings not reported empty")
	}
}
