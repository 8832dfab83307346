package domain

import "time"

// AddressKind identifies how a target address should be interpreted.
type AddressKind string

const (
	AddressIP       AddressKind = "ip"
	AddressHostname AddressKind = "hostname"
	AddressNetwork  AddressKind = "network"
	AddressURL      AddressKind = "url"
)

// ScanMode selects the probing technique.
type ScanMode string

const (
	ModePingSweep         ScanMode = "ping_sweep"
	ModePortScan          ScanMode = "port_scan"
	ModeServiceDetection  ScanMode = "service_detection"
	ModeOSDetection       ScanMode = "os_detection"
	ModeVulnerabilityScan ScanMode = "vulnerability_scan"
	ModeStealthScan       ScanMode = "stealth_scan"
	ModeUDPScan           ScanMode = "udp_scan"
	ModeComprehensive     ScanMode = "comprehensive"
)

// ScanIntensity controls timing aggressiveness and retry count.
// Ordered from quietest to noisiest.
type ScanIntensity string

const (
	IntensityLight      ScanIntensity = "light"
	IntensityNormal     ScanIntensity = "normal"
	IntensityAggressive ScanIntensity = "aggressive"
	IntensityInsane     ScanIntensity = "insane"
)

// ScanTarget describes one target of a scan. Immutable once submitted.
type ScanTarget struct {
	Address       string      `yaml:"address" json:"address"`
	Kind          AddressKind `yaml:"kind" json:"kind"`
	Ports         []uint16    `yaml:"ports,omitempty" json:"ports,omitempty"`
	ExcludedPorts []uint16    `yaml:"excluded_ports,omitempty" json:"excluded_ports,omitempty"`
	Note          string      `yaml:"note,omitempty" json:"note,omitempty"`
}

// ScanStatus is the lifecycle state of a scan result.
type ScanStatus string

const (
	StatusRunning   ScanStatus = "running"
	StatusCompleted ScanStatus = "completed"
	StatusError     ScanStatus = "error"
)

// Protocol is the transport protocol of a probed port.
type Protocol string

const (
	ProtoTCP Protocol = "tcp"
	ProtoUDP Protocol = "udp"
)

// PortState is the observed state of a probed port.
type PortState string

const (
	PortOpen     PortState = "open"
	PortClosed   PortState = "closed"
	PortFiltered PortState = "filtered"
)

// PortFinding is one observed port on a target.
type PortFinding struct {
	Port     uint16    `json:"port"`
	Protocol Protocol  `json:"protocol"`
	State    PortState `json:"state"`
	Service  string    `json:"service,omitempty"`
	Product  string    `json:"product,omitempty"`
	Version  string    `json:"version,omitempty"`
}

// ServiceFinding is a named service observed on a port.
type ServiceFinding struct {
	Port    uint16 `json:"port"`
	Service string `json:"service"`
	Product string `json:"product,omitempty"`
	Version string `json:"version,omitempty"`
}

// HostFinding is a live host observed during discovery.
type HostFinding struct {
	IP       string `json:"ip"`
	Hostname string `json:"hostname,omitempty"`
	Status   string `json:"status"`
}

// Findings is the normalized outcome of a scan, identical in shape for
// both the structured-document and the text-fallback parse paths.
type Findings struct {
	Host     string           `json:"host,omitempty"`
	Ports    []PortFinding    `json:"ports,omitempty"`
	Services []ServiceFinding `json:"services,omitempty"`
	Hosts    []HostFinding    `json:"hosts,omitempty"`
}

// OpenPorts returns the subset of port findings whose state is open.
func (f Findings) OpenPorts() []PortFinding {
	var open []PortFinding
	for _, p := range f.Ports {
		if p.State == PortOpen {
			open = append(open, p)
		}
	}
	return open
}

// Empty reports whether the scan produced no findings at all.
func (f Findings) Empty() bool {
	return len(f.Ports) == 0 && len(f.Services) == 0 && len(f.Hosts) == 0
}

// ScanResult is the outcome of one target's scan. It is created with
// StatusRunning at launch and finalized exactly once at termination;
// callers only ever see the finalized copy.
type ScanResult struct {
	Target    string    `json:"target"`
	Mode      ScanMode  `json:"mode"`
	Status    ScanStatus `json:"status"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Findings  Findings  `json:"findings"`
	RawOutput string    `json:"raw_output,omitempty"`
	Errors    []string  `json:"errors,omitempty"`
}
