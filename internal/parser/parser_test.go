package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bytemomo/scylla/internal/domain"
)

const serviceScanXML = `<?xml version="1.0" encoding="UTF-8"?>
<nmaprun scanner="nmap" start="1756200000" version="7.94">
<host starttime="1756200000" endtime="1756200042">
<status state="up" reason="syn-ack"/>
<address addr="10.0.0.5" addrtype="ipv4"/>
<hostnames><hostname name="web01.lab.local" type="PTR"/></hostnames>
<ports>
<port protocol="tcp" portid="22"><state state="open" reason="syn-ack" reason_ttl="64"/><service name="ssh" product="OpenSSH" version="8.9p1" method="probed" conf="10"/></port>
<port protocol="tcp" portid="80"><state state="open" reason="syn-ack" reason_ttl="64"/><service name="http" product="nginx" version="1.24.0" method="probed" conf="10"/></port>
<port protocol="tcp" portid="443"><state state="filtered" reason="no-response" reason_ttl="0"/></port>
</ports>
</host>
<runstats><finished time="1756200042" timestr="Tue Aug 26 10:00:42 2026" summary="1 IP address (1 host up) scanned" elapsed="42.00" exit="success"/><hosts up="1" down="0" total="1"/></runstats>
</nmaprun>`

const pingSweepXML = `<?xml version="1.0" encoding="UTF-8"?>
<nmaprun scanner="nmap" start="1756200000" version="7.94">
<host><status state="up" reason="arp-response"/><address addr="192.168.1.1" addrtype="ipv4"/><hostnames><hostname name="gateway" type="PTR"/></hostnames></host>
<host><status state="up" reason="arp-response"/><address addr="192.168.1.20" addrtype="ipv4"/><hostnames></hostnames></host>
<runstats><finished time="1756200010" timestr="Tue Aug 26 10:00:10 2026" summary="256 IP addresses (2 hosts up) scanned" elapsed="10.00" exit="success"/><hosts up="2" down="254" total="256"/></runstats>
</nmaprun>`

const textOnlyOutput = `Starting Nmap 7.94 ( https://nmap.org )
Nmap scan report for 10.0.0.5
Host is up (0.0010s latency).

PORT     STATE    SERVICE
22/tcp   open     ssh
80/tcp   open     http
443/tcp  filtered https
53/udp   open     domain
`

func TestParsePortScanXML(t *testing.T) {
	findings, err := ParsePortScan(serviceScanXML)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.5", findings.Host)
	require.Len(t, findings.Ports, 3)

	assert.Equal(t, domain.PortFinding{
		Port: 22, Protocol: domain.ProtoTCP, State: domain.PortOpen,
		Service: "ssh", Product: "OpenSSH", Version: "8.9p1",
	}, findings.Ports[0])
	assert.Equal(t, domain.PortFiltered, findings.Ports[2].State)

	// The filtered port carries no service element, so only two
	// service findings surface.
	require.Len(t, findings.Services, 2)
	assert.Equal(t, "http", findings.Services[1].Service)
	assert.Equal(t, "nginx", findings.Services[1].Product)

	require.Len(t, findings.Hosts, 1)
	assert.Equal(t, "web01.lab.local", findings.Hosts[0].Hostname)
}

func TestParsePortScanOpenPortsSubset(t *testing.T) {
	findings, err := ParsePortScan(serviceScanXML)
	require.NoError(t, err)

	open := findings.OpenPorts()
	require.Len(t, open, 2)
	assert.Equal(t, uint16(22), open[0].Port)
	assert.Equal(t, uint16(80), open[1].Port)
}

func TestParsePortScanFallsBackToText(t *testing.T) {
	findings, err := ParsePortScan(textOnlyOutput)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.5", findings.Host)
	require.Len(t, findings.Ports, 4)
	assert.Equal(t, domain.PortFinding{
		Port: 22, Protocol: domain.ProtoTCP, State: domain.PortOpen, Service: "ssh",
	}, findings.Ports[0])
	assert.Equal(t, domain.ProtoUDP, findings.Ports[3].Protocol)
	assert.Equal(t, domain.PortFiltered, findings.Ports[2].State)
}

func TestParsePortScanTruncatedDocumentRecovers(t *testing.T) {
	// A tool crash mid-write leaves the document unterminated; the
	// fallback still sees the text table printed before it.
	truncated := textOnlyOutput + "\n<?xml version=\"1.0\"?><nmaprun><host><status state=\"up\""

	findings, err := ParsePortScan(truncated)
	require.NoError(t, err)
	assert.Len(t, findings.Ports, 4)
}

func TestParsePortScanUnrecognizedOutput(t *testing.T) {
	_, err := ParsePortScan("Failed to resolve target.\n")
	require.Error(t, err)

	var formatErr *FormatError
	assert.True(t, errors.As(err, &formatErr), "want FormatError, got %T", err)
}

func TestParsePingSweepXML(t *testing.T) {
	findings, err := ParsePingSweep(pingSweepXML)
	require.NoError(t, err)

	require.Len(t, findings.Hosts, 2)
	assert.Equal(t, domain.HostFinding{IP: "192.168.1.1", Hostname: "gateway", Status: "up"}, findings.Hosts[0])
	assert.Equal(t, domain.HostFinding{IP: "192.168.1.20", Status: "up"}, findings.Hosts[1])
}

func TestParsePingSweepTextFallback(t *testing.T) {
	raw := `Starting Nmap 7.94 ( https://nmap.org )
Nmap scan report for gateway (192.168.1.1)
Host is up (0.00042s latency).
Nmap scan report for 192.168.1.20
Host is up (0.0011s latency).
Nmap done: 256 IP addresses (2 hosts up) scanned in 3.21 seconds
`

	findings, err := ParsePingSweep(raw)
	require.NoError(t, err)

	require.Len(t, findings.Hosts, 2)
	assert.Equal(t, "192.168.1.1", findings.Hosts[0].IP)
	assert.Equal(t, "gateway", findings.Hosts[0].Hostname)
	assert.Equal(t, "192.168.1.20", findings.Hosts[1].IP)
	assert.Empty(t, findings.Hosts[1].Hostname)
}

func TestParsePingSweepUnrecognizedOutput(t *testing.T) {
	_, err := ParsePingSweep("no such tool\n")

	var formatErr *FormatError
	require.True(t, errors.As(err, &formatErr), "want FormatError, got %T", err)
}
