package reporting

import (
	"bytes"
	"os"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netmonsim/internal/catalog"
	"netmonsim/internal/models"
)

func TestWritePCAP(t *testing.T) {
	var buf bytes.Buffer
	n, err := WritePCAP(&buf, samplePackets())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	r, err := pcapgo.NewReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, layers.LinkTypeEthernet, r.LinkType())

	data, ci, err := r.ReadPacketData()
	require.NoError(t, err)
	assert.True(t, generated.Equal(ci.Timestamp))

	pkt := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)
	ip, ok := pkt.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
	require.True(t, ok)
	assert.Equal(t, "192.168.1.100", ip.SrcIP.String())
	assert.Equal(t, catalog.AddressFor("phish.test"), ip.DstIP.String())

	tcp, ok := pkt.Layer(layers.LayerTypeTCP).(*layers.TCP)
	require.True(t, ok)
	assert.Equal(t, layers.TCPPort(80), tcp.DstPort)
	assert.Equal(t, "POST /login <script>", string(tcp.Payload))

	data, _, err = r.ReadPacketData()
	require.NoError(t, err)
	pkt = gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default)
	udp, ok := pkt.Layer(layers.LayerTypeUDP).(*layers.UDP)
	require.True(t, ok)
	assert.Equal(t, layers.UDPPort(53), udp.SrcPort)
	assert.Equal(t, layers.UDPPort(ephemeralPort(2)), udp.DstPort)
}

func TestWritePCAPUsesConfiguredAddress(t *testing.T) {
	packets := []models.Packet{
		{Seq: 1, Source: "192.168.1.100", Destination: "dns.corp.test", Address: "10.0.0.53", Protocol: "DNS", Info: "Standard query A intranet.test", CapturedAt: generated},
		{Seq: 2, Source: "dns.corp.test", Destination: "192.168.1.100", Address: "10.0.0.53", Protocol: "DNS", Info: "Standard query response", Response: true, CapturedAt: generated},
	}

	var buf bytes.Buffer
	n, err := WritePCAP(&buf, packets)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	r, err := pcapgo.NewReader(&buf)
	require.NoError(t, err)

	data, _, err := r.ReadPacketData()
	require.NoError(t, err)
	ip := gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default).Layer(layers.LayerTypeIPv4).(*layers.IPv4)
	assert.Equal(t, "192.168.1.100", ip.SrcIP.String())
	assert.Equal(t, "10.0.0.53", ip.DstIP.String())

	data, _, err = r.ReadPacketData()
	require.NoError(t, err)
	ip = gopacket.NewPacket(data, layers.LayerTypeEthernet, gopacket.Default).Layer(layers.LayerTypeIPv4).(*layers.IPv4)
	assert.Equal(t, "10.0.0.53", ip.SrcIP.String())
	assert.Equal(t, "192.168.1.100", ip.DstIP.String())
}

func TestExportPCAP(t *testing.T) {
	filename, n, err := ExportPCAP(t.TempDir(), samplePackets())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	info, err := os.Stat(filename)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(24))
}
