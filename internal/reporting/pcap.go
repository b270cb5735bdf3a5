package reporting

import (
	"fmt"
	"io"
	"net"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"netmonsim/internal/analysis"
	"netmonsim/internal/catalog"
	"netmonsim/internal/models"
)

const snapLen = 65536

var (
	clientMAC  = net.HardwareAddr{0x02, 0x00, 0x5e, 0x10, 0x00, 0x64}
	gatewayMAC = net.HardwareAddr{0x02, 0x00, 0x5e, 0x10, 0x00, 0x01}
)

// ExportPCAP writes packets to a new capture file in dir and returns its path
// and the number of frames written.
func ExportPCAP(dir string, packets []models.Packet) (string, int, error) {
	filename := filepath.Join(dir, fmt.Sprintf("capture_%s.pcap", time.Now().Format("20060102_150405")))
	f, err := os.Create(filename)
	if err != nil {
		return "", 0, fmt.Errorf("create pcap: %w", err)
	}
	defer f.Close()

	n, err := WritePCAP(f, packets)
	if err != nil {
		return "", n, err
	}
	return filename, n, nil
}

// WritePCAP frames each synthetic packet as Ethernet/IPv4/TCP or UDP with the
// info text as payload, so the session opens in standard capture tools.
// Alert packets and endpoints that do not resolve to IPv4 are skipped.
func WritePCAP(w io.Writer, packets []models.Packet) (int, error) {
	pw := pcapgo.NewWriter(w)
	if err := pw.WriteFileHeader(snapLen, layers.LinkTypeEthernet); err != nil {
		return 0, fmt.Errorf("write pcap header: %w", err)
	}

	written := 0
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{
		ComputeChecksums: true,
		FixLengths:       true,
	}
	for _, pkt := range packets {
		if pkt.Alert {
			continue
		}
		frame, ok := frameLayers(pkt)
		if !ok {
			continue
		}
		if err := gopacket.SerializeLayers(buf, opts, frame...); err != nil {
			return written, fmt.Errorf("serialize packet %d: %w", pkt.Seq, err)
		}

		ts := pkt.CapturedAt
		if ts.IsZero() {
			ts = time.Now()
		}
		ci := gopacket.CaptureInfo{
			Timestamp:     ts,
			CaptureLength: len(buf.Bytes()),
			Length:        len(buf.Bytes()),
		}
		if err := pw.WritePacket(ci, buf.Bytes()); err != nil {
			return written, fmt.Errorf("write packet %d: %w", pkt.Seq, err)
		}
		written++
	}
	return written, nil
}

func frameLayers(pkt models.Packet) ([]gopacket.SerializableLayer, bool) {
	src, dst := pkt.Source, pkt.Destination
	if pkt.Address != "" {
		if pkt.Response {
			src = pkt.Address
		} else {
			dst = pkt.Address
		}
	}
	srcIP, ok1 := ipv4(src)
	dstIP, ok2 := ipv4(dst)
	if !ok1 || !ok2 {
		return nil, false
	}

	eth := &layers.Ethernet{SrcMAC: clientMAC, DstMAC: gatewayMAC, EthernetType: layers.EthernetTypeIPv4}
	if pkt.Response {
		eth.SrcMAC, eth.DstMAC = gatewayMAC, clientMAC
	}
	ip := &layers.IPv4{Version: 4, TTL: 64, SrcIP: srcIP, DstIP: dstIP}

	udp := analysis.IsUDP(pkt.Protocol)
	fallback := 443
	if udp {
		fallback = 123
	}
	server := analysis.ServicePort(pkt.Protocol, fallback)
	client := ephemeralPort(pkt.Seq)
	srcPort, dstPort := client, server
	if pkt.Response {
		srcPort, dstPort = server, client
	}
	payload := gopacket.Payload(pkt.Info)

	if udp {
		ip.Protocol = layers.IPProtocolUDP
		l4 := &layers.UDP{SrcPort: layers.UDPPort(srcPort), DstPort: layers.UDPPort(dstPort)}
		l4.SetNetworkLayerForChecksum(ip)
		return []gopacket.SerializableLayer{eth, ip, l4, payload}, true
	}

	ip.Protocol = layers.IPProtocolTCP
	l4 := &layers.TCP{
		SrcPort: layers.TCPPort(srcPort),
		DstPort: layers.TCPPort(dstPort),
		Seq:     uint32(pkt.Seq),
		Window:  14600,
	}
	if strings.HasPrefix(pkt.Info, "SYN") {
		l4.SYN = true
	} else {
		l4.PSH, l4.ACK = true, true
	}
	l4.SetNetworkLayerForChecksum(ip)
	return []gopacket.SerializableLayer{eth, ip, l4, payload}, true
}

// ipv4 resolves an endpoint the way the catalog addresses it: literal IPs as
// is, host names by their assigned pseudo address.
func ipv4(endpoint string) (net.IP, bool) {
	addr, err := netip.ParseAddr(catalog.AddressFor(endpoint))
	if err != nil || !addr.Is4() {
		return nil, false
	}
	b := addr.As4()
	return net.IP(b[:]), true
}

func ephemeralPort(seq uint64) int {
	return 49152 + int(seq%16384)
}
