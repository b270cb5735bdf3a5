package analysis

import (
	"strconv"
	"strings"
)

var commonPorts = map[int]string{
	20:   "FTP-DATA",
	21:   "FTP",
	22:   "SSH",
	23:   "Telnet",
	25:   "SMTP",
	53:   "DNS",
	67:   "DHCP",
	80:   "HTTP",
	110:  "POP3",
	123:  "NTP",
	143:  "IMAP",
	443:  "HTTPS",
	993:  "IMAPS",
	8080: "HTTP-Alt",
}

// protocolPorts maps a packet protocol label to the server port it is
// framed on. TCP and UDP labels carry no application and fall back to the
// caller's choice.
var protocolPorts = map[string]int{
	"DNS":   53,
	"HTTP":  80,
	"HTTPS": 443,
	"SMTP":  25,
	"IMAP":  993,
	"FTP":   21,
	"SSH":   22,
}

var udpProtocols = map[string]bool{
	"DNS": true,
	"UDP": true,
	"NTP": true,
}

// GetServiceName returns the common name for a port, or the port number as a string.
func GetServiceName(port int) string {
	if name, ok := commonPorts[port]; ok {
		return name
	}
	return strconv.Itoa(port)
}

// ServicePort returns the well-known server port for a protocol label, or
// fallback when the label names no application.
func ServicePort(protocol string, fallback int) int {
	if port, ok := protocolPorts[strings.ToUpper(protocol)]; ok {
		return port
	}
	return fallback
}

// IsUDP reports whether a protocol label travels over UDP.
func IsUDP(protocol string) bool {
	return udpProtocols[strings.ToUpper(protocol)]
}

// IsPlaintext reports whether a protocol label carries unencrypted payloads.
func IsPlaintext(protocol string) bool {
	switch strings.ToUpper(protocol) {
	case "HTTP", "FTP", "TELNET", "SMTP":
		return true
	}
	return false
}
