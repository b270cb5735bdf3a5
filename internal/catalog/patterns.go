package catalog

import (
	"fmt"

	"netmonsim/internal/models"
)

const (
	protoDNS   = "DNS"
	protoHTTP  = "HTTP"
	protoHTTPS = "HTTPS"
	protoSMTP  = "SMTP"
	protoIMAP  = "IMAP"
	protoTCP   = "TCP"
	protoUDP   = "UDP"
)

func websitePatterns(page models.Page, dangerous bool) []models.Pattern {
	proto := protoHTTP
	if page.Security.IsHTTPS || isHTTPS(page.URL) {
		proto = protoHTTPS
	}

	dns := models.Pattern{Protocol: protoDNS, Info: "Standard query A {host}", Weight: 2}
	if dangerous {
		dns.Info += " [Suspicious domain]"
	}

	patterns := []models.Pattern{dns}
	if dangerous {
		return append(patterns, maliciousPatterns(proto)...)
	}
	return append(patterns, legitimatePatterns(page, proto)...)
}

func maliciousPatterns(proto string) []models.Pattern {
	return []models.Pattern{
		{Protocol: proto, Info: "GET /login.php?session=expired", Weight: 3},
		{Protocol: proto, Info: "POST /secure-login/verify.php (credential submission)", Weight: 2},
		{Protocol: proto, Info: "POST /api/collect (form data exfiltration)", Weight: 2},
		{Protocol: protoTCP, Info: "SYN {addr}:443 [Untrusted certificate host]", Weight: 1},
	}
}

func legitimatePatterns(page models.Page, proto string) []models.Pattern {
	return []models.Pattern{
		{Protocol: proto, Info: "GET / HTTP/1.1", Weight: 3},
		handshakePattern(page, proto),
		{Protocol: proto, Info: "GET /assets/app.js", Weight: 2},
		{Protocol: proto, Info: "GET /images/logo.png", Weight: 2},
		{Protocol: proto, Info: "GET /styles/main.css", Weight: 1},
	}
}

// handshakePattern describes the TLS setup according to the certificate tier.
func handshakePattern(page models.Page, proto string) models.Pattern {
	if proto != protoHTTPS {
		return models.Pattern{Protocol: protoTCP, Info: "Plaintext connection to {host}:80 (no TLS)", Weight: 1}
	}

	cert := page.Security.Certificate
	var info string
	switch {
	case cert == nil:
		info = "TLS handshake with {host}"
	case page.SecurityLevel == models.ClassSecureEV || cert.ExtendedValidation:
		info = fmt.Sprintf("TLS 1.3 handshake, EV certificate (%s)", issuer(cert))
	case cert.Valid && cert.Trusted:
		info = fmt.Sprintf("TLS 1.3 handshake, certificate by %s", issuer(cert))
	case cert.SelfSigned:
		info = "TLS handshake, self-signed certificate"
	default:
		info = fmt.Sprintf("TLS handshake, certificate warning (%s)", issuer(cert))
	}
	return models.Pattern{Protocol: protoHTTPS, Info: info, Weight: 1}
}

func issuer(cert *models.Certificate) string {
	if cert.Issuer == "" {
		return "unknown issuer"
	}
	return cert.Issuer
}

func emailPatterns(suspicious bool) []models.Pattern {
	if suspicious {
		return []models.Pattern{
			{Protocol: protoSMTP, Info: "Incoming message from {host} (SPF: fail)", Weight: 3},
			{Protocol: protoHTTP, Info: "GET /track/open.gif (phishing link tracker)", Weight: 2},
			{Protocol: protoSMTP, Info: "Relay via unverified server {addr}", Weight: 1},
			{Protocol: protoDNS, Info: "Standard query MX {host} [Suspicious sender]", Weight: 1},
		}
	}
	return []models.Pattern{
		{Protocol: protoSMTP, Info: "Message delivery from {host} (SPF: pass, DKIM: pass)", Weight: 3},
		{Protocol: protoIMAP, Info: "FETCH message body", Weight: 2},
		{Protocol: protoTCP, Info: "Connection established to {host}:993", Weight: 1},
		{Protocol: protoDNS, Info: "Standard query MX {host}", Weight: 1},
	}
}

// DefaultSystemSources is the background infrastructure noise.
func DefaultSystemSources() []models.TrafficSource {
	return []models.TrafficSource{
		{
			Identity: "8.8.8.8",
			Patterns: []models.Pattern{
				{Protocol: protoDNS, Info: "Standard query A update.cyberquest.academy", Weight: 1},
				{Protocol: protoDNS, Info: "Standard query AAAA time.cloudflare.com", Weight: 1},
			},
		},
		{
			Identity: "1.1.1.1",
			Patterns: []models.Pattern{
				{Protocol: protoDNS, Info: "Standard query A cloudflare.com", Weight: 1},
				{Protocol: protoUDP, Info: "NTP time synchronization", Weight: 1},
			},
		},
		{
			Identity: "192.168.1.1",
			Patterns: []models.Pattern{
				{Protocol: protoTCP, Info: "ACK", Weight: 1},
				{Protocol: protoUDP, Info: "DHCP Request - lease renewal", Weight: 1},
			},
		},
	}
}
