package catalog

import (
	"net"
	"net/mail"
	"net/url"
	"strings"
)

// HostFromURL returns the lower-cased host of rawURL without port. Inputs
// without a scheme ("news.test/path") are accepted; anything unparsable
// degrades to the trimmed input.
func HostFromURL(rawURL string) string {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		u, err = url.Parse("http://" + raw)
	}
	if err != nil || u.Host == "" {
		return strings.ToLower(raw)
	}

	return strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
}

// SenderDomain extracts the domain part of a sender address. Display-name
// forms ("Bank <alerts@bank.test>") are accepted. Without an '@' the trimmed
// lower-cased sender is returned as a best effort.
func SenderDomain(sender string) string {
	s := strings.TrimSpace(sender)
	if addr, err := mail.ParseAddress(s); err == nil {
		s = addr.Address
	}

	at := strings.LastIndex(s, "@")
	if at < 0 {
		return strings.ToLower(s)
	}
	return strings.ToLower(strings.Trim(s[at+1:], " .>"))
}

// MailHost is the mail server identity used for a sender.
func MailHost(sender string) string {
	domain := SenderDomain(sender)
	if domain == "" {
		return "mail.unknown"
	}
	if !strings.Contains(sender, "@") || net.ParseIP(domain) != nil {
		return domain
	}
	return "mail." + domain
}

func isHTTPS(rawURL string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(rawURL)), "https://")
}
