package core

import (
	"net"
	"strings"
)

const DefaultPort = "443"

// NormalizeHost returns host in host:port form. A missing port defaults to
// 443; an explicit port is kept as given. Bracketed and bare IPv6 literals
// are accepted.
func NormalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if host == "" {
		host = DefaultHost
	}
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		return net.JoinHostPort(strings.Trim(host, "[]"), DefaultPort)
	}
	return net.JoinHostPort(host, DefaultPort)
}
