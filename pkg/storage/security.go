package storage

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"syscall"
)

// BlockedNetworks contains IP ranges that remote inputs may not resolve to
var BlockedNetworks = []string{
	"0.0.0.0/8",      // This host
	"127.0.0.0/8",    // Localhost
	"10.0.0.0/8",     // Private network
	"172.16.0.0/12",  // Private network
	"192.168.0.0/16", // Private network
	"169.254.0.0/16", // Link-local (cloud metadata services)
	"::1/128",        // IPv6 localhost
	"fc00::/7",       // IPv6 unique local
	"fe80::/10",      // IPv6 link-local
}

var blockedNets = mustParseCIDRs(BlockedNetworks)

func mustParseCIDRs(cidrs []string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(err)
		}
		nets = append(nets, network)
	}
	return nets
}

// IsBlockedIP checks if an IP address is in a blocked network range
func IsBlockedIP(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}

	for _, network := range blockedNets {
		if network.Contains(ip) {
			return true
		}
	}

	return false
}

// ValidateHTTPURI checks that an HTTP/HTTPS URI does not resolve to a
// blocked network
func ValidateHTTPURI(ctx context.Context, uri string) error {
	parsed, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("invalid URI: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: expected http or https, got %q", ErrUnsupportedScheme, parsed.Scheme)
	}

	hostname := parsed.Hostname()

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, hostname)
	if err != nil {
		return fmt.Errorf("failed to resolve hostname: %w", err)
	}

	for _, addr := range addrs {
		ipStr := addr.IP.String()
		if IsBlockedIP(ipStr) {
			return fmt.Errorf("%w: %s resolves to %s (%s)", ErrBlockedAddress, hostname, ipStr, blockReason(addr.IP))
		}
	}

	return nil
}

// blockReason returns a human-readable reason for blocking an IP
func blockReason(ip net.IP) string {
	switch {
	case ip.IsLoopback():
		return "localhost access not allowed"
	case ip.IsPrivate():
		return "private network access not allowed"
	case ip.IsLinkLocalUnicast():
		return "link-local access not allowed"
	default:
		return "blocked network"
	}
}

// guardDial rejects connections to blocked addresses after DNS resolution
func guardDial(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	if IsBlockedIP(host) {
		return fmt.Errorf("%w: connection to %s (%s)", ErrBlockedAddress, host, blockReason(net.ParseIP(host)))
	}
	return nil
}
