package server

import "net"

// documentationNets are the IPv4 blocks reserved for documentation
// (RFC 5737). Traffic from them only appears in test rigs.
var documentationNets = []net.IPNet{
	{IP: net.IPv4(192, 0, 2, 0), Mask: net.CIDRMask(24, 32)},
	{IP: net.IPv4(198, 51, 100, 0), Mask: net.CIDRMask(24, 32)},
	{IP: net.IPv4(203, 0, 113, 0), Mask: net.CIDRMask(24, 32)},
}

// isPrivateIP reports whether ip belongs to a private, local, or otherwise
// non-global range. Connections from such addresses skip TLS even when an
// identity is configured: LAN and dev traffic is not worth encrypting, and
// self-signed certificates only get in the way on a couch setup.
func isPrivateIP(ip net.IP) bool {
	if ip == nil {
		return false
	}
	if v4 := ip.To4(); v4 != nil {
		if v4.IsPrivate() || v4.IsLoopback() || v4.IsLinkLocalUnicast() || v4.IsUnspecified() {
			return true
		}
		if v4.Equal(net.IPv4bcast) {
			return true
		}
		for _, n := range documentationNets {
			if n.Contains(v4) {
				return true
			}
		}
		return false
	}
	return ip.IsLoopback() || ip.IsMulticast() || ip.IsUnspecified()
}

// isPrivateAddr applies isPrivateIP to a host:port address string. An
// unparseable address is treated as non-private, so a configured TLS
// identity fails closed.
func isPrivateAddr(addr string) bool {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	return isPrivateIP(net.ParseIP(host))
}
