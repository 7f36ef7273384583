package server

import (
	"net"
	"testing"
)

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"10.0.0.1", true},
		{"172.16.4.4", true},
		{"192.168.1.20", true},
		{"127.0.0.1", true},
		{"169.254.1.1", true},
		{"0.0.0.0", true},
		{"255.255.255.255", true},
		{"192.0.2.10", true},    // documentation
		{"198.51.100.7", true},  // documentation
		{"203.0.113.99", true},  // documentation
		{"8.8.8.8", false},
		{"93.184.216.34", false},
		{"::1", true},
		{"::", true},
		{"ff02::1", true},
		{"2001:4860:4860::8888", false},
	}

	for _, tt := range tests {
		if got := isPrivateIP(net.ParseIP(tt.ip)); got != tt.want {
			t.Errorf("isPrivateIP(%s) = %v, want %v", tt.ip, got, tt.want)
		}
	}
}

func TestIsPrivateAddr(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"192.168.1.20:51234", true},
		{"8.8.8.8:443", false},
		{"[::1]:9000", true},
		{"not-an-ip:80", false},
		{"garbage", false},
	}

	for _, tt := range tests {
		if got := isPrivateAddr(tt.addr); got != tt.want {
			t.Errorf("isPrivateAddr(%q) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}
