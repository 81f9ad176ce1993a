package netguard

import (
	"net"
	"testing"
)

func TestParseAllowListRejectsMalformed(t *testing.T) {
	for _, bad := range []string{"10.0.0.0/33", "not-a-network", "10.0.0/8", "192.168.1.300"} {
		if _, err := ParseAllowList([]string{"10.0.0.0/8", bad}); err == nil {
			t.Errorf("ParseAllowList accepted %q", bad)
		}
	}
}

func TestParseAllowListSkipsBlanks(t *testing.T) {
	list, err := ParseAllowList([]string{" ", "", "10.0.0.0/8 "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.Len() != 1 {
		t.Fatalf("Len = %d, want 1", list.Len())
	}
	empty, _ := ParseAllowList(nil)
	if !empty.Empty() {
		t.Fatal("nil entries should produce an empty list")
	}
}

func TestAllows(t *testing.T) {
	list := MustParseAllowList("10.20.0.0/16", "192.168.1.7", "fd00::/8", "::ffff:172.16.0.0/108")

	tests := []struct {
		addr string
		want bool
	}{
		{"10.20.3.4", true},
		{"10.21.0.1", false},
		{"::ffff:10.20.3.4", true},
		{"192.168.1.7", true},
		{"192.168.1.8", false},
		{"fd12::1", true},
		{"fe80::1%eth0", false},
		{"172.16.5.5", true},
		{"172.32.0.1", false},
		{"[fd00::5]:443", true},
		{"10.20.0.9:51234", true},
		{"", false},
		{"garbage", false},
	}

	for _, tt := range tests {
		if got := list.AllowsString(tt.addr); got != tt.want {
			t.Errorf("AllowsString(%q) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}

func TestFamilyMismatchNeverMatches(t *testing.T) {
	list := MustParseAllowList("0.0.0.0/0")
	if list.AllowsString("2001:db8::1") {
		t.Fatal("an IPv4 block must not match an IPv6 address")
	}
	if !list.AllowsString("::ffff:8.8.8.8") {
		t.Fatal("IPv4-mapped address should match its IPv4 form")
	}
}

func TestAddrFromIP(t *testing.T) {
	addr, ok := AddrFromIP(net.IPv4zero)
	if !ok || !addr.Is4() {
		t.Fatalf("AddrFromIP(IPv4zero) = %v, %v; want plain IPv4", addr, ok)
	}
	if _, ok := AddrFromIP(nil); ok {
		t.Fatal("nil IP should not convert")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		socket string
		xff    string
		hops   int
		want   string
	}{
		{"no trust ignores header", "10.0.0.1", "203.0.113.9", 0, "10.0.0.1"},
		{"one hop takes rightmost", "10.0.0.1", "198.51.100.4, 203.0.113.9", 1, "203.0.113.9"},
		{"two hops", "10.0.0.1", "198.51.100.4, 203.0.113.9", 2, "198.51.100.4"},
		{"short chain yields leftmost", "10.0.0.1", "203.0.113.9", 5, "203.0.113.9"},
		{"trust all", "10.0.0.1", "1.1.1.1, 2.2.2.2, 3.3.3.3", TrustAllHops, "1.1.1.1"},
		{"missing header", "10.0.0.1", "", 1, "10.0.0.1"},
		{"blank entries dropped", "10.0.0.1", " , ", 1, "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClientIP(tt.socket, tt.xff, tt.hops); got != tt.want {
				t.Fatalf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseTrustProxy(t *testing.T) {
	for raw, want := range map[string]int{"": 0, "false": 0, "0": 0, "1": 1, "true": 1, "3": 3, "all": TrustAllHops, "yes": 1} {
		if got := ParseTrustProxy(raw); got != want {
			t.Errorf("ParseTrustProxy(%q) = %d, want %d", raw, got, want)
		}
	}
}
