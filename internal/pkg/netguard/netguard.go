// Package netguard decides whether a client address belongs to one of the
// configured networks and resolves the client address behind trusted proxies.
package netguard

import (
	"fmt"
	"net"
	"net/netip"
	"strings"
)

// AllowList is an immutable set of network prefixes.
type AllowList struct {
	prefixes []netip.Prefix
}

// ParseAllowList parses a list of CIDR blocks. Bare addresses are accepted as
// single-host blocks. Any malformed entry is an error.
func ParseAllowList(entries []string) (*AllowList, error) {
	list := &AllowList{}
	for _, raw := range entries {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		p, err := parseEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid network %q: %w", entry, err)
		}
		list.prefixes = append(list.prefixes, p)
	}
	return list, nil
}

// MustParseAllowList is ParseAllowList for tests and literals.
func MustParseAllowList(entries ...string) *AllowList {
	list, err := ParseAllowList(entries)
	if err != nil {
		panic(err)
	}
	return list
}

func parseEntry(entry string) (netip.Prefix, error) {
	if !strings.Contains(entry, "/") {
		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return netip.Prefix{}, err
		}
		addr = addr.Unmap().WithZone("")
		return netip.PrefixFrom(addr, addr.BitLen()), nil
	}

	p, err := netip.ParsePrefix(entry)
	if err != nil {
		return netip.Prefix{}, err
	}
	// ::ffff:a.b.c.d/n with n >= 96 describes an IPv4 block.
	if p.Addr().Is4In6() && p.Bits() >= 96 {
		p = netip.PrefixFrom(p.Addr().Unmap(), p.Bits()-96)
	}
	return p.Masked(), nil
}

// Empty reports whether no networks are configured.
func (l *AllowList) Empty() bool {
	return l == nil || len(l.prefixes) == 0
}

// Len returns the number of configured blocks.
func (l *AllowList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.prefixes)
}

// Prefixes returns a copy of the configured blocks.
func (l *AllowList) Prefixes() []netip.Prefix {
	if l == nil {
		return nil
	}
	return append([]netip.Prefix(nil), l.prefixes...)
}

// Allows reports whether addr falls inside at least one block of the same
// address family. Invalid addresses are never allowed.
func (l *AllowList) Allows(addr netip.Addr) bool {
	if l == nil || !addr.IsValid() {
		return false
	}
	addr = addr.Unmap().WithZone("")
	for _, p := range l.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// AllowsString parses s and checks it. Unparsable input is denied.
func (l *AllowList) AllowsString(s string) bool {
	addr, ok := ParseAddr(s)
	if !ok {
		return false
	}
	return l.Allows(addr)
}

// ParseAddr parses an IP address that may carry brackets, a port or a zone,
// and normalizes IPv4-mapped IPv6 to plain IPv4.
func ParseAddr(s string) (netip.Addr, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return netip.Addr{}, false
	}
	if host, _, err := net.SplitHostPort(s); err == nil {
		s = host
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap().WithZone(""), true
}

// AddrFromIP converts a net.IP, unmapping IPv4-in-IPv6 forms.
func AddrFromIP(ip net.IP) (netip.Addr, bool) {
	addr, ok := netip.AddrFromSlice(ip)
	if !ok {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}
