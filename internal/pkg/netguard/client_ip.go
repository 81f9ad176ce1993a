package netguard

import (
	"strconv"
	"strings"
)

// TrustAllHops trusts every proxy hop listed in X-Forwarded-For.
const TrustAllHops = -1

// ParseTrustProxy maps the TRUST_PROXY setting to a hop count.
// Empty, "false" and "0" disable proxy trust; "true" trusts one hop, as does
// any other non-numeric value; "all" trusts the whole chain.
func ParseTrustProxy(raw string) int {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch v {
	case "", "false", "0", "no", "off":
		return 0
	case "all":
		return TrustAllHops
	}
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return n
	}
	return 1
}

// ClientIP resolves the caller address. With hops == 0 the socket address is
// returned untouched. Otherwise the socket and the rightmost hops entries of
// the forwarded chain are treated as trusted proxies and the next address to
// the left is the client; a chain shorter than that yields its leftmost entry.
func ClientIP(socket, forwardedFor string, hops int) string {
	if hops == 0 || strings.TrimSpace(forwardedFor) == "" {
		return socket
	}

	var chain []string
	for _, part := range strings.Split(forwardedFor, ",") {
		if p := strings.TrimSpace(part); p != "" {
			chain = append(chain, p)
		}
	}
	if len(chain) == 0 {
		return socket
	}

	// chain[len-1] was appended by the socket peer, which is hop 1.
	if hops == TrustAllHops || hops > len(chain) {
		return chain[0]
	}
	return chain[len(chain)-hops]
}
