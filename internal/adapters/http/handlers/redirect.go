package handlers

import (
	"net/url"
	"strings"
)

// DefaultNext is where a login lands when no usable target was requested.
const DefaultNext = "/schedule"

// SafeNext returns raw when it is a same-origin relative path, otherwise
// DefaultNext. Protocol-relative and backslash forms are rejected.
func SafeNext(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") {
		return DefaultNext
	}
	if strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return DefaultNext
	}
	if strings.ContainsAny(raw, "\r\n\t") {
		return DefaultNext
	}
	u, err := url.Parse(raw)
	if err != nil || u.IsAbs() || u.Host != "" {
		return DefaultNext
	}
	return raw
}

func loginErrorURL(next string) string {
	return "/login?error=1&next=" + url.QueryEscape(SafeNext(next))
}
