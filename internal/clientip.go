package courier

import (
	"net/http"
	"strings"
)

const unknownClient = "unknown"

// ClientIP resolves the rate-limit identifier: the leftmost X-Forwarded-For
// entry (the client as seen by the first proxy), then X-Real-IP, then "unknown".
func ClientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		first, _, _ := strings.Cut(xf, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return unknownClient
}
