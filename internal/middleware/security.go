package middleware

import (
	"net/http"
	"strings"
)

// contentSecurityPolicy allows the Bootstrap stylesheet with the page's
// inline layout styles, the inline live session script, and WebSocket
// connections back to this host.
var contentSecurityPolicy = strings.Join([]string{
	"default-src 'self'",
	"style-src 'self' 'unsafe-inline' https://cdn.jsdelivr.net",
	"script-src 'self' 'unsafe-inline'",
	"connect-src 'self' ws: wss:",
	"frame-ancestors 'none'",
	"form-action 'self'",
}, "; ")

// SecurityHeaders sets the response headers every page carries.
// HSTS is only sent in production.
func SecurityHeaders(environment string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "same-origin")
			h.Set("Content-Security-Policy", contentSecurityPolicy)
			if environment == "production" {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}
