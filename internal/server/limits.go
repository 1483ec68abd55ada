package server

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// sessionLimiter counts open live sessions per client IP.
type sessionLimiter struct {
	max int

	mu    sync.Mutex
	perIP map[string]int
}

func newSessionLimiter(max int) *sessionLimiter {
	return &sessionLimiter{max: max, perIP: make(map[string]int)}
}

// acquire reserves a session slot for ip. It reports false when ip is at
// the limit. A zero limit never refuses.
func (l *sessionLimiter) acquire(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.max > 0 && l.perIP[ip] >= l.max {
		return false
	}
	l.perIP[ip]++
	return true
}

func (l *sessionLimiter) release(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.perIP[ip] <= 1 {
		delete(l.perIP, ip)
		return
	}
	l.perIP[ip]--
}

func (l *sessionLimiter) count(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.perIP[ip]
}

// clientIP is the host part of the peer address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// messageRate is a fixed one-minute window counter for one session.
type messageRate struct {
	max    int
	now    func() time.Time
	window time.Time
	count  int
}

func newMessageRate(max int) *messageRate {
	return &messageRate{max: max, now: time.Now}
}

// allow records one message and reports whether it is within the limit.
func (m *messageRate) allow() bool {
	if m.max <= 0 {
		return true
	}
	now := m.now()
	if now.Sub(m.window) >= time.Minute {
		m.window = now
		m.count = 0
	}
	m.count++
	return m.count <= m.max
}
