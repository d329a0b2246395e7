// internal/app/system/ratelimit/ratelimit.go

// Package ratelimit bounds abuse-prone auth endpoints: password login
// attempts and phone OTP sends. OTP sends cost money per message, so
// they get a much tighter window than logins.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter counts requests per key over a sliding window. Safe for
// concurrent use.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	limit    int
	duration time.Duration
}

type window struct {
	count     int
	expiresAt time.Time
}

// New creates a limiter allowing limit requests per duration per key.
func New(limit int, duration time.Duration) *Limiter {
	l := &Limiter{
		windows:  make(map[string]*window),
		limit:    limit,
		duration: duration,
	}
	go l.cleanupLoop()
	return l
}

// Allow records a request for key and reports whether it is within the
// limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, exists := l.windows[key]
	if !exists || now.After(w.expiresAt) {
		l.windows[key] = &window{count: 1, expiresAt: now.Add(l.duration)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

// Reset clears the window for key, typically after a successful login.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.duration * 2)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		now := time.Now()
		for key, w := range l.windows {
			if now.After(w.expiresAt) {
				delete(l.windows, key)
			}
		}
		l.mu.Unlock()
	}
}

// ClientIP extracts the client IP, honoring proxy headers before
// falling back to RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// AuthLimiter guards the auth endpoints. Logins are tracked per IP and
// per email so neither a single host nor a targeted account can be
// hammered. OTP sends are tracked per phone number.
type AuthLimiter struct {
	loginIP    *Limiter
	loginEmail *Limiter
	otpPhone   *Limiter
}

// NewAuthLimiter creates a limiter with the default auth budgets:
// 10 logins per IP per minute, 5 per email per 5 minutes, and 3 OTP
// sends per phone per 10 minutes.
func NewAuthLimiter() *AuthLimiter {
	return &AuthLimiter{
		loginIP:    New(10, time.Minute),
		loginEmail: New(5, 5*time.Minute),
		otpPhone:   New(3, 10*time.Minute),
	}
}

// AllowLogin reports whether a login attempt may proceed.
func (a *AuthLimiter) AllowLogin(r *http.Request, email string) bool {
	if !a.loginIP.Allow(ClientIP(r)) {
		return false
	}
	if email != "" {
		return a.loginEmail.Allow(strings.ToLower(strings.TrimSpace(email)))
	}
	return true
}

// AllowOTP reports whether another verification message may be sent to
// phone.
func (a *AuthLimiter) AllowOTP(phone string) bool {
	return a.otpPhone.Allow(strings.TrimSpace(phone))
}

// LoginSucceeded clears the email window so a recovered account is not
// still throttled.
func (a *AuthLimiter) LoginSucceeded(email string) {
	if email != "" {
		a.loginEmail.Reset(strings.ToLower(strings.TrimSpace(email)))
	}
}
