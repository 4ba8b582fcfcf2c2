package clientsession

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/clientsession/pkg/cookie"
)

// Option is a functional option for configuring the Manager
type Option func(*Manager)

// WithConfig sets custom configuration
func WithConfig(config Config) Option {
	return func(m *Manager) {
		m.config = config
	}
}

// WithCookieName sets the session cookie name
func WithCookieName(name string) Option {
	return func(m *Manager) {
		m.config.CookieName = name
	}
}

// WithMaxInactiveInterval sets the default inactivity timeout for new sessions.
// It is stored in whole seconds; positive values under a second become one second.
func WithMaxInactiveInterval(d time.Duration) Option {
	return func(m *Manager) {
		m.config.MaxInactiveInterval = d
	}
}

// WithSecureCookies toggles the Secure cookie flag
func WithSecureCookies(secure bool) Option {
	return func(m *Manager) {
		m.config.SecureCookies = secure
	}
}

// WithDerivedKeys enables separate HKDF subkeys for the cipher and the MAC
func WithDerivedKeys(enabled bool) Option {
	return func(m *Manager) {
		m.config.DeriveKeys = enabled
	}
}

// WithLogger sets the logger for decode failures and session lifecycle events
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock overrides the time source, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// WithCookieManager sets the cookie manager used by the HTTP helpers
func WithCookieManager(cookieMgr *cookie.Manager, opts ...cookie.Option) Option {
	return func(m *Manager) {
		m.cookieManager = cookieMgr
		m.cookieOptions = opts
	}
}
