package clientsession

import "time"

const (
	// DefaultCookieName is the cookie carrying the client-held session.
	// Distinct from "sid", the server-side session cookie.
	DefaultCookieName = "client-session"

	// DefaultMaxInactiveInterval is the default inactivity timeout.
	DefaultMaxInactiveInterval = time.Hour
)

// Config holds client session configuration
type Config struct {
	// CookieName is the name of the session cookie
	CookieName string `env:"CLIENT_SESSION_COOKIE_NAME" envDefault:"client-session"`

	// MaxInactiveInterval is the default inactivity timeout for new sessions (0 disables expiry).
	// Sub-second positive values are rounded up to one second.
	MaxInactiveInterval time.Duration `env:"CLIENT_SESSION_MAX_INACTIVE_INTERVAL" envDefault:"1h"`

	// SecureCookies sets the Secure flag on the session cookie
	SecureCookies bool `env:"CLIENT_SESSION_SECURE_COOKIES" envDefault:"true"`

	// DeriveKeys splits the master key into separate cipher and MAC subkeys.
	// Tokens issued with one setting are rejected under the other.
	DeriveKeys bool `env:"CLIENT_SESSION_DERIVE_KEYS" envDefault:"false"`
}

// DefaultConfig returns default client session configuration
func DefaultConfig() Config {
	return Config{
		CookieName:          DefaultCookieName,
		MaxInactiveInterval: DefaultMaxInactiveInterval,
		SecureCookies:       true,
		DeriveKeys:          false,
	}
}
