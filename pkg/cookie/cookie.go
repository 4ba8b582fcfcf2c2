package cookie

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// MaxSize is the largest name plus value most browsers keep. Larger cookies
// are dropped silently by the client, so Set rejects them instead.
const MaxSize = 4096

// Manager writes and reads plain cookies with a shared set of default
// attributes.
type Manager struct {
	defaults Options
}

// New creates a cookie manager. Defaults are Path "/", HttpOnly and
// SameSite=Lax; opts override them.
func New(opts ...Option) *Manager {
	defaults := Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{
		defaults: applyOptions(defaults, opts),
	}
}

// Set writes a cookie. Per-call options are applied on top of the defaults.
func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) error {
	options := applyOptions(m.defaults, opts)

	if !validName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if size := len(name) + len(value); size > MaxSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrValueTooLarge, size, MaxSize)
	}
	if options.SameSite == http.SameSiteNoneMode && !options.Secure {
		return ErrInsecureSameSite
	}

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     options.Path,
		Domain:   options.Domain,
		MaxAge:   options.MaxAge,
		Secure:   options.Secure,
		HttpOnly: options.HttpOnly,
		SameSite: options.SameSite,
	})
	return nil
}

// Get returns the raw value of the named request cookie.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	return c.Value, nil
}

// Delete instructs the client to drop the named cookie.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     m.defaults.Path,
		Domain:   m.defaults.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: m.defaults.HttpOnly,
		SameSite: m.defaults.SameSite,
		Secure:   m.defaults.Secure,
	})
}

// validName reports whether name is a non-empty RFC 6265 token.
func validName(name string) bool {
	if name == "" {
		return false
	}
	return strings.IndexFunc(name, func(r rune) bool {
		return r <= ' ' || r >= 0x7f || strings.ContainsRune("()<>@,;:\\\"/[]?={}", r)
	}) < 0
}
