package clientsession

import (
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/clientsession/pkg/cookie"
	"github.com/dmitrymomot/clientsession/pkg/envelope"
	"github.com/dmitrymomot/clientsession/pkg/keyring"
	"github.com/dmitrymomot/clientsession/pkg/logger"
)

// Token is a sealed session ready to be written as a cookie.
type Token struct {
	Name     string
	Value    string
	MaxAge   int // seconds; 0 means a browser-session cookie
	Secure   bool
	HTTPOnly bool
}

// Manager turns tokens into sessions and back.
type Manager struct {
	keys          *keyring.Keyring
	config        Config
	logger        *slog.Logger
	now           func() time.Time
	cookieManager *cookie.Manager
	cookieOptions []cookie.Option
}

// New creates a session manager backed by the given keyring.
func New(keys *keyring.Keyring, opts ...Option) *Manager {
	if keys == nil {
		// Fail fast: a manager without a keyring can never restore a session
		panic("clientsession: keyring is required")
	}

	m := &Manager{
		keys:   keys,
		config: DefaultConfig(),
		logger: logger.Discard(),
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.config.CookieName == "" {
		m.config.CookieName = DefaultCookieName
	}
	m.config.MaxInactiveInterval = normalizeInterval(m.config.MaxInactiveInterval)
	if m.cookieManager == nil {
		m.cookieManager = cookie.New()
	}

	return m
}

// NewFromConfig creates a new Manager from the provided Config.
func NewFromConfig(cfg Config, keys *keyring.Keyring, opts ...Option) *Manager {
	configOpts := []Option{
		WithConfig(cfg),
	}

	configOpts = append(configOpts, opts...)

	return New(keys, configOpts...)
}

// CookieName returns the name of the cookie holding the session.
func (m *Manager) CookieName() string {
	return m.config.CookieName
}

// NewSession returns a fresh session with the default timeout.
func (m *Manager) NewSession() *Session {
	return newSession(m.now, m.config.MaxInactiveInterval)
}

// Load restores the session carried by token.
//
// An empty token, a keyring without a key, or an expired session all yield a
// fresh session. A token that cannot be decoded returns an error wrapping
// ErrDecodeFailed together with the specific cause; callers pick whether to
// degrade to NewSession.
func (m *Manager) Load(token string) (*Session, error) {
	if token == "" {
		return m.NewSession(), nil
	}

	key, ok := m.keys.Key()
	if !ok {
		// No token can have been issued without a key
		return m.NewSession(), nil
	}

	keys, err := m.envelopeKeys(key)
	if err != nil {
		return nil, errors.Join(ErrDecodeFailed, err)
	}

	sealed, err := envelope.Open(keys, token)
	if err != nil {
		return nil, errors.Join(ErrDecodeFailed, err)
	}

	p, err := unmarshalPayload(sealed.Plaintext)
	if err != nil {
		return nil, errors.Join(ErrDecodeFailed, err)
	}

	now := m.now()
	if expired(p.LastAccessedTime, p.MaxInactiveInterval, now) {
		m.logger.Debug("client session expired",
			logger.Component("clientsession"),
			logger.SessionID(p.ID),
			slog.Time("issued_at", sealed.IssuedAt),
		)
		return m.NewSession(), nil
	}

	return restoreSession(p, m.now, m.config.MaxInactiveInterval, truncate(now)), nil
}

// Save seals the session into a token, generating the key on first use.
// A nil session produces a nil token and no error.
func (m *Manager) Save(s *Session) (*Token, error) {
	if s == nil {
		return nil, nil
	}

	s.touch(m.now())

	plaintext, err := marshalPayload(s)
	if err != nil {
		return nil, errors.Join(ErrEncodeFailed, err)
	}

	key, err := m.keys.Current()
	if err != nil {
		return nil, errors.Join(ErrEncodeFailed, err)
	}

	keys, err := m.envelopeKeys(key)
	if err != nil {
		return nil, errors.Join(ErrEncodeFailed, err)
	}

	value, err := envelope.Seal(keys, plaintext, m.now())
	if err != nil {
		return nil, errors.Join(ErrEncodeFailed, err)
	}

	maxAge := intervalSeconds(s.maxInactive)
	if maxAge < 0 {
		maxAge = 0
	}

	return &Token{
		Name:     m.config.CookieName,
		Value:    value,
		MaxAge:   maxAge,
		Secure:   m.config.SecureCookies,
		HTTPOnly: true,
	}, nil
}

func (m *Manager) envelopeKeys(key []byte) (envelope.Keys, error) {
	if m.config.DeriveKeys {
		return envelope.DeriveKeys(key)
	}
	return envelope.SingleKey(key), nil
}
