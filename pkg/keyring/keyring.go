package keyring

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/clientsession/pkg/logger"
)

const (
	// KeySize is the key length in bytes (AES-256, HMAC-SHA256).
	KeySize = 32

	// HexKeySize is the length of a key in its hex text form.
	HexKeySize = 2 * KeySize

	fingerprintSize = 8
)

// Keyring owns the process-wide session key.
//
// Reads are lock-free once a key exists. The first Current call on an empty
// keyring generates the key under a mutex so concurrent callers all observe
// the same one.
type Keyring struct {
	key    atomic.Pointer[[]byte]
	mu     sync.Mutex
	rand   io.Reader
	logger *slog.Logger
}

// Option configures a Keyring.
type Option func(*Keyring)

// WithLogger sets the logger used to report key generation and loading.
func WithLogger(l *slog.Logger) Option {
	return func(k *Keyring) {
		if l != nil {
			k.logger = l
		}
	}
}

// WithRandom replaces crypto/rand.Reader as the key source.
func WithRandom(r io.Reader) Option {
	return func(k *Keyring) {
		if r != nil {
			k.rand = r
		}
	}
}

// New creates an empty keyring. The key is generated on first use of Current
// unless Load is called before.
func New(opts ...Option) *Keyring {
	k := &Keyring{
		rand:   rand.Reader,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Key returns a copy of the current key without generating one.
func (k *Keyring) Key() ([]byte, bool) {
	p := k.key.Load()
	if p == nil {
		return nil, false
	}
	return bytes.Clone(*p), true
}

// Current returns a copy of the current key, generating it on first use.
func (k *Keyring) Current() ([]byte, error) {
	if p := k.key.Load(); p != nil {
		return bytes.Clone(*p), nil
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if p := k.key.Load(); p != nil {
		return bytes.Clone(*p), nil
	}

	key, err := generate(k.rand)
	if err != nil {
		return nil, err
	}
	k.key.Store(&key)

	// Only the fingerprint is logged. Operators persist the key through Export.
	k.logger.Warn("generated new client session key; sessions will not survive a restart unless it is persisted",
		logger.Component("keyring"),
		logger.KeyFingerprint(fingerprint(key)),
	)

	return bytes.Clone(key), nil
}

// Load replaces the current key with one decoded from its hex form.
func (k *Keyring) Load(hexKey string) error {
	key, err := ParseKey(hexKey)
	if err != nil {
		return err
	}

	k.mu.Lock()
	k.key.Store(&key)
	k.mu.Unlock()

	k.logger.Info("loaded client session key",
		logger.Component("keyring"),
		logger.KeyFingerprint(fingerprint(key)),
	)
	return nil
}

// Export returns the current key as lowercase hex so it can be stored in
// configuration. The keyring never persists the key itself.
func (k *Keyring) Export() (string, bool) {
	key, ok := k.Key()
	if !ok {
		return "", false
	}
	return hex.EncodeToString(key), true
}

// Fingerprint identifies the current key without revealing it.
// It is empty when no key exists yet.
func (k *Keyring) Fingerprint() string {
	p := k.key.Load()
	if p == nil {
		return ""
	}
	return fingerprint(*p)
}

// ParseKey decodes a 64-character hex string into a 32-byte key.
func ParseKey(hexKey string) ([]byte, error) {
	if len(hexKey) != HexKeySize {
		return nil, fmt.Errorf("%w: got %d characters, need %d", ErrInvalidKeyFormat, len(hexKey), HexKeySize)
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, errors.Join(ErrInvalidKeyFormat, err)
	}
	return key, nil
}

// GenerateKey creates a new random 32-byte key.
func GenerateKey() ([]byte, error) {
	return generate(rand.Reader)
}

func generate(r io.Reader) ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errors.Join(ErrKeyGeneration, err)
	}
	return key, nil
}

func fingerprint(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:fingerprintSize])
}
