package keyring

// Config holds keyring configuration
type Config struct {
	// SecretKey is the 64-character hex key. Empty means generate on first save.
	SecretKey string `env:"CLIENT_SESSION_SECRET_KEY" envDefault:""`
}

// NewFromConfig creates a Keyring and loads the configured key, if any.
// A malformed key is a startup error.
func NewFromConfig(cfg Config, opts ...Option) (*Keyring, error) {
	k := New(opts...)
	if cfg.SecretKey == "" {
		return k, nil
	}
	if err := k.Load(cfg.SecretKey); err != nil {
		return nil, err
	}
	return k, nil
}
