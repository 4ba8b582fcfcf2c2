// Package keyring manages the symmetric key that protects client-held
// sessions.
//
// A Keyring holds at most one 32-byte key. The key is either loaded from
// configuration as 64 hex characters or generated lazily the first time
// Current is called. Generation is guarded by a mutex with a lock-free
// fast path, so a burst of concurrent first saves on a cold process ends up
// with exactly one key.
//
// The keyring never writes the key anywhere. When a key was generated, an
// operator who wants sessions to survive restarts reads it with Export and
// stores it in CLIENT_SESSION_SECRET_KEY. Losing the key invalidates every
// outstanding session.
//
// # Usage
//
//	k, err := keyring.NewFromConfig(cfg, keyring.WithLogger(log))
//	if err != nil {
//	    // malformed CLIENT_SESSION_SECRET_KEY: abort startup
//	}
//
//	key, err := k.Current()
//
// # Error Handling
//
//   - ErrInvalidKeyFormat – configured key is not 64 hex characters
//   - ErrKeyGeneration    – random source failed
package keyring
