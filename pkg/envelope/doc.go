// Package envelope encrypts and authenticates small byte payloads into a
// printable token suitable for a cookie value.
//
// A token has four lowercase-hex fields joined with "|":
//
//	signature|iv|timestamp|ciphertext
//
// The ciphertext is AES-256-CBC with PKCS#7 padding under a fresh random
// 16-byte IV. The timestamp is the issue time as a big-endian int64 of epoch
// milliseconds. The signature is HMAC-SHA256 over iv || timestamp ||
// ciphertext.
//
// # Usage
//
//	import "github.com/dmitrymomot/clientsession/pkg/envelope"
//
//	keys := envelope.SingleKey(key) // key is 32 bytes
//	token, err := envelope.Encrypt(keys, []byte(`{"hello":"world"}`))
//	if err != nil {
//	    // handle error
//	}
//
//	plaintext, err := envelope.Decrypt(keys, token)
//	if err != nil {
//	    // handle error
//	}
//
// # Verify-then-decrypt
//
// Open checks the structure of the token, then the signature, and only then
// runs the cipher. Unauthenticated ciphertext is never decrypted.
//
// # Keys
//
// SingleKey reuses one 32-byte key for the cipher and the MAC. DeriveKeys
// splits a master key into two HKDF-SHA256 subkeys instead; the token layout
// is the same, only the key material differs.
//
// # Error Handling
//
//   - ErrTokenFormat    – wrong field count, non-hex field, bad IV or timestamp size
//   - ErrAuthentication – signature mismatch (tampering or wrong key)
//   - ErrDecryption     – ciphertext or padding malformed after a valid signature
//   - ErrEncryption     – random source or cipher setup failed while sealing
//   - ErrInvalidKey     – key material is not 32 bytes
package envelope
