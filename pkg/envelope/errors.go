package envelope

import "errors"

var (
	// Decode path errors
	ErrTokenFormat    = errors.New("envelope.invalid_token_format")
	ErrAuthentication = errors.New("envelope.authentication_failed")
	ErrDecryption     = errors.New("envelope.decryption_failed")

	// Encode path errors
	ErrEncryption = errors.New("envelope.encryption_failed")

	// Key errors
	ErrInvalidKey          = errors.New("envelope.invalid_key")
	ErrKeyDerivationFailed = errors.New("envelope.key_derivation_failed")
)
