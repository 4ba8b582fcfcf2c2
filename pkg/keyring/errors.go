package keyring

import "errors"

var (
	// ErrInvalidKeyFormat is returned when a configured key is not 64 hex characters
	ErrInvalidKeyFormat = errors.New("keyring.invalid_key_format")

	// ErrKeyGeneration is returned when the random source fails
	ErrKeyGeneration = errors.New("keyring.key_generation_failed")
)
