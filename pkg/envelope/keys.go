package envelope

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the master key size: 256 bits for AES-256 and HMAC-SHA256.
	KeySize = 32

	// hkdfInfo provides domain separation for derived subkeys
	hkdfInfo = "clientsession-envelope-v1"
)

// Keys holds the key material used for one Seal or Open call.
// Cipher keys AES-256-CBC, MAC keys HMAC-SHA256.
type Keys struct {
	Cipher []byte
	MAC    []byte
}

// SingleKey uses the same 32-byte key for encryption and authentication.
// This is the layout every existing token was issued with.
func SingleKey(key []byte) Keys {
	return Keys{Cipher: key, MAC: key}
}

// DeriveKeys expands a master key into two independent subkeys using
// HKDF-SHA256. The wire format does not change, but tokens sealed with derived
// keys cannot be opened with SingleKey and vice versa.
func DeriveKeys(master []byte) (Keys, error) {
	if len(master) != KeySize {
		return Keys{}, ErrInvalidKey
	}

	r := hkdf.New(sha256.New, master, nil, []byte(hkdfInfo))

	material := make([]byte, 2*KeySize)
	if _, err := io.ReadFull(r, material); err != nil {
		return Keys{}, errors.Join(ErrKeyDerivationFailed, err)
	}

	return Keys{
		Cipher: material[:KeySize:KeySize],
		MAC:    material[KeySize:],
	}, nil
}

func (k Keys) validate() error {
	if len(k.Cipher) != KeySize || len(k.MAC) != KeySize {
		return ErrInvalidKey
	}
	return nil
}
