package envelope

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	// IVSize is the size of the random CBC initialization vector.
	IVSize = aes.BlockSize

	// TimestampSize is the size of the big-endian epoch-millisecond timestamp.
	TimestampSize = 8

	separator  = "|"
	fieldCount = 4
)

// Payload is the result of a successful Open.
type Payload struct {
	Plaintext []byte
	// IssuedAt is the envelope timestamp. It is informational only,
	// expiry is decided from the session contents.
	IssuedAt time.Time
}

// Encrypt seals plaintext with the current time as the envelope timestamp.
func Encrypt(keys Keys, plaintext []byte) (string, error) {
	return Seal(keys, plaintext, time.Now())
}

// Seal encrypts plaintext with AES-256-CBC and authenticates
// iv || timestamp || ciphertext with HMAC-SHA256.
// The token layout is hex(signature)|hex(iv)|hex(timestamp)|hex(ciphertext).
func Seal(keys Keys, plaintext []byte, issuedAt time.Time) (string, error) {
	if err := keys.validate(); err != nil {
		return "", err
	}

	block, err := aes.NewCipher(keys.Cipher)
	if err != nil {
		return "", errors.Join(ErrEncryption, err)
	}

	// Fresh IV per call, never reused under the same key
	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", errors.Join(ErrEncryption, err)
	}

	ts := make([]byte, TimestampSize)
	binary.BigEndian.PutUint64(ts, uint64(issuedAt.UnixMilli()))

	ciphertext := pad(plaintext, block.BlockSize())
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, ciphertext)

	signature := sign(keys.MAC, iv, ts, ciphertext)

	var b strings.Builder
	b.Grow(2 * (len(signature) + len(iv) + len(ts) + len(ciphertext) + 2))
	b.WriteString(hex.EncodeToString(signature))
	b.WriteString(separator)
	b.WriteString(hex.EncodeToString(iv))
	b.WriteString(separator)
	b.WriteString(hex.EncodeToString(ts))
	b.WriteString(separator)
	b.WriteString(hex.EncodeToString(ciphertext))

	return b.String(), nil
}

// Decrypt verifies and decrypts a token produced by Encrypt or Seal.
func Decrypt(keys Keys, token string) ([]byte, error) {
	p, err := Open(keys, token)
	if err != nil {
		return nil, err
	}
	return p.Plaintext, nil
}

// Open verifies the token signature and only then decrypts the ciphertext.
func Open(keys Keys, token string) (Payload, error) {
	if err := keys.validate(); err != nil {
		return Payload{}, err
	}

	parts := strings.Split(token, separator)
	if len(parts) != fieldCount {
		return Payload{}, fmt.Errorf("%w: expected %d fields, got %d", ErrTokenFormat, fieldCount, len(parts))
	}

	fields := make([][]byte, fieldCount)
	for i, part := range parts {
		b, err := decodeHex(part)
		if err != nil {
			return Payload{}, fmt.Errorf("%w: field %d: %w", ErrTokenFormat, i, err)
		}
		fields[i] = b
	}

	signature, iv, ts, ciphertext := fields[0], fields[1], fields[2], fields[3]
	if len(iv) != IVSize {
		return Payload{}, fmt.Errorf("%w: iv has %d bytes, need %d", ErrTokenFormat, len(iv), IVSize)
	}
	if len(ts) != TimestampSize {
		return Payload{}, fmt.Errorf("%w: timestamp has %d bytes, need %d", ErrTokenFormat, len(ts), TimestampSize)
	}

	// hmac.Equal is constant-time for equal-length inputs
	if !hmac.Equal(signature, sign(keys.MAC, iv, ts, ciphertext)) {
		return Payload{}, ErrAuthentication
	}

	block, err := aes.NewCipher(keys.Cipher)
	if err != nil {
		return Payload{}, errors.Join(ErrDecryption, err)
	}

	if len(ciphertext) == 0 || len(ciphertext)%block.BlockSize() != 0 {
		return Payload{}, fmt.Errorf("%w: ciphertext length %d", ErrDecryption, len(ciphertext))
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	plaintext, err = unpad(plaintext, block.BlockSize())
	if err != nil {
		return Payload{}, err
	}

	return Payload{
		Plaintext: plaintext,
		IssuedAt:  time.UnixMilli(int64(binary.BigEndian.Uint64(ts))),
	}, nil
}

func sign(key, iv, ts, ciphertext []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(iv)
	mac.Write(ts)
	mac.Write(ciphertext)
	return mac.Sum(nil)
}

// decodeHex accepts lowercase hex only so that every encoded byte has exactly
// one valid textual form.
func decodeHex(s string) ([]byte, error) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return nil, fmt.Errorf("invalid character %q at offset %d", c, i)
		}
	}
	return hex.DecodeString(s)
}

// pad returns a copy of data with PKCS#7 padding applied.
func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data), len(data)+n)
	copy(out, data)
	return append(out, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty plaintext", ErrDecryption)
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, fmt.Errorf("%w: invalid padding", ErrDecryption)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: invalid padding", ErrDecryption)
		}
	}
	return data[:len(data)-n], nil
}
