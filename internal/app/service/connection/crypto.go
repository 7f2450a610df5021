package connection

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Seal encrypts a tenant DSN with key, returning the ciphertext and the
// random nonce it was sealed with.
func Seal(key []byte, dsn string) (ciphertext, nonce []byte, err error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, nil, fmt.Errorf("init cipher: %w", err)
	}
	nonce = make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}
	return aead.Seal(nil, nonce, []byte(dsn), nil), nonce, nil
}

// Open reverses Seal. Any failure, including a wrong key, is reported as
// ErrDecryptCredentials.
func Open(key, ciphertext, nonce []byte) (string, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptCredentials, err)
	}
	if len(nonce) != aead.NonceSize() {
		return "", fmt.Errorf("%w: bad nonce size %d", ErrDecryptCredentials, len(nonce))
	}
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptCredentials, err)
	}
	return string(plain), nil
}
