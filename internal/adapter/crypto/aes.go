// Package crypto provides the AES-GCM implementation of the domain cipher.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/mvduarte/patrimonio-backend/internal/domain"
)

// AESCipher implements domain.Cipher with AES-256-GCM. Plaintext records are
// msgpack-encoded before sealing; the random nonce is prepended to the
// ciphertext.
type AESCipher struct {
	aead cipher.AEAD
}

// NewAESCipher creates a cipher from a hex-encoded 32-byte key
func NewAESCipher(hexKey string) (*AESCipher, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	if len(key) != 32 {
		return nil, errors.New("encryption key must be 32 bytes (64 hex characters)")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize GCM: %w", err)
	}

	return &AESCipher{aead: aead}, nil
}

// Encrypt seals a plaintext record into an opaque payload
func (c *AESCipher) Encrypt(plain domain.PlainRecord) ([]byte, error) {
	encoded, err := msgpack.Marshal(plain)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return c.aead.Seal(nonce, nonce, encoded, nil), nil
}

// Decrypt opens an opaque payload back into a plaintext record.
// Returns domain.ErrDecryptionFailed for any unreadable payload.
func (c *AESCipher) Decrypt(payload []byte) (domain.PlainRecord, error) {
	if len(payload) < c.aead.NonceSize() {
		return domain.PlainRecord{}, domain.ErrDecryptionFailed
	}

	nonce, ciphertext := payload[:c.aead.NonceSize()], payload[c.aead.NonceSize():]

	encoded, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return domain.PlainRecord{}, domain.ErrDecryptionFailed
	}

	var plain domain.PlainRecord
	if err := msgpack.Unmarshal(encoded, &plain); err != nil {
		return domain.PlainRecord{}, domain.ErrDecryptionFailed
	}

	return plain, nil
}
