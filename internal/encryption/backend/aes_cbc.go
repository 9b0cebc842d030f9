package backend

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/cheongcode/seamless-encryptor-sub001/internal/encryption/types"
)

// aesCBCBackend implements AES-256-CBC with PKCS#7 padding. CBC carries
// no authentication tag: tampering and wrong keys are mostly
// undetectable and may produce garbage plaintext. Callers should prefer
// the AEAD variants.
type aesCBCBackend struct{}

func (aesCBCBackend) Algorithm() types.Algorithm {
	return types.AlgorithmAES256CBC
}

func (b aesCBCBackend) Encrypt(plaintext, key []byte) (*Result, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	iv, err := randomBytes(aes.BlockSize)
	if err != nil {
		return nil, err
	}

	padded := padPKCS7(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return &Result{
		Ciphertext: ciphertext,
		IVOrNonce:  iv,
	}, nil
}

func (b aesCBCBackend) Decrypt(ciphertext, key, ivOrNonce, _ []byte) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	if len(ivOrNonce) != aes.BlockSize {
		return nil, types.ErrAuthenticationFailed
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, types.ErrAuthenticationFailed
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, ivOrNonce).CryptBlocks(padded, ciphertext)

	plaintext, ok := unpadPKCS7(padded, aes.BlockSize)
	if !ok {
		return nil, types.ErrAuthenticationFailed
	}
	return plaintext, nil
}

func padPKCS7(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func unpadPKCS7(data []byte, blockSize int) ([]byte, bool) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, false
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, false
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, false
		}
	}
	return data[:len(data)-n], true
}
