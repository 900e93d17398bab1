package core

import "docsign-backend-go/internal/crypto"

type aesSealer struct {
	key []byte
}

// NewAESSealer seals payloads with AES-256-GCM under key.
func NewAESSealer(key []byte) SignatureSealer {
	return &aesSealer{key: key}
}

func (s *aesSealer) Seal(plainText string) (string, error) {
	return crypto.Seal(plainText, s.key)
}

func (s *aesSealer) Open(sealed string) (string, error) {
	return crypto.Open(sealed, s.key)
}
