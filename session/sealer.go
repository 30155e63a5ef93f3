package session

import (
	"bytes"
	"crypto/rand"
	"errors"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Sealed file layout: magic | salt | nonce | ciphertext.
var sealMagic = []byte("SSv1")

const (
	saltLen = 16
	keyLen  = chacha20poly1305.KeySize

	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
)

var errSealedFormat = errors.New("not a sealed session file")

// Sealer encrypts the session file at rest with XChaCha20-Poly1305 under a
// key derived from a passphrase with Argon2id.
type Sealer struct {
	passphrase []byte

	mu   sync.Mutex
	salt []byte
	key  []byte
}

func NewSealer(passphrase string) *Sealer {
	return &Sealer{passphrase: []byte(passphrase)}
}

// keyFor returns the derived key for salt, reusing the last derivation.
func (s *Sealer) keyFor(salt []byte) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil && bytes.Equal(s.salt, salt) {
		return s.key
	}
	s.salt = append([]byte(nil), salt...)
	s.key = argon2.IDKey(s.passphrase, salt, argonTime, argonMemory, argonThreads, keyLen)
	return s.key
}

func (s *Sealer) currentSalt() ([]byte, error) {
	s.mu.Lock()
	salt := s.salt
	s.mu.Unlock()
	if salt != nil {
		return salt, nil
	}
	salt = make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	salt, err := s.currentSalt()
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(s.keyFor(salt))
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(sealMagic)+saltLen+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, sealMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, aead.Seal(nil, nonce, plaintext, sealMagic)...)
	return out, nil
}

func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	header := len(sealMagic) + saltLen + chacha20poly1305.NonceSizeX
	if len(sealed) < header || !bytes.Equal(sealed[:len(sealMagic)], sealMagic) {
		return nil, errSealedFormat
	}
	salt := sealed[len(sealMagic) : len(sealMagic)+saltLen]
	nonce := sealed[len(sealMagic)+saltLen : header]

	aead, err := chacha20poly1305.NewX(s.keyFor(salt))
	if err != nil {
		return nil, err
	}
	return aead.Open(nil, nonce, sealed[header:], sealMagic)
}
