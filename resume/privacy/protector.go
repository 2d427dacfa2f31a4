// Package privacy seals the personal subtree of resume content before it is
// persisted and opens it again before anything renders or returns it.
package privacy

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"resume-builder/resume/model"
)

const (
	sealedPrefix = "enc:v1:"
	hkdfInfo     = "resume-builder personal data v1"
)

var (
	// ErrDecryptionFailed reports ciphertext that cannot be opened with the configured key.
	ErrDecryptionFailed = errors.New("personal data decryption failed")

	// ErrMissingKey reports a Protector built without key material.
	ErrMissingKey = errors.New("encryption key not configured")
)

// Protector seals and opens the personal subtree with XChaCha20-Poly1305.
type Protector struct {
	key  []byte
	rand io.Reader
}

// NewProtector derives a 256-bit key from secret with HKDF-SHA256.
func NewProtector(secret string) (*Protector, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingKey
	}
	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return &Protector{key: key, rand: rand.Reader}, nil
}

// Seal encrypts the personal subtree. The non-personal sections pass through untouched.
func (p *Protector) Seal(content model.Content) (model.SealedContent, error) {
	return p.SealFor("", content)
}

// Open reverses Seal.
func (p *Protector) Open(sealed model.SealedContent) (model.Content, error) {
	return p.OpenFor("", sealed)
}

// SealFor binds the ciphertext to docID so it cannot be replayed into another document.
func (p *Protector) SealFor(docID string, content model.Content) (model.SealedContent, error) {
	personal, err := p.SealPersonal(docID, content.Personal)
	if err != nil {
		return model.SealedContent{}, err
	}
	return model.SealedContent{Personal: personal, Sections: content.Sections}, nil
}

// OpenFor decrypts content sealed with SealFor for the same docID.
func (p *Protector) OpenFor(docID string, sealed model.SealedContent) (model.Content, error) {
	personal, err := p.OpenPersonal(docID, sealed.Personal)
	if err != nil {
		return model.Content{}, err
	}
	return model.Content{Personal: personal, Sections: sealed.Sections}, nil
}

// SealPersonal returns the opaque representation of a personal subtree.
func (p *Protector) SealPersonal(docID string, personal model.Personal) (string, error) {
	if p == nil || len(p.key) == 0 {
		return "", ErrMissingKey
	}
	plaintext, err := json.Marshal(sealedPersonal{Personal: personal, Links: personal.Links})
	if err != nil {
		return "", fmt.Errorf("encode personal: %w", err)
	}
	aead, err := chacha20poly1305.NewX(p.key)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(p.rand, nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}
	out := aead.Seal(nonce, nonce, plaintext, []byte(docID))
	return sealedPrefix + base64.RawURLEncoding.EncodeToString(out), nil
}

// OpenPersonal decrypts a sealed personal subtree. An empty value opens to the
// zero Personal; every other failure is ErrDecryptionFailed.
func (p *Protector) OpenPersonal(docID string, sealed string) (model.Personal, error) {
	if sealed == "" {
		return model.Personal{}, nil
	}
	if p == nil || len(p.key) == 0 {
		return model.Personal{}, fmt.Errorf("%w: %w", ErrDecryptionFailed, ErrMissingKey)
	}
	if !strings.HasPrefix(sealed, sealedPrefix) {
		return model.Personal{}, fmt.Errorf("%w: unknown format", ErrDecryptionFailed)
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(sealed, sealedPrefix))
	if err != nil {
		return model.Personal{}, fmt.Errorf("%w: decode: %v", ErrDecryptionFailed, err)
	}
	aead, err := chacha20poly1305.NewX(p.key)
	if err != nil {
		return model.Personal{}, fmt.Errorf("%w: init cipher: %v", ErrDecryptionFailed, err)
	}
	if len(raw) < aead.NonceSize()+aead.Overhead() {
		return model.Personal{}, fmt.Errorf("%w: ciphertext too short", ErrDecryptionFailed)
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, []byte(docID))
	if err != nil {
		return model.Personal{}, fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}
	var opened sealedPersonal
	if err := json.Unmarshal(plaintext, &opened); err != nil {
		return model.Personal{}, fmt.Errorf("%w: decode personal: %v", ErrDecryptionFailed, err)
	}
	personal := opened.Personal
	personal.Links = opened.Links
	return personal, nil
}

// sealedPersonal is the plaintext layout. Links is written even when empty so
// an empty list and an absent one open to exactly what was sealed.
type sealedPersonal struct {
	model.Personal
	Links []string `json:"links"`
}

// IsSealed reports whether value carries the sealed prefix.
func IsSealed(value string) bool {
	return strings.HasPrefix(value, sealedPrefix)
}
