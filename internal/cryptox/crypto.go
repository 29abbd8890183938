// Package cryptox implements the text cipher used to protect notes and to wrap
// the content key.
//
// A secret is an arbitrary string (a password, a recovery code, or the content
// key itself). Every call to Encrypt derives a fresh AES-256 key from the secret
// with argon2id and a random salt, seals the plaintext with AES-GCM under a
// random nonce, and returns a base64 string that carries everything needed to
// decrypt it again:
//
//	base64( version(1) | salt(16) | nonce(12) | ciphertext+tag )
//
// Encrypting the same plaintext twice yields different output.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/trusty/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	formatVersion = 1
	saltSize      = 16
	nonceSize     = 12
	keySize       = 32
)

// ErrDecryption is returned when a ciphertext cannot be opened: the secret is
// wrong, or the input is not something Encrypt produced.
var ErrDecryption = errors.New("decryption failed")

// KDFParams are the argon2id cost parameters. Memory is in KiB.
type KDFParams struct {
	Time    uint32
	Memory  uint32
	Threads uint8
}

// DefaultKDFParams are the parameters used by the CLI.
var DefaultKDFParams = KDFParams{Time: 1, Memory: 64 * 1024, Threads: 4}

func (p KDFParams) derive(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, p.Time, p.Memory, p.Threads, keySize)
}

// Cipher encrypts and decrypts text under string secrets.
type Cipher struct {
	params KDFParams
}

// NewCipher returns a Cipher using the given argon2id parameters. Data written
// with one set of parameters can only be read back with the same set.
func NewCipher(params KDFParams) *Cipher {
	return &Cipher{params: params}
}

// Encrypt seals plaintext under secret and returns the encoded ciphertext.
func (c *Cipher) Encrypt(secret, plaintext string) (string, error) {
	salt := common.GenerateRandByteArray(saltSize)
	nonce := common.GenerateRandByteArray(nonceSize)

	key := c.params.derive([]byte(secret), salt)
	defer common.WipeByteArray(key)

	aesgcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	out := make([]byte, 0, 1+saltSize+nonceSize+len(plaintext)+aesgcm.Overhead())
	out = append(out, formatVersion)
	out = append(out, salt...)
	out = append(out, nonce...)
	out = aesgcm.Seal(out, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt opens a ciphertext produced by Encrypt. A wrong secret or a
// malformed input yields an error matching ErrDecryption.
func (c *Cipher) Decrypt(secret, ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: not base64: %v", ErrDecryption, err)
	}
	if len(raw) < 1+saltSize+nonceSize {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecryption)
	}
	if raw[0] != formatVersion {
		return "", fmt.Errorf("%w: unsupported format version %d", ErrDecryption, raw[0])
	}

	salt := raw[1 : 1+saltSize]
	nonce := raw[1+saltSize : 1+saltSize+nonceSize]
	sealed := raw[1+saltSize+nonceSize:]

	key := c.params.derive([]byte(secret), salt)
	defer common.WipeByteArray(key)

	aesgcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	plaintext, err := aesgcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}
	return string(plaintext), nil
}

// Fingerprint returns a value that can later verify secret without storing
// it: the secret encrypted under itself.
func (c *Cipher) Fingerprint(secret string) (string, error) {
	return c.Encrypt(secret, secret)
}

// MatchesFingerprint reports whether candidate is the secret behind
// fingerprint. Since fingerprints are not deterministic, the check opens the
// fingerprint with the candidate and compares the result.
func (c *Cipher) MatchesFingerprint(candidate, fingerprint string) bool {
	plain, err := c.Decrypt(candidate, fingerprint)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(plain), []byte(candidate)) == 1
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
