// Package vault provides authenticated encryption for per-user LLM vendor
// API keys at rest.
//
// Usage pattern:
//  1. Generate a master secret (e.g. `openssl rand -hex 32`) and store it in
//     the FITFORGE_MASTER_KEY environment variable.
//  2. Encrypt a vendor key with `encryptkey sk-xxx` → outputs an "enc:v1:..." string.
//  3. Store the encrypted string in the user's credential record (or in
//     config.yaml for the system default). It is decrypted only for the
//     lifetime of a single generation call.
//
// Each Encrypt call draws a fresh random salt and derives the actual AES key
// from the master secret with PBKDF2, so a leaked ciphertext cannot be
// brute-forced without also compromising the master secret.
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// payloadPrefix is the sentinel prefix that identifies an encrypted value.
// Format: enc:v1:<base64(salt || nonce || ciphertext+tag)>
const payloadPrefix = "enc:v1:"

const (
	saltSize       = 16
	kdfIterations  = 120_000
	derivedKeySize = 32 // AES-256
)

// DecryptionError is returned for any failure to recover a plaintext:
// malformed payload, truncated data, or GCM authentication-tag mismatch
// (wrong master secret or tampered ciphertext). Callers must treat it as
// fatal for the generation request — no partial key is ever returned.
type DecryptionError struct {
	Reason string
	Err    error
}

func (e *DecryptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vault: decryption failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("vault: decryption failed: %s", e.Reason)
}

func (e *DecryptionError) Unwrap() error { return e.Err }

// Vault encrypts and decrypts UTF-8 strings with AES-256-GCM under keys
// derived from a single master secret. A Vault is immutable and safe for
// concurrent use.
type Vault struct {
	master []byte
}

// New creates a Vault from the given master secret.
// The secret may be any non-empty byte string; PBKDF2 stretches it to a
// full-strength AES key per encryption call.
func New(master []byte) (*Vault, error) {
	if len(master) == 0 {
		return nil, fmt.Errorf("vault: master secret must not be empty")
	}
	m := make([]byte, len(master))
	copy(m, master)
	return &Vault{master: m}, nil
}

// Encrypt encrypts plaintext and returns a self-contained payload string
// with the "enc:v1:" prefix. A fresh random salt and nonce are generated for
// every call, so repeated encryption of the same plaintext produces
// different ciphertext.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("vault: failed to generate salt: %w", err)
	}

	gcm, err := v.aeadForSalt(salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("vault: failed to generate nonce: %w", err)
	}

	// Payload layout: salt || nonce || ciphertext+tag.
	sealed := gcm.Seal(nil, nonce, []byte(plaintext), nil)
	payload := make([]byte, 0, len(salt)+len(nonce)+len(sealed))
	payload = append(payload, salt...)
	payload = append(payload, nonce...)
	payload = append(payload, sealed...)

	return payloadPrefix + base64.StdEncoding.EncodeToString(payload), nil
}

// Decrypt reverses Encrypt. Any malformed payload or authentication failure
// returns a *DecryptionError — decryption fails closed and never returns
// garbled plaintext.
func (v *Vault) Decrypt(payload string) (string, error) {
	if !IsEncrypted(payload) {
		return "", &DecryptionError{Reason: fmt.Sprintf("payload missing %q prefix", payloadPrefix)}
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(payload, payloadPrefix))
	if err != nil {
		return "", &DecryptionError{Reason: "payload is not valid base64", Err: err}
	}

	if len(data) < saltSize {
		return "", &DecryptionError{Reason: "payload too short"}
	}
	salt, rest := data[:saltSize], data[saltSize:]

	gcm, err := v.aeadForSalt(salt)
	if err != nil {
		return "", err
	}

	if len(rest) < gcm.NonceSize() {
		return "", &DecryptionError{Reason: "payload too short"}
	}
	nonce, sealed := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		// Wrong master secret or tampered data.
		return "", &DecryptionError{Reason: "authentication tag mismatch", Err: err}
	}

	return string(plaintext), nil
}

// IsEncrypted reports whether value carries the vault payload prefix.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, payloadPrefix)
}

// aeadForSalt derives the per-call AES key from the master secret and salt
// and returns a ready GCM instance.
func (v *Vault) aeadForSalt(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(v.master, salt, kdfIterations, derivedKeySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("vault: failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("vault: failed to create GCM: %w", err)
	}
	return gcm, nil
}

// MasterSecretFromEnv reads the master secret from the FITFORGE_MASTER_KEY
// environment variable. The value must be a 64-character hex string
// (e.g. from `openssl rand -hex 32`).
func MasterSecretFromEnv() ([]byte, error) {
	hexKey := os.Getenv("FITFORGE_MASTER_KEY")
	if hexKey == "" {
		return nil, fmt.Errorf("vault: FITFORGE_MASTER_KEY environment variable is not set; " +
			"generate one with: openssl rand -hex 32")
	}

	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("vault: FITFORGE_MASTER_KEY is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("vault: FITFORGE_MASTER_KEY must be 64 hex chars (32 bytes), got %d bytes", len(key))
	}

	return key, nil
}
