// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftstore Authors

package credentials

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/argon2"

	"github.com/driftstore/driftstore/models"
)

// credentialFile is the on-disk envelope. The salt is stored in the clear
// next to the ciphertext: it is not a secret, it only ensures two devices
// with the same app secret derive different keys.
type credentialFile struct {
	Salt string `json:"salt"`
	Blob string `json:"blob"`
}

// vault is the plaintext layout inside the encrypted blob:
// app key -> user id -> credential.
type vault map[string]map[string]models.Credential

// FileStore is a [Store] backed by a single encrypted file. The blob is
// sealed with AES-256-GCM under a key derived from the app secret via
// Argon2id; the nonce is prepended to the ciphertext so decryption can
// split it back out.
type FileStore struct {
	path     string
	groupKey string
	secret   string

	// Argon2id tuning parameters. Stored in the struct so they can be
	// adjusted per deployment target (e.g. mobile vs. desktop).
	argonTime    uint32
	argonMemory  uint32
	argonThreads uint8
	argonKeyLen  uint32

	mu sync.Mutex
}

var _ Store = (*FileStore)(nil)

// NewFileStore constructs a [FileStore] writing to path, namespaced by
// groupKey (the application key) and sealed with secret. The Argon2id
// parameters follow the OWASP (2024) recommendation: 1 iteration, 64 MiB,
// 4 threads, 256-bit key.
func NewFileStore(path, groupKey, secret string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("credential file path is required")
	}
	if groupKey == "" {
		return nil, errors.New("credential group key is required")
	}
	if secret == "" {
		return nil, errors.New("credential secret is required")
	}

	return &FileStore{
		path:         path,
		groupKey:     groupKey,
		secret:       secret,
		argonTime:    1,
		argonMemory:  64 * 1024, // 64 MiB
		argonThreads: 4,
		argonKeyLen:  32, // 256 bits
	}, nil
}

// Load implements [Store].
func (f *FileStore) Load(userID string) (models.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, _, err := f.read()
	if err != nil {
		return models.Credential{}, err
	}

	cred, ok := v[f.groupKey][userID]
	if !ok {
		return models.Credential{}, ErrCredentialNotFound
	}
	return cred, nil
}

// Store implements [Store].
func (f *FileStore) Store(cred models.Credential) error {
	if cred.UserID == "" {
		return errors.New("credential user id is required")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	v, salt, err := f.read()
	if err != nil {
		return err
	}

	if v[f.groupKey] == nil {
		v[f.groupKey] = make(map[string]models.Credential)
	}
	v[f.groupKey][cred.UserID] = cred

	return f.write(v, salt)
}

// Delete implements [Store].
func (f *FileStore) Delete(userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, salt, err := f.read()
	if err != nil {
		return err
	}

	if _, ok := v[f.groupKey][userID]; !ok {
		return nil
	}
	delete(v[f.groupKey], userID)

	return f.write(v, salt)
}

// read loads and decrypts the vault. A missing file yields an empty vault
// and no salt; the salt is generated on first write.
func (f *FileStore) read() (vault, []byte, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return vault{}, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read credential file: %w", err)
	}

	var envelope credentialFile
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrCredentialDecrypt, err)
	}

	salt, err := base64.StdEncoding.DecodeString(envelope.Salt)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrCredentialDecrypt, err)
	}
	blob, err := base64.StdEncoding.DecodeString(envelope.Blob)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrCredentialDecrypt, err)
	}

	plaintext, err := f.open(blob, salt)
	if err != nil {
		return nil, nil, err
	}

	v := vault{}
	if err := json.Unmarshal(plaintext, &v); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrCredentialDecrypt, err)
	}
	return v, salt, nil
}

// write encrypts and persists the vault. The file is written with 0600
// permissions; the parent directory is created if missing.
func (f *FileStore) write(v vault, salt []byte) error {
	if salt == nil {
		salt = make([]byte, 16)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return fmt.Errorf("generate credential salt: %w", err)
		}
	}

	plaintext, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode credential vault: %w", err)
	}

	blob, err := f.seal(plaintext, salt)
	if err != nil {
		return err
	}

	envelope, err := json.Marshal(credentialFile{
		Salt: base64.StdEncoding.EncodeToString(salt),
		Blob: base64.StdEncoding.EncodeToString(blob),
	})
	if err != nil {
		return fmt.Errorf("encode credential file: %w", err)
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create credential directory: %w", err)
		}
	}
	if err := os.WriteFile(f.path, envelope, 0o600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	return nil
}

// key derives the 256-bit sealing key from the app secret and salt using
// Argon2id. The key exists only in client memory.
func (f *FileStore) key(salt []byte) []byte {
	return argon2.IDKey(
		[]byte(f.secret),
		salt,
		f.argonTime,
		f.argonMemory,
		f.argonThreads,
		f.argonKeyLen,
	)
}

// seal encrypts plaintext with AES-256-GCM. A random 12-byte nonce is
// prepended to the ciphertext so open can locate it: blob = nonce ‖ ciphertext.
func (f *FileStore) seal(plaintext, salt []byte) ([]byte, error) {
	block, err := aes.NewCipher(f.key(salt))
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return append(nonce, gcm.Seal(nil, nonce, plaintext, nil)...), nil
}

// open decrypts a blob produced by seal. Fails with
// [ErrCredentialDecrypt] when the secret is wrong or the blob is corrupted
// (authentication-tag mismatch).
func (f *FileStore) open(blob, salt []byte) ([]byte, error) {
	block, err := aes.NewCipher(f.key(salt))
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(blob) < gcm.NonceSize() {
		return nil, fmt.Errorf("%w: blob shorter than nonce", ErrCredentialDecrypt)
	}
	nonce, ciphertext := blob[:gcm.NonceSize()], blob[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCredentialDecrypt, err)
	}
	return plaintext, nil
}
