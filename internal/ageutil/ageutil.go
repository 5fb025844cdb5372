// Package ageutil wraps filippo.io/age for the secrets a plan decrypts into
// place (SSH config, tokens, credential files).
package ageutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
)

// Environment variables consulted when the plan names no key.
const (
	EnvIdentity   = "PROVISION_AGE_IDENTITY"
	EnvPassphrase = "PROVISION_AGE_PASSPHRASE"
)

// ErrNoKey is returned by Resolve when neither the plan nor the environment
// supplies a key.
var ErrNoKey = errors.New("no age key configured")

// Key holds the credential needed to encrypt and decrypt age files.
// Exactly one of IdentityFile or Passphrase should be non-empty.
type Key struct {
	IdentityFile string // path to an age identity file (secret key)
	Passphrase   string // scrypt passphrase (used when IdentityFile is empty)
}

// Resolve picks a key from explicit values first, then the environment.
func Resolve(identity, passphrase string, getenv func(string) string) (*Key, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if identity == "" && passphrase == "" {
		identity, passphrase = getenv(EnvIdentity), getenv(EnvPassphrase)
	}
	switch {
	case identity != "":
		return &Key{IdentityFile: identity}, nil
	case passphrase != "":
		return &Key{Passphrase: passphrase}, nil
	default:
		return nil, ErrNoKey
	}
}

// Encrypt streams plaintext from r to w as an age file.
func (k *Key) Encrypt(w io.Writer, r io.Reader) error {
	recipients, err := k.recipients()
	if err != nil {
		return err
	}
	enc, err := age.Encrypt(w, recipients...)
	if err != nil {
		return fmt.Errorf("age encrypt: %w", err)
	}
	if _, err := io.Copy(enc, r); err != nil {
		return fmt.Errorf("write ciphertext: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalise ciphertext: %w", err)
	}
	return nil
}

// Decrypt streams the plaintext of the age file in r to w.
func (k *Key) Decrypt(w io.Writer, r io.Reader) error {
	identities, err := k.identities()
	if err != nil {
		return err
	}
	dec, err := age.Decrypt(r, identities...)
	if err != nil {
		return fmt.Errorf("age decrypt: %w", err)
	}
	if _, err := io.Copy(w, dec); err != nil {
		return fmt.Errorf("read plaintext: %w", err)
	}
	return nil
}

// EncryptFile encrypts src into dst (mode 0600).
func (k *Key) EncryptFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("read plaintext: %w", err)
	}
	defer in.Close()
	var buf bytes.Buffer
	if err := k.Encrypt(&buf, in); err != nil {
		return err
	}
	return writeFile(dst, buf.Bytes(), 0o600)
}

// DecryptFile decrypts src into dst with the given mode, creating parent
// directories. Nothing is written when decryption fails.
func (k *Key) DecryptFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("read ciphertext: %w", err)
	}
	defer in.Close()
	var buf bytes.Buffer
	if err := k.Decrypt(&buf, in); err != nil {
		return err
	}
	return writeFile(dst, buf.Bytes(), mode)
}

func writeFile(path string, data []byte, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create parent of %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return err
	}
	return os.Chmod(path, mode)
}

func (k *Key) recipients() ([]age.Recipient, error) {
	if k.Passphrase != "" {
		r, err := age.NewScryptRecipient(k.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("create scrypt recipient: %w", err)
		}
		return []age.Recipient{r}, nil
	}

	identities, err := k.parseIdentityFile()
	if err != nil {
		return nil, err
	}
	var recipients []age.Recipient
	for _, id := range identities {
		if x, ok := id.(*age.X25519Identity); ok {
			recipients = append(recipients, x.Recipient())
		}
	}
	if len(recipients) == 0 {
		return nil, fmt.Errorf("no X25519 identities found in %s", k.IdentityFile)
	}
	return recipients, nil
}

func (k *Key) identities() ([]age.Identity, error) {
	if k.Passphrase != "" {
		id, err := age.NewScryptIdentity(k.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("create scrypt identity: %w", err)
		}
		return []age.Identity{id}, nil
	}
	return k.parseIdentityFile()
}

func (k *Key) parseIdentityFile() ([]age.Identity, error) {
	if k.IdentityFile == "" {
		return nil, fmt.Errorf("no age identity file configured; set age.identity in the plan or %s", EnvIdentity)
	}
	f, err := os.Open(k.IdentityFile)
	if err != nil {
		return nil, fmt.Errorf("open identity file: %w", err)
	}
	defer f.Close()

	identities, err := age.ParseIdentities(f)
	if err != nil {
		return nil, fmt.Errorf("parse identities: %w", err)
	}
	return identities, nil
}

// EncryptedPath appends ".age" unless path already has it.
func EncryptedPath(path string) string {
	if strings.HasSuffix(path, ".age") {
		return path
	}
	return path + ".age"
}

// PlainPath strips a trailing ".age".
func PlainPath(path string) string {
	return strings.TrimSuffix(path, ".age")
}
