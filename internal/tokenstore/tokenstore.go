// Package tokenstore persists the library station's identity on disk,
// encrypted with AES-256-GCM. Each installation gets a stable station ID so
// records created at the front desk can be traced to a machine, and the last
// operator login can survive a restart.
package tokenstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/TJselevani/LibraryMGMT-sub000/internal/crypto"
)

const (
	// EnvEncryptionKey overrides the on-disk encryption key.
	EnvEncryptionKey = "STATION_ENCRYPTION_KEY"

	// DefaultKeyFileName is used when no key file path is configured.
	DefaultKeyFileName = ".library-station-key"
)

var ErrNoIdentity = errors.New("no station identity stored")

// Identity is the decrypted station record.
type Identity struct {
	StationID    string     `json:"station_id"`
	Hostname     string     `json:"hostname,omitempty"`
	LastOperator string     `json:"last_operator,omitempty"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Store reads and writes the encrypted identity file.
type Store struct {
	path      string
	encryptor *crypto.Encryptor
}

// Config holds the token store's file locations. EncryptionKey, when empty,
// is resolved from the environment or a key file (generated on first use).
type Config struct {
	Path          string
	EncryptionKey string
	KeyFilePath   string
}

// New creates a station identity store.
func New(cfg Config) (*Store, error) {
	key, err := resolveEncryptionKey(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve encryption key: %w", err)
	}

	encryptor, err := crypto.NewEncryptorFromBase64(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create encryptor: %w", err)
	}

	return &Store{path: cfg.Path, encryptor: encryptor}, nil
}

func resolveEncryptionKey(cfg Config) (string, error) {
	if cfg.EncryptionKey != "" {
		return cfg.EncryptionKey, nil
	}
	if envKey := os.Getenv(EnvEncryptionKey); envKey != "" {
		return envKey, nil
	}

	keyFilePath := cfg.KeyFilePath
	if keyFilePath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		keyFilePath = filepath.Join(homeDir, DefaultKeyFileName)
	}

	if data, err := os.ReadFile(keyFilePath); err == nil {
		return string(data), nil
	}

	newKey, err := crypto.GenerateKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate encryption key: %w", err)
	}
	if err := os.WriteFile(keyFilePath, []byte(newKey), 0600); err != nil {
		return "", fmt.Errorf("failed to save encryption key to %s: %w", keyFilePath, err)
	}
	return newKey, nil
}

// Load reads and decrypts the stored identity. Returns ErrNoIdentity when
// the file does not exist yet.
func (s *Store) Load() (*Identity, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoIdentity
		}
		return nil, fmt.Errorf("failed to read identity file: %w", err)
	}

	plaintext, err := s.encryptor.Decrypt(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt identity: %w", err)
	}

	var identity Identity
	if err := json.Unmarshal([]byte(plaintext), &identity); err != nil {
		return nil, fmt.Errorf("failed to parse identity: %w", err)
	}
	return &identity, nil
}

// Save encrypts and writes the identity with restricted permissions.
func (s *Store) Save(identity *Identity) error {
	plaintext, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}

	ciphertext, err := s.encryptor.Encrypt(string(plaintext))
	if err != nil {
		return fmt.Errorf("failed to encrypt identity: %w", err)
	}

	if err := os.WriteFile(s.path, []byte(ciphertext), 0600); err != nil {
		return fmt.Errorf("failed to write identity file: %w", err)
	}
	return nil
}

// LoadOrCreate returns the stored identity, minting one on first run.
func (s *Store) LoadOrCreate() (*Identity, error) {
	identity, err := s.Load()
	if err == nil {
		return identity, nil
	}
	if !errors.Is(err, ErrNoIdentity) {
		return nil, err
	}

	hostname, _ := os.Hostname()
	identity = &Identity{
		StationID: uuid.NewString(),
		Hostname:  hostname,
		CreatedAt: time.Now(),
	}
	if err := s.Save(identity); err != nil {
		return nil, err
	}
	return identity, nil
}

// RecordLogin stores the most recent operator login on the identity.
func (s *Store) RecordLogin(username string) error {
	identity, err := s.LoadOrCreate()
	if err != nil {
		return err
	}
	now := time.Now()
	identity.LastOperator = username
	identity.LastLoginAt = &now
	return s.Save(identity)
}

// Clear removes the identity file. A new station ID is minted on next use.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove identity file: %w", err)
	}
	return nil
}
