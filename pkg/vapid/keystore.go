package vapid

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// KeyStore provides access to VAPID key material.
// Implementations must be safe for concurrent use.
type KeyStore interface {
	// Load loads the key pair from storage.
	// Returns an error if the key doesn't exist or cannot be parsed.
	Load() (*Key, error)

	// Save saves a key pair to storage.
	Save(key *Key) error

	// Exists returns true if a key exists in storage.
	Exists() bool

	// Path returns the storage location (for display purposes).
	Path() string
}

var (
	// ErrKeyNotFound indicates the key does not exist in storage.
	ErrKeyNotFound = errors.New("key not found")

	// ErrInvalidPermissions indicates the key file is readable by other
	// users. On Unix the file mode must carry no group or world bits; on
	// Windows the file must not be accessible to Everyone, Users, or
	// Authenticated Users.
	ErrInvalidPermissions = errors.New("insecure file permissions: file accessible to other users")
)

// KeyNotFoundError indicates the key does not exist at the specified path.
type KeyNotFoundError struct {
	Path string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("key not found at %s", e.Path)
}

// Is allows errors.Is to match against ErrKeyNotFound.
func (e *KeyNotFoundError) Is(target error) bool {
	return target == ErrKeyNotFound
}

// FileKeyStore stores the private key in a PEM file. It enforces
// owner-only permissions to protect key confidentiality.
type FileKeyStore struct {
	path string
}

// NewFileKeyStore creates a new file-based key store.
func NewFileKeyStore(path string) *FileKeyStore {
	return &FileKeyStore{path: path}
}

// Load loads the private key from the file.
//
// The content may be a SEC1 "EC PRIVATE KEY" PEM block or a bare base64
// DER blob; the "BEGIN EC" marker decides which parser runs. Returns
// KeyNotFoundError if the file doesn't exist and ErrInvalidPermissions
// if it is accessible to other users.
func (s *FileKeyStore) Load() (*Key, error) {
	_, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		return nil, &KeyNotFoundError{Path: s.path}
	}
	if err != nil {
		return nil, fmt.Errorf("stat key file: %w", err)
	}

	if err := checkFilePermissions(s.path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	if bytes.Contains(data, []byte("BEGIN EC")) {
		return ParsePrivateKeyPEM(data)
	}
	return ParsePrivateKeyDER(strings.TrimSpace(string(data)))
}

// Save saves the private key to the file with owner-only permissions.
// Creates parent directories if they don't exist.
func (s *FileKeyStore) Save(key *Key) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create key directory: %w", err)
	}

	data, err := key.PrivatePEM()
	if err != nil {
		return err
	}

	// 0600 on Unix, default on Windows; setFilePermissions tightens the
	// Windows ACL afterwards.
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	if err := setFilePermissions(s.path); err != nil {
		return fmt.Errorf("set key file permissions: %w", err)
	}

	return nil
}

// SavePublic writes the public key as a PKIX PEM file alongside the
// private key. The dashboard verification flow consumes this file, so it
// is world-readable.
func (s *FileKeyStore) SavePublic(path string, key *Key) error {
	data, err := key.PublicPEM()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write public key file: %w", err)
	}
	return nil
}

// Exists returns true if the key file exists.
func (s *FileKeyStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Path returns the file path.
func (s *FileKeyStore) Path() string {
	return s.path
}

// CheckFilePermissions verifies a file has owner-only access.
// Returns nil if permissions are correct, ErrInvalidPermissions otherwise.
func CheckFilePermissions(path string) error {
	return checkFilePermissions(path)
}

// DefaultKeyPath returns the private key path used when none is given:
// $VAPID_KEY if set, otherwise private_key.pem in the working directory.
func DefaultKeyPath() string {
	if env := os.Getenv("VAPID_KEY"); env != "" {
		return env
	}
	return "private_key.pem"
}

// IsPermissionError returns true if the error is due to invalid permissions.
func IsPermissionError(err error) bool {
	return errors.Is(err, ErrInvalidPermissions)
}

// IsNotFoundError returns true if the error is due to a missing key.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrKeyNotFound) || errors.Is(err, fs.ErrNotExist)
}

// Ensure interfaces are implemented
var _ KeyStore = (*FileKeyStore)(nil)
