// Package vaultstore persists VAPID key material in HashiCorp Vault.
//
// The private key is stored as a PEM string in a KV version 2 secret, so
// application servers sharing a Vault can sign push requests without
// distributing key files. The store satisfies the same Load/Save/Exists
// contract as the file-based store in package vapid, with an explicit
// context on every call that touches Vault.
//
// # Usage
//
// Open a store against the local Vault agent and load the signing key:
//
//	store, err := vaultstore.New(vaultstore.Config{})
//	if err != nil {
//	    return err
//	}
//	key, err := store.Load(ctx)
//
// Address and token fall back to the standard VAULT_ADDR and VAULT_TOKEN
// environment variables.
package vaultstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/vault/api"

	"github.com/web-push-libs/vapid/pkg/vapid"
)

// keyField is the KV data field holding the PEM private key.
const keyField = "private_key"

// Default secret location when Config leaves it unset.
const (
	DefaultMount = "secret"
	DefaultPath  = "vapid"
)

// Config holds configuration for the Vault key store.
type Config struct {
	// Address is the Vault server address. Empty falls back to VAULT_ADDR.
	Address string

	// Token is the authentication token. Empty falls back to VAULT_TOKEN.
	Token string

	// Mount is the KV v2 mount point. Empty means DefaultMount.
	Mount string

	// Path is the secret path under the mount. Empty means DefaultPath.
	Path string
}

// KeyStore stores a VAPID key pair in a Vault KV v2 secret.
type KeyStore struct {
	client *api.Client
	mount  string
	path   string
}

// New creates a Vault-backed key store.
func New(cfg Config) (*KeyStore, error) {
	vaultConfig := api.DefaultConfig()
	if cfg.Address != "" {
		vaultConfig.Address = cfg.Address
	}

	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if cfg.Token != "" {
		client.SetToken(cfg.Token)
	}

	return NewWithClient(client, cfg.Mount, cfg.Path), nil
}

// NewWithClient wraps an existing Vault API client. Empty mount and path
// fall back to the defaults.
func NewWithClient(client *api.Client, mount, path string) *KeyStore {
	if mount == "" {
		mount = DefaultMount
	}
	if path == "" {
		path = DefaultPath
	}
	return &KeyStore{client: client, mount: mount, path: path}
}

// Load reads the private key from Vault.
//
// Returns vapid.KeyNotFoundError if the secret or its private_key field
// is absent, and a key-format error if the stored PEM cannot be parsed.
func (s *KeyStore) Load(ctx context.Context) (*vapid.Key, error) {
	secret, err := s.client.KVv2(s.mount).Get(ctx, s.path)
	if err != nil {
		if errors.Is(err, api.ErrSecretNotFound) {
			return nil, &vapid.KeyNotFoundError{Path: s.Path()}
		}
		return nil, fmt.Errorf("read key from vault: %w", err)
	}

	pemData, ok := secret.Data[keyField].(string)
	if !ok || pemData == "" {
		return nil, &vapid.KeyNotFoundError{Path: s.Path()}
	}
	return vapid.ParsePrivateKeyPEM([]byte(pemData))
}

// Save writes the private key to Vault as a new secret version.
func (s *KeyStore) Save(ctx context.Context, key *vapid.Key) error {
	pemData, err := key.PrivatePEM()
	if err != nil {
		return err
	}

	_, err = s.client.KVv2(s.mount).Put(ctx, s.path, map[string]any{
		keyField: string(pemData),
	})
	if err != nil {
		return fmt.Errorf("write key to vault: %w", err)
	}
	return nil
}

// Exists reports whether a key is stored at the configured path.
func (s *KeyStore) Exists(ctx context.Context) bool {
	secret, err := s.client.KVv2(s.mount).Get(ctx, s.path)
	if err != nil || secret == nil {
		return false
	}
	_, ok := secret.Data[keyField].(string)
	return ok
}

// Path returns the secret location as mount/path, for display purposes.
func (s *KeyStore) Path() string {
	return s.mount + "/" + s.path
}
