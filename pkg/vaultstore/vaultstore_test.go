package vaultstore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web-push-libs/vapid/pkg/vapid"
)

// Requires a running Vault with a KV v2 mount at "secret":
//
//	vault server -dev
//	export VAULT_ADDR=http://127.0.0.1:8200 VAULT_TOKEN=<dev root token>
func testStore(t *testing.T) *KeyStore {
	t.Helper()
	if os.Getenv("VAULT_ADDR") == "" {
		t.Skip("Skipping vault integration test (VAULT_ADDR not set)")
	}

	store, err := New(Config{
		Path: fmt.Sprintf("vapid-test-%d", time.Now().UnixNano()),
	})
	require.NoError(t, err, "failed to create vault store")
	return store
}

func TestVaultStoreSaveLoad(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	assert.False(t, store.Exists(ctx), "store should be empty before Save")

	key, err := vapid.GenerateKey()
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, key), "Save should succeed")

	assert.True(t, store.Exists(ctx), "store should report the saved key")

	loaded, err := store.Load(ctx)
	require.NoError(t, err, "Load should succeed")
	assert.Equal(t, key.PublicRawString(), loaded.PublicRawString(),
		"loaded key should derive the same public point")
}

func TestVaultStoreOverwrite(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	first, err := vapid.GenerateKey()
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, first))

	second, err := vapid.GenerateKey()
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, second), "Save should version over the old key")

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.PublicRawString(), loaded.PublicRawString(),
		"Load should return the latest key version")
}

func TestVaultStoreLoadMissing(t *testing.T) {
	store := testStore(t)

	_, err := store.Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, vapid.ErrKeyNotFound, "missing secret should map to the not-found error")
	assert.True(t, vapid.IsNotFoundError(err))
}

func TestVaultStorePath(t *testing.T) {
	store := NewWithClient(nil, "", "")
	assert.Equal(t, "secret/vapid", store.Path())

	store = NewWithClient(nil, "kv", "push/signing-key")
	assert.Equal(t, "kv/push/signing-key", store.Path())
}
