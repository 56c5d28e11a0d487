package vapid

import (
	"crypto/x509"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileKeyStoreSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "private_key.pem")
	store := NewFileKeyStore(path)

	assert.False(t, store.Exists(), "store should be empty before Save")
	assert.Equal(t, path, store.Path())

	key, err := GenerateKey()
	require.NoError(t, err, "GenerateKey should succeed")
	require.NoError(t, store.Save(key), "Save should succeed")

	assert.True(t, store.Exists(), "store should report the saved key")

	loaded, err := store.Load()
	require.NoError(t, err, "Load should succeed")
	assert.Equal(t, key.PublicRawString(), loaded.PublicRawString(),
		"loaded key should derive the same public point")
}

func TestFileKeyStoreSaveCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "private_key.pem")
	store := NewFileKeyStore(path)

	key, err := GenerateKey()
	require.NoError(t, err)
	require.NoError(t, store.Save(key), "Save should create parent directories")

	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Dir(path))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0700), info.Mode().Perm(), "key directory should be owner-only")
	}
}

func TestFileKeyStoreSavedMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX mode bits are not meaningful on Windows")
	}

	path := filepath.Join(t.TempDir(), "private_key.pem")
	store := NewFileKeyStore(path)

	key, err := GenerateKey()
	require.NoError(t, err)
	require.NoError(t, store.Save(key))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "key file should be owner-only")
	assert.NoError(t, CheckFilePermissions(path))
}

func TestFileKeyStoreLoadRejectsLooseMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX mode bits are not meaningful on Windows")
	}

	path := filepath.Join(t.TempDir(), "private_key.pem")
	store := NewFileKeyStore(path)

	key, err := GenerateKey()
	require.NoError(t, err)
	require.NoError(t, store.Save(key))
	require.NoError(t, os.Chmod(path, 0644))

	_, err = store.Load()
	require.Error(t, err, "Load should reject a group-readable key file")
	assert.True(t, IsPermissionError(err), "error should match ErrInvalidPermissions")
	assert.ErrorIs(t, err, ErrInvalidPermissions)
}

func TestFileKeyStoreLoadReadOnlyKey(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX mode bits are not meaningful on Windows")
	}

	path := filepath.Join(t.TempDir(), "private_key.pem")
	store := NewFileKeyStore(path)

	key, err := GenerateKey()
	require.NoError(t, err)
	require.NoError(t, store.Save(key))

	// Keys mounted from secret volumes are typically owner read-only.
	require.NoError(t, os.Chmod(path, 0400))

	_, err = store.Load()
	assert.NoError(t, err, "Load should accept an owner read-only key file")
}

func TestFileKeyStoreLoadMissing(t *testing.T) {
	store := NewFileKeyStore(filepath.Join(t.TempDir(), "absent.pem"))

	_, err := store.Load()
	require.Error(t, err)

	var notFound *KeyNotFoundError
	require.True(t, errors.As(err, &notFound), "error should be KeyNotFoundError")
	assert.Equal(t, store.Path(), notFound.Path)
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.True(t, IsNotFoundError(err))
	assert.False(t, IsPermissionError(err))
}

func TestFileKeyStoreLoadBase64DER(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	// A bare base64 DER blob, the storage format of older deployments.
	der, err := x509.MarshalECPrivateKey(key.Private())
	require.NoError(t, err)
	encoded := base64.RawURLEncoding.EncodeToString(der)

	path := filepath.Join(t.TempDir(), "key.der.b64")
	require.NoError(t, os.WriteFile(path, []byte(encoded+"\n"), 0600))

	got, err := NewFileKeyStore(path).Load()
	require.NoError(t, err, "Load should sniff base64 DER content")
	assert.Equal(t, key.PublicRawString(), got.PublicRawString())
}

func TestFileKeyStoreLoadGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.pem")
	require.NoError(t, os.WriteFile(path, []byte("not a key in any format"), 0600))

	_, err := NewFileKeyStore(path).Load()
	require.Error(t, err, "Load should reject unparseable content")
	assert.True(t, IsKeyFormat(err), "error should carry the key-format code")
}

func TestFileKeyStoreSavePublic(t *testing.T) {
	dir := t.TempDir()
	store := NewFileKeyStore(filepath.Join(dir, "private_key.pem"))

	key, err := GenerateKey()
	require.NoError(t, err)

	pubPath := filepath.Join(dir, "public_key.pem")
	require.NoError(t, store.SavePublic(pubPath, key))

	data, err := os.ReadFile(pubPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "BEGIN PUBLIC KEY")

	if runtime.GOOS != "windows" {
		info, err := os.Stat(pubPath)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0644), info.Mode().Perm(), "public key should be world-readable")
	}
}

func TestDefaultKeyPath(t *testing.T) {
	t.Setenv("VAPID_KEY", "")
	assert.Equal(t, "private_key.pem", DefaultKeyPath())

	t.Setenv("VAPID_KEY", "/etc/vapid/key.pem")
	assert.Equal(t, "/etc/vapid/key.pem", DefaultKeyPath())
}
