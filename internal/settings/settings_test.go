package settings

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestKeyringStoreRoundTrip(t *testing.T) {
	keyring.MockInit()
	store := NewKeyringStore()
	ctx := context.Background()

	s, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Settings{}, s)
	assert.False(t, s.Complete())

	require.NoError(t, store.Save(ctx, Settings{APIKey: "K", APIURL: "U"}))

	s, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Settings{APIKey: "K", APIURL: "U"}, s)
	assert.True(t, s.Complete())
}

func TestKeyringStoreSaveEmptyClearsEntry(t *testing.T) {
	keyring.MockInit()
	store := NewKeyringStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, Settings{APIKey: "K", APIURL: "U"}))
	require.NoError(t, store.Save(ctx, Settings{APIKey: "", APIURL: "U"}))

	s, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", s.APIKey)
	assert.Equal(t, "U", s.APIURL)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	store := NewFileStore(path)
	ctx := context.Background()

	s, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Settings{}, s)

	require.NoError(t, store.Save(ctx, Settings{APIKey: "K", APIURL: "U"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "apiKey: K")
	assert.Contains(t, string(data), "apiUrl: U")

	s, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Settings{APIKey: "K", APIURL: "U"}, s)
}

func TestFileStoreInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("apiKey: [unterminated"), 0o600))

	_, err := NewFileStore(path).Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestEnvStoreOverridesStoredValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	inner := NewFileStore(path)
	require.NoError(t, inner.Save(context.Background(), Settings{APIKey: "stored-key", APIURL: "https://stored"}))

	t.Setenv(EnvAPIKey, "env-key")
	t.Setenv(EnvAPIURL, "")

	s, err := EnvStore{Store: inner}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "env-key", s.APIKey)
	assert.Equal(t, "https://stored", s.APIURL)
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	_, err := Open("s3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported settings store")

	store, err := Open("")
	require.NoError(t, err)
	assert.IsType(t, EnvStore{}, store)
}
