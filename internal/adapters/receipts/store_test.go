package receipts_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/selfie/internal/adapters/receipts"
	"go.trai.ch/selfie/internal/core/domain"
	"go.trai.ch/selfie/internal/core/ports"
)

var _ ports.ReceiptStore = (*receipts.Store)(nil)

func receipt(name string) domain.Receipt {
	return domain.Receipt{
		Package:     name,
		Version:     "1.0.0",
		Environment: "linux",
		InstalledAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Duration:    1500 * time.Millisecond,
	}
}

func TestStore_PutAndGet(t *testing.T) {
	store, err := receipts.NewStore(filepath.Join(t.TempDir(), receipts.FileName))
	require.NoError(t, err)

	require.NoError(t, store.Put(receipt("git"), receipt("curl")))

	got, err := store.Get("git")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, receipt("git"), *got)

	missing, err := store.Get("ripgrep")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", receipts.FileName)

	store1, err := receipts.NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store1.Put(receipt("git")))

	updated := receipt("git")
	updated.Version = "2.0.0"
	require.NoError(t, store1.Put(updated))

	store2, err := receipts.NewStore(path)
	require.NoError(t, err)
	got, err := store2.Get("git")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2.0.0", got.Version, "later receipts replace earlier ones")
	assert.NoFileExists(t, path+".tmp")
}

func TestStore_PutNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), receipts.FileName)
	store, err := receipts.NewStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Put())
	assert.NoFileExists(t, path)
}

func TestNewStore_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), receipts.FileName)
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	store, err := receipts.NewStore(path)
	require.NoError(t, err)
	got, err := store.Get("git")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNewStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), receipts.FileName)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := receipts.NewStore(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal receipts")
}

func TestNewStore_Unreadable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "state")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o600))

	store, err := receipts.NewStore(filepath.Join(blocker, receipts.FileName))
	require.Error(t, err, "reading through a file fails")
	assert.Nil(t, store)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/cache")
	t.Setenv("HOME", "/tmp/home")

	path, err := receipts.DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, receipts.FileName, filepath.Base(path))
	assert.Equal(t, "selfie", filepath.Base(filepath.Dir(path)))
}
