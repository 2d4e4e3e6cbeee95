package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/omega-numworks/omegabot/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLevelDBWithInvalidPath(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "example")
	require.NoError(t, err)
	defer os.Remove(tmpfile.Name())

	_, err = store.NewLevelDB("test", tmpfile.Name())
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "failed to open")
	}
}

func TestNewLevelDB(t *testing.T) {
	dir := t.TempDir()

	ldb, err := store.NewLevelDB("moderation", dir)
	require.NoError(t, err)
	defer ldb.Close()

	assert.Equal(t, "moderation", ldb.Name)
	assert.DirExists(t, filepath.Join(dir, "moderation"))
}

func TestGetAfterCloseShouldResultInError(t *testing.T) {
	ldb, err := store.NewLevelDB("test", t.TempDir())
	require.NoError(t, err)

	ldb.Close()
	_, err = ldb.GetString("testKey")

	assert.Error(t, err)
}

func TestPutGetDeleteScan(t *testing.T) {
	var ss store.StringStorer

	ss, err := store.NewLevelDB("test", t.TempDir())
	require.NoError(t, err)
	defer ss.Close()

	require.NoError(t, ss.PutString("c123", "^#[0-9]+$"))
	require.NoError(t, ss.PutString("c456", ".*"))

	v, err := ss.GetString("c123")
	require.NoError(t, err)
	assert.Equal(t, "^#[0-9]+$", v)

	require.NoError(t, ss.DeleteString("c456"))

	_, err = ss.GetString("c456")
	assert.Error(t, err)

	m, err := ss.Scan()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"c123": "^#[0-9]+$"}, m)
}

func TestDataSurvivesReopening(t *testing.T) {
	dir := t.TempDir()

	ldb, err := store.NewLevelDB("test", dir)
	require.NoError(t, err)
	require.NoError(t, ldb.PutString("c123", "hello"))
	require.NoError(t, ldb.Close())

	ldb, err = store.NewLevelDB("test", dir)
	require.NoError(t, err)
	defer ldb.Close()

	v, err := ldb.GetString("c123")
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
}
