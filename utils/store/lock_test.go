package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"community-bot/utils/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstanceLock(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	require.NoError(t, store.CheckUnlocked(dir))

	lock, err := store.AcquireLock(dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, store.LockFileName))

	assert.ErrorIs(t, store.CheckUnlocked(dir), store.ErrBotRunning)
	_, err = store.AcquireLock(dir)
	assert.ErrorIs(t, err, store.ErrBotRunning)

	require.NoError(t, lock.Release())
	assert.NoFileExists(t, filepath.Join(dir, store.LockFileName))
	require.NoError(t, store.CheckUnlocked(dir))
}

func TestStaleLockIsReplaced(t *testing.T) {
	t.Parallel()
	for name, content := range map[string]string{
		"dead pid": "2147483646",
		"garbage":  "not a pid",
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, store.LockFileName), []byte(content), 0644))

			require.NoError(t, store.CheckUnlocked(dir))
			lock, err := store.AcquireLock(dir)
			require.NoError(t, err)
			require.NoError(t, lock.Release())
		})
	}
}
