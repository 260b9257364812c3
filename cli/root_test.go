package cli

import (
	"path/filepath"
	"testing"

	"community-bot/utils/store"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"run"},
		{"scan"},
		{"weekly", "payout"},
		{"weekly", "reset"},
	} {
		cmd, rest, err := RootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Empty(t, rest)
		assert.Equal(t, path[len(path)-1], cmd.Name())
		assert.NotNil(t, cmd.RunE, path)
	}

	payout, _, err := RootCmd.Find([]string{"weekly", "payout"})
	require.NoError(t, err)
	assert.NotNil(t, payout.Flags().Lookup("reset"))
	assert.NotNil(t, RootCmd.PersistentFlags().Lookup("log-level"))
}

func TestSetupRequiresToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "  ")

	_, err := setup()
	assert.Error(t, err)
}

func TestOneShotRefusesWhileBotRuns(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("DATA_DIR", dir)

	lock, err := store.AcquireLock(dir)
	require.NoError(t, err)
	defer lock.Release()

	err = runWeeklyReset(&cobra.Command{}, nil)
	assert.ErrorIs(t, err, store.ErrBotRunning)
	assert.NoFileExists(t, filepath.Join(dir, "config.json"))
}
