package customcmd_test

import (
	"testing"

	"community-bot/customcmd"
	"community-bot/utils/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSet(t *testing.T) (*customcmd.Set, store.Backend) {
	t.Helper()
	backend, err := store.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	st := store.New(backend, nil)
	require.NoError(t, st.Load())
	return customcmd.New(st, "level", "ping"), backend
}

func TestAddLookupRemove(t *testing.T) {
	t.Parallel()
	set, backend := newSet(t)

	require.NoError(t, set.Add("g1", "Rules", "Be nice."))
	require.NoError(t, set.Add("g1", "faq", "See #faq"))
	require.NoError(t, set.Add("g2", "rules", "Other guild"))

	resp, ok := set.Lookup("g1", "RULES")
	require.True(t, ok)
	assert.Equal(t, "Be nice.", resp)
	assert.Equal(t, []string{"faq", "rules"}, set.List("g1"))

	reloaded := store.New(backend, nil)
	require.NoError(t, reloaded.Load())
	resp, ok = customcmd.New(reloaded).Lookup("g2", "rules")
	require.True(t, ok)
	assert.Equal(t, "Other guild", resp)

	require.NoError(t, set.Remove("g1", "rules"))
	_, ok = set.Lookup("g1", "rules")
	assert.False(t, ok)
	require.ErrorIs(t, set.Remove("g1", "rules"), customcmd.ErrNotFound)
}

func TestAddValidation(t *testing.T) {
	t.Parallel()
	set, _ := newSet(t)

	require.ErrorIs(t, set.Add("g1", " ", "x"), customcmd.ErrEmptyTrigger)
	require.ErrorIs(t, set.Add("g1", "hi", " "), customcmd.ErrEmptyResponse)
	require.ErrorIs(t, set.Add("g1", "Ping", "pong"), customcmd.ErrReserved)
	assert.Empty(t, set.List("g1"))
}
