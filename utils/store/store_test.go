package store_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"community-bot/model"
	"community-bot/utils/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T, dir string) *store.Store {
	t.Helper()
	backend, err := store.NewFileBackend(dir)
	require.NoError(t, err)
	s := store.New(backend, nil)
	require.NoError(t, s.Load())
	return s
}

func TestLoadEmptyDirectoryUsesDefaults(t *testing.T) {
	t.Parallel()
	s := newFileStore(t, t.TempDir())

	s.View(func(state *model.State) {
		assert.Empty(t, state.Warnings)
		assert.Empty(t, state.UserLevels)
		assert.EqualValues(t, model.DefaultXPPerMessage, state.Settings.XPPerMessage)
		assert.EqualValues(t, 60000, state.Settings.XPCooldown)
		assert.NotNil(t, state.Settings.TicketActivity)
	})
}

func TestUpdatePersistsOnlyNamedDocuments(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := newFileStore(t, dir)

	err := s.Update(func(state *model.State) error {
		state.CustomCommands["g1"] = map[string]string{"hello": "world"}
		state.Warnings["u1"] = []model.WarningRecord{{Reason: "spam", Moderator: "m1"}}
		return nil
	}, store.CustomCommands)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "customCommands.json"))
	assert.NoFileExists(t, filepath.Join(dir, "warnings.json"))

	reloaded := newFileStore(t, dir)
	reloaded.View(func(state *model.State) {
		assert.Equal(t, "world", state.CustomCommands["g1"]["hello"])
		assert.Empty(t, state.Warnings)
	})
}

func TestUpdateSkipSave(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := newFileStore(t, dir)

	err := s.Update(func(state *model.State) error {
		return store.ErrSkipSave
	}, store.Settings)
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "config.json"))
}

func TestLoadNormalizesMalformedLevels(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	raw := `{"g1":{"u1":{"xp":null,"level":null},"u2":{"xp":"250","level":2},"u3":{"level":1},"u4":{"xp":-5,"level":"x"}}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "userLevels.json"), []byte(raw), 0644))

	s := newFileStore(t, dir)
	s.View(func(state *model.State) {
		users := state.UserLevels["g1"]
		require.Len(t, users, 4)
		assert.EqualValues(t, 0, users["u1"].Experience)
		assert.EqualValues(t, 250, users["u2"].Experience)
		assert.EqualValues(t, 0, users["u3"].Experience)
		assert.EqualValues(t, 0, users["u4"].Experience)
		assert.EqualValues(t, 0, users["u4"].Level)
	})
}

func TestLoadDeduplicatesSettingsLists(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	raw := `{"transcriptChannels":["c1","c1","c2"],"staffRoles":["r1","r1"],"xpPerMessage":20,"levelUpChannelId":null}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(raw), 0644))

	s := newFileStore(t, dir)
	s.View(func(state *model.State) {
		assert.Equal(t, []string{"c1", "c2"}, state.Settings.TranscriptChannels)
		assert.Equal(t, []string{"r1"}, state.Settings.StaffRoles)
		assert.EqualValues(t, 20, state.Settings.XPPerMessage)
		assert.Empty(t, state.Settings.LevelUpChannelID)
	})
}

func TestCorruptDocumentIsMovedAside(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "warnings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	backend, err := store.NewFileBackend(dir)
	require.NoError(t, err)
	s := store.New(backend, nil)

	err = s.Load()
	require.Error(t, err)
	assert.NoFileExists(t, path)

	matches, err := filepath.Glob(path + ".corrupt-*")
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	s.View(func(state *model.State) {
		assert.Empty(t, state.Warnings)
	})
}

func TestPartiallyDecodedDocumentIsDiscarded(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "warnings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":[],"u":"x"}`), 0644))

	s := newFileStoreAllowErrors(t, dir)
	s.View(func(state *model.State) {
		assert.Empty(t, state.Warnings)
	})

	require.NoError(t, s.Flush())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func newFileStoreAllowErrors(t *testing.T, dir string) *store.Store {
	t.Helper()
	backend, err := store.NewFileBackend(dir)
	require.NoError(t, err)
	s := store.New(backend, nil)
	require.Error(t, s.Load())
	return s
}

type failingBackend struct {
	*store.FileBackend
	saves int
}

func (b *failingBackend) Save(store.Document, interface{}) error {
	b.saves++
	return errors.New("disk full")
}

func TestUpdateSurvivesSaveFailure(t *testing.T) {
	t.Parallel()
	files, err := store.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	backend := &failingBackend{FileBackend: files}
	s := store.New(backend, nil)
	require.NoError(t, s.Load())

	err = s.Update(func(state *model.State) error {
		state.Warnings["u1"] = append(state.Warnings["u1"], model.WarningRecord{Reason: "spam", Moderator: "m1"})
		return nil
	}, store.Warnings)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.saves)

	s.View(func(state *model.State) {
		require.Len(t, state.Warnings["u1"], 1)
		assert.Equal(t, "spam", state.Warnings["u1"][0].Reason)
	})
	assert.Error(t, s.Save(store.Warnings))
}

func TestSaveWritesNamedDocumentsOnly(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s := newFileStore(t, dir)

	require.NoError(t, s.Save(store.Settings))
	assert.FileExists(t, filepath.Join(dir, "config.json"))
	assert.NoFileExists(t, filepath.Join(dir, "warnings.json"))
	assert.NoFileExists(t, filepath.Join(dir, "userLevels.json"))
}

func TestSQLiteBackendKeepsDocuments(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "bot.db")

	backend, err := store.NewSQLiteBackend(path)
	require.NoError(t, err)
	s := store.New(backend, nil)
	require.NoError(t, s.Load())

	require.NoError(t, s.Update(func(state *model.State) error {
		state.Settings.StaffRoles = append(state.Settings.StaffRoles, "r1")
		state.UserLevels["g1"] = map[string]*model.UserLevelRecord{"u1": {Experience: 120, Level: 1}}
		return nil
	}, store.Settings, store.UserLevels))
	require.NoError(t, s.Update(func(state *model.State) error {
		state.UserLevels["g1"]["u1"].Experience = 300
		return nil
	}, store.UserLevels))
	require.NoError(t, s.Close())

	backend, err = store.NewSQLiteBackend(path)
	require.NoError(t, err)
	reopened := store.New(backend, nil)
	require.NoError(t, reopened.Load())
	defer reopened.Close()

	reopened.View(func(state *model.State) {
		assert.Equal(t, []string{"r1"}, state.Settings.StaffRoles)
		assert.EqualValues(t, 300, state.UserLevels["g1"]["u1"].Experience)
	})
	assert.Positive(t, reopened.Size())
}
