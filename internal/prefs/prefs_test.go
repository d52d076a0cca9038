package prefs

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladpavlovski/phm-sub006/internal/config"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteGetSet(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, ok, err := s.Get(ctx, "c1", config.GamePlayPeriodKey)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "c1", config.GamePlayPeriodKey, "2"))
	require.NoError(t, s.Set(ctx, "c1", config.GamePlayPeriodKey, "OT"))
	require.NoError(t, s.Set(ctx, "c2", config.GamePlayPeriodKey, "1"))

	v, ok, err := s.Get(ctx, "c1", config.GamePlayPeriodKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "OT", v)

	v, _, err = s.Get(ctx, "c2", config.GamePlayPeriodKey)
	require.NoError(t, err)
	assert.Equal(t, "1", v, "clients are isolated")
}

func TestSQLiteSetRejectsEmptyKeys(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.Set(context.Background(), "", "k", "v"))
	assert.Error(t, s.Set(context.Background(), "c1", "", "v"))
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "prefs.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "c1", config.GamePlayTimeKey, "12:30"))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	v, ok, err := s.Get(ctx, "c1", config.GamePlayTimeKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "12:30", v)
}

func TestSQLitePrune(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	s.now = func() time.Time { return base }
	require.NoError(t, s.Set(ctx, "old", "k", "v"))
	s.now = func() time.Time { return base.Add(48 * time.Hour) }
	require.NoError(t, s.Set(ctx, "new", "k", "v"))

	n, err := s.Prune(ctx, base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok, err := s.Get(ctx, "old", "k")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = s.Get(ctx, "new", "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOpenSelectsSQLite(t *testing.T) {
	cfg := &config.Config{PrefsSQLitePath: filepath.Join(t.TempDir(), "p.db")}
	s, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &SQLiteStore{}, s)
	assert.NoError(t, s.Ping(context.Background()))
}
