package maintenance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vladpavlovski/phm-sub006/internal/prefs"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type countingPinger struct {
	calls atomic.Int32
	err   error
}

func (p *countingPinger) Ping(context.Context) error {
	p.calls.Add(1)
	return p.err
}

type failingPruner struct{}

func (failingPruner) Prune(context.Context, time.Time) (int64, error) {
	return 0, errors.New("disk full")
}

func TestPrunePrefsRemovesStaleRows(t *testing.T) {
	ctx := context.Background()
	store, err := prefs.OpenSQLite(ctx, filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set(ctx, "c1", "HOCKEY_GAME_PLAY_PERIOD", "2"))

	assert.Equal(t, int64(0), PrunePrefs(ctx, store, time.Hour, time.Now(), discard()))
	assert.Equal(t, int64(1), PrunePrefs(ctx, store, time.Hour, time.Now().Add(2*time.Hour), discard()))

	_, ok, err := store.Get(ctx, "c1", "HOCKEY_GAME_PLAY_PERIOD")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPrunePrefsFailureIsLogged(t *testing.T) {
	assert.Equal(t, int64(0), PrunePrefs(context.Background(), failingPruner{}, time.Hour, time.Now(), discard()))
}

func TestCheckGraph(t *testing.T) {
	ctx := context.Background()
	assert.True(t, CheckGraph(ctx, &countingPinger{}, discard()))
	assert.False(t, CheckGraph(ctx, &countingPinger{err: errors.New("refused")}, discard()))
}

func TestStartRunsTasksAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pinger := &countingPinger{}

	stopped := make(chan struct{})
	go func() {
		Start(ctx, failingPruner{}, pinger, Config{
			PruneInterval:  5 * time.Millisecond,
			Retention:      time.Hour,
			HealthInterval: 5 * time.Millisecond,
		}, discard())
		close(stopped)
	}()

	require.Eventually(t, func() bool { return pinger.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestStartWithNothingConfigured(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	Start(ctx, nil, nil, Config{}, discard())
}
