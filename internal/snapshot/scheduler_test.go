package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humbrol2/spacemolt-botrunner-sub000/internal/galaxy"
	"github.com/humbrol2/spacemolt-botrunner-sub000/internal/model"
)

func testScheduler(t *testing.T, cfg Config) (*Scheduler, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "galaxy.json")
	return NewScheduler(path, cfg, zerolog.Nop()), path
}

func TestLoad_MissingFileStartsEmpty(t *testing.T) {
	s, _ := testScheduler(t, Config{})

	g := s.Load()
	require.NotNil(t, g)
	assert.Equal(t, model.SnapshotVersion, g.Version)
	assert.NotEmpty(t, g.FleetID)
	assert.Empty(t, g.Systems)
}

func TestLoad_CorruptFileStartsEmpty(t *testing.T) {
	s, path := testScheduler(t, Config{})
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	g := s.Load()
	require.NotNil(t, g)
	assert.Empty(t, g.Systems)
}

func TestFlush_RoundTripsStoreState(t *testing.T) {
	sched, path := testScheduler(t, Config{Debounce: time.Hour, Pretty: true})
	store := galaxy.New(sched.Load(), galaxy.Options{Saver: sched, Logger: zerolog.Nop()})
	sched.Bind(store.Snapshot)

	store.RecordSystem(map[string]any{
		"id": "sol", "name": "Sol",
		"pois": []any{map[string]any{"id": "hub", "has_base": true}},
	})
	store.RecordMiningYield("sol", "hub", "iron", "Iron Ore", 7)
	store.RecordMarket("sol", "hub", []any{
		map[string]any{"item_id": "iron", "sell_price": 10.0, "quantity": 3.0},
	})

	require.True(t, sched.Dirty())
	require.NoError(t, sched.Flush())
	assert.False(t, sched.Dirty())

	// Reload through a fresh scheduler and compare observable state.
	reloaded := galaxy.New(NewScheduler(path, Config{}, zerolog.Nop()).Load(), galaxy.Options{Logger: zerolog.Nop()})
	sys, err := reloaded.GetSystem("sol")
	require.NoError(t, err)
	assert.Equal(t, "Sol", sys.Name)
	require.Len(t, sys.POIs["hub"].Ores, 1)
	assert.Equal(t, 7.0, sys.POIs["hub"].Ores[0].TotalMined)
	require.Len(t, sys.POIs["hub"].Market, 1)
	assert.Equal(t, 10.0, *sys.POIs["hub"].Market[0].BestSell)
}

func TestFlush_NoopWhenClean(t *testing.T) {
	sched, path := testScheduler(t, Config{})
	sched.Bind(func() *model.Galaxy { return model.NewGalaxy() })

	require.NoError(t, sched.Flush())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "clean flush must not touch disk")
}

func TestFlush_CancelsPendingTimer(t *testing.T) {
	sched, _ := testScheduler(t, Config{Debounce: time.Hour})
	sched.Bind(func() *model.Galaxy { return model.NewGalaxy() })

	sched.MarkDirty()
	require.NoError(t, sched.Flush())

	sched.mu.Lock()
	defer sched.mu.Unlock()
	assert.Nil(t, sched.timer)
	assert.False(t, sched.dirty)
}

func TestFlush_WaitsForInFlightDebouncedWrite(t *testing.T) {
	sched, path := testScheduler(t, Config{Debounce: 10 * time.Millisecond})
	serializing := make(chan struct{})
	sched.Bind(func() *model.Galaxy {
		close(serializing)
		time.Sleep(200 * time.Millisecond)
		return model.NewGalaxy()
	})

	sched.MarkDirty()
	// Wait until the timer has fired and the write is in flight, then race
	// a flush against it. Flush must block until that write reaches disk.
	<-serializing
	require.NoError(t, sched.Flush())

	_, err := os.Stat(path)
	assert.NoError(t, err, "flush returned before the pending write reached disk")
}

func TestDebounce_CoalescesBurstIntoOneWrite(t *testing.T) {
	sched, path := testScheduler(t, Config{Debounce: 30 * time.Millisecond})
	writes := 0
	sched.Bind(func() *model.Galaxy {
		writes++
		return model.NewGalaxy()
	})

	sched.MarkDirty()
	sched.MarkDirty()
	sched.MarkDirty()

	require.Eventually(t, func() bool { return !sched.Dirty() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, writes)
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestWrite_StampsLastSavedAndStaysParseable(t *testing.T) {
	sched, path := testScheduler(t, Config{Pretty: true})
	g := model.NewGalaxy()
	g.FleetID = "fleet-1"
	sched.Bind(func() *model.Galaxy { return g.Clone() })

	sched.MarkDirty()
	require.NoError(t, sched.Flush())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var out model.Galaxy
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "fleet-1", out.FleetID)
	assert.False(t, out.LastSaved.IsZero())
}

func TestWriteFailure_RetainsDirtyFlag(t *testing.T) {
	// Point the snapshot inside a path whose parent is a regular file so
	// every write attempt fails.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	sched := NewScheduler(filepath.Join(blocker, "galaxy.json"), Config{MaxAttempts: 1}, zerolog.Nop())
	sched.Bind(func() *model.Galaxy { return model.NewGalaxy() })

	sched.MarkDirty()
	require.Error(t, sched.Flush())
	assert.True(t, sched.Dirty(), "failed write must leave the state dirty for the next cycle")
}
