package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "fleet", "observations.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestAppendAndRecent_NewestFirst(t *testing.T) {
	j := openTestJournal(t)

	require.NoError(t, j.Append(Entry{Kind: "system", SystemID: "sol"}))
	require.NoError(t, j.Append(Entry{
		Kind:     "market",
		SystemID: "sol",
		POIID:    "hub",
		Payload:  map[string]any{"item_id": "iron", "sell_price": 10.0},
	}))

	entries, err := j.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "market", entries[0].Kind)
	assert.Equal(t, "hub", entries[0].POIID)
	assert.Equal(t, "system", entries[1].Kind)

	payload, ok := entries[0].Payload.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "iron", payload["item_id"])
}

func TestAppend_StampsCreationTime(t *testing.T) {
	j := openTestJournal(t)
	before := time.Now().Add(-time.Second)

	require.NoError(t, j.Append(Entry{Kind: "pirate", SystemID: "vega"}))

	entries, err := j.Recent(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].CreatedAt.After(before))
}

func TestRecent_Limit(t *testing.T) {
	j := openTestJournal(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, j.Append(Entry{Kind: "wreck", SystemID: "sol"}))
	}

	entries, err := j.Recent(3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestRecent_EmptyJournal(t *testing.T) {
	j := openTestJournal(t)

	entries, err := j.Recent(10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
