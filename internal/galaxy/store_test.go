package galaxy

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/humbrol2/spacemolt-botrunner-sub000/internal/model"
)

// --- Fakes ---

type fakeSaver struct{ marks int }

func (f *fakeSaver) MarkDirty() { f.marks++ }

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore(t *testing.T) (*Store, *fakeSaver, *fakeClock) {
	t.Helper()
	saver := &fakeSaver{}
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	s := New(model.NewGalaxy(), Options{
		Saver:  saver,
		Logger: zerolog.Nop(),
		Now:    clock.Now,
	})
	return s, saver, clock
}

// systemPayload builds a minimal system observation with the given POI ids,
// each carrying a base.
func systemPayload(id string, connections []string, poiIDs ...string) map[string]any {
	conns := make([]any, 0, len(connections))
	for _, target := range connections {
		conns = append(conns, map[string]any{"id": target})
	}
	pois := make([]any, 0, len(poiIDs))
	for _, poiID := range poiIDs {
		pois = append(pois, map[string]any{
			"id":       poiID,
			"name":     "POI " + poiID,
			"type":     "station",
			"has_base": true,
		})
	}
	return map[string]any{
		"id":          id,
		"name":        "System " + id,
		"connections": conns,
		"pois":        pois,
	}
}

// marketLine builds one market listing line.
func marketLine(itemID string, fields map[string]any) map[string]any {
	line := map[string]any{"item_id": itemID}
	for k, v := range fields {
		line[k] = v
	}
	return line
}
