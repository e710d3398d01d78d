// Package galaxy holds the in-memory knowledge store one fleet shares: the
// travel graph, points of interest and market state accumulated from bot
// observations, plus the read-side graph and market queries the routines
// plan with. One Store instance is constructed at process start and passed
// to every consumer.
package galaxy

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/humbrol2/spacemolt-botrunner-sub000/internal/journal"
	"github.com/humbrol2/spacemolt-botrunner-sub000/internal/model"
)

// Saver receives dirty marks after every applied mutation. The snapshot
// scheduler implements it.
type Saver interface {
	MarkDirty()
}

// Recorder receives a copy of every accepted observation. The SQLite
// journal implements it; nil disables journaling.
type Recorder interface {
	Append(journal.Entry) error
}

// Options wires the store's collaborators.
type Options struct {
	Saver   Saver
	Journal Recorder
	Logger  zerolog.Logger
	Now     func() time.Time // test clock; defaults to time.Now
}

// Store is the single-writer galaxy knowledge store. All access goes
// through one RWMutex: mutations take the write lock, queries the read
// lock, so concurrent bot goroutines never observe torn state.
type Store struct {
	mu      sync.RWMutex
	galaxy  *model.Galaxy
	saver   Saver
	journal Recorder
	log     zerolog.Logger
	now     func() time.Time
}

type noopSaver struct{}

func (noopSaver) MarkDirty() {}

// New wraps an already-loaded Galaxy in a Store.
func New(g *model.Galaxy, opts Options) *Store {
	if g == nil {
		g = model.NewGalaxy()
	}
	if g.Systems == nil {
		g.Systems = make(map[string]*model.System)
	}
	saver := opts.Saver
	if saver == nil {
		saver = noopSaver{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		galaxy:  g,
		saver:   saver,
		journal: opts.Journal,
		log:     opts.Logger,
		now:     now,
	}
}

// Snapshot returns a deep copy of the current galaxy, safe to serialize
// while mutations continue. The persistence scheduler binds to this.
func (s *Store) Snapshot() *model.Galaxy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.galaxy.Clone()
}

// GetSystem returns a copy of the system, or model.ErrSystemNotFound.
func (s *Store) GetSystem(systemID string) (*model.System, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sys, ok := s.galaxy.Systems[systemID]
	if !ok {
		return nil, model.ErrSystemNotFound
	}
	return sys.Clone(), nil
}

// GetPOI returns a deep copy of one point of interest.
func (s *Store) GetPOI(systemID, poiID string) (*model.POI, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sys, ok := s.galaxy.Systems[systemID]
	if !ok {
		return nil, model.ErrSystemNotFound
	}
	poi, ok := sys.POIs[poiID]
	if !ok {
		return nil, model.ErrPOINotFound
	}
	return poi.Clone(), nil
}

// ListSystems returns copies of every known system, ordered by id.
func (s *Store) ListSystems() []*model.System {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.System, 0, len(s.galaxy.Systems))
	for _, id := range s.sortedSystemIDs() {
		out = append(out, s.galaxy.Systems[id].Clone())
	}
	return out
}

// Connections returns the known outgoing edges of a system.
func (s *Store) Connections(systemID string) ([]model.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sys, ok := s.galaxy.Systems[systemID]
	if !ok {
		return nil, model.ErrSystemNotFound
	}
	return append([]model.Connection(nil), sys.Connections...), nil
}

// OreType is one distinct ore observed somewhere in the galaxy.
type OreType struct {
	ItemID string `json:"item_id"`
	Name   string `json:"name,omitempty"`
}

// KnownOreTypes returns every distinct ore id ever recorded, ordered by id.
func (s *Store) KnownOreTypes() []OreType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]string)
	for _, sys := range s.galaxy.Systems {
		for _, poi := range sys.POIs {
			for _, ore := range poi.Ores {
				if _, ok := seen[ore.ItemID]; !ok || seen[ore.ItemID] == "" {
					seen[ore.ItemID] = ore.Name
				}
			}
		}
	}
	out := make([]OreType, 0, len(seen))
	for id, name := range seen {
		out = append(out, OreType{ItemID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out
}

// sortedSystemIDs must be called with the lock held. Deterministic scan
// order keeps full-scan queries stable between calls.
func (s *Store) sortedSystemIDs() []string {
	ids := make([]string, 0, len(s.galaxy.Systems))
	for id := range s.galaxy.Systems {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedPOIIDs(sys *model.System) []string {
	ids := make([]string, 0, len(sys.POIs))
	for id := range sys.POIs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func systemHasBase(sys *model.System) bool {
	for _, poi := range sys.POIs {
		if poi.HasBase {
			return true
		}
	}
	return false
}
