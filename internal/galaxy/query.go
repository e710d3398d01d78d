package galaxy

import (
	"math"
	"sort"
	"time"

	"github.com/humbrol2/spacemolt-botrunner-sub000/internal/model"
)

// FindRoute returns the minimum-hop path from one system to another over
// the currently known connection edges, endpoints inclusive. Edges are
// directional relative to what has been observed: A->B may be known before
// B->A. Jump fuel cost is deliberately ignored; callers needing
// cost-optimal routing layer that on top.
func (s *Store) FindRoute(from, to string) ([]string, error) {
	if from == to {
		return []string{from}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.galaxy.Systems[from]; !ok {
		return nil, model.ErrNoRoute
	}

	parent := map[string]string{from: ""}
	queue := []string{from}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		sys, ok := s.galaxy.Systems[current]
		if !ok {
			continue
		}
		for _, conn := range sys.Connections {
			if _, seen := parent[conn.SystemID]; seen {
				continue
			}
			parent[conn.SystemID] = current
			if conn.SystemID == to {
				return buildPath(parent, from, to), nil
			}
			queue = append(queue, conn.SystemID)
		}
	}
	return nil, model.ErrNoRoute
}

func buildPath(parent map[string]string, from, to string) []string {
	var path []string
	for at := to; at != ""; at = parent[at] {
		path = append(path, at)
		if at == from {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// StationHit is the answer to a nearest-base search.
type StationHit struct {
	SystemID   string `json:"system_id"`
	SystemName string `json:"system_name,omitempty"`
	POIID      string `json:"poi_id"`
	POIName    string `json:"poi_name,omitempty"`
	Hops       int    `json:"hops"`
}

// FindNearestStationSystem walks the graph breadth-first from a system and
// returns the first system containing a POI with a base, the origin itself
// included at hop zero.
func (s *Store) FindNearestStationSystem(from string) (*StationHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	origin, ok := s.galaxy.Systems[from]
	if !ok {
		return nil, model.ErrSystemNotFound
	}
	if hit := stationIn(origin, 0); hit != nil {
		return hit, nil
	}

	visited := map[string]bool{from: true}
	type entry struct {
		id   string
		hops int
	}
	queue := []entry{{from, 0}}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		sys, ok := s.galaxy.Systems[current.id]
		if !ok {
			continue
		}
		for _, conn := range sys.Connections {
			if visited[conn.SystemID] {
				continue
			}
			visited[conn.SystemID] = true
			next, ok := s.galaxy.Systems[conn.SystemID]
			if !ok {
				continue
			}
			if hit := stationIn(next, current.hops+1); hit != nil {
				return hit, nil
			}
			queue = append(queue, entry{conn.SystemID, current.hops + 1})
		}
	}
	return nil, model.ErrNoRoute
}

// stationIn picks the representative base POI of a system, lowest POI id
// first so repeated queries give the same answer.
func stationIn(sys *model.System, hops int) *StationHit {
	for _, id := range sortedPOIIDs(sys) {
		poi := sys.POIs[id]
		if !poi.HasBase {
			continue
		}
		return &StationHit{
			SystemID:   sys.ID,
			SystemName: sys.Name,
			POIID:      poi.ID,
			POIName:    poi.Name,
			Hops:       hops,
		}
	}
	return nil
}

// OreLocation is one POI with recorded yield for a given ore.
type OreLocation struct {
	SystemID   string    `json:"system_id"`
	SystemName string    `json:"system_name,omitempty"`
	POIID      string    `json:"poi_id"`
	POIName    string    `json:"poi_name,omitempty"`
	HasBase    bool      `json:"has_base"`
	TotalMined float64   `json:"total_mined"`
	TimesSeen  int       `json:"times_seen"`
	LastSeen   time.Time `json:"last_seen"`
}

// FindOreLocations scans every known POI for recorded yield of the given
// ore, best producers first. HasBase reports whether the owning system has
// any base, so mining routines can weigh haul distance.
func (s *Store) FindOreLocations(oreID string) []OreLocation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []OreLocation
	for _, sysID := range s.sortedSystemIDs() {
		sys := s.galaxy.Systems[sysID]
		hasBase := systemHasBase(sys)
		for _, poiID := range sortedPOIIDs(sys) {
			poi := sys.POIs[poiID]
			for _, ore := range poi.Ores {
				if ore.ItemID != oreID {
					continue
				}
				out = append(out, OreLocation{
					SystemID:   sys.ID,
					SystemName: sys.Name,
					POIID:      poi.ID,
					POIName:    poi.Name,
					HasBase:    hasBase,
					TotalMined: ore.TotalMined,
					TimesSeen:  ore.TimesSeen,
					LastSeen:   ore.LastSeen,
				})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalMined > out[j].TotalMined })
	return out
}

// MinutesSinceExplored returns the elapsed minutes since a POI was marked
// explored. An unknown system or POI, or one never marked, returns +Inf so
// every staleness threshold reads it as "refresh now".
func (s *Store) MinutesSinceExplored(systemID, poiID string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	poi, ok := s.lookupPOILocked(systemID, poiID)
	if !ok || poi.LastExplored == nil {
		return math.Inf(1)
	}
	return s.now().Sub(*poi.LastExplored).Minutes()
}
