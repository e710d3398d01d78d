// Package model defines the canonical record shapes held by the galaxy
// knowledge store and serialized into the on-disk snapshot. No logic lives
// here beyond deep copies; merge policy belongs to internal/galaxy.
package model

import "time"

// SnapshotVersion is the current snapshot format version.
const SnapshotVersion = 1

// Galaxy is the root aggregate: everything one fleet knows about the world.
type Galaxy struct {
	Version   int                `json:"version"`
	FleetID   string             `json:"fleet_id,omitempty"`
	LastSaved time.Time          `json:"last_saved"`
	Systems   map[string]*System `json:"systems"`
}

// System is a node in the travel graph.
type System struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Security    string           `json:"security,omitempty"`
	Connections []Connection     `json:"connections,omitempty"`
	POIs        map[string]*POI  `json:"pois,omitempty"`
	Pirates     []PirateSighting `json:"pirates,omitempty"`
	Wrecks      []WreckRecord    `json:"wrecks,omitempty"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Connection is a directed jump edge from its owning system.
type Connection struct {
	SystemID string   `json:"system_id"`
	Name     string   `json:"name,omitempty"`
	FuelCost *float64 `json:"fuel_cost,omitempty"`
	Distance *float64 `json:"distance,omitempty"`
}

// POI is a point of interest inside a system (station, belt, wreck field).
type POI struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Type         string          `json:"type,omitempty"`
	HasBase      bool            `json:"has_base"`
	BaseID       string          `json:"base_id,omitempty"`
	BaseName     string          `json:"base_name,omitempty"`
	BaseType     string          `json:"base_type,omitempty"`
	Services     []string        `json:"services,omitempty"`
	Ores         []OreRecord     `json:"ores,omitempty"`
	Market       []MarketRecord  `json:"market,omitempty"`
	Orders       []OrderRecord   `json:"orders,omitempty"`
	Missions     []MissionRecord `json:"missions,omitempty"`
	LastExplored *time.Time      `json:"last_explored,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// OreRecord accumulates mining yield per item at a POI. Counters only grow.
type OreRecord struct {
	ItemID     string    `json:"item_id"`
	Name       string    `json:"name,omitempty"`
	TotalMined float64   `json:"total_mined"`
	TimesSeen  int       `json:"times_seen"`
	LastSeen   time.Time `json:"last_seen"`
}

// MarketRecord holds the best known prices for one item at one POI.
// Nil price means "never observed", which a later scan must not reintroduce
// once a real price is known.
type MarketRecord struct {
	ItemID       string    `json:"item_id"`
	Name         string    `json:"name,omitempty"`
	BestBuy      *float64  `json:"best_buy,omitempty"`
	BestSell     *float64  `json:"best_sell,omitempty"`
	BuyQuantity  float64   `json:"buy_quantity"`
	SellQuantity float64   `json:"sell_quantity"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Order side tokens stored in OrderRecord.Type.
const (
	OrderBuy  = "buy"
	OrderSell = "sell"
)

// OrderRecord is one player order in a POI's order book.
type OrderRecord struct {
	OrderID  string    `json:"order_id"`
	Player   string    `json:"player,omitempty"`
	ItemID   string    `json:"item_id"`
	ItemName string    `json:"item_name,omitempty"`
	Type     string    `json:"type"`
	Price    float64   `json:"price"`
	Quantity float64   `json:"quantity"`
	LastSeen time.Time `json:"last_seen"`
}

// MissionRecord is one mission offered at a POI. The list is replaced
// wholesale on each scan.
type MissionRecord struct {
	MissionID     string    `json:"mission_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Type          string    `json:"type,omitempty"`
	RewardCredits float64   `json:"reward_credits,omitempty"`
	RewardItems   string    `json:"reward_items,omitempty"`
	Level         int       `json:"level,omitempty"`
	Expiry        string    `json:"expiry,omitempty"`
	LastSeen      time.Time `json:"last_seen"`
}

// PirateSighting accumulates hostile-player encounters per system.
type PirateSighting struct {
	Key      string    `json:"key"`
	Name     string    `json:"name,omitempty"`
	Count    int       `json:"count"`
	LastSeen time.Time `json:"last_seen"`
}

// WreckRecord is a salvageable wreck observed in a system.
type WreckRecord struct {
	WreckID  string    `json:"wreck_id"`
	ShipType string    `json:"ship_type,omitempty"`
	Type     string    `json:"type,omitempty"`
	POI      string    `json:"poi,omitempty"`
	Expiry   string    `json:"expiry,omitempty"`
	LastSeen time.Time `json:"last_seen"`
}

// NewGalaxy returns an empty Galaxy at the current snapshot version.
func NewGalaxy() *Galaxy {
	return &Galaxy{
		Version: SnapshotVersion,
		Systems: make(map[string]*System),
	}
}

// Clone deep-copies the Galaxy so a snapshot write can serialize it outside
// the store lock.
func (g *Galaxy) Clone() *Galaxy {
	out := &Galaxy{
		Version:   g.Version,
		FleetID:   g.FleetID,
		LastSaved: g.LastSaved,
		Systems:   make(map[string]*System, len(g.Systems)),
	}
	for id, sys := range g.Systems {
		out.Systems[id] = sys.Clone()
	}
	return out
}

// Clone deep-copies a single system.
func (s *System) Clone() *System {
	out := *s
	out.Connections = append([]Connection(nil), s.Connections...)
	out.Pirates = append([]PirateSighting(nil), s.Pirates...)
	out.Wrecks = append([]WreckRecord(nil), s.Wrecks...)
	if s.POIs != nil {
		out.POIs = make(map[string]*POI, len(s.POIs))
		for id, p := range s.POIs {
			out.POIs[id] = p.Clone()
		}
	}
	return &out
}

// Clone deep-copies a single POI.
func (p *POI) Clone() *POI {
	out := *p
	out.Services = append([]string(nil), p.Services...)
	out.Ores = append([]OreRecord(nil), p.Ores...)
	out.Orders = append([]OrderRecord(nil), p.Orders...)
	out.Missions = append([]MissionRecord(nil), p.Missions...)
	if p.Market != nil {
		out.Market = make([]MarketRecord, len(p.Market))
		for i, m := range p.Market {
			out.Market[i] = m.clone()
		}
	}
	if p.LastExplored != nil {
		t := *p.LastExplored
		out.LastExplored = &t
	}
	return &out
}

func (m MarketRecord) clone() MarketRecord {
	out := m
	if m.BestBuy != nil {
		v := *m.BestBuy
		out.BestBuy = &v
	}
	if m.BestSell != nil {
		v := *m.BestSell
		out.BestSell = &v
	}
	return out
}
