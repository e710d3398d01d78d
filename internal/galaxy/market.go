package galaxy

import (
	"sort"

	"github.com/humbrol2/spacemolt-botrunner-sub000/internal/model"
)

// PriceHit locates one market price in the galaxy.
type PriceHit struct {
	SystemID   string  `json:"system_id"`
	SystemName string  `json:"system_name,omitempty"`
	POIID      string  `json:"poi_id"`
	POIName    string  `json:"poi_name,omitempty"`
	ItemID     string  `json:"item_id"`
	ItemName   string  `json:"item_name,omitempty"`
	Price      float64 `json:"price"`
	Quantity   float64 `json:"quantity"`
}

// FindBestSellPrice returns the highest price at which the player can sell
// the item to an NPC market anywhere in the known galaxy (the market's
// best_sell side), or model.ErrItemNotFound when no market lists it.
func (s *Store) FindBestSellPrice(itemID string) (*PriceHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *PriceHit
	s.scanMarkets(func(sys *model.System, poi *model.POI, rec *model.MarketRecord) {
		if rec.ItemID != itemID || rec.BestSell == nil {
			return
		}
		if best == nil || *rec.BestSell > best.Price {
			best = priceHit(sys, poi, rec, *rec.BestSell, rec.SellQuantity)
		}
	})
	if best == nil {
		return nil, model.ErrItemNotFound
	}
	return best, nil
}

// FindBestBuyPrice returns the highest price at which an NPC market with
// positive demand buys the item from the player (the best_buy side).
func (s *Store) FindBestBuyPrice(itemID string) (*PriceHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best *PriceHit
	s.scanMarkets(func(sys *model.System, poi *model.POI, rec *model.MarketRecord) {
		if rec.ItemID != itemID || rec.BestBuy == nil || rec.BuyQuantity <= 0 {
			return
		}
		if best == nil || *rec.BestBuy > best.Price {
			best = priceHit(sys, poi, rec, *rec.BestBuy, rec.BuyQuantity)
		}
	})
	if best == nil {
		return nil, model.ErrItemNotFound
	}
	return best, nil
}

// DemandEntry aggregates galaxy-wide buy demand for one item.
type DemandEntry struct {
	ItemID        string   `json:"item_id"`
	ItemName      string   `json:"item_name,omitempty"`
	TotalQuantity float64  `json:"total_quantity"`
	Listings      int      `json:"listings"`
	Best          PriceHit `json:"best"`
}

// AllBuyDemand aggregates every market currently buying from players, one
// entry per item, highest best price first.
func (s *Store) AllBuyDemand() []DemandEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byItem := make(map[string]*DemandEntry)
	s.scanMarkets(func(sys *model.System, poi *model.POI, rec *model.MarketRecord) {
		if rec.BestBuy == nil || rec.BuyQuantity <= 0 {
			return
		}
		entry, ok := byItem[rec.ItemID]
		if !ok {
			entry = &DemandEntry{ItemID: rec.ItemID, ItemName: rec.Name}
			byItem[rec.ItemID] = entry
		}
		if entry.ItemName == "" {
			entry.ItemName = rec.Name
		}
		entry.TotalQuantity += rec.BuyQuantity
		entry.Listings++
		if entry.Listings == 1 || *rec.BestBuy > entry.Best.Price {
			entry.Best = *priceHit(sys, poi, rec, *rec.BestBuy, rec.BuyQuantity)
		}
	})

	out := make([]DemandEntry, 0, len(byItem))
	for _, entry := range byItem {
		out = append(out, *entry)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Best.Price != out[j].Best.Price {
			return out[i].Best.Price > out[j].Best.Price
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out
}

// Spread is one profitable buy-here/sell-there pair.
type Spread struct {
	ItemID   string   `json:"item_id"`
	ItemName string   `json:"item_name,omitempty"`
	BuyFrom  PriceHit `json:"buy_from"` // market sells to player (best_sell)
	SellTo   PriceHit `json:"sell_to"`  // market buys from player (best_buy)
	Margin   float64  `json:"margin"`   // SellTo.Price - BuyFrom.Price, always > 0
}

// FindPriceSpreads cross-joins every place an item can be bought (best_sell
// with stock) against every place it can be sold for more (best_buy with
// demand), excluding pairs at the same POI. itemID narrows the search to
// one item; empty means all items. Results come back best margin first.
// Quadratic in the number of listings per item, which is bounded by known
// stations, not game ticks.
func (s *Store) FindPriceSpreads(itemID string) []Spread {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sellListings := make(map[string][]PriceHit) // item -> places to buy from
	buyListings := make(map[string][]PriceHit)  // item -> places to sell to
	s.scanMarkets(func(sys *model.System, poi *model.POI, rec *model.MarketRecord) {
		if itemID != "" && rec.ItemID != itemID {
			return
		}
		if rec.BestSell != nil && rec.SellQuantity > 0 {
			sellListings[rec.ItemID] = append(sellListings[rec.ItemID], *priceHit(sys, poi, rec, *rec.BestSell, rec.SellQuantity))
		}
		if rec.BestBuy != nil && rec.BuyQuantity > 0 {
			buyListings[rec.ItemID] = append(buyListings[rec.ItemID], *priceHit(sys, poi, rec, *rec.BestBuy, rec.BuyQuantity))
		}
	})

	var out []Spread
	for item, sells := range sellListings {
		buys, ok := buyListings[item]
		if !ok {
			continue
		}
		for _, src := range sells {
			for _, dst := range buys {
				if src.SystemID == dst.SystemID && src.POIID == dst.POIID {
					continue
				}
				margin := dst.Price - src.Price
				if margin <= 0 {
					continue
				}
				out = append(out, Spread{
					ItemID:   item,
					ItemName: src.ItemName,
					BuyFrom:  src,
					SellTo:   dst,
					Margin:   margin,
				})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Margin != out[j].Margin {
			return out[i].Margin > out[j].Margin
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out
}

// scanMarkets visits every market record in deterministic order. Callers
// hold the read lock.
func (s *Store) scanMarkets(visit func(*model.System, *model.POI, *model.MarketRecord)) {
	for _, sysID := range s.sortedSystemIDs() {
		sys := s.galaxy.Systems[sysID]
		for _, poiID := range sortedPOIIDs(sys) {
			poi := sys.POIs[poiID]
			for i := range poi.Market {
				visit(sys, poi, &poi.Market[i])
			}
		}
	}
}

func priceHit(sys *model.System, poi *model.POI, rec *model.MarketRecord, price, qty float64) *PriceHit {
	return &PriceHit{
		SystemID:   sys.ID,
		SystemName: sys.Name,
		POIID:      poi.ID,
		POIName:    poi.Name,
		ItemID:     rec.ItemID,
		ItemName:   rec.Name,
		Price:      price,
		Quantity:   qty,
	}
}
