package galaxy

import (
	"time"

	"github.com/humbrol2/spacemolt-botrunner-sub000/internal/journal"
	"github.com/humbrol2/spacemolt-botrunner-sub000/internal/metrics"
	"github.com/humbrol2/spacemolt-botrunner-sub000/internal/model"
)

// Observation kinds, as counted by metrics and stored in the journal.
const (
	KindSystem   = "system"
	KindMarket   = "market"
	KindOrders   = "orders"
	KindMissions = "missions"
	KindMining   = "mining"
	KindPirate   = "pirate"
	KindWreck    = "wreck"
	KindExplored = "explored"
)

// committed runs after a mutation is applied: bump the counter, mark the
// snapshot dirty, journal the raw payload. Journal failures are logged and
// swallowed; observations are best-effort telemetry.
func (s *Store) committed(kind, systemID, poiID string, payload any) {
	metrics.ObservationsTotal.WithLabelValues(kind).Inc()
	s.saver.MarkDirty()
	if s.journal != nil {
		err := s.journal.Append(journal.Entry{
			Kind:      kind,
			SystemID:  systemID,
			POIID:     poiID,
			Payload:   payload,
			CreatedAt: s.now(),
		})
		if err != nil {
			s.log.Warn().Err(err).Str("kind", kind).Msg("journal append failed")
		}
	}
}

func skipped(kind string) {
	metrics.ObservationsSkippedTotal.WithLabelValues(kind).Inc()
}

// RecordSystem merges a system snapshot: identity and security are
// upserted, the connection list is replaced wholesale when present, the POI
// list is replaced with accumulated sub-records carried forward by POI id,
// and wrecks embedded in the payload are upserted into the existing set.
func (s *Store) RecordSystem(payload map[string]any) {
	systemID := stringField(payload, systemIDAliases...)
	if systemID == "" {
		skipped(KindSystem)
		return
	}

	s.mu.Lock()
	now := s.now()
	sys := s.ensureSystemLocked(systemID)
	if name := stringField(payload, systemNameAliases...); name != "" {
		sys.Name = name
	}
	if sec := stringField(payload, securityAliases...); sec != "" {
		sys.Security = sec
	}

	if conns, present := listField(payload, connListAliases...); present {
		sys.Connections = sys.Connections[:0]
		for _, raw := range conns {
			target := stringField(raw, connTargetAliases...)
			if target == "" {
				continue
			}
			conn := model.Connection{
				SystemID: target,
				Name:     stringField(raw, connNameAliases...),
			}
			if fuel, ok := floatField(raw, connFuelAliases...); ok {
				conn.FuelCost = &fuel
			}
			if dist, ok := floatField(raw, connDistanceAliases...); ok {
				conn.Distance = &dist
			}
			sys.Connections = append(sys.Connections, conn)
		}
	}

	if pois, present := listField(payload, poiListAliases...); present {
		s.mergePOIsLocked(sys, pois, now)
	}

	for _, raw := range listOrNested(payload, "wrecks") {
		s.upsertWreckLocked(sys, raw, now)
	}

	sys.UpdatedAt = now
	s.mu.Unlock()

	s.committed(KindSystem, systemID, "", payload)
}

// mergePOIsLocked replaces the POI set with the freshly observed one while
// carrying accumulated ore/market/order/mission state forward by POI id. A
// system scan does not see sub-records, so omitting them must not erase
// what earlier scoped scans collected.
func (s *Store) mergePOIsLocked(sys *model.System, pois []map[string]any, now time.Time) {
	fresh := make(map[string]*model.POI, len(pois))
	for _, raw := range pois {
		id := stringField(raw, poiIDAliases...)
		if id == "" {
			skipped(KindSystem)
			continue
		}
		poi := &model.POI{
			ID:        id,
			Name:      stringField(raw, poiNameAliases...),
			Type:      stringField(raw, poiTypeAliases...),
			Services:  stringList(raw, servicesAliases...),
			UpdatedAt: now,
		}
		if base, ok := objectField(raw, baseObjectAliases...); ok {
			poi.HasBase = true
			poi.BaseID = stringField(base, append([]string{"id"}, baseIDAliases...)...)
			poi.BaseName = stringField(base, append([]string{"name"}, baseNameAliases...)...)
			poi.BaseType = stringField(base, append([]string{"type"}, baseTypeAliases...)...)
		}
		if hasBase, ok := boolField(raw, hasBaseAliases...); ok {
			poi.HasBase = hasBase
		}
		if poi.BaseID == "" {
			poi.BaseID = stringField(raw, baseIDAliases...)
		}
		if poi.BaseName == "" {
			poi.BaseName = stringField(raw, baseNameAliases...)
		}
		if poi.BaseType == "" {
			poi.BaseType = stringField(raw, baseTypeAliases...)
		}

		if prev, ok := sys.POIs[id]; ok {
			poi.Ores = prev.Ores
			poi.Market = prev.Market
			poi.Orders = prev.Orders
			poi.Missions = prev.Missions
			poi.LastExplored = prev.LastExplored
			if poi.Name == "" {
				poi.Name = prev.Name
			}
			if poi.Type == "" {
				poi.Type = prev.Type
			}
		}
		fresh[id] = poi
	}
	sys.POIs = fresh
}

// RecordMarket merges a market scan for one POI. The listing payload may be
// a bare list or nested under an alias key. A line that reports no price
// keeps the previously known price, and a zero quantity does not overwrite
// a known positive one.
func (s *Store) RecordMarket(systemID, poiID string, payload any) {
	if systemID == "" || poiID == "" {
		skipped(KindMarket)
		return
	}
	lines := listOrNested(payload, marketListAliases...)

	s.mu.Lock()
	poi, ok := s.lookupPOILocked(systemID, poiID)
	if !ok {
		s.mu.Unlock()
		skipped(KindMarket)
		return
	}
	now := s.now()
	applied := 0
	for _, raw := range lines {
		itemID := stringField(raw, itemIDAliases...)
		if itemID == "" {
			skipped(KindMarket)
			continue
		}
		rec := findMarket(poi, itemID)
		if rec == nil {
			poi.Market = append(poi.Market, model.MarketRecord{ItemID: itemID})
			rec = &poi.Market[len(poi.Market)-1]
		}
		if name := stringField(raw, itemNameAliases...); name != "" {
			rec.Name = name
		}
		if buy, ok := floatField(raw, buyPriceAliases...); ok {
			rec.BestBuy = &buy
		}
		if sell, ok := floatField(raw, sellPriceAliases...); ok {
			rec.BestSell = &sell
		}
		if qty, ok := floatField(raw, buyQuantityAliases...); ok && qty > 0 {
			rec.BuyQuantity = qty
		}
		if qty, ok := floatField(raw, sellQtyAliases...); ok && qty > 0 {
			rec.SellQuantity = qty
		}
		rec.UpdatedAt = now
		applied++
	}
	if applied > 0 {
		poi.UpdatedAt = now
	}
	s.mu.Unlock()

	if applied > 0 {
		s.committed(KindMarket, systemID, poiID, payload)
	}
}

// RecordOrders merges an order-book scan for one POI. Orders are upserted
// by order id; an incoming id replaces its whole prior record.
func (s *Store) RecordOrders(systemID, poiID string, payload any) {
	if systemID == "" || poiID == "" {
		skipped(KindOrders)
		return
	}
	lines := listOrNested(payload, orderListAliases...)

	s.mu.Lock()
	poi, ok := s.lookupPOILocked(systemID, poiID)
	if !ok {
		s.mu.Unlock()
		skipped(KindOrders)
		return
	}
	now := s.now()
	applied := 0
	for _, raw := range lines {
		orderID := stringField(raw, orderIDAliases...)
		if orderID == "" {
			skipped(KindOrders)
			continue
		}
		price, _ := floatField(raw, orderPriceAliases...)
		qty, _ := floatField(raw, orderQtyAliases...)
		rec := model.OrderRecord{
			OrderID:  orderID,
			Player:   stringField(raw, orderOwnerAliases...),
			ItemID:   stringField(raw, itemIDAliases...),
			ItemName: stringField(raw, itemNameAliases...),
			Type:     orderType(stringField(raw, orderTypeAliases...)),
			Price:    price,
			Quantity: qty,
			LastSeen: now,
		}
		replaced := false
		for i := range poi.Orders {
			if poi.Orders[i].OrderID == orderID {
				poi.Orders[i] = rec
				replaced = true
				break
			}
		}
		if !replaced {
			poi.Orders = append(poi.Orders, rec)
		}
		applied++
	}
	if applied > 0 {
		poi.UpdatedAt = now
	}
	s.mu.Unlock()

	if applied > 0 {
		s.committed(KindOrders, systemID, poiID, payload)
	}
}

// RecordMissions replaces a POI's mission list wholesale with the scanned
// one. Missions rotate server-side, so there is no cross-scan accumulation.
func (s *Store) RecordMissions(systemID, poiID string, payload any) {
	if systemID == "" || poiID == "" {
		skipped(KindMissions)
		return
	}
	lines := listOrNested(payload, missionListAliases...)

	s.mu.Lock()
	poi, ok := s.lookupPOILocked(systemID, poiID)
	if !ok {
		s.mu.Unlock()
		skipped(KindMissions)
		return
	}
	now := s.now()
	missions := make([]model.MissionRecord, 0, len(lines))
	for _, raw := range lines {
		missionID := stringField(raw, missionIDAliases...)
		if missionID == "" {
			skipped(KindMissions)
			continue
		}
		credits, items := missionReward(raw)
		level, _ := intField(raw, missionLevelAliases...)
		missions = append(missions, model.MissionRecord{
			MissionID:     missionID,
			Title:         stringField(raw, missionTitleAliases...),
			Description:   stringField(raw, missionDescAliases...),
			Type:          stringField(raw, missionTypeAliases...),
			RewardCredits: credits,
			RewardItems:   items,
			Level:         level,
			Expiry:        stringField(raw, missionExpiryAliases...),
			LastSeen:      now,
		})
	}
	poi.Missions = missions
	poi.UpdatedAt = now
	s.mu.Unlock()

	s.committed(KindMissions, systemID, poiID, payload)
}

// RecordMiningYield increments the cumulative ore counters for (POI, item).
func (s *Store) RecordMiningYield(systemID, poiID, oreID, oreName string, amount float64) {
	if systemID == "" || poiID == "" || oreID == "" {
		skipped(KindMining)
		return
	}

	s.mu.Lock()
	poi, ok := s.lookupPOILocked(systemID, poiID)
	if !ok {
		s.mu.Unlock()
		skipped(KindMining)
		return
	}
	now := s.now()
	var rec *model.OreRecord
	for i := range poi.Ores {
		if poi.Ores[i].ItemID == oreID {
			rec = &poi.Ores[i]
			break
		}
	}
	if rec == nil {
		poi.Ores = append(poi.Ores, model.OreRecord{ItemID: oreID})
		rec = &poi.Ores[len(poi.Ores)-1]
	}
	if oreName != "" {
		rec.Name = oreName
	}
	rec.TotalMined += amount
	rec.TimesSeen++
	rec.LastSeen = now
	poi.UpdatedAt = now
	s.mu.Unlock()

	s.committed(KindMining, systemID, poiID, map[string]any{
		"item_id": oreID, "name": oreName, "amount": amount,
	})
}

// RecordPirate increments the sighting counter for a hostile player in a
// system. The identity key is the player id, else the name, else "unknown".
func (s *Store) RecordPirate(systemID string, payload map[string]any) {
	if systemID == "" {
		skipped(KindPirate)
		return
	}

	key := stringField(payload, pirateIDAliases...)
	name := stringField(payload, pirateNameAliases...)
	if key == "" {
		key = name
	}
	if key == "" {
		key = "unknown"
	}

	s.mu.Lock()
	sys, ok := s.galaxy.Systems[systemID]
	if !ok {
		s.mu.Unlock()
		skipped(KindPirate)
		return
	}
	now := s.now()
	found := false
	for i := range sys.Pirates {
		if sys.Pirates[i].Key == key {
			sys.Pirates[i].Count++
			sys.Pirates[i].LastSeen = now
			if name != "" {
				sys.Pirates[i].Name = name
			}
			found = true
			break
		}
	}
	if !found {
		sys.Pirates = append(sys.Pirates, model.PirateSighting{
			Key: key, Name: name, Count: 1, LastSeen: now,
		})
	}
	s.mu.Unlock()

	s.committed(KindPirate, systemID, "", payload)
}

// RecordWreck upserts a wreck sighting by wreck id within a system.
func (s *Store) RecordWreck(systemID string, payload map[string]any) {
	if systemID == "" {
		skipped(KindWreck)
		return
	}

	s.mu.Lock()
	sys, ok := s.galaxy.Systems[systemID]
	if !ok {
		s.mu.Unlock()
		skipped(KindWreck)
		return
	}
	applied := s.upsertWreckLocked(sys, payload, s.now())
	s.mu.Unlock()

	if !applied {
		skipped(KindWreck)
		return
	}
	s.committed(KindWreck, systemID, "", payload)
}

func (s *Store) upsertWreckLocked(sys *model.System, raw map[string]any, now time.Time) bool {
	wreckID := stringField(raw, wreckIDAliases...)
	if wreckID == "" {
		return false
	}
	rec := model.WreckRecord{
		WreckID:  wreckID,
		ShipType: stringField(raw, wreckShipAliases...),
		Type:     stringField(raw, wreckTypeAliases...),
		POI:      stringField(raw, wreckPOIAliases...),
		Expiry:   stringField(raw, wreckExpiryAliases...),
		LastSeen: now,
	}
	for i := range sys.Wrecks {
		if sys.Wrecks[i].WreckID == wreckID {
			sys.Wrecks[i] = rec
			return true
		}
	}
	sys.Wrecks = append(sys.Wrecks, rec)
	return true
}

// MarkExplored stamps a POI's last-explored time with the current clock.
// Bot routines use the staleness query against this to decide whether a
// cached scan is still fresh.
func (s *Store) MarkExplored(systemID, poiID string) {
	if systemID == "" || poiID == "" {
		skipped(KindExplored)
		return
	}

	s.mu.Lock()
	poi, ok := s.lookupPOILocked(systemID, poiID)
	if !ok {
		s.mu.Unlock()
		skipped(KindExplored)
		return
	}
	now := s.now()
	poi.LastExplored = &now
	poi.UpdatedAt = now
	s.mu.Unlock()

	s.committed(KindExplored, systemID, poiID, nil)
}

func (s *Store) ensureSystemLocked(systemID string) *model.System {
	sys, ok := s.galaxy.Systems[systemID]
	if !ok {
		sys = &model.System{ID: systemID, POIs: make(map[string]*model.POI)}
		s.galaxy.Systems[systemID] = sys
	}
	if sys.POIs == nil {
		sys.POIs = make(map[string]*model.POI)
	}
	return sys
}

func (s *Store) lookupPOILocked(systemID, poiID string) (*model.POI, bool) {
	sys, ok := s.galaxy.Systems[systemID]
	if !ok {
		return nil, false
	}
	poi, ok := sys.POIs[poiID]
	return poi, ok
}

func findMarket(poi *model.POI, itemID string) *model.MarketRecord {
	for i := range poi.Market {
		if poi.Market[i].ItemID == itemID {
			return &poi.Market[i]
		}
	}
	return nil
}
