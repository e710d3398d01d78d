package galaxy

import (
	"encoding/json"
	"strconv"
	"strings"
)

// The game API renames fields between endpoints and versions, so every
// logical field is read through an ordered alias list: first present key
// wins, absence falls back to the previously stored value or the zero
// value. Keep the tables here, not scattered at call sites.
var (
	systemIDAliases   = []string{"id", "system_id", "symbol", "system"}
	systemNameAliases = []string{"name", "system_name", "display_name"}
	securityAliases   = []string{"security", "security_level", "security_status"}

	connListAliases     = []string{"connections", "links", "gates", "neighbors"}
	connTargetAliases   = []string{"id", "system_id", "symbol", "target", "destination"}
	connNameAliases     = []string{"name", "system_name"}
	connFuelAliases     = []string{"fuel_cost", "jump_cost", "fuel"}
	connDistanceAliases = []string{"distance", "dist"}

	poiListAliases    = []string{"pois", "points_of_interest", "waypoints", "locations"}
	poiIDAliases      = []string{"id", "poi_id", "symbol", "waypoint"}
	poiNameAliases    = []string{"name", "poi_name", "display_name"}
	poiTypeAliases    = []string{"type", "poi_type", "kind"}
	hasBaseAliases    = []string{"has_base", "hasBase", "base"}
	baseObjectAliases = []string{"base", "station"}
	baseIDAliases     = []string{"base_id", "station_id"}
	baseNameAliases   = []string{"base_name", "station_name"}
	baseTypeAliases   = []string{"base_type", "station_type"}
	servicesAliases   = []string{"services", "facilities", "traits"}

	marketListAliases  = []string{"items", "listings", "goods", "market"}
	itemIDAliases      = []string{"item_id", "good_id", "symbol", "id"}
	itemNameAliases    = []string{"name", "item_name", "good_name"}
	buyPriceAliases    = []string{"buy_price", "best_buy", "purchase_price", "bid"}
	sellPriceAliases   = []string{"sell_price", "best_sell", "ask"}
	buyQuantityAliases = []string{"buy_quantity", "demand"}
	sellQtyAliases     = []string{"sell_quantity", "supply", "quantity"}

	orderListAliases  = []string{"orders", "order_book", "book"}
	orderIDAliases    = []string{"id", "order_id"}
	orderOwnerAliases = []string{"player", "player_name", "owner"}
	orderTypeAliases  = []string{"type", "order_type", "side"}
	orderPriceAliases = []string{"price", "unit_price"}
	orderQtyAliases   = []string{"quantity", "amount", "count"}

	missionListAliases   = []string{"missions", "jobs", "contracts"}
	missionIDAliases     = []string{"id", "mission_id"}
	missionTitleAliases  = []string{"title", "name"}
	missionDescAliases   = []string{"description", "desc"}
	missionTypeAliases   = []string{"type", "mission_type"}
	missionLevelAliases  = []string{"level", "min_level"}
	missionExpiryAliases = []string{"expires", "expiry", "deadline"}
	rewardAliases        = []string{"reward", "reward_credits"}
	rewardObjectAliases  = []string{"rewards", "reward"}
	rewardCreditAliases  = []string{"credits", "amount"}
	rewardItemAliases    = []string{"items", "item"}

	pirateIDAliases   = []string{"player_id"}
	pirateNameAliases = []string{"name", "player", "player_name"}

	wreckIDAliases     = []string{"id", "wreck_id"}
	wreckShipAliases   = []string{"ship_type", "ship", "type"}
	wreckTypeAliases   = []string{"wreck_type", "kind"}
	wreckPOIAliases    = []string{"poi", "poi_id", "waypoint"}
	wreckExpiryAliases = []string{"expires", "expiry"}
)

// stringField returns the first alias present with a scalar value, rendered
// as a string. Numeric ids arrive as JSON numbers often enough that they
// are formatted rather than dropped.
func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if t != "" {
				return t
			}
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		case int:
			return strconv.Itoa(t)
		case bool:
			return strconv.FormatBool(t)
		}
	}
	return ""
}

// floatField returns the first alias present with a numeric value.
func floatField(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case float64:
			return t, true
		case int:
			return float64(t), true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func intField(m map[string]any, keys ...string) (int, bool) {
	f, ok := floatField(m, keys...)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func boolField(m map[string]any, keys ...string) (bool, bool) {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case bool:
			return t, true
		case string:
			if b, err := strconv.ParseBool(t); err == nil {
				return b, true
			}
		case float64:
			return t != 0, true
		}
	}
	return false, false
}

// objectField returns the first alias present holding a nested object.
func objectField(m map[string]any, keys ...string) (map[string]any, bool) {
	for _, k := range keys {
		if obj, ok := m[k].(map[string]any); ok {
			return obj, true
		}
	}
	return nil, false
}

// objectList coerces v into a list of objects, tolerating both typed and
// raw-decoded slices. Non-object elements are dropped.
func objectList(v any) []map[string]any {
	items, ok := v.([]any)
	if !ok {
		if typed, ok := v.([]map[string]any); ok {
			return typed
		}
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		if obj, ok := it.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

// listField finds a list of objects under the first present alias key. A
// key holding a non-list value does not count as present: replacement
// semantics (connections, POIs) must not be triggered by a malformed
// scalar wiping accumulated state.
func listField(m map[string]any, keys ...string) ([]map[string]any, bool) {
	for _, k := range keys {
		switch m[k].(type) {
		case []any, []map[string]any:
			return objectList(m[k]), true
		}
	}
	return nil, false
}

// listOrNested accepts either a bare list payload or an object nesting the
// list under one of the alias keys (the market endpoint does both).
func listOrNested(payload any, keys ...string) []map[string]any {
	switch t := payload.(type) {
	case map[string]any:
		items, _ := listField(t, keys...)
		return items
	default:
		return objectList(payload)
	}
}

// stringList reads a list of scalar strings under the first present alias.
func stringList(m map[string]any, keys ...string) []string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		items, ok := v.([]any)
		if !ok {
			if typed, ok := v.([]string); ok {
				return typed
			}
			continue
		}
		out := make([]string, 0, len(items))
		for _, it := range items {
			if s, ok := it.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// orderType derives buy|sell from the reported type token. Anything that
// does not mention "buy" is a sell order.
func orderType(raw string) string {
	if strings.Contains(strings.ToLower(raw), "buy") {
		return "buy"
	}
	return "sell"
}

// missionReward extracts (credits, items) from either a flat numeric reward
// field or a structured reward object. Non-scalar item rewards are
// serialized to a display string.
func missionReward(m map[string]any) (float64, string) {
	if credits, ok := floatField(m, rewardAliases...); ok {
		return credits, ""
	}
	obj, ok := objectField(m, rewardObjectAliases...)
	if !ok {
		return 0, ""
	}
	credits, _ := floatField(obj, rewardCreditAliases...)
	items := ""
	for _, k := range rewardItemAliases {
		v, ok := obj[k]
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			items = s
			break
		}
		if raw, err := json.Marshal(v); err == nil {
			items = string(raw)
			break
		}
	}
	return credits, items
}
