package galaxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/humbrol2/spacemolt-botrunner-sub000/internal/model"
)

// marketGalaxy sets up two systems with one trading hub each.
func marketGalaxy(s *Store) {
	s.RecordSystem(systemPayload("A", []string{"B"}, "a-hub"))
	s.RecordSystem(systemPayload("B", []string{"A"}, "b-hub"))
}

func TestFindBestSellPrice_PicksGalaxyWideMaximum(t *testing.T) {
	s, _, _ := newTestStore(t)
	marketGalaxy(s)

	s.RecordMarket("A", "a-hub", []any{
		marketLine("iron", map[string]any{"sell_price": 10.0, "quantity": 5.0}),
	})
	s.RecordMarket("B", "b-hub", []any{
		marketLine("iron", map[string]any{"sell_price": 14.0, "quantity": 2.0}),
	})

	hit, err := s.FindBestSellPrice("iron")
	require.NoError(t, err)
	assert.Equal(t, 14.0, hit.Price)
	assert.Equal(t, "b-hub", hit.POIID)
}

func TestFindBestBuyPrice_RequiresPositiveDemand(t *testing.T) {
	s, _, _ := newTestStore(t)
	marketGalaxy(s)

	s.RecordMarket("A", "a-hub", []any{
		marketLine("iron", map[string]any{"buy_price": 99.0}),
	})
	s.RecordMarket("B", "b-hub", []any{
		marketLine("iron", map[string]any{"buy_price": 20.0, "demand": 8.0}),
	})

	hit, err := s.FindBestBuyPrice("iron")
	require.NoError(t, err)
	assert.Equal(t, 20.0, hit.Price)
	assert.Equal(t, "b-hub", hit.POIID) // a-hub bids higher but has no demand
}

func TestFindBestPrices_UnknownItem(t *testing.T) {
	s, _, _ := newTestStore(t)
	marketGalaxy(s)

	_, err := s.FindBestSellPrice("unobtainium")
	assert.ErrorIs(t, err, model.ErrItemNotFound)
	_, err = s.FindBestBuyPrice("unobtainium")
	assert.ErrorIs(t, err, model.ErrItemNotFound)
}

func TestFindPriceSpreads_SignAndSelfPairExclusion(t *testing.T) {
	s, _, _ := newTestStore(t)
	marketGalaxy(s)

	// Item X can be bought for 10 at a-hub and sold for 25 at b-hub. Both
	// hubs also carry the opposite side at a losing margin so the self-pair
	// and negative-spread paths are exercised.
	s.RecordMarket("A", "a-hub", []any{
		marketLine("x", map[string]any{"sell_price": 10.0, "supply": 5.0, "buy_price": 9.0, "demand": 5.0}),
	})
	s.RecordMarket("B", "b-hub", []any{
		marketLine("x", map[string]any{"buy_price": 25.0, "demand": 3.0}),
	})

	spreads := s.FindPriceSpreads("")
	require.Len(t, spreads, 1)
	sp := spreads[0]
	assert.Equal(t, "x", sp.ItemID)
	assert.Equal(t, 15.0, sp.Margin)
	assert.Equal(t, "a-hub", sp.BuyFrom.POIID)
	assert.Equal(t, "b-hub", sp.SellTo.POIID)
}

func TestFindPriceSpreads_SortedByMarginDescending(t *testing.T) {
	s, _, _ := newTestStore(t)
	marketGalaxy(s)

	s.RecordMarket("A", "a-hub", []any{
		marketLine("x", map[string]any{"sell_price": 10.0, "supply": 5.0}),
		marketLine("y", map[string]any{"sell_price": 100.0, "supply": 5.0}),
	})
	s.RecordMarket("B", "b-hub", []any{
		marketLine("x", map[string]any{"buy_price": 12.0, "demand": 5.0}),
		marketLine("y", map[string]any{"buy_price": 150.0, "demand": 5.0}),
	})

	spreads := s.FindPriceSpreads("")
	require.Len(t, spreads, 2)
	assert.Equal(t, "y", spreads[0].ItemID)
	assert.Equal(t, 50.0, spreads[0].Margin)
	assert.Equal(t, "x", spreads[1].ItemID)
}

func TestFindPriceSpreads_ItemFilter(t *testing.T) {
	s, _, _ := newTestStore(t)
	marketGalaxy(s)

	s.RecordMarket("A", "a-hub", []any{
		marketLine("x", map[string]any{"sell_price": 10.0, "supply": 5.0}),
		marketLine("y", map[string]any{"sell_price": 10.0, "supply": 5.0}),
	})
	s.RecordMarket("B", "b-hub", []any{
		marketLine("x", map[string]any{"buy_price": 20.0, "demand": 5.0}),
		marketLine("y", map[string]any{"buy_price": 20.0, "demand": 5.0}),
	})

	spreads := s.FindPriceSpreads("y")
	require.Len(t, spreads, 1)
	assert.Equal(t, "y", spreads[0].ItemID)
}

func TestFindPriceSpreads_RequiresStockOnBothSides(t *testing.T) {
	s, _, _ := newTestStore(t)
	marketGalaxy(s)

	// No supply at the source, no demand at the destination.
	s.RecordMarket("A", "a-hub", []any{
		marketLine("x", map[string]any{"sell_price": 10.0}),
	})
	s.RecordMarket("B", "b-hub", []any{
		marketLine("x", map[string]any{"buy_price": 25.0}),
	})

	assert.Empty(t, s.FindPriceSpreads(""))
}

func TestAllBuyDemand_AggregatesPerItem(t *testing.T) {
	s, _, _ := newTestStore(t)
	marketGalaxy(s)

	s.RecordMarket("A", "a-hub", []any{
		marketLine("iron", map[string]any{"name": "Iron Ore", "buy_price": 8.0, "demand": 10.0}),
		marketLine("gold", map[string]any{"buy_price": 90.0, "demand": 1.0}),
	})
	s.RecordMarket("B", "b-hub", []any{
		marketLine("iron", map[string]any{"buy_price": 12.0, "demand": 5.0}),
	})

	demand := s.AllBuyDemand()
	require.Len(t, demand, 2)
	assert.Equal(t, "gold", demand[0].ItemID)
	iron := demand[1]
	assert.Equal(t, "iron", iron.ItemID)
	assert.Equal(t, "Iron Ore", iron.ItemName)
	assert.Equal(t, 15.0, iron.TotalQuantity)
	assert.Equal(t, 2, iron.Listings)
	assert.Equal(t, 12.0, iron.Best.Price)
	assert.Equal(t, "b-hub", iron.Best.POIID)
}

func TestQueriesOnEmptyStore(t *testing.T) {
	s, _, _ := newTestStore(t)

	assert.Empty(t, s.FindPriceSpreads(""))
	assert.Empty(t, s.AllBuyDemand())
	assert.Empty(t, s.KnownOreTypes())
	_, err := s.FindBestSellPrice("iron")
	assert.ErrorIs(t, err, model.ErrItemNotFound)
	_, err = s.GetSystem("anywhere")
	assert.ErrorIs(t, err, model.ErrSystemNotFound)
}
