package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/humbrol2/spacemolt-botrunner-sub000/internal/galaxy"
)

// printJSON renders command results to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// withStore opens the store, runs fn, and closes.
func withStore(fn func(*galaxy.Store) error) error {
	store, closeFn, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()
	return fn(store)
}

func systemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "systems",
		Short: "List every known system",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *galaxy.Store) error {
				return printJSON(s.ListSystems())
			})
		},
	}
}

func poiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "poi <systemId> <poiId>",
		Short: "Show one point of interest with its accumulated records",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *galaxy.Store) error {
				poi, err := s.GetPOI(args[0], args[1])
				if err != nil {
					return fmt.Errorf("%s/%s: %w", args[0], args[1], err)
				}
				return printJSON(poi)
			})
		},
	}
}

func routeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route <from> <to>",
		Short: "Minimum-hop route between two systems over known edges",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *galaxy.Store) error {
				path, err := s.FindRoute(args[0], args[1])
				if err != nil {
					return fmt.Errorf("%s -> %s: %w", args[0], args[1], err)
				}
				return printJSON(path)
			})
		},
	}
}

func nearestBaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "nearest-base <from>",
		Short: "Closest system containing a base, origin included",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *galaxy.Store) error {
				hit, err := s.FindNearestStationSystem(args[0])
				if err != nil {
					return fmt.Errorf("from %s: %w", args[0], err)
				}
				return printJSON(hit)
			})
		},
	}
}

func oresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ores [oreId]",
		Short: "Known ore types, or the recorded locations of one ore",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *galaxy.Store) error {
				if len(args) == 0 {
					return printJSON(s.KnownOreTypes())
				}
				return printJSON(s.FindOreLocations(args[0]))
			})
		},
	}
}

func bestPriceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "best-price <itemId>",
		Short: "Best galaxy-wide price for an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			side, _ := cmd.Flags().GetString("side")
			return withStore(func(s *galaxy.Store) error {
				var hit *galaxy.PriceHit
				var err error
				switch side {
				case "buy":
					hit, err = s.FindBestBuyPrice(args[0])
				case "sell":
					hit, err = s.FindBestSellPrice(args[0])
				default:
					return fmt.Errorf("unknown side %q (want buy or sell)", side)
				}
				if err != nil {
					return fmt.Errorf("item %s: %w", args[0], err)
				}
				return printJSON(hit)
			})
		},
	}
	cmd.Flags().String("side", "sell", "Price side: sell (player sells to market) or buy (player buys from market)")
	return cmd
}

func spreadsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spreads [itemId]",
		Short: "Profitable buy-here/sell-there pairs, best margin first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item := ""
			if len(args) == 1 {
				item = args[0]
			}
			return withStore(func(s *galaxy.Store) error {
				return printJSON(s.FindPriceSpreads(item))
			})
		},
	}
}

func demandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demand",
		Short: "Aggregated buy demand per item across all markets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(s *galaxy.Store) error {
				return printJSON(s.AllBuyDemand())
			})
		},
	}
}
