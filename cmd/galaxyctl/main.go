package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/humbrol2/spacemolt-botrunner-sub000/internal/config"
	"github.com/humbrol2/spacemolt-botrunner-sub000/internal/factory"
	"github.com/humbrol2/spacemolt-botrunner-sub000/internal/galaxy"
	"github.com/humbrol2/spacemolt-botrunner-sub000/internal/logger"
)

var (
	snapshotFlag string
	rootCmd      = &cobra.Command{
		Use:   "galaxyctl",
		Short: "Inspect and query a fleet's galaxy knowledge snapshot",
	}
)

// openStore loads the snapshot read-only. Queries never mutate, so the
// scheduler's debounce machinery stays idle and close is a no-op flush.
func openStore() (*galaxy.Store, func() error, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, err
	}
	if snapshotFlag != "" {
		cfg.SnapshotPath = snapshotFlag
	}
	cfg.JournalPath = ""

	log := logger.NewCLI("galaxyctl")
	store, _, closeFn := factory.NewKnowledgeStore(cfg, log)
	return store, closeFn, nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&snapshotFlag, "snapshot", "s", "", "Snapshot file path (default from SPACEMOLT_ env)")

	rootCmd.AddCommand(
		systemsCmd(),
		poiCmd(),
		routeCmd(),
		nearestBaseCmd(),
		oresCmd(),
		bestPriceCmd(),
		spreadsCmd(),
		demandCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
