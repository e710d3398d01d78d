// Package factory wires the knowledge-store components from configuration.
package factory

import (
	"github.com/rs/zerolog"

	"github.com/humbrol2/spacemolt-botrunner-sub000/internal/config"
	"github.com/humbrol2/spacemolt-botrunner-sub000/internal/galaxy"
	"github.com/humbrol2/spacemolt-botrunner-sub000/internal/journal"
	"github.com/humbrol2/spacemolt-botrunner-sub000/internal/snapshot"
)

// NewKnowledgeStore builds the persistence scheduler, the optional
// observation journal and the galaxy store, loads the snapshot, and binds
// them together. The returned close function flushes pending state and
// must run on shutdown so no mutation is lost.
func NewKnowledgeStore(cfg *config.Config, log zerolog.Logger) (*galaxy.Store, *snapshot.Scheduler, func() error) {
	sched := snapshot.NewScheduler(cfg.SnapshotPath, snapshot.Config{
		Debounce:    cfg.SaveDebounce,
		MaxAttempts: cfg.SaveMaxAttempts,
		MaxBackoff:  cfg.SaveMaxBackoff,
		Pretty:      cfg.PrettySnapshot,
	}, log)

	opts := galaxy.Options{Saver: sched, Logger: log}

	// The journal is an optional debugging aid; failing to open it must not
	// keep the fleet from starting.
	var jrnl *journal.Journal
	if cfg.JournalPath != "" {
		j, err := journal.Open(cfg.JournalPath)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.JournalPath).Msg("observation journal unavailable")
		} else {
			jrnl = j
			opts.Journal = j
		}
	}

	store := galaxy.New(sched.Load(), opts)
	sched.Bind(store.Snapshot)

	closeFn := func() error {
		err := sched.Flush()
		if jrnl != nil {
			if cerr := jrnl.Close(); err == nil {
				err = cerr
			}
		}
		return err
	}
	return store, sched, closeFn
}
