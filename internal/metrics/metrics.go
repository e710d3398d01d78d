// Package metrics declares the Prometheus instruments shared by the galaxy
// store and the persistence scheduler. Exposition is left to the embedding
// process; the bot runner scrapes the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ObservationsTotal counts mutations applied to the store, by kind.
	ObservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "galaxy",
			Name:      "observations_total",
			Help:      "Observations merged into the galaxy store.",
		},
		[]string{"kind"},
	)

	// ObservationsSkippedTotal counts observations (or line items) dropped
	// for missing identity keys.
	ObservationsSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "galaxy",
			Name:      "observations_skipped_total",
			Help:      "Observations dropped because an identity key was missing.",
		},
		[]string{"kind"},
	)

	// SnapshotWritesTotal counts successful snapshot writes.
	SnapshotWritesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "galaxy",
			Name:      "snapshot_writes_total",
			Help:      "Snapshot files written to disk.",
		},
	)

	// SnapshotWriteFailuresTotal counts write attempts that failed after
	// exhausting retries.
	SnapshotWriteFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "galaxy",
			Name:      "snapshot_write_failures_total",
			Help:      "Snapshot writes abandoned after exhausting retries.",
		},
	)

	// SnapshotBytes records the size of the last written snapshot.
	SnapshotBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "galaxy",
			Name:      "snapshot_bytes",
			Help:      "Size in bytes of the most recently written snapshot.",
		},
	)

	// JournalAppendsTotal counts observation journal appends.
	JournalAppendsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "galaxy",
			Name:      "journal_appends_total",
			Help:      "Observations appended to the journal.",
		},
	)
)
