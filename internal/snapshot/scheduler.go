// Package snapshot owns the on-disk galaxy snapshot: loading it at startup
// and writing it back with debounced, coalesced writes.
package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/humbrol2/spacemolt-botrunner-sub000/internal/metrics"
	"github.com/humbrol2/spacemolt-botrunner-sub000/internal/model"
)

// Config controls write cadence and the retry policy for failed writes.
type Config struct {
	Debounce    time.Duration // delay between the first dirty mark and the write
	MaxAttempts int           // total write attempts per cycle
	MaxBackoff  time.Duration // cap on the retry backoff interval
	Pretty      bool          // indent the snapshot JSON
}

// Scheduler coalesces bursts of store mutations into single snapshot writes.
// Mutations call MarkDirty; the first mark arms a one-shot timer, later
// marks within the window piggyback on it. Flush writes immediately and is
// the shutdown path, so no mutation is ever lost to a pending timer.
type Scheduler struct {
	path   string
	cfg    Config
	log    zerolog.Logger
	source func() *model.Galaxy

	mu    sync.Mutex
	dirty bool
	timer *time.Timer

	// writeMu serializes snapshot writes. Flush acquires it even when the
	// state looks clean, so it cannot return before an in-flight
	// timer-initiated write has reached disk.
	writeMu sync.Mutex
}

// NewScheduler constructs a Scheduler for the snapshot at path. Bind must be
// called before the first MarkDirty.
func NewScheduler(path string, cfg Config, log zerolog.Logger) *Scheduler {
	if cfg.Debounce <= 0 {
		cfg.Debounce = 5 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	return &Scheduler{path: path, cfg: cfg, log: log}
}

// Bind registers the function that produces the galaxy to persist. The
// function must return a copy that is safe to serialize concurrently with
// further store mutations.
func (s *Scheduler) Bind(source func() *model.Galaxy) {
	s.source = source
}

// Load reads the snapshot file. A missing, unreadable or corrupt file is
// recoverable (the fleet re-observes the world), so Load never fails: it
// logs and returns a fresh Galaxy instead.
func (s *Scheduler) Load() *model.Galaxy {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Error().Err(err).Str("path", s.path).Msg("snapshot unreadable, starting empty")
		}
		return freshGalaxy()
	}

	var g model.Galaxy
	if err := json.Unmarshal(raw, &g); err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("snapshot corrupt, starting empty")
		return freshGalaxy()
	}
	if g.Systems == nil {
		g.Systems = make(map[string]*model.System)
	}
	if g.Version == 0 {
		g.Version = model.SnapshotVersion
	}
	if g.FleetID == "" {
		g.FleetID = uuid.NewString()
	}
	s.log.Info().Str("path", s.path).Int("systems", len(g.Systems)).Msg("snapshot loaded")
	return &g
}

func freshGalaxy() *model.Galaxy {
	g := model.NewGalaxy()
	g.FleetID = uuid.NewString()
	return g
}

// MarkDirty records that the in-memory galaxy has diverged from disk and
// arms the debounce timer if one is not already pending.
func (s *Scheduler) MarkDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = true
	if s.timer == nil {
		s.timer = time.AfterFunc(s.cfg.Debounce, s.timerFired)
	}
}

func (s *Scheduler) timerFired() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.timer = nil
	if !s.dirty {
		s.mu.Unlock()
		return
	}
	s.dirty = false
	s.mu.Unlock()

	if err := s.write(); err != nil {
		// Keep the state dirty so the next mutation re-arms a retry cycle.
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		metrics.SnapshotWriteFailuresTotal.Inc()
		s.log.Error().Stack().Err(err).Str("path", s.path).Msg("debounced snapshot write failed")
	}
}

// Flush cancels any pending timer and writes synchronously if the state is
// dirty. Safe to call repeatedly; the shutdown hook relies on it.
func (s *Scheduler) Flush() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	s.dirty = false
	s.mu.Unlock()

	if err := s.write(); err != nil {
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		metrics.SnapshotWriteFailuresTotal.Inc()
		return pkgerrors.Wrap(err, "flush snapshot")
	}
	return nil
}

// Dirty reports whether unsaved mutations are pending.
func (s *Scheduler) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// write serializes the bound galaxy and replaces the snapshot file via a
// temp-file-plus-rename so a reader never sees a half-written snapshot.
// Failed attempts are retried with exponential backoff.
func (s *Scheduler) write() error {
	if s.source == nil {
		return pkgerrors.New("scheduler not bound to a galaxy source")
	}

	g := s.source()
	g.LastSaved = time.Now().UTC()

	var raw []byte
	var err error
	if s.cfg.Pretty {
		raw, err = json.MarshalIndent(g, "", "  ")
	} else {
		raw, err = json.Marshal(g)
	}
	if err != nil {
		return pkgerrors.Wrap(err, "marshal galaxy")
	}

	exp := backoff.NewExponentialBackOff()
	exp.MaxInterval = s.cfg.MaxBackoff
	exp.MaxElapsedTime = 0
	attempt := 0
	op := func() error {
		attempt++
		if err := s.writeFile(raw); err != nil {
			s.log.Warn().Err(err).Int("attempt", attempt).Str("path", s.path).Msg("snapshot write attempt failed")
			return err
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithMaxRetries(exp, uint64(s.cfg.MaxAttempts-1))); err != nil {
		return pkgerrors.Wrap(err, "write snapshot")
	}

	metrics.SnapshotWritesTotal.Inc()
	metrics.SnapshotBytes.Set(float64(len(raw)))
	s.log.Debug().Int("bytes", len(raw)).Str("path", s.path).Msg("snapshot written")
	return nil
}

func (s *Scheduler) writeFile(raw []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
