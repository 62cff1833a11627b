// Package dataset holds the cleaned dataset between a load and any number of
// report runs. A Store is owned by the caller and passed to whatever needs
// it; there is no package-level state.
package dataset

import (
	"errors"
	"sync"
	"time"

	"github.com/ginjaninja78/flood-control-pipeline/internal/loader"
	"github.com/ginjaninja78/flood-control-pipeline/internal/types"
)

// ErrNotLoaded is returned when a snapshot is requested before any load
// succeeded.
var ErrNotLoaded = errors.New("no data loaded")

// Snapshot is an immutable view of one successful load.
type Snapshot struct {
	RunID    string
	Source   string
	Records  []types.CleanRecord
	Report   types.LoadReport
	LoadedAt time.Time
}

// Store keeps the latest successful load. It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	current *Snapshot
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Replace swaps in the result of a successful load. A nil result is ignored
// so a failed load leaves the previous dataset in place.
func (s *Store) Replace(result *loader.Result) *Snapshot {
	if result == nil {
		return s.snapshotOrNil()
	}

	snap := &Snapshot{
		RunID:    result.RunID,
		Source:   result.Source,
		Records:  result.Records,
		Report:   result.Report,
		LoadedAt: time.Now(),
	}

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()
	return snap
}

// Snapshot returns the current dataset or ErrNotLoaded.
func (s *Store) Snapshot() (*Snapshot, error) {
	if snap := s.snapshotOrNil(); snap != nil {
		return snap, nil
	}
	return nil, ErrNotLoaded
}

// Loaded reports whether a dataset is available.
func (s *Store) Loaded() bool {
	return s.snapshotOrNil() != nil
}

func (s *Store) snapshotOrNil() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}
