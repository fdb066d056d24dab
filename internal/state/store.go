package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/five82/logdog/internal/session"
)

// Phase is the lifecycle stage of a scan.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhaseDone
	PhaseFailed
	PhaseCancelled
)

func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhaseDone:
		return "done"
	case PhaseFailed:
		return "failed"
	case PhaseCancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// recentLimit bounds the number of recently scanned files kept.
const recentLimit = 5

// Snapshot represents the latest scan status available to the UI.
type Snapshot struct {
	// Generation increments on every Begin so stale results can be ignored.
	Generation int
	Phase      Phase

	FilesDone  int
	FilesTotal int
	Folder     string
	File       string
	Matches    int

	// Recent lists the last files scanned, newest last.
	Recent []string

	Started     time.Time
	LastUpdated time.Time

	// Result is set once the scan ends. The UI owns it from then on.
	Result *session.Result
	Err    error
}

// Elapsed is the time since the scan began.
func (s Snapshot) Elapsed() time.Duration {
	if s.Started.IsZero() {
		return 0
	}
	if s.Phase == PhaseRunning {
		return time.Since(s.Started)
	}
	return s.LastUpdated.Sub(s.Started)
}

// Fraction is the completed share of planned files in [0, 1].
func (s Snapshot) Fraction() float64 {
	if s.FilesTotal <= 0 {
		if s.Phase == PhaseDone {
			return 1
		}
		return 0
	}
	return min(float64(s.FilesDone)/float64(s.FilesTotal), 1)
}

// Store coordinates the background scan and the UI.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Begin resets the status for a new scan of total files and returns its
// generation.
func (s *Store) Begin(total int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.snapshot = Snapshot{
		Generation:  s.snapshot.Generation + 1,
		Phase:       PhaseRunning,
		FilesTotal:  total,
		Started:     now,
		LastUpdated: now,
	}
	return s.snapshot.Generation
}

// Advance records progress for generation gen. Updates for an older
// generation are dropped.
func (s *Store) Advance(gen int, p session.Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.snapshot.Generation || s.snapshot.Phase != PhaseRunning {
		return
	}
	s.snapshot.FilesDone = p.FilesDone
	if p.FilesTotal > 0 {
		s.snapshot.FilesTotal = p.FilesTotal
	}
	s.snapshot.Folder = p.Folder
	s.snapshot.File = p.File
	s.snapshot.Matches += p.Matches
	s.snapshot.Recent = append(s.snapshot.Recent, p.File)
	if len(s.snapshot.Recent) > recentLimit {
		s.snapshot.Recent = cloneStrings(s.snapshot.Recent[len(s.snapshot.Recent)-recentLimit:])
	}
	s.snapshot.LastUpdated = time.Now()
}

// Finish records the outcome of generation gen.
func (s *Store) Finish(gen int, res *session.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.snapshot.Generation {
		return
	}
	s.snapshot.Result = res
	s.snapshot.Err = err
	s.snapshot.LastUpdated = time.Now()
	switch {
	case err == nil:
		s.snapshot.Phase = PhaseDone
	case errors.Is(err, context.Canceled):
		s.snapshot.Phase = PhaseCancelled
	default:
		s.snapshot.Phase = PhaseFailed
	}
}

// Snapshot returns a copy of the current status.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Recent = cloneStrings(s.snapshot.Recent)
	if s.snapshot.Err != nil {
		snap.Err = fmt.Errorf("%w", s.snapshot.Err)
	}
	return snap
}

func cloneStrings(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	dup := make([]string, len(items))
	copy(dup, items)
	return dup
}
