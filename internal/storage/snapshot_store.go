// Package storage holds the in-process stores backing the analytics engine:
// the append-only snapshot feed, the alert store and the on-disk archive.
package storage

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opdpulse/opdpulse/internal/logging"
	"github.com/opdpulse/opdpulse/internal/models"
)

// SnapshotStore is the append-only queue snapshot feed. Snapshots are kept in
// insertion order; recency queries walk the slice backwards.
type SnapshotStore struct {
	mu        sync.RWMutex
	snapshots []models.QueueSnapshot
	logger    *logging.Logger
}

// NewSnapshotStore creates an empty snapshot store
func NewSnapshotStore(logger *logging.Logger) *SnapshotStore {
	return &SnapshotStore{
		snapshots: make([]models.QueueSnapshot, 0, 256),
		logger:    logger,
	}
}

// Append records a new snapshot. A missing ID or timestamp is filled in at
// insertion time. The stored snapshot is returned.
func (s *SnapshotStore) Append(snap models.QueueSnapshot) (models.QueueSnapshot, error) {
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}
	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	s.snapshots = append(s.snapshots, snap)
	total := len(s.snapshots)
	s.mu.Unlock()

	s.logger.Debug("Snapshot appended",
		"department", snap.Department,
		"patients_waiting", snap.PatientsWaiting,
		"active_doctors", snap.ActiveDoctors,
		"total", total)
	return snap, nil
}

// Recent returns up to limit snapshots, newest first
func (s *SnapshotStore) Recent(limit int) ([]models.QueueSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.snapshots)
	if limit > n {
		limit = n
	}
	out := make([]models.QueueSnapshot, limit)
	for i := 0; i < limit; i++ {
		out[i] = s.snapshots[n-1-i]
	}
	return out, nil
}

// All returns the full history in insertion order
func (s *SnapshotStore) All() ([]models.QueueSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.QueueSnapshot, len(s.snapshots))
	copy(out, s.snapshots)
	return out, nil
}

// LatestFor returns the most recent snapshot for a department, or false when
// the department has no history.
func (s *SnapshotStore) LatestFor(department string) (models.QueueSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.snapshots) - 1; i >= 0; i-- {
		if s.snapshots[i].Department == department {
			return s.snapshots[i], true, nil
		}
	}
	return models.QueueSnapshot{}, false, nil
}

// Count returns the number of stored snapshots
func (s *SnapshotStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snapshots)
}

// Restore replaces the store contents, used when loading the archive at startup
func (s *SnapshotStore) Restore(snaps []models.QueueSnapshot) {
	s.mu.Lock()
	s.snapshots = make([]models.QueueSnapshot, len(snaps))
	copy(s.snapshots, snaps)
	s.mu.Unlock()

	s.logger.Info("Snapshot store restored", "count", len(snaps))
}
