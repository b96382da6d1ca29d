package storage

import (
	"sync"
	"testing"
	"time"

	"github.com/opdpulse/opdpulse/internal/logging"
	"github.com/opdpulse/opdpulse/internal/models"
)

func newTestSnapshotStore() *SnapshotStore {
	return NewSnapshotStore(logging.NewDevelopment())
}

func TestSnapshotStore_AppendFillsIdentity(t *testing.T) {
	store := newTestSnapshotStore()

	stored, err := store.Append(models.QueueSnapshot{
		Department:          "General",
		PatientsWaiting:     10,
		ActiveDoctors:       2,
		AvgConsultationTime: 12,
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if stored.ID == "" {
		t.Error("Expected generated ID")
	}
	if stored.Timestamp.IsZero() {
		t.Error("Expected generated timestamp")
	}
	if store.Count() != 1 {
		t.Errorf("Count = %d, want 1", store.Count())
	}
}

func TestSnapshotStore_AppendKeepsExplicitTimestamp(t *testing.T) {
	store := newTestSnapshotStore()
	ts := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	stored, err := store.Append(models.QueueSnapshot{
		Department: "ENT",
		Timestamp:  ts,
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if !stored.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", stored.Timestamp, ts)
	}
}

func TestSnapshotStore_RecentNewestFirst(t *testing.T) {
	store := newTestSnapshotStore()
	for i := 1; i <= 5; i++ {
		if _, err := store.Append(models.QueueSnapshot{
			Department:      "General",
			PatientsWaiting: i,
		}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	recent, err := store.Recent(3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Expected 3 snapshots, got %d", len(recent))
	}
	for i, want := range []int{5, 4, 3} {
		if recent[i].PatientsWaiting != want {
			t.Errorf("recent[%d].PatientsWaiting = %d, want %d", i, recent[i].PatientsWaiting, want)
		}
	}
}

func TestSnapshotStore_RecentLimitAboveSize(t *testing.T) {
	store := newTestSnapshotStore()
	if _, err := store.Append(models.QueueSnapshot{Department: "General"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	recent, err := store.Recent(50)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 1 {
		t.Errorf("Expected 1 snapshot, got %d", len(recent))
	}
}

func TestSnapshotStore_LatestFor(t *testing.T) {
	store := newTestSnapshotStore()
	departments := []string{"General", "Ortho", "General"}
	for i, dept := range departments {
		if _, err := store.Append(models.QueueSnapshot{
			Department:      dept,
			PatientsWaiting: i + 1,
		}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	latest, ok, err := store.LatestFor("General")
	if err != nil {
		t.Fatalf("LatestFor failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected a snapshot for General")
	}
	if latest.PatientsWaiting != 3 {
		t.Errorf("PatientsWaiting = %d, want 3", latest.PatientsWaiting)
	}

	_, ok, err = store.LatestFor("Cardiology")
	if err != nil {
		t.Fatalf("LatestFor failed: %v", err)
	}
	if ok {
		t.Error("Expected no snapshot for Cardiology")
	}
}

func TestSnapshotStore_Restore(t *testing.T) {
	store := newTestSnapshotStore()
	if _, err := store.Append(models.QueueSnapshot{Department: "Old"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	store.Restore([]models.QueueSnapshot{
		{ID: "a", Department: "General"},
		{ID: "b", Department: "Ortho"},
	})

	if store.Count() != 2 {
		t.Fatalf("Count = %d, want 2", store.Count())
	}
	all, err := store.All()
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if all[0].ID != "a" || all[1].ID != "b" {
		t.Errorf("Restore did not preserve order: %v", all)
	}
}

func TestSnapshotStore_ConcurrentAppend(t *testing.T) {
	store := newTestSnapshotStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_, _ = store.Append(models.QueueSnapshot{Department: "General"})
				_, _ = store.Recent(10)
			}
		}()
	}
	wg.Wait()

	if store.Count() != 500 {
		t.Errorf("Count = %d, want 500", store.Count())
	}
}
