package storage

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/opdpulse/opdpulse/internal/logging"
	"github.com/opdpulse/opdpulse/internal/models"
)

// AlertStore holds detected anomaly alerts. Deduplication is enforced here,
// inside a single critical section, so two concurrent detector passes cannot
// both create an alert for the same issue type within the cooldown window.
type AlertStore struct {
	mu     sync.Mutex
	alerts []models.Alert
	logger *logging.Logger
}

// NewAlertStore creates an empty alert store
func NewAlertStore(logger *logging.Logger) *AlertStore {
	return &AlertStore{
		alerts: make([]models.Alert, 0, 32),
		logger: logger,
	}
}

// Append stores an alert unconditionally
func (s *AlertStore) Append(alert models.Alert) (models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(alert), nil
}

func (s *AlertStore) appendLocked(alert models.Alert) models.Alert {
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now().UTC()
	}
	s.alerts = append(s.alerts, alert)
	return alert
}

// AppendIfNoRecent stores the alert unless an unresolved alert of the same
// issue type was created within the cooldown window. Returns true when the
// alert was created, false when it was suppressed.
func (s *AlertStore) AppendIfNoRecent(alert models.Alert, cooldown time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if recent := s.mostRecentUnresolvedLocked(alert.IssueType); recent != nil {
		if time.Since(recent.Timestamp) < cooldown {
			return false, nil
		}
	}

	stored := s.appendLocked(alert)
	s.logger.Info("Alert created",
		"issue_type", stored.IssueType,
		"severity", stored.Severity,
		"description", stored.Description)
	return true, nil
}

// MostRecentUnresolved returns the newest unresolved alert of the given issue
// type, or nil when none exists.
func (s *AlertStore) MostRecentUnresolved(issueType string) (*models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mostRecentUnresolvedLocked(issueType), nil
}

func (s *AlertStore) mostRecentUnresolvedLocked(issueType string) *models.Alert {
	for i := len(s.alerts) - 1; i >= 0; i-- {
		if s.alerts[i].IssueType == issueType && !s.alerts[i].IsResolved {
			found := s.alerts[i]
			return &found
		}
	}
	return nil
}

// ListUnresolved returns all unresolved alerts, newest first
func (s *AlertStore) ListUnresolved() ([]models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Alert, 0, len(s.alerts))
	for i := len(s.alerts) - 1; i >= 0; i-- {
		if !s.alerts[i].IsResolved {
			out = append(out, s.alerts[i])
		}
	}
	return out, nil
}

// Resolve marks an alert resolved. Returns false when the ID is unknown.
// Resolution belongs to an external actor; the detector only creates alerts.
func (s *AlertStore) Resolve(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.alerts {
		if s.alerts[i].ID == id {
			s.alerts[i].IsResolved = true
			return true, nil
		}
	}
	return false, nil
}

// Count returns the number of stored alerts, resolved or not
func (s *AlertStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.alerts)
}
