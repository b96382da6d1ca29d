// Package anomaly detects abnormal queue behavior from the recent snapshot
// window and raises deduplicated alerts.
package anomaly

import (
	"fmt"
	"time"

	"github.com/opdpulse/opdpulse/internal/analytics"
	"github.com/opdpulse/opdpulse/internal/logging"
	"github.com/opdpulse/opdpulse/internal/models"
)

// SnapshotFeed is the recency query the detector needs from the snapshot store
type SnapshotFeed interface {
	Recent(limit int) ([]models.QueueSnapshot, error)
}

// AlertSink persists alerts with atomic cooldown deduplication: the alert is
// only created when no unresolved alert of the same issue type exists within
// the cooldown window.
type AlertSink interface {
	AppendIfNoRecent(alert models.Alert, cooldown time.Duration) (bool, error)
}

// Config holds detection thresholds
type Config struct {
	// WindowSize is how many recent snapshots one analysis pass reads
	WindowSize int

	// MinSnapshots is the minimum history required; below it the pass is a no-op
	MinSnapshots int

	// SurgeZScore is the z-score above which the latest patient count is a surge
	SurgeZScore float64

	// GrowthMinDelta is the patient increase over the last 3 snapshots that
	// counts as rapid growth
	GrowthMinDelta int

	// Cooldown is the per-issue-type suppression window
	Cooldown time.Duration
}

// DefaultConfig returns the default detection thresholds
func DefaultConfig() Config {
	return Config{
		WindowSize:     50,
		MinSnapshots:   10,
		SurgeZScore:    2.5,
		GrowthMinDelta: 10,
		Cooldown:       time.Hour,
	}
}

// Detector evaluates the three queue anomaly rules. It keeps no state between
// passes; every invocation re-reads the snapshot window.
type Detector struct {
	feed   SnapshotFeed
	alerts AlertSink
	cfg    Config
	logger *logging.Logger
}

// NewDetector creates a detector over the given feed and alert sink
func NewDetector(logger *logging.Logger, feed SnapshotFeed, alerts AlertSink, cfg Config) *Detector {
	return &Detector{
		feed:   feed,
		alerts: alerts,
		cfg:    cfg,
		logger: logger.With("component", "anomaly.detector"),
	}
}

// AnalyzeRecentData reads the recent snapshot window and evaluates all rules
// against the newest snapshot. Each rule may raise its own alert in the same
// pass. Store failures propagate unmodified; there are no retries.
func (d *Detector) AnalyzeRecentData() error {
	window, err := d.feed.Recent(d.cfg.WindowSize)
	if err != nil {
		return fmt.Errorf("failed to read snapshot window: %w", err)
	}
	if len(window) < d.cfg.MinSnapshots {
		d.logger.Debug("Insufficient history, skipping analysis",
			"snapshots", len(window), "required", d.cfg.MinSnapshots)
		return nil
	}

	latest := window[0]

	if err := d.checkCrowdSurge(window, latest); err != nil {
		return err
	}
	if err := d.checkStaffShortage(latest); err != nil {
		return err
	}
	if err := d.checkQueueGrowth(window, latest); err != nil {
		return err
	}
	return nil
}

// checkCrowdSurge flags the newest patient count when its z-score over the
// window exceeds the surge threshold.
func (d *Detector) checkCrowdSurge(window []models.QueueSnapshot, latest models.QueueSnapshot) error {
	values := make([]float64, len(window))
	for i, snap := range window {
		values[i] = float64(snap.PatientsWaiting)
	}

	mean := analytics.Mean(values)
	std := analytics.SampleStdDev(values)
	if std <= 0 {
		return nil
	}

	z := analytics.ZScore(float64(latest.PatientsWaiting), mean, std)
	if z <= d.cfg.SurgeZScore {
		return nil
	}

	return d.raise(models.IssueCrowdSurge, models.SeverityHigh,
		fmt.Sprintf("Patient count %d is significantly higher than usual (%.1f).",
			latest.PatientsWaiting, mean))
}

// checkStaffShortage flags a long queue served by fewer than 2 doctors
func (d *Detector) checkStaffShortage(latest models.QueueSnapshot) error {
	if latest.ActiveDoctors >= 2 || latest.PatientsWaiting <= 15 {
		return nil
	}

	return d.raise(models.IssueStaffShortage, models.SeverityHigh,
		fmt.Sprintf("Critical: %d patients waiting with only %d doctor(s).",
			latest.PatientsWaiting, latest.ActiveDoctors))
}

// checkQueueGrowth flags a queue that grew sharply over the last 3 snapshots
func (d *Detector) checkQueueGrowth(window []models.QueueSnapshot, latest models.QueueSnapshot) error {
	if len(window) < 3 {
		return nil
	}

	growth := window[0].PatientsWaiting - window[2].PatientsWaiting
	if growth <= d.cfg.GrowthMinDelta || latest.PatientsWaiting <= 20 {
		return nil
	}

	return d.raise(models.IssueQueueGrowth, models.SeverityMedium,
		fmt.Sprintf("Queue grew by %d patients in short interval.", growth))
}

// raise persists an alert through the deduplicating sink
func (d *Detector) raise(issueType string, severity models.Severity, description string) error {
	created, err := d.alerts.AppendIfNoRecent(models.Alert{
		Timestamp:   time.Now().UTC(),
		IssueType:   issueType,
		Severity:    severity,
		Description: description,
	}, d.cfg.Cooldown)
	if err != nil {
		return fmt.Errorf("failed to persist alert %q: %w", issueType, err)
	}
	if !created {
		d.logger.Debug("Alert suppressed by cooldown", "issue_type", issueType)
	}
	return nil
}
