// Package models defines the queue analytics data model and the request and
// response types exchanged at the HTTP boundary.
package models

import "time"

// QueueSnapshot represents one observation of a department's queue state.
// Snapshots are immutable once created and are never deleted by the engine.
type QueueSnapshot struct {
	ID                  string    `json:"id"`
	Timestamp           time.Time `json:"timestamp"`
	Department          string    `json:"department"`
	PatientsWaiting     int       `json:"patients_waiting"`
	ActiveDoctors       int       `json:"active_doctors"`
	AvgConsultationTime float64   `json:"avg_consultation_time"` // minutes
}

// Severity classifies how urgent an alert is
type Severity string

const (
	SeverityLow    Severity = "Low"
	SeverityMedium Severity = "Medium"
	SeverityHigh   Severity = "High"
)

// Issue types raised by the anomaly detector
const (
	IssueCrowdSurge    = "Sudden Crowd Surge"
	IssueStaffShortage = "Severe Staff Shortage"
	IssueQueueGrowth   = "Rapid Queue Growth"
)

// Alert represents a detected queue anomaly. At most one unresolved alert of
// a given issue type exists within the configured cooldown window.
type Alert struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	IssueType   string    `json:"issue_type"`
	Severity    Severity  `json:"severity"`
	Description string    `json:"description"`
	IsResolved  bool      `json:"is_resolved"`
}

// FeatureVector is the derived predictor input. EstimatedWait is only
// populated during training, where it serves as the regression target.
type FeatureVector struct {
	PatientsWaiting int
	ActiveDoctors   int
	HourOfDay       int // 0-23
	DayOfWeek       int // 0=Monday .. 6=Sunday
	EstimatedWait   float64
}

// Values returns the input features as an ordered vector for the model
func (f FeatureVector) Values() []float64 {
	return []float64{
		float64(f.PatientsWaiting),
		float64(f.ActiveDoctors),
		float64(f.HourOfDay),
		float64(f.DayOfWeek),
	}
}

// ForecastSlot is one hour of the wait-time forecast
type ForecastSlot struct {
	Time        time.Time `json:"-"`
	TimeLabel   string    `json:"time"`
	WaitMinutes float64   `json:"wait_time"`
	Intensity   string    `json:"intensity"` // Low, Medium, High
	IsPeak      bool      `json:"is_peak"`
}
