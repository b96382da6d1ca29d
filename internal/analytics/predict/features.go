// Package predict implements the wait-time regression predictor and the
// hourly forecast generator.
package predict

import (
	"time"

	"github.com/opdpulse/opdpulse/internal/models"
	"github.com/opdpulse/opdpulse/internal/utils"
)

// dayOfWeek maps time.Weekday (Sunday=0) to the 0=Monday..6=Sunday convention
// used by the feature vector.
func dayOfWeek(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// Derive builds the feature vector for a single prediction input
func Derive(patientsWaiting, activeDoctors int, ts time.Time) models.FeatureVector {
	return models.FeatureVector{
		PatientsWaiting: patientsWaiting,
		ActiveDoctors:   activeDoctors,
		HourOfDay:       ts.Hour(),
		DayOfWeek:       dayOfWeek(ts),
	}
}

// DeriveTraining builds the feature vector for a historical snapshot,
// including the regression target. Zero active doctors count as one in the
// target to guard the division.
func DeriveTraining(snap models.QueueSnapshot) models.FeatureVector {
	fv := Derive(snap.PatientsWaiting, snap.ActiveDoctors, snap.Timestamp)

	doctors := snap.ActiveDoctors
	if doctors == 0 {
		doctors = 1
	}
	fv.EstimatedWait = float64(snap.PatientsWaiting) * snap.AvgConsultationTime / float64(doctors)
	return fv
}

// SimulatedLoad returns the assumed patient load for an hour of day. This is
// a fixed prototype curve standing in for per-department historical averages:
// morning peak 9-12, afternoon 13-16, evening 17-20, quiet otherwise.
func SimulatedLoad(hour int) int {
	switch {
	case hour >= 9 && hour <= 12:
		return 25
	case hour >= 13 && hour <= 16:
		return 15
	case hour >= 17 && hour <= 20:
		return 10
	default:
		return 5
	}
}

// IntensityFor classifies a predicted wait into a crowd intensity bucket
func IntensityFor(waitMinutes float64) string {
	switch {
	case waitMinutes > utils.IntensityHighMinutes:
		return "High"
	case waitMinutes > utils.IntensityMediumMinutes:
		return "Medium"
	default:
		return "Low"
	}
}
