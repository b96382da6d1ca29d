package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/opdpulse/opdpulse/internal/analytics"
	"github.com/opdpulse/opdpulse/internal/analytics/predict"
	"github.com/opdpulse/opdpulse/internal/logging"
	"github.com/opdpulse/opdpulse/internal/models"
	"github.com/opdpulse/opdpulse/internal/storage"
	"github.com/opdpulse/opdpulse/internal/utils"
)

// PredictionService answers wait-time, forecast, department board and heatmap
// queries on top of the predictor.
type PredictionService struct {
	logger      *logging.Logger
	snapshots   *storage.SnapshotStore
	predictor   *predict.Predictor
	departments []string
}

// NewPredictionService creates a new PredictionService
func NewPredictionService(
	logger *logging.Logger,
	snapshots *storage.SnapshotStore,
	predictor *predict.Predictor,
	departments []string,
) *PredictionService {
	return &PredictionService{
		logger:      logger,
		snapshots:   snapshots,
		predictor:   predictor,
		departments: departments,
	}
}

// WaitTime predicts the current wait for a department from its latest
// snapshot. Departments without history report zero minutes rather than an
// error. An untrained predictor trains lazily on the first request.
func (s *PredictionService) WaitTime(ctx context.Context, department string) (*models.WaitTimeResponse, error) {
	if department == "" {
		return nil, NewServiceError(CodeInvalidRequest, "department is required")
	}

	latest, ok, err := s.snapshots.LatestFor(department)
	if err != nil {
		return nil, NewServiceErrorWithDetails(
			CodePersistenceFailure, "Failed to query department snapshot",
			map[string]interface{}{"error": err.Error()})
	}
	if !ok {
		return &models.WaitTimeResponse{
			Department:     department,
			CrowdIntensity: "Low",
			Message:        "No data for department",
		}, nil
	}

	if s.predictor.State() == predict.StateUntrained {
		if _, err := s.predictor.Train(); err != nil {
			return nil, NewServiceErrorWithDetails(
				CodePersistenceFailure, "Failed to train predictor",
				map[string]interface{}{"error": err.Error()})
		}
	}

	minutes := s.predictor.Predict(latest.PatientsWaiting, latest.ActiveDoctors)

	intensity := "Low"
	switch {
	case minutes > utils.IntensityHighMinutes:
		intensity = "High congestion"
	case minutes > utils.IntensityMediumMinutes:
		intensity = "Medium"
	}

	return &models.WaitTimeResponse{
		Department:           department,
		PredictedWaitMinutes: analytics.Round1(minutes),
		CrowdIntensity:       intensity,
	}, nil
}

// Forecast produces the hourly wait forecast for a department
func (s *PredictionService) Forecast(ctx context.Context, department string, hours int) (*models.ForecastResponse, error) {
	slots, err := s.predictor.PredictFutureSlots(department, hours)
	if err != nil {
		return nil, NewServiceErrorWithDetails(
			CodePersistenceFailure, "Failed to generate forecast",
			map[string]interface{}{"error": err.Error()})
	}

	return &models.ForecastResponse{
		Department: department,
		Hours:      len(slots),
		Slots:      slots,
	}, nil
}

// DepartmentBoard reports the latest state and predicted wait for every
// configured department.
func (s *PredictionService) DepartmentBoard(ctx context.Context) (*models.DepartmentBoardResponse, error) {
	board := make([]models.DepartmentStatus, 0, len(s.departments))

	for _, name := range s.departments {
		status := models.DepartmentStatus{
			Name:        name,
			WaitTime:    "0 min",
			CrowdStatus: "Low",
		}

		latest, ok, err := s.snapshots.LatestFor(name)
		if err != nil {
			return nil, NewServiceErrorWithDetails(
				CodePersistenceFailure, "Failed to query department snapshot",
				map[string]interface{}{"department": name, "error": err.Error()})
		}
		if ok {
			if s.predictor.State() == predict.StateUntrained {
				if _, err := s.predictor.Train(); err != nil {
					return nil, NewServiceErrorWithDetails(
						CodePersistenceFailure, "Failed to train predictor",
						map[string]interface{}{"error": err.Error()})
				}
			}
			wait := s.predictor.Predict(latest.PatientsWaiting, latest.ActiveDoctors)

			status.PatientsWaiting = latest.PatientsWaiting
			status.ActiveDoctors = latest.ActiveDoctors
			status.AvgConsultation = latest.AvgConsultationTime
			status.WaitTime = formatWait(wait)
			status.HasData = true

			switch {
			case wait > 45:
				status.CrowdStatus = "High"
				status.IsCrowded = true
			case wait > 25:
				status.CrowdStatus = "Medium"
			}
		}

		board = append(board, status)
	}

	return &models.DepartmentBoardResponse{
		Departments: board,
		GeneratedAt: time.Now().Format(time.RFC3339),
	}, nil
}

// formatWait renders minutes as "25 min" or "1 hr 10 min"
func formatWait(minutes float64) string {
	total := int(math.Round(minutes))
	if total < 0 {
		total = 0
	}
	if total < 60 {
		return fmt.Sprintf("%d min", total)
	}
	hrs := total / 60
	mins := total % 60
	if mins == 0 {
		return fmt.Sprintf("%d hr", hrs)
	}
	return fmt.Sprintf("%d hr %d min", hrs, mins)
}

// Heatmap returns the simulated day-by-hour congestion grid for the 9:00 to
// 17:00 service window. The scores are a fixed prototype pattern, a stand-in
// for a real per-hour aggregation over history: weekday late-morning peak,
// softer afternoon, flat weekends.
func (s *PredictionService) Heatmap(ctx context.Context) []models.HeatmapRow {
	days := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

	rows := make([]models.HeatmapRow, 0, len(days))
	for dayIdx, dayName := range days {
		row := models.HeatmapRow{Name: dayName, Data: make([]models.HeatmapCell, 0, 9)}

		for hour := 9; hour < 18; hour++ {
			intensity := 20
			if dayIdx < 5 {
				switch {
				case hour >= 10 && hour <= 12:
					intensity = 85
				case hour >= 14 && hour <= 16:
					intensity = 60
				}
			} else {
				intensity = 40
			}

			row.Data = append(row.Data, models.HeatmapCell{
				X: fmt.Sprintf("%d:00", hour),
				Y: intensity,
			})
		}
		rows = append(rows, row)
	}

	return rows
}
