package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/opdpulse/opdpulse/internal/analytics/anomaly"
	"github.com/opdpulse/opdpulse/internal/analytics/predict"
	"github.com/opdpulse/opdpulse/internal/logging"
	"github.com/opdpulse/opdpulse/internal/models"
	"github.com/opdpulse/opdpulse/internal/storage"
)

// requiredCSVColumns are the columns a bulk import file must carry
var requiredCSVColumns = []string{
	"department", "patients_waiting", "active_doctors", "avg_consultation_time",
}

// QueueService handles snapshot ingestion, bulk import and alert management.
// Every ingestion path feeds the anomaly detector, and bulk imports retrain
// the predictor since they add meaningful history at once.
type QueueService struct {
	logger    *logging.Logger
	snapshots *storage.SnapshotStore
	alerts    *storage.AlertStore
	detector  *anomaly.Detector
	predictor *predict.Predictor
	archive   *storage.Archive // optional, nil disables persistence
}

// NewQueueService creates a new QueueService
func NewQueueService(
	logger *logging.Logger,
	snapshots *storage.SnapshotStore,
	alerts *storage.AlertStore,
	detector *anomaly.Detector,
	predictor *predict.Predictor,
	archive *storage.Archive,
) *QueueService {
	return &QueueService{
		logger:    logger,
		snapshots: snapshots,
		alerts:    alerts,
		detector:  detector,
		predictor: predictor,
		archive:   archive,
	}
}

// Ingest records one queue snapshot and re-runs the anomaly detector
func (s *QueueService) Ingest(ctx context.Context, req *models.SnapshotUpdateRequest) (models.QueueSnapshot, error) {
	if missing := req.Validate(); len(missing) > 0 {
		return models.QueueSnapshot{}, NewServiceErrorWithDetails(
			CodeInvalidRequest, "Missing required fields",
			map[string]interface{}{"missing": missing})
	}
	if *req.PatientsWaiting < 0 || *req.ActiveDoctors < 0 {
		return models.QueueSnapshot{}, NewServiceError(
			CodeInvalidRequest, "patients_waiting and active_doctors must be non-negative")
	}
	if *req.AvgConsultationTime <= 0 {
		return models.QueueSnapshot{}, NewServiceError(
			CodeInvalidRequest, "avg_consultation_time must be positive")
	}

	snap := models.QueueSnapshot{
		Department:          req.Department,
		PatientsWaiting:     *req.PatientsWaiting,
		ActiveDoctors:       *req.ActiveDoctors,
		AvgConsultationTime: *req.AvgConsultationTime,
	}
	if req.Timestamp != "" {
		// A malformed timestamp falls back to insertion time
		if ts, err := time.Parse(time.RFC3339, req.Timestamp); err == nil {
			snap.Timestamp = ts
		} else {
			s.logger.Debug("Ignoring unparsable snapshot timestamp",
				"timestamp", req.Timestamp, "error", err)
		}
	}

	stored, err := s.snapshots.Append(snap)
	if err != nil {
		return models.QueueSnapshot{}, NewServiceErrorWithDetails(
			CodePersistenceFailure, "Failed to store snapshot",
			map[string]interface{}{"error": err.Error()})
	}

	if err := s.detector.AnalyzeRecentData(); err != nil {
		return models.QueueSnapshot{}, NewServiceErrorWithDetails(
			CodeAnalysisFailure, "Snapshot stored but anomaly analysis failed",
			map[string]interface{}{"error": err.Error()})
	}

	return stored, nil
}

// ImportCSV ingests a bulk snapshot history. The file must carry a header
// with the required columns; an optional timestamp column (RFC3339) backfills
// historical records. After the import the predictor is retrained on the
// enlarged history and the detector re-evaluates the recent window.
func (s *QueueService) ImportCSV(ctx context.Context, r io.Reader) (*models.UploadResponse, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, NewServiceError(CodeInvalidCSV, "Failed to read CSV header")
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.ToLower(name))] = i
	}
	var missing []string
	for _, col := range requiredCSVColumns {
		if _, ok := columns[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, NewServiceErrorWithDetails(
			CodeInvalidCSV, "Missing required columns",
			map[string]interface{}{"missing": missing, "required": requiredCSVColumns})
	}

	tsColumn, hasTimestamp := columns["timestamp"]

	count := 0
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, NewServiceErrorWithDetails(
				CodeInvalidCSV, "Malformed CSV record",
				map[string]interface{}{"line": line, "error": err.Error()})
		}

		snap, err := parseCSVRecord(record, columns)
		if err != nil {
			return nil, NewServiceErrorWithDetails(
				CodeInvalidCSV, "Invalid CSV record",
				map[string]interface{}{"line": line, "error": err.Error()})
		}
		if hasTimestamp && tsColumn < len(record) {
			if ts, err := time.Parse(time.RFC3339, strings.TrimSpace(record[tsColumn])); err == nil {
				snap.Timestamp = ts
			}
		}

		if _, err := s.snapshots.Append(snap); err != nil {
			return nil, NewServiceErrorWithDetails(
				CodePersistenceFailure, "Failed to store snapshot",
				map[string]interface{}{"line": line, "error": err.Error()})
		}
		count++
	}

	// Retrain with the new historical data
	if trained, err := s.predictor.Train(); err != nil {
		s.logger.Error("Retraining after import failed", "error", err)
	} else if !trained {
		s.logger.Warn("Retraining skipped, no historical data")
	}

	if err := s.detector.AnalyzeRecentData(); err != nil {
		return nil, NewServiceErrorWithDetails(
			CodeAnalysisFailure, "Import stored but anomaly analysis failed",
			map[string]interface{}{"error": err.Error()})
	}

	s.persistArchive()

	requestID := uuid.New().String()
	s.logger.Info("CSV import completed", "count", count, "request_id", requestID)

	return &models.UploadResponse{
		Message:   "File processed successfully",
		Count:     count,
		RequestID: requestID,
	}, nil
}

// parseCSVRecord converts one CSV record into a snapshot
func parseCSVRecord(record []string, columns map[string]int) (models.QueueSnapshot, error) {
	field := func(name string) (string, error) {
		idx := columns[name]
		if idx >= len(record) {
			return "", fmt.Errorf("missing value for %s", name)
		}
		return strings.TrimSpace(record[idx]), nil
	}

	department, err := field("department")
	if err != nil {
		return models.QueueSnapshot{}, err
	}
	if department == "" {
		return models.QueueSnapshot{}, fmt.Errorf("department is empty")
	}

	patientsRaw, err := field("patients_waiting")
	if err != nil {
		return models.QueueSnapshot{}, err
	}
	patients, err := strconv.Atoi(patientsRaw)
	if err != nil || patients < 0 {
		return models.QueueSnapshot{}, fmt.Errorf("invalid patients_waiting %q", patientsRaw)
	}

	doctorsRaw, err := field("active_doctors")
	if err != nil {
		return models.QueueSnapshot{}, err
	}
	doctors, err := strconv.Atoi(doctorsRaw)
	if err != nil || doctors < 0 {
		return models.QueueSnapshot{}, fmt.Errorf("invalid active_doctors %q", doctorsRaw)
	}

	consultRaw, err := field("avg_consultation_time")
	if err != nil {
		return models.QueueSnapshot{}, err
	}
	consult, err := strconv.ParseFloat(consultRaw, 64)
	if err != nil || consult <= 0 {
		return models.QueueSnapshot{}, fmt.Errorf("invalid avg_consultation_time %q", consultRaw)
	}

	return models.QueueSnapshot{
		Department:          department,
		PatientsWaiting:     patients,
		ActiveDoctors:       doctors,
		AvgConsultationTime: consult,
	}, nil
}

// persistArchive writes the snapshot history to disk when an archive is wired
func (s *QueueService) persistArchive() {
	if s.archive == nil {
		return
	}
	snaps, err := s.snapshots.All()
	if err != nil {
		s.logger.Error("Failed to read snapshots for archiving", "error", err)
		return
	}
	if err := s.archive.Save(snaps); err != nil {
		s.logger.Error("Failed to save snapshot archive", "error", err)
	}
}

// UnresolvedAlerts lists unresolved alerts, newest first
func (s *QueueService) UnresolvedAlerts(ctx context.Context) ([]models.Alert, error) {
	alerts, err := s.alerts.ListUnresolved()
	if err != nil {
		return nil, NewServiceErrorWithDetails(
			CodePersistenceFailure, "Failed to list alerts",
			map[string]interface{}{"error": err.Error()})
	}
	return alerts, nil
}

// ResolveAlert marks an alert resolved on behalf of an external actor
func (s *QueueService) ResolveAlert(ctx context.Context, id string) error {
	found, err := s.alerts.Resolve(id)
	if err != nil {
		return NewServiceErrorWithDetails(
			CodePersistenceFailure, "Failed to resolve alert",
			map[string]interface{}{"error": err.Error()})
	}
	if !found {
		return NewServiceError(CodeAlertNotFound, fmt.Sprintf("No alert with id %s", id))
	}
	return nil
}
