package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/opdpulse/opdpulse/internal/analytics/anomaly"
	"github.com/opdpulse/opdpulse/internal/analytics/predict"
	"github.com/opdpulse/opdpulse/internal/logging"
	"github.com/opdpulse/opdpulse/internal/models"
	"github.com/opdpulse/opdpulse/internal/services"
	"github.com/opdpulse/opdpulse/internal/storage"
)

// setupTestApp builds a fiber app with the full handler stack over fresh
// in-memory stores
func setupTestApp(t *testing.T) (*fiber.App, *storage.SnapshotStore, *storage.AlertStore) {
	t.Helper()
	logger := logging.NewDevelopment()

	snapshots := storage.NewSnapshotStore(logger)
	alerts := storage.NewAlertStore(logger)
	detector := anomaly.NewDetector(logger, snapshots, alerts, anomaly.DefaultConfig())
	predictor := predict.NewPredictor(logger, snapshots, predict.DefaultConfig())

	queueService := services.NewQueueService(logger, snapshots, alerts, detector, predictor, nil)
	predictionService := services.NewPredictionService(logger, snapshots, predictor,
		[]string{"General", "Ortho"})

	h := New(logger, queueService, predictionService)

	app := fiber.New()
	app.Get("/health", h.Health)
	app.Post("/v1/queue/update", h.UpdateQueue)
	app.Post("/v1/queue/upload", h.UploadCSV)
	app.Get("/v1/prediction/wait-time", h.WaitTime)
	app.Get("/v1/analytics/forecast", h.Forecast)
	app.Get("/v1/analytics/heatmap", h.Heatmap)
	app.Get("/v1/departments", h.Departments)
	app.Get("/v1/alerts", h.ListAlerts)
	app.Post("/v1/alerts/:id/resolve", h.ResolveAlert)
	app.Use(h.NotFound)

	return app, snapshots, alerts
}

func decodeBody(t *testing.T, resp io.Reader, out interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		t.Fatalf("Failed to unmarshal response %s: %v", string(body), err)
	}
}

func TestHandler_Health(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}

	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var health models.HealthResponse
	decodeBody(t, resp.Body, &health)
	if health.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got %q", health.Status)
	}
	if health.Timestamp == "" {
		t.Error("Expected non-empty timestamp")
	}
}

func TestHandler_UpdateQueue(t *testing.T) {
	app, snapshots, _ := setupTestApp(t)

	payload := `{"department":"General","patients_waiting":12,"active_doctors":3,"avg_consultation_time":10.5}`
	req := httptest.NewRequest("POST", "/v1/queue/update", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}

	if resp.StatusCode != fiber.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d: %s", resp.StatusCode, string(body))
	}

	var ack models.SnapshotUpdateResponse
	decodeBody(t, resp.Body, &ack)
	if ack.ID == "" {
		t.Error("Expected a snapshot ID")
	}
	if snapshots.Count() != 1 {
		t.Errorf("Expected 1 stored snapshot, got %d", snapshots.Count())
	}
}

func TestHandler_UpdateQueue_MissingFields(t *testing.T) {
	app, snapshots, _ := setupTestApp(t)

	payload := `{"department":"General"}`
	req := httptest.NewRequest("POST", "/v1/queue/update", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}

	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}

	var errResp models.ErrorResponse
	decodeBody(t, resp.Body, &errResp)
	if errResp.Error.Code != services.CodeInvalidRequest {
		t.Errorf("Expected code %q, got %q", services.CodeInvalidRequest, errResp.Error.Code)
	}
	if snapshots.Count() != 0 {
		t.Errorf("Expected no stored snapshots, got %d", snapshots.Count())
	}
}

func TestHandler_UpdateQueue_InvalidJSON(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest("POST", "/v1/queue/update", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}
}

func TestHandler_UploadCSV(t *testing.T) {
	app, snapshots, _ := setupTestApp(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "snapshots.csv")
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	csvData := "department,patients_waiting,active_doctors,avg_consultation_time\nGeneral,12,3,10.5\nOrtho,5,2,8.0\n"
	if _, err := part.Write([]byte(csvData)); err != nil {
		t.Fatalf("Failed to write CSV: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close writer: %v", err)
	}

	req := httptest.NewRequest("POST", "/v1/queue/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d: %s", resp.StatusCode, string(body))
	}

	var ack models.UploadResponse
	decodeBody(t, resp.Body, &ack)
	if ack.Count != 2 {
		t.Errorf("Expected count 2, got %d", ack.Count)
	}
	if snapshots.Count() != 2 {
		t.Errorf("Expected 2 stored snapshots, got %d", snapshots.Count())
	}
}

func TestHandler_UploadCSV_MissingFile(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest("POST", "/v1/queue/upload", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}
}

func TestHandler_WaitTime_NoData(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/v1/prediction/wait-time?department=Ortho", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var wait models.WaitTimeResponse
	decodeBody(t, resp.Body, &wait)
	if wait.Department != "Ortho" {
		t.Errorf("Department = %q, want Ortho", wait.Department)
	}
	if wait.PredictedWaitMinutes != 0 {
		t.Errorf("PredictedWaitMinutes = %v, want 0", wait.PredictedWaitMinutes)
	}
	if wait.Message == "" {
		t.Error("Expected a no-data message")
	}
}

func TestHandler_WaitTime_MissingDepartment(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/v1/prediction/wait-time", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", resp.StatusCode)
	}

	var errResp models.ErrorResponse
	decodeBody(t, resp.Body, &errResp)
	if errResp.Error.Code != "INVALID_REQUEST" {
		t.Errorf("Error code = %q, want INVALID_REQUEST", errResp.Error.Code)
	}
}

func TestHandler_Forecast(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/v1/analytics/forecast?department=General&hours=6", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var forecast models.ForecastResponse
	decodeBody(t, resp.Body, &forecast)
	if forecast.Hours != 6 {
		t.Errorf("Hours = %d, want 6", forecast.Hours)
	}
	if len(forecast.Slots) != 6 {
		t.Errorf("Expected 6 slots, got %d", len(forecast.Slots))
	}
}

func TestHandler_Forecast_DefaultHours(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/v1/analytics/forecast", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}

	var forecast models.ForecastResponse
	decodeBody(t, resp.Body, &forecast)
	if forecast.Hours != defaultForecastHours {
		t.Errorf("Hours = %d, want %d", forecast.Hours, defaultForecastHours)
	}
}

func TestHandler_Heatmap(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/v1/analytics/heatmap", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var rows []models.HeatmapRow
	decodeBody(t, resp.Body, &rows)
	if len(rows) != 7 {
		t.Errorf("Expected 7 day rows, got %d", len(rows))
	}
}

func TestHandler_Departments(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/v1/departments", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var board models.DepartmentBoardResponse
	decodeBody(t, resp.Body, &board)
	if len(board.Departments) != 2 {
		t.Errorf("Expected 2 departments, got %d", len(board.Departments))
	}
}

func TestHandler_Alerts(t *testing.T) {
	app, _, alerts := setupTestApp(t)

	created, err := alerts.Append(models.Alert{
		IssueType:   models.IssueStaffShortage,
		Severity:    models.SeverityHigh,
		Description: "Critical: 20 patients waiting with only 1 doctor(s).",
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/v1/alerts", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}

	var list models.AlertListResponse
	decodeBody(t, resp.Body, &list)
	if list.Count != 1 {
		t.Fatalf("Expected 1 alert, got %d", list.Count)
	}
	if list.Alerts[0].ID != created.ID {
		t.Errorf("Alert ID = %q, want %q", list.Alerts[0].ID, created.ID)
	}

	// Resolve it and confirm the listing empties
	req = httptest.NewRequest("POST", "/v1/alerts/"+created.ID+"/resolve", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/v1/alerts", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	decodeBody(t, resp.Body, &list)
	if list.Count != 0 {
		t.Errorf("Expected 0 alerts after resolve, got %d", list.Count)
	}
}

func TestHandler_ResolveAlert_NotFound(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest("POST", "/v1/alerts/no-such-id/resolve", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}

	var errResp models.ErrorResponse
	decodeBody(t, resp.Body, &errResp)
	if errResp.Error.Code != services.CodeAlertNotFound {
		t.Errorf("Expected code %q, got %q", services.CodeAlertNotFound, errResp.Error.Code)
	}
}

func TestHandler_NotFound(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest("GET", "/nope", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
}
