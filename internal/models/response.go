package models

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// SnapshotUpdateResponse acknowledges a single snapshot ingestion
type SnapshotUpdateResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// UploadResponse acknowledges a bulk CSV import
type UploadResponse struct {
	Message   string `json:"message"`
	Count     int    `json:"count"`
	RequestID string `json:"request_id"`
}

// WaitTimeResponse represents a wait-time prediction for a department
type WaitTimeResponse struct {
	Department           string  `json:"department"`
	PredictedWaitMinutes float64 `json:"predicted_wait_time_minutes"`
	CrowdIntensity       string  `json:"crowd_intensity"`
	Message              string  `json:"message,omitempty"`
}

// ForecastResponse represents the hourly forecast for a department
type ForecastResponse struct {
	Department string         `json:"department"`
	Hours      int            `json:"hours"`
	Slots      []ForecastSlot `json:"slots"`
}

// AlertListResponse represents the unresolved alert listing
type AlertListResponse struct {
	Alerts []Alert `json:"alerts"`
	Count  int     `json:"count"`
}

// DepartmentStatus is one row of the department board
type DepartmentStatus struct {
	Name            string  `json:"name"`
	PatientsWaiting int     `json:"patients_waiting"`
	ActiveDoctors   int     `json:"active_doctors"`
	AvgConsultation float64 `json:"avg_consultation_time"`
	WaitTime        string  `json:"wait_time"` // "25 min", "1 hr 10 min"
	CrowdStatus     string  `json:"crowd_status"`
	IsCrowded       bool    `json:"is_crowded"`
	HasData         bool    `json:"has_data"`
}

// DepartmentBoardResponse lists the status of every tracked department
type DepartmentBoardResponse struct {
	Departments []DepartmentStatus `json:"departments"`
	GeneratedAt string             `json:"generated_at"`
}

// HeatmapCell is one hour of simulated congestion for a day row
type HeatmapCell struct {
	X string `json:"x"` // "10:00"
	Y int    `json:"y"` // intensity score 0-100
}

// HeatmapRow is one day of the congestion heatmap
type HeatmapRow struct {
	Name string        `json:"name"` // "Mon" .. "Sun"
	Data []HeatmapCell `json:"data"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
