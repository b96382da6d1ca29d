package models

// SnapshotUpdateRequest represents a single queue snapshot submission
type SnapshotUpdateRequest struct {
	Department          string   `json:"department"`
	PatientsWaiting     *int     `json:"patients_waiting"`
	ActiveDoctors       *int     `json:"active_doctors"`
	AvgConsultationTime *float64 `json:"avg_consultation_time"`
	Timestamp           string   `json:"timestamp,omitempty"` // optional RFC3339
}

// Validate checks required fields and value ranges
func (r *SnapshotUpdateRequest) Validate() []string {
	var missing []string
	if r.Department == "" {
		missing = append(missing, "department")
	}
	if r.PatientsWaiting == nil {
		missing = append(missing, "patients_waiting")
	}
	if r.ActiveDoctors == nil {
		missing = append(missing, "active_doctors")
	}
	if r.AvgConsultationTime == nil {
		missing = append(missing, "avg_consultation_time")
	}
	return missing
}
