// Package services provides the business logic layer between the HTTP
// handlers and the analytics engine.
package services

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{Code: code, Message: message, Details: details}
}

// Error codes returned by the service layer
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidCSV         = "INVALID_CSV"
	CodeAlertNotFound      = "ALERT_NOT_FOUND"
	CodePersistenceFailure = "PERSISTENCE_FAILURE"
	CodeAnalysisFailure    = "ANALYSIS_FAILURE"
)
