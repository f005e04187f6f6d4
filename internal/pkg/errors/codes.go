package errors

import (
	"fmt"
	"net/http"
)

// Code represents an error code with HTTP status and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Message string // Error message
}

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer  = 1000
	ErrInvalidParams   = 1001
	ErrNotFound        = 1002
	ErrTooManyRequests = 1003
	ErrBadRequest      = 1004
	ErrServiceUnavail  = 1005

	// Search errors (2000-2999)
	ErrNoProviderAvailable  = 2000
	ErrProviderNotFound     = 2001
	ErrProviderUnavailable  = 2002
	ErrSearchInvalidRequest = 2003

	// Multimodal errors (3000-3999)
	ErrTranscriptionFailed  = 3000
	ErrImageAnalysisFailed  = 3001
	ErrSynthesisFailed      = 3002
	ErrNoModalityInput      = 3003
	ErrUnsupportedMediaType = 3004
	ErrAllModalitiesFailed  = 3005
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	ErrInternalServer:  {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:   {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:        {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrTooManyRequests: {ErrTooManyRequests, http.StatusTooManyRequests, "Too many requests"},
	ErrBadRequest:      {ErrBadRequest, http.StatusBadRequest, "Bad request"},
	ErrServiceUnavail:  {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},

	ErrNoProviderAvailable:  {ErrNoProviderAvailable, http.StatusBadGateway, "NoProviderAvailable"},
	ErrProviderNotFound:     {ErrProviderNotFound, http.StatusBadRequest, "Unknown provider"},
	ErrProviderUnavailable:  {ErrProviderUnavailable, http.StatusServiceUnavailable, "Provider unavailable"},
	ErrSearchInvalidRequest: {ErrSearchInvalidRequest, http.StatusBadRequest, "Invalid search request"},

	ErrTranscriptionFailed:  {ErrTranscriptionFailed, http.StatusBadGateway, "Audio transcription failed"},
	ErrImageAnalysisFailed:  {ErrImageAnalysisFailed, http.StatusBadGateway, "Image analysis failed"},
	ErrSynthesisFailed:      {ErrSynthesisFailed, http.StatusBadGateway, "Plan synthesis failed"},
	ErrNoModalityInput:      {ErrNoModalityInput, http.StatusBadRequest, "No audio or image input provided"},
	ErrUnsupportedMediaType: {ErrUnsupportedMediaType, http.StatusUnsupportedMediaType, "Unsupported media type"},
	ErrAllModalitiesFailed:  {ErrAllModalitiesFailed, http.StatusBadGateway, "All modality inputs failed to process"},
}

// GetMessage returns the message for an error code
func GetMessage(code int) string {
	if c, ok := codeMap[code]; ok {
		return c.Message
	}
	return "Unknown error"
}

// GetHTTPStatus returns the HTTP status for an error code
func GetHTTPStatus(code int) int {
	if c, ok := codeMap[code]; ok {
		return c.Status
	}
	return http.StatusInternalServerError
}

// FormatError formats an error message with optional details
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
