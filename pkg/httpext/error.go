package httpext

import (
	"encoding/json"
	"net/http"

	"github.com/deepgram/ragbridge/pkg/logger"
)

// ErrorResponse represents a standardised JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// JsonError writes a JSON error response with the specified status code
func JsonError(w http.ResponseWriter, message string, code int) {
	JsonErrorWithDetails(w, code, ErrorResponse{Error: message})
}

// JsonErrorWithDetails writes a JSON error response carrying an extra details string,
// used when an upstream failure should be surfaced to the caller
func JsonErrorWithDetails(w http.ResponseWriter, code int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error(logger.HANDLER, "Failed to encode error response: %v", err)
		// Fallback to writing JSON body as plain text if JSON encoding fails
		http.Error(w, "{\"error\":\"Internal Server Error\"}", http.StatusInternalServerError)
		return
	}
}

// JsonResponse writes v as a JSON body with the given status code
func JsonResponse(w http.ResponseWriter, code int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}

// FailureResponse is the {success, error} body used for routing and server
// failures outside the completions API.
type FailureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// JsonFailure writes a {"success": false, "error": message} body
func JsonFailure(w http.ResponseWriter, message string, code int) {
	if err := JsonResponse(w, code, FailureResponse{Success: false, Error: message}); err != nil {
		logger.Error(logger.HANDLER, "Failed to encode failure response: %v", err)
	}
}
