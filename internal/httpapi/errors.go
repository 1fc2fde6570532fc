package httpapi

import (
	"encoding/json"
	"net/http"

	"braind/internal/manager"
	"braind/internal/orchestrator"
	"braind/pkg/types"
)

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Kind: kind, Code: status})
}

// errorKind maps an orchestrator error to its taxonomy kind for the wire.
func errorKind(err error) string {
	switch {
	case orchestrator.IsClassifierUnavailable(err):
		return "classifier_unavailable"
	case orchestrator.IsInvocationFailure(err):
		return "invocation_failure"
	case orchestrator.IsRejected(err):
		return "rejected"
	case manager.IsLoadFailure(err):
		return "load_failure"
	}
	return ""
}

// errorStatus maps an orchestrator error to an HTTP status code.
func errorStatus(err error) int {
	switch {
	case orchestrator.IsClassifierUnavailable(err),
		orchestrator.IsRejected(err),
		manager.IsLoadFailure(err):
		return http.StatusServiceUnavailable
	case orchestrator.IsInvocationFailure(err):
		return http.StatusBadGateway
	case manager.IsNotInCatalog(err):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
