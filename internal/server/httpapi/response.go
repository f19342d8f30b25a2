// Package httpapi exposes the guest-facing HTTP surface: registration,
// event and gallery reads, the two-phase upload endpoints, and
// magic-token deletion. Routing is chi, auth is a Bearer guest JWT.
package httpapi

import (
	"encoding/json"
	"net/http"
)

// errorBody is the JSON shape of failed requests.
type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}
