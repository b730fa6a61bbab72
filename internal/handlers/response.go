package handlers

import (
	"encoding/json"
	"net/http"
)

// JSONHeaders are set on every JSON response, success or error.
var JSONHeaders = map[string]string{
	"Content-Type":                "application/json",
	"Access-Control-Allow-Origin": "*",
}

// Headers returns a copy of JSONHeaders for transports that build their own
// header maps.
func Headers() map[string]string {
	h := make(map[string]string, len(JSONHeaders))
	for k, v := range JSONHeaders {
		h[k] = v
	}
	return h
}

// WriteJSON writes v as a JSON response with the standard headers.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	for k, val := range JSONHeaders {
		w.Header().Set(k, val)
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes a standardised JSON error response.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{
		"error": msg,
	})
}

// Health handles GET /health.
func Health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
