package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// writeSSE writes one Server-Sent Event frame (event: <kind>\ndata: <json>\n\n)
// and flushes it immediately so the client observes it without buffering.
func writeSSE(w http.ResponseWriter, flusher http.Flusher, kind string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", kind, data); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

// writeJSONError writes a JSON {"error": msg} body with the given status.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// writeJSON writes v as a JSON body with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}
