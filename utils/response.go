package utils

import (
	"encoding/json"
	"net/http"
)

type M map[string]any

// RespondWithJSON writes data as JSON with the given status. A 204 carries no body.
func RespondWithJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	if statusCode == http.StatusNoContent {
		w.WriteHeader(statusCode)
		return
	}
	body, err := json.Marshal(data)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(statusCode)
	w.Write(append(body, '\n'))
}

// Success writes the standard {status:"success", data} envelope.
func Success(w http.ResponseWriter, statusCode int, data any) {
	RespondWithJSON(w, statusCode, M{"status": "success", "data": data})
}

// SuccessList is Success with a results count, used by collection endpoints.
func SuccessList(w http.ResponseWriter, results int, data any) {
	RespondWithJSON(w, http.StatusOK, M{"status": "success", "results": results, "data": data})
}
