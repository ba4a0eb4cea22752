package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/skillkeeper/internal/server/apperr"
)

// errorBody is the shape of every error response.
type errorBody struct {
	Message string `json:"error_message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError classifies err and writes the status and safe message.
func writeError(w http.ResponseWriter, err error) {
	status, msg := apperr.Classify(err)
	writeJSON(w, status, errorBody{Message: msg})
}
