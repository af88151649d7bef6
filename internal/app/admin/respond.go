package admin

import (
	"encoding/json"
	"net/http"

	"ADMINKA1.0/internal/tools/logger"
)

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Logger.Warn("failed to write response", "err", err)
	}
}
