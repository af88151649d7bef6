package admin

import (
	"net/http"

	"ADMINKA1.0/internal/models/domainErrors"
	"ADMINKA1.0/internal/mw"
)

func (i *Implementation) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := i.storage.Ping(r.Context()); err != nil {
		mw.WriteError(w, domainErrors.ErrDepUnavailable)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
