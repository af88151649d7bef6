package admin

import (
	"net/http"

	"ADMINKA1.0/internal/audit"
	"ADMINKA1.0/internal/mw"

	"github.com/go-chi/chi/v5"
)

// GetResource - GET /resources/{type}/{id}, детальная витрина плюс
// история аудита. Недоступная история - это ошибка запроса, а не
// пустая история.
func (i *Implementation) GetResource(w http.ResponseWriter, r *http.Request) {
	resourceType := chi.URLParam(r, "type")
	id := chi.URLParam(r, "id")

	detail, err := i.composer.ComposeDetail(r.Context(), resourceType, id)
	if err != nil {
		mw.WriteError(w, toDomain(err))
		return
	}

	history, err := i.auditLog.List(r.Context(), resourceType, id, audit.DefaultLimit)
	if err != nil {
		mw.WriteError(w, toDomain(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"resource": detail.Resource,
		"stats":    detail.Stats,
		"children": detail.Children,
		"history":  history,
	})
}
