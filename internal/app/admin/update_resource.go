package admin

import (
	"encoding/json"
	"net/http"

	"ADMINKA1.0/internal/models/domainErrors"
	"ADMINKA1.0/internal/mw"

	"github.com/go-chi/chi/v5"
)

// UpdateResource - PATCH /resources/{type}/{id} с частичной картой
// полей. Пишутся только реально изменившиеся поля, пустой diff - 400.
func (i *Implementation) UpdateResource(w http.ResponseWriter, r *http.Request) {
	resourceType := chi.URLParam(r, "type")
	id := chi.URLParam(r, "id")

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		mw.WriteError(w, domainErrors.ErrValidationFailed)
		return
	}

	result, err := i.lifecycle.ApplyUpdate(r.Context(), resourceType, id, fields, mw.ActorID(r.Context()))
	if err != nil {
		mw.WriteError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// RestoreResource - POST /resources/{type}/{id}/restore, снимает
// пометку мягкого удаления.
func (i *Implementation) RestoreResource(w http.ResponseWriter, r *http.Request) {
	resourceType := chi.URLParam(r, "type")
	id := chi.URLParam(r, "id")

	result, err := i.lifecycle.Restore(r.Context(), resourceType, id, mw.ActorID(r.Context()))
	if err != nil {
		mw.WriteError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
