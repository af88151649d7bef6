package admin

import (
	"net/http"
	"strconv"

	"ADMINKA1.0/internal/models"
	"ADMINKA1.0/internal/models/domainErrors"
	"ADMINKA1.0/internal/mw"
	"ADMINKA1.0/internal/storage"

	"github.com/go-chi/chi/v5"
)

type listQuery struct {
	Limit   int `validate:"gte=0,lte=200"`
	Deleted bool
}

// ListResources - GET /resources/{type}. Фильтры именуются по полям
// статусов самого ресурса: у заказа это status и payment_status, у
// продавца verification_status и account_status. Сводки собираются
// пачкой, по одному IN-запросу на дочернюю таблицу на всю страницу.
func (i *Implementation) ListResources(w http.ResponseWriter, r *http.Request) {
	resourceType := chi.URLParam(r, "type")
	spec, err := models.Spec(resourceType)
	if err != nil {
		mw.WriteError(w, err)
		return
	}

	q := listQuery{}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		q.Limit, err = strconv.Atoi(raw)
		if err != nil {
			mw.WriteError(w, domainErrors.ErrValidationFailed)
			return
		}
	}
	q.Deleted = r.URL.Query().Get("deleted") == "true"
	if err := i.validate.Struct(q); err != nil {
		mw.WriteError(w, domainErrors.ErrValidationFailed)
		return
	}

	filter := storage.Filter{Limit: q.Limit, OrderBy: "created_at", Desc: true}
	for field := range spec.StateFields {
		raw := r.URL.Query().Get(field)
		if raw == "" {
			continue
		}
		if !spec.ValidStateValue(field, raw) {
			mw.WriteError(w, domainErrors.ErrInvalidStatus)
			return
		}
		if filter.Eq == nil {
			filter.Eq = map[string]any{}
		}
		filter.Eq[field] = raw
	}
	// мягко удалённые строки по умолчанию скрыты
	if spec.SoftDelete && !q.Deleted {
		if filter.Eq == nil {
			filter.Eq = map[string]any{}
		}
		filter.Eq["deleted_at"] = nil
	}

	summaries, err := i.composer.ComposeList(r.Context(), resourceType, filter)
	if err != nil {
		mw.WriteError(w, toDomain(err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"items": summaries,
		"total": len(summaries),
	})
}
