package admin

import (
	"context"
	"net/http"
	"strings"

	"ADMINKA1.0/internal/models"
	"ADMINKA1.0/internal/models/domainErrors"
	"ADMINKA1.0/internal/mw"

	"github.com/go-chi/chi/v5"
)

type deleteQuery struct {
	IDs []string `validate:"required,min=1,max=100,dive,required"`
}

// DeleteResources - DELETE /resources/{type}?ids=a,b,c. Каждый id
// обрабатывается независимо, ошибка одного не прерывает остальные.
// Для типов с мягким удалением ставится deleted_at, остальные
// удаляются жёстко по плану каскада.
func (i *Implementation) DeleteResources(w http.ResponseWriter, r *http.Request) {
	resourceType := chi.URLParam(r, "type")
	spec, err := models.Spec(resourceType)
	if err != nil {
		mw.WriteError(w, err)
		return
	}

	q := deleteQuery{IDs: splitIDs(r.URL.Query().Get("ids"))}
	if len(q.IDs) == 0 {
		if id := r.URL.Query().Get("id"); id != "" {
			q.IDs = []string{id}
		}
	}
	if err := i.validate.Struct(q); err != nil {
		mw.WriteError(w, domainErrors.ErrValidationFailed)
		return
	}

	actorID := mw.ActorID(r.Context())
	var op func(ctx context.Context, id string) error
	if spec.SoftDelete {
		op = func(ctx context.Context, id string) error {
			_, err := i.lifecycle.SoftDelete(ctx, resourceType, id, actorID)
			return err
		}
	} else {
		op = func(ctx context.Context, id string) error {
			return i.operator.HardDelete(ctx, resourceType, id)
		}
	}

	result := i.operator.Apply(r.Context(), q.IDs, op)

	// одиночное удаление отвечает ошибкой напрямую
	if len(q.IDs) == 1 && len(result.Failed) == 1 {
		mw.WriteError(w, domainErrors.ErrorByCode(result.Failed[0].Code))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"deleted": len(result.Succeeded),
		"failed":  result.Failed,
	})
}

func splitIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
