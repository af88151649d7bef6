package admin

import (
	"github.com/go-chi/chi/v5"
)

// Routes - защищённая часть API, снаружи оборачивается в mw.Auth.
func (i *Implementation) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/resources/{type}", i.ListResources)
	r.Delete("/resources/{type}", i.DeleteResources)
	r.Get("/resources/{type}/{id}", i.GetResource)
	r.Patch("/resources/{type}/{id}", i.UpdateResource)
	r.Post("/resources/{type}/{id}/restore", i.RestoreResource)

	return r
}
