// Package api implements the Folio HTTP surface using chi.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates the site router. The two contact routes are matched by
// method and path; every other request, including other methods on those
// paths, falls through to assets.
func NewRouter(store ContactStore, notifier ContactNotifier, assets http.Handler, middlewares ...func(http.Handler) http.Handler) chi.Router {
	h := NewHandler(store, notifier)

	r := chi.NewRouter()
	r.Use(middlewares...)

	r.Post("/api/contact", h.SubmitContact)
	r.Get("/api/contacts", h.ListContacts)

	r.NotFound(assets.ServeHTTP)
	r.MethodNotAllowed(assets.ServeHTTP)

	return r
}
