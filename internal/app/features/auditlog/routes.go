// internal/app/features/auditlog/routes.go
package auditlog

import "github.com/go-chi/chi/v5"

// Routes mounts the activity log under the path where this router is
// mounted (typically "/audit" from bootstrap, inside RequireSignedIn).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	return r
}
