// internal/app/features/ai/routes.go
package ai

import (
	sysauth "github.com/Thomas-Sedhom/LMS/internal/app/system/auth"
	"github.com/Thomas-Sedhom/LMS/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the AI endpoints under the base path (typically "/ai"
// from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(sysauth.RequireSignedIn(h.Log))
	r.Use(sysauth.RequireRole(h.Log, models.RoleStudent))

	r.Post("/evaluate", h.HandleEvaluate)
	r.Post("/chat", h.HandleChat)

	return r
}
