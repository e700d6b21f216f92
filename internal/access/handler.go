package access

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightmark-io/brightmark/internal/platform/httpx"
)

// Handler exposes the capability summary for the authenticated account.
// Consumers use it for display only; enforcement stays in the middleware.
type Handler struct {
	guard      *Guard
	middleware Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(guard *Guard, middleware Middleware) *Handler {
	return &Handler{guard: guard, middleware: middleware}
}

// MountRoutes registers the capability routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.middleware.Authenticate)
		r.Get("/me/permissions", h.showPermissions)
	})
}

type permissionsResponse struct {
	Role         Role          `json:"role"`
	Capabilities CapabilitySet `json:"capabilities"`
}

func (h *Handler) showPermissions(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFromContext(r.Context())
	if p == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	httpx.JSON(w, http.StatusOK, permissionsResponse{
		Role:         p.Role,
		Capabilities: h.guard.Capabilities(p),
	})
}
