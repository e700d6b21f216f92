package modules

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/brightmark-io/brightmark/internal/access"
	"github.com/brightmark-io/brightmark/internal/platform/httpx"
	"github.com/brightmark-io/brightmark/internal/shared"
)

// ActiveModuleKey is the session slot holding the module the account is
// currently working in.
const ActiveModuleKey = "active_module"

// Handler wires module catalog and switching endpoints.
type Handler struct {
	logger    *slog.Logger
	guard     *access.Guard
	mw        access.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, guard *access.Guard, mw access.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		guard:     guard,
		mw:        mw,
		validator: validator.New(),
	}
}

// MountRoutes registers module routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Authenticate)
		r.With(h.mw.Require(access.ResourceModules, access.ActionView, nil)).Get("/", h.listModules)
		r.With(h.mw.Require(access.ResourceModules, access.ActionSwitch, nil)).Post("/switch", h.switchModule)
	})
}

type moduleListResponse struct {
	Modules []ModuleInfo      `json:"modules"`
	Active  access.ModuleKind `json:"active,omitempty"`
}

func (h *Handler) listModules(w http.ResponseWriter, r *http.Request) {
	p := access.PrincipalFromContext(r.Context())
	caps := h.guard.Capabilities(p)
	resp := moduleListResponse{Modules: Visible(caps)}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		resp.Active = access.ModuleKind(sess.Get(ActiveModuleKey))
	}
	httpx.JSON(w, http.StatusOK, resp)
}

type switchModuleRequest struct {
	Module string `json:"module" validate:"required"`
}

func (h *Handler) switchModule(w http.ResponseWriter, r *http.Request) {
	var req switchModuleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	module := access.ModuleKind(req.Module)
	if !access.ValidModule(module) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown module "+req.Module)
		return
	}

	p := access.PrincipalFromContext(r.Context())
	// Switching still requires reach into the target module.
	decision, err := h.guard.Check(p, access.ResourceModules, access.ActionView, &access.Context{ModuleType: module})
	if err != nil {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if !decision.Allowed {
		httpx.JSON(w, http.StatusForbidden, decision.Denial)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("switch module without session")
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	sess.Set(ActiveModuleKey, string(module))
	httpx.JSON(w, http.StatusOK, map[string]string{"active": string(module)})
}
