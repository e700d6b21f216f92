package orgs

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/brightmark-io/brightmark/internal/access"
	"github.com/brightmark-io/brightmark/internal/platform/httpx"
)

// Handler wires organization management endpoints. Every route requires the
// organization management capability; org admins reach their own org through
// the account endpoints instead.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	mw        access.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw access.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		mw:        mw,
		validator: validator.New(),
	}
}

// MountRoutes registers organization routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Authenticate)
		r.With(h.mw.Require(access.ResourceOrganizations, access.ActionView, nil)).Get("/", h.listOrganizations)
		r.With(h.mw.Require(access.ResourceOrganizations, access.ActionCreate, nil)).Post("/", h.createOrganization)
		r.With(h.mw.Require(access.ResourceOrganizations, access.ActionView, nil)).Get("/{id}", h.getOrganization)
		r.With(h.mw.Require(access.ResourceOrganizations, access.ActionUpdate, nil)).Put("/{id}", h.updateOrganization)
		r.With(h.mw.Require(access.ResourceOrganizations, access.ActionDelete, nil)).Delete("/{id}", h.deleteOrganization)
	})
}

type organizationResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Domain    string    `json:"domain,omitempty"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toResponse(org Organization) organizationResponse {
	return organizationResponse{
		ID:        org.ID,
		Name:      org.Name,
		Domain:    org.Domain,
		IsActive:  org.IsActive,
		CreatedAt: org.CreatedAt,
		UpdatedAt: org.UpdatedAt,
	}
}

func (h *Handler) listOrganizations(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list organizations", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]organizationResponse, 0, len(list))
	for _, org := range list {
		out = append(out, toResponse(org))
	}
	httpx.JSON(w, http.StatusOK, out)
}

type createOrganizationRequest struct {
	Name   string `json:"name" validate:"required"`
	Domain string `json:"domain"`
}

func (h *Handler) createOrganization(w http.ResponseWriter, r *http.Request) {
	var req createOrganizationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	org, err := h.service.Create(r.Context(), CreateOrganizationInput{Name: req.Name, Domain: req.Domain})
	if err != nil {
		h.logger.Error("create organization", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(*org))
}

func (h *Handler) getOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*org))
}

type updateOrganizationRequest struct {
	Name     string `json:"name" validate:"required"`
	Domain   string `json:"domain"`
	IsActive bool   `json:"isActive"`
}

func (h *Handler) updateOrganization(w http.ResponseWriter, r *http.Request) {
	var req updateOrganizationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	org, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), UpdateOrganizationInput{
		Name:     req.Name,
		Domain:   req.Domain,
		IsActive: req.IsActive,
	})
	if err != nil {
		h.logger.Error("update organization", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*org))
}

func (h *Handler) deleteOrganization(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.logger.Error("delete organization", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
