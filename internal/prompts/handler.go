package prompts

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/brightmark-io/brightmark/internal/access"
	"github.com/brightmark-io/brightmark/internal/platform/httpx"
)

// RepositoryPort defines data access methods for prompts.
type RepositoryPort interface {
	ListPrompts(ctx context.Context) ([]Prompt, error)
	GetPrompt(ctx context.Context, id int64) (*Prompt, error)
	UpdatePrompt(ctx context.Context, id int64, body string, editorID int64) (*Prompt, error)
}

// Handler wires prompt template endpoints. Viewing is open to anyone with
// config visibility; editing is an engineering capability.
type Handler struct {
	logger    *slog.Logger
	repo      RepositoryPort
	mw        access.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, repo RepositoryPort, mw access.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		repo:      repo,
		mw:        mw,
		validator: validator.New(),
	}
}

// MountRoutes registers prompt routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Authenticate)
		r.With(h.mw.Require(access.ResourcePrompts, access.ActionView, nil)).Get("/", h.listPrompts)
		r.With(h.mw.Require(access.ResourcePrompts, access.ActionView, nil)).Get("/{id}", h.getPrompt)
		r.With(h.mw.Require(access.ResourcePrompts, access.ActionEdit, nil)).Put("/{id}", h.updatePrompt)
	})
}

type promptResponse struct {
	ID        int64             `json:"id"`
	Module    access.ModuleKind `json:"module"`
	Name      string            `json:"name"`
	Body      string            `json:"body"`
	UpdatedBy int64             `json:"updatedBy,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func toResponse(p Prompt) promptResponse {
	return promptResponse{
		ID:        p.ID,
		Module:    p.Module,
		Name:      p.Name,
		Body:      p.Body,
		UpdatedBy: p.UpdatedBy,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (h *Handler) listPrompts(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.ListPrompts(r.Context())
	if err != nil {
		h.logger.Error("list prompts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]promptResponse, 0, len(list))
	for _, p := range list {
		out = append(out, toResponse(p))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) getPrompt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid prompt id")
		return
	}
	prompt, err := h.repo.GetPrompt(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*prompt))
}

type updatePromptRequest struct {
	Body string `json:"body" validate:"required"`
}

func (h *Handler) updatePrompt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid prompt id")
		return
	}
	var req updatePromptRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	p := access.PrincipalFromContext(r.Context())
	prompt, err := h.repo.UpdatePrompt(r.Context(), id, req.Body, p.ID)
	if err != nil {
		h.logger.Error("update prompt", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*prompt))
}
