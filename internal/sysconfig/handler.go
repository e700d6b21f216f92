package sysconfig

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

const defaultBrowseLimit = 100
const maxBrowseLimit = 1000

// RepositoryPort defines data access methods for settings and raw tables.
type RepositoryPort interface {
	ListSettings(ctx context.Context) ([]Setting, error)
	GetSetting(ctx context.Context, key string) (*Setting, error)
	UpsertSetting(ctx context.Context, key, value string, editorID int64) (*Setting, error)
	ListTables(ctx context.Context) ([]TableSummary, error)
	BrowseTable(ctx context.Context, table string, limit int) (*TableRows, error)
}

// Handler wires system configuration and raw table browser endpoints.
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

// MountRoutes registers configuration routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Authenticate)
		r.With(h.mw.Require(access.ResourceSystemConfig, access.ActionView, nil)).Get("/settings", h.listSettings)
		r.With(h.mw.Require(access.ResourceSystemConfig, access.ActionView, nil)).Get("/settings/{key}", h.getSetting)
		r.With(h.mw.Require(access.ResourceSystemConfig, access.ActionEdit, nil)).Put("/settings/{key}", h.putSetting)
		r.With(h.mw.Require(access.ResourceDatabase, access.ActionView, nil)).Get("/tables", h.listTables)
		r.With(h.mw.Require(access.ResourceDatabase, access.ActionView, nil)).Get("/tables/{name}", h.browseTable)
	})
}

type settingResponse struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description,omitempty"`
	UpdatedBy   int64     `json:"updatedBy,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toResponse(s Setting) settingResponse {
	return settingResponse{
		Key:         s.Key,
		Value:       s.Value,
		Description: s.Description,
		UpdatedBy:   s.UpdatedBy,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (h *Handler) listSettings(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.ListSettings(r.Context())
	if err != nil {
		h.logger.Error("list settings", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]settingResponse, 0, len(list))
	for _, s := range list {
		out = append(out, toResponse(s))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) getSetting(w http.ResponseWriter, r *http.Request) {
	setting, err := h.repo.GetSetting(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*setting))
}

type putSettingRequest struct {
	Value string `json:"value" validate:"required"`
}

func (h *Handler) putSetting(w http.ResponseWriter, r *http.Request) {
	var req putSettingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	p := access.PrincipalFromContext(r.Context())
	setting, err := h.repo.UpsertSetting(r.Context(), chi.URLParam(r, "key"), req.Value, p.ID)
	if err != nil {
		h.logger.Error("put setting", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*setting))
}

func (h *Handler) listTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.repo.ListTables(r.Context())
	if err != nil {
		h.logger.Error("list tables", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tables)
}

func (h *Handler) browseTable(w http.ResponseWriter, r *http.Request) {
	limit := defaultBrowseLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxBrowseLimit {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "limit must be between 1 and 1000")
			return
		}
		limit = parsed
	}
	result, err := h.repo.BrowseTable(r.Context(), chi.URLParam(r, "name"), limit)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}
