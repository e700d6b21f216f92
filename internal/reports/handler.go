package reports

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/brightmark-io/brightmark/internal/access"
	"github.com/brightmark-io/brightmark/internal/platform/httpx"
)

// Handler wires report endpoints. Per-object checks (ownership, org scope)
// run here against the fetched row; coarse checks run in the middleware.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     *access.Guard
	mw        access.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, guard *access.Guard, mw access.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		guard:     guard,
		mw:        mw,
		validator: validator.New(),
	}
}

// createContext feeds the live report count into the demo quota rule.
func createContext(r *http.Request) *access.Context {
	p := access.PrincipalFromContext(r.Context())
	if p == nil {
		return nil
	}
	return &access.Context{CurrentReportCount: p.CurrentReportCount}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	// Shared links are public by design: the token is the credential.
	r.Get("/shared/{token}", h.getShared)

	r.Group(func(r chi.Router) {
		r.Use(h.mw.Authenticate)
		r.Get("/", h.listReports)
		r.With(h.mw.Require(access.ResourceReports, access.ActionCreate, createContext)).Post("/", h.createReport)
		r.Get("/{id}", h.getReport)
		r.Put("/{id}", h.updateReport)
		r.With(h.mw.Require(access.ResourceReports, access.ActionShare, nil)).Post("/{id}/share", h.shareReport)
	})
}

type reportResponse struct {
	ID             int64             `json:"id"`
	OwnerID        int64             `json:"ownerId"`
	OrganizationID string            `json:"organizationId,omitempty"`
	Module         access.ModuleKind `json:"module"`
	Title          string            `json:"title"`
	Summary        string            `json:"summary"`
	Shared         bool              `json:"shared"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

func toResponse(rep Report) reportResponse {
	return reportResponse{
		ID:             rep.ID,
		OwnerID:        rep.OwnerID,
		OrganizationID: rep.OrganizationID,
		Module:         rep.Module,
		Title:          rep.Title,
		Summary:        rep.Summary,
		Shared:         rep.ShareToken != "",
		CreatedAt:      rep.CreatedAt,
		UpdatedAt:      rep.UpdatedAt,
	}
}

func (h *Handler) listReports(w http.ResponseWriter, r *http.Request) {
	p := access.PrincipalFromContext(r.Context())
	caps := h.guard.Capabilities(p)
	list, err := h.service.ListVisible(r.Context(), p, caps)
	if err != nil {
		h.logger.Error("list reports", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]reportResponse, 0, len(list))
	for _, rep := range list {
		out = append(out, toResponse(rep))
	}
	httpx.JSON(w, http.StatusOK, out)
}

type createReportRequest struct {
	Module  string `json:"module" validate:"required"`
	Title   string `json:"title" validate:"required"`
	Summary string `json:"summary"`
}

func (h *Handler) createReport(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
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
	// The report must target a module the account can reach.
	decision, err := h.guard.Check(p, access.ResourceModules, access.ActionView, &access.Context{ModuleType: module})
	if err != nil {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if !decision.Allowed {
		httpx.JSON(w, http.StatusForbidden, decision.Denial)
		return
	}

	report, err := h.service.Create(r.Context(), p, module, req.Title, req.Summary)
	if err != nil {
		h.logger.Error("create report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(*report))
}

func (h *Handler) getReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.fetchChecked(w, r, access.ActionView)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*report))
}

type updateReportRequest struct {
	Title   string `json:"title" validate:"required"`
	Summary string `json:"summary"`
}

func (h *Handler) updateReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.fetchChecked(w, r, access.ActionUpdate)
	if !ok {
		return
	}
	var req updateReportRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	updated, err := h.service.Update(r.Context(), report.ID, req.Title, req.Summary)
	if err != nil {
		h.logger.Error("update report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*updated))
}

func (h *Handler) shareReport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.fetchChecked(w, r, access.ActionView)
	if !ok {
		return
	}
	token, err := h.service.Share(r.Context(), report.ID)
	if err != nil {
		h.logger.Error("share report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"shareToken": token})
}

func (h *Handler) getShared(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	report, err := h.service.GetShared(r.Context(), token)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*report))
}

// fetchChecked loads the report and runs the contextual authorization check
// for the requested action.
func (h *Handler) fetchChecked(w http.ResponseWriter, r *http.Request, action access.Action) (*Report, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid report id")
		return nil, false
	}
	report, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return nil, false
	}
	p := access.PrincipalFromContext(r.Context())
	decision, err := h.guard.Check(p, access.ResourceReports, action, CheckContext(p, report))
	if err != nil {
		if err == access.ErrUnauthenticated {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
			return nil, false
		}
		h.logger.Error("report access check", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return nil, false
	}
	if !decision.Allowed {
		httpx.JSON(w, http.StatusForbidden, decision.Denial)
		return nil, false
	}
	return report, true
}
