package users

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/brightmark-io/brightmark/internal/access"
	"github.com/brightmark-io/brightmark/internal/platform/httpx"
)

// Handler wires account management endpoints.
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

// orgScope marks the check as org-scoped for org-admin principals so the
// evaluator consults the org-user flags instead of the global ones.
func orgScope(r *http.Request) *access.Context {
	p := access.PrincipalFromContext(r.Context())
	if p != nil && p.Role == access.RoleOrgAdmin {
		return &access.Context{IsOrgUser: true}
	}
	return nil
}

// MountRoutes registers account routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Authenticate)
		r.With(h.mw.Require(access.ResourceUsers, access.ActionView, orgScope)).Get("/", h.listUsers)
		r.With(h.mw.Require(access.ResourceUsers, access.ActionCreate, orgScope)).Post("/", h.createUser)
		r.With(h.mw.Require(access.ResourceUsers, access.ActionView, orgScope)).Get("/{id}", h.getUser)
		r.With(h.mw.Require(access.ResourceUsers, access.ActionUpdate, orgScope)).Put("/{id}", h.updateUser)
		r.With(h.mw.Require(access.ResourceUsers, access.ActionDelete, orgScope)).Delete("/{id}", h.deleteUser)
	})
}

type userResponse struct {
	ID              int64               `json:"id"`
	Email           string              `json:"email"`
	Name            string              `json:"name"`
	Role            access.Role         `json:"role"`
	AssignedModules []access.ModuleKind `json:"assignedModules"`
	ReportQuota     int                 `json:"reportQuota"`
	OrganizationID  string              `json:"organizationId,omitempty"`
	IsActive        bool                `json:"isActive"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

func toResponse(u User) userResponse {
	return userResponse{
		ID:              u.ID,
		Email:           u.Email,
		Name:            u.Name,
		Role:            u.Role,
		AssignedModules: u.AssignedModules,
		ReportQuota:     u.ReportQuota,
		OrganizationID:  u.OrganizationID,
		IsActive:        u.IsActive,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	p := access.PrincipalFromContext(r.Context())
	var (
		list []User
		err  error
	)
	if p.Role == access.RoleOrgAdmin {
		list, err = h.service.ListByOrganization(r.Context(), p.OrganizationID)
	} else {
		list, err = h.service.ListUsers(r.Context())
	}
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]userResponse, 0, len(list))
	for _, u := range list {
		out = append(out, toResponse(u))
	}
	httpx.JSON(w, http.StatusOK, out)
}

type createUserRequest struct {
	Email           string   `json:"email" validate:"required,email"`
	Name            string   `json:"name" validate:"required"`
	Password        string   `json:"password" validate:"required,min=8"`
	Role            string   `json:"role" validate:"required"`
	AssignedModules []string `json:"assignedModules" validate:"dive,required"`
	ReportQuota     int      `json:"reportQuota"`
	OrganizationID  string   `json:"organizationId"`
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	role := access.Role(req.Role)
	if !validRole(role) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown role "+req.Role)
		return
	}
	modules, ok := parseModules(req.AssignedModules)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown module in assignment")
		return
	}

	p := access.PrincipalFromContext(r.Context())
	// Org admins may only create accounts inside their own organization.
	if p.Role == access.RoleOrgAdmin {
		if req.OrganizationID == "" {
			req.OrganizationID = p.OrganizationID
		}
		if denied := h.enforceOrganization(w, p, req.OrganizationID); denied {
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("hash password", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	user, err := h.service.CreateUser(r.Context(), CreateUserInput{
		Email:           req.Email,
		Name:            req.Name,
		PasswordHash:    string(hash),
		Role:            role,
		AssignedModules: modules,
		ReportQuota:     req.ReportQuota,
		OrganizationID:  req.OrganizationID,
	})
	if err != nil {
		h.logger.Error("create user", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(*user))
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.fetchScoped(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*user))
}

type updateUserRequest struct {
	Name            string   `json:"name" validate:"required"`
	Role            string   `json:"role" validate:"required"`
	AssignedModules []string `json:"assignedModules" validate:"dive,required"`
	ReportQuota     int      `json:"reportQuota"`
	OrganizationID  string   `json:"organizationId"`
	IsActive        bool     `json:"isActive"`
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.fetchScoped(w, r)
	if !ok {
		return
	}
	var req updateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	role := access.Role(req.Role)
	if !validRole(role) {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown role "+req.Role)
		return
	}
	modules, ok := parseModules(req.AssignedModules)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown module in assignment")
		return
	}
	updated, err := h.service.UpdateUser(r.Context(), user.ID, UpdateUserInput{
		Name:            req.Name,
		Role:            role,
		AssignedModules: modules,
		ReportQuota:     req.ReportQuota,
		OrganizationID:  req.OrganizationID,
		IsActive:        req.IsActive,
	})
	if err != nil {
		h.logger.Error("update user", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(*updated))
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	user, ok := h.fetchScoped(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteUser(r.Context(), user.ID); err != nil {
		h.logger.Error("delete user", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fetchScoped loads the target account and enforces organization membership
// for org-scoped principals.
func (h *Handler) fetchScoped(w http.ResponseWriter, r *http.Request) (*User, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
		return nil, false
	}
	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return nil, false
	}
	p := access.PrincipalFromContext(r.Context())
	if p.Role == access.RoleOrgAdmin {
		if denied := h.enforceOrganization(w, p, user.OrganizationID); denied {
			return nil, false
		}
	}
	return user, true
}

// enforceOrganization writes the typed organization denial when the
// principal may not act within orgID. Returns true when the request was
// denied.
func (h *Handler) enforceOrganization(w http.ResponseWriter, p *access.Principal, orgID string) bool {
	decision, err := h.guard.CheckOrganization(p, orgID)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return true
	}
	if !decision.Allowed {
		httpx.JSON(w, http.StatusForbidden, decision.Denial)
		return true
	}
	return false
}

func validRole(role access.Role) bool {
	switch role {
	case access.RoleDeveloper, access.RoleAdmin, access.RoleOrgAdmin, access.RoleCustomer, access.RoleDemo:
		return true
	}
	return false
}

func parseModules(values []string) ([]access.ModuleKind, bool) {
	if len(values) == 0 {
		return nil, true
	}
	out := make([]access.ModuleKind, 0, len(values))
	for _, v := range values {
		m := access.ModuleKind(v)
		if !access.ValidModule(m) {
			return nil, false
		}
		out = append(out, m)
	}
	return out, true
}
