package access

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/brightmark-io/brightmark/internal/observability"
	"github.com/brightmark-io/brightmark/internal/platform/httpx"
	"github.com/brightmark-io/brightmark/internal/shared"
)

// PrincipalSource resolves the authenticated principal for a user id.
// Implemented by the users service.
type PrincipalSource interface {
	Principal(ctx context.Context, userID int64) (*Principal, error)
}

// ContextBuilder derives a check Context from the incoming request, e.g.
// reading a module from the URL or an organization from a route param.
type ContextBuilder func(r *http.Request) *Context

type principalContextKey struct{}

// ContextWithPrincipal stores the resolved principal in ctx.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal placed by Authenticate.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}

// Middleware wires authorization checks into the HTTP handler chain.
type Middleware struct {
	Guard   *Guard
	Source  PrincipalSource
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// Authenticate resolves the session user into a Principal and stores it in
// the request context. Requests without a usable principal get 401.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := m.resolvePrincipal(r)
		if !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), p)))
	})
}

// Require gates the wrapped handler on a single (resource, action) pair.
// The optional builder supplies per-request context fields.
func (m Middleware) Require(resource Resource, action Action, builder ContextBuilder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := PrincipalFromContext(r.Context())
			if p == nil {
				var ok bool
				p, ok = m.resolvePrincipal(r)
				if !ok {
					m.record(resource, "unauthenticated")
					httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
					return
				}
				r = r.WithContext(ContextWithPrincipal(r.Context(), p))
			}
			var checkCtx *Context
			if builder != nil {
				checkCtx = builder(r)
			}
			decision, err := m.Guard.Check(p, resource, action, checkCtx)
			if err != nil {
				if err == ErrUnauthenticated {
					m.record(resource, "unauthenticated")
					httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
					return
				}
				if m.Logger != nil {
					m.Logger.Error("access middleware", slog.Any("error", err))
				}
				m.record(resource, "error")
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}
			if !decision.Allowed {
				m.record(resource, "deny")
				httpx.JSON(w, http.StatusForbidden, decision.Denial)
				return
			}
			m.record(resource, "allow")
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) resolvePrincipal(r *http.Request) (*Principal, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return nil, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return nil, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("access parse user id", slog.String("value", raw))
		}
		return nil, false
	}
	p, err := m.Source.Principal(r.Context(), id)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("access load principal", slog.Int64("user_id", id), slog.Any("error", err))
		}
		return nil, false
	}
	if p == nil || !p.IsActive {
		return nil, false
	}
	return p, true
}

func (m Middleware) record(resource Resource, outcome string) {
	if m.Metrics != nil {
		m.Metrics.RecordAccessDecision(string(resource), outcome)
	}
}
