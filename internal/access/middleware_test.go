package access_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/brightmark-io/brightmark/internal/access"
	"github.com/brightmark-io/brightmark/internal/shared"
	_ "github.com/brightmark-io/brightmark/testing"
)

type stubSource struct {
	principals map[int64]*access.Principal
}

func (s *stubSource) Principal(ctx context.Context, userID int64) (*access.Principal, error) {
	p, ok := s.principals[userID]
	if !ok {
		return nil, errors.New("unknown user")
	}
	return p, nil
}

func newSessionRequest(t *testing.T, userID string) *http.Request {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	manager := shared.NewSessionManager(client, "test_session", "secret", time.Hour, false)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	sess, err := manager.Load(context.Background(), req)
	require.NoError(t, err)
	if userID != "" {
		sess.SetUser(userID)
	}
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func okHandler(hit *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hit = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateRejectsAnonymous(t *testing.T) {
	mw := access.Middleware{Guard: access.NewGuard(nil), Source: &stubSource{}}
	var hit bool

	res := httptest.NewRecorder()
	mw.Authenticate(okHandler(&hit)).ServeHTTP(res, newSessionRequest(t, ""))

	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.False(t, hit)
}

func TestAuthenticateResolvesPrincipal(t *testing.T) {
	source := &stubSource{principals: map[int64]*access.Principal{
		42: {ID: 42, Role: access.RoleCustomer, ReportQuota: access.UnlimitedQuota, IsActive: true},
	}}
	mw := access.Middleware{Guard: access.NewGuard(nil), Source: source}

	var seen *access.Principal
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = access.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	res := httptest.NewRecorder()
	mw.Authenticate(inner).ServeHTTP(res, newSessionRequest(t, "42"))

	require.Equal(t, http.StatusOK, res.Code)
	require.NotNil(t, seen)
	require.Equal(t, int64(42), seen.ID)
}

func TestAuthenticateRejectsInactivePrincipal(t *testing.T) {
	source := &stubSource{principals: map[int64]*access.Principal{
		7: {ID: 7, Role: access.RoleCustomer, IsActive: false},
	}}
	mw := access.Middleware{Guard: access.NewGuard(nil), Source: source}
	var hit bool

	res := httptest.NewRecorder()
	mw.Authenticate(okHandler(&hit)).ServeHTTP(res, newSessionRequest(t, "7"))

	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.False(t, hit)
}

func TestRequireAllowsPermittedAction(t *testing.T) {
	source := &stubSource{principals: map[int64]*access.Principal{
		1: {ID: 1, Role: access.RoleAdmin, ReportQuota: access.UnlimitedQuota, IsActive: true},
	}}
	mw := access.Middleware{Guard: access.NewGuard(nil), Source: source}
	var hit bool

	res := httptest.NewRecorder()
	mw.Require(access.ResourceAdmin, access.ActionView, nil)(okHandler(&hit)).
		ServeHTTP(res, newSessionRequest(t, "1"))

	require.Equal(t, http.StatusOK, res.Code)
	require.True(t, hit)
}

func TestRequireWritesTypedDenial(t *testing.T) {
	source := &stubSource{principals: map[int64]*access.Principal{
		3: {
			ID:              3,
			Role:            access.RoleCustomer,
			AssignedModules: []access.ModuleKind{access.ModuleK12},
			ReportQuota:     access.UnlimitedQuota,
			IsActive:        true,
		},
	}}
	mw := access.Middleware{Guard: access.NewGuard(nil), Source: source}
	builder := func(r *http.Request) *access.Context {
		return &access.Context{ModuleType: access.ModuleTutoring}
	}
	var hit bool

	res := httptest.NewRecorder()
	mw.Require(access.ResourceModules, access.ActionView, builder)(okHandler(&hit)).
		ServeHTTP(res, newSessionRequest(t, "3"))

	require.Equal(t, http.StatusForbidden, res.Code)
	require.False(t, hit)

	var denial access.Denial
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &denial))
	require.Equal(t, access.CodeModuleAccessDenied, denial.Code)
	require.Equal(t, access.ModuleTutoring, denial.RequestedModule)
	require.Equal(t, []access.ModuleKind{access.ModuleK12}, denial.AssignedModules)
}
