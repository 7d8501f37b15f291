package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"PlacementHub/internal/apperr"
	"PlacementHub/internal/auth"
	"PlacementHub/internal/httpio"
	"PlacementHub/internal/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubAuthenticator map[string]*auth.Account

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (*auth.Account, error) {
	if account, ok := s[token]; ok {
		return account, nil
	}
	return nil, apperr.Unauthorized("Not authorized, token failed")
}

func newServer(t *testing.T) (*echo.Echo, stubAuthenticator) {
	t.Helper()
	gate, err := NewRoleGate(zap.NewNop())
	require.NoError(t, err)

	accounts := stubAuthenticator{
		"student-token":   {ID: primitive.NewObjectID(), Name: "Sam", Role: auth.RoleStudent},
		"recruiter-token": {ID: primitive.NewObjectID(), Name: "Rita", Role: auth.RoleRecruiter},
	}

	e := echo.New()
	e.HTTPErrorHandler = httpio.ErrorHandler(zap.NewNop())
	ok := func(c echo.Context) error {
		account, err := auth.AccountFrom(c)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"name": account.Name})
	}
	e.GET("/session", ok, RequireSession(accounts))
	e.POST("/jobs", ok, RequireSession(accounts), gate.Require(PermManageJobs))
	return e, accounts
}

func call(e *echo.Echo, method, path, authorization string) (int, map[string]string) {
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	body := map[string]string{}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec.Code, body
}

func TestRequireSession(t *testing.T) {
	e, _ := newServer(t)

	tests := []struct {
		name          string
		authorization string
		wantStatus    int
		wantMsg       string
	}{
		{"no header", "", http.StatusUnauthorized, "Not authorized, no token"},
		{"not bearer", "Basic abc", http.StatusUnauthorized, "Not authorized, no token"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "Not authorized, no token"},
		{"unknown token", "Bearer forged", http.StatusUnauthorized, "Not authorized, token failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(e, http.MethodGet, "/session", tt.authorization)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantMsg, body["msg"])
		})
	}

	status, body := call(e, http.MethodGet, "/session", "Bearer student-token")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Sam", body["name"])
}

func TestRoleGate(t *testing.T) {
	e, _ := newServer(t)

	status, body := call(e, http.MethodPost, "/jobs", "Bearer student-token")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "You do not have permission to perform this action", body["msg"])

	status, body = call(e, http.MethodPost, "/jobs", "Bearer recruiter-token")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Rita", body["name"])

	status, _ = call(e, http.MethodPost, "/jobs", "")
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRoleGateAllows(t *testing.T) {
	gate, err := NewRoleGateWithPermissions(map[Permission][]auth.Role{
		PermManageJobs:    {auth.RoleRecruiter, auth.RoleAdmin},
		"reviews:moderate": {auth.RoleAdmin},
	}, zap.NewNop())
	require.NoError(t, err)

	tests := []struct {
		role auth.Role
		perm Permission
		want bool
	}{
		{auth.RoleRecruiter, PermManageJobs, true},
		{auth.RoleAdmin, PermManageJobs, true},
		{auth.RoleStudent, PermManageJobs, false},
		{auth.RoleAdmin, "reviews:moderate", true},
		{auth.RoleRecruiter, "reviews:moderate", false},
		{auth.RoleAdmin, "unknown", false},
	}
	for _, tt := range tests {
		got, err := gate.Allows(tt.role, tt.perm)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s -> %s", tt.role, tt.perm)
	}
}

func TestSetupMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := metrics.New()
	e := echo.New()
	SetupMiddleware(e, []string{"http://localhost:5173"}, zap.New(core), m)
	e.GET("/ping/:id", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })
	e.GET("/panic", func(c echo.Context) error { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/ping/7", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:5173")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	assert.Equal(t, "http://localhost:5173", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	count, err := testutil.GatherAndCount(m.Registry(), "placementhub_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, rec.Header().Get(echo.HeaderXRequestID), entries[0].ContextMap()["request_id"])

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}
