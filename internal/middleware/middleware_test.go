package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/foodgram/backend/internal/policy"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubResolver struct {
	token string
	p     policy.Principal
}

func (s stubResolver) ResolvePrincipal(_ context.Context, token string) (policy.Principal, error) {
	if token != s.token {
		return policy.Anonymous(), errors.New("bad token")
	}
	return s.p, nil
}

func newEngine(resolver PrincipalResolver, handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(), Authenticate(resolver))
	handlers = append(handlers, func(c *gin.Context) {
		p := PrincipalFrom(c)
		c.JSON(http.StatusOK, gin.H{"authenticated": p.Authenticated, "username": p.Username})
	})
	r.Any("/resource", handlers...)
	return r
}

func serve(r http.Handler, method, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/resource", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	alice := policy.Principal{ID: uuid.New(), Username: "alice", Authenticated: true}
	r := newEngine(stubResolver{token: "good", p: alice})

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"no header is anonymous", "", http.StatusOK, `"authenticated":false`},
		{"bearer token", "Bearer good", http.StatusOK, `"username":"alice"`},
		{"token scheme", "Token good", http.StatusOK, `"username":"alice"`},
		{"invalid token", "Bearer bad", http.StatusUnauthorized, `"unauthorized"`},
		{"unknown scheme", "Basic good", http.StatusUnauthorized, `"unauthorized"`},
		{"missing token", "Bearer", http.StatusUnauthorized, `"unauthorized"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, http.MethodGet, tt.header)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestRequirePermission(t *testing.T) {
	e := policy.MustNewEnforcer()
	alice := policy.Principal{ID: uuid.New(), Username: "alice", Authenticated: true}
	r := newEngine(stubResolver{token: "good", p: alice}, RequirePermission(policy.NewReadOnlyOrAdminWrite(e)))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "").Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "Bearer good").Code)

	w := serve(r, http.MethodPost, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "credentials were not provided")

	w = serve(r, http.MethodPost, "Bearer good")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "do not have permission")
}

func TestRecoveryReturnsJSON(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal","message":"internal server error"}`, w.Body.String())
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(), Metrics())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000"}))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
