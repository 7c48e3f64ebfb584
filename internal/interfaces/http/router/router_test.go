package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/woodcraft/backend/docs"
	"github.com/woodcraft/backend/internal/interfaces/http/middleware"
)

const testSecret = "router-test-secret-with-32-characters"

func init() {
	gin.SetMode(gin.TestMode)
}

type registrarFunc func(rg *gin.RouterGroup)

func (f registrarFunc) RegisterRoutes(rg *gin.RouterGroup) { f(rg) }

func whoami() RouteRegistrar {
	return registrarFunc(func(rg *gin.RouterGroup) {
		rg.GET("/whoami", func(c *gin.Context) {
			c.String(http.StatusOK, middleware.GetJWTTenantID(c))
		})
	})
}

func bearer(t *testing.T, tenantID string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))},
		TenantID:         tenantID,
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return middleware.BearerPrefix + token
}

func newTestRouter(t *testing.T, ready func(context.Context) error, opts ...RouterOption) *gin.Engine {
	t.Helper()
	r, err := NewRouter(Config{
		JWT:         middleware.JWTConfig{Secret: testSecret},
		CORS:        middleware.DefaultCORSConfig(),
		MaxBodySize: 1 << 20,
		Ready:       ready,
	}, opts...)
	require.NoError(t, err)
	return r.Register("sync", whoami()).Setup()
}

func TestRouter_HealthAndReady(t *testing.T) {
	engine := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	down := newTestRouter(t, func(context.Context) error { return errors.New("db down") })
	w = httptest.NewRecorder()
	down.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRouter_APIRequiresToken(t *testing.T) {
	engine := newTestRouter(t, nil)
	tenantID := uuid.NewString()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/sync/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/whoami", nil)
	req.Header.Set(middleware.AuthHeaderKey, bearer(t, tenantID))
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tenantID, w.Body.String())
}

func TestRouter_WithAPIVersion(t *testing.T) {
	engine := newTestRouter(t, nil, WithAPIVersion("v2"))

	req := httptest.NewRequest(http.MethodGet, "/api/v2/sync/whoami", nil)
	req.Header.Set(middleware.AuthHeaderKey, bearer(t, uuid.NewString()))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_RecoversPanics(t *testing.T) {
	r, err := NewRouter(Config{JWT: middleware.JWTConfig{Secret: testSecret}})
	require.NoError(t, err)
	r.Register("boom", registrarFunc(func(rg *gin.RouterGroup) {
		rg.GET("", func(*gin.Context) { panic("kaboom") })
	}))
	engine := r.Setup()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/boom", nil)
	req.Header.Set(middleware.AuthHeaderKey, bearer(t, uuid.NewString()))
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestRouter_Swagger(t *testing.T) {
	r, err := NewRouter(Config{JWT: middleware.JWTConfig{Secret: testSecret}, Swagger: true})
	require.NoError(t, err)
	engine := r.Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"/sync/{type}/{id}"`)
	assert.Contains(t, w.Body.String(), `"/sync/{type}/bulk"`)

	off := newTestRouter(t, nil)
	w = httptest.NewRecorder()
	off.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
