package server_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tracker/internal/auth"
	"tracker/internal/config"
	"tracker/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(t *testing.T) (*gin.Engine, *auth.Tokens) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()
	tokens := auth.NewTokens("test-secret", time.Hour)
	cfg := &config.Config{MaxUploadMB: 1, ProjectNotifySample: 5, NotificationsPageSize: 20}
	return server.NewRouter(cfg, logger, server.Deps{Tokens: tokens}), tokens
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	router, _ := newRouter(t)

	for _, path := range []string{"/notifications", "/tasks", "/projects", "/user"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest("GET", path, nil))
		assert.Equal(t, http.StatusUnauthorized, resp.Code, path)
	}
}

func TestRouter_StreamWithoutRedis(t *testing.T) {
	router, tokens := newRouter(t)
	token, err := tokens.Generate(uuid.NewString())
	require.NoError(t, err)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest("GET", "/notifications/stream?token="+token, nil))

	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestRouter_SwaggerDoc(t *testing.T) {
	router, _ := newRouter(t)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest("GET", "/swagger/doc.json", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "Tracker API")
	assert.Contains(t, resp.Body.String(), "/notifications/mark-all-read")
}
