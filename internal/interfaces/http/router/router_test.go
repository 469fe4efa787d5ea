package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubRegistrar struct {
	registered bool
}

func (s *stubRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	s.registered = true
	rg.GET("/stub", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
}

func TestRouter_Setup(t *testing.T) {
	engine := gin.New()
	reg := &stubRegistrar{}

	NewRouter(engine).Register(reg).Setup()

	assert.True(t, reg.registered)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/stub", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_Health(t *testing.T) {
	engine := gin.New()
	NewRouter(engine).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestRouter_APIVersionOption(t *testing.T) {
	engine := gin.New()
	NewRouter(engine, WithAPIVersion("v2")).Register(&stubRegistrar{}).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/stub", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
