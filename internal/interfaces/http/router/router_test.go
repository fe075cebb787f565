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

func ok(body string) gin.HandlerFunc {
	return func(c *gin.Context) { c.String(http.StatusOK, body) }
}

func do(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	NewRouter(engine).
		Register(NewDomainGroup("a", "/a").GET("/ping", ok("a")), NewDomainGroup("b", "/b").GET("/ping", ok("b"))).
		Setup()

	assert.Equal(t, "a", do(engine, http.MethodGet, "/api/v1/a/ping").Body.String())
	assert.Equal(t, "b", do(engine, http.MethodGet, "/api/v1/b/ping").Body.String())
	assert.Equal(t, http.StatusNotFound, do(engine, http.MethodGet, "/a/ping").Code)
}

func TestDomainGroup(t *testing.T) {
	t.Run("methods", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("items", "/items").
			GET("", ok("list")).
			POST("", ok("create")).
			PUT("/:id", ok("put"))
		NewRouter(engine).Register(g).Setup()

		assert.Equal(t, "list", do(engine, http.MethodGet, "/api/v1/items").Body.String())
		assert.Equal(t, "create", do(engine, http.MethodPost, "/api/v1/items").Body.String())
		assert.Equal(t, "put", do(engine, http.MethodPut, "/api/v1/items/7").Body.String())
		assert.Equal(t, "items", g.Name())
		assert.Equal(t, "/items", g.Prefix())
	})

	t.Run("static segment next to a parameter", func(t *testing.T) {
		engine := gin.New()
		NewRouter(engine).Register(NewDomainGroup("r", "/renditions").
			PUT("/bulk", ok("bulk")).
			PUT("/:request_worker_id", ok("one"))).Setup()

		assert.Equal(t, "bulk", do(engine, http.MethodPut, "/api/v1/renditions/bulk").Body.String())
		assert.Equal(t, "one", do(engine, http.MethodPut, "/api/v1/renditions/42").Body.String())
	})

	t.Run("subgroups and middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("requests", "/requests").Use(func(c *gin.Context) {
			c.Header("X-Group", "requests")
			c.Next()
		})
		g.Group("workflow", "/:id").POST("/submit", func(c *gin.Context) {
			c.String(http.StatusOK, c.Param("id"))
		})
		NewRouter(engine).Register(g).Setup()

		w := do(engine, http.MethodPost, "/api/v1/requests/abc/submit")
		assert.Equal(t, "abc", w.Body.String())
		assert.Equal(t, "requests", w.Header().Get("X-Group"))
	})
}
