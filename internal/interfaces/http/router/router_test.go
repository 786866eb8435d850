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

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))

	assert.Equal(t, "v2", r.apiVersion)
}

func TestRouterRegister(t *testing.T) {
	r := NewRouter(gin.New())
	r.Register(NewDomainGroup("inventory", "/inventory"))

	assert.Len(t, r.registrars, 1)
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAPIVersion("v1"))

	group := NewDomainGroup("inventory", "/inventory")
	group.GET("/records", func(c *gin.Context) {
		c.String(http.StatusOK, "records")
	})

	r.Register(group)
	r.Setup()

	w := serve(engine, "GET", "/api/v1/inventory/records")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "records", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("inventory", "/inventory")
		assert.Equal(t, "inventory", g.Name())
		assert.Equal(t, "/inventory", g.Prefix())
	})

	type verbCase struct {
		name     string
		register func(g *DomainGroup)
		method   string
		path     string
		want     int
	}

	cases := []verbCase{
		{
			name: "GET",
			register: func(g *DomainGroup) {
				g.GET("/records", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
			},
			method: "GET", path: "/api/v1/inventory/records", want: http.StatusOK,
		},
		{
			name: "POST",
			register: func(g *DomainGroup) {
				g.POST("/records", func(c *gin.Context) { c.String(http.StatusCreated, "created") })
			},
			method: "POST", path: "/api/v1/inventory/records", want: http.StatusCreated,
		},
		{
			name: "PUT",
			register: func(g *DomainGroup) {
				g.PUT("/records/:id", func(c *gin.Context) { c.String(http.StatusOK, "updated") })
			},
			method: "PUT", path: "/api/v1/inventory/records/itm-42", want: http.StatusOK,
		},
		{
			name: "PATCH",
			register: func(g *DomainGroup) {
				g.PATCH("/records/:id/status", func(c *gin.Context) { c.String(http.StatusOK, "patched") })
			},
			method: "PATCH", path: "/api/v1/inventory/records/itm-42/status", want: http.StatusOK,
		},
		{
			name: "DELETE",
			register: func(g *DomainGroup) {
				g.DELETE("/records/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
			},
			method: "DELETE", path: "/api/v1/inventory/records/itm-42", want: http.StatusNoContent,
		},
	}

	for _, tc := range cases {
		t.Run("registers "+tc.name+" route", func(t *testing.T) {
			engine := gin.New()
			g := NewDomainGroup("inventory", "/inventory")
			tc.register(g)

			g.RegisterRoutes(engine.Group("/api/v1"))

			w := serve(engine, tc.method, tc.path)
			assert.Equal(t, tc.want, w.Code)
		})
	}

	t.Run("applies middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("inventory", "/inventory")

		g.Use(func(c *gin.Context) {
			c.Header("X-Stock-Version", "7")
			c.Next()
		})
		g.GET("/records", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		g.RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, "GET", "/api/v1/inventory/records")
		assert.Equal(t, "7", w.Header().Get("X-Stock-Version"))
	})

	t.Run("nested subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("inventory", "/inventory")

		records := g.Group("records", "/records")
		records.GET("", func(c *gin.Context) {
			c.String(http.StatusOK, "record list")
		})

		alerts := g.Group("alerts", "/alerts")
		alerts.GET("", func(c *gin.Context) {
			c.String(http.StatusOK, "reorder alerts")
		})

		g.RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, "GET", "/api/v1/inventory/records")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "record list", w.Body.String())

		w = serve(engine, "GET", "/api/v1/inventory/alerts")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "reorder alerts", w.Body.String())
	})
}

func TestMultipleDomainGroups(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	inventory := NewDomainGroup("inventory", "/inventory")
	inventory.GET("/records", func(c *gin.Context) {
		c.String(http.StatusOK, "records")
	})

	system := NewDomainGroup("system", "/system")
	system.GET("/info", func(c *gin.Context) {
		c.String(http.StatusOK, "info")
	})

	r.Register(inventory).Register(system)
	r.Setup()

	w := serve(engine, "GET", "/api/v1/inventory/records")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "records", w.Body.String())

	w = serve(engine, "GET", "/api/v1/system/info")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "info", w.Body.String())
}

func TestChainedRegistration(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	g := NewDomainGroup("inventory", "/inventory")
	g.GET("/records", func(c *gin.Context) { c.String(http.StatusOK, "a") }).
		POST("/records/reserve", func(c *gin.Context) { c.String(http.StatusOK, "b") }).
		PUT("/records/restock", func(c *gin.Context) { c.String(http.StatusOK, "c") })

	r.Register(g).Setup()

	for _, route := range []struct {
		method string
		path   string
	}{
		{"GET", "/api/v1/inventory/records"},
		{"POST", "/api/v1/inventory/records/reserve"},
		{"PUT", "/api/v1/inventory/records/restock"},
	} {
		w := serve(engine, route.method, route.path)
		assert.Equal(t, http.StatusOK, w.Code, "route %s %s", route.method, route.path)
	}
}
