package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"labquote/models"
	"labquote/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asRole stands in for Auth by planting an actor in the context.
func asRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(KeyActor, services.Actor{UserID: 1, Name: "t", Role: role})
		c.Next()
	}
}

func serve(r *gin.Engine, method, path string) int {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w.Code
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{"bearer header", "Bearer abc.def", "", "abc.def"},
		{"raw header", "abc.def", "", "abc.def"},
		{"cookie", "", "from-cookie", "from-cookie"},
		{"header wins", "Bearer h", "c", "h"},
		{"none", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: tt.cookie})
			}
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = req
			assert.Equal(t, tt.want, BearerToken(c))
		})
	}
}

func TestRequireRole(t *testing.T) {
	for role, want := range map[string]int{
		models.RoleAdmin:  http.StatusOK,
		models.RoleSales:  http.StatusForbidden,
		models.RoleViewer: http.StatusForbidden,
		"":                http.StatusForbidden,
	} {
		r := gin.New()
		r.GET("/users", asRole(role), RequireRole(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })
		assert.Equal(t, want, serve(r, http.MethodGet, "/users"), role)
	}
}

func TestReadOnlyViewers(t *testing.T) {
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	newRouter := func(role string) *gin.Engine {
		r := gin.New()
		g := r.Group("", asRole(role), ReadOnlyViewers())
		g.GET("/quotations", ok)
		g.POST("/quotations", ok)
		g.DELETE("/quotations/1", ok)
		return r
	}

	viewer := newRouter(models.RoleViewer)
	assert.Equal(t, http.StatusOK, serve(viewer, http.MethodGet, "/quotations"))
	assert.Equal(t, http.StatusForbidden, serve(viewer, http.MethodPost, "/quotations"))
	assert.Equal(t, http.StatusForbidden, serve(viewer, http.MethodDelete, "/quotations/1"))

	sales := newRouter(models.RoleSales)
	assert.Equal(t, http.StatusOK, serve(sales, http.MethodPost, "/quotations"))
}

func TestActorFrom_withoutAuth(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	a := ActorFrom(c)
	assert.Zero(t, a.UserID)
	assert.Nil(t, UserFrom(c))
	assert.Empty(t, SessionFrom(c))
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(Recovery(zerolog.New(&buf)))
	r.GET("/boom", func(c *gin.Context) { panic("kaput") })

	assert.Equal(t, http.StatusInternalServerError, serve(r, http.MethodGet, "/boom"))
	assert.Contains(t, buf.String(), "recovered from panic")
	assert.Contains(t, buf.String(), `"path":"/boom"`)
}
