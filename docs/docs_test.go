package docs

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func testEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	noop := func(c *gin.Context) {}
	r.GET("/healthz", noop)
	r.POST("/api/login", noop)
	r.GET("/api/quotations/:id", noop)
	r.PUT("/api/customers/:id/requesters/:requester_id", noop)
	r.GET("/swagger/*any", noop)
	return r
}

func TestBuild(t *testing.T) {
	d := Build(testEngine(), Info{Title: "LabQuote API", Version: "1.0"})
	paths := d["paths"].(map[string]interface{})

	assert.NotContains(t, paths, "/swagger/{any}")
	require.Contains(t, paths, "/api/quotations/{id}")

	get := paths["/api/quotations/{id}"].(map[string]interface{})["get"].(map[string]interface{})
	assert.Equal(t, []string{"quotations"}, get["tags"])
	assert.Contains(t, get, "security")
	params := get["parameters"].([]map[string]interface{})
	require.Len(t, params, 1)
	assert.Equal(t, "id", params[0]["name"])

	put := paths["/api/customers/{id}/requesters/{requester_id}"].(map[string]interface{})["put"].(map[string]interface{})
	assert.Len(t, put["parameters"], 3, "two path params and a body")

	login := paths["/api/login"].(map[string]interface{})["post"].(map[string]interface{})
	assert.NotContains(t, login, "security")

	health := paths["/healthz"].(map[string]interface{})["get"].(map[string]interface{})
	assert.Equal(t, []string{"system"}, health["tags"])
}

func TestRegister(t *testing.T) {
	require.NoError(t, Register(testEngine(), Info{Title: "LabQuote API", Version: "2.0"}))

	raw, err := swag.ReadDoc()
	require.NoError(t, err)
	var d struct {
		Info  struct{ Version string } `json:"info"`
		Paths map[string]interface{}   `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &d))
	assert.Equal(t, "2.0", d.Info.Version)
	assert.Contains(t, d.Paths, "/api/login")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	JSON(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, raw, w.Body.String())
}
