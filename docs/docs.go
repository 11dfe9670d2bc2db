// Package docs serves a Swagger 2.0 document built from the registered gin
// routes through swag, so gin-swagger can render it at /swagger/index.html.
package docs

import (
	"encoding/json"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/swaggo/swag"
)

// Info is the document header.
type Info struct {
	Title       string
	Description string
	Version     string
	BasePath    string
}

type document struct {
	mu  sync.RWMutex
	raw string
}

func (d *document) ReadDoc() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.raw
}

var doc = &document{raw: `{"swagger":"2.0","info":{"title":"LabQuote API","version":"1.0"},"paths":{}}`}

func init() {
	swag.Register(swag.Name, doc)
}

var ginPathParamRe = regexp.MustCompile(`:([^/]+)`)

func ginPathToSwaggerPath(path string) string {
	return ginPathParamRe.ReplaceAllString(path, "{$1}")
}

// public lists the /api routes reachable without a bearer token.
var public = map[string]bool{
	"/api/login":            true,
	"/api/refresh-token":    true,
	"/api/validate-session": true,
}

var definitions = map[string]interface{}{
	"ErrorResponse": map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"error":   map[string]interface{}{"type": "string", "example": "quotation 9: not found"},
			"details": map[string]interface{}{"type": "string"},
		},
	},
	"PageResponse": map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"data":      map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "object"}},
			"total":     map[string]interface{}{"type": "integer", "example": 42},
			"page":      map[string]interface{}{"type": "integer", "example": 1},
			"page_size": map[string]interface{}{"type": "integer", "example": 20},
		},
	},
}

func errorResponse(description string) map[string]interface{} {
	return map[string]interface{}{
		"description": description,
		"schema":      map[string]interface{}{"$ref": "#/definitions/ErrorResponse"},
	}
}

// tagFor groups routes by the first path segment after /api.
func tagFor(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) > 1 && parts[0] == "api" {
		return parts[1]
	}
	if len(parts) > 0 && parts[0] == "quotations" {
		return "quotations"
	}
	return "system"
}

// Build returns a Swagger 2.0 document describing every route of engine
// except the swagger UI itself.
func Build(engine *gin.Engine, info Info) map[string]interface{} {
	paths := make(map[string]interface{})
	routes := engine.Routes()
	sort.Slice(routes, func(i, j int) bool { return routes[i].Path < routes[j].Path })
	for _, route := range routes {
		if strings.HasPrefix(route.Path, "/swagger") {
			continue
		}
		path := ginPathToSwaggerPath(route.Path)
		if paths[path] == nil {
			paths[path] = make(map[string]interface{})
		}
		method := strings.ToLower(route.Method)

		var params []map[string]interface{}
		for _, m := range ginPathParamRe.FindAllStringSubmatch(route.Path, -1) {
			params = append(params, map[string]interface{}{
				"in": "path", "name": m[1], "required": true, "type": "string",
			})
		}
		if method == "post" || method == "put" || method == "patch" {
			params = append(params, map[string]interface{}{
				"in": "body", "name": "body", "required": false,
				"schema": map[string]interface{}{"type": "object"},
			})
		}

		op := map[string]interface{}{
			"summary":  route.Method + " " + route.Path,
			"tags":     []string{tagFor(route.Path)},
			"produces": []string{"application/json"},
			"responses": map[string]interface{}{
				"200": map[string]interface{}{"description": "OK"},
				"400": errorResponse("Bad Request"),
				"404": errorResponse("Not Found"),
				"500": errorResponse("Internal Server Error"),
			},
		}
		if len(params) > 0 {
			op["parameters"] = params
		}
		if strings.HasPrefix(route.Path, "/api/") && !public[route.Path] {
			op["security"] = []map[string][]string{{"BearerAuth": {}}}
			op["responses"].(map[string]interface{})["401"] = errorResponse("Unauthorized")
		}
		paths[path].(map[string]interface{})[method] = op
	}

	basePath := info.BasePath
	if basePath == "" {
		basePath = "/"
	}
	return map[string]interface{}{
		"swagger": "2.0",
		"info": map[string]interface{}{
			"title":       info.Title,
			"description": info.Description,
			"version":     info.Version,
		},
		"basePath":    basePath,
		"schemes":     []string{"http", "https"},
		"paths":       paths,
		"definitions": definitions,
		"securityDefinitions": map[string]interface{}{
			"BearerAuth": map[string]interface{}{"type": "apiKey", "in": "header", "name": "Authorization"},
		},
	}
}

// Register replaces the document swag serves with one built from engine.
// Call it after every route is mounted.
func Register(engine *gin.Engine, info Info) error {
	raw, err := json.Marshal(Build(engine, info))
	if err != nil {
		return err
	}
	doc.mu.Lock()
	doc.raw = string(raw)
	doc.mu.Unlock()
	return nil
}

// JSON serves the current document directly, for clients that skip the UI.
func JSON(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc.ReadDoc()))
}
