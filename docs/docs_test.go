package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readDoc(t *testing.T) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &doc), "rendered doc must be valid JSON")
	return doc
}

func TestSwaggerInfo(t *testing.T) {
	assert.Equal(t, "InflationFighter Price Service API", SwaggerInfo.Title)
	assert.Equal(t, "1.0", SwaggerInfo.Version)
	assert.Equal(t, "/", SwaggerInfo.BasePath)
	assert.Equal(t, "swagger", SwaggerInfo.InfoInstanceName)
	assert.Contains(t, SwaggerInfo.Description, "route optimization")
}

func TestRenderedDocHeader(t *testing.T) {
	doc := readDoc(t)

	assert.Equal(t, "2.0", doc["swagger"])
	assert.Equal(t, "/", doc["basePath"])

	info, ok := doc["info"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, SwaggerInfo.Title, info["title"])
}

func TestDocumentsEveryRoute(t *testing.T) {
	paths, ok := readDoc(t)["paths"].(map[string]any)
	require.True(t, ok)

	routes := map[string]string{
		"/health":                  "get",
		"/api/stores":              "get",
		"/api/stores/locations":    "get",
		"/api/categories":          "get",
		"/api/categories/search":   "get",
		"/api/categories/{id}":     "get",
		"/api/basket/analyze":      "post",
		"/api/routes/optimize":     "post",
		"/internal/health":         "get",
		"/internal/search/reindex": "post",
	}
	assert.Len(t, paths, len(routes))

	for path, method := range routes {
		item, ok := paths[path].(map[string]any)
		if assert.True(t, ok, "missing path %s", path) {
			assert.Contains(t, item, method, "%s should document %s", path, method)
		}
	}
}

func TestInternalRoutesRequireAPIKey(t *testing.T) {
	doc := readDoc(t)

	defs, ok := doc["securityDefinitions"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, defs, "InternalAPIKey")

	paths := doc["paths"].(map[string]any)
	for _, route := range []struct{ path, method string }{
		{"/internal/health", "get"},
		{"/internal/search/reindex", "post"},
	} {
		op := paths[route.path].(map[string]any)[route.method].(map[string]any)
		assert.Contains(t, op, "security", route.path)
	}
}

func TestDocumentsRequestAndResponseTypes(t *testing.T) {
	defs, ok := readDoc(t)["definitions"].(map[string]any)
	require.True(t, ok)

	for _, name := range []string{
		"handlers.BasketRequest",
		"handlers.BasketAnalysisResponse",
		"handlers.RouteOptimizeRequest",
		"handlers.RouteOptimizeResponse",
		"handlers.TravelCostResponse",
		"handlers.CategoryDetail",
		"handlers.ErrorResponse",
	} {
		assert.Contains(t, defs, name)
	}
}
