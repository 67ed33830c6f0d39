package ai

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/todoai/server/internal/errors"
	"codeberg.org/todoai/server/internal/llm/llmtest"
)

func setupRouter(client *llmtest.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), client)
	return router
}

func post(router *gin.Engine, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(body) //nolint:errcheck,gosec

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) any {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp ResultResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Result
}

func TestCast(t *testing.T) {
	client := llmtest.New(llmtest.Result(map[string]any{"street": "1 Main St", "city": "Springfield"}))
	router := setupRouter(client)

	w := post(router, "/api/v1/ai/cast", map[string]any{
		"data":   "one main street, springfield",
		"schema": map[string]any{"type": "object", "properties": map[string]any{"street": map[string]any{"type": "string"}, "city": map[string]any{"type": "string"}}},
	})
	assert.Equal(t, map[string]any{"street": "1 Main St", "city": "Springfield"}, decodeResult(t, w))

	req := client.Requests()[0]
	require.NotNil(t, req.Temperature)
	assert.Zero(t, *req.Temperature)
}

func TestCast_DefaultsToString(t *testing.T) {
	client := llmtest.New(llmtest.Result("42"))
	router := setupRouter(client)

	w := post(router, "/api/v1/ai/cast", TaskRequest{Data: "forty two"})
	assert.Equal(t, "42", decodeResult(t, w))
	assert.Contains(t, string(client.Requests()[0].Tools[0].Parameters), `"type":"string"`)
}

func TestExtract(t *testing.T) {
	router := setupRouter(llmtest.New(llmtest.Result([]string{"Alice", "Bob"})))

	w := post(router, "/api/v1/ai/extract", TaskRequest{Data: "Alice met Bob", Instructions: "names"})
	assert.Equal(t, []any{"Alice", "Bob"}, decodeResult(t, w))
}

func TestClassify(t *testing.T) {
	client := llmtest.New(llmtest.Result("bug"))
	router := setupRouter(client)

	w := post(router, "/api/v1/ai/classify", ClassifyRequest{
		Data:   "the app crashes on start",
		Labels: []string{"bug", "feature", "question"},
	})
	assert.Equal(t, "bug", decodeResult(t, w))
	assert.Contains(t, string(client.Requests()[0].Tools[0].Parameters), `"enum":["bug","feature","question"]`)
}

func TestGenerate(t *testing.T) {
	client := llmtest.New(
		llmtest.Result([]string{"oak"}),
		llmtest.Result([]string{"oak", "elm", "ash"}),
	)
	router := setupRouter(client)

	temperature := float32(0.7)
	w := post(router, "/api/v1/ai/generate", GenerateRequest{N: 2, Instructions: "trees", Temperature: &temperature})
	assert.Equal(t, []any{"oak", "elm"}, decodeResult(t, w))

	reqs := client.Requests()
	require.Len(t, reqs, 2)
	assert.InDelta(t, 0.7, *reqs[0].Temperature, 0.001)
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   any
		status int
		code   string
	}{
		{name: "cast without data", target: "/api/v1/ai/cast", body: map[string]any{}, status: http.StatusBadRequest, code: errors.CodeValidationError},
		{name: "bad schema", target: "/api/v1/ai/cast", body: map[string]any{"data": "x", "schema": "{nope"}, status: http.StatusBadRequest, code: errors.CodeValidationError},
		{name: "classify without labels", target: "/api/v1/ai/classify", body: ClassifyRequest{Data: "x"}, status: http.StatusBadRequest, code: errors.CodeValidationError},
		{name: "generate too many", target: "/api/v1/ai/generate", body: GenerateRequest{N: 500}, status: http.StatusBadRequest, code: errors.CodeValidationError},
		{name: "generate none", target: "/api/v1/ai/generate", body: GenerateRequest{}, status: http.StatusBadRequest, code: errors.CodeValidationError},
		{name: "provider failure", target: "/api/v1/ai/extract", body: TaskRequest{Data: "x"}, status: http.StatusBadGateway, code: errors.CodeLLMError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(llmtest.New())

			w := post(router, tt.target, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())

			var resp errors.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error)
		})
	}
}
