package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"carton/backend/internal/engine"
	"carton/backend/internal/httpapi"
	"carton/backend/internal/store"
	"carton/backend/internal/tools"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	exec := tools.NewExecutor(engine.New(store.NewMemoryStore(), nil, engine.DefaultOptions()))
	return httpapi.NewRouter(exec, zap.NewNop())
}

func TestHealthEndpoint(t *testing.T) {
	router := newRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "ok", response["status"])
}

func TestToolEndpoint_InvalidRequest(t *testing.T) {
	router := newRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/tools/add_concept", bytes.NewBuffer([]byte(`[1, 2`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPromptEndpoint_MissingArguments(t *testing.T) {
	router := newRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/prompts/update_known_concept", bytes.NewBuffer([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
