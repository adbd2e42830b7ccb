// Package httpapi exposes the concept tools and prompt templates over HTTP.
package httpapi

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"carton/backend/internal/tools"
	apperrors "carton/backend/pkg/errors"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// toolView is the wire form of a tool definition.
type toolView struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Mutating    bool                   `json:"mutating"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

// NewRouter builds the gin engine serving exec.
func NewRouter(exec *tools.Executor, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(requestID())
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.GET("/tools", listTools)
		api.POST("/tools/:name", executeTool(exec, log))
		api.GET("/prompts", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"prompts": tools.Prompts()})
		})
		api.POST("/prompts/:name", renderPrompt)
	}
	return router
}

func listTools(c *gin.Context) {
	defs := tools.GetAllTools()
	views := make([]toolView, 0, len(defs))
	for _, d := range defs {
		views = append(views, toolView{
			Name:        d.Name,
			Description: d.Description,
			Mutating:    d.Mutating,
			InputSchema: d.JSONSchema(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"tools": views})
}

func executeTool(exec *tools.Executor, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Param("name")
		if _, ok := tools.FindTool(name); !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": apperrors.NewToolNotFound(name).Error()})
			return
		}

		args := map[string]interface{}{}
		if err := c.ShouldBindJSON(&args); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result := exec.Execute(c.Request.Context(), tools.ToolCall{Name: name, Arguments: args})
		if !result.Success {
			log.Warn("Tool call failed",
				zap.String("tool", name),
				zap.String("request_id", c.GetString(RequestIDHeader)),
				zap.String("error", result.Error),
			)
		}
		c.JSON(http.StatusOK, result)
	}
}

func renderPrompt(c *gin.Context) {
	args := map[string]string{}
	if err := c.ShouldBindJSON(&args); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	text, err := tools.RenderPrompt(c.Param("name"), args)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": c.Param("name"), "text": text})
}

// requestID reuses the caller's request id or assigns a fresh one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
			zap.String("request_id", c.GetString(RequestIDHeader)),
		)
	}
}
