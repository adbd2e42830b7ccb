// Package mcpserver publishes the concept tools and prompt templates as a
// Model Context Protocol server.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"carton/backend/internal/tools"
	"carton/backend/pkg/logger"
)

// Name is the server name announced to clients.
const Name = "carton"

// Version is set at build time via ldflags.
var Version = "dev"

// New builds an MCP server with every tool and prompt registered.
func New(exec *tools.Executor) *server.MCPServer {
	s := server.NewMCPServer(
		Name,
		Version,
		server.WithToolCapabilities(true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
	)

	for _, def := range tools.GetAllTools() {
		s.AddTool(toolFromDefinition(def), toolHandler(exec, def.Name))
	}
	for _, p := range tools.Prompts() {
		s.AddPrompt(promptFromTemplate(p), promptHandler(p.Name))
	}
	return s
}

// ServeStdio runs s over stdin/stdout until the client disconnects.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func toolFromDefinition(def tools.Definition) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(def.Description)}
	for _, p := range def.Parameters {
		props := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			props = append(props, mcp.Required())
		}
		switch p.Type {
		case tools.TypeNumber:
			opts = append(opts, mcp.WithNumber(p.Name, props...))
		case tools.TypeArray:
			if p.Items != "" {
				props = append(props, mcp.Items(map[string]any{"type": p.Items}))
			}
			opts = append(opts, mcp.WithArray(p.Name, props...))
		case tools.TypeObject:
			opts = append(opts, mcp.WithObject(p.Name, props...))
		default:
			opts = append(opts, mcp.WithString(p.Name, props...))
		}
	}
	return mcp.NewTool(def.Name, opts...)
}

func toolHandler(exec *tools.Executor, name string) server.ToolHandlerFunc {
	log := logger.Named("mcp")
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := exec.Execute(ctx, tools.ToolCall{Name: name, Arguments: req.GetArguments()})

		body, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Error("Failed to encode tool result", zap.String("tool", name), zap.Error(err))
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !result.Success {
			return mcp.NewToolResultError(string(body)), nil
		}
		return mcp.NewToolResultText(string(body)), nil
	}
}

func promptFromTemplate(p tools.Prompt) mcp.Prompt {
	opts := []mcp.PromptOption{mcp.WithPromptDescription(p.Description)}
	for _, a := range p.Arguments {
		argOpts := []mcp.ArgumentOption{mcp.ArgumentDescription(a.Description)}
		if a.Required {
			argOpts = append(argOpts, mcp.RequiredArgument())
		}
		opts = append(opts, mcp.WithArgument(a.Name, argOpts...))
	}
	return mcp.NewPrompt(p.Name, opts...)
}

func promptHandler(name string) server.PromptHandlerFunc {
	return func(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		text, err := tools.RenderPrompt(name, req.Params.Arguments)
		if err != nil {
			return nil, err
		}
		return mcp.NewGetPromptResult(
			name,
			[]mcp.PromptMessage{mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text))},
		), nil
	}
}
