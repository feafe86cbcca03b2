package handlers

import (
	"context"
	"sync"

	"mcp-host-info/internal/logger"
	"mcp-host-info/internal/sse"
	"mcp-host-info/internal/streamable"
	"mcp-host-info/internal/tools"
	"mcp-host-info/internal/types"

	"github.com/gofiber/fiber/v2"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// FiberMCPHandler serves the MCP protocol over fiber, on both the
// streamable HTTP transport and the legacy SSE one.
type FiberMCPHandler struct {
	server               *server.MCPServer
	sessionManager       *types.SessionManager
	lastCreatedSessionID sync.Map
	streamableHandler    *streamable.Handler
	legacyHandler        *sse.Handler
}

func NewFiberMCPHandler(server *server.MCPServer, sessionManager *types.SessionManager) *FiberMCPHandler {
	handler := &FiberMCPHandler{
		server:         server,
		sessionManager: sessionManager,
	}

	handler.streamableHandler = streamable.NewHandler(sessionManager, &handler.lastCreatedSessionID, handler.handleJSONRPCMessage)
	handler.legacyHandler = sse.NewHandler(sessionManager, &handler.lastCreatedSessionID, handler.handleJSONRPCMessage)

	return handler
}

func (h *FiberMCPHandler) RegisterRoutes(app *fiber.App) {
	// Streamable HTTP on the root route (2025-03-26).
	app.Post("/", h.streamableHandler.HandlePost)
	app.Get("/", h.streamableHandler.HandleGet)
	app.Delete("/", h.streamableHandler.HandleDelete)

	// Legacy SSE for backward compatibility (2024-11-05).
	app.Post("/sse", h.legacyHandler.HandlePost)
	app.Get("/sse", h.legacyHandler.HandleSSE)
}

func (h *FiberMCPHandler) handleJSONRPCMessage(request map[string]interface{}, sessionID string) map[string]interface{} {
	method, hasMethod := request["method"].(string)
	id, hasID := request["id"]

	mcpLogger := logger.GetMCPLogger(method, sessionID)
	mcpLogger.Debug().
		Interface("request", request).
		Msg("Processing JSON-RPC request")

	if !hasMethod {
		mcpLogger.Warn().Msg("Request missing method field")
		return nil
	}

	if method == "initialize" {
		mcpLogger.Info().Msg("Handling initialize request")
		return h.handleInitializeRequest(request)
	}

	session, exists := h.sessionManager.GetSession(sessionID)
	if !exists {
		mcpLogger.Warn().Msg("Session not found")
		if hasID {
			return jsonRPCError(id, -32001, "Session not found")
		}
		return nil
	}

	switch method {
	case "tools/list":
		if !hasID {
			mcpLogger.Warn().Msg("tools/list request missing id field")
			return nil
		}
		return h.handleToolsListRequest(request, session)

	case "tools/call":
		if !hasID {
			mcpLogger.Warn().Msg("tools/call request missing id field")
			return nil
		}
		return h.handleToolCallRequest(request, session)

	default:
		mcpLogger.Warn().Str("method", method).Msg("Unknown method")
		if hasID {
			return jsonRPCError(id, -32601, "Method not found")
		}
		return nil
	}
}

func jsonRPCError(id interface{}, code int, message string) map[string]interface{} {
	return map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	}
}

func (h *FiberMCPHandler) handleInitializeRequest(request map[string]interface{}) map[string]interface{} {
	id := request["id"]

	sessionID := h.sessionManager.CreateSession()

	logger.Session.Info().
		Str("session_id", sessionID).
		Msg("Created new session")

	h.lastCreatedSessionID.Store("sessionID", sessionID)

	// Pick the protocol version from the client's request params.
	protocolVersion := "2024-11-05" // legacy SSE default
	if params, ok := request["params"].(map[string]interface{}); ok {
		if requestedVersion, ok := params["protocolVersion"].(string); ok {
			logger.Session.Debug().
				Str("session_id", sessionID).
				Str("requested_version", requestedVersion).
				Msg("Client requested specific protocol version")

			if requestedVersion == "2025-03-26" {
				protocolVersion = "2025-03-26" // streamable HTTP
			}
		}
	}

	return map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]interface{}{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    "mcp-host-info",
				"version": "1.0.0",
			},
		},
	}
}

func (h *FiberMCPHandler) handleToolsListRequest(request map[string]interface{}, session *types.Session) map[string]interface{} {
	id := request["id"]

	logger.Tools.Debug().
		Str("session_id", session.ID).
		Msg("Listing available tools")

	return map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]interface{}{
			"tools": []map[string]interface{}{
				{
					"name":        "get_host_info",
					"description": "Reports host hardware facts: CPU identification, instruction set extensions and physical memory",
					"inputSchema": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"random_string": map[string]interface{}{
								"type":        "string",
								"description": "Dummy parameter for no-parameter tools",
							},
						},
						"required": []string{"random_string"},
					},
				},
			},
		},
	}
}

func (h *FiberMCPHandler) handleToolCallRequest(request map[string]interface{}, session *types.Session) map[string]interface{} {
	id := request["id"]
	params, ok := request["params"].(map[string]interface{})
	if !ok {
		logger.Tools.Warn().
			Str("session_id", session.ID).
			Msg("Invalid params in tool call request")
		return jsonRPCError(id, -32602, "Invalid params")
	}

	toolName, ok := params["name"].(string)
	if !ok {
		logger.Tools.Warn().
			Str("session_id", session.ID).
			Msg("Missing tool name in params")
		return jsonRPCError(id, -32602, "Missing tool name")
	}

	logger.Tools.Info().
		Str("session_id", session.ID).
		Str("tool_name", toolName).
		Msg("Executing tool")

	if toolName != "get_host_info" {
		logger.Tools.Warn().
			Str("session_id", session.ID).
			Str("tool_name", toolName).
			Msg("Unknown tool requested")
		return jsonRPCError(id, -32601, "Tool not found")
	}

	arguments := make(map[string]interface{})
	if args, ok := params["arguments"].(map[string]interface{}); ok {
		arguments = args
	}

	result, err := tools.GetHostInfoHandler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: arguments,
		},
	})
	if err != nil {
		logger.Tools.Error().
			Err(err).
			Str("session_id", session.ID).
			Str("tool_name", toolName).
			Msg("Error executing tool")
		return jsonRPCError(id, -32603, "Error querying host information: "+err.Error())
	}

	return map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]interface{}{
			"content": result.Content,
		},
	}
}
