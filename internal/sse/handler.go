package sse

import (
	"bufio"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"mcp-host-info/internal/logger"
	"mcp-host-info/internal/types"

	"github.com/gofiber/fiber/v2"
)

const sessionTimeout = 5 * time.Minute

// Handler serves the legacy SSE MCP transport (2024-11-05).
type Handler struct {
	sessionManager       *types.SessionManager
	lastCreatedSessionID *sync.Map
	handleJSONRPC        func(map[string]interface{}, string) map[string]interface{}
}

// NewHandler creates a legacy SSE handler.
func NewHandler(sessionManager *types.SessionManager, lastCreatedSessionID *sync.Map, handleJSONRPC func(map[string]interface{}, string) map[string]interface{}) *Handler {
	return &Handler{
		sessionManager:       sessionManager,
		lastCreatedSessionID: lastCreatedSessionID,
		handleJSONRPC:        handleJSONRPC,
	}
}

// HandlePost handles JSON-RPC POSTs on the legacy transport.
func (h *Handler) HandlePost(c *fiber.Ctx) error {
	body := c.Body()
	sessionID := c.Get("Mcp-Session-Id")

	sseLogger := logger.SSE.With().
		Str("session_id", sessionID).
		Str("method", "POST").
		Logger()

	var request map[string]interface{}
	if err := json.Unmarshal(body, &request); err != nil {
		sseLogger.Error().
			Err(err).
			Str("body", string(body)).
			Msg("JSON parsing error")
		return c.Status(fiber.StatusBadRequest).SendString("Invalid JSON")
	}

	method, _ := request["method"].(string)
	sseLogger = sseLogger.With().
		Str("rpc_method", method).
		Logger()

	// initialize creates the session; every other method needs one.
	if method != "initialize" && method != "notifications/initialized" {
		if sessionID == "" {
			sseLogger.Warn().Msg("Missing session ID for non-initialize method")
			return c.Status(fiber.StatusBadRequest).JSON(map[string]interface{}{
				"jsonrpc": "2.0",
				"id":      request["id"],
				"error": map[string]interface{}{
					"code":    -32001,
					"message": "Missing Mcp-Session-Id header",
				},
			})
		}
	}

	response := h.handleJSONRPC(request, sessionID)
	if response == nil {
		sseLogger.Debug().Msg("No response to send, returning 202 Accepted")
		return c.SendStatus(fiber.StatusAccepted)
	}

	// Hand the freshly created session ID back to the client both in
	// the result body and the response header.
	if method == "initialize" && response["result"] != nil {
		if value, ok := h.lastCreatedSessionID.Load("sessionID"); ok {
			if newSessionID, ok := value.(string); ok {
				sseLogger.Info().
					Str("new_session_id", newSessionID).
					Msg("Initializing new session for legacy SSE")

				if result, ok := response["result"].(map[string]interface{}); ok {
					result["sessionId"] = newSessionID
				}
				c.Set("Mcp-Session-Id", newSessionID)
				h.lastCreatedSessionID.Delete("sessionID")
			}
		}
	}

	sseLogger.Debug().
		Interface("response", response).
		Msg("Sending legacy SSE POST response")
	return c.JSON(response)
}

// HandleSSE holds a legacy SSE connection open and streams session
// events to the client.
func (h *Handler) HandleSSE(c *fiber.Ctx) error {
	sessionID := c.Get("Mcp-Session-Id")
	if sessionID == "" {
		sessionID = c.Query("sessionId")
	}

	autoCreatedSession := false
	if sessionID == "" {
		sessionID = h.sessionManager.CreateSession()
		autoCreatedSession = true
	}

	sseLogger := logger.SSE.With().
		Str("session_id", sessionID).
		Bool("auto_created", autoCreatedSession).
		Logger()

	c.Set("Mcp-Session-Id", sessionID)

	session, exists := h.sessionManager.GetSession(sessionID)
	if !exists {
		sseLogger.Error().Msg("Session not found for legacy SSE")
		return c.Status(fiber.StatusNotFound).SendString("Session not found")
	}

	sseLogger.Info().Msg("Starting legacy SSE connection")

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		endpointMessage := map[string]interface{}{
			"jsonrpc": "2.0",
			"method":  "notifications/message",
			"params": map[string]interface{}{
				"level": "info",
				"text":  "Connected to MCP Host Info Server (legacy SSE)",
			},
		}
		jsonData, _ := json.Marshal(endpointMessage)
		fmt.Fprintf(w, "event: endpoint\ndata: %s\n\n", jsonData)
		w.Flush()

		done := make(chan struct{})
		pingTicker := time.NewTicker(30 * time.Second)
		defer pingTicker.Stop()

		go func() {
			defer func() {
				if r := recover(); r != nil {
					sseLogger.Error().
						Interface("panic", r).
						Msg("Recovered from panic in legacy SSE goroutine")
				}
				if autoCreatedSession {
					h.sessionManager.RemoveSession(sessionID)
				}
				close(done)
			}()

			timeout := time.NewTimer(sessionTimeout)
			defer timeout.Stop()

			select {
			case <-timeout.C:
				sseLogger.Info().
					Dur("timeout", sessionTimeout).
					Msg("Legacy SSE session timeout")
			case <-c.Context().Done():
				sseLogger.Info().Msg("Legacy SSE client disconnected")
			case <-done:
				return
			}
		}()

		messageCount := 0
		for {
			select {
			case <-done:
				sseLogger.Info().
					Int("messages_sent", messageCount).
					Msg("Legacy SSE connection closed")
				return
			case message, ok := <-session.SSEChan:
				if !ok {
					sseLogger.Debug().Msg("Legacy SSE channel closed")
					return
				}

				jsonData, err := json.Marshal(message)
				if err != nil {
					sseLogger.Error().
						Err(err).
						Interface("message", message).
						Msg("Failed to marshal legacy SSE message")
					continue
				}

				fmt.Fprintf(w, "event: message\ndata: %s\n\n", jsonData)
				w.Flush()
				messageCount++

			case <-pingTicker.C:
				fmt.Fprintf(w, ": ping\n\n")
				w.Flush()
			}
		}
	})

	return nil
}
