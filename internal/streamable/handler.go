package streamable

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"mcp-host-info/internal/logger"
	"mcp-host-info/internal/types"

	"github.com/gofiber/fiber/v2"
)

const sessionTimeout = 5 * time.Minute

// Handler serves the streamable HTTP MCP transport (2025-03-26).
type Handler struct {
	sessionManager       *types.SessionManager
	lastCreatedSessionID *sync.Map
	handleJSONRPC        func(map[string]interface{}, string) map[string]interface{}
}

// NewHandler creates a streamable HTTP handler.
func NewHandler(sessionManager *types.SessionManager, lastCreatedSessionID *sync.Map, handleJSONRPC func(map[string]interface{}, string) map[string]interface{}) *Handler {
	return &Handler{
		sessionManager:       sessionManager,
		lastCreatedSessionID: lastCreatedSessionID,
		handleJSONRPC:        handleJSONRPC,
	}
}

// HandlePost handles JSON-RPC POSTs: single messages or batches,
// answered as JSON or as an SSE stream depending on Accept.
func (h *Handler) HandlePost(c *fiber.Ctx) error {
	acceptHeader := c.Get("Accept")

	supportsJSON := strings.Contains(acceptHeader, "application/json") || strings.Contains(acceptHeader, "*/*")
	supportsSSE := strings.Contains(acceptHeader, "text/event-stream")

	if !supportsJSON && !supportsSSE {
		return c.Status(fiber.StatusNotAcceptable).SendString("Not Acceptable")
	}

	body := c.Body()
	streamLogger := logger.Streamable.With().
		Str("method", "POST").
		Logger()
	streamLogger.Debug().
		Bytes("request_body", body).
		Msg("Received streamable HTTP request")

	// The body may be a single message or an array of them.
	var messages []map[string]interface{}
	if err := json.Unmarshal(body, &messages); err != nil {
		var singleMessage map[string]interface{}
		if err := json.Unmarshal(body, &singleMessage); err != nil {
			streamLogger.Error().
				Err(err).
				Str("body", string(body)).
				Msg("JSON parsing error")
			return c.Status(fiber.StatusBadRequest).SendString("Invalid JSON")
		}
		messages = []map[string]interface{}{singleMessage}
	}

	hasRequests := false
	for _, msg := range messages {
		_, hasID := msg["id"]
		_, hasMethod := msg["method"]
		if hasID && hasMethod {
			hasRequests = true
			break
		}
	}

	sessionID := c.Get("Mcp-Session-Id")

	// Responses and notifications get processed without an answer.
	if !hasRequests {
		for _, msg := range messages {
			h.handleJSONRPC(msg, sessionID)
		}
		return c.SendStatus(fiber.StatusAccepted)
	}

	responses := []map[string]interface{}{}
	for _, msg := range messages {
		if _, hasMethod := msg["method"]; !hasMethod {
			continue
		}
		response := h.handleJSONRPC(msg, sessionID)
		if response == nil {
			continue
		}

		// initialize: pass the new session ID in header and body.
		if method, ok := msg["method"].(string); ok && method == "initialize" && response["result"] != nil {
			if value, ok := h.lastCreatedSessionID.Load("sessionID"); ok {
				if newSessionID, ok := value.(string); ok {
					c.Set("Mcp-Session-Id", newSessionID)
					if result, ok := response["result"].(map[string]interface{}); ok {
						result["sessionId"] = newSessionID
					}
					h.lastCreatedSessionID.Delete("sessionID")
				}
			}
		}
		responses = append(responses, response)
	}

	if supportsSSE && len(responses) > 0 {
		return h.HandleSSE(c, responses)
	}

	c.Set("Content-Type", "application/json")
	if len(responses) == 1 {
		return c.JSON(responses[0])
	}
	return c.JSON(responses)
}

// HandleGet either upgrades to an SSE stream or reports server info.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	if strings.Contains(c.Get("Accept"), "text/event-stream") {
		return h.HandleSSE(c, nil)
	}

	return c.JSON(fiber.Map{
		"status":   "ok",
		"message":  "MCP Host Info Server is running",
		"version":  "1.0.0",
		"protocol": "2025-03-26",
		"endpoints": fiber.Map{
			"mcp":        "/",
			"legacy_sse": "/sse",
		},
	})
}

// HandleDelete tears a session down.
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	sessionID := c.Get("Mcp-Session-Id")

	logger.Streamable.Info().
		Str("session_id", sessionID).
		Msg("Deleting session")

	if sessionID != "" {
		h.sessionManager.RemoveSession(sessionID)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// HandleSSE streams session events, replaying buffered events after
// the client's Last-Event-Id on reconnect.
func (h *Handler) HandleSSE(c *fiber.Ctx, initialResponses []map[string]interface{}) error {
	sessionID := c.Get("Mcp-Session-Id")
	lastEventID := c.Get("Last-Event-Id")
	if lastEventID == "" {
		lastEventID = c.Get("Last-Event-ID")
	}

	autoCreatedSession := false
	if sessionID == "" {
		sessionID = h.sessionManager.CreateSession()
		autoCreatedSession = true
		c.Set("Mcp-Session-Id", sessionID)
	}

	streamLogger := logger.Streamable.With().
		Str("session_id", sessionID).
		Bool("auto_created", autoCreatedSession).
		Logger()

	session, exists := h.sessionManager.GetSession(sessionID)
	if !exists {
		return c.Status(fiber.StatusNotFound).SendString("Session not found")
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		var startEventID int64
		if lastEventID != "" {
			if parsedID, err := strconv.ParseInt(lastEventID, 10, 64); err == nil {
				startEventID = parsedID
			}
		}

		// Replay whatever the client missed since its last event.
		if startEventID > 0 {
			missedEvents := session.GetEventsAfter(startEventID)
			streamLogger.Info().
				Int64("last_event_id", startEventID).
				Int("missed_events", len(missedEvents)).
				Msg("Replaying missed events")
			for _, event := range missedEvents {
				jsonData, _ := json.Marshal(event.Data)
				fmt.Fprintf(w, "id: %d\ndata: %s\n\n", event.ID, jsonData)
				w.Flush()
			}
		}

		for _, response := range initialResponses {
			eventID := session.StoreEvent(response)
			jsonData, _ := json.Marshal(response)
			fmt.Fprintf(w, "id: %d\ndata: %s\n\n", eventID, jsonData)
			w.Flush()
		}

		done := make(chan struct{})
		pingTicker := time.NewTicker(30 * time.Second)
		defer pingTicker.Stop()

		go func() {
			defer func() {
				if r := recover(); r != nil {
					streamLogger.Error().
						Interface("panic", r).
						Msg("Recovered from panic in streamable SSE goroutine")
				}
			}()

			timeout := time.NewTimer(sessionTimeout)
			defer timeout.Stop()

			select {
			case <-timeout.C:
				streamLogger.Info().Msg("Streamable SSE session timeout")
				if autoCreatedSession {
					h.sessionManager.RemoveSession(sessionID)
				}
				close(done)
			case <-done:
			}
		}()

		for {
			select {
			case <-done:
				return
			case message, ok := <-session.SSEChan:
				if !ok {
					return
				}

				eventID := session.StoreEvent(message)
				jsonData, err := json.Marshal(message)
				if err != nil {
					continue
				}

				fmt.Fprintf(w, "id: %d\ndata: %s\n\n", eventID, jsonData)
				w.Flush()
			case <-pingTicker.C:
				fmt.Fprintf(w, ": ping\n\n")
				w.Flush()
			}
		}
	})

	return nil
}
